package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/meetingverify/internal/application"
)

type fakeParticipantService struct {
	createFn func(ctx context.Context, params application.CreateParticipantParams) (application.Participant, error)
	updateFn func(ctx context.Context, params application.UpdateParticipantParams) (application.Participant, error)
	deleteFn func(ctx context.Context, participantID string) error
	listFn   func(ctx context.Context) ([]application.Participant, error)
}

func (f *fakeParticipantService) CreateParticipant(ctx context.Context, params application.CreateParticipantParams) (application.Participant, error) {
	return f.createFn(ctx, params)
}

func (f *fakeParticipantService) UpdateParticipant(ctx context.Context, params application.UpdateParticipantParams) (application.Participant, error) {
	return f.updateFn(ctx, params)
}

func (f *fakeParticipantService) DeleteParticipant(ctx context.Context, participantID string) error {
	return f.deleteFn(ctx, participantID)
}

func (f *fakeParticipantService) ListParticipants(ctx context.Context) ([]application.Participant, error) {
	return f.listFn(ctx)
}

func TestParticipantHandler_Create(t *testing.T) {
	svc := &fakeParticipantService{
		createFn: func(ctx context.Context, params application.CreateParticipantParams) (application.Participant, error) {
			if params.Input.Name != "Alice" || params.Input.Email != "alice@example.com" {
				t.Fatalf("unexpected input: %+v", params.Input)
			}
			return application.Participant{ID: "p1", Name: params.Input.Name, Email: params.Input.Email}, nil
		},
	}
	handler := NewParticipantHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/participants", strings.NewReader(`{"name":"Alice","email":"alice@example.com"}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp participantResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Participant.ID != "p1" {
		t.Fatalf("unexpected participant in response: %+v", resp.Participant)
	}
}

func TestParticipantHandler_Create_BadBody(t *testing.T) {
	handler := NewParticipantHandler(&fakeParticipantService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/participants", strings.NewReader(`not-json`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestParticipantHandler_Update_MissingParticipantID(t *testing.T) {
	handler := NewParticipantHandler(&fakeParticipantService{}, nil)

	req := httptest.NewRequest(http.MethodPut, "/participants/", strings.NewReader(`{"name":"X","email":"x@example.com"}`))
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing participant id, got %d", rec.Code)
	}
}

func TestParticipantHandler_Update_NotFound(t *testing.T) {
	svc := &fakeParticipantService{
		updateFn: func(ctx context.Context, params application.UpdateParticipantParams) (application.Participant, error) {
			return application.Participant{}, application.ErrNotFound
		},
	}
	handler := NewParticipantHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPut, "/participants/missing", strings.NewReader(`{"name":"X","email":"x@example.com"}`))
	req = req.WithContext(ContextWithParticipantID(req.Context(), "missing"))
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestParticipantHandler_Delete(t *testing.T) {
	var deletedID string
	svc := &fakeParticipantService{
		deleteFn: func(ctx context.Context, participantID string) error {
			deletedID = participantID
			return nil
		},
	}
	handler := NewParticipantHandler(svc, nil)

	req := httptest.NewRequest(http.MethodDelete, "/participants/p1", nil)
	req = req.WithContext(ContextWithParticipantID(req.Context(), "p1"))
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if deletedID != "p1" {
		t.Fatalf("expected delete to be called with p1, got %q", deletedID)
	}
}

func TestParticipantHandler_List(t *testing.T) {
	svc := &fakeParticipantService{
		listFn: func(ctx context.Context) ([]application.Participant, error) {
			return []application.Participant{
				{ID: "p1", Name: "Alice", Email: "alice@example.com"},
				{ID: "p2", Name: "Bob", Email: "bob@example.com"},
			}, nil
		},
	}
	handler := NewParticipantHandler(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/participants", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp listParticipantsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %+v", resp.Participants)
	}
}

func TestParticipantHandler_NilService(t *testing.T) {
	handler := NewParticipantHandler(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/participants", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for nil service, got %d", rec.Code)
	}
}
