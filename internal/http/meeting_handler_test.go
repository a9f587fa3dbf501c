package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/meetingverify/internal/application"
)

type fakeMeetingService struct {
	createFn       func(ctx context.Context, params application.CreateMeetingParams) (application.SchedulingResult, error)
	updateFn       func(ctx context.Context, params application.UpdateMeetingParams) (application.SchedulingResult, error)
	transitionFn   func(ctx context.Context, meetingID string, newStatus application.MeetingStatus) (application.Meeting, error)
	deleteFn       func(ctx context.Context, meetingID string) error
	getFn          func(ctx context.Context, meetingID string) (application.Meeting, error)
	listFn         func(ctx context.Context, filter application.MeetingFilter) ([]application.Meeting, error)
	statisticsFn   func() application.VerificationStatistics
	violationsFn   func() []application.Violation
	checkPendingFn func() []application.Violation
}

func (f *fakeMeetingService) CreateMeeting(ctx context.Context, params application.CreateMeetingParams) (application.SchedulingResult, error) {
	return f.createFn(ctx, params)
}

func (f *fakeMeetingService) UpdateMeeting(ctx context.Context, params application.UpdateMeetingParams) (application.SchedulingResult, error) {
	return f.updateFn(ctx, params)
}

func (f *fakeMeetingService) Transition(ctx context.Context, meetingID string, newStatus application.MeetingStatus) (application.Meeting, error) {
	return f.transitionFn(ctx, meetingID, newStatus)
}

func (f *fakeMeetingService) DeleteMeeting(ctx context.Context, meetingID string) error {
	return f.deleteFn(ctx, meetingID)
}

func (f *fakeMeetingService) GetMeeting(ctx context.Context, meetingID string) (application.Meeting, error) {
	return f.getFn(ctx, meetingID)
}

func (f *fakeMeetingService) ListMeetings(ctx context.Context, filter application.MeetingFilter) ([]application.Meeting, error) {
	return f.listFn(ctx, filter)
}

func (f *fakeMeetingService) GetStatistics() application.VerificationStatistics {
	return f.statisticsFn()
}

func (f *fakeMeetingService) GetViolations() []application.Violation {
	return f.violationsFn()
}

func (f *fakeMeetingService) CheckPending() []application.Violation {
	return f.checkPendingFn()
}

func sampleMeeting() application.Meeting {
	start := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	return application.Meeting{
		ID: "m1", Title: "Planning", Start: start, End: start.Add(time.Hour),
		RoomID: "room1", ParticipantIDs: []string{"alice"}, Status: application.MeetingStatusPending,
		CreatedAt: start, UpdatedAt: start,
	}
}

func TestMeetingHandler_Create_Admitted(t *testing.T) {
	meeting := sampleMeeting()
	svc := &fakeMeetingService{
		createFn: func(ctx context.Context, params application.CreateMeetingParams) (application.SchedulingResult, error) {
			if params.Input.RoomID != "room1" {
				t.Fatalf("unexpected input: %+v", params.Input)
			}
			return application.SchedulingResult{Success: true, Meeting: &meeting, SolverStatus: application.SolverStatusSatisfiable}, nil
		},
	}
	handler := NewMeetingHandler(svc, nil)

	body := `{"title":"Planning","start":"2030-01-01T09:00:00Z","end":"2030-01-01T10:00:00Z","room_id":"room1","participant_ids":["alice"]}`
	req := httptest.NewRequest(http.MethodPost, "/meetings", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp schedulingResultDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success || resp.Meeting == nil || resp.Meeting.ID != "m1" {
		t.Fatalf("unexpected result: %+v", resp)
	}
}

func TestMeetingHandler_Create_RejectedIsConflict(t *testing.T) {
	svc := &fakeMeetingService{
		createFn: func(ctx context.Context, params application.CreateMeetingParams) (application.SchedulingResult, error) {
			return application.SchedulingResult{
				Success:              false,
				SolverStatus:         application.SolverStatusUnsatisfiable,
				ConstraintViolations: []string{"capacity exceeded: 2 participants > room capacity 1"},
			}, nil
		},
	}
	handler := NewMeetingHandler(svc, nil)

	body := `{"title":"Too big","start":"2030-01-01T09:00:00Z","end":"2030-01-01T10:00:00Z","room_id":"room1","participant_ids":["alice","bob"]}`
	req := httptest.NewRequest(http.MethodPost, "/meetings", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a rejected proposal, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp schedulingResultDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Success || resp.SolverStatus != string(application.SolverStatusUnsatisfiable) {
		t.Fatalf("expected failed unsatisfiable result, got %+v", resp)
	}
}

func TestMeetingHandler_Create_BadBody(t *testing.T) {
	handler := NewMeetingHandler(&fakeMeetingService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/meetings", strings.NewReader(`not-json`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMeetingHandler_Get_MissingMeetingID(t *testing.T) {
	handler := NewMeetingHandler(&fakeMeetingService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/meetings/", nil)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing meeting id, got %d", rec.Code)
	}
}

func TestMeetingHandler_Get_NotFound(t *testing.T) {
	svc := &fakeMeetingService{
		getFn: func(ctx context.Context, meetingID string) (application.Meeting, error) {
			return application.Meeting{}, application.ErrNotFound
		},
	}
	handler := NewMeetingHandler(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/meetings/missing", nil)
	req = req.WithContext(ContextWithMeetingID(req.Context(), "missing"))
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMeetingHandler_Get_Found(t *testing.T) {
	meeting := sampleMeeting()
	svc := &fakeMeetingService{
		getFn: func(ctx context.Context, meetingID string) (application.Meeting, error) {
			if meetingID != "m1" {
				t.Fatalf("unexpected meeting id: %s", meetingID)
			}
			return meeting, nil
		},
	}
	handler := NewMeetingHandler(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/meetings/m1", nil)
	req = req.WithContext(ContextWithMeetingID(req.Context(), "m1"))
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMeetingHandler_Delete(t *testing.T) {
	var deletedID string
	svc := &fakeMeetingService{
		deleteFn: func(ctx context.Context, meetingID string) error {
			deletedID = meetingID
			return nil
		},
	}
	handler := NewMeetingHandler(svc, nil)

	req := httptest.NewRequest(http.MethodDelete, "/meetings/m1", nil)
	req = req.WithContext(ContextWithMeetingID(req.Context(), "m1"))
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if deletedID != "m1" {
		t.Fatalf("expected delete to be called with m1, got %q", deletedID)
	}
}

func TestMeetingHandler_ListByStatus_InvalidStatus(t *testing.T) {
	handler := NewMeetingHandler(&fakeMeetingService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/meetings/status/BOGUS", nil)
	rec := httptest.NewRecorder()

	handler.ListByStatus(rec, req, "BOGUS")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unrecognized status, got %d", rec.Code)
	}
}

func TestMeetingHandler_ListByStatus_Filters(t *testing.T) {
	var gotFilter application.MeetingFilter
	svc := &fakeMeetingService{
		listFn: func(ctx context.Context, filter application.MeetingFilter) ([]application.Meeting, error) {
			gotFilter = filter
			return []application.Meeting{sampleMeeting()}, nil
		},
	}
	handler := NewMeetingHandler(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/meetings/status/confirmed", nil)
	rec := httptest.NewRecorder()

	handler.ListByStatus(rec, req, "confirmed")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotFilter.Status != application.MeetingStatusConfirmed {
		t.Fatalf("expected CONFIRMED filter, got %+v", gotFilter)
	}
}

func TestMeetingHandler_ListByRange_InvalidTimestamp(t *testing.T) {
	handler := NewMeetingHandler(&fakeMeetingService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/meetings/range?start=not-a-time", nil)
	rec := httptest.NewRecorder()

	handler.ListByRange(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid range, got %d", rec.Code)
	}
}

func TestMeetingHandler_Confirm(t *testing.T) {
	confirmed := sampleMeeting()
	confirmed.Status = application.MeetingStatusConfirmed
	svc := &fakeMeetingService{
		transitionFn: func(ctx context.Context, meetingID string, newStatus application.MeetingStatus) (application.Meeting, error) {
			if newStatus != application.MeetingStatusConfirmed {
				t.Fatalf("expected CONFIRMED transition, got %s", newStatus)
			}
			return confirmed, nil
		},
	}
	handler := NewMeetingHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/meetings/m1/confirm", nil)
	req = req.WithContext(ContextWithMeetingID(req.Context(), "m1"))
	rec := httptest.NewRecorder()

	handler.Confirm(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMeetingHandler_Confirm_InvalidTransition(t *testing.T) {
	svc := &fakeMeetingService{
		transitionFn: func(ctx context.Context, meetingID string, newStatus application.MeetingStatus) (application.Meeting, error) {
			return application.Meeting{}, application.ErrInvalidTransition
		},
	}
	handler := NewMeetingHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/meetings/m1/confirm", nil)
	req = req.WithContext(ContextWithMeetingID(req.Context(), "m1"))
	rec := httptest.NewRecorder()

	handler.Confirm(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid transition, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMeetingHandler_Stats(t *testing.T) {
	svc := &fakeMeetingService{
		statisticsFn: func() application.VerificationStatistics {
			return application.VerificationStatistics{TotalEvents: 5, TotalViolations: 1, PendingMeetings: 2}
		},
	}
	handler := NewMeetingHandler(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/meetings/verification/stats", nil)
	rec := httptest.NewRecorder()

	handler.Stats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp statisticsDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalEvents != 5 || resp.PendingMeetings != 2 {
		t.Fatalf("unexpected stats: %+v", resp)
	}
}

func TestMeetingHandler_Violations(t *testing.T) {
	svc := &fakeMeetingService{
		violationsFn: func() []application.Violation {
			return []application.Violation{{PropertyName: "CAPACITY_EXCEEDED", Severity: "ERROR", MeetingID: "m1"}}
		},
	}
	handler := NewMeetingHandler(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/meetings/verification/violations", nil)
	rec := httptest.NewRecorder()

	handler.Violations(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp violationsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Violations) != 1 || resp.Violations[0].PropertyName != "CAPACITY_EXCEEDED" {
		t.Fatalf("unexpected violations: %+v", resp.Violations)
	}
}

func TestMeetingHandler_CheckPending(t *testing.T) {
	called := false
	svc := &fakeMeetingService{
		checkPendingFn: func() []application.Violation {
			called = true
			return nil
		},
	}
	handler := NewMeetingHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/meetings/verification/check-pending", nil)
	rec := httptest.NewRecorder()

	handler.CheckPending(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !called {
		t.Fatalf("expected CheckPending to be invoked on the service")
	}
}

func TestMeetingHandler_NilService(t *testing.T) {
	handler := NewMeetingHandler(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/meetings/verification/stats", nil)
	rec := httptest.NewRecorder()

	handler.Stats(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for nil service, got %d", rec.Code)
	}
}
