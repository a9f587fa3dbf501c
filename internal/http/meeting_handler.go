package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/meetingverify/internal/application"
)

// meetingService defines the subset of scheduling service operations
// required by the HTTP layer (spec §4.3, §6).
type meetingService interface {
	CreateMeeting(ctx context.Context, params application.CreateMeetingParams) (application.SchedulingResult, error)
	UpdateMeeting(ctx context.Context, params application.UpdateMeetingParams) (application.SchedulingResult, error)
	Transition(ctx context.Context, meetingID string, newStatus application.MeetingStatus) (application.Meeting, error)
	DeleteMeeting(ctx context.Context, meetingID string) error
	GetMeeting(ctx context.Context, meetingID string) (application.Meeting, error)
	ListMeetings(ctx context.Context, filter application.MeetingFilter) ([]application.Meeting, error)
	GetStatistics() application.VerificationStatistics
	GetViolations() []application.Violation
	CheckPending() []application.Violation
}

// MeetingHandler exposes the meeting endpoints of the verification core's
// HTTP surface (spec §6).
type MeetingHandler struct {
	service   meetingService
	responder responder
	logger    *slog.Logger
}

// NewMeetingHandler wires dependencies for meeting endpoints.
func NewMeetingHandler(service meetingService, logger *slog.Logger) *MeetingHandler {
	base := defaultLogger(logger)
	return &MeetingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *MeetingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "MeetingHandler", operation, attrs...)
}

// Create handles POST /api/meetings.
func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req meetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode meeting request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "room_id", req.RoomID)

	result, err := h.service.CreateMeeting(r.Context(), application.CreateMeetingParams{Input: req.toInput()})
	if err != nil {
		logger.ErrorContext(r.Context(), "meeting creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusCreated
	if !result.Success {
		status = http.StatusConflict
	}
	logger.With("success", result.Success).InfoContext(r.Context(), "meeting create evaluated")
	h.responder.writeJSON(r.Context(), w, status, toSchedulingResultDTO(result))
}

// Update handles PUT /api/meetings/{id}.
func (h *MeetingHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}

	var req meetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "meeting_id", meetingID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode meeting update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "meeting_id", meetingID)

	result, err := h.service.UpdateMeeting(r.Context(), application.UpdateMeetingParams{
		MeetingID: meetingID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "meeting update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusConflict
	}
	logger.With("success", result.Success).InfoContext(r.Context(), "meeting update evaluated")
	h.responder.writeJSON(r.Context(), w, status, toSchedulingResultDTO(result))
}

// Delete handles DELETE /api/meetings/{id}.
func (h *MeetingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}

	logger := h.log(r.Context(), "Delete", "meeting_id", meetingID)
	if err := h.service.DeleteMeeting(r.Context(), meetingID); err != nil {
		logger.ErrorContext(r.Context(), "meeting delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "meeting deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Get handles GET /api/meetings/{id}.
func (h *MeetingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}

	meeting, err := h.service.GetMeeting(r.Context(), meetingID)
	if err != nil {
		h.log(r.Context(), "Get", "meeting_id", meetingID).ErrorContext(r.Context(), "meeting lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, meetingResponse{Meeting: toMeetingDTO(meeting)})
}

// List handles GET /api/meetings.
func (h *MeetingHandler) List(w http.ResponseWriter, r *http.Request) {
	h.listWithFilter(w, r, application.MeetingFilter{})
}

// ListByStatus handles GET /api/meetings/status/{status}.
func (h *MeetingHandler) ListByStatus(w http.ResponseWriter, r *http.Request, status string) {
	meetingStatus, ok := parseMeetingStatus(status)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidStatus)
		return
	}
	h.listWithFilter(w, r, application.MeetingFilter{Status: meetingStatus})
}

// ListByRoom handles GET /api/meetings/room/{roomId}.
func (h *MeetingHandler) ListByRoom(w http.ResponseWriter, r *http.Request, roomID string) {
	if strings.TrimSpace(roomID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}
	h.listWithFilter(w, r, application.MeetingFilter{RoomID: roomID})
}

// ListByRange handles GET /api/meetings/range?start&end.
func (h *MeetingHandler) ListByRange(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := application.MeetingFilter{}

	if raw := strings.TrimSpace(query.Get("start")); raw != "" {
		start, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRange)
			return
		}
		start = start.UTC()
		filter.StartsAfter = &start
	}
	if raw := strings.TrimSpace(query.Get("end")); raw != "" {
		end, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRange)
			return
		}
		end = end.UTC()
		filter.EndsBefore = &end
	}

	h.listWithFilter(w, r, filter)
}

func (h *MeetingHandler) listWithFilter(w http.ResponseWriter, r *http.Request, filter application.MeetingFilter) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List", "status", string(filter.Status), "room_id", filter.RoomID)
	meetings, err := h.service.ListMeetings(r.Context(), filter)
	if err != nil {
		logger.ErrorContext(r.Context(), "meeting list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(meetings)).InfoContext(r.Context(), "meetings listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listMeetingsResponse{Meetings: toMeetingDTOs(meetings)})
}

// Confirm handles POST /api/meetings/{id}/confirm.
func (h *MeetingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, application.MeetingStatusConfirmed)
}

// Reject handles POST /api/meetings/{id}/reject.
func (h *MeetingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, application.MeetingStatusRejected)
}

// Cancel handles POST /api/meetings/{id}/cancel.
func (h *MeetingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, application.MeetingStatusCancelled)
}

func (h *MeetingHandler) transition(w http.ResponseWriter, r *http.Request, newStatus application.MeetingStatus) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}

	logger := h.log(r.Context(), "Transition", "meeting_id", meetingID, "new_status", string(newStatus))
	meeting, err := h.service.Transition(r.Context(), meetingID, newStatus)
	if err != nil {
		logger.ErrorContext(r.Context(), "meeting transition failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "meeting transitioned")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, meetingResponse{Meeting: toMeetingDTO(meeting)})
}

// Stats handles GET /api/meetings/verification/stats.
func (h *MeetingHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	stats := h.service.GetStatistics()
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toStatisticsDTO(stats))
}

// Violations handles GET /api/meetings/verification/violations.
func (h *MeetingHandler) Violations(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	violations := h.service.GetViolations()
	h.responder.writeJSON(r.Context(), w, http.StatusOK, violationsResponse{Violations: toViolationDTOs(violations)})
}

// CheckPending handles POST /api/meetings/verification/check-pending.
func (h *MeetingHandler) CheckPending(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	violations := h.service.CheckPending()
	h.log(r.Context(), "CheckPending", "result_count", len(violations)).
		InfoContext(r.Context(), "pending check executed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, violationsResponse{Violations: toViolationDTOs(violations)})
}

func parseMeetingStatus(raw string) (application.MeetingStatus, bool) {
	status := application.MeetingStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case application.MeetingStatusPending,
		application.MeetingStatusConfirmed,
		application.MeetingStatusRejected,
		application.MeetingStatusCancelled,
		application.MeetingStatusCompleted:
		return status, true
	default:
		return "", false
	}
}

type meetingRequest struct {
	Title          string   `json:"title"`
	Description    *string  `json:"description"`
	Start          string   `json:"start"`
	End            string   `json:"end"`
	RoomID         string   `json:"room_id"`
	ParticipantIDs []string `json:"participant_ids"`
}

func (r meetingRequest) toInput() application.MeetingInput {
	return application.MeetingInput{
		Title:          r.Title,
		Description:    r.Description,
		Start:          parseTime(r.Start),
		End:            parseTime(r.End),
		RoomID:         strings.TrimSpace(r.RoomID),
		ParticipantIDs: r.ParticipantIDs,
	}
}

func parseTime(value string) time.Time {
	if strings.TrimSpace(value) == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts.UTC()
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.UTC()
	}
	return time.Time{}
}

type meetingResponse struct {
	Meeting meetingDTO `json:"meeting"`
}

type listMeetingsResponse struct {
	Meetings []meetingDTO `json:"meetings"`
}

type meetingDTO struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    *string  `json:"description,omitempty"`
	Start          string   `json:"start"`
	End            string   `json:"end"`
	RoomID         string   `json:"room_id"`
	ParticipantIDs []string `json:"participant_ids"`
	Status         string   `json:"status"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

func toMeetingDTO(meeting application.Meeting) meetingDTO {
	return meetingDTO{
		ID:             meeting.ID,
		Title:          meeting.Title,
		Description:    meeting.Description,
		Start:          meeting.Start.UTC().Format(time.RFC3339Nano),
		End:            meeting.End.UTC().Format(time.RFC3339Nano),
		RoomID:         meeting.RoomID,
		ParticipantIDs: append([]string(nil), meeting.ParticipantIDs...),
		Status:         string(meeting.Status),
		CreatedAt:      meeting.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:      meeting.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toMeetingDTOs(meetings []application.Meeting) []meetingDTO {
	if len(meetings) == 0 {
		return nil
	}
	out := make([]meetingDTO, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, toMeetingDTO(m))
	}
	return out
}

type schedulingResultDTO struct {
	Success              bool        `json:"success"`
	Meeting              *meetingDTO `json:"meeting,omitempty"`
	ConstraintViolations []string    `json:"constraint_violations,omitempty"`
	RuntimeWarnings      []string    `json:"runtime_warnings,omitempty"`
	SolverStatus         string      `json:"solver_status"`
	Explanation          string      `json:"explanation,omitempty"`
	SolvingTimeMs        int64       `json:"solving_time_ms"`
}

func toSchedulingResultDTO(result application.SchedulingResult) schedulingResultDTO {
	dto := schedulingResultDTO{
		Success:              result.Success,
		ConstraintViolations: result.ConstraintViolations,
		RuntimeWarnings:      result.RuntimeWarnings,
		SolverStatus:         string(result.SolverStatus),
		Explanation:          result.Explanation,
		SolvingTimeMs:        result.SolvingTimeMs,
	}
	if result.Meeting != nil {
		meetingDTO := toMeetingDTO(*result.Meeting)
		dto.Meeting = &meetingDTO
	}
	return dto
}

type violationsResponse struct {
	Violations []violationDTO `json:"violations"`
}

type violationDTO struct {
	PropertyName string `json:"property_name"`
	Description  string `json:"description"`
	Severity     string `json:"severity"`
	MeetingID    string `json:"meeting_id"`
	DetectedAt   string `json:"detected_at"`
	Details      string `json:"details,omitempty"`
}

func toViolationDTOs(violations []application.Violation) []violationDTO {
	if len(violations) == 0 {
		return nil
	}
	out := make([]violationDTO, 0, len(violations))
	for _, v := range violations {
		out = append(out, violationDTO{
			PropertyName: v.PropertyName,
			Description:  v.Description,
			Severity:     v.Severity,
			MeetingID:    v.MeetingID,
			DetectedAt:   v.DetectedAt.UTC().Format(time.RFC3339Nano),
			Details:      v.Details,
		})
	}
	return out
}

type statisticsDTO struct {
	TotalEvents      int            `json:"total_events"`
	TotalViolations  int            `json:"total_violations"`
	PendingMeetings  int            `json:"pending_meetings"`
	ViolationsByName map[string]int `json:"violations_by_name,omitempty"`
}

func toStatisticsDTO(stats application.VerificationStatistics) statisticsDTO {
	return statisticsDTO{
		TotalEvents:      stats.TotalEvents,
		TotalViolations:  stats.TotalViolations,
		PendingMeetings:  stats.PendingMeetings,
		ViolationsByName: stats.ViolationsByName,
	}
}
