package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/meetingverify/internal/constraint"
	"github.com/example/meetingverify/internal/monitor"
	"github.com/example/meetingverify/internal/persistence"
)

// MeetingRepository captures the persistence interactions needed by the service.
type MeetingRepository interface {
	CreateMeeting(ctx context.Context, meeting Meeting) (Meeting, error)
	GetMeeting(ctx context.Context, id string) (Meeting, error)
	UpdateMeeting(ctx context.Context, meeting Meeting) (Meeting, error)
	DeleteMeeting(ctx context.Context, id string) error
	ListMeetings(ctx context.Context, filter MeetingFilter) ([]Meeting, error)
}

// RoomLookup exposes the room reads needed by the scheduling service.
type RoomLookup interface {
	GetRoom(ctx context.Context, id string) (Room, error)
}

// ParticipantLookup exposes the participant existence check needed by the
// scheduling service.
type ParticipantLookup interface {
	MissingParticipantIDs(ctx context.Context, ids []string) ([]string, error)
}

// defaultAvailabilityIncrement is the cursor step used by findAvailableSlots
// when the caller does not override it (spec §6 configuration:
// availabilitySlotIncrementMinutes, default 15).
const defaultAvailabilityIncrement = 15 * time.Minute

// SchedulingService orchestrates the meeting status machine (C4): validate,
// static-check via the constraint backend, persist, and notify the
// lifecycle monitor, in that strict order (spec §4.3, §5).
type SchedulingService struct {
	meetings    MeetingRepository
	rooms       RoomLookup
	participants ParticipantLookup
	backend     *constraint.Backend
	monitor     *monitor.Monitor
	idGenerator func() string
	now         func() time.Time
	increment   time.Duration
	logger      *slog.Logger
}

// NewSchedulingService wires dependencies for meeting operations.
func NewSchedulingService(
	meetings MeetingRepository,
	rooms RoomLookup,
	participants ParticipantLookup,
	backend *constraint.Backend,
	mon *monitor.Monitor,
	idGenerator func() string,
	now func() time.Time,
) *SchedulingService {
	return NewSchedulingServiceWithLogger(meetings, rooms, participants, backend, mon, idGenerator, now, nil)
}

// NewSchedulingServiceWithLogger wires dependencies and allows specifying a logger.
func NewSchedulingServiceWithLogger(
	meetings MeetingRepository,
	rooms RoomLookup,
	participants ParticipantLookup,
	backend *constraint.Backend,
	mon *monitor.Monitor,
	idGenerator func() string,
	now func() time.Time,
	logger *slog.Logger,
) *SchedulingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &SchedulingService{
		meetings:     meetings,
		rooms:        rooms,
		participants: participants,
		backend:      backend,
		monitor:      mon,
		idGenerator:  idGenerator,
		now:          now,
		increment:    defaultAvailabilityIncrement,
		logger:       defaultLogger(logger),
	}
}

// SetAvailabilityIncrement overrides the cursor step used by
// findAvailableSlots.
func (s *SchedulingService) SetAvailabilityIncrement(d time.Duration) {
	if d > 0 {
		s.increment = d
	}
}

func (s *SchedulingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SchedulingService", operation, attrs...)
}

// CreateMeeting implements spec §4.3 createMeeting.
func (s *SchedulingService) CreateMeeting(ctx context.Context, params CreateMeetingParams) (result SchedulingResult, err error) {
	if s == nil || s.meetings == nil {
		err = fmt.Errorf("SchedulingService is not configured")
		return
	}

	input := params.Input
	logger := s.loggerWith(ctx, "CreateMeeting", "room_id", input.RoomID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create meeting", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("success", result.Success, "solver_status", string(result.SolverStatus)).
			InfoContext(ctx, "create meeting evaluated")
	}()

	// 1. Reject shape errors early.
	if !input.Start.Before(input.End) {
		result = failureResult(SolverStatusUnsatisfiable, []string{"Invalid time range"}, "start must be before end", 0)
		return result, nil
	}

	// 2. Load Room; reject if unavailable.
	var room Room
	room, err = s.rooms.GetRoom(ctx, input.RoomID)
	if err != nil {
		err = mapMeetingRepoError(err)
		return
	}
	if !room.Available {
		err = ErrRoomUnavailable
		return
	}

	// 3. Resolve participant set; missing ids are an error.
	participantIDs := uniqueStrings(input.ParticipantIDs)
	if len(participantIDs) == 0 {
		vErr := &ValidationError{}
		vErr.add("participant_ids", "at least one participant is required")
		err = vErr
		return
	}
	if err = s.ensureParticipantsExist(ctx, participantIDs); err != nil {
		return
	}

	// 4. Build SchedulingConstraint with meetingId = null.
	proposed := constraint.SchedulingConstraint{
		RoomID:         input.RoomID,
		RoomCapacity:   room.Capacity,
		Start:          input.Start,
		End:            input.End,
		ParticipantIDs: participantIDs,
	}

	// 5. Snapshot confirmed meetings.
	var existing []constraint.ExistingMeeting
	existing, err = s.confirmedSnapshot(ctx)
	if err != nil {
		return
	}

	// 6. Invoke the constraint backend.
	decision := s.backend.CheckFeasibility(ctx, proposed, existing)
	if !decision.SAT() {
		result = failureResult(toSolverStatus(decision.Status), decision.Violations, decision.Message, decision.SolvingTimeMs)
		return result, nil
	}

	// 7. Persist with status = PENDING.
	createdAt := s.now()
	meeting := Meeting{
		ID:             s.idGenerator(),
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		Start:          input.Start,
		End:            input.End,
		RoomID:         input.RoomID,
		ParticipantIDs: participantIDs,
		Status:         MeetingStatusPending,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}

	var persisted Meeting
	persisted, err = s.meetings.CreateMeeting(ctx, meeting)
	if err != nil {
		err = mapMeetingRepoError(err)
		return
	}

	// 8. Notify the monitor; attach any returned violations as warnings.
	warnings := s.notifyCreate(persisted, room.Capacity)

	result = successResult(persisted, "meeting admitted", decision.SolvingTimeMs)
	result.RuntimeWarnings = warnings
	return result, nil
}

func (s *SchedulingService) notifyCreate(meeting Meeting, roomCapacity int) []string {
	if s.monitor == nil {
		return nil
	}
	raised := s.monitor.OnCreate(monitor.MeetingEvent{
		Tag:          monitor.EventCreate,
		MeetingID:    meeting.ID,
		RoomID:       meeting.RoomID,
		Start:        meeting.Start,
		End:          meeting.End,
		Attendees:    len(meeting.ParticipantIDs),
		RoomCapacity: roomCapacity,
		NewStatus:    string(meeting.Status),
	})
	return violationMessages(raised)
}

func violationMessages(violations []monitor.PropertyViolation) []string {
	if len(violations) == 0 {
		return nil
	}
	out := make([]string, len(violations))
	for i, v := range violations {
		out[i] = fmt.Sprintf("%s: %s (%s)", v.PropertyName, v.Description, v.Details)
	}
	return out
}

// UpdateMeeting implements spec §4.3 updateMeeting.
func (s *SchedulingService) UpdateMeeting(ctx context.Context, params UpdateMeetingParams) (result SchedulingResult, err error) {
	if s == nil || s.meetings == nil {
		err = fmt.Errorf("SchedulingService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateMeeting", "meeting_id", params.MeetingID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update meeting", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("success", result.Success, "solver_status", string(result.SolverStatus)).
			InfoContext(ctx, "update meeting evaluated")
	}()

	var existing Meeting
	existing, err = s.meetings.GetMeeting(ctx, params.MeetingID)
	if err != nil {
		err = mapMeetingRepoError(err)
		return
	}

	if existing.Status == MeetingStatusCompleted || existing.Status == MeetingStatusCancelled {
		err = ErrInvalidTransition
		return
	}

	input := params.Input
	if !input.Start.Before(input.End) {
		result = failureResult(SolverStatusUnsatisfiable, []string{"Invalid time range"}, "start must be before end", 0)
		return result, nil
	}

	var room Room
	room, err = s.rooms.GetRoom(ctx, input.RoomID)
	if err != nil {
		err = mapMeetingRepoError(err)
		return
	}
	if !room.Available {
		err = ErrRoomUnavailable
		return
	}

	participantIDs := uniqueStrings(input.ParticipantIDs)
	if len(participantIDs) == 0 {
		vErr := &ValidationError{}
		vErr.add("participant_ids", "at least one participant is required")
		err = vErr
		return
	}
	if err = s.ensureParticipantsExist(ctx, participantIDs); err != nil {
		return
	}

	proposed := constraint.SchedulingConstraint{
		MeetingID:      existing.ID,
		RoomID:         input.RoomID,
		RoomCapacity:   room.Capacity,
		Start:          input.Start,
		End:            input.End,
		ParticipantIDs: participantIDs,
	}

	var snapshot []constraint.ExistingMeeting
	snapshot, err = s.confirmedSnapshot(ctx)
	if err != nil {
		return
	}

	decision := s.backend.CheckFeasibility(ctx, proposed, snapshot)
	if !decision.SAT() {
		result = failureResult(toSolverStatus(decision.Status), decision.Violations, decision.Message, decision.SolvingTimeMs)
		return result, nil
	}

	updated := existing
	updated.Title = strings.TrimSpace(input.Title)
	updated.Description = input.Description
	updated.Start = input.Start
	updated.End = input.End
	updated.RoomID = input.RoomID
	updated.ParticipantIDs = participantIDs
	updated.UpdatedAt = s.now()

	var persisted Meeting
	persisted, err = s.meetings.UpdateMeeting(ctx, updated)
	if err != nil {
		err = mapMeetingRepoError(err)
		return
	}

	if s.monitor != nil {
		s.monitor.OnUpdate(monitor.MeetingEvent{
			Tag:       monitor.EventUpdate,
			MeetingID: persisted.ID,
			RoomID:    persisted.RoomID,
			Start:     persisted.Start,
			End:       persisted.End,
			NewStatus: string(persisted.Status),
		})
	}

	result = successResult(persisted, "meeting updated", decision.SolvingTimeMs)
	return result, nil
}

// validTransitions encodes the status machine from spec §3.
var validTransitions = map[MeetingStatus]map[MeetingStatus]bool{
	MeetingStatusPending: {
		MeetingStatusConfirmed: true,
		MeetingStatusRejected:  true,
	},
	MeetingStatusConfirmed: {
		MeetingStatusCancelled: true,
		MeetingStatusCompleted: true,
	},
}

// Transition implements spec §4.3 transition(id, newStatus).
func (s *SchedulingService) Transition(ctx context.Context, meetingID string, newStatus MeetingStatus) (meeting Meeting, err error) {
	if s == nil || s.meetings == nil {
		err = fmt.Errorf("SchedulingService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "Transition", "meeting_id", meetingID, "new_status", string(newStatus))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to transition meeting", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "meeting transitioned")
	}()

	var existing Meeting
	existing, err = s.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		err = mapMeetingRepoError(err)
		return
	}

	if !validTransitions[existing.Status][newStatus] {
		err = ErrInvalidTransition
		return
	}

	priorStatus := existing.Status
	updated := existing
	updated.Status = newStatus
	updated.UpdatedAt = s.now()

	meeting, err = s.meetings.UpdateMeeting(ctx, updated)
	if err != nil {
		err = mapMeetingRepoError(err)
		return
	}

	s.notifyTransition(meeting, priorStatus, newStatus)
	return
}

func (s *SchedulingService) notifyTransition(meeting Meeting, prior, next MeetingStatus) {
	if s.monitor == nil {
		return
	}
	evt := monitor.MeetingEvent{
		MeetingID:   meeting.ID,
		RoomID:      meeting.RoomID,
		Start:       meeting.Start,
		End:         meeting.End,
		PriorStatus: string(prior),
		NewStatus:   string(next),
	}
	switch next {
	case MeetingStatusConfirmed:
		evt.Tag = monitor.EventConfirm
		s.monitor.OnConfirm(evt)
	case MeetingStatusRejected:
		evt.Tag = monitor.EventReject
		s.monitor.OnReject(evt)
	case MeetingStatusCancelled:
		evt.Tag = monitor.EventCancel
		s.monitor.OnCancel(evt)
	case MeetingStatusCompleted:
		evt.Tag = monitor.EventComplete
		s.monitor.OnComplete(evt)
	}
}

// DeleteMeeting implements spec §4.3 deleteMeeting.
func (s *SchedulingService) DeleteMeeting(ctx context.Context, meetingID string) error {
	if s == nil || s.meetings == nil {
		return fmt.Errorf("SchedulingService is not configured")
	}

	logger := s.loggerWith(ctx, "DeleteMeeting", "meeting_id", meetingID)

	existing, err := s.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		err = mapMeetingRepoError(err)
		logger.ErrorContext(ctx, "failed to load meeting for deletion", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if s.monitor != nil {
		raised := s.monitor.OnDelete(monitor.MeetingEvent{
			Tag:         monitor.EventDelete,
			MeetingID:   existing.ID,
			RoomID:      existing.RoomID,
			PriorStatus: string(existing.Status),
		})
		var severe []string
		for _, v := range raised {
			if v.Severity.AtLeast(monitor.SeverityError) {
				severe = append(severe, v.Description)
			}
		}
		if len(severe) > 0 {
			schedErr := &SchedulingException{Violations: severe}
			logger.ErrorContext(ctx, "monitor refused delete", "error", schedErr, "error_kind", ErrorKind(schedErr))
			return schedErr
		}
	}

	if err := s.meetings.DeleteMeeting(ctx, meetingID); err != nil {
		err = mapMeetingRepoError(err)
		logger.ErrorContext(ctx, "failed to delete meeting", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if s.monitor != nil {
		s.monitor.RemoveViolationsForMeeting(meetingID)
	}

	logger.InfoContext(ctx, "meeting deleted")
	return nil
}

// GetMeeting loads a single meeting.
func (s *SchedulingService) GetMeeting(ctx context.Context, meetingID string) (Meeting, error) {
	if s == nil || s.meetings == nil {
		return Meeting{}, fmt.Errorf("SchedulingService is not configured")
	}
	meeting, err := s.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return Meeting{}, mapMeetingRepoError(err)
	}
	return meeting, nil
}

// ListMeetings enumerates meetings matching filter, ordered by start time.
func (s *SchedulingService) ListMeetings(ctx context.Context, filter MeetingFilter) ([]Meeting, error) {
	if s == nil || s.meetings == nil {
		return nil, fmt.Errorf("SchedulingService is not configured")
	}
	meetings, err := s.meetings.ListMeetings(ctx, filter)
	if err != nil {
		return nil, mapMeetingRepoError(err)
	}
	ordered := make([]Meeting, len(meetings))
	copy(ordered, meetings)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start.Equal(ordered[j].Start) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].Start.Before(ordered[j].Start)
	})
	return ordered, nil
}

// FindAvailableSlots implements spec §4.3 findAvailableSlots (C5).
func (s *SchedulingService) FindAvailableSlots(ctx context.Context, roomID string, duration time.Duration, searchStart, searchEnd time.Time) ([]AvailableSlot, error) {
	if s == nil || s.meetings == nil {
		return nil, fmt.Errorf("SchedulingService is not configured")
	}

	meetings, err := s.meetings.ListMeetings(ctx, MeetingFilter{Status: MeetingStatusConfirmed, RoomID: roomID})
	if err != nil {
		return nil, mapMeetingRepoError(err)
	}
	sort.Slice(meetings, func(i, j int) bool { return meetings[i].Start.Before(meetings[j].Start) })

	increment := s.increment
	if increment <= 0 {
		increment = defaultAvailabilityIncrement
	}

	var slots []AvailableSlot
	cursor := roundUpToGrid(searchStart, increment)
	for !cursor.Add(duration).After(searchEnd) {
		candidateEnd := cursor.Add(duration)
		conflict, ok := firstOverlap(meetings, cursor, candidateEnd)
		if !ok {
			slots = append(slots, AvailableSlot{Start: cursor, End: candidateEnd})
			cursor = cursor.Add(increment)
			continue
		}
		cursor = roundUpToGrid(conflict.End, increment)
	}
	return slots, nil
}

func firstOverlap(meetings []Meeting, start, end time.Time) (Meeting, bool) {
	for _, m := range meetings {
		if start.Before(m.End) && m.Start.Before(end) {
			return m, true
		}
	}
	return Meeting{}, false
}

func roundUpToGrid(t time.Time, increment time.Duration) time.Time {
	if increment <= 0 {
		return t
	}
	rem := t.Sub(t.Truncate(increment))
	if rem == 0 {
		return t
	}
	return t.Add(increment - rem)
}

// VerifyBatch implements spec §4.3 verifyBatch: a pure planning query against
// the confirmed snapshot, delegated to the constraint backend's batch
// variant. Nothing is persisted.
func (s *SchedulingService) VerifyBatch(ctx context.Context, proposals []constraint.SchedulingConstraint) (SchedulingResult, error) {
	if s == nil || s.backend == nil {
		return SchedulingResult{}, fmt.Errorf("SchedulingService is not configured")
	}
	existing, err := s.confirmedSnapshot(ctx)
	if err != nil {
		return SchedulingResult{}, err
	}
	decision := s.backend.CheckBatch(ctx, proposals, existing)
	if !decision.SAT() {
		return failureResult(toSolverStatus(decision.Status), decision.Violations, decision.Message, decision.SolvingTimeMs), nil
	}
	result := SchedulingResult{
		Success:       true,
		SolverStatus:  SolverStatusSatisfiable,
		Explanation:   "batch admissible",
		SolvingTimeMs: decision.SolvingTimeMs,
	}
	return result, nil
}

// GetStatistics exposes the monitor's verification statistics.
func (s *SchedulingService) GetStatistics() VerificationStatistics {
	if s.monitor == nil {
		return VerificationStatistics{}
	}
	stats := s.monitor.GetStatistics()
	return VerificationStatistics{
		TotalEvents:      stats.TotalEvents,
		TotalViolations:  stats.TotalViolations,
		PendingMeetings:  stats.PendingMeetings,
		ViolationsByName: stats.ViolationsByName,
	}
}

// GetViolations exposes the monitor's recorded violations.
func (s *SchedulingService) GetViolations() []Violation {
	if s.monitor == nil {
		return nil
	}
	return toApplicationViolations(s.monitor.GetViolations())
}

// CheckPending forces the monitor's periodic pending check (every PENDING
// meeting whose scheduled start has already passed) and returns any new
// violations raised.
func (s *SchedulingService) CheckPending() []Violation {
	if s.monitor == nil {
		return nil
	}
	return toApplicationViolations(s.monitor.CheckPending())
}

func toApplicationViolations(violations []monitor.PropertyViolation) []Violation {
	if len(violations) == 0 {
		return nil
	}
	out := make([]Violation, len(violations))
	for i, v := range violations {
		out[i] = Violation{
			PropertyName: v.PropertyName,
			Description:  v.Description,
			Severity:     string(v.Severity),
			MeetingID:    v.MeetingID,
			DetectedAt:   v.DetectedAt,
			Details:      v.Details,
		}
	}
	return out
}

func (s *SchedulingService) confirmedSnapshot(ctx context.Context) ([]constraint.ExistingMeeting, error) {
	meetings, err := s.meetings.ListMeetings(ctx, MeetingFilter{Status: MeetingStatusConfirmed})
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	existing := make([]constraint.ExistingMeeting, len(meetings))
	for i, m := range meetings {
		existing[i] = constraint.ExistingMeeting{
			MeetingID:      m.ID,
			RoomID:         m.RoomID,
			Start:          m.Start,
			End:            m.End,
			ParticipantIDs: m.ParticipantIDs,
		}
	}
	return existing, nil
}

func (s *SchedulingService) ensureParticipantsExist(ctx context.Context, ids []string) error {
	if s.participants == nil {
		return nil
	}
	missing, err := s.participants.MissingParticipantIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}
	vErr := &ValidationError{}
	vErr.add("participant_ids", fmt.Sprintf("unknown participant ids: %s", strings.Join(missing, ", ")))
	return vErr
}

func toSolverStatus(status constraint.Status) SolverStatus {
	switch status {
	case constraint.StatusSatisfiable:
		return SolverStatusSatisfiable
	case constraint.StatusUnsatisfiable:
		return SolverStatusUnsatisfiable
	default:
		return SolverStatusError
	}
}

func mapMeetingRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("time", "start must be before end")
		return vErr
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("participants", "related records are missing")
		return vErr
	}
	return err
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	return result
}
