package application

import "time"

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name        string
	Capacity    int
	Location    *string
	Description *string
	Available   bool
}

// Room represents a catalog entry for a physical meeting room.
type Room struct {
	ID          string
	Name        string
	Capacity    int
	Location    *string
	Description *string
	Available   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Input RoomInput
}

// UpdateRoomParams wraps the data required to update a room.
type UpdateRoomParams struct {
	RoomID string
	Input  RoomInput
}

// ParticipantInput captures caller provided participant attributes.
type ParticipantInput struct {
	Name       string
	Email      string
	Department *string
}

// Participant represents a meeting attendee.
type Participant struct {
	ID         string
	Name       string
	Email      string
	Department *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateParticipantParams wraps the data required to create a participant.
type CreateParticipantParams struct {
	Input ParticipantInput
}

// UpdateParticipantParams wraps the data required to update a participant.
type UpdateParticipantParams struct {
	ParticipantID string
	Input         ParticipantInput
}

// MeetingStatus enumerates the meeting lifecycle states (spec §3).
type MeetingStatus string

const (
	MeetingStatusPending   MeetingStatus = "PENDING"
	MeetingStatusConfirmed MeetingStatus = "CONFIRMED"
	MeetingStatusRejected  MeetingStatus = "REJECTED"
	MeetingStatusCancelled MeetingStatus = "CANCELLED"
	MeetingStatusCompleted MeetingStatus = "COMPLETED"
)

// terminal reports whether a meeting in this status can no longer transition.
func (s MeetingStatus) terminal() bool {
	switch s {
	case MeetingStatusRejected, MeetingStatusCancelled, MeetingStatusCompleted:
		return true
	default:
		return false
	}
}

// live reports whether a meeting in this status still occupies its room and
// participants' calendars (spec GLOSSARY: "Live meeting").
func (s MeetingStatus) live() bool {
	return s == MeetingStatusPending || s == MeetingStatusConfirmed
}

// MeetingInput captures caller provided meeting fields for create/update.
type MeetingInput struct {
	Title          string
	Description    *string
	Start          time.Time
	End            time.Time
	RoomID         string
	ParticipantIDs []string
}

// Meeting represents a persisted, scheduled meeting.
type Meeting struct {
	ID             string
	Title          string
	Description    *string
	Start          time.Time
	End            time.Time
	RoomID         string
	ParticipantIDs []string
	Status         MeetingStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateMeetingParams wraps the data required to create a meeting.
type CreateMeetingParams struct {
	Input MeetingInput
}

// UpdateMeetingParams wraps the data required to update an existing meeting.
type UpdateMeetingParams struct {
	MeetingID string
	Input     MeetingInput
}

// MeetingFilter narrows a meeting listing query.
type MeetingFilter struct {
	Status      MeetingStatus
	RoomID      string
	StartsAfter *time.Time
	EndsBefore  *time.Time
}

// SolverStatus mirrors constraint.Status at the application boundary so
// that HTTP and persistence never need to import the constraint package
// directly (spec §4.4).
type SolverStatus string

const (
	SolverStatusSatisfiable   SolverStatus = "SATISFIABLE"
	SolverStatusUnsatisfiable SolverStatus = "UNSATISFIABLE"
	SolverStatusError         SolverStatus = "ERROR"
)

// SchedulingResult is the immutable report crossing the API boundary for
// every create/update attempt (spec §4.4, C6).
type SchedulingResult struct {
	Success              bool
	Meeting              *Meeting
	ConstraintViolations []string
	RuntimeWarnings      []string
	SolverStatus         SolverStatus
	Explanation          string
	SolvingTimeMs        int64
}

// successResult builds a SchedulingResult for an admitted meeting.
func successResult(meeting Meeting, explanation string, solvingTimeMs int64) SchedulingResult {
	return SchedulingResult{
		Success:       true,
		Meeting:       &meeting,
		SolverStatus:  SolverStatusSatisfiable,
		Explanation:   explanation,
		SolvingTimeMs: solvingTimeMs,
	}
}

// failureResult builds a SchedulingResult for a rejected proposal.
func failureResult(status SolverStatus, violations []string, explanation string, solvingTimeMs int64) SchedulingResult {
	return SchedulingResult{
		Success:              false,
		ConstraintViolations: violations,
		SolverStatus:         status,
		Explanation:          explanation,
		SolvingTimeMs:        solvingTimeMs,
	}
}

// AvailableSlot is a free interval returned by the availability finder (C5).
type AvailableSlot struct {
	Start time.Time
	End   time.Time
}

// VerificationStatistics mirrors monitor.Statistics at the application
// boundary.
type VerificationStatistics struct {
	TotalEvents      int
	TotalViolations  int
	PendingMeetings  int
	ViolationsByName map[string]int
}

// Violation mirrors monitor.PropertyViolation at the application boundary.
type Violation struct {
	PropertyName string
	Description  string
	Severity     string
	MeetingID    string
	DetectedAt   time.Time
	Details      string
}
