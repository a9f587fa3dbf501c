package persistence

import "time"

// Room represents a meeting room catalog entry.
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

// Participant represents an employee or external attendee that can be booked
// into meetings.
type Participant struct {
	ID         string
	Name       string
	Email      string
	Department *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MeetingStatus mirrors application.MeetingStatus for the persisted record.
type MeetingStatus string

const (
	MeetingStatusPending   MeetingStatus = "PENDING"
	MeetingStatusConfirmed MeetingStatus = "CONFIRMED"
	MeetingStatusRejected  MeetingStatus = "REJECTED"
	MeetingStatusCancelled MeetingStatus = "CANCELLED"
	MeetingStatusCompleted MeetingStatus = "COMPLETED"
)

// Meeting represents a scheduled meeting as stored in persistence.
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
