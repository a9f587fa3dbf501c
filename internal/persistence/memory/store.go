// Package memory provides a thread-safe in-memory implementation of the
// persistence repositories. The production wiring in cmd/scheduler always
// uses the SQLite repositories and does not fall back to this store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/example/meetingverify/internal/persistence"
)

// Store implements persistence.RoomRepository, persistence.ParticipantRepository,
// and persistence.MeetingRepository backed by in-process maps guarded by a
// single mutex, mirroring the locking granularity of the SQLite connection
// pool's transactional guarantees without a database underneath.
type Store struct {
	mu           sync.RWMutex
	rooms        map[string]persistence.Room
	participants map[string]persistence.Participant
	meetings     map[string]persistence.Meeting
}

// New constructs an empty Store.
func New() *Store {
	return &Store{
		rooms:        make(map[string]persistence.Room),
		participants: make(map[string]persistence.Participant),
		meetings:     make(map[string]persistence.Meeting),
	}
}

// CreateRoom inserts a new room, failing if the id or name already exists.
func (s *Store) CreateRoom(ctx context.Context, room persistence.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[room.ID]; exists {
		return persistence.ErrDuplicate
	}
	for _, existing := range s.rooms {
		if existing.Name == room.Name {
			return persistence.ErrDuplicate
		}
	}
	s.rooms[room.ID] = room
	return nil
}

// UpdateRoom replaces an existing room record.
func (s *Store) UpdateRoom(ctx context.Context, room persistence.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[room.ID]; !exists {
		return persistence.ErrNotFound
	}
	s.rooms[room.ID] = room
	return nil
}

// GetRoom retrieves a room by id.
func (s *Store) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, exists := s.rooms[id]
	if !exists {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, nil
}

// ListRooms returns all rooms ordered by name then id.
func (s *Store) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]persistence.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Name == rooms[j].Name {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].Name < rooms[j].Name
	})
	return rooms, nil
}

// DeleteRoom removes a room by id.
func (s *Store) DeleteRoom(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[id]; !exists {
		return persistence.ErrNotFound
	}
	delete(s.rooms, id)
	return nil
}

// CreateParticipant inserts a new participant, failing on duplicate id or email.
func (s *Store) CreateParticipant(ctx context.Context, participant persistence.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.participants[participant.ID]; exists {
		return persistence.ErrDuplicate
	}
	for _, existing := range s.participants {
		if existing.Email == participant.Email {
			return persistence.ErrDuplicate
		}
	}
	s.participants[participant.ID] = participant
	return nil
}

// UpdateParticipant replaces an existing participant record.
func (s *Store) UpdateParticipant(ctx context.Context, participant persistence.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.participants[participant.ID]; !exists {
		return persistence.ErrNotFound
	}
	s.participants[participant.ID] = participant
	return nil
}

// GetParticipant retrieves a participant by id.
func (s *Store) GetParticipant(ctx context.Context, id string) (persistence.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	participant, exists := s.participants[id]
	if !exists {
		return persistence.Participant{}, persistence.ErrNotFound
	}
	return participant, nil
}

// GetParticipantByEmail retrieves a participant by email address.
func (s *Store) GetParticipantByEmail(ctx context.Context, email string) (persistence.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, participant := range s.participants {
		if participant.Email == email {
			return participant, nil
		}
	}
	return persistence.Participant{}, persistence.ErrNotFound
}

// ListParticipants returns all participants ordered by name then id.
func (s *Store) ListParticipants(ctx context.Context) ([]persistence.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	participants := make([]persistence.Participant, 0, len(s.participants))
	for _, participant := range s.participants {
		participants = append(participants, participant)
	}
	sort.Slice(participants, func(i, j int) bool {
		if participants[i].Name == participants[j].Name {
			return participants[i].ID < participants[j].ID
		}
		return participants[i].Name < participants[j].Name
	})
	return participants, nil
}

// DeleteParticipant removes a participant by id.
func (s *Store) DeleteParticipant(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.participants[id]; !exists {
		return persistence.ErrNotFound
	}
	delete(s.participants, id)
	return nil
}

// CreateMeeting inserts a new meeting.
func (s *Store) CreateMeeting(ctx context.Context, meeting persistence.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.meetings[meeting.ID]; exists {
		return persistence.ErrDuplicate
	}
	s.meetings[meeting.ID] = cloneMeeting(meeting)
	return nil
}

// UpdateMeeting replaces an existing meeting record.
func (s *Store) UpdateMeeting(ctx context.Context, meeting persistence.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.meetings[meeting.ID]; !exists {
		return persistence.ErrNotFound
	}
	s.meetings[meeting.ID] = cloneMeeting(meeting)
	return nil
}

// GetMeeting retrieves a meeting by id.
func (s *Store) GetMeeting(ctx context.Context, id string) (persistence.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meeting, exists := s.meetings[id]
	if !exists {
		return persistence.Meeting{}, persistence.ErrNotFound
	}
	return cloneMeeting(meeting), nil
}

// ListMeetings returns meetings matching the filter, ordered by start time then id.
func (s *Store) ListMeetings(ctx context.Context, filter persistence.MeetingFilter) ([]persistence.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var meetings []persistence.Meeting
	for _, meeting := range s.meetings {
		if filter.Status != "" && meeting.Status != filter.Status {
			continue
		}
		if filter.RoomID != "" && meeting.RoomID != filter.RoomID {
			continue
		}
		if filter.StartsAfter != nil && !meeting.End.After(*filter.StartsAfter) {
			continue
		}
		if filter.EndsBefore != nil && !meeting.Start.Before(*filter.EndsBefore) {
			continue
		}
		meetings = append(meetings, cloneMeeting(meeting))
	}
	sort.Slice(meetings, func(i, j int) bool {
		if meetings[i].Start.Equal(meetings[j].Start) {
			return meetings[i].ID < meetings[j].ID
		}
		return meetings[i].Start.Before(meetings[j].Start)
	})
	return meetings, nil
}

// DeleteMeeting removes a meeting by id.
func (s *Store) DeleteMeeting(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.meetings[id]; !exists {
		return persistence.ErrNotFound
	}
	delete(s.meetings, id)
	return nil
}

func cloneMeeting(m persistence.Meeting) persistence.Meeting {
	out := m
	if m.ParticipantIDs != nil {
		out.ParticipantIDs = append([]string(nil), m.ParticipantIDs...)
	}
	return out
}
