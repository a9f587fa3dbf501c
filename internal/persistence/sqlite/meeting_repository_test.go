package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/meetingverify/internal/persistence"
)

func TestMeetingRepository_CreateAndGetMeeting(t *testing.T) {
	repo, rooms, participants, cleanup := setupMeetingRepositoryTest(t)
	defer cleanup()
	ctx := context.Background()

	seedRoom(t, rooms, "room1", 10)
	seedParticipant(t, participants, "alice")
	seedParticipant(t, participants, "bob")

	start := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	meeting := persistence.Meeting{
		ID:             "meeting1",
		Title:          "Planning",
		Start:          start,
		End:            start.Add(time.Hour),
		RoomID:         "room1",
		ParticipantIDs: []string{"alice", "bob"},
		Status:         persistence.MeetingStatusPending,
	}

	if err := repo.CreateMeeting(ctx, meeting); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}

	retrieved, err := repo.GetMeeting(ctx, "meeting1")
	if err != nil {
		t.Fatalf("GetMeeting failed: %v", err)
	}
	if retrieved.Title != "Planning" || retrieved.RoomID != "room1" {
		t.Fatalf("unexpected meeting: %+v", retrieved)
	}
	if len(retrieved.ParticipantIDs) != 2 {
		t.Fatalf("expected 2 participants, got %+v", retrieved.ParticipantIDs)
	}
	if !retrieved.Start.Equal(start) {
		t.Errorf("expected start %v, got %v", start, retrieved.Start)
	}
}

func TestMeetingRepository_CreateMeeting_InvalidTimeRange(t *testing.T) {
	repo, rooms, _, cleanup := setupMeetingRepositoryTest(t)
	defer cleanup()
	ctx := context.Background()

	seedRoom(t, rooms, "room1", 10)

	start := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	meeting := persistence.Meeting{
		ID:     "meeting1",
		Title:  "Backwards",
		Start:  start,
		End:    start.Add(-time.Hour),
		RoomID: "room1",
		Status: persistence.MeetingStatusPending,
	}

	if err := repo.CreateMeeting(ctx, meeting); err != persistence.ErrConstraintViolation {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestMeetingRepository_CreateMeeting_UnknownRoomIsForeignKeyViolation(t *testing.T) {
	repo, _, _, cleanup := setupMeetingRepositoryTest(t)
	defer cleanup()
	ctx := context.Background()

	start := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	meeting := persistence.Meeting{
		ID:             "meeting1",
		Title:          "Orphan",
		Start:          start,
		End:            start.Add(time.Hour),
		RoomID:         "does-not-exist",
		ParticipantIDs: []string{"ghost"},
		Status:         persistence.MeetingStatusPending,
	}

	if err := repo.CreateMeeting(ctx, meeting); err != persistence.ErrForeignKeyViolation {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}
}

func TestMeetingRepository_UpdateMeeting_ReplacesParticipants(t *testing.T) {
	repo, rooms, participants, cleanup := setupMeetingRepositoryTest(t)
	defer cleanup()
	ctx := context.Background()

	seedRoom(t, rooms, "room1", 10)
	seedParticipant(t, participants, "alice")
	seedParticipant(t, participants, "bob")

	start := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	meeting := persistence.Meeting{
		ID: "meeting1", Title: "Planning", Start: start, End: start.Add(time.Hour),
		RoomID: "room1", ParticipantIDs: []string{"alice"}, Status: persistence.MeetingStatusPending,
	}
	if err := repo.CreateMeeting(ctx, meeting); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}

	meeting.ParticipantIDs = []string{"bob"}
	meeting.Status = persistence.MeetingStatusConfirmed
	if err := repo.UpdateMeeting(ctx, meeting); err != nil {
		t.Fatalf("UpdateMeeting failed: %v", err)
	}

	retrieved, err := repo.GetMeeting(ctx, "meeting1")
	if err != nil {
		t.Fatalf("GetMeeting failed: %v", err)
	}
	if retrieved.Status != persistence.MeetingStatusConfirmed {
		t.Errorf("expected status CONFIRMED, got %s", retrieved.Status)
	}
	if len(retrieved.ParticipantIDs) != 1 || retrieved.ParticipantIDs[0] != "bob" {
		t.Fatalf("expected participants to be replaced with [bob], got %+v", retrieved.ParticipantIDs)
	}
}

func TestMeetingRepository_ListMeetings_FiltersByStatusAndRoom(t *testing.T) {
	repo, rooms, participants, cleanup := setupMeetingRepositoryTest(t)
	defer cleanup()
	ctx := context.Background()

	seedRoom(t, rooms, "room1", 10)
	seedRoom(t, rooms, "room2", 10)
	seedParticipant(t, participants, "alice")

	start := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	meetings := []persistence.Meeting{
		{ID: "m1", Title: "A", Start: start, End: start.Add(time.Hour), RoomID: "room1", ParticipantIDs: []string{"alice"}, Status: persistence.MeetingStatusConfirmed},
		{ID: "m2", Title: "B", Start: start, End: start.Add(time.Hour), RoomID: "room2", ParticipantIDs: []string{"alice"}, Status: persistence.MeetingStatusConfirmed},
		{ID: "m3", Title: "C", Start: start, End: start.Add(time.Hour), RoomID: "room1", ParticipantIDs: []string{"alice"}, Status: persistence.MeetingStatusPending},
	}
	for _, m := range meetings {
		if err := repo.CreateMeeting(ctx, m); err != nil {
			t.Fatalf("CreateMeeting(%s) failed: %v", m.ID, err)
		}
	}

	confirmedInRoom1, err := repo.ListMeetings(ctx, persistence.MeetingFilter{Status: persistence.MeetingStatusConfirmed, RoomID: "room1"})
	if err != nil {
		t.Fatalf("ListMeetings failed: %v", err)
	}
	if len(confirmedInRoom1) != 1 || confirmedInRoom1[0].ID != "m1" {
		t.Fatalf("expected only m1, got %+v", confirmedInRoom1)
	}
}

func TestMeetingRepository_DeleteMeeting(t *testing.T) {
	repo, rooms, participants, cleanup := setupMeetingRepositoryTest(t)
	defer cleanup()
	ctx := context.Background()

	seedRoom(t, rooms, "room1", 10)
	seedParticipant(t, participants, "alice")
	start := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	meeting := persistence.Meeting{ID: "meeting1", Title: "Planning", Start: start, End: start.Add(time.Hour), RoomID: "room1", ParticipantIDs: []string{"alice"}, Status: persistence.MeetingStatusPending}
	if err := repo.CreateMeeting(ctx, meeting); err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}

	if err := repo.DeleteMeeting(ctx, "meeting1"); err != nil {
		t.Fatalf("DeleteMeeting failed: %v", err)
	}

	if _, err := repo.GetMeeting(ctx, "meeting1"); err != persistence.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMeetingRepository_DeleteMeeting_NotFound(t *testing.T) {
	repo, _, _, cleanup := setupMeetingRepositoryTest(t)
	defer cleanup()

	if err := repo.DeleteMeeting(context.Background(), "missing"); err != persistence.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func seedRoom(t *testing.T, rooms *RoomRepository, id string, capacity int) {
	t.Helper()
	if err := rooms.CreateRoom(context.Background(), persistence.Room{ID: id, Name: id, Capacity: capacity, Available: true}); err != nil {
		t.Fatalf("failed to seed room %s: %v", id, err)
	}
}

func seedParticipant(t *testing.T, participants *ParticipantRepository, id string) {
	t.Helper()
	if err := participants.CreateParticipant(context.Background(), persistence.Participant{ID: id, Name: id, Email: id + "@example.com"}); err != nil {
		t.Fatalf("failed to seed participant %s: %v", id, err)
	}
}

func setupMeetingRepositoryTest(t *testing.T) (*MeetingRepository, *RoomRepository, *ParticipantRepository, func()) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	pool, err := NewConnectionPool("file:" + path)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	return NewMeetingRepository(pool), NewRoomRepository(pool), NewParticipantRepository(pool), func() { _ = pool.Close() }
}
