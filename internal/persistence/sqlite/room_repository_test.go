package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/meetingverify/internal/persistence"
)

func TestRoomRepository_CreateRoom(t *testing.T) {
	repo, cleanup := setupRoomRepositoryTest(t)
	defer cleanup()

	ctx := context.Background()
	location := "Building 1, Floor 2"
	room := persistence.Room{
		ID:        "room1",
		Name:      "Conference Room A",
		Capacity:  10,
		Location:  &location,
		Available: true,
	}

	if err := repo.CreateRoom(ctx, room); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	retrieved, err := repo.GetRoom(ctx, "room1")
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if retrieved.Name != "Conference Room A" {
		t.Errorf("expected name 'Conference Room A', got %q", retrieved.Name)
	}
	if retrieved.Capacity != 10 {
		t.Errorf("expected capacity 10, got %d", retrieved.Capacity)
	}
	if retrieved.Location == nil || *retrieved.Location != location {
		t.Errorf("expected location %q, got %+v", location, retrieved.Location)
	}
}

func TestRoomRepository_CreateRoom_InvalidCapacity(t *testing.T) {
	repo, cleanup := setupRoomRepositoryTest(t)
	defer cleanup()

	ctx := context.Background()
	room := persistence.Room{ID: "room1", Name: "Conference Room A", Capacity: 0}

	if err := repo.CreateRoom(ctx, room); err == nil {
		t.Fatal("expected constraint violation error for zero capacity, got nil")
	}
}

func TestRoomRepository_CreateRoom_DuplicateName(t *testing.T) {
	repo, cleanup := setupRoomRepositoryTest(t)
	defer cleanup()

	ctx := context.Background()
	if err := repo.CreateRoom(ctx, persistence.Room{ID: "room1", Name: "Conference Room A", Capacity: 10}); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	err := repo.CreateRoom(ctx, persistence.Room{ID: "room2", Name: "Conference Room A", Capacity: 4})
	if err == nil {
		t.Fatal("expected duplicate-name error, got nil")
	}
}

func TestRoomRepository_UpdateRoom(t *testing.T) {
	repo, cleanup := setupRoomRepositoryTest(t)
	defer cleanup()

	ctx := context.Background()
	if err := repo.CreateRoom(ctx, persistence.Room{ID: "room1", Name: "Conference Room A", Capacity: 10, Available: true}); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	updated := persistence.Room{ID: "room1", Name: "Renamed Room", Capacity: 20, Available: false}
	if err := repo.UpdateRoom(ctx, updated); err != nil {
		t.Fatalf("UpdateRoom failed: %v", err)
	}

	retrieved, err := repo.GetRoom(ctx, "room1")
	if err != nil {
		t.Fatalf("GetRoom failed: %v", err)
	}
	if retrieved.Name != "Renamed Room" || retrieved.Capacity != 20 || retrieved.Available {
		t.Errorf("update did not persist, got %+v", retrieved)
	}
}

func TestRoomRepository_UpdateRoom_NotFound(t *testing.T) {
	repo, cleanup := setupRoomRepositoryTest(t)
	defer cleanup()

	err := repo.UpdateRoom(context.Background(), persistence.Room{ID: "missing", Name: "Ghost Room", Capacity: 1})
	if err != persistence.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRoomRepository_GetRoom_NotFound(t *testing.T) {
	repo, cleanup := setupRoomRepositoryTest(t)
	defer cleanup()

	_, err := repo.GetRoom(context.Background(), "missing")
	if err != persistence.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRoomRepository_ListRooms_OrderedByName(t *testing.T) {
	repo, cleanup := setupRoomRepositoryTest(t)
	defer cleanup()

	ctx := context.Background()
	if err := repo.CreateRoom(ctx, persistence.Room{ID: "room-z", Name: "Zeta Room", Capacity: 4}); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if err := repo.CreateRoom(ctx, persistence.Room{ID: "room-a", Name: "Alpha Room", Capacity: 4}); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	rooms, err := repo.ListRooms(ctx)
	if err != nil {
		t.Fatalf("ListRooms failed: %v", err)
	}
	if len(rooms) != 2 || rooms[0].Name != "Alpha Room" || rooms[1].Name != "Zeta Room" {
		t.Fatalf("expected rooms ordered by name, got %+v", rooms)
	}
}

func TestRoomRepository_DeleteRoom_RejectsWhenLiveMeetingsExist(t *testing.T) {
	repo, cleanup := setupRoomRepositoryTest(t)
	defer cleanup()
	ctx := context.Background()

	if err := repo.CreateRoom(ctx, persistence.Room{ID: "room1", Name: "Conference Room A", Capacity: 10}); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	if _, err := repo.pool.DB().ExecContext(ctx,
		"INSERT INTO meetings (id, title, start_time, end_time, room_id, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		"meeting1", "Standup", "2030-01-01T09:00:00Z", "2030-01-01T09:30:00Z", "room1", "PENDING",
		"2030-01-01T08:00:00Z", "2030-01-01T08:00:00Z"); err != nil {
		t.Fatalf("failed to seed meeting: %v", err)
	}

	if err := repo.DeleteRoom(ctx, "room1"); err != persistence.ErrForeignKeyViolation {
		t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
	}
}

func TestRoomRepository_DeleteRoom_NotFound(t *testing.T) {
	repo, cleanup := setupRoomRepositoryTest(t)
	defer cleanup()

	if err := repo.DeleteRoom(context.Background(), "missing"); err != persistence.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func setupRoomRepositoryTest(t *testing.T) (*RoomRepository, func()) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	pool, err := NewConnectionPool("file:" + path)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	return NewRoomRepository(pool), func() { _ = pool.Close() }
}
