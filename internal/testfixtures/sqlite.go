package testfixtures

import (
	"path/filepath"
	"testing"

	"github.com/example/meetingverify/internal/persistence"
	"github.com/example/meetingverify/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Rooms        persistence.RoomRepository
	Participants persistence.ParticipantRepository
	Meetings     persistence.MeetingRepository

	pool *sqlite.ConnectionPool
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.pool != nil {
		_ = h.pool.Close()
		h.pool = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness backed by a temporary database
// file whose schema is created automatically. The harness is closed
// automatically when tb completes.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "meetingverify.db")

	pool, err := sqlite.NewConnectionPool("file:" + path + "?_foreign_keys=on")
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	harness := &SQLiteHarness{
		Rooms:        sqlite.NewRoomRepository(pool),
		Participants: sqlite.NewParticipantRepository(pool),
		Meetings:     sqlite.NewMeetingRepository(pool),
		pool:         pool,
	}

	tb.Cleanup(harness.Close)
	return harness
}
