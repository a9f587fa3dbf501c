package sqlite

import (
	"context"
	"database/sql"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS rooms (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	capacity    INTEGER NOT NULL CHECK (capacity >= 1),
	location    TEXT,
	description TEXT,
	available   INTEGER NOT NULL DEFAULT 1,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS participants (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	department TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS meetings (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT,
	start_time  TEXT NOT NULL,
	end_time    TEXT NOT NULL,
	room_id     TEXT NOT NULL REFERENCES rooms(id),
	status      TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS meeting_participants (
	meeting_id     TEXT NOT NULL REFERENCES meetings(id),
	participant_id TEXT NOT NULL REFERENCES participants(id),
	PRIMARY KEY (meeting_id, participant_id)
);

CREATE INDEX IF NOT EXISTS idx_meetings_room ON meetings(room_id);
CREATE INDEX IF NOT EXISTS idx_meetings_status ON meetings(status);
CREATE INDEX IF NOT EXISTS idx_meeting_participants_participant ON meeting_participants(participant_id);
`

// EnsureSchema creates the verification core's tables if they do not already
// exist. The core has no use for a versioned migration engine: three tables
// and a join table are created inline, once, at startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaDDL)
	return err
}
