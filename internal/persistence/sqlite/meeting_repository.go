package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/meetingverify/internal/persistence"
)

// MeetingRepository implements persistence.MeetingRepository using SQLite.
type MeetingRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewMeetingRepository creates a new SQLite meeting repository.
func NewMeetingRepository(pool *ConnectionPool) *MeetingRepository {
	return &MeetingRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateMeeting inserts a new meeting with its participant assignments.
func (r *MeetingRepository) CreateMeeting(ctx context.Context, meeting persistence.Meeting) error {
	if meeting.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if err := r.validateMeeting(meeting); err != nil {
		return err
	}

	now := time.Now().UTC()
	meeting.CreatedAt = now
	meeting.UpdatedAt = now

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO meetings (id, title, description, start_time, end_time, room_id, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`

		_, err := r.helper.ExecTx(tx, query,
			meeting.ID,
			meeting.Title,
			nullableString(meeting.Description),
			meeting.Start.UTC().Format(time.RFC3339),
			meeting.End.UTC().Format(time.RFC3339),
			meeting.RoomID,
			string(meeting.Status),
			meeting.CreatedAt.Format(time.RFC3339),
			meeting.UpdatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return r.mapMeetingError(err)
		}

		return r.insertParticipants(tx, meeting.ID, meeting.ParticipantIDs)
	})
}

// UpdateMeeting updates an existing meeting and its participant assignments.
func (r *MeetingRepository) UpdateMeeting(ctx context.Context, meeting persistence.Meeting) error {
	if meeting.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if err := r.validateMeeting(meeting); err != nil {
		return err
	}

	meeting.UpdatedAt = time.Now().UTC()

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE meetings
			SET title = ?, description = ?, start_time = ?, end_time = ?, room_id = ?, status = ?, updated_at = ?
			WHERE id = ?
		`

		result, err := r.helper.ExecTx(tx, query,
			meeting.Title,
			nullableString(meeting.Description),
			meeting.Start.UTC().Format(time.RFC3339),
			meeting.End.UTC().Format(time.RFC3339),
			meeting.RoomID,
			string(meeting.Status),
			meeting.UpdatedAt.Format(time.RFC3339),
			meeting.ID,
		)
		if err != nil {
			return r.mapMeetingError(err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return persistence.ErrNotFound
		}

		if _, err := r.helper.ExecTx(tx, "DELETE FROM meeting_participants WHERE meeting_id = ?", meeting.ID); err != nil {
			return r.mapper.MapError(err)
		}

		return r.insertParticipants(tx, meeting.ID, meeting.ParticipantIDs)
	})
}

// GetMeeting retrieves a meeting by ID, including its participant assignments.
func (r *MeetingRepository) GetMeeting(ctx context.Context, id string) (persistence.Meeting, error) {
	if id == "" {
		return persistence.Meeting{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, title, description, start_time, end_time, room_id, status, created_at, updated_at
		FROM meetings
		WHERE id = ?
	`

	meeting, startStr, endStr, createdStr, updatedStr, description, err := scanMeetingRow(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Meeting{}, persistence.ErrNotFound
		}
		return persistence.Meeting{}, r.mapper.MapError(err)
	}
	if err := fillMeetingTimes(&meeting, startStr, endStr, createdStr, updatedStr); err != nil {
		return persistence.Meeting{}, err
	}
	meeting.Description = stringPtr(description)

	participants, err := r.loadParticipants(ctx, id)
	if err != nil {
		return persistence.Meeting{}, err
	}
	meeting.ParticipantIDs = participants

	return meeting, nil
}

// ListMeetings lists meetings matching the filter, including their participant assignments.
func (r *MeetingRepository) ListMeetings(ctx context.Context, filter persistence.MeetingFilter) ([]persistence.Meeting, error) {
	query, args := r.buildListQuery(filter)

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var meetings []persistence.Meeting

	for rows.Next() {
		var meeting persistence.Meeting
		var startStr, endStr, createdStr, updatedStr string
		var description sql.NullString

		err := rows.Scan(
			&meeting.ID,
			&meeting.Title,
			&description,
			&startStr,
			&endStr,
			&meeting.RoomID,
			&meeting.Status,
			&createdStr,
			&updatedStr,
		)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		if err := fillMeetingTimes(&meeting, startStr, endStr, createdStr, updatedStr); err != nil {
			return nil, err
		}
		meeting.Description = stringPtr(description)

		participants, err := r.loadParticipants(ctx, meeting.ID)
		if err != nil {
			return nil, err
		}
		meeting.ParticipantIDs = participants

		meetings = append(meetings, meeting)
	}

	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return meetings, nil
}

// DeleteMeeting removes a meeting and its participant assignments.
func (r *MeetingRepository) DeleteMeeting(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := r.helper.ExecTx(tx, "DELETE FROM meeting_participants WHERE meeting_id = ?", id); err != nil {
			return r.mapper.MapError(err)
		}

		result, err := r.helper.ExecTx(tx, "DELETE FROM meetings WHERE id = ?", id)
		if err != nil {
			return r.mapper.MapError(err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return persistence.ErrNotFound
		}

		return nil
	})
}

func (r *MeetingRepository) validateMeeting(meeting persistence.Meeting) error {
	if !meeting.End.After(meeting.Start) {
		return persistence.ErrConstraintViolation
	}
	if len(meeting.ParticipantIDs) == 0 {
		return persistence.ErrConstraintViolation
	}
	return nil
}

func (r *MeetingRepository) insertParticipants(tx *sql.Tx, meetingID string, participants []string) error {
	unique := make(map[string]struct{})
	for _, p := range participants {
		p = strings.TrimSpace(p)
		if p != "" {
			unique[p] = struct{}{}
		}
	}
	for p := range unique {
		_, err := r.helper.ExecTx(tx,
			"INSERT INTO meeting_participants (meeting_id, participant_id) VALUES (?, ?)",
			meetingID, p)
		if err != nil {
			return r.mapper.MapError(err)
		}
	}
	return nil
}

func (r *MeetingRepository) loadParticipants(ctx context.Context, meetingID string) ([]string, error) {
	query := `
		SELECT participant_id
		FROM meeting_participants
		WHERE meeting_id = ?
		ORDER BY participant_id ASC
	`

	rows, err := r.helper.Query(ctx, query, meetingID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var participants []string
	for rows.Next() {
		var participantID string
		if err := rows.Scan(&participantID); err != nil {
			return nil, r.mapper.MapError(err)
		}
		participants = append(participants, participantID)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return participants, nil
}

func (r *MeetingRepository) buildListQuery(filter persistence.MeetingFilter) (string, []interface{}) {
	baseQuery := `
		SELECT id, title, description, start_time, end_time, room_id, status, created_at, updated_at
		FROM meetings
	`

	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.RoomID != "" {
		conditions = append(conditions, "room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.StartsAfter != nil {
		conditions = append(conditions, "end_time > ?")
		args = append(args, filter.StartsAfter.UTC().Format(time.RFC3339))
	}
	if filter.EndsBefore != nil {
		conditions = append(conditions, "start_time < ?")
		args = append(args, filter.EndsBefore.UTC().Format(time.RFC3339))
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	baseQuery += " ORDER BY start_time ASC, id ASC"

	return baseQuery, args
}

func (r *MeetingRepository) mapMeetingError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	if containsAny(errStr, []string{"UNIQUE constraint failed"}) {
		return persistence.ErrDuplicate
	}
	if containsAny(errStr, []string{"FOREIGN KEY constraint failed"}) {
		return persistence.ErrForeignKeyViolation
	}
	if containsAny(errStr, []string{"CHECK constraint failed"}) {
		return persistence.ErrConstraintViolation
	}

	return r.mapper.MapError(err)
}

func scanMeetingRow(row *sql.Row) (persistence.Meeting, string, string, string, string, sql.NullString, error) {
	var meeting persistence.Meeting
	var startStr, endStr, createdStr, updatedStr string
	var description sql.NullString

	err := row.Scan(
		&meeting.ID,
		&meeting.Title,
		&description,
		&startStr,
		&endStr,
		&meeting.RoomID,
		&meeting.Status,
		&createdStr,
		&updatedStr,
	)
	return meeting, startStr, endStr, createdStr, updatedStr, description, err
}

func fillMeetingTimes(meeting *persistence.Meeting, startStr, endStr, createdStr, updatedStr string) error {
	var err error
	if meeting.Start, err = time.Parse(time.RFC3339, startStr); err != nil {
		return fmt.Errorf("failed to parse start_time: %w", err)
	}
	if meeting.End, err = time.Parse(time.RFC3339, endStr); err != nil {
		return fmt.Errorf("failed to parse end_time: %w", err)
	}
	if meeting.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return fmt.Errorf("failed to parse created_at: %w", err)
	}
	if meeting.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return nil
}
