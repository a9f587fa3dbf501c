package constraint

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("failed to parse time %q: %v", value, err)
	}
	return parsed
}

func TestEncode(t *testing.T) {
	roomA := "room-a"

	t.Run("no conflicts yields no witnesses", func(t *testing.T) {
		proposed := SchedulingConstraint{
			RoomID:         roomA,
			RoomCapacity:   10,
			Start:          mustTime(t, "2030-01-01T10:00:00Z"),
			End:            mustTime(t, "2030-01-01T11:00:00Z"),
			ParticipantIDs: []string{"p1", "p2"},
		}
		witnesses := encode(proposed, nil)
		if len(witnesses) != 0 {
			t.Fatalf("expected no witnesses, got %v", witnesses)
		}
	})

	t.Run("invalid time range short-circuits", func(t *testing.T) {
		proposed := SchedulingConstraint{
			RoomID:         roomA,
			RoomCapacity:   10,
			Start:          mustTime(t, "2030-01-01T11:00:00Z"),
			End:            mustTime(t, "2030-01-01T10:00:00Z"),
			ParticipantIDs: []string{"p1"},
		}
		witnesses := encode(proposed, nil)
		if len(witnesses) != 1 || witnesses[0] != "Invalid time range" {
			t.Fatalf("unexpected witnesses: %v", witnesses)
		}
	})

	t.Run("capacity exceeded short-circuits", func(t *testing.T) {
		proposed := SchedulingConstraint{
			RoomID:         roomA,
			RoomCapacity:   1,
			Start:          mustTime(t, "2030-01-01T10:00:00Z"),
			End:            mustTime(t, "2030-01-01T11:00:00Z"),
			ParticipantIDs: []string{"p1", "p2"},
		}
		witnesses := encode(proposed, nil)
		if len(witnesses) != 1 {
			t.Fatalf("expected exactly one witness, got %v", witnesses)
		}
		want := "Room capacity exceeded: 2 requested, capacity 1"
		if witnesses[0] != want {
			t.Fatalf("got %q, want %q", witnesses[0], want)
		}
	})

	t.Run("room conflict emitted for overlapping meeting in same room", func(t *testing.T) {
		existing := []ExistingMeeting{{
			MeetingID: "m1",
			RoomID:    roomA,
			Start:     mustTime(t, "2030-01-01T10:00:00Z"),
			End:       mustTime(t, "2030-01-01T11:00:00Z"),
		}}
		proposed := SchedulingConstraint{
			RoomID:         roomA,
			RoomCapacity:   10,
			Start:          mustTime(t, "2030-01-01T10:30:00Z"),
			End:            mustTime(t, "2030-01-01T11:30:00Z"),
			ParticipantIDs: []string{"p2"},
		}
		witnesses := encode(proposed, existing)
		if len(witnesses) != 1 {
			t.Fatalf("expected exactly one witness, got %v", witnesses)
		}
		if got := witnesses[0]; got[:13] != "Room conflict" {
			t.Fatalf("witness %q does not begin with Room conflict", got)
		}
	})

	t.Run("participant conflict emitted across different rooms", func(t *testing.T) {
		existing := []ExistingMeeting{{
			MeetingID:      "m1",
			RoomID:         roomA,
			Start:          mustTime(t, "2030-01-01T10:00:00Z"),
			End:            mustTime(t, "2030-01-01T11:00:00Z"),
			ParticipantIDs: []string{"p1"},
		}}
		proposed := SchedulingConstraint{
			RoomID:         "room-b",
			RoomCapacity:   10,
			Start:          mustTime(t, "2030-01-01T10:30:00Z"),
			End:            mustTime(t, "2030-01-01T11:30:00Z"),
			ParticipantIDs: []string{"p1"},
		}
		witnesses := encode(proposed, existing)
		if len(witnesses) != 1 {
			t.Fatalf("expected exactly one witness, got %v", witnesses)
		}
		if got := witnesses[0]; got[:20] != "Participant conflict" {
			t.Fatalf("witness %q does not begin with Participant conflict", got)
		}
	})

	t.Run("update self-exclusion yields SAT against own prior entry", func(t *testing.T) {
		start := mustTime(t, "2030-01-01T10:00:00Z")
		end := mustTime(t, "2030-01-01T11:00:00Z")
		existing := []ExistingMeeting{{
			MeetingID:      "m1",
			RoomID:         roomA,
			Start:          start,
			End:            end,
			ParticipantIDs: []string{"p1"},
		}}
		proposed := SchedulingConstraint{
			MeetingID:      "m1",
			RoomID:         roomA,
			RoomCapacity:   10,
			Start:          start,
			End:            end,
			ParticipantIDs: []string{"p1"},
		}
		witnesses := encode(proposed, existing)
		if len(witnesses) != 0 {
			t.Fatalf("expected no witnesses for self-excluded update, got %v", witnesses)
		}
	})

	t.Run("non-overlapping meetings yield no conflicts", func(t *testing.T) {
		existing := []ExistingMeeting{{
			MeetingID: "m1",
			RoomID:    roomA,
			Start:     mustTime(t, "2030-01-01T08:00:00Z"),
			End:       mustTime(t, "2030-01-01T09:00:00Z"),
		}}
		proposed := SchedulingConstraint{
			RoomID:         roomA,
			RoomCapacity:   10,
			Start:          mustTime(t, "2030-01-01T10:00:00Z"),
			End:            mustTime(t, "2030-01-01T11:00:00Z"),
			ParticipantIDs: []string{"p1"},
		}
		witnesses := encode(proposed, existing)
		if len(witnesses) != 0 {
			t.Fatalf("expected no witnesses, got %v", witnesses)
		}
	})
}
