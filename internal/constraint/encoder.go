package constraint

import (
	"fmt"
	"time"
)

// encode runs the pre-checks and the room/participant conflict encoding
// described in spec §4.1 and returns the collected witnesses. It never
// touches wall-clock time; the caller (Backend) measures solving time.
func encode(proposed SchedulingConstraint, existing []ExistingMeeting) []string {
	if witness, ok := precheckTimeRange(proposed); !ok {
		return []string{witness}
	}
	if witness, ok := precheckCapacity(proposed); !ok {
		return []string{witness}
	}

	stack := &assertionStack{}
	var witnesses []string

	for _, e := range existing {
		if e.MeetingID != "" && e.MeetingID == proposed.MeetingID {
			continue
		}
		if !overlaps(proposed.Start, proposed.End, e.Start, e.End) {
			continue
		}

		stack.push()
		if witness, ok := roomConflict(proposed, e); ok {
			stack.assert(witness)
		}
		for _, witness := range participantConflicts(proposed, e) {
			stack.assert(witness)
		}
		witnesses = append(witnesses, stack.pop()...)
	}

	return witnesses
}

// precheckTimeRange implements spec §4.1 pre-check 1.
func precheckTimeRange(proposed SchedulingConstraint) (string, bool) {
	if !proposed.Start.Before(proposed.End) {
		return "Invalid time range", false
	}
	return "", true
}

// precheckCapacity implements spec §4.1 pre-check 2.
func precheckCapacity(proposed SchedulingConstraint) (string, bool) {
	if len(proposed.ParticipantIDs) > proposed.RoomCapacity {
		return fmt.Sprintf("Room capacity exceeded: %d requested, capacity %d", len(proposed.ParticipantIDs), proposed.RoomCapacity), false
	}
	return "", true
}

// roomConflict checks the room-exclusivity predicate of spec §4.1.
func roomConflict(proposed SchedulingConstraint, e ExistingMeeting) (string, bool) {
	if e.RoomID != proposed.RoomID {
		return "", false
	}
	return fmt.Sprintf("Room conflict: overlaps with meeting %s in room %s (%s–%s)",
		e.MeetingID, e.RoomID, formatInstant(e.Start), formatInstant(e.End)), true
}

// participantConflicts checks the participant-exclusivity predicate of spec §4.1
// for every participant shared between the proposal and the existing meeting.
func participantConflicts(proposed SchedulingConstraint, e ExistingMeeting) []string {
	if len(proposed.ParticipantIDs) == 0 || len(e.ParticipantIDs) == 0 {
		return nil
	}

	existingSet := make(map[string]struct{}, len(e.ParticipantIDs))
	for _, p := range e.ParticipantIDs {
		existingSet[p] = struct{}{}
	}

	var witnesses []string
	for _, p := range proposed.ParticipantIDs {
		if _, shared := existingSet[p]; shared {
			witnesses = append(witnesses, fmt.Sprintf("Participant conflict: participant %s already booked in meeting %s (%s–%s)",
				p, e.MeetingID, formatInstant(e.Start), formatInstant(e.End)))
		}
	}
	return witnesses
}

func formatInstant(t time.Time) string {
	return fmt.Sprintf("%d", t.Unix())
}
