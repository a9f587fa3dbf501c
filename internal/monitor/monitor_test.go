package monitor

import (
	"sync"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestMonitor_ConfirmClearsPending(t *testing.T) {
	now := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	mon := New(fixedClock(now))

	mon.OnCreate(MeetingEvent{
		Tag:          EventCreate,
		MeetingID:    "m1",
		RoomID:       "room-a",
		Start:        now.Add(time.Hour),
		End:          now.Add(2 * time.Hour),
		Attendees:    3,
		RoomCapacity: 10,
	})
	if got := mon.GetPendingCount(); got != 1 {
		t.Fatalf("expected 1 pending meeting, got %d", got)
	}

	mon.OnConfirm(MeetingEvent{Tag: EventConfirm, MeetingID: "m1", RoomID: "room-a"})
	if got := mon.GetPendingCount(); got != 0 {
		t.Fatalf("expected 0 pending meetings after confirm, got %d", got)
	}

	for _, v := range mon.GetViolations() {
		if v.PropertyName == PropertyConfirmWithoutCreate {
			t.Fatalf("unexpected CONFIRM_WITHOUT_CREATE for a meeting that was created: %+v", v)
		}
	}
}

func TestMonitor_ConfirmWithoutCreate(t *testing.T) {
	mon := New(fixedClock(time.Now()))
	mon.OnConfirm(MeetingEvent{Tag: EventConfirm, MeetingID: "ghost", RoomID: "room-a"})

	violations := mon.GetViolations()
	if len(violations) != 1 || violations[0].PropertyName != PropertyConfirmWithoutCreate {
		t.Fatalf("expected one CONFIRM_WITHOUT_CREATE violation, got %+v", violations)
	}
}

func TestMonitor_DeleteOfNeverCreated(t *testing.T) {
	mon := New(fixedClock(time.Now()))
	mon.OnDelete(MeetingEvent{Tag: EventDelete, MeetingID: "never-existed", RoomID: "room-a"})

	violations := mon.GetViolations()
	if len(violations) != 1 || violations[0].PropertyName != PropertyDeleteNonexistent {
		t.Fatalf("expected one DELETE_NONEXISTENT violation, got %+v", violations)
	}
}

func TestMonitor_DeleteOfCreatedMeetingIsClean(t *testing.T) {
	mon := New(fixedClock(time.Now()))
	mon.OnCreate(MeetingEvent{Tag: EventCreate, MeetingID: "m1", RoomID: "room-a",
		Start: time.Now(), End: time.Now().Add(time.Hour), Attendees: 1, RoomCapacity: 5})
	mon.OnDelete(MeetingEvent{Tag: EventDelete, MeetingID: "m1", RoomID: "room-a"})

	for _, v := range mon.GetViolations() {
		if v.PropertyName == PropertyDeleteNonexistent {
			t.Fatalf("unexpected DELETE_NONEXISTENT for a meeting that was created: %+v", v)
		}
	}
}

func TestMonitor_RoomOverlapDetected(t *testing.T) {
	now := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	mon := New(fixedClock(now))

	mon.OnCreate(MeetingEvent{Tag: EventCreate, MeetingID: "m1", RoomID: "room-a",
		Start: now, End: now.Add(time.Hour), Attendees: 1, RoomCapacity: 5})
	mon.OnCreate(MeetingEvent{Tag: EventCreate, MeetingID: "m2", RoomID: "room-a",
		Start: now.Add(30 * time.Minute), End: now.Add(90 * time.Minute), Attendees: 1, RoomCapacity: 5})

	found := false
	for _, v := range mon.GetViolations() {
		if v.PropertyName == PropertyMeetingOverlap && v.MeetingID == "m2" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected MEETING_OVERLAP for m2, got %+v", mon.GetViolations())
	}
}

func TestMonitor_CapacityExceeded(t *testing.T) {
	mon := New(fixedClock(time.Now()))
	mon.OnCreate(MeetingEvent{Tag: EventCreate, MeetingID: "m1", RoomID: "room-a",
		Start: time.Now(), End: time.Now().Add(time.Hour), Attendees: 20, RoomCapacity: 5})

	violations := mon.GetViolationsBySeverity(SeverityError)
	found := false
	for _, v := range violations {
		if v.PropertyName == PropertyCapacityExceeded {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected CAPACITY_EXCEEDED, got %+v", violations)
	}
}

func TestMonitor_DuplicateViolationsAreDeduped(t *testing.T) {
	mon := New(fixedClock(time.Now()))
	mon.OnConfirm(MeetingEvent{Tag: EventConfirm, MeetingID: "ghost", RoomID: "room-a"})
	mon.OnConfirm(MeetingEvent{Tag: EventConfirm, MeetingID: "ghost", RoomID: "room-a"})

	violations := mon.GetViolations()
	if len(violations) != 1 {
		t.Fatalf("expected exactly one deduplicated violation, got %d: %+v", len(violations), violations)
	}
}

func TestMonitor_CheckPendingFlagsUnresolvedMeetings(t *testing.T) {
	start := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	current := start
	mon := New(func() time.Time { return current })

	mon.OnCreate(MeetingEvent{Tag: EventCreate, MeetingID: "m1", RoomID: "room-a",
		Start: start.Add(time.Hour), End: start.Add(2 * time.Hour), Attendees: 1, RoomCapacity: 5})

	current = start.Add(2 * time.Hour)
	violations := mon.CheckPending()
	if len(violations) != 1 || violations[0].PropertyName != PropertyUnresolvedMeeting {
		t.Fatalf("expected one UNRESOLVED_MEETING violation, got %+v", violations)
	}
	if violations[0].Severity != SeverityError {
		t.Fatalf("expected UNRESOLVED_MEETING to be reported at SeverityError, got %s", violations[0].Severity)
	}
}

func TestMonitor_CheckPendingIgnoresFutureMeetings(t *testing.T) {
	start := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	current := start
	mon := New(func() time.Time { return current })

	mon.OnCreate(MeetingEvent{Tag: EventCreate, MeetingID: "m1", RoomID: "room-a",
		Start: start.Add(time.Hour), End: start.Add(2 * time.Hour), Attendees: 1, RoomCapacity: 5})

	current = start.Add(30 * time.Minute)
	violations := mon.CheckPending()
	if len(violations) != 0 {
		t.Fatalf("expected no violations while the meeting's start is still in the future, got %+v", violations)
	}
}

func TestMonitor_RoomLocksAreIndependent(t *testing.T) {
	mon := New(fixedClock(time.Now()))

	var wg sync.WaitGroup
	rooms := []string{"room-a", "room-b", "room-c", "room-d"}
	for _, room := range rooms {
		wg.Add(1)
		go func(room string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := room + "-meeting"
				mon.OnCreate(MeetingEvent{
					Tag: EventCreate, MeetingID: id, RoomID: room,
					Start: time.Now(), End: time.Now().Add(time.Hour),
					Attendees: 1, RoomCapacity: 5,
				})
				mon.OnDelete(MeetingEvent{Tag: EventDelete, MeetingID: id, RoomID: room})
			}
		}(room)
	}
	wg.Wait()

	if got := mon.GetPendingCount(); got != 0 {
		t.Fatalf("expected 0 pending meetings after interleaved create/delete, got %d", got)
	}
}
