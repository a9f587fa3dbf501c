package monitor

import (
	"sync"
	"time"
)

// slot is a live meeting's booked interval within a single room's timeline.
type slot struct {
	meetingID string
	start     time.Time
	end       time.Time
}

// roomTimeline holds the ordered list of live slots for one room and owns
// its own mutex, so mutations to unrelated rooms never serialize against
// each other (spec §5: "a fine-grained scheme ... is preferred over a
// monitor-wide lock").
type roomTimeline struct {
	mu    sync.Mutex
	slots []slot
}

func newRoomTimeline() *roomTimeline {
	return &roomTimeline{}
}

// overlapping returns the slots that overlap [start, end) using the
// standard half-open interval overlap predicate.
func (rt *roomTimeline) overlapping(start, end time.Time) []slot {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	var matches []slot
	for _, s := range rt.slots {
		if start.Before(s.end) && s.start.Before(end) {
			matches = append(matches, s)
		}
	}
	return matches
}

// insert appends a slot to the timeline.
func (rt *roomTimeline) insert(meetingID string, start, end time.Time) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.slots = append(rt.slots, slot{meetingID: meetingID, start: start, end: end})
}

// remove drops every slot belonging to meetingID.
func (rt *roomTimeline) remove(meetingID string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	kept := rt.slots[:0]
	for _, s := range rt.slots {
		if s.meetingID != meetingID {
			kept = append(kept, s)
		}
	}
	rt.slots = kept
}

// sorted returns a snapshot of the timeline's slots ordered by start time.
func (rt *roomTimeline) sorted() []slot {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	out := append([]slot(nil), rt.slots...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].start.After(out[j].start); j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
