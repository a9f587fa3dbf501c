package monitor

import (
	"sort"
	"sync"
	"time"
)

// Monitor is the lifecycle monitor (C3). It observes meeting lifecycle
// events pushed by the scheduling service and maintains, independent of the
// service's own bookkeeping, its own record of which meetings exist, which
// are still pending a decision, and which rooms they occupy — so that it can
// flag a service bug (a double-booked room it should have rejected, a
// confirm that never had a matching create) even if the service's own logic
// is wrong.
//
// Each room's timeline carries its own lock and the timelines live in a
// sync.Map, so slot mutations in independent rooms do not contend. The
// bookkeeping sets, event history and violation log below are plain maps and
// slices guarded by the single shared mutex mu, which every handler holds
// briefly.
type Monitor struct {
	now func() time.Time

	timelines sync.Map // roomID string -> *roomTimeline

	mu           sync.Mutex
	createdIDs   map[string]struct{}
	pendingIDs   map[string]struct{}
	roomOf       map[string]string
	startOf      map[string]time.Time
	eventHistory []MeetingEvent
	violations   []PropertyViolation
	seen         map[string]struct{}
}

// New constructs an empty Monitor. now defaults to time.Now when nil.
func New(now func() time.Time) *Monitor {
	if now == nil {
		now = time.Now
	}
	return &Monitor{
		now:        now,
		createdIDs: make(map[string]struct{}),
		pendingIDs: make(map[string]struct{}),
		roomOf:     make(map[string]string),
		startOf:    make(map[string]time.Time),
		seen:       make(map[string]struct{}),
	}
}

func (m *Monitor) timelineFor(roomID string) *roomTimeline {
	if existing, ok := m.timelines.Load(roomID); ok {
		return existing.(*roomTimeline)
	}
	actual, _ := m.timelines.LoadOrStore(roomID, newRoomTimeline())
	return actual.(*roomTimeline)
}

// scrubUnresolved removes a previously logged UNRESOLVED_MEETING violation
// for meetingID, called when a pending meeting is finally confirmed or
// rejected (spec §4.2).
func (m *Monitor) scrubUnresolved(meetingID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.violations[:0]
	for _, v := range m.violations {
		if v.PropertyName == PropertyUnresolvedMeeting && v.MeetingID == meetingID {
			delete(m.seen, v.dedupKey())
			continue
		}
		kept = append(kept, v)
	}
	m.violations = kept
}

func (m *Monitor) recordEvent(evt MeetingEvent) {
	evt.Timestamp = m.now()
	m.mu.Lock()
	m.eventHistory = append(m.eventHistory, evt)
	m.mu.Unlock()
}

// report appends a violation unless an identical one (by dedup key) was
// already recorded, returning whether it was newly added.
func (m *Monitor) report(v PropertyViolation) bool {
	v.DetectedAt = m.now()
	key := v.dedupKey()

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.seen[key]; dup {
		return false
	}
	m.seen[key] = struct{}{}
	m.violations = append(m.violations, v)
	return true
}

// OnCreate records a new meeting entering PENDING, checks the room
// timeline for overlaps and capacity, and reports MEETING_OVERLAP /
// CAPACITY_EXCEEDED on violation. Returns the violations newly raised.
func (m *Monitor) OnCreate(evt MeetingEvent) []PropertyViolation {
	m.mu.Lock()
	m.createdIDs[evt.MeetingID] = struct{}{}
	m.pendingIDs[evt.MeetingID] = struct{}{}
	m.roomOf[evt.MeetingID] = evt.RoomID
	m.startOf[evt.MeetingID] = evt.Start
	m.mu.Unlock()

	m.recordEvent(evt)

	var raised []PropertyViolation

	timeline := m.timelineFor(evt.RoomID)
	overlaps := timeline.overlapping(evt.Start, evt.End)
	overlapped := false
	for _, other := range overlaps {
		if other.meetingID == evt.MeetingID {
			continue
		}
		overlapped = true
		v := PropertyViolation{
			PropertyName: PropertyMeetingOverlap,
			Description:  "meeting overlaps an existing live meeting in the same room",
			Severity:     SeverityCritical,
			MeetingID:    evt.MeetingID,
			Details:      evt.RoomID + ":" + other.meetingID,
		}
		if m.report(v) {
			raised = append(raised, v)
		}
	}

	if evt.Attendees > evt.RoomCapacity {
		v := PropertyViolation{
			PropertyName: PropertyCapacityExceeded,
			Description:  "meeting attendee count exceeds room capacity",
			Severity:     SeverityError,
			MeetingID:    evt.MeetingID,
			Details:      evt.RoomID,
		}
		if m.report(v) {
			raised = append(raised, v)
		}
	}

	// Only seat the meeting in the room timeline when it did not conflict;
	// an overlapping meeting still gets admitted upstream (the monitor is an
	// observer, not a veto), but it must not become a future overlap source.
	if !overlapped {
		timeline.insert(evt.MeetingID, evt.Start, evt.End)
	}
	return raised
}

// OnConfirm resolves a pending meeting. A confirm for a meeting the monitor
// never saw created is itself a violation (CONFIRM_WITHOUT_CREATE). Returns
// the violations newly raised.
func (m *Monitor) OnConfirm(evt MeetingEvent) []PropertyViolation {
	m.mu.Lock()
	_, known := m.createdIDs[evt.MeetingID]
	delete(m.pendingIDs, evt.MeetingID)
	m.mu.Unlock()

	m.recordEvent(evt)
	m.scrubUnresolved(evt.MeetingID)

	if known {
		return nil
	}
	v := PropertyViolation{
		PropertyName: PropertyConfirmWithoutCreate,
		Description:  "meeting confirmed without a prior recorded create",
		Severity:     SeverityCritical,
		MeetingID:    evt.MeetingID,
		Details:      string(EventConfirm),
	}
	if m.report(v) {
		return []PropertyViolation{v}
	}
	return nil
}

// OnReject resolves a pending meeting without confirming it.
func (m *Monitor) OnReject(evt MeetingEvent) []PropertyViolation {
	m.mu.Lock()
	delete(m.pendingIDs, evt.MeetingID)
	m.mu.Unlock()

	m.recordEvent(evt)
	m.scrubUnresolved(evt.MeetingID)

	if timeline := m.timelineFor(evt.RoomID); timeline != nil {
		timeline.remove(evt.MeetingID)
	}
	return nil
}

// OnCancel removes a confirmed meeting's room reservation.
func (m *Monitor) OnCancel(evt MeetingEvent) []PropertyViolation {
	m.recordEvent(evt)
	if timeline := m.timelineFor(evt.RoomID); timeline != nil {
		timeline.remove(evt.MeetingID)
	}
	return nil
}

// OnComplete marks a confirmed meeting as having run its course, freeing its
// room reservation.
func (m *Monitor) OnComplete(evt MeetingEvent) []PropertyViolation {
	m.recordEvent(evt)
	if timeline := m.timelineFor(evt.RoomID); timeline != nil {
		timeline.remove(evt.MeetingID)
	}
	return nil
}

// OnUpdate logs an UPDATE event without otherwise changing monitor state
// (spec §4.3: an update event may be logged but does not change pendingIds).
func (m *Monitor) OnUpdate(evt MeetingEvent) []PropertyViolation {
	m.recordEvent(evt)
	return nil
}

// OnDelete removes all trace of a meeting. Deleting a meeting ID the
// monitor never recorded as created is a DELETE_NONEXISTENT violation; it
// does not otherwise affect monitor state. Returns the violations newly
// raised.
func (m *Monitor) OnDelete(evt MeetingEvent) []PropertyViolation {
	m.mu.Lock()
	_, known := m.createdIDs[evt.MeetingID]
	delete(m.createdIDs, evt.MeetingID)
	delete(m.pendingIDs, evt.MeetingID)
	roomID := m.roomOf[evt.MeetingID]
	delete(m.roomOf, evt.MeetingID)
	delete(m.startOf, evt.MeetingID)
	m.mu.Unlock()

	m.recordEvent(evt)

	if !known {
		v := PropertyViolation{
			PropertyName: PropertyDeleteNonexistent,
			Description:  "delete requested for a meeting the monitor never saw created",
			Severity:     SeverityError,
			MeetingID:    evt.MeetingID,
			Details:      string(EventDelete),
		}
		if m.report(v) {
			return []PropertyViolation{v}
		}
		return nil
	}

	if roomID == "" {
		roomID = evt.RoomID
	}
	if timeline := m.timelineFor(roomID); timeline != nil {
		timeline.remove(evt.MeetingID)
	}
	return nil
}

// CheckPending reports UNRESOLVED_MEETING for every meeting that is still
// PENDING whose scheduled start has already passed, as of the moment it is
// called (spec §4.2). It is intended to be invoked periodically by the
// caller (e.g. a background ticker).
func (m *Monitor) CheckPending() []PropertyViolation {
	now := m.now()

	m.mu.Lock()
	pendingSnapshot := make(map[string]time.Time, len(m.pendingIDs))
	for id := range m.pendingIDs {
		pendingSnapshot[id] = m.startOf[id]
	}
	m.mu.Unlock()

	var reported []PropertyViolation
	for id, start := range pendingSnapshot {
		if start.IsZero() || start.After(now) {
			continue
		}
		v := PropertyViolation{
			PropertyName: PropertyUnresolvedMeeting,
			Description:  "meeting is still pending but its scheduled start has already passed",
			Severity:     SeverityError,
			MeetingID:    id,
			Details:      start.Format(time.RFC3339),
		}
		if m.report(v) {
			reported = append(reported, v)
		}
	}
	return reported
}

// GetViolations returns a snapshot of every violation recorded so far.
func (m *Monitor) GetViolations() []PropertyViolation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]PropertyViolation(nil), m.violations...)
	sortViolationsByTime(out)
	return out
}

// GetViolationsBySeverity returns violations at or above the given severity.
func (m *Monitor) GetViolationsBySeverity(min Severity) []PropertyViolation {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []PropertyViolation
	for _, v := range m.violations {
		if v.Severity.AtLeast(min) {
			out = append(out, v)
		}
	}
	sortViolationsByTime(out)
	return out
}

// GetEventHistory returns a snapshot of every event recorded so far, ordered
// by the sequence in which they were received.
func (m *Monitor) GetEventHistory() []MeetingEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MeetingEvent(nil), m.eventHistory...)
}

// GetPendingCount returns the number of meetings currently tracked as
// PENDING.
func (m *Monitor) GetPendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pendingIDs)
}

// RemoveViolationsForMeeting drops every recorded violation concerning
// meetingID, used when a meeting is deleted so stale reports don't linger.
func (m *Monitor) RemoveViolationsForMeeting(meetingID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.violations[:0]
	for _, v := range m.violations {
		if v.MeetingID == meetingID {
			delete(m.seen, v.dedupKey())
			continue
		}
		kept = append(kept, v)
	}
	m.violations = kept
}

// Reset discards all monitor state. Intended for use between test cases.
func (m *Monitor) Reset() {
	m.timelines.Range(func(key, _ interface{}) bool {
		m.timelines.Delete(key)
		return true
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	m.createdIDs = make(map[string]struct{})
	m.pendingIDs = make(map[string]struct{})
	m.roomOf = make(map[string]string)
	m.startOf = make(map[string]time.Time)
	m.eventHistory = nil
	m.violations = nil
	m.seen = make(map[string]struct{})
}

// Statistics summarizes the monitor's current state for an operator-facing
// endpoint.
type Statistics struct {
	TotalEvents      int
	TotalViolations  int
	PendingMeetings  int
	ViolationsByName map[string]int
}

// GetStatistics computes a Statistics snapshot.
func (m *Monitor) GetStatistics() Statistics {
	m.mu.Lock()
	defer m.mu.Unlock()

	byName := make(map[string]int)
	for _, v := range m.violations {
		byName[v.PropertyName]++
	}

	return Statistics{
		TotalEvents:      len(m.eventHistory),
		TotalViolations:  len(m.violations),
		PendingMeetings:  len(m.pendingIDs),
		ViolationsByName: byName,
	}
}

// sortViolationsByTime orders violations chronologically; used by handlers
// that must present a stable, deterministic ordering.
func sortViolationsByTime(violations []PropertyViolation) {
	sort.SliceStable(violations, func(i, j int) bool {
		return violations[i].DetectedAt.Before(violations[j].DetectedAt)
	})
}
