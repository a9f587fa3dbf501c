package constraint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"
)

// resultCache stores recently computed DecisionResults to avoid re-running
// the encoder for identical checkFeasibility calls, making the "idempotent"
// testable property of spec §8 cheap as well as correct. Adapted from the
// teacher's warningCache: same TTL-plus-bounded-size eviction shape, now
// keyed on a deterministic signature of the constraint rather than a list
// filter.
type resultCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]resultCacheEntry
	hits       int
}

type resultCacheEntry struct {
	result    DecisionResult
	expiresAt time.Time
}

func newResultCache(ttl time.Duration, maxEntries int, now func() time.Time) *resultCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &resultCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]resultCacheEntry),
	}
}

func (c *resultCache) Get(key string) (DecisionResult, bool) {
	if c == nil {
		return DecisionResult{}, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return DecisionResult{}, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return DecisionResult{}, false
	}

	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	return entry.result, true
}

func (c *resultCache) Store(key string, result DecisionResult) {
	if c == nil {
		return
	}
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = resultCacheEntry{result: result, expiresAt: expiry}
}

// Hits reports how many Get calls were served from the cache, for tests.
func (c *resultCache) Hits() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits
}

func (c *resultCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *resultCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

// signature computes a deterministic digest of a constraint plus the
// existing snapshot it is checked against, so repeated identical calls hit
// the cache regardless of slice ordering from the caller.
func signature(proposed SchedulingConstraint, existing []ExistingMeeting) string {
	participants := append([]string(nil), proposed.ParticipantIDs...)
	sort.Strings(participants)

	h := sha256.New()
	fmt.Fprintf(h, "proposed|%s|%s|%d|%d|%d\n",
		proposed.MeetingID, proposed.RoomID, proposed.RoomCapacity,
		proposed.Start.UTC().Unix(), proposed.End.UTC().Unix(),
	)
	for _, p := range participants {
		fmt.Fprintf(h, "p:%s\n", p)
	}

	rows := make([]string, 0, len(existing))
	for _, e := range existing {
		eParticipants := append([]string(nil), e.ParticipantIDs...)
		sort.Strings(eParticipants)
		rows = append(rows, fmt.Sprintf("%s|%s|%d|%d|%v", e.MeetingID, e.RoomID, e.Start.UTC().Unix(), e.End.UTC().Unix(), eParticipants))
	}
	sort.Strings(rows)
	for _, row := range rows {
		fmt.Fprintf(h, "e:%s\n", row)
	}

	return hex.EncodeToString(h.Sum(nil))
}
