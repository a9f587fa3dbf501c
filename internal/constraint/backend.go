package constraint

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Backend is the decision backend adapter (C2): a thin, mutex-guarded
// wrapper over the encoder that measures solving time, enforces a
// configurable deadline, and can be disabled at runtime to compare the
// verified and unverified regimes without a redeploy.
type Backend struct {
	mu      sync.Mutex
	enabled bool
	timeout time.Duration
	cache   *resultCache
	now     func() time.Time
}

// NewBackend constructs a Backend. timeout is the hard deadline beyond which
// checkFeasibility returns ERROR("solver timeout"); the zero value disables
// the deadline enforcement.
func NewBackend(timeout time.Duration) *Backend {
	return &Backend{
		enabled: true,
		timeout: timeout,
		cache:   newResultCache(30*time.Second, 256, time.Now),
		now:     time.Now,
	}
}

// SetEnabled flips the live enable/disable switch described in spec §4.1.
func (b *Backend) SetEnabled(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = enabled
}

// Enabled reports whether the backend currently performs verification.
func (b *Backend) Enabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enabled
}

// CheckFeasibility decides whether proposed is admissible against existing.
// When disabled, it returns SAT(0) unconditionally and skips pre-checks.
func (b *Backend) CheckFeasibility(ctx context.Context, proposed SchedulingConstraint, existing []ExistingMeeting) DecisionResult {
	b.mu.Lock()
	enabled := b.enabled
	timeout := b.timeout
	b.mu.Unlock()

	if !enabled {
		return satResult(0)
	}

	key := signature(proposed, existing)
	if cached, ok := b.cache.Get(key); ok {
		return cached
	}

	result := b.runWithTimeout(ctx, timeout, func() DecisionResult {
		start := b.now()
		violations := encode(proposed, existing)
		elapsed := b.now().Sub(start).Milliseconds()
		if len(violations) == 0 {
			return satResult(elapsed)
		}
		return unsatResult(violations, elapsed)
	})

	b.cache.Store(key, result)
	return result
}

// CheckBatch is the batch variant of spec §4.1: each proposal is checked
// against existing, then every ordered pair among proposals is checked for
// room and participant conflicts using the same overlap predicate.
func (b *Backend) CheckBatch(ctx context.Context, proposals []SchedulingConstraint, existing []ExistingMeeting) DecisionResult {
	b.mu.Lock()
	enabled := b.enabled
	timeout := b.timeout
	b.mu.Unlock()

	if !enabled {
		return satResult(0)
	}

	return b.runWithTimeout(ctx, timeout, func() DecisionResult {
		start := b.now()
		var violations []string

		for i, proposal := range proposals {
			for _, v := range encode(proposal, existing) {
				violations = append(violations, indexedWitness(i, v))
			}
		}

		for i := 0; i < len(proposals); i++ {
			for j := i + 1; j < len(proposals); j++ {
				for _, v := range pairwiseConflicts(proposals[i], proposals[j]) {
					violations = append(violations, pairWitness(i, j, v))
				}
			}
		}

		elapsed := b.now().Sub(start).Milliseconds()
		if len(violations) == 0 {
			return satResult(elapsed)
		}
		return unsatResult(violations, elapsed)
	})
}

func (b *Backend) runWithTimeout(ctx context.Context, timeout time.Duration, fn func() DecisionResult) DecisionResult {
	if timeout <= 0 {
		return fn()
	}

	done := make(chan DecisionResult, 1)
	go func() {
		done <- fn()
	}()

	select {
	case result := <-done:
		return result
	case <-time.After(timeout):
		return errorResult("solver timeout", timeout.Milliseconds())
	case <-ctx.Done():
		return errorResult("solver timeout", timeout.Milliseconds())
	}
}

func pairwiseConflicts(a, b SchedulingConstraint) []string {
	if !overlaps(a.Start, a.End, b.Start, b.End) {
		return nil
	}

	var witnesses []string
	if a.RoomID == b.RoomID {
		witnesses = append(witnesses, "Room conflict: overlapping proposals in the same room")
	}

	existingSet := make(map[string]struct{}, len(a.ParticipantIDs))
	for _, p := range a.ParticipantIDs {
		existingSet[p] = struct{}{}
	}
	for _, p := range b.ParticipantIDs {
		if _, shared := existingSet[p]; shared {
			witnesses = append(witnesses, "Participant conflict: participant "+p+" appears in overlapping proposals")
		}
	}
	return witnesses
}

func indexedWitness(index int, witness string) string {
	return fmt.Sprintf("%s [proposal %d]", witness, index)
}

func pairWitness(i, j int, witness string) string {
	return fmt.Sprintf("%s [proposals %d, %d]", witness, i, j)
}
