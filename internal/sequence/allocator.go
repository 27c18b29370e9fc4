// Package sequence allocates contiguous human-facing sequence numbers per
// entity kind under concurrent writers, using optimistic-concurrency retry
// against the counters table.
package sequence

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/orehub/minetrack/internal/model"
	"github.com/orehub/minetrack/internal/store"
)

// EntityIssue is the counter name for issue sequence numbers.
const EntityIssue = "issue"

const (
	defaultMaxRetries = 5
	backoffMin        = 50 * time.Millisecond
	backoffMax        = 150 * time.Millisecond
)

// Allocator hands out blocks of sequence numbers. Uniqueness and
// monotonicity come from a conditional counter update, not a lock: read
// the current value, try to advance it guarded by "still equals what was
// read", and retry with a small randomized backoff when another allocator
// won the race.
type Allocator struct {
	store      store.Store
	maxRetries int
	logger     *slog.Logger

	// sleep is swappable so tests do not wait out real backoffs.
	sleep func(time.Duration)
}

// NewAllocator returns an allocator backed by the given store.
func NewAllocator(s store.Store, logger *slog.Logger) *Allocator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Allocator{
		store:      s,
		maxRetries: defaultMaxRetries,
		logger:     logger,
		sleep:      time.Sleep,
	}
}

// AllocateIDs reserves count consecutive sequence numbers for the entity
// and returns them, lowest first. Allocated numbers are never reused, even
// when the surrounding request later fails.
func (a *Allocator) AllocateIDs(ctx context.Context, entityName string, count int) ([]int64, error) {
	if count <= 0 {
		return nil, nil
	}

	if err := a.store.EnsureCounter(ctx, entityName); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= a.maxRetries; attempt++ {
		current, err := a.store.GetCounter(ctx, entityName)
		if err != nil {
			return nil, err
		}

		ok, err := a.store.CompareAndSwapCounter(ctx, entityName, current, current+int64(count))
		if err != nil {
			return nil, err
		}
		if ok {
			ids := make([]int64, count)
			for i := range ids {
				ids[i] = current + int64(i) + 1
			}
			return ids, nil
		}

		a.logger.Debug("sequence allocation conflict, retrying",
			"entity", entityName, "attempt", attempt)

		if attempt < a.maxRetries {
			a.sleep(backoffDelay())
		}
	}

	return nil, &model.AllocationExhaustedError{Entity: entityName, Attempts: a.maxRetries}
}

// backoffDelay picks a uniformly random delay in [backoffMin, backoffMax].
func backoffDelay() time.Duration {
	spread := backoffMax - backoffMin
	return backoffMin + time.Duration(rand.Int63n(int64(spread)+1))
}
