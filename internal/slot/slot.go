package slot

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrPutTimeout indicates the slot stayed occupied for the whole
	// put timeout. The peer is not draining it.
	ErrPutTimeout = errors.New("slot: put timed out, slot still occupied")

	// ErrGetTimeout indicates the slot stayed empty for the whole get
	// timeout. The peer is not filling it.
	ErrGetTimeout = errors.New("slot: get timed out, slot empty")
)

// Slot is a capacity-1 handoff channel between exactly two goroutines.
// A full slot forces the producer to rendezvous with the consumer, which
// is what enforces the single-item-in-flight discipline of the bridge.
type Slot[T any] struct {
	ch chan T
}

// New creates an empty slot.
func New[T any]() *Slot[T] {
	return &Slot[T]{ch: make(chan T, 1)}
}

// Put places v into the slot, blocking until the slot is free, the
// timeout elapses or ctx is done.
func (s *Slot[T]) Put(ctx context.Context, v T, timeout time.Duration) error {
	select {
	case s.ch <- v:
		return nil
	default:
	}

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case s.ch <- v:
		return nil
	case <-t.C:
		return ErrPutTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get removes and returns the slot's item, blocking until one is
// available, the timeout elapses or ctx is done.
func (s *Slot[T]) Get(ctx context.Context, timeout time.Duration) (T, error) {
	var zero T

	select {
	case v := <-s.ch:
		return v, nil
	default:
	}

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case v := <-s.ch:
		return v, nil
	case <-t.C:
		return zero, ErrGetTimeout
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// TryPut places v without blocking. Returns false when the slot is full.
func (s *Slot[T]) TryPut(v T) bool {
	select {
	case s.ch <- v:
		return true
	default:
		return false
	}
}

// TryTake removes the slot's item without blocking.
func (s *Slot[T]) TryTake() (T, bool) {
	select {
	case v := <-s.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Drain repeatedly removes items without blocking, making at most
// maxAttempts attempts. The bound avoids livelock when a third party is
// concurrently producing. Returns the number of items removed.
func (s *Slot[T]) Drain(maxAttempts int) int {
	removed := 0
	for i := 0; i < maxAttempts; i++ {
		if _, ok := s.TryTake(); ok {
			removed++
		}
	}
	return removed
}

// Len returns the instantaneous occupancy. Diagnostics only.
func (s *Slot[T]) Len() int {
	return len(s.ch)
}
