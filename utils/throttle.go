package utils

import (
	"context"
	"time"
)

// Throttle spaces successive calls at least interval apart. It is meant for
// one caller at a time and holds no lock.
type Throttle struct {
	interval time.Duration
	last     time.Time
}

// NewThrottle creates a Throttle; intervalMs <= 0 disables it.
func NewThrottle(intervalMs int) *Throttle {
	return &Throttle{interval: time.Duration(intervalMs) * time.Millisecond}
}

// Wait blocks until the interval since the previous Wait has elapsed.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil || t.interval <= 0 {
		return ctx.Err()
	}
	if !t.last.IsZero() {
		if remaining := t.interval - time.Since(t.last); remaining > 0 {
			timer := time.NewTimer(remaining)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	t.last = time.Now()
	return nil
}

// IDSet tracks identifiers that have already been seen.
type IDSet struct {
	seen map[string]struct{}
}

// NewIDSet creates an empty IDSet.
func NewIDSet() *IDSet {
	return &IDSet{seen: make(map[string]struct{})}
}

// Add returns true if id was newly added, false if already present.
func (s *IDSet) Add(id string) bool {
	if _, exists := s.seen[id]; exists {
		return false
	}
	s.seen[id] = struct{}{}
	return true
}

// Size returns the number of unique ids tracked.
func (s *IDSet) Size() int {
	return len(s.seen)
}
