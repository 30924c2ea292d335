package clock

import (
	"context"
	"math"
	"sync/atomic"
	"time"
)

// Stopwatch is a free-running tick counter. Increment is called once per
// time quantum by a timer interrupt; readers sample Ticks without locking.
type Stopwatch struct {
	value  atomic.Uint32
	mark   atomic.Uint32
	halted atomic.Bool
}

// NewStopwatch creates a running stopwatch at zero.
func NewStopwatch() *Stopwatch {
	return &Stopwatch{}
}

// Increment advances the counter by one tick unless paused.
func (s *Stopwatch) Increment() {
	if !s.halted.Load() {
		s.value.Add(1)
	}
}

// Ticks returns the current counter value.
func (s *Stopwatch) Ticks() uint32 {
	return s.value.Load()
}

// Pause stops the counter from advancing.
func (s *Stopwatch) Pause() {
	s.halted.Store(true)
}

// Resume lets the counter advance again.
func (s *Stopwatch) Resume() {
	s.halted.Store(false)
}

// Paused reports whether the counter is halted.
func (s *Stopwatch) Paused() bool {
	return s.halted.Load()
}

// Reset clears the counter and the mark.
func (s *Stopwatch) Reset() {
	s.value.Store(0)
	s.mark.Store(0)
}

// SetMark records the current counter value as the reference for Elapsed.
func (s *Stopwatch) SetMark() {
	s.mark.Store(s.value.Load())
}

// Elapsed returns the ticks since the last mark, accounting for counter
// wrap-around. If setNewMark is true the mark moves to the current value.
func (s *Stopwatch) Elapsed(setNewMark bool) uint32 {
	start := s.mark.Load()
	current := s.value.Load()

	var elapsed uint32
	if current >= start {
		elapsed = current - start
	} else {
		elapsed = (math.MaxUint32 - start) + current + 1
	}

	if setNewMark {
		s.mark.Store(current)
	}
	return elapsed
}

// Run increments the counter once per period until ctx is done.
// It stands in for the timer interrupt on hosted builds.
func (s *Stopwatch) Run(ctx context.Context, period time.Duration) error {
	if period <= 0 {
		period = time.Millisecond
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Increment()
		}
	}
}
