package clock

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func TestStopwatchIncrement(t *testing.T) {
	s := NewStopwatch()
	for i := 0; i < 5; i++ {
		s.Increment()
	}
	if got := s.Ticks(); got != 5 {
		t.Errorf("Ticks() = %d, want 5", got)
	}

	s.Pause()
	s.Increment()
	if got := s.Ticks(); got != 5 {
		t.Errorf("Ticks() while paused = %d, want 5", got)
	}
	if !s.Paused() {
		t.Error("Paused() = false, want true")
	}

	s.Resume()
	s.Increment()
	if got := s.Ticks(); got != 6 {
		t.Errorf("Ticks() after resume = %d, want 6", got)
	}

	s.Reset()
	if got := s.Ticks(); got != 0 {
		t.Errorf("Ticks() after reset = %d, want 0", got)
	}
}

func TestStopwatchElapsed(t *testing.T) {
	s := NewStopwatch()
	s.SetMark()
	for i := 0; i < 10; i++ {
		s.Increment()
	}

	if got := s.Elapsed(false); got != 10 {
		t.Errorf("Elapsed(false) = %d, want 10", got)
	}
	if got := s.Elapsed(true); got != 10 {
		t.Errorf("Elapsed(true) = %d, want 10", got)
	}
	if got := s.Elapsed(false); got != 0 {
		t.Errorf("Elapsed() after new mark = %d, want 0", got)
	}
}

func TestStopwatchElapsedWrap(t *testing.T) {
	s := NewStopwatch()
	s.value.Store(math.MaxUint32 - 2)
	s.SetMark()
	for i := 0; i < 5; i++ {
		s.Increment()
	}
	if got := s.Ticks(); got != 2 {
		t.Fatalf("Ticks() = %d, want 2", got)
	}
	if got := s.Elapsed(false); got != 5 {
		t.Errorf("Elapsed() across wrap = %d, want 5", got)
	}
}

func TestStopwatchRun(t *testing.T) {
	s := NewStopwatch()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, time.Millisecond) }()

	deadline := time.Now().Add(2 * time.Second)
	for s.Ticks() < 3 {
		if time.Now().After(deadline) {
			t.Fatal("stopwatch did not advance")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want %v", err, context.Canceled)
	}
}
