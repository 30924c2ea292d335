// Package clock provides the timing collaborators used by the TWI master:
// a system clock provider reporting the CPU frequency after prescaling,
// and a free-running stopwatch whose tick counter is advanced by a timer
// interrupt (or, on hosted builds, by [Stopwatch.Run]).
//
// The TWI master consumes these through two single-method interfaces, so
// tests can substitute deterministic fakes:
//
//	sys := clock.NewSystem(16_000_000)
//	sw := clock.NewStopwatch()
//	go sw.Run(ctx, time.Millisecond)
//	m := twi.New(regs, sys, sw)
package clock
