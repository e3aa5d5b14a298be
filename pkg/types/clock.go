package types

import "time"

// Clock is the time source used for stop timeouts, task durations and
// submission pacing. Tests substitute a mock clock.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	NewTimer(d time.Duration) Timer
	NewTicker(d time.Duration) Ticker
}

// Timer is a one-shot timer created by a Clock
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

// Ticker delivers ticks at a fixed period until stopped
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// NewRealClock returns a Clock backed by the time package
func NewRealClock() Clock {
	return wallClock{}
}

type wallClock struct{}

func (wallClock) Now() time.Time                  { return time.Now() }
func (wallClock) Since(t time.Time) time.Duration { return time.Since(t) }

func (wallClock) NewTimer(d time.Duration) Timer {
	return stdTimer{time.NewTimer(d)}
}

func (wallClock) NewTicker(d time.Duration) Ticker {
	return stdTicker{time.NewTicker(d)}
}

type stdTimer struct{ *time.Timer }

func (t stdTimer) C() <-chan time.Time { return t.Timer.C }

type stdTicker struct{ *time.Ticker }

func (t stdTicker) C() <-chan time.Time { return t.Ticker.C }
