package application

import "time"

// Cadence produces the periodic signal that drives a running session. The
// wall-clock implementation is used in production; tests inject a manual
// channel to advance time deterministically.
type Cadence interface {
	// Start returns a channel emitting one value per period and a stop
	// function releasing the underlying timer.
	Start(period time.Duration) (<-chan time.Time, func())
}

// TickerCadence drives sessions from the wall clock.
type TickerCadence struct{}

// Start begins a ticker with the given period.
func (TickerCadence) Start(period time.Duration) (<-chan time.Time, func()) {
	ticker := time.NewTicker(period)
	return ticker.C, ticker.Stop
}
