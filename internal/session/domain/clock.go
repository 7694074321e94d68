package session

// Clock advances elapsed roast time one second at a time and detects when a
// new sampling boundary has been crossed. It is not safe for concurrent use;
// the application service serializes cadence ticks and user actions onto a
// single mutation timeline.
type Clock struct {
	config   Config
	readings *ReadingStore

	elapsed      int
	running      bool
	lastBoundary int
}

// NewClock constructs a stopped clock bound to the session's reading store.
// The store is jointly owned: starting a session anchors the charge reading
// in it and resetting the session clears it.
func NewClock(readings *ReadingStore) *Clock {
	if readings == nil {
		readings = NewReadingStore()
	}
	return &Clock{readings: readings}
}

// CanStart reports whether Start would accept the configuration. It mirrors
// the Start validation so callers can pre-disable the start action.
func (c *Clock) CanStart(cfg Config) bool {
	return !c.running && cfg.Valid()
}

// Start begins a session with the given configuration. It is a silent no-op
// returning false when the clock is already running or the configuration is
// invalid. On success the starting reading is recorded at boundary index 0,
// replacing any prior anchor: starting a session always re-anchors it.
func (c *Clock) Start(cfg Config) bool {
	if c.running || !cfg.Valid() {
		return false
	}
	c.config = cfg
	c.running = true
	c.lastBoundary = 0
	c.readings.Record(0, cfg.StartingReading)
	return true
}

// Tick advances elapsed time by one second. It returns the new boundary index
// and true when this tick crossed a sampling boundary that has not been
// notified yet. Under a one-second cadence with interval >= 1s a tick can
// advance the boundary by at most one step, so at most one crossing is
// reported per tick. Crossings stop once the boundary would exceed
// MaxBoundary; elapsed time itself keeps advancing until the clock is
// stopped.
func (c *Clock) Tick() (int, bool) {
	if !c.running {
		return 0, false
	}
	c.elapsed++
	boundary := c.elapsed / c.config.IntervalSeconds
	if boundary > c.lastBoundary && boundary <= c.config.MaxBoundary() {
		c.lastBoundary = boundary
		return boundary, true
	}
	return 0, false
}

// Stop halts the cadence. Elapsed time and boundary progress are preserved.
func (c *Clock) Stop() {
	c.running = false
}

// Reset stops the clock, zeroes elapsed time and boundary progress, and
// clears every recorded reading. Reset is a whole-session operation.
func (c *Clock) Reset() {
	c.running = false
	c.elapsed = 0
	c.lastBoundary = 0
	c.readings.Clear()
}

// Elapsed returns elapsed session time in seconds.
func (c *Clock) Elapsed() int { return c.elapsed }

// Running reports whether the clock is running.
func (c *Clock) Running() bool { return c.running }

// LastBoundary returns the last boundary index that was notified.
func (c *Clock) LastBoundary() int { return c.lastBoundary }

// Config returns the configuration of the current session. It is the zero
// Config before the first successful Start.
func (c *Clock) Config() Config { return c.config }
