package events

// SessionStarted is published after a session successfully starts.
type SessionStarted struct {
	DurationMinutes int
	IntervalSeconds int
	StartingReading float64
	MaxBoundary     int
}

// SessionStopped is published after the cadence halts.
type SessionStopped struct {
	ElapsedSeconds int
}

// SessionReset is published after a whole-session reset.
type SessionReset struct{}

// ClockTicked is published once per cadence second while running, for live
// timer displays.
type ClockTicked struct {
	ElapsedSeconds int
}

// BoundaryCrossed is published when elapsed time crosses a new sampling
// boundary. The external layer prompts for a reading in response. Crossings
// always fire even when a prior prompt is still unresolved; subscribers
// queue or coalesce them.
type BoundaryCrossed struct {
	BoundaryIndex  int
	ElapsedSeconds int
}

// ReadingRecorded is published after a reading is recorded or corrected.
type ReadingRecorded struct {
	BoundaryIndex int
	Value         float64
	Correction    bool
}

// ReadingRemoved is published after a reading is removed.
type ReadingRemoved struct {
	BoundaryIndex int
}
