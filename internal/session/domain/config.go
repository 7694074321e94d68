package session

// Charge temperature bounds accepted when starting a session. Readings
// entered later during the roast are not range-checked here; that is an
// interface-layer concern.
const (
	MinStartingReading = 70.0
	MaxStartingReading = 240.0
)

// Config is the immutable configuration of one roast session.
type Config struct {
	DurationMinutes int
	IntervalSeconds int
	StartingReading float64
}

// Valid reports whether the configuration can start a session.
func (c Config) Valid() bool {
	return c.DurationMinutes > 0 &&
		c.IntervalSeconds > 0 &&
		c.StartingReading >= MinStartingReading &&
		c.StartingReading <= MaxStartingReading
}

// MaxBoundary returns the highest sampling boundary index of the session:
// the number of whole sampling intervals inside the target duration.
func (c Config) MaxBoundary() int {
	if c.IntervalSeconds <= 0 {
		return 0
	}
	return c.DurationMinutes * 60 / c.IntervalSeconds
}
