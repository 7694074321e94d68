package roasts

import (
	"context"
	"errors"
	"time"

	session "roastlog/internal/session/domain"
)

// ErrRoastNotFound is returned when no archived roast matches the id.
var ErrRoastNotFound = errors.New("roasts: roast not found")

// ErrEmptyReadings is returned when a roast is archived without readings.
var ErrEmptyReadings = errors.New("roasts: no readings to archive")

// ErrInvalidConfig is returned when the session configuration is not valid.
var ErrInvalidConfig = errors.New("roasts: invalid session configuration")

// Roast is an archived, finished roast session: its configuration plus the
// sparse readings as they stood when the session was finished.
type Roast struct {
	ID              string
	Label           string
	RoastedAt       time.Time
	DurationMinutes int
	IntervalSeconds int
	StartingReading float64
	Readings        map[int]float64
}

// BuildRoastID derives the archive identity from the finish time.
func BuildRoastID(roastedAt time.Time) string {
	return "roast-" + roastedAt.UTC().Format("20060102-150405")
}

// New constructs an archived roast from a finished session snapshot. The
// readings map is copied so later session mutations cannot reach the archive.
func New(id, label string, roastedAt time.Time, cfg session.Config, readings map[int]float64) (*Roast, error) {
	if id == "" {
		return nil, errors.New("roasts: empty id")
	}
	if !cfg.Valid() {
		return nil, ErrInvalidConfig
	}
	if len(readings) == 0 {
		return nil, ErrEmptyReadings
	}
	copied := make(map[int]float64, len(readings))
	for boundary, value := range readings {
		copied[boundary] = value
	}
	return &Roast{
		ID:              id,
		Label:           label,
		RoastedAt:       roastedAt,
		DurationMinutes: cfg.DurationMinutes,
		IntervalSeconds: cfg.IntervalSeconds,
		StartingReading: cfg.StartingReading,
		Readings:        copied,
	}, nil
}

// Config rebuilds the session configuration of the archived roast.
func (r *Roast) Config() session.Config {
	return session.Config{
		DurationMinutes: r.DurationMinutes,
		IntervalSeconds: r.IntervalSeconds,
		StartingReading: r.StartingReading,
	}
}

// DenseSeries reconstructs the chart-ready series for reporting.
func (r *Roast) DenseSeries() []session.SeriesPoint {
	return session.DenseSeriesFrom(r.Config(), r.Readings)
}

// Repository persists archived roasts.
type Repository interface {
	Save(ctx context.Context, roast *Roast) error
	Get(ctx context.Context, id string) (*Roast, error)
	List(ctx context.Context, limit int) ([]*Roast, error)
}
