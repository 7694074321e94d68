package session

import "sort"

// SeriesPoint is one entry of the dense chart series. Value is nil when no
// reading exists for the boundary; a missing reading is never defaulted to
// zero because zero looks like a plausible temperature on a chart.
type SeriesPoint struct {
	BoundaryIndex int
	Seconds       int
	Value         *float64
}

// ReadingStore holds sparse temperature readings keyed by boundary index.
// All operations are total; there are no error paths.
type ReadingStore struct {
	readings map[int]float64
}

// NewReadingStore constructs an empty store.
func NewReadingStore() *ReadingStore {
	return &ReadingStore{readings: make(map[int]float64)}
}

// Record inserts or replaces the reading at the boundary index. Last write
// wins, which is how corrections of past readings work.
func (s *ReadingStore) Record(boundaryIndex int, value float64) {
	s.readings[boundaryIndex] = value
}

// Remove deletes the reading at the boundary index, if present.
func (s *ReadingStore) Remove(boundaryIndex int) {
	delete(s.readings, boundaryIndex)
}

// Clear removes every reading. Used by session reset.
func (s *ReadingStore) Clear() {
	s.readings = make(map[int]float64)
}

// Value returns the reading at the boundary index, if present.
func (s *ReadingStore) Value(boundaryIndex int) (float64, bool) {
	value, ok := s.readings[boundaryIndex]
	return value, ok
}

// Len returns the number of recorded readings.
func (s *ReadingStore) Len() int { return len(s.readings) }

// SortedBoundaries returns the populated boundary indices in ascending
// order, used to drive correction selection.
func (s *ReadingStore) SortedBoundaries() []int {
	boundaries := make([]int, 0, len(s.readings))
	for boundary := range s.readings {
		boundaries = append(boundaries, boundary)
	}
	sort.Ints(boundaries)
	return boundaries
}

// Snapshot returns a detached copy of the sparse readings.
func (s *ReadingStore) Snapshot() map[int]float64 {
	snapshot := make(map[int]float64, len(s.readings))
	for boundary, value := range s.readings {
		snapshot[boundary] = value
	}
	return snapshot
}

// DenseSeries projects the sparse readings onto every boundary index from 0
// to cfg.MaxBoundary() inclusive, in ascending order. Missing boundaries
// carry a nil value, except index 0 which falls back to the configured
// starting reading when no explicit entry exists for it. The projection is a
// pure function of the current store state and may be called repeatedly as
// readings arrive.
func (s *ReadingStore) DenseSeries(cfg Config) []SeriesPoint {
	maxBoundary := cfg.MaxBoundary()
	series := make([]SeriesPoint, 0, maxBoundary+1)
	for boundary := 0; boundary <= maxBoundary; boundary++ {
		point := SeriesPoint{
			BoundaryIndex: boundary,
			Seconds:       boundary * cfg.IntervalSeconds,
		}
		if value, ok := s.readings[boundary]; ok {
			v := value
			point.Value = &v
		} else if boundary == 0 {
			v := cfg.StartingReading
			point.Value = &v
		}
		series = append(series, point)
	}
	return series
}

// DenseSeriesFrom builds the dense series for a detached sparse snapshot,
// such as an archived roast, without constructing a store by hand.
func DenseSeriesFrom(cfg Config, readings map[int]float64) []SeriesPoint {
	store := NewReadingStore()
	for boundary, value := range readings {
		store.Record(boundary, value)
	}
	return store.DenseSeries(cfg)
}
