package analytics

import (
	"testing"

	session "roastlog/internal/session/domain"
)

func seriesOf(t *testing.T, cfg session.Config, readings map[int]float64) []session.SeriesPoint {
	t.Helper()
	return session.DenseSeriesFrom(cfg, readings)
}

func TestRateOfRiseSpansGaps(t *testing.T) {
	cfg := session.Config{DurationMinutes: 3, IntervalSeconds: 30, StartingReading: 90}
	// Boundary 2 is missing; the rate into boundary 3 spans 90 seconds.
	series := seriesOf(t, cfg, map[int]float64{0: 90, 1: 105, 3: 135})

	rates := RateOfRise(series)
	if len(rates) != 2 {
		t.Fatalf("rates = %d, want 2", len(rates))
	}
	if rates[0].BoundaryIndex != 1 || rates[0].RatePerMinute != 30 {
		t.Fatalf("rate into boundary 1 = %+v, want 30 deg/min", rates[0])
	}
	if rates[1].BoundaryIndex != 3 || rates[1].RatePerMinute != 20 {
		t.Fatalf("rate into boundary 3 = %+v, want 20 deg/min across the gap", rates[1])
	}
}

func TestSummarize(t *testing.T) {
	cfg := session.Config{DurationMinutes: 2, IntervalSeconds: 30, StartingReading: 95}
	series := seriesOf(t, cfg, map[int]float64{0: 95, 1: 120, 2: 140, 3: 138, 4: 136})

	summary := Summarize(series)
	if summary.ReadingCount != 5 {
		t.Fatalf("reading count = %d, want 5", summary.ReadingCount)
	}
	if summary.MaxValue != 140 || summary.MaxSeconds != 60 {
		t.Fatalf("max = %.1f at %ds, want 140 at 60s", summary.MaxValue, summary.MaxSeconds)
	}
	if summary.FinalValue != 136 || summary.FinalSeconds != 120 {
		t.Fatalf("final = %.1f at %ds, want 136 at 120s", summary.FinalValue, summary.FinalSeconds)
	}
	if summary.PeakRatePerMinute != 50 {
		t.Fatalf("peak rate = %.1f, want 50", summary.PeakRatePerMinute)
	}
}

func TestSummarizeEmptySeries(t *testing.T) {
	summary := Summarize([]session.SeriesPoint{{BoundaryIndex: 0, Seconds: 0}, {BoundaryIndex: 1, Seconds: 60}})
	if summary != (Summary{}) {
		t.Fatalf("summary = %+v, want zero for an all-absent series", summary)
	}
}
