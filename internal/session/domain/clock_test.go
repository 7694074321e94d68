package session

import "testing"

func tickSeconds(t *testing.T, clock *Clock, seconds int) []int {
	t.Helper()
	var crossings []int
	for i := 0; i < seconds; i++ {
		if boundary, crossed := clock.Tick(); crossed {
			crossings = append(crossings, boundary)
		}
	}
	return crossings
}

func TestCanStart(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"valid", Config{DurationMinutes: 10, IntervalSeconds: 60, StartingReading: 150}, true},
		{"lower bound inclusive", Config{DurationMinutes: 10, IntervalSeconds: 60, StartingReading: 70.0}, true},
		{"upper bound inclusive", Config{DurationMinutes: 10, IntervalSeconds: 60, StartingReading: 240.0}, true},
		{"zero duration", Config{DurationMinutes: 0, IntervalSeconds: 60, StartingReading: 150}, false},
		{"zero interval", Config{DurationMinutes: 10, IntervalSeconds: 0, StartingReading: 150}, false},
		{"reading below range", Config{DurationMinutes: 10, IntervalSeconds: 60, StartingReading: 69.9}, false},
		{"reading above range", Config{DurationMinutes: 10, IntervalSeconds: 60, StartingReading: 240.1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clock := NewClock(NewReadingStore())
			if got := clock.CanStart(tc.cfg); got != tc.want {
				t.Fatalf("CanStart(%+v) = %v, want %v", tc.cfg, got, tc.want)
			}
			if got := clock.Start(tc.cfg); got != tc.want {
				t.Fatalf("Start(%+v) = %v, want %v", tc.cfg, got, tc.want)
			}
		})
	}
}

func TestStartAnchorsChargeReading(t *testing.T) {
	store := NewReadingStore()
	clock := NewClock(store)

	store.Record(0, 199)
	if !clock.Start(Config{DurationMinutes: 2, IntervalSeconds: 60, StartingReading: 95.5}) {
		t.Fatal("expected start to succeed")
	}
	value, ok := store.Value(0)
	if !ok || value != 95.5 {
		t.Fatalf("anchor reading = %v, %v; want 95.5, true", value, ok)
	}
}

func TestStartWhileRunningIsNoOp(t *testing.T) {
	store := NewReadingStore()
	clock := NewClock(store)
	cfg := Config{DurationMinutes: 2, IntervalSeconds: 60, StartingReading: 90}
	if !clock.Start(cfg) {
		t.Fatal("expected start to succeed")
	}
	tickSeconds(t, clock, 30)

	if clock.Start(Config{DurationMinutes: 5, IntervalSeconds: 30, StartingReading: 120}) {
		t.Fatal("expected start while running to be refused")
	}
	if clock.CanStart(cfg) {
		t.Fatal("expected CanStart to report false while running")
	}
	if clock.Elapsed() != 30 {
		t.Fatalf("elapsed = %d, want 30 (start must not change state)", clock.Elapsed())
	}
	if clock.Config() != cfg {
		t.Fatalf("config = %+v, want the original %+v", clock.Config(), cfg)
	}
}

func TestTickFiresEachBoundaryOnce(t *testing.T) {
	clock := NewClock(NewReadingStore())
	if !clock.Start(Config{DurationMinutes: 2, IntervalSeconds: 60, StartingReading: 70.0}) {
		t.Fatal("expected start to succeed")
	}

	crossings := tickSeconds(t, clock, 60)
	if clock.Elapsed() != 60 {
		t.Fatalf("elapsed = %d, want 60", clock.Elapsed())
	}
	if len(crossings) != 1 || crossings[0] != 1 {
		t.Fatalf("crossings after 60 ticks = %v, want [1]", crossings)
	}

	crossings = tickSeconds(t, clock, 60)
	if len(crossings) != 1 || crossings[0] != 2 {
		t.Fatalf("crossings after 120 ticks = %v, want [2]", crossings)
	}

	// The clock keeps ticking past the target duration, but no boundary
	// beyond MaxBoundary is ever notified.
	crossings = tickSeconds(t, clock, 61)
	if len(crossings) != 0 {
		t.Fatalf("crossings past max boundary = %v, want none", crossings)
	}
	if clock.Elapsed() != 181 {
		t.Fatalf("elapsed = %d, want 181", clock.Elapsed())
	}
	if clock.LastBoundary() != 2 {
		t.Fatalf("last boundary = %d, want 2", clock.LastBoundary())
	}
}

func TestIntervalLongerThanDuration(t *testing.T) {
	clock := NewClock(NewReadingStore())
	if !clock.Start(Config{DurationMinutes: 1, IntervalSeconds: 90, StartingReading: 80}) {
		t.Fatal("expected start to succeed")
	}
	if max := clock.Config().MaxBoundary(); max != 0 {
		t.Fatalf("max boundary = %d, want 0", max)
	}
	if crossings := tickSeconds(t, clock, 300); len(crossings) != 0 {
		t.Fatalf("crossings = %v, want none when max boundary is 0", crossings)
	}
}

func TestStopPreservesProgress(t *testing.T) {
	clock := NewClock(NewReadingStore())
	clock.Start(Config{DurationMinutes: 2, IntervalSeconds: 30, StartingReading: 100})
	tickSeconds(t, clock, 65)

	clock.Stop()
	if clock.Running() {
		t.Fatal("expected stopped clock")
	}
	if clock.Elapsed() != 65 || clock.LastBoundary() != 2 {
		t.Fatalf("elapsed/boundary = %d/%d, want 65/2 preserved", clock.Elapsed(), clock.LastBoundary())
	}
	if _, crossed := clock.Tick(); crossed || clock.Elapsed() != 65 {
		t.Fatal("tick on a stopped clock must not mutate state")
	}
}

func TestResetClearsSessionState(t *testing.T) {
	store := NewReadingStore()
	clock := NewClock(store)
	cfg := Config{DurationMinutes: 2, IntervalSeconds: 60, StartingReading: 85}
	clock.Start(cfg)
	tickSeconds(t, clock, 90)
	store.Record(1, 130.2)

	clock.Reset()
	if clock.Running() || clock.Elapsed() != 0 || clock.LastBoundary() != 0 {
		t.Fatalf("state after reset = running=%v elapsed=%d boundary=%d, want stopped/0/0",
			clock.Running(), clock.Elapsed(), clock.LastBoundary())
	}
	if store.Len() != 0 {
		t.Fatalf("store holds %d readings after reset, want 0", store.Len())
	}

	// A fresh start behaves exactly like the first one.
	if !clock.Start(cfg) {
		t.Fatal("expected restart after reset to succeed")
	}
	if value, ok := store.Value(0); !ok || value != 85 {
		t.Fatalf("anchor after restart = %v, %v; want 85, true", value, ok)
	}
}
