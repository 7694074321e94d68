package application

import (
	"context"
	"testing"
	"time"

	"roastlog/internal/eventbus"
	"roastlog/internal/session/application/events"
	session "roastlog/internal/session/domain"
)

// manualCadence lets tests advance session time deterministically instead of
// sleeping.
type manualCadence struct {
	ch      chan time.Time
	stopped bool
}

func newManualCadence() *manualCadence {
	return &manualCadence{ch: make(chan time.Time)}
}

func (m *manualCadence) Start(time.Duration) (<-chan time.Time, func()) {
	return m.ch, func() { m.stopped = true }
}

type harness struct {
	service  *Service
	cadence  *manualCadence
	ticked   chan events.ClockTicked
	crossed  chan events.BoundaryCrossed
	recorded chan events.ReadingRecorded
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	bus := eventbus.NewInMemoryBus()
	cadence := newManualCadence()
	service, err := NewService(cadence, bus, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	h := &harness{
		service:  service,
		cadence:  cadence,
		ticked:   make(chan events.ClockTicked, 1024),
		crossed:  make(chan events.BoundaryCrossed, 64),
		recorded: make(chan events.ReadingRecorded, 64),
	}
	eventbus.On(bus, func(_ context.Context, e events.ClockTicked) error {
		h.ticked <- e
		return nil
	})
	eventbus.On(bus, func(_ context.Context, e events.BoundaryCrossed) error {
		h.crossed <- e
		return nil
	})
	eventbus.On(bus, func(_ context.Context, e events.ReadingRecorded) error {
		h.recorded <- e
		return nil
	})
	return h
}

// advance drives the cadence n seconds, waiting for each tick to be fully
// applied before sending the next.
func (h *harness) advance(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case h.cadence.ch <- time.Now():
		case <-time.After(2 * time.Second):
			t.Fatal("cadence loop did not consume tick")
		}
		select {
		case <-h.ticked:
		case <-time.After(2 * time.Second):
			t.Fatal("tick was not applied")
		}
	}
}

func (h *harness) drainCrossings() []int {
	var indices []int
	for {
		select {
		case e := <-h.crossed:
			indices = append(indices, e.BoundaryIndex)
		default:
			return indices
		}
	}
}

func TestServiceStartValidation(t *testing.T) {
	h := newHarness(t)
	defer h.service.Stop()

	invalid := session.Config{DurationMinutes: 0, IntervalSeconds: 30, StartingReading: 100}
	if h.service.CanStart(invalid) {
		t.Fatal("expected CanStart false for invalid config")
	}
	if h.service.Start(invalid) {
		t.Fatal("expected Start to refuse invalid config")
	}

	cfg := session.Config{DurationMinutes: 1, IntervalSeconds: 30, StartingReading: 95}
	if !h.service.Start(cfg) {
		t.Fatal("expected Start to succeed")
	}
	if h.service.Start(cfg) {
		t.Fatal("expected Start while running to be a no-op")
	}

	status := h.service.Status()
	if !status.Running || status.MaxBoundary != 2 {
		t.Fatalf("status = %+v, want running with max boundary 2", status)
	}
}

func TestServiceBoundaryEvents(t *testing.T) {
	h := newHarness(t)
	if !h.service.Start(session.Config{DurationMinutes: 1, IntervalSeconds: 30, StartingReading: 90}) {
		t.Fatal("expected Start to succeed")
	}

	h.advance(t, 30)
	if crossings := h.drainCrossings(); len(crossings) != 1 || crossings[0] != 1 {
		t.Fatalf("crossings after 30s = %v, want [1]", crossings)
	}

	h.advance(t, 30)
	if crossings := h.drainCrossings(); len(crossings) != 1 || crossings[0] != 2 {
		t.Fatalf("crossings after 60s = %v, want [2]", crossings)
	}

	// Past the target duration the clock keeps ticking without events.
	h.advance(t, 15)
	if crossings := h.drainCrossings(); len(crossings) != 0 {
		t.Fatalf("crossings past max boundary = %v, want none", crossings)
	}

	h.service.Stop()
	if !h.cadence.stopped {
		t.Fatal("expected cadence to be released on stop")
	}
	status := h.service.Status()
	if status.Running || status.ElapsedSeconds != 75 || status.LastBoundary != 2 {
		t.Fatalf("status after stop = %+v, want stopped at 75s boundary 2", status)
	}
}

func TestServiceRecordAndCorrect(t *testing.T) {
	h := newHarness(t)
	defer h.service.Stop()
	h.service.Start(session.Config{DurationMinutes: 2, IntervalSeconds: 60, StartingReading: 88})

	h.service.Record(1, 132.5)
	e := <-h.recorded
	if e.BoundaryIndex != 1 || e.Value != 132.5 || e.Correction {
		t.Fatalf("recorded event = %+v, want fresh reading at 1", e)
	}

	h.service.Record(1, 135.0)
	e = <-h.recorded
	if !e.Correction {
		t.Fatalf("recorded event = %+v, want correction flagged", e)
	}

	series := h.service.DenseSeries()
	if len(series) != 3 {
		t.Fatalf("series length = %d, want 3", len(series))
	}
	if series[1].Value == nil || *series[1].Value != 135.0 {
		t.Fatalf("series[1] = %v, want corrected 135.0", series[1].Value)
	}

	boundaries := h.service.Boundaries()
	if len(boundaries) != 2 || boundaries[0] != 0 || boundaries[1] != 1 {
		t.Fatalf("boundaries = %v, want [0 1]", boundaries)
	}
}

func TestServiceReset(t *testing.T) {
	h := newHarness(t)
	cfg := session.Config{DurationMinutes: 1, IntervalSeconds: 20, StartingReading: 110}
	h.service.Start(cfg)
	h.advance(t, 25)
	h.service.Record(1, 140)
	<-h.recorded

	h.service.Reset()
	status := h.service.Status()
	if status.Running || status.ElapsedSeconds != 0 || status.LastBoundary != 0 {
		t.Fatalf("status after reset = %+v, want stopped/0/0", status)
	}
	if boundaries := h.service.Boundaries(); len(boundaries) != 0 {
		t.Fatalf("boundaries after reset = %v, want empty", boundaries)
	}

	// A fresh start re-anchors and behaves like the first session.
	if !h.service.Start(cfg) {
		t.Fatal("expected restart to succeed")
	}
	defer h.service.Stop()
	series := h.service.DenseSeries()
	if series[0].Value == nil || *series[0].Value != 110 {
		t.Fatalf("series[0] after restart = %v, want anchor 110", series[0].Value)
	}
	for _, point := range series[1:] {
		if point.Value != nil {
			t.Fatalf("series[%d] = %v, want absent after reset", point.BoundaryIndex, *point.Value)
		}
	}
}

func TestServiceSnapshotDetached(t *testing.T) {
	h := newHarness(t)
	defer h.service.Stop()
	cfg := session.Config{DurationMinutes: 1, IntervalSeconds: 30, StartingReading: 85}
	h.service.Start(cfg)
	h.service.Record(2, 150)
	<-h.recorded

	gotCfg, readings := h.service.Snapshot()
	if gotCfg != cfg {
		t.Fatalf("snapshot config = %+v, want %+v", gotCfg, cfg)
	}
	if readings[0] != 85 || readings[2] != 150 {
		t.Fatalf("snapshot readings = %v, want anchor 85 and 150 at 2", readings)
	}

	h.service.Record(2, 999)
	<-h.recorded
	if readings[2] != 150 {
		t.Fatal("snapshot must not observe later writes")
	}
}
