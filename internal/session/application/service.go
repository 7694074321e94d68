package application

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"roastlog/internal/eventbus"
	"roastlog/internal/observability/metrics"
	"roastlog/internal/session/application/events"
	session "roastlog/internal/session/domain"
)

// Status is a read-only projection of session state for external display.
type Status struct {
	Running        bool
	ElapsedSeconds int
	LastBoundary   int
	MaxBoundary    int
	Config         session.Config
}

// Service owns one session clock and one reading store. Cadence ticks and
// user actions are serialized under a single mutex so no two mutations ever
// interleave; events are published outside the lock.
type Service struct {
	cadence Cadence
	bus     eventbus.Bus
	logger  *log.Logger

	mu       sync.Mutex
	clock    *session.Clock
	readings *session.ReadingStore
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewService constructs a session service.
func NewService(cadence Cadence, bus eventbus.Bus, logger *log.Logger) (*Service, error) {
	if bus == nil {
		return nil, errors.New("session service: nil bus")
	}
	if cadence == nil {
		cadence = TickerCadence{}
	}
	readings := session.NewReadingStore()
	return &Service{
		cadence:  cadence,
		bus:      bus,
		logger:   logger,
		clock:    session.NewClock(readings),
		readings: readings,
	}, nil
}

// CanStart reports whether Start would accept the configuration.
func (s *Service) CanStart(cfg session.Config) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.CanStart(cfg)
}

// Start begins a session and its one-second cadence. It returns false
// without changing state when the configuration is invalid or a session is
// already running.
func (s *Service) Start(cfg session.Config) bool {
	s.mu.Lock()
	if !s.clock.Start(cfg) {
		s.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	ticks, stop := s.cadence.Start(time.Second)
	go s.run(ctx, done, ticks, stop)

	metrics.ObserveSessionStarted()
	s.publish(events.SessionStarted{
		DurationMinutes: cfg.DurationMinutes,
		IntervalSeconds: cfg.IntervalSeconds,
		StartingReading: cfg.StartingReading,
		MaxBoundary:     cfg.MaxBoundary(),
	})
	if s.logger != nil {
		s.logger.Printf("session started: duration=%dm interval=%ds charge=%.1f",
			cfg.DurationMinutes, cfg.IntervalSeconds, cfg.StartingReading)
	}
	return true
}

// Stop halts the cadence. Elapsed time, boundary progress and readings are
// preserved. A tick already in flight either completes fully before the stop
// or observes the stopped clock and applies nothing.
func (s *Service) Stop() {
	elapsed, wasRunning := s.halt(false)
	if !wasRunning {
		return
	}
	metrics.ObserveSessionStopped()
	s.publish(events.SessionStopped{ElapsedSeconds: elapsed})
	if s.logger != nil {
		s.logger.Printf("session stopped: elapsed=%ds", elapsed)
	}
}

// Reset stops the cadence, zeroes elapsed time and boundary progress, and
// clears every recorded reading.
func (s *Service) Reset() {
	s.halt(true)
	metrics.ObserveSessionReset()
	s.publish(events.SessionReset{})
	if s.logger != nil {
		s.logger.Printf("session reset")
	}
}

func (s *Service) halt(reset bool) (elapsed int, wasRunning bool) {
	s.mu.Lock()
	wasRunning = s.clock.Running()
	if reset {
		s.clock.Reset()
	} else {
		s.clock.Stop()
	}
	elapsed = s.clock.Elapsed()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	return elapsed, wasRunning
}

func (s *Service) run(ctx context.Context, done chan struct{}, ticks <-chan time.Time, stop func()) {
	defer close(done)
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			s.tick()
		}
	}
}

func (s *Service) tick() {
	s.mu.Lock()
	running := s.clock.Running()
	boundary, crossed := s.clock.Tick()
	elapsed := s.clock.Elapsed()
	s.mu.Unlock()
	if !running {
		return
	}

	s.publish(events.ClockTicked{ElapsedSeconds: elapsed})
	if crossed {
		metrics.ObserveBoundaryCrossing()
		s.publish(events.BoundaryCrossed{BoundaryIndex: boundary, ElapsedSeconds: elapsed})
		if s.logger != nil {
			s.logger.Printf("sampling boundary crossed: index=%d elapsed=%ds", boundary, elapsed)
		}
	}
}

// Record inserts or replaces the reading at the boundary index. The store
// itself performs no range validation; interactive range checks are an
// interface-layer concern.
func (s *Service) Record(boundaryIndex int, value float64) {
	s.mu.Lock()
	_, correction := s.readings.Value(boundaryIndex)
	s.readings.Record(boundaryIndex, value)
	s.mu.Unlock()

	metrics.ObserveReadingRecorded(correction)
	s.publish(events.ReadingRecorded{BoundaryIndex: boundaryIndex, Value: value, Correction: correction})
}

// Remove deletes the reading at the boundary index.
func (s *Service) Remove(boundaryIndex int) {
	s.mu.Lock()
	s.readings.Remove(boundaryIndex)
	s.mu.Unlock()
	metrics.ObserveReadingRemoved()
	s.publish(events.ReadingRemoved{BoundaryIndex: boundaryIndex})
}

// Status returns a snapshot of the session for live display.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.clock.Config()
	return Status{
		Running:        s.clock.Running(),
		ElapsedSeconds: s.clock.Elapsed(),
		LastBoundary:   s.clock.LastBoundary(),
		MaxBoundary:    cfg.MaxBoundary(),
		Config:         cfg,
	}
}

// DenseSeries returns the chart-ready projection for the current session, or
// nil before the first start.
func (s *Service) DenseSeries() []session.SeriesPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.clock.Config()
	if !cfg.Valid() {
		return nil
	}
	return s.readings.DenseSeries(cfg)
}

// Boundaries returns the populated boundary indices in ascending order.
func (s *Service) Boundaries() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readings.SortedBoundaries()
}

// Snapshot returns the session configuration and a detached copy of the
// sparse readings, for archiving a finished roast.
func (s *Service) Snapshot() (session.Config, map[int]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Config(), s.readings.Snapshot()
}

func (s *Service) publish(event any) {
	if err := s.bus.Publish(context.Background(), event); err != nil && s.logger != nil {
		s.logger.Printf("session event error: %v", err)
	}
}
