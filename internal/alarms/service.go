package alarms

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"roastlog/internal/eventbus"
	"roastlog/internal/observability/metrics"
	"roastlog/internal/session/application/events"
)

// Tripped is published on the bus when a rule transitions into its tripped
// state. It stays silent while the condition persists and can trip again
// after the rule recovers.
type Tripped struct {
	Rule          string
	Severity      string
	Operator      string
	Threshold     float64
	BoundaryIndex int
	Value         float64
}

// Cleared is published when a previously tripped rule recovers.
type Cleared struct {
	Rule          string
	BoundaryIndex int
	Value         float64
}

// Service evaluates temperature alarm rules against recorded readings.
type Service struct {
	rules    []Rule
	bus      eventbus.Bus
	notifier Notifier
	logger   *log.Logger

	mu      sync.Mutex
	tripped map[string]bool
}

// NewService constructs an alarm service. The notifier is optional.
func NewService(rules []Rule, bus eventbus.Bus, notifier Notifier, logger *log.Logger) (*Service, error) {
	if bus == nil {
		return nil, errors.New("alarm service: nil bus")
	}
	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			return nil, err
		}
	}
	return &Service{
		rules:    rules,
		bus:      bus,
		notifier: notifier,
		logger:   logger,
		tripped:  make(map[string]bool),
	}, nil
}

// Wire subscribes the service to session events on the bus.
func (s *Service) Wire(bus eventbus.Bus) {
	eventbus.On(bus, s.HandleReading)
	eventbus.On(bus, func(_ context.Context, _ events.SessionReset) error {
		s.resetState()
		return nil
	})
	eventbus.On(bus, func(_ context.Context, _ events.SessionStarted) error {
		s.resetState()
		return nil
	})
}

// HandleReading evaluates every rule against the recorded reading.
func (s *Service) HandleReading(ctx context.Context, e events.ReadingRecorded) error {
	for _, rule := range s.rules {
		matched := rule.Operator.Matches(e.Value, rule.Threshold)

		s.mu.Lock()
		wasTripped := s.tripped[rule.Name]
		s.tripped[rule.Name] = matched
		s.mu.Unlock()

		if matched && !wasTripped {
			s.trip(ctx, rule, e)
		}
		if !matched && wasTripped {
			s.clear(ctx, rule, e)
		}
	}
	return nil
}

func (s *Service) trip(ctx context.Context, rule Rule, e events.ReadingRecorded) {
	metrics.ObserveAlarmTrip(rule.Severity)
	if s.logger != nil {
		s.logger.Printf("alarm tripped: rule=%q value=%.1f threshold=%s%.1f boundary=%d",
			rule.Name, e.Value, rule.Operator, rule.Threshold, e.BoundaryIndex)
	}
	event := Tripped{
		Rule:          rule.Name,
		Severity:      rule.Severity,
		Operator:      string(rule.Operator),
		Threshold:     rule.Threshold,
		BoundaryIndex: e.BoundaryIndex,
		Value:         e.Value,
	}
	if err := s.bus.Publish(ctx, event); err != nil && s.logger != nil {
		s.logger.Printf("alarm publish error: %v", err)
	}
	if s.notifier != nil {
		content := fmt.Sprintf("Roast alarm: %s\nSeverity: %s\nReading: %.1f at boundary %d\nThreshold: %s %.1f",
			rule.Name, rule.Severity, e.Value, e.BoundaryIndex, rule.Operator, rule.Threshold)
		if err := s.notifier.Send(ctx, content); err != nil && s.logger != nil {
			s.logger.Printf("alarm notify error: %v", err)
		}
	}
}

func (s *Service) clear(ctx context.Context, rule Rule, e events.ReadingRecorded) {
	if s.logger != nil {
		s.logger.Printf("alarm cleared: rule=%q value=%.1f boundary=%d", rule.Name, e.Value, e.BoundaryIndex)
	}
	event := Cleared{Rule: rule.Name, BoundaryIndex: e.BoundaryIndex, Value: e.Value}
	if err := s.bus.Publish(ctx, event); err != nil && s.logger != nil {
		s.logger.Printf("alarm publish error: %v", err)
	}
}

func (s *Service) resetState() {
	s.mu.Lock()
	s.tripped = make(map[string]bool)
	s.mu.Unlock()
}
