package application

import (
	"context"
	"errors"
	"log"
	"time"

	"roastlog/internal/observability/metrics"
	roasts "roastlog/internal/roasts/domain"
	session "roastlog/internal/session/domain"
)

// Clock provides time for the archive service.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

// Now returns current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ArchiveService snapshots finished sessions into the roast archive.
type ArchiveService struct {
	repo   roasts.Repository
	clock  Clock
	logger *log.Logger
}

// NewArchiveService constructs an archive service.
func NewArchiveService(repo roasts.Repository, clock Clock, logger *log.Logger) (*ArchiveService, error) {
	if repo == nil {
		return nil, errors.New("archive service: nil repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &ArchiveService{repo: repo, clock: clock, logger: logger}, nil
}

// Finish archives a finished session snapshot and returns the stored roast.
func (s *ArchiveService) Finish(ctx context.Context, label string, cfg session.Config, readings map[int]float64) (*roasts.Roast, error) {
	roastedAt := s.clock.Now()
	roast, err := roasts.New(roasts.BuildRoastID(roastedAt), label, roastedAt, cfg, readings)
	if err != nil {
		metrics.ObserveRoastArchived(metrics.ResultError)
		return nil, err
	}
	if err := s.repo.Save(ctx, roast); err != nil {
		metrics.ObserveRoastArchived(metrics.ResultError)
		return nil, err
	}
	metrics.ObserveRoastArchived(metrics.ResultSuccess)
	if s.logger != nil {
		s.logger.Printf("roast archived: id=%s label=%q readings=%d", roast.ID, roast.Label, len(roast.Readings))
	}
	return roast, nil
}

// Get loads one archived roast.
func (s *ArchiveService) Get(ctx context.Context, id string) (*roasts.Roast, error) {
	if id == "" {
		return nil, roasts.ErrRoastNotFound
	}
	return s.repo.Get(ctx, id)
}

// List returns the most recent archived roasts.
func (s *ArchiveService) List(ctx context.Context, limit int) ([]*roasts.Roast, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.List(ctx, limit)
}
