package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ramonehamilton/precon-analyzer/internal/storage/models"
	"github.com/ramonehamilton/precon-analyzer/internal/storage/repository"
)

// Service exposes job history and price hints on top of the repositories.
type Service struct {
	db    *DB
	jobs  repository.JobRepository
	hints repository.PriceHintRepository
}

// NewService creates a storage service backed by db.
func NewService(db *DB) *Service {
	return &Service{
		db:    db,
		jobs:  repository.NewJobRepository(db.Conn()),
		hints: repository.NewPriceHintRepository(db.Conn()),
	}
}

// RecordJob stores the latest state of a job.
func (s *Service) RecordJob(ctx context.Context, job *models.AnalysisJob) error {
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = time.Now().UTC()
	}
	return s.jobs.Upsert(ctx, job)
}

// GetJob returns a stored job, or nil if it was never recorded.
func (s *Service) GetJob(ctx context.Context, id string) (*models.AnalysisJob, error) {
	return s.jobs.GetByID(ctx, id)
}

// RecentJobs returns up to limit jobs, newest first.
func (s *Service) RecentJobs(ctx context.Context, limit int) ([]*models.AnalysisJob, error) {
	jobs, err := s.jobs.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []*models.AnalysisJob{}
	}
	return jobs, nil
}

// GetHint returns the last stored price for a card key.
func (s *Service) GetHint(ctx context.Context, cardKey string) (*float64, error) {
	hint, err := s.hints.Get(ctx, cardKey)
	if err != nil {
		return nil, err
	}
	if hint == nil {
		return nil, nil
	}
	price := hint.PriceUSD
	return &price, nil
}

// SaveHint stores a fresh price for a card key.
func (s *Service) SaveHint(ctx context.Context, cardKey string, price float64, at time.Time) error {
	if price < 0 {
		return fmt.Errorf("negative price %.2f for %s", price, cardKey)
	}
	return s.hints.Upsert(ctx, &models.PriceHint{CardKey: cardKey, PriceUSD: price, UpdatedAt: at})
}

// HintCount returns how many card prices are stored.
func (s *Service) HintCount(ctx context.Context) (int, error) {
	return s.hints.Count(ctx)
}

// Ping checks that the database is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the underlying database.
func (s *Service) Close() error {
	return s.db.Close()
}
