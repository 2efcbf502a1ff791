package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ramonehamilton/precon-analyzer/internal/storage/models"
)

// JobRepository handles database operations for analysis job records.
type JobRepository interface {
	// Upsert inserts or updates a job record.
	Upsert(ctx context.Context, job *models.AnalysisJob) error

	// GetByID retrieves a job by its ID. Returns nil if not found.
	GetByID(ctx context.Context, id string) (*models.AnalysisJob, error)

	// ListRecent retrieves the most recently started jobs.
	ListRecent(ctx context.Context, limit int) ([]*models.AnalysisJob, error)
}

type jobRepository struct {
	db *sql.DB
}

// NewJobRepository creates a new job repository.
func NewJobRepository(db *sql.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Upsert(ctx context.Context, job *models.AnalysisJob) error {
	deckIDs, err := json.Marshal(job.DeckIDs)
	if err != nil {
		return fmt.Errorf("failed to encode deck ids: %w", err)
	}
	if job.DeckIDs == nil {
		deckIDs = []byte("[]")
	}

	query := `
		INSERT INTO analysis_jobs (
			id, status, deck_ids, total_units, completed_units,
			error_message, started_at, completed_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			total_units = excluded.total_units,
			completed_units = excluded.completed_units,
			error_message = excluded.error_message,
			completed_at = excluded.completed_at,
			updated_at = excluded.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		job.ID,
		job.Status,
		string(deckIDs),
		job.TotalUnits,
		job.CompletedUnits,
		job.ErrorMessage,
		job.StartedAt.UTC(),
		nullableTime(job.CompletedAt),
		job.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert job: %w", err)
	}

	return nil
}

func (r *jobRepository) GetByID(ctx context.Context, id string) (*models.AnalysisJob, error) {
	query := `
		SELECT id, status, deck_ids, total_units, completed_units,
			error_message, started_at, completed_at, updated_at
		FROM analysis_jobs
		WHERE id = ?
	`

	job, err := scanJob(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return job, nil
}

func (r *jobRepository) ListRecent(ctx context.Context, limit int) ([]*models.AnalysisJob, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, status, deck_ids, total_units, completed_units,
			error_message, started_at, completed_at, updated_at
		FROM analysis_jobs
		ORDER BY started_at DESC, id
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []*models.AnalysisJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating jobs: %w", err)
	}

	return jobs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*models.AnalysisJob, error) {
	var (
		job         models.AnalysisJob
		deckIDs     string
		errMsg      sql.NullString
		completedAt sql.NullTime
	)

	if err := s.Scan(
		&job.ID,
		&job.Status,
		&deckIDs,
		&job.TotalUnits,
		&job.CompletedUnits,
		&errMsg,
		&job.StartedAt,
		&completedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(deckIDs), &job.DeckIDs); err != nil {
		return nil, fmt.Errorf("failed to decode deck ids: %w", err)
	}
	if errMsg.Valid {
		job.ErrorMessage = &errMsg.String
	}
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}

	return &job, nil
}
