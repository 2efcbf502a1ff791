package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/ramonehamilton/precon-analyzer/internal/analysis"
	"github.com/ramonehamilton/precon-analyzer/internal/storage/models"
)

const recordTimeout = 5 * time.Second

// JobRecorder persists every job state change as history.
type JobRecorder struct {
	svc    *Service
	logger *slog.Logger
}

// NewJobRecorder creates an analysis observer backed by svc.
func NewJobRecorder(svc *Service, logger *slog.Logger) *JobRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobRecorder{svc: svc, logger: logger}
}

// JobChanged implements analysis.Observer. Write failures are logged and
// never affect the job.
func (r *JobRecorder) JobChanged(p analysis.Progress) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := r.svc.RecordJob(ctx, JobFromProgress(p)); err != nil {
		r.logger.Warn("Failed to record job history", "job", p.JobID, "error", err)
	}
}

// JobFromProgress converts a progress snapshot to its stored form.
func JobFromProgress(p analysis.Progress) *models.AnalysisJob {
	job := &models.AnalysisJob{
		ID:             p.JobID,
		Status:         string(p.Status),
		DeckIDs:        p.DeckIDs,
		TotalUnits:     p.Total,
		CompletedUnits: p.Current,
		StartedAt:      p.StartedAt,
		CompletedAt:    p.CompletedAt,
		UpdatedAt:      time.Now().UTC(),
	}
	if p.Error != "" {
		msg := p.Error
		job.ErrorMessage = &msg
	}
	return job
}

var _ analysis.Observer = (*JobRecorder)(nil)
