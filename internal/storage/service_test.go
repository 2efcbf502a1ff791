package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/precon-analyzer/internal/storage/models"
)

func TestService_JobHistory(t *testing.T) {
	svc := NewService(OpenTest(t))
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	first := &models.AnalysisJob{ID: "job-1", Status: "pending", DeckIDs: []string{"a"}, StartedAt: base}
	second := &models.AnalysisJob{ID: "job-2", Status: "pending", DeckIDs: []string{"b", "c"}, StartedAt: base.Add(time.Minute)}
	require.NoError(t, svc.RecordJob(ctx, first))
	require.NoError(t, svc.RecordJob(ctx, second))

	done := base.Add(2 * time.Minute)
	first.Status = "completed"
	first.TotalUnits = 4
	first.CompletedUnits = 4
	first.CompletedAt = &done
	first.UpdatedAt = done
	require.NoError(t, svc.RecordJob(ctx, first))

	got, err := svc.GetJob(ctx, "job-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, 4, got.CompletedUnits)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, done.Equal(*got.CompletedAt))
	assert.Equal(t, []string{"a"}, got.DeckIDs)

	jobs, err := svc.RecentJobs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "job-2", jobs[0].ID)
	assert.Equal(t, []string{"b", "c"}, jobs[0].DeckIDs)

	jobs, err = svc.RecentJobs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestService_GetJobMissing(t *testing.T) {
	svc := NewService(OpenTest(t))

	got, err := svc.GetJob(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestService_RecentJobsEmpty(t *testing.T) {
	svc := NewService(OpenTest(t))

	jobs, err := svc.RecentJobs(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestService_FailedJobKeepsError(t *testing.T) {
	svc := NewService(OpenTest(t))
	ctx := context.Background()
	msg := "catalog unavailable"

	require.NoError(t, svc.RecordJob(ctx, &models.AnalysisJob{
		ID: "job-f", Status: "failed", ErrorMessage: &msg, StartedAt: time.Now(),
	}))

	got, err := svc.GetJob(ctx, "job-f")
	require.NoError(t, err)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, msg, *got.ErrorMessage)
	assert.Nil(t, got.CompletedAt)
}

func TestService_Hints(t *testing.T) {
	svc := NewService(OpenTest(t))
	ctx := context.Background()
	now := time.Now()

	hint, err := svc.GetHint(ctx, "sol ring|c21|")
	require.NoError(t, err)
	assert.Nil(t, hint)

	require.NoError(t, svc.SaveHint(ctx, "sol ring|c21|", 1.5, now))
	require.NoError(t, svc.SaveHint(ctx, "sol ring|c21|", 2.25, now.Add(time.Hour)))

	hint, err = svc.GetHint(ctx, "sol ring|c21|")
	require.NoError(t, err)
	require.NotNil(t, hint)
	assert.InDelta(t, 2.25, *hint, 1e-9)

	n, err := svc.HintCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Error(t, svc.SaveHint(ctx, "x", -1, now))
}
