package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJob_Lifecycle(t *testing.T) {
	j := newJob("job-1", []string{"a", "b"})

	p := j.Progress()
	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, "Initializing analysis...", p.Message)
	assert.Equal(t, 0, p.Percentage)
	assert.Equal(t, 2, p.TotalDecks)

	require.NoError(t, j.begin(3))
	p = j.Progress()
	assert.Equal(t, StatusProcessing, p.Status)
	assert.Equal(t, "Fetching real-time prices... (0/3)", p.Message)

	require.NoError(t, j.advance("Deck: Card 1"))
	p = j.Progress()
	assert.Equal(t, 1, p.Current)
	assert.Equal(t, 33, p.Percentage, "percentage is floored")
	assert.Equal(t, "Deck: Card 1", p.CurrentItem)

	require.NoError(t, j.advance("Deck: Card 2"))
	assert.Error(t, j.complete(nil), "cannot complete with units outstanding")

	require.NoError(t, j.advance("Deck: Card 3"))
	assert.Equal(t, 100, j.Progress().Percentage)

	rep := NewReport("job-1", nil)
	require.NoError(t, j.complete(rep))
	p = j.Progress()
	assert.Equal(t, StatusCompleted, p.Status)
	assert.Equal(t, "Analysis completed successfully", p.Message)
	assert.Equal(t, 3, p.Current)
	assert.Equal(t, 3, p.Total)
	assert.Empty(t, p.CurrentItem)
	assert.NotNil(t, p.CompletedAt)
	assert.Same(t, rep, j.Report())
}

func TestJob_TerminalIsFinal(t *testing.T) {
	tests := []struct {
		name   string
		finish func(j *Job) error
		status Status
	}{
		{
			name: "completed",
			finish: func(j *Job) error {
				if err := j.begin(0); err != nil {
					return err
				}
				return j.complete(nil)
			},
			status: StatusCompleted,
		},
		{
			name:   "failed",
			finish: func(j *Job) error { return j.fail(errors.New("catalog gone")) },
			status: StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := newJob("x", []string{"a"})
			require.NoError(t, tt.finish(j))
			before := j.Progress()

			assert.ErrorIs(t, j.begin(5), ErrJobFinished)
			assert.ErrorIs(t, j.advance("late"), ErrJobFinished)
			assert.ErrorIs(t, j.complete(nil), ErrJobFinished)
			assert.ErrorIs(t, j.fail(errors.New("again")), ErrJobFinished)

			assert.Equal(t, before, j.Progress())
			assert.Equal(t, tt.status, j.Status())
		})
	}
}

func TestJob_InvalidTransitions(t *testing.T) {
	j := newJob("x", []string{"a"})
	assert.ErrorIs(t, j.advance("early"), ErrInvalidTransition)
	assert.ErrorIs(t, j.complete(nil), ErrInvalidTransition)

	require.NoError(t, j.begin(1))
	assert.ErrorIs(t, j.begin(1), ErrInvalidTransition)
}

func TestJob_FailedMessage(t *testing.T) {
	j := newJob("x", []string{"a"})
	require.NoError(t, j.fail(errors.New("catalog unavailable")))

	p := j.Progress()
	assert.Equal(t, StatusFailed, p.Status)
	assert.Equal(t, "catalog unavailable", p.Error)
	assert.Equal(t, "Analysis failed: catalog unavailable", p.Message)
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		status Status
		done   int
		total  int
		want   int
	}{
		{StatusPending, 0, 0, 0},
		{StatusProcessing, 0, 0, 0},
		{StatusCompleted, 0, 0, 100},
		{StatusProcessing, 1, 3, 33},
		{StatusProcessing, 2, 3, 66},
		{StatusProcessing, 199, 200, 99},
		{StatusProcessing, 5, 4, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, percentage(tt.status, tt.done, tt.total), "%s %d/%d", tt.status, tt.done, tt.total)
	}
}

func TestJob_AdvanceNeverExceedsTotal(t *testing.T) {
	j := newJob("x", []string{"a"})
	require.NoError(t, j.begin(1))
	require.NoError(t, j.advance("1"))
	require.NoError(t, j.advance("2"))
	assert.Equal(t, 1, j.Progress().Current)
}
