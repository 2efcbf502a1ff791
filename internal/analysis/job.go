package analysis

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Status is the lifecycle state of a valuation job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

var (
	// ErrJobFinished is returned when mutating a completed or failed job.
	ErrJobFinished = errors.New("job already finished")
	// ErrInvalidTransition is returned for out-of-order state changes.
	ErrInvalidTransition = errors.New("invalid job transition")
)

// Job is a batch valuation run. Only the Aggregator mutates it; readers take
// Progress snapshots.
type Job struct {
	mu sync.RWMutex

	id             string
	status         Status
	deckIDs        []string
	totalUnits     int
	completedUnits int
	currentItem    string
	errorMessage   string
	startedAt      time.Time
	completedAt    *time.Time
	report         *Report
}

func newJob(id string, deckIDs []string) *Job {
	return &Job{
		id:        id,
		status:    StatusPending,
		deckIDs:   deckIDs,
		startedAt: time.Now().UTC(),
	}
}

// ID returns the job id.
func (j *Job) ID() string {
	return j.id
}

// DeckIDs returns the requested deck ids.
func (j *Job) DeckIDs() []string {
	out := make([]string, len(j.deckIDs))
	copy(out, j.deckIDs)
	return out
}

// Status returns the current state.
func (j *Job) Status() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

// begin moves a pending job to processing with the expected unit count.
func (j *Job) begin(totalUnits int) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status.Terminal() {
		return ErrJobFinished
	}
	if j.status != StatusPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.status, StatusProcessing)
	}
	if totalUnits < 0 {
		totalUnits = 0
	}
	j.status = StatusProcessing
	j.totalUnits = totalUnits
	return nil
}

// advance records one completed unit of work.
func (j *Job) advance(item string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status.Terminal() {
		return ErrJobFinished
	}
	if j.status != StatusProcessing {
		return fmt.Errorf("%w: advance while %s", ErrInvalidTransition, j.status)
	}
	if j.completedUnits < j.totalUnits {
		j.completedUnits++
	}
	j.currentItem = item
	return nil
}

// Report returns the job's report once it has completed.
func (j *Job) Report() *Report {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.report
}

// complete finishes a processing job with its report. All units must be done.
func (j *Job) complete(rep *Report) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status.Terminal() {
		return ErrJobFinished
	}
	if j.status != StatusProcessing {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.status, StatusCompleted)
	}
	if j.completedUnits != j.totalUnits {
		return fmt.Errorf("%w: %d of %d units done", ErrInvalidTransition, j.completedUnits, j.totalUnits)
	}
	now := time.Now().UTC()
	j.status = StatusCompleted
	j.currentItem = ""
	j.completedAt = &now
	j.report = rep
	return nil
}

// fail moves a pending or processing job to failed.
func (j *Job) fail(cause error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.status.Terminal() {
		return ErrJobFinished
	}
	now := time.Now().UTC()
	j.status = StatusFailed
	if cause != nil {
		j.errorMessage = cause.Error()
	}
	j.completedAt = &now
	return nil
}

// Progress is a point-in-time view of a job.
type Progress struct {
	JobID       string     `json:"jobId"`
	Status      Status     `json:"status"`
	Current     int        `json:"current"`
	Total       int        `json:"total"`
	Percentage  int        `json:"percentage"`
	Message     string     `json:"message"`
	CurrentItem string     `json:"currentItem,omitempty"`
	Error       string     `json:"error,omitempty"`
	TotalDecks  int        `json:"totalDecks"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	DeckIDs     []string   `json:"-"`
}

// Progress returns a consistent snapshot.
func (j *Job) Progress() Progress {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return Progress{
		JobID:       j.id,
		Status:      j.status,
		Current:     j.completedUnits,
		Total:       j.totalUnits,
		Percentage:  percentage(j.status, j.completedUnits, j.totalUnits),
		Message:     message(j.status, j.completedUnits, j.totalUnits, j.errorMessage),
		CurrentItem: j.currentItem,
		Error:       j.errorMessage,
		TotalDecks:  len(j.deckIDs),
		StartedAt:   j.startedAt,
		CompletedAt: j.completedAt,
		DeckIDs:     append([]string(nil), j.deckIDs...),
	}
}

func percentage(status Status, done, total int) int {
	if total <= 0 {
		if status == StatusCompleted {
			return 100
		}
		return 0
	}
	p := done * 100 / total
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

func message(status Status, done, total int, errMsg string) string {
	switch status {
	case StatusPending:
		return "Initializing analysis..."
	case StatusProcessing:
		return fmt.Sprintf("Fetching real-time prices... (%d/%d)", done, total)
	case StatusCompleted:
		return "Analysis completed successfully"
	case StatusFailed:
		if errMsg != "" {
			return "Analysis failed: " + errMsg
		}
		return "Analysis failed"
	default:
		return "Processing..."
	}
}
