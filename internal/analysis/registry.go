package analysis

import (
	"errors"
	"sync"
)

// ErrJobNotFound is returned for unknown job ids.
var ErrJobNotFound = errors.New("job not found")

// Registry holds jobs and the most recent completed report in memory.
type Registry struct {
	mu     sync.RWMutex
	jobs   map[string]*Job
	latest *Report
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

func (r *Registry) add(j *Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[j.id] = j
}

// Job looks up a job by id.
func (r *Registry) Job(id string) (*Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return j, nil
}

// finish completes j with rep and makes rep the current report. A job that
// was dropped by Reset still completes but its report is not published.
// Readers of Latest never see a completed job without its report.
func (r *Registry) finish(j *Job, rep *Report) (published bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := j.complete(rep); err != nil {
		return false, err
	}
	if r.jobs[j.id] != j {
		return false, nil
	}
	r.latest = rep
	return true, nil
}

// Latest returns the most recently completed report, or nil.
func (r *Registry) Latest() *Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// Reset forgets all jobs and the current report.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = make(map[string]*Job)
	r.latest = nil
}
