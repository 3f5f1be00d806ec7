package orchestrator

import (
	"sort"
	"sync"
	"time"
)

// Registry is the process-scoped store of analysis jobs. Each record has a
// single designated writer (the worker running its pipeline) and arbitrarily
// many concurrent readers; a per-record lock serializes them without
// serializing unrelated records.
type Registry struct {
	mu   sync.RWMutex // guards the map itself
	jobs map[string]*registryEntry
}

type registryEntry struct {
	mu  sync.RWMutex
	job Job
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*registryEntry)}
}

// Create registers a new job. Returns ErrConflict if the request id is taken.
func (r *Registry) Create(job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.RequestID]; ok {
		return ErrConflict
	}
	r.jobs[job.RequestID] = &registryEntry{job: job}
	return nil
}

// Get returns a snapshot of the job, or ErrNotFound.
func (r *Registry) Get(requestID string) (Job, error) {
	r.mu.RLock()
	e, ok := r.jobs[requestID]
	r.mu.RUnlock()
	if !ok {
		return Job{}, ErrNotFound
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.job.clone(), nil
}

// Update applies mutate atomically with respect to concurrent readers of the
// same record and stamps UpdatedAt. Returns ErrNotFound for unknown ids.
func (r *Registry) Update(requestID string, mutate func(*Job)) error {
	r.mu.RLock()
	e, ok := r.jobs[requestID]
	r.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	mutate(&e.job)
	e.job.UpdatedAt = time.Now().UTC()
	return nil
}

// Delete removes a job. Used when a submission is rolled back because the
// queue rejected it.
func (r *Registry) Delete(requestID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, requestID)
}

// List returns snapshots of jobs matching the optional patient id and status
// filters, newest first.
func (r *Registry) List(patientID, status string) []Job {
	r.mu.RLock()
	entries := make([]*registryEntry, 0, len(r.jobs))
	for _, e := range r.jobs {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	var out []Job
	for _, e := range entries {
		e.mu.RLock()
		job := e.job.clone()
		e.mu.RUnlock()

		if patientID != "" && job.PatientID != patientID {
			continue
		}
		if status != "" && job.Status != status {
			continue
		}
		out = append(out, job)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of registered jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

// ReapOlderThan evicts terminal jobs whose last update is older than age and
// returns how many were removed. Running jobs are never reaped.
func (r *Registry) ReapOlderThan(age time.Duration) int {
	cutoff := time.Now().UTC().Add(-age)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.jobs {
		e.mu.RLock()
		stale := e.job.terminal() && e.job.UpdatedAt.Before(cutoff)
		e.mu.RUnlock()
		if stale {
			delete(r.jobs, id)
			removed++
		}
	}
	return removed
}
