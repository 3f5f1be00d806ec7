package orchestrator

import (
	"time"

	"github.com/nmurthy/oncopilot/pkg/models"
)

// StatusSnapshot is the read-only projection of a job for polling clients.
type StatusSnapshot struct {
	RequestID         string   `json:"request_id"`
	PatientID         string   `json:"patient_id"`
	Status            string   `json:"status"`
	CurrentStep       string   `json:"current_step"`
	CurrentStepDetail string   `json:"current_step_detail"`
	ProgressPercent   int      `json:"progress_percent"`
	StepsCompleted    []string `json:"steps_completed"`
	StepsRemaining    []string `json:"steps_remaining"`
	Error             string   `json:"error,omitempty"`
}

// JobSummary is one row of the analysis listing.
type JobSummary struct {
	RequestID       string `json:"request_id"`
	PatientID       string `json:"patient_id"`
	Status          string `json:"status"`
	ProgressPercent int    `json:"progress_percent"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// Status returns the current snapshot of a job. It never blocks waiting for
// progress; unknown ids return ErrNotFound.
func (s *Service) Status(requestID string) (StatusSnapshot, error) {
	job, err := s.registry.Get(requestID)
	if err != nil {
		return StatusSnapshot{}, err
	}
	return snapshot(job), nil
}

// Results returns the assembled output of a completed job. It returns
// ErrNotReady while the job is still initializing or running, a
// JobFailedError carrying the stored reason for failed jobs, and ErrNotFound
// for unknown ids.
func (s *Service) Results(requestID string) (*models.AnalysisResult, error) {
	job, err := s.registry.Get(requestID)
	if err != nil {
		return nil, err
	}

	switch job.Status {
	case StatusCompleted:
		return job.Results, nil
	case StatusError:
		return nil, &JobFailedError{RequestID: requestID, Reason: job.Error}
	default:
		return nil, ErrNotReady
	}
}

// List returns summaries of registered jobs, optionally filtered by patient
// id and status, newest first.
func (s *Service) List(patientID, status string) []JobSummary {
	jobs := s.registry.List(patientID, status)

	out := make([]JobSummary, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, JobSummary{
			RequestID:       job.RequestID,
			PatientID:       job.PatientID,
			Status:          job.Status,
			ProgressPercent: job.ProgressPercent,
			CreatedAt:       job.CreatedAt.Format(time.RFC3339),
			UpdatedAt:       job.UpdatedAt.Format(time.RFC3339),
		})
	}
	return out
}

// snapshot projects a job into its polling view.
func snapshot(job Job) StatusSnapshot {
	current := StatusInitializing
	switch {
	case job.Status == StatusCompleted:
		current = StatusCompleted
	case job.Status == StatusError:
		current = StatusError
	case job.Status == StatusRunning && len(job.StepsRemaining) > 0:
		current = job.StepsRemaining[0]
	}

	detail := stepDetail(current)
	if job.Status == StatusCompleted || job.Status == StatusError {
		detail = stepDetail(job.Status)
	}

	return StatusSnapshot{
		RequestID:         job.RequestID,
		PatientID:         job.PatientID,
		Status:            job.Status,
		CurrentStep:       current,
		CurrentStepDetail: detail,
		ProgressPercent:   job.ProgressPercent,
		StepsCompleted:    job.StepsCompleted,
		StepsRemaining:    job.StepsRemaining,
		Error:             job.Error,
	}
}
