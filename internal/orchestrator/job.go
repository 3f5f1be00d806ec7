// Package orchestrator runs asynchronous patient analysis pipelines: a bounded
// worker pool executes multi-step jobs while clients poll a read-only facade.
package orchestrator

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nmurthy/oncopilot/pkg/models"
)

// Job statuses. Terminal states are StatusCompleted and StatusError; a job
// never regresses.
const (
	StatusInitializing = "initializing"
	StatusRunning      = "running"
	StatusCompleted    = "completed"
	StatusError        = "error"
)

// Pipeline step names.
const (
	StepContext   = "context_gathering"
	StepKnowledge = "knowledge_retrieval"
	StepReasoning = "reasoning"
	StepTrials    = "trial_matching"
	StepAssembly  = "assembly"
)

// stepDetails maps a step or status to a human-readable progress description.
var stepDetails = map[string]string{
	StatusInitializing: "Waiting for a worker...",
	StepContext:        "Loading patient data and clinical notes...",
	StepKnowledge:      "Searching reference knowledge...",
	StepReasoning:      "Synthesizing clinical reasoning...",
	StepTrials:         "Matching to clinical trials...",
	StepAssembly:       "Assembling final report...",
	StatusCompleted:    "Analysis complete",
	StatusError:        "An error occurred",
}

func stepDetail(key string) string {
	if d, ok := stepDetails[key]; ok {
		return d
	}
	return "Processing..."
}

// AnalysisRequest captures the immutable parameters of one submission.
type AnalysisRequest struct {
	PatientID     string
	AnalysisType  string
	IncludeTrials bool
}

// Job is one asynchronous analysis run. It is created by the scheduler,
// mutated only by the worker bound to it, and read by any number of
// concurrent status/result calls through registry snapshots.
type Job struct {
	RequestID     string
	PatientID     string
	AnalysisType  string
	IncludeTrials bool

	Status          string
	ProgressPercent int
	StepsCompleted  []string
	StepsRemaining  []string

	Results *models.AnalysisResult
	Error   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// terminal reports whether the job reached a terminal state.
func (j *Job) terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusError
}

// clone returns a deep-enough copy for handing outside the registry: slices
// are copied; Results is shared because it is written once and never mutated.
func (j *Job) clone() Job {
	out := *j
	out.StepsCompleted = append([]string(nil), j.StepsCompleted...)
	out.StepsRemaining = append([]string(nil), j.StepsRemaining...)
	return out
}

// newRequestID builds an identifier like REQ-20260830154500-P001-a3f09c.
func newRequestID(patientID string, now time.Time) string {
	return fmt.Sprintf("REQ-%s-%s-%s",
		now.UTC().Format("20060102150405"), patientID, uuid.NewString()[:6])
}

// newJob creates a Job in the initializing state with the given scheduled steps.
func newJob(req AnalysisRequest, steps []string, now time.Time) Job {
	return Job{
		RequestID:      newRequestID(req.PatientID, now),
		PatientID:      req.PatientID,
		AnalysisType:   req.AnalysisType,
		IncludeTrials:  req.IncludeTrials,
		Status:         StatusInitializing,
		StepsCompleted: []string{},
		StepsRemaining: append([]string(nil), steps...),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
