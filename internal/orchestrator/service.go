package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nmurthy/oncopilot/internal/cache"
	"github.com/nmurthy/oncopilot/pkg/models"
)

const statusMirrorTTL = 30 * time.Minute

// PatientSource is the read-only slice of the patient store the pipeline needs.
type PatientSource interface {
	GetPatient(ctx context.Context, id string) (*models.Patient, error)
	ListClinicalNotes(ctx context.Context, patientID string) ([]*models.ClinicalNote, error)
}

// Options tunes the orchestrator service.
type Options struct {
	Workers             int
	QueueDepth          int
	RAGEnabled          bool
	TopK                int
	SimilarityThreshold float64
	TrialMaxResults     int
}

// Service is the analysis orchestrator: it accepts submissions, runs pipelines
// on a bounded worker pool, and exposes the status/result facade.
type Service struct {
	registry *Registry
	patients PatientSource
	searcher models.KnowledgeSearcher
	reasoner models.ReasoningProvider
	matcher  models.TrialMatcher
	cache    cache.Cache // optional status mirror; may be nil
	retry    RetryPolicy
	opts     Options

	queue  chan string
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewService creates the orchestrator. Call Start before submitting.
func NewService(
	registry *Registry,
	patients PatientSource,
	searcher models.KnowledgeSearcher,
	reasoner models.ReasoningProvider,
	matcher models.TrialMatcher,
	statusCache cache.Cache,
	retry RetryPolicy,
	opts Options,
) *Service {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueDepth < 1 {
		opts.QueueDepth = 16
	}
	if opts.TopK < 1 {
		opts.TopK = 5
	}
	if opts.TrialMaxResults < 1 {
		opts.TrialMaxResults = 10
	}

	return &Service{
		registry: registry,
		patients: patients,
		searcher: searcher,
		reasoner: reasoner,
		matcher:  matcher,
		cache:    statusCache,
		retry:    retry,
		opts:     opts,
		queue:    make(chan string, opts.QueueDepth),
	}
}

// Start launches the worker pool. Workers drain the queue until ctx is
// cancelled and Close is called.
func (s *Service) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	for i := 0; i < s.opts.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}
	slog.Info("analysis workers started", "workers", s.opts.Workers, "queue_depth", s.opts.QueueDepth)
}

// Close stops accepting queued work and waits for in-flight jobs to finish.
func (s *Service) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	close(s.queue)
	s.wg.Wait()
}

// Submit validates the request, registers a job in the initializing state and
// enqueues it for execution. It returns the request id without waiting for
// any step to start. Exactly one execution stream runs per request id.
func (s *Service) Submit(ctx context.Context, req AnalysisRequest) (string, error) {
	if strings.TrimSpace(req.PatientID) == "" {
		return "", &ValidationError{Field: "patient_id", Reason: "is required"}
	}
	if req.AnalysisType == "" {
		req.AnalysisType = "full"
	}

	job := newJob(req, s.scheduledSteps(req), time.Now().UTC())
	if err := s.registry.Create(job); err != nil {
		return "", err
	}

	select {
	case s.queue <- job.RequestID:
	default:
		// Bounded queue is full: roll the record back rather than block the caller.
		s.registry.Delete(job.RequestID)
		return "", ErrQueueFull
	}

	s.mirrorStatus(ctx, job.RequestID, StatusInitializing)
	slog.Info("analysis submitted", "request_id", job.RequestID, "patient_id", req.PatientID,
		"analysis_type", req.AnalysisType, "include_trials", req.IncludeTrials)

	return job.RequestID, nil
}

func (s *Service) worker(ctx context.Context) {
	defer s.wg.Done()
	for requestID := range s.queue {
		if ctx.Err() != nil {
			s.failJob(requestID, fmt.Sprintf("orchestrator shutting down: %v", ctx.Err()))
			continue
		}
		s.runJob(ctx, requestID)
	}
}

// runJob executes the pipeline for one job. It is the job's single writer.
func (s *Service) runJob(ctx context.Context, requestID string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in analysis pipeline", "request_id", requestID, "error", r)
			s.failJob(requestID, fmt.Sprintf("panic: %v", r))
		}
	}()

	job, err := s.registry.Get(requestID)
	if err != nil {
		slog.Warn("queued job vanished from registry", "request_id", requestID)
		return
	}

	req := AnalysisRequest{
		PatientID:     job.PatientID,
		AnalysisType:  job.AnalysisType,
		IncludeTrials: job.IncludeTrials,
	}
	steps := s.buildPipeline(req)
	w := &working{req: req}

	s.updateJob(requestID, func(j *Job) {
		j.Status = StatusRunning
	})

	for i, st := range steps {
		if err := s.retry.Do(ctx, st.name, func(c context.Context) error {
			return st.run(c, w)
		}); err != nil {
			slog.Error("analysis step failed", "request_id", requestID, "step", st.name, "error", err)
			s.failJob(requestID, err.Error())
			return
		}

		last := i == len(steps)-1
		s.updateJob(requestID, func(j *Job) {
			j.StepsCompleted = append(j.StepsCompleted, st.name)
			j.StepsRemaining = removeStep(j.StepsRemaining, st.name)
			if last {
				j.ProgressPercent = 100
				j.Status = StatusCompleted
				j.Results = w.result
			} else {
				j.ProgressPercent += st.weight
			}
		})
	}

	slog.Info("analysis completed", "request_id", requestID, "patient_id", req.PatientID)
}

// failJob transitions a job to the terminal error state. Remaining steps are
// frozen as-is and no partial results are ever set.
func (s *Service) failJob(requestID, reason string) {
	s.updateJob(requestID, func(j *Job) {
		if j.terminal() {
			return
		}
		j.Status = StatusError
		j.Error = reason
	})
}

// updateJob applies a registry mutation and mirrors the new status to the cache.
func (s *Service) updateJob(requestID string, mutate func(*Job)) {
	var status string
	err := s.registry.Update(requestID, func(j *Job) {
		mutate(j)
		status = j.Status
	})
	if err != nil {
		return
	}
	s.mirrorStatus(context.Background(), requestID, status)
}

// mirrorStatus writes the status snapshot to Redis with a TTL. Best effort;
// the registry stays authoritative.
func (s *Service) mirrorStatus(ctx context.Context, requestID, status string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJobStatus(ctx, requestID, status, statusMirrorTTL); err != nil {
		slog.Warn("job status mirror failed", "request_id", requestID, "error", err)
	}
}

func removeStep(steps []string, name string) []string {
	out := steps[:0]
	for _, s := range steps {
		if s != name {
			out = append(out, s)
		}
	}
	return out
}
