package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nmurthy/oncopilot/internal/knowledge"
	"github.com/nmurthy/oncopilot/pkg/models"
)

// Base step weights before normalization. The scheduled subset is rescaled to
// sum to 100, so skipping retrieval or trials redistributes progress
// proportionally.
var baseWeights = map[string]int{
	StepContext:   20,
	StepKnowledge: 20,
	StepReasoning: 35,
	StepTrials:    15,
	StepAssembly:  10,
}

// pipelineStep is one unit of the analysis pipeline. run receives the job's
// accumulated working context and merges its partial result into it.
type pipelineStep struct {
	name   string
	weight int
	run    func(ctx context.Context, w *working) error
}

// working is the context accumulated across steps of one job.
type working struct {
	req     AnalysisRequest
	patient *models.Patient
	notes   []*models.ClinicalNote
	chunks  []models.KnowledgeChunk
	answer  models.ReasoningResponse
	trials  []models.TrialMatch
	result  *models.AnalysisResult
}

// scheduledSteps returns the step names that will run for this request, in order.
func (s *Service) scheduledSteps(req AnalysisRequest) []string {
	steps := []string{StepContext}
	if s.opts.RAGEnabled {
		steps = append(steps, StepKnowledge)
	}
	steps = append(steps, StepReasoning)
	if req.IncludeTrials {
		steps = append(steps, StepTrials)
	}
	return append(steps, StepAssembly)
}

// buildPipeline assembles the executable steps for a request with weights
// normalized to sum to exactly 100.
func (s *Service) buildPipeline(req AnalysisRequest) []pipelineStep {
	names := s.scheduledSteps(req)

	steps := make([]pipelineStep, 0, len(names))
	for _, name := range names {
		steps = append(steps, pipelineStep{
			name:   name,
			weight: baseWeights[name],
			run:    s.stepFunc(name),
		})
	}
	normalizeWeights(steps)
	return steps
}

// normalizeWeights rescales weights to sum to 100, assigning the rounding
// remainder to the final step so the last success lands progress on 100.
func normalizeWeights(steps []pipelineStep) {
	total := 0
	for _, st := range steps {
		total += st.weight
	}
	if total == 0 {
		return
	}

	assigned := 0
	for i := range steps[:len(steps)-1] {
		steps[i].weight = steps[i].weight * 100 / total
		assigned += steps[i].weight
	}
	steps[len(steps)-1].weight = 100 - assigned
}

func (s *Service) stepFunc(name string) func(context.Context, *working) error {
	switch name {
	case StepContext:
		return s.gatherContext
	case StepKnowledge:
		return s.retrieveKnowledge
	case StepReasoning:
		return s.reason
	case StepTrials:
		return s.matchTrials
	case StepAssembly:
		return s.assemble
	default:
		return func(context.Context, *working) error {
			return fmt.Errorf("unknown pipeline step %q", name)
		}
	}
}

// gatherContext loads the patient record and clinical notes.
func (s *Service) gatherContext(ctx context.Context, w *working) error {
	patient, err := s.patients.GetPatient(ctx, w.req.PatientID)
	if err != nil {
		return fmt.Errorf("loading patient %s: %w", w.req.PatientID, err)
	}

	notes, err := s.patients.ListClinicalNotes(ctx, w.req.PatientID)
	if err != nil {
		return fmt.Errorf("loading clinical notes for %s: %w", w.req.PatientID, err)
	}

	w.patient = patient
	w.notes = notes
	return nil
}

// retrieveKnowledge runs similarity search over the knowledge store and keeps
// the top-K chunks above the similarity threshold.
func (s *Service) retrieveKnowledge(ctx context.Context, w *working) error {
	query := w.patient.Diagnosis
	if len(w.patient.Biomarkers) > 0 {
		query += " " + strings.Join(w.patient.Biomarkers, " ")
	}

	chunks, err := s.searcher.Search(ctx, query, s.opts.TopK)
	if err != nil {
		return fmt.Errorf("knowledge search: %w", err)
	}

	w.chunks = knowledge.Rank(chunks, s.opts.TopK, s.opts.SimilarityThreshold)
	return nil
}

// reason invokes the reasoning provider on everything gathered so far.
func (s *Service) reason(ctx context.Context, w *working) error {
	notes := make([]models.ClinicalNote, 0, len(w.notes))
	for _, n := range w.notes {
		notes = append(notes, *n)
	}

	answer, err := s.reasoner.Reason(ctx, models.ReasoningRequest{
		Patient:      *w.patient,
		Notes:        notes,
		Knowledge:    w.chunks,
		AnalysisType: w.req.AnalysisType,
	})
	if err != nil {
		return fmt.Errorf("reasoning: %w", err)
	}

	w.answer = answer
	return nil
}

// matchTrials queries the trial-matching provider for the patient's profile.
func (s *Service) matchTrials(ctx context.Context, w *working) error {
	condition := w.patient.CancerType
	if condition == "" {
		condition = w.patient.Diagnosis
	}

	matches, err := s.matcher.Match(ctx, models.TrialQuery{
		Condition:  condition,
		Biomarkers: w.patient.Biomarkers,
		MaxResults: s.opts.TrialMaxResults,
	})
	if err != nil {
		return fmt.Errorf("trial matching: %w", err)
	}

	w.trials = matches
	return nil
}

// assemble merges all partial results into the final payload.
func (s *Service) assemble(_ context.Context, w *working) error {
	w.result = &models.AnalysisResult{
		Summary:         w.answer.Summary,
		KeyFindings:     w.answer.KeyFindings,
		Recommendations: w.answer.Recommendations,
		TrialMatches:    w.trials,
		Provider:        s.reasoner.Name(),
		Model:           w.answer.Model,
		GeneratedAt:     time.Now().UTC(),
	}
	return nil
}
