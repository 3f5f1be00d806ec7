package mock

import (
	"context"
	"fmt"

	"github.com/nmurthy/oncopilot/pkg/models"
)

// MockProvider satisfies models.ReasoningProvider for mock mode and tests.
type MockProvider struct {
	Name_      string
	ReasonFunc func(ctx context.Context, req models.ReasoningRequest) (models.ReasoningResponse, error)
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Reason(ctx context.Context, req models.ReasoningRequest) (models.ReasoningResponse, error) {
	if m.ReasonFunc != nil {
		return m.ReasonFunc(ctx, req)
	}
	return models.ReasoningResponse{}, nil
}

// NewProvider returns a MockProvider with deterministic canned output derived
// from the request, so mock-mode runs still produce patient-specific payloads.
func NewProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		ReasonFunc: func(_ context.Context, req models.ReasoningRequest) (models.ReasoningResponse, error) {
			findings := []string{
				fmt.Sprintf("Patient %s has a documented diagnosis of %s.", req.Patient.ID, req.Patient.Diagnosis),
			}
			for _, bm := range req.Patient.Biomarkers {
				findings = append(findings, fmt.Sprintf("Biomarker %s detected on most recent profiling.", bm))
			}
			if len(req.Knowledge) > 0 {
				findings = append(findings, fmt.Sprintf("%d reference excerpts matched the patient context.", len(req.Knowledge)))
			}

			return models.ReasoningResponse{
				Summary: fmt.Sprintf("Mock analysis for patient %s (%s, stage %s) based on %d clinical notes.",
					req.Patient.ID, req.Patient.CancerType, req.Patient.Stage, len(req.Notes)),
				KeyFindings: findings,
				Recommendations: []string{
					"Review findings with the multidisciplinary tumor board.",
					"Confirm biomarker status before adjusting therapy.",
				},
				Model: "mock-v1",
			}, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		ReasonFunc: func(_ context.Context, _ models.ReasoningRequest) (models.ReasoningResponse, error) {
			return models.ReasoningResponse{}, err
		},
	}
}

// NewHangingProvider returns a MockProvider that blocks until its context is
// cancelled, for exercising per-attempt timeouts.
func NewHangingProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-hanging",
		ReasonFunc: func(ctx context.Context, _ models.ReasoningRequest) (models.ReasoningResponse, error) {
			<-ctx.Done()
			return models.ReasoningResponse{}, ctx.Err()
		},
	}
}

// Compile-time check that MockProvider implements ReasoningProvider.
var _ models.ReasoningProvider = (*MockProvider)(nil)
