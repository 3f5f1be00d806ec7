package mock

import (
	"context"

	"github.com/nmurthy/oncopilot/pkg/models"
)

// MockMatcher satisfies models.TrialMatcher for mock mode and tests.
type MockMatcher struct {
	Name_     string
	MatchFunc func(ctx context.Context, q models.TrialQuery) ([]models.TrialMatch, error)
}

func (m *MockMatcher) Name() string { return m.Name_ }

func (m *MockMatcher) Match(ctx context.Context, q models.TrialQuery) ([]models.TrialMatch, error) {
	if m.MatchFunc != nil {
		return m.MatchFunc(ctx, q)
	}
	return []models.TrialMatch{}, nil
}

// NewMatcher returns a MockMatcher with canned recruiting trials.
func NewMatcher() *MockMatcher {
	return &MockMatcher{
		Name_: "mock",
		MatchFunc: func(_ context.Context, q models.TrialQuery) ([]models.TrialMatch, error) {
			matches := []models.TrialMatch{
				{
					NCTID:   "NCT05012345",
					Title:   "Phase II Study of Targeted Therapy in Biomarker-Selected Solid Tumors",
					Status:  "RECRUITING",
					Summary: "Evaluates objective response rate of targeted therapy in patients selected by genomic profiling.",
					URL:     "https://clinicaltrials.gov/study/NCT05012345",
				},
				{
					NCTID:   "NCT04987654",
					Title:   "Immunotherapy Combination for Advanced Disease",
					Status:  "RECRUITING",
					Summary: "Open-label study of checkpoint inhibitor combination in previously treated patients.",
					URL:     "https://clinicaltrials.gov/study/NCT04987654",
				},
			}
			if q.MaxResults > 0 && len(matches) > q.MaxResults {
				matches = matches[:q.MaxResults]
			}
			return matches, nil
		},
	}
}

// NewFailingMatcher returns a MockMatcher that always returns the given error.
func NewFailingMatcher(err error) *MockMatcher {
	return &MockMatcher{
		Name_: "mock-failing",
		MatchFunc: func(_ context.Context, _ models.TrialQuery) ([]models.TrialMatch, error) {
			return nil, err
		},
	}
}

// Compile-time check that MockMatcher implements TrialMatcher.
var _ models.TrialMatcher = (*MockMatcher)(nil)
