package mock

import (
	"context"

	"github.com/nmurthy/oncopilot/pkg/models"
)

// MockSearcher satisfies models.KnowledgeSearcher for mock mode and tests.
type MockSearcher struct {
	Name_      string
	SearchFunc func(ctx context.Context, query string, topK int) ([]models.KnowledgeChunk, error)
}

func (m *MockSearcher) Name() string { return m.Name_ }

func (m *MockSearcher) Search(ctx context.Context, query string, topK int) ([]models.KnowledgeChunk, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, topK)
	}
	return []models.KnowledgeChunk{}, nil
}

// NewSearcher returns a MockSearcher with canned oncology reference chunks.
func NewSearcher() *MockSearcher {
	return &MockSearcher{
		Name_: "mock",
		SearchFunc: func(_ context.Context, _ string, topK int) ([]models.KnowledgeChunk, error) {
			chunks := []models.KnowledgeChunk{
				{
					ID:         "chunk-nccn-001",
					Text:       "NCCN guidelines recommend biomarker testing for all patients with advanced disease before first-line therapy selection.",
					Source:     "nccn-guidelines",
					Similarity: 0.92,
					Index:      0,
				},
				{
					ID:         "chunk-asco-014",
					Text:       "Combination therapy showed improved progression-free survival in the phase III trial population.",
					Source:     "asco-abstracts",
					Similarity: 0.85,
					Index:      3,
				},
				{
					ID:         "chunk-pubmed-207",
					Text:       "Resistance mutations frequently emerge after prolonged targeted therapy and warrant repeat genomic profiling.",
					Source:     "pubmed",
					Similarity: 0.78,
					Index:      1,
				},
			}
			if topK > 0 && len(chunks) > topK {
				chunks = chunks[:topK]
			}
			return chunks, nil
		},
	}
}

// NewFailingSearcher returns a MockSearcher that always returns the given error.
func NewFailingSearcher(err error) *MockSearcher {
	return &MockSearcher{
		Name_: "mock-failing",
		SearchFunc: func(_ context.Context, _ string, _ int) ([]models.KnowledgeChunk, error) {
			return nil, err
		},
	}
}

// Compile-time check that MockSearcher implements KnowledgeSearcher.
var _ models.KnowledgeSearcher = (*MockSearcher)(nil)
