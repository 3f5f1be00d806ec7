// Package knowledge selects and post-processes the vector-store backend used
// for retrieval-augmented analysis.
package knowledge

import (
	"sort"

	"github.com/nmurthy/oncopilot/internal/config"
	"github.com/nmurthy/oncopilot/internal/knowledge/chroma"
	"github.com/nmurthy/oncopilot/internal/knowledge/mock"
	"github.com/nmurthy/oncopilot/pkg/models"
)

// NewSearcher constructs the knowledge searcher selected by config.
// Called once at server startup.
func NewSearcher(cfg config.VectorConfig) models.KnowledgeSearcher {
	if cfg.UseMock {
		return mock.NewSearcher()
	}
	return chroma.NewClient(cfg.BaseURL, cfg.Collection, cfg.Timeout)
}

// Rank filters chunks below the similarity threshold and returns at most topK,
// ordered by similarity descending with ties broken by ascending chunk index.
func Rank(chunks []models.KnowledgeChunk, topK int, threshold float64) []models.KnowledgeChunk {
	kept := make([]models.KnowledgeChunk, 0, len(chunks))
	for _, c := range chunks {
		if c.Similarity >= threshold {
			kept = append(kept, c)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Similarity != kept[j].Similarity {
			return kept[i].Similarity > kept[j].Similarity
		}
		return kept[i].Index < kept[j].Index
	})

	if topK > 0 && len(kept) > topK {
		kept = kept[:topK]
	}
	return kept
}
