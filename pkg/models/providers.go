package models

import "context"

// ReasoningProvider produces structured narrative output from gathered patient
// context. Callers hold this interface, never a concrete backend.
type ReasoningProvider interface {
	// Reason synthesizes a summary, key findings and recommendations.
	Reason(ctx context.Context, req ReasoningRequest) (ReasoningResponse, error)
	// Name returns the provider identifier (e.g. "openai", "mock").
	Name() string
}

// KnowledgeSearcher performs similarity search over an external knowledge store.
type KnowledgeSearcher interface {
	// Search returns up to topK chunks ranked by similarity to the query.
	Search(ctx context.Context, query string, topK int) ([]KnowledgeChunk, error)
	Name() string
}

// TrialQuery describes the patient profile a trial search is built from.
type TrialQuery struct {
	Condition  string
	Biomarkers []string
	MaxResults int
}

// TrialMatcher finds candidate clinical trials for a patient profile.
type TrialMatcher interface {
	Match(ctx context.Context, q TrialQuery) ([]TrialMatch, error)
	Name() string
}
