package models

import "time"

// KnowledgeChunk is one ranked result from a vector-store similarity search.
// Index is the chunk's position within its source document; it breaks
// similarity ties deterministically.
type KnowledgeChunk struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	Source     string  `json:"source"`
	Similarity float64 `json:"similarity"`
	Index      int     `json:"index"`
}

// TrialMatch is one candidate clinical trial returned by the trial-matching provider.
type TrialMatch struct {
	NCTID   string `json:"nct_id"`
	Title   string `json:"title"`
	Status  string `json:"status"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

// ReasoningRequest is the input to the reasoning provider: everything the
// pipeline has gathered for one patient.
type ReasoningRequest struct {
	Patient      Patient
	Notes        []ClinicalNote
	Knowledge    []KnowledgeChunk
	AnalysisType string
}

// ReasoningResponse is the structured narrative output of the reasoning provider.
type ReasoningResponse struct {
	Summary         string   `json:"summary"`
	KeyFindings     []string `json:"key_findings"`
	Recommendations []string `json:"recommendations"`
	Model           string   `json:"model"`
}

// AnalysisResult is the assembled output of a completed analysis pipeline.
type AnalysisResult struct {
	Summary         string       `json:"summary"`
	KeyFindings     []string     `json:"key_findings"`
	Recommendations []string     `json:"recommendations"`
	TrialMatches    []TrialMatch `json:"trial_matches,omitempty"`
	Provider        string       `json:"provider"`
	Model           string       `json:"model"`
	GeneratedAt     time.Time    `json:"generated_at"`
}
