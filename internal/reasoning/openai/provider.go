// Package openai implements the reasoning provider using the OpenAI
// chat-completions API with JSON-mode structured output.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/nmurthy/oncopilot/pkg/models"
)

// Sentinel errors for reasoning provider failures.
var (
	ErrProviderUnavailable = errors.New("reasoning provider unavailable")
	ErrInferenceTimeout    = errors.New("reasoning inference timeout")
	ErrInvalidResponse     = errors.New("reasoning provider returned invalid response")
)

const systemPrompt = `You are a clinical decision-support assistant for oncology care teams.
Given a patient record, clinical notes and reference excerpts, respond with a JSON object
containing exactly these keys: "summary" (string), "key_findings" (array of strings),
"recommendations" (array of strings). Be concise and cite findings from the provided context only.`

// Provider implements models.ReasoningProvider using OpenAI.
type Provider struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewProvider(baseURL, apiKey, model string, timeout time.Duration) *Provider {
	return &Provider{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) Reason(ctx context.Context, req models.ReasoningRequest) (models.ReasoningResponse, error) {
	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(req)},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
		Temperature:    0.2,
	})
	if err != nil {
		return models.ReasoningResponse{}, fmt.Errorf("encoding chat request: %w", err)
	}

	u := p.baseURL + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return models.ReasoningResponse{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return models.ReasoningResponse{}, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.ReasoningResponse{}, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return models.ReasoningResponse{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(cr.Choices) == 0 {
		return models.ReasoningResponse{}, fmt.Errorf("%w: no choices", ErrInvalidResponse)
	}

	var out models.ReasoningResponse
	if err := json.Unmarshal([]byte(cr.Choices[0].Message.Content), &out); err != nil {
		return models.ReasoningResponse{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if out.Summary == "" {
		return models.ReasoningResponse{}, fmt.Errorf("%w: empty summary", ErrInvalidResponse)
	}
	out.Model = cr.Model

	return out, nil
}

// buildPrompt renders the gathered patient context as the user message.
func buildPrompt(req models.ReasoningRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analysis type: %s\n\n", req.AnalysisType)
	fmt.Fprintf(&b, "Patient %s: %s, age %d, sex %s\n", req.Patient.ID, req.Patient.Name, req.Patient.Age, req.Patient.Sex)
	fmt.Fprintf(&b, "Diagnosis: %s (%s, stage %s)\n", req.Patient.Diagnosis, req.Patient.CancerType, req.Patient.Stage)
	if len(req.Patient.Biomarkers) > 0 {
		fmt.Fprintf(&b, "Biomarkers: %s\n", strings.Join(req.Patient.Biomarkers, ", "))
	}
	if len(req.Patient.Medications) > 0 {
		fmt.Fprintf(&b, "Current medications: %s\n", strings.Join(req.Patient.Medications, ", "))
	}

	if len(req.Notes) > 0 {
		b.WriteString("\nClinical notes (most recent first):\n")
		for _, n := range req.Notes {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", n.CreatedAt.Format("2006-01-02"), n.NoteType, n.Body)
		}
	}

	if len(req.Knowledge) > 0 {
		b.WriteString("\nReference excerpts:\n")
		for _, c := range req.Knowledge {
			fmt.Fprintf(&b, "- (%s, similarity %.2f) %s\n", c.Source, c.Similarity, c.Text)
		}
	}

	return b.String()
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}

// --- OpenAI request/response types ---

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Temperature    float64         `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Compile-time check that Provider implements ReasoningProvider.
var _ models.ReasoningProvider = (*Provider)(nil)
