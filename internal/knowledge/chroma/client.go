// Package chroma implements the knowledge searcher against a Chroma-compatible
// vector store HTTP API.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/nmurthy/oncopilot/pkg/models"
)

// Sentinel errors for vector-store client failures.
var (
	ErrStoreUnreachable = errors.New("vector store unreachable")
	ErrStoreQueryError  = errors.New("vector store query error")
	ErrStoreTimeout     = errors.New("vector store query timeout")
)

// Client implements models.KnowledgeSearcher using Chroma's HTTP query API.
type Client struct {
	baseURL    string
	collection string
	client     *http.Client
}

// NewClient creates a new vector-store HTTP client.
func NewClient(baseURL, collection string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		collection: collection,
		client:     &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return "chroma" }

func (c *Client) Search(ctx context.Context, query string, topK int) ([]models.KnowledgeChunk, error) {
	body, err := json.Marshal(queryRequest{
		QueryTexts: []string{query},
		NResults:   topK,
		Include:    []string{"documents", "distances", "metadatas"},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}

	u := fmt.Sprintf("%s/api/v1/collections/%s/query", c.baseURL, url.PathEscape(c.collection))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrStoreQueryError, resp.StatusCode)
	}

	var qr queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return nil, fmt.Errorf("decoding vector store response: %w", err)
	}

	return parseResults(qr), nil
}

// parseResults flattens the first query's result lists into chunks. Chroma
// reports distances; similarity is 1 - distance.
func parseResults(qr queryResponse) []models.KnowledgeChunk {
	if len(qr.IDs) == 0 {
		return []models.KnowledgeChunk{}
	}

	ids := qr.IDs[0]
	chunks := make([]models.KnowledgeChunk, 0, len(ids))
	for i, id := range ids {
		chunk := models.KnowledgeChunk{ID: id, Index: i}
		if len(qr.Documents) > 0 && i < len(qr.Documents[0]) {
			chunk.Text = qr.Documents[0][i]
		}
		if len(qr.Distances) > 0 && i < len(qr.Distances[0]) {
			chunk.Similarity = 1 - qr.Distances[0][i]
		}
		if len(qr.Metadatas) > 0 && i < len(qr.Metadatas[0]) {
			meta := qr.Metadatas[0][i]
			if src, ok := meta["source"].(string); ok {
				chunk.Source = src
			}
			if idx, ok := meta["chunk_index"].(float64); ok {
				chunk.Index = int(idx)
			}
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrStoreTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrStoreTimeout, err)
		}
	}

	return fmt.Errorf("%w: %v", ErrStoreUnreachable, err)
}

// --- Chroma request/response types ---

type queryRequest struct {
	QueryTexts []string `json:"query_texts"`
	NResults   int      `json:"n_results"`
	Include    []string `json:"include"`
}

type queryResponse struct {
	IDs       [][]string         `json:"ids"`
	Documents [][]string         `json:"documents"`
	Distances [][]float64        `json:"distances"`
	Metadatas [][]map[string]any `json:"metadatas"`
}

// Compile-time check that Client implements KnowledgeSearcher.
var _ models.KnowledgeSearcher = (*Client)(nil)
