// Package ctgov implements trial matching against the ClinicalTrials.gov API v2.
// API documentation: https://clinicaltrials.gov/data-api/api
package ctgov

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nmurthy/oncopilot/pkg/models"
)

// Sentinel errors for ClinicalTrials.gov client failures.
var (
	ErrTrialsUnreachable = errors.New("clinicaltrials.gov unreachable")
	ErrTrialsQueryError  = errors.New("clinicaltrials.gov query error")
	ErrTrialsTimeout     = errors.New("clinicaltrials.gov query timeout")
)

// Client implements models.TrialMatcher using the studies search endpoint.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new ClinicalTrials.gov HTTP client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return "ctgov" }

func (c *Client) Match(ctx context.Context, q models.TrialQuery) ([]models.TrialMatch, error) {
	pageSize := q.MaxResults
	if pageSize <= 0 {
		pageSize = 10
	}

	condition := q.Condition
	if len(q.Biomarkers) > 0 {
		condition = condition + " " + strings.Join(q.Biomarkers, " ")
	}

	params := url.Values{
		"query.cond":           {condition},
		"filter.overallStatus": {"RECRUITING"},
		"pageSize":             {strconv.Itoa(pageSize)},
		"format":               {"json"},
	}

	u := fmt.Sprintf("%s/api/v2/studies?%s", c.baseURL, params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrTrialsQueryError, resp.StatusCode)
	}

	var sr studiesResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decoding studies response: %w", err)
	}

	return parseStudies(sr.Studies), nil
}

// parseStudies converts API v2 study records into trial matches.
func parseStudies(studies []study) []models.TrialMatch {
	matches := make([]models.TrialMatch, 0, len(studies))
	for _, s := range studies {
		nctID := s.ProtocolSection.IdentificationModule.NCTID
		if nctID == "" {
			continue
		}
		matches = append(matches, models.TrialMatch{
			NCTID:   nctID,
			Title:   s.ProtocolSection.IdentificationModule.BriefTitle,
			Status:  s.ProtocolSection.StatusModule.OverallStatus,
			Summary: s.ProtocolSection.DescriptionModule.BriefSummary,
			URL:     "https://clinicaltrials.gov/study/" + nctID,
		})
	}
	return matches
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTrialsTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTrialsTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrTrialsUnreachable, err)
}

// --- ClinicalTrials.gov API v2 response types ---

type studiesResponse struct {
	Studies []study `json:"studies"`
}

type study struct {
	ProtocolSection struct {
		IdentificationModule struct {
			NCTID      string `json:"nctId"`
			BriefTitle string `json:"briefTitle"`
		} `json:"identificationModule"`
		StatusModule struct {
			OverallStatus string `json:"overallStatus"`
		} `json:"statusModule"`
		DescriptionModule struct {
			BriefSummary string `json:"briefSummary"`
		} `json:"descriptionModule"`
	} `json:"protocolSection"`
}

// Compile-time check that Client implements TrialMatcher.
var _ models.TrialMatcher = (*Client)(nil)
