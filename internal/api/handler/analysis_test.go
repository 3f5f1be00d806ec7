package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/nmurthy/oncopilot/internal/orchestrator"
	"github.com/nmurthy/oncopilot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubOrchestrator implements the Orchestrator interface with canned responses.
type stubOrchestrator struct {
	submitID  string
	submitErr error

	status    orchestrator.StatusSnapshot
	statusErr error

	results    *models.AnalysisResult
	resultsErr error

	summaries []orchestrator.JobSummary
}

func (s *stubOrchestrator) Submit(_ context.Context, _ orchestrator.AnalysisRequest) (string, error) {
	return s.submitID, s.submitErr
}

func (s *stubOrchestrator) Status(string) (orchestrator.StatusSnapshot, error) {
	return s.status, s.statusErr
}

func (s *stubOrchestrator) Results(string) (*models.AnalysisResult, error) {
	return s.results, s.resultsErr
}

func (s *stubOrchestrator) List(string, string) []orchestrator.JobSummary {
	return s.summaries
}

// withURLParam injects a chi route parameter into the request context.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, body *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(body.Body).Decode(&resp))
	return resp.Error.Code, resp.Error.Message
}

func TestRunAnalysisHandler_Accepted(t *testing.T) {
	h := NewRunAnalysisHandler(&stubOrchestrator{submitID: "REQ-20260830120000-P001-a3f09c"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/run",
		strings.NewReader(`{"patient_id":"P001","include_trials":true}`))
	rec := httptest.NewRecorder()
	h(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			RequestID string `json:"request_id"`
			PatientID string `json:"patient_id"`
			Status    string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "REQ-20260830120000-P001-a3f09c", resp.Data.RequestID)
	assert.Equal(t, "P001", resp.Data.PatientID)
	assert.Equal(t, "initializing", resp.Data.Status)
}

func TestRunAnalysisHandler_InvalidJSON(t *testing.T) {
	h := NewRunAnalysisHandler(&stubOrchestrator{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/run", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	code, _ := decodeError(t, rec)
	assert.Equal(t, "INVALID_REQUEST", code)
}

func TestRunAnalysisHandler_MissingPatientID(t *testing.T) {
	h := NewRunAnalysisHandler(&stubOrchestrator{
		submitErr: &orchestrator.ValidationError{Field: "patient_id", Reason: "is required"},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/run", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	code, _ := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", code)
}

func TestRunAnalysisHandler_QueueFull(t *testing.T) {
	h := NewRunAnalysisHandler(&stubOrchestrator{submitErr: orchestrator.ErrQueueFull})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/run",
		strings.NewReader(`{"patient_id":"P001"}`))
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	code, _ := decodeError(t, rec)
	assert.Equal(t, "QUEUE_FULL", code)
}

func TestAnalysisStatusHandler_Found(t *testing.T) {
	h := NewAnalysisStatusHandler(&stubOrchestrator{
		status: orchestrator.StatusSnapshot{
			RequestID:       "REQ-1",
			PatientID:       "P001",
			Status:          "running",
			CurrentStep:     "reasoning",
			ProgressPercent: 45,
			StepsCompleted:  []string{"context_gathering", "knowledge_retrieval"},
			StepsRemaining:  []string{"reasoning", "assembly"},
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/analysis/REQ-1/status", nil),
		"requestID", "REQ-1")
	rec := httptest.NewRecorder()
	h(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data orchestrator.StatusSnapshot `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "running", resp.Data.Status)
	assert.Equal(t, "reasoning", resp.Data.CurrentStep)
	assert.Equal(t, 45, resp.Data.ProgressPercent)
}

func TestAnalysisStatusHandler_NotFound(t *testing.T) {
	h := NewAnalysisStatusHandler(&stubOrchestrator{statusErr: orchestrator.ErrNotFound})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/analysis/REQ-x/status", nil),
		"requestID", "REQ-x")
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	code, _ := decodeError(t, rec)
	assert.Equal(t, "NOT_FOUND", code)
}

func TestAnalysisResultsHandler_Completed(t *testing.T) {
	h := NewAnalysisResultsHandler(&stubOrchestrator{
		results: &models.AnalysisResult{
			Summary:         "Stage IIIA disease responding to therapy.",
			KeyFindings:     []string{"HER2 amplification"},
			Recommendations: []string{"Continue regimen"},
			Provider:        "openai",
			Model:           "gpt-4o-mini",
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/analysis/REQ-1/results", nil),
		"requestID", "REQ-1")
	rec := httptest.NewRecorder()
	h(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data models.AnalysisResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Stage IIIA disease responding to therapy.", resp.Data.Summary)
	assert.Equal(t, "openai", resp.Data.Provider)
}

func TestAnalysisResultsHandler_NotReady(t *testing.T) {
	h := NewAnalysisResultsHandler(&stubOrchestrator{resultsErr: orchestrator.ErrNotReady})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/analysis/REQ-1/results", nil),
		"requestID", "REQ-1")
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	code, _ := decodeError(t, rec)
	assert.Equal(t, "NOT_READY", code)
}

func TestAnalysisResultsHandler_Failed(t *testing.T) {
	h := NewAnalysisResultsHandler(&stubOrchestrator{
		resultsErr: &orchestrator.JobFailedError{RequestID: "REQ-1", Reason: "reasoning provider unavailable"},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/analysis/REQ-1/results", nil),
		"requestID", "REQ-1")
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ANALYSIS_FAILED", resp.Error.Code)
	assert.Equal(t, "reasoning provider unavailable", resp.Error.Details["error"])
}

func TestAnalysisResultsHandler_NotFound(t *testing.T) {
	h := NewAnalysisResultsHandler(&stubOrchestrator{resultsErr: orchestrator.ErrNotFound})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/analysis/REQ-x/results", nil),
		"requestID", "REQ-x")
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAnalysesHandler(t *testing.T) {
	h := NewListAnalysesHandler(&stubOrchestrator{
		summaries: []orchestrator.JobSummary{
			{RequestID: "REQ-2", PatientID: "P001", Status: "running", ProgressPercent: 40},
			{RequestID: "REQ-1", PatientID: "P001", Status: "completed", ProgressPercent: 100},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis?patient_id=P001", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []orchestrator.JobSummary `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "REQ-2", resp.Data[0].RequestID)
}
