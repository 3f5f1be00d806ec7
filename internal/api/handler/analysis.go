package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nmurthy/oncopilot/internal/api/response"
	"github.com/nmurthy/oncopilot/internal/orchestrator"
	"github.com/nmurthy/oncopilot/pkg/models"
)

// Orchestrator defines the analysis operations the handlers depend on.
type Orchestrator interface {
	Submit(ctx context.Context, req orchestrator.AnalysisRequest) (string, error)
	Status(requestID string) (orchestrator.StatusSnapshot, error)
	Results(requestID string) (*models.AnalysisResult, error)
	List(patientID, status string) []orchestrator.JobSummary
}

// NewRunAnalysisHandler returns an http.HandlerFunc for POST /api/v1/analysis/run.
// The submission returns immediately; progress is observed by polling.
func NewRunAnalysisHandler(svc Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PatientID     string `json:"patient_id"`
			AnalysisType  string `json:"analysis_type"`
			IncludeTrials bool   `json:"include_trials"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		requestID, err := svc.Submit(r.Context(), orchestrator.AnalysisRequest{
			PatientID:     req.PatientID,
			AnalysisType:  req.AnalysisType,
			IncludeTrials: req.IncludeTrials,
		})
		if err != nil {
			var verr *orchestrator.ValidationError
			switch {
			case errors.As(err, &verr):
				response.Error(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
					verr.Error(), map[string]string{"field": verr.Field})
			case errors.Is(err, orchestrator.ErrQueueFull):
				response.Error(w, http.StatusServiceUnavailable, "QUEUE_FULL",
					"Too many analyses in flight, try again later", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		response.JSON(w, runAnalysisResponse{
			RequestID: requestID,
			PatientID: req.PatientID,
			Status:    orchestrator.StatusInitializing,
		})
	}
}

// NewAnalysisStatusHandler returns an http.HandlerFunc for
// GET /api/v1/analysis/{requestID}/status.
func NewAnalysisStatusHandler(svc Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := chi.URLParam(r, "requestID")

		snap, err := svc.Status(requestID)
		if err != nil {
			if errors.Is(err, orchestrator.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND",
					"Unknown analysis request id", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, snap)
	}
}

// NewAnalysisResultsHandler returns an http.HandlerFunc for
// GET /api/v1/analysis/{requestID}/results. A failed job surfaces its stored
// reason so clients can render why the analysis failed.
func NewAnalysisResultsHandler(svc Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := chi.URLParam(r, "requestID")

		result, err := svc.Results(requestID)
		if err != nil {
			var jerr *orchestrator.JobFailedError
			switch {
			case errors.Is(err, orchestrator.ErrNotFound):
				response.Error(w, http.StatusNotFound, "NOT_FOUND",
					"Unknown analysis request id", nil)
			case errors.Is(err, orchestrator.ErrNotReady):
				response.Error(w, http.StatusBadRequest, "NOT_READY",
					"Analysis is not complete yet, poll status first", nil)
			case errors.As(err, &jerr):
				response.Error(w, http.StatusInternalServerError, "ANALYSIS_FAILED",
					"Analysis ended in error", map[string]string{"error": jerr.Reason})
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		response.JSON(w, result)
	}
}

// NewListAnalysesHandler returns an http.HandlerFunc for GET /api/v1/analysis.
func NewListAnalysesHandler(svc Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := r.URL.Query().Get("patient_id")
		status := r.URL.Query().Get("status")

		response.JSON(w, svc.List(patientID, status))
	}
}

type runAnalysisResponse struct {
	RequestID string `json:"request_id"`
	PatientID string `json:"patient_id"`
	Status    string `json:"status"`
}
