package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/nmurthy/oncopilot/internal/api/middleware"
	"github.com/nmurthy/oncopilot/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	RunAnalysisHandler     http.HandlerFunc
	AnalysisStatusHandler  http.HandlerFunc
	AnalysisResultsHandler http.HandlerFunc
	ListAnalysesHandler    http.HandlerFunc

	ListPatientsHandler  http.HandlerFunc
	GetPatientHandler    http.HandlerFunc
	CreatePatientHandler http.HandlerFunc
	DeletePatientHandler http.HandlerFunc
	ListNotesHandler     http.HandlerFunc
	CreateNoteHandler    http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	r.Group(func(r chi.Router) {
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}

		r.Post("/api/v1/analysis/run", orNotImplemented(deps.RunAnalysisHandler))
		r.Get("/api/v1/analysis", orNotImplemented(deps.ListAnalysesHandler))
		r.Get("/api/v1/analysis/{requestID}/status", orNotImplemented(deps.AnalysisStatusHandler))
		r.Get("/api/v1/analysis/{requestID}/results", orNotImplemented(deps.AnalysisResultsHandler))

		r.Get("/api/v1/patients", orNotImplemented(deps.ListPatientsHandler))
		r.Post("/api/v1/patients", orNotImplemented(deps.CreatePatientHandler))
		r.Get("/api/v1/patients/{patientID}", orNotImplemented(deps.GetPatientHandler))
		r.Delete("/api/v1/patients/{patientID}", orNotImplemented(deps.DeletePatientHandler))
		r.Get("/api/v1/patients/{patientID}/notes", orNotImplemented(deps.ListNotesHandler))
		r.Post("/api/v1/patients/{patientID}/notes", orNotImplemented(deps.CreateNoteHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
