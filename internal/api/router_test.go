package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRouter_RoutesAreRegistered(t *testing.T) {
	called := map[string]bool{}
	mark := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			called[name] = true
			w.WriteHeader(http.StatusOK)
		}
	}

	router := NewRouter(Dependencies{
		HealthHandler:          mark("health"),
		RunAnalysisHandler:     mark("run"),
		AnalysisStatusHandler:  mark("status"),
		AnalysisResultsHandler: mark("results"),
		ListAnalysesHandler:    mark("list-analyses"),
		ListPatientsHandler:    mark("list-patients"),
		GetPatientHandler:      mark("get-patient"),
		CreatePatientHandler:   mark("create-patient"),
		DeletePatientHandler:   mark("delete-patient"),
		ListNotesHandler:       mark("list-notes"),
		CreateNoteHandler:      mark("create-note"),
	})

	routes := []struct {
		method string
		path   string
		name   string
	}{
		{http.MethodGet, "/api/v1/health", "health"},
		{http.MethodPost, "/api/v1/analysis/run", "run"},
		{http.MethodGet, "/api/v1/analysis", "list-analyses"},
		{http.MethodGet, "/api/v1/analysis/REQ-1/status", "status"},
		{http.MethodGet, "/api/v1/analysis/REQ-1/results", "results"},
		{http.MethodGet, "/api/v1/patients", "list-patients"},
		{http.MethodPost, "/api/v1/patients", "create-patient"},
		{http.MethodGet, "/api/v1/patients/P001", "get-patient"},
		{http.MethodDelete, "/api/v1/patients/P001", "delete-patient"},
		{http.MethodGet, "/api/v1/patients/P001/notes", "list-notes"},
		{http.MethodPost, "/api/v1/patients/P001/notes", "create-note"},
	}

	for _, rt := range routes {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(rt.method, rt.path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, "%s %s", rt.method, rt.path)
		assert.True(t, called[rt.name], "%s %s did not reach its handler", rt.method, rt.path)
	}
}

func TestNewRouter_MissingHandlerReturns501(t *testing.T) {
	router := NewRouter(Dependencies{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/analysis/run", nil))

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_IMPLEMENTED")
}

func TestNewRouter_UnknownRoute404(t *testing.T) {
	router := NewRouter(Dependencies{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
