package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nmurthy/oncopilot/internal/api/response"
	"github.com/nmurthy/oncopilot/internal/store"
	"github.com/nmurthy/oncopilot/pkg/models"
)

// NewListPatientsHandler returns an http.HandlerFunc for GET /api/v1/patients.
func NewListPatientsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		filter := store.PatientFilter{
			CancerType: r.URL.Query().Get("cancer_type"),
			Page:       page,
			Limit:      limit,
		}

		patients, total, err := st.ListPatients(r.Context(), filter)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		if patients == nil {
			patients = []*models.Patient{}
		}

		if limit <= 0 {
			limit = 20
		}
		if page <= 0 {
			page = 1
		}
		response.Collection(w, patients, response.PaginationMeta{
			Page:    page,
			Limit:   limit,
			Total:   total,
			HasNext: page*limit < total,
		})
	}
}

// NewGetPatientHandler returns an http.HandlerFunc for GET /api/v1/patients/{patientID}.
func NewGetPatientHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "patientID")

		patient, err := st.GetPatient(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Patient not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, patient)
	}
}

// NewCreatePatientHandler returns an http.HandlerFunc for POST /api/v1/patients.
func NewCreatePatientHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID          string   `json:"id"`
			Name        string   `json:"name"`
			Age         int      `json:"age"`
			Sex         string   `json:"sex"`
			Diagnosis   string   `json:"diagnosis"`
			CancerType  string   `json:"cancer_type"`
			Stage       string   `json:"stage"`
			Biomarkers  []string `json:"biomarkers"`
			Medications []string `json:"medications"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.ID == "" || req.Name == "" {
			response.Error(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
				"id and name are required", nil)
			return
		}

		now := time.Now().UTC()
		patient := &models.Patient{
			ID:          req.ID,
			Name:        req.Name,
			Age:         req.Age,
			Sex:         req.Sex,
			Diagnosis:   req.Diagnosis,
			CancerType:  req.CancerType,
			Stage:       req.Stage,
			Biomarkers:  req.Biomarkers,
			Medications: req.Medications,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if patient.Biomarkers == nil {
			patient.Biomarkers = []string{}
		}
		if patient.Medications == nil {
			patient.Medications = []string{}
		}

		if err := st.CreatePatient(r.Context(), patient); err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				response.Error(w, http.StatusConflict, "DUPLICATE",
					"A patient with this id already exists", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.Created(w, patient)
	}
}

// NewDeletePatientHandler returns an http.HandlerFunc for DELETE /api/v1/patients/{patientID}.
func NewDeletePatientHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "patientID")

		if err := st.DeletePatient(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Patient not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.NoContent(w)
	}
}

// NewListNotesHandler returns an http.HandlerFunc for GET /api/v1/patients/{patientID}/notes.
func NewListNotesHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patientID")

		exists, err := st.PatientExists(r.Context(), patientID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		if !exists {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Patient not found", nil)
			return
		}

		notes, err := st.ListClinicalNotes(r.Context(), patientID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		if notes == nil {
			notes = []*models.ClinicalNote{}
		}

		response.JSON(w, notes)
	}
}

// NewCreateNoteHandler returns an http.HandlerFunc for POST /api/v1/patients/{patientID}/notes.
func NewCreateNoteHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := chi.URLParam(r, "patientID")

		var req struct {
			NoteType string `json:"note_type"`
			Author   string `json:"author"`
			Body     string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Body == "" {
			response.Error(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR",
				"body is required", nil)
			return
		}
		if req.NoteType == "" {
			req.NoteType = "progress"
		}

		exists, err := st.PatientExists(r.Context(), patientID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		if !exists {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Patient not found", nil)
			return
		}

		note := &models.ClinicalNote{
			ID:        uuid.New(),
			PatientID: patientID,
			NoteType:  req.NoteType,
			Author:    req.Author,
			Body:      req.Body,
			CreatedAt: time.Now().UTC(),
		}
		if err := st.CreateClinicalNote(r.Context(), note); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.Created(w, note)
	}
}
