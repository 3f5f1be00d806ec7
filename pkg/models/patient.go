// Package models contains shared data models used across the OncoPilot codebase.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a patient record as stored by the patient data service.
// Patient IDs are external identifiers ("P001" style), not UUIDs.
type Patient struct {
	ID          string    `db:"id"           json:"id"`
	Name        string    `db:"name"         json:"name"`
	Age         int       `db:"age"          json:"age"`
	Sex         string    `db:"sex"          json:"sex"`
	Diagnosis   string    `db:"diagnosis"    json:"diagnosis"`
	CancerType  string    `db:"cancer_type"  json:"cancer_type"`
	Stage       string    `db:"stage"        json:"stage"`
	Biomarkers  []string  `db:"biomarkers"   json:"biomarkers"`
	Medications []string  `db:"medications"  json:"medications"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updated_at"`
}

// ClinicalNote is a free-text note attached to a patient record.
type ClinicalNote struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	PatientID string    `db:"patient_id" json:"patient_id"`
	NoteType  string    `db:"note_type"  json:"note_type"`
	Author    string    `db:"author"     json:"author"`
	Body      string    `db:"body"       json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
