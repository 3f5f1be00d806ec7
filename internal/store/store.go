package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nmurthy/oncopilot/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the patient data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreatePatient(ctx context.Context, p *models.Patient) error
	GetPatient(ctx context.Context, id string) (*models.Patient, error)
	PatientExists(ctx context.Context, id string) (bool, error)
	ListPatients(ctx context.Context, filter PatientFilter) ([]*models.Patient, int, error)
	DeletePatient(ctx context.Context, id string) error

	CreateClinicalNote(ctx context.Context, note *models.ClinicalNote) error
	ListClinicalNotes(ctx context.Context, patientID string) ([]*models.ClinicalNote, error)
	DeleteClinicalNote(ctx context.Context, id uuid.UUID) error
}

type PatientFilter struct {
	CancerType string
	Page       int
	Limit      int
}
