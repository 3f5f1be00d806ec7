package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nmurthy/oncopilot/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Patients ---

func (s *PostgresStore) CreatePatient(ctx context.Context, p *models.Patient) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO patients (id, name, age, sex, diagnosis, cancer_type, stage, biomarkers, medications, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.Name, p.Age, p.Sex, p.Diagnosis, p.CancerType, p.Stage,
		p.Biomarkers, p.Medications, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create patient: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPatient(ctx context.Context, id string) (*models.Patient, error) {
	var p models.Patient
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, age, sex, diagnosis, cancer_type, stage, biomarkers, medications, created_at, updated_at
		 FROM patients WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Age, &p.Sex, &p.Diagnosis, &p.CancerType, &p.Stage,
		&p.Biomarkers, &p.Medications, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return &p, nil
}

// PatientExists is the cheap existence check used before scheduling analysis work.
func (s *PostgresStore) PatientExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM patients WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("patient exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListPatients(ctx context.Context, filter PatientFilter) ([]*models.Patient, int, error) {
	conditions := []string{"TRUE"}
	args := []any{}
	argIdx := 1

	if filter.CancerType != "" {
		conditions = append(conditions, fmt.Sprintf("cancer_type = $%d", argIdx))
		args = append(args, filter.CancerType)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM patients WHERE " + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patients: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	dataQuery := fmt.Sprintf(
		`SELECT id, name, age, sex, diagnosis, cancer_type, stage, biomarkers, medications, created_at, updated_at
		 FROM patients WHERE %s ORDER BY id LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	var patients []*models.Patient
	for rows.Next() {
		var p models.Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.Age, &p.Sex, &p.Diagnosis, &p.CancerType,
			&p.Stage, &p.Biomarkers, &p.Medications, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan patient: %w", err)
		}
		patients = append(patients, &p)
	}
	return patients, total, rows.Err()
}

func (s *PostgresStore) DeletePatient(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Clinical Notes ---

func (s *PostgresStore) CreateClinicalNote(ctx context.Context, note *models.ClinicalNote) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO clinical_notes (id, patient_id, note_type, author, body, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		note.ID, note.PatientID, note.NoteType, note.Author, note.Body, note.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create clinical note: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListClinicalNotes(ctx context.Context, patientID string) ([]*models.ClinicalNote, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, patient_id, note_type, author, body, created_at
		 FROM clinical_notes WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("list clinical notes: %w", err)
	}
	defer rows.Close()

	var notes []*models.ClinicalNote
	for rows.Next() {
		var n models.ClinicalNote
		if err := rows.Scan(&n.ID, &n.PatientID, &n.NoteType, &n.Author, &n.Body, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan clinical note: %w", err)
		}
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}

func (s *PostgresStore) DeleteClinicalNote(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM clinical_notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete clinical note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// isDuplicateKeyError reports whether err is a Postgres unique violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
