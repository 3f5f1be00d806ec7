// Package main seeds the database with demo patients and clinical notes.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/nmurthy/oncopilot/internal/config"
	"github.com/nmurthy/oncopilot/internal/store"
	"github.com/nmurthy/oncopilot/pkg/models"
)

func main() {
	if err := run(); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	st := store.NewPostgresStore(pool)
	now := time.Now().UTC()

	patients := []*models.Patient{
		{
			ID: "P001", Name: "Margaret Chen", Age: 62, Sex: "F",
			Diagnosis: "Invasive ductal carcinoma", CancerType: "breast cancer", Stage: "IIIA",
			Biomarkers:  []string{"HER2+", "ER+"},
			Medications: []string{"trastuzumab", "letrozole"},
			CreatedAt:   now, UpdatedAt: now,
		},
		{
			ID: "P002", Name: "Robert Alvarez", Age: 58, Sex: "M",
			Diagnosis: "Non-small cell lung cancer", CancerType: "lung cancer", Stage: "IV",
			Biomarkers:  []string{"EGFR exon 19 deletion"},
			Medications: []string{"osimertinib"},
			CreatedAt:   now, UpdatedAt: now,
		},
		{
			ID: "P003", Name: "Diane Okafor", Age: 47, Sex: "F",
			Diagnosis: "Colorectal adenocarcinoma", CancerType: "colorectal cancer", Stage: "II",
			Biomarkers:  []string{"MSI-high"},
			Medications: []string{},
			CreatedAt:   now, UpdatedAt: now,
		},
	}

	notes := []*models.ClinicalNote{
		{
			ID: uuid.New(), PatientID: "P001", NoteType: "progress", Author: "Dr. Patel",
			Body:      "Completed third cycle of neoadjuvant therapy. Tumor size reduced on imaging; tolerating treatment well.",
			CreatedAt: now.Add(-48 * time.Hour),
		},
		{
			ID: uuid.New(), PatientID: "P001", NoteType: "pathology", Author: "Dr. Weiss",
			Body:      "Core biopsy confirms HER2 amplification by FISH. ER 80%, PR 20%.",
			CreatedAt: now.Add(-30 * 24 * time.Hour),
		},
		{
			ID: uuid.New(), PatientID: "P002", NoteType: "progress", Author: "Dr. Lindqvist",
			Body:      "Brain MRI shows no new metastases. Continuing osimertinib; next scan in 8 weeks.",
			CreatedAt: now.Add(-72 * time.Hour),
		},
	}

	for _, p := range patients {
		if err := st.CreatePatient(ctx, p); err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				slog.Info("patient already seeded", "patient_id", p.ID)
				continue
			}
			return fmt.Errorf("seed patient %s: %w", p.ID, err)
		}
		slog.Info("seeded patient", "patient_id", p.ID)
	}

	for _, n := range notes {
		if err := st.CreateClinicalNote(ctx, n); err != nil {
			return fmt.Errorf("seed note for %s: %w", n.PatientID, err)
		}
	}
	slog.Info("seeded clinical notes", "count", len(notes))

	return nil
}
