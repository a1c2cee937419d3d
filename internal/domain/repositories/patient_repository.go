package repositories

import (
	"context"

	"github.com/zatekoja/clinicdesk/internal/domain/entities"
)

// PatientRepository defines the patient resource and its nested sub-resources
type PatientRepository interface {
	Repository[entities.Patient]

	// GetHistory lists /patients/:id/history
	GetHistory(ctx context.Context, patientID string) ([]entities.PatientHistoryEntry, error)

	// CreateHistory appends an entry to /patients/:id/history
	CreateHistory(ctx context.Context, patientID string, entry *entities.PatientHistoryEntry) (*entities.PatientHistoryEntry, error)

	// GetAnamnesis retrieves /patients/:id/anamnesis
	GetAnamnesis(ctx context.Context, patientID string) (*entities.Anamnesis, error)

	// SaveAnamnesis replaces /patients/:id/anamnesis
	SaveAnamnesis(ctx context.Context, patientID string, anamnesis *entities.Anamnesis) (*entities.Anamnesis, error)
}
