package resources

import (
	"context"

	"github.com/zatekoja/clinicdesk/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/internal/domain/repositories"
	"github.com/zatekoja/clinicdesk/internal/infrastructure/clients/clinicapi"
	apperrors "github.com/zatekoja/clinicdesk/pkg/errors"
)

const (
	historySubPath   = "history"
	anamnesisSubPath = "anamnesis"
)

// PatientAdapter implements PatientRepository over /patients and its
// nested history and anamnesis sub-resources
type PatientAdapter struct {
	*Resource[entities.Patient]
}

// NewPatientAdapter creates a new patient adapter
func NewPatientAdapter(client clinicapi.Client) repositories.PatientRepository {
	return &PatientAdapter{Resource: NewResource[entities.Patient](client, entities.ResourcePatients)}
}

// GetHistory handles GET /patients/:id/history
func (a *PatientAdapter) GetHistory(ctx context.Context, patientID string) ([]entities.PatientHistoryEntry, error) {
	path, err := a.itemPath(patientID, historySubPath)
	if err != nil {
		return nil, err
	}
	result, err := a.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	return decodeList[entities.PatientHistoryEntry](result)
}

// CreateHistory handles POST /patients/:id/history
func (a *PatientAdapter) CreateHistory(ctx context.Context, patientID string, entry *entities.PatientHistoryEntry) (*entities.PatientHistoryEntry, error) {
	if entry == nil {
		return nil, apperrors.NewValidationError("patients: history entry is required")
	}
	path, err := a.itemPath(patientID, historySubPath)
	if err != nil {
		return nil, err
	}
	result, err := a.client.Post(ctx, path, entry)
	if err != nil {
		return nil, err
	}
	return decodeOne(result, entry)
}

// GetAnamnesis handles GET /patients/:id/anamnesis
func (a *PatientAdapter) GetAnamnesis(ctx context.Context, patientID string) (*entities.Anamnesis, error) {
	path, err := a.itemPath(patientID, anamnesisSubPath)
	if err != nil {
		return nil, err
	}
	result, err := a.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	anamnesis, err := decodeOne[entities.Anamnesis](result, nil)
	if err != nil {
		return nil, err
	}
	if anamnesis == nil {
		return nil, apperrors.NewNotFoundError("patients: no anamnesis for " + patientID)
	}
	return anamnesis, nil
}

// SaveAnamnesis handles PUT /patients/:id/anamnesis. The patient has at most
// one anamnesis, so saving replaces it whole.
func (a *PatientAdapter) SaveAnamnesis(ctx context.Context, patientID string, anamnesis *entities.Anamnesis) (*entities.Anamnesis, error) {
	if anamnesis == nil {
		return nil, apperrors.NewValidationError("patients: anamnesis is required")
	}
	path, err := a.itemPath(patientID, anamnesisSubPath)
	if err != nil {
		return nil, err
	}
	result, err := a.client.Put(ctx, path, anamnesis)
	if err != nil {
		return nil, err
	}
	return decodeOne(result, anamnesis)
}
