package services

import (
	"context"
	"fmt"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/zatekoja/clinicdesk/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/internal/domain/repositories"
	"github.com/zatekoja/clinicdesk/internal/infrastructure/observability"
	"github.com/zatekoja/clinicdesk/internal/query/filters"
	"github.com/zatekoja/clinicdesk/internal/query/loaders"
)

// AgendaEntry is an appointment joined with the names shown next to it
type AgendaEntry struct {
	entities.Appointment
	PatientName      string `json:"patientName"`
	ProfessionalName string `json:"professionalName"`
}

func (e AgendaEntry) GetID() string { return e.ID }

func (e AgendaEntry) EventDate() string { return e.Start }

func (e AgendaEntry) SearchFields() []string {
	return append(e.Appointment.SearchFields(), e.PatientName, e.ProfessionalName)
}

// AgendaQueryService handles read-only agenda projections
type AgendaQueryService struct {
	appointments  repositories.Repository[entities.Appointment]
	patients      repositories.Repository[entities.Patient]
	professionals repositories.Repository[entities.Professional]
}

// NewAgendaQueryService creates a new agenda query service
func NewAgendaQueryService(
	appointments repositories.Repository[entities.Appointment],
	patients repositories.Repository[entities.Patient],
	professionals repositories.Repository[entities.Professional],
) *AgendaQueryService {
	return &AgendaQueryService{
		appointments:  appointments,
		patients:      patients,
		professionals: professionals,
	}
}

// Agenda lists the appointments matching filter, newest first, with patient
// and professional names filled in. The free-text query also matches names.
// A name that cannot be resolved is left empty rather than failing the list.
func (s *AgendaQueryService) Agenda(ctx context.Context, filter filters.AppointmentFilter) ([]AgendaEntry, error) {
	appointments, err := s.appointments.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	query := filter.Query
	filter.Query = ""
	appointments = filters.Apply(appointments, filter.Predicates()...)

	l := loaders.For(ctx)
	if l == nil {
		l = loaders.NewLoaders(s.patients, s.professionals)
	}

	patientThunks := make([]dataloader.Thunk[*entities.Patient], len(appointments))
	professionalThunks := make([]dataloader.Thunk[*entities.Professional], len(appointments))
	for i, a := range appointments {
		if id := filters.Deref(a.PatientID); id != "" {
			patientThunks[i] = l.PatientLoader.Load(ctx, id)
		}
		if id := filters.Deref(a.ProfessionalID); id != "" {
			professionalThunks[i] = l.ProfessionalLoader.Load(ctx, id)
		}
	}

	entries := make([]AgendaEntry, len(appointments))
	for i, a := range appointments {
		entries[i] = AgendaEntry{Appointment: a}
		if thunk := patientThunks[i]; thunk != nil {
			if p, err := thunk(); err == nil && p != nil {
				entries[i].PatientName = p.Name
			} else {
				logUnresolved(ctx, entities.ResourcePatients, filters.Deref(a.PatientID), err)
			}
		}
		if thunk := professionalThunks[i]; thunk != nil {
			if p, err := thunk(); err == nil && p != nil {
				entries[i].ProfessionalName = p.Name
			} else {
				logUnresolved(ctx, entities.ResourceProfessionals, filters.Deref(a.ProfessionalID), err)
			}
		}
	}

	return filters.SortByDateDesc(filters.Apply(entries, filters.TextSearch[AgendaEntry](query)), filter.Range.Location), nil
}

func logUnresolved(ctx context.Context, resource, id string, err error) {
	observability.LoggerFromContext(ctx).Debug().
		Err(err).
		Str("resource", resource).
		Str("id", id).
		Msg("agenda name lookup failed")
}
