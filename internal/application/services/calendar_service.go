package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zatekoja/clinicdesk/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/internal/domain/providers"
	"github.com/zatekoja/clinicdesk/internal/domain/repositories"
	"github.com/zatekoja/clinicdesk/internal/infrastructure/observability"
	"github.com/zatekoja/clinicdesk/internal/query/filters"
	apperrors "github.com/zatekoja/clinicdesk/pkg/errors"
)

// CalendarService drives one calendar view: drag-rescheduling and status
// changes are shown immediately and reconciled with the backend afterwards.
type CalendarService struct {
	repo repositories.AppointmentRepository
	list *OptimisticList[entities.Appointment]
}

// NewCalendarService creates a new calendar service
func NewCalendarService(repo repositories.AppointmentRepository, notifier providers.Notifier, metrics *observability.Metrics) *CalendarService {
	return &CalendarService{
		repo: repo,
		list: NewOptimisticList[entities.Appointment](entities.ResourceAppointments, repo.GetAll, notifier, metrics),
	}
}

// Load fetches every appointment into the view
func (s *CalendarService) Load(ctx context.Context) error {
	return s.list.Load(ctx)
}

// State returns the view's appointments and load status
func (s *CalendarService) State() ListState[entities.Appointment] {
	return s.list.State()
}

// Reschedule moves an appointment to a new slot. When end is empty an
// appointment that has an end keeps its duration.
func (s *CalendarService) Reschedule(ctx context.Context, id, start, end string) error {
	startAt, err := parseTimestamp("start", start)
	if err != nil {
		return err
	}
	patch := entities.AppointmentPatch{Start: &start}
	if end == "" {
		if current, ok := s.list.Get(id); ok {
			if d, ok := duration(current); ok {
				shifted := endAfter(start, startAt, d)
				patch.End = &shifted
			}
		}
	} else {
		endAt, err := parseTimestamp("end", end)
		if err != nil {
			return err
		}
		if endAt.Before(startAt) {
			return apperrors.NewValidationError("end must not be before start")
		}
		patch.End = &end
	}
	return s.apply(ctx, id, patch)
}

// ChangeStatus sets an appointment's status
func (s *CalendarService) ChangeStatus(ctx context.Context, id string, status entities.AppointmentStatus) error {
	if !status.IsValid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid appointment status %q", status))
	}
	return s.apply(ctx, id, entities.AppointmentPatch{Status: &status})
}

func (s *CalendarService) apply(ctx context.Context, id string, patch entities.AppointmentPatch) error {
	return s.list.Mutate(ctx, id, patch.ApplyTo, func(ctx context.Context) (*entities.Appointment, error) {
		return s.repo.Patch(ctx, id, patch)
	})
}

// Create books a new appointment and reloads the view. A missing status
// defaults to pending.
func (s *CalendarService) Create(ctx context.Context, appointment *entities.Appointment) (*entities.Appointment, error) {
	if appointment == nil {
		return nil, apperrors.NewValidationError("appointment is required")
	}
	if _, err := parseTimestamp("start", appointment.Start); err != nil {
		return nil, err
	}
	if appointment.Status == "" {
		appointment.Status = entities.AppointmentStatusPending
	}
	if !appointment.Status.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid appointment status %q", appointment.Status))
	}

	var created *entities.Appointment
	err := s.list.Reconcile(ctx, "", "The appointment could not be created", func(ctx context.Context) error {
		var err error
		created, err = s.repo.Create(ctx, appointment)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Delete removes an appointment and reloads the view. It is rejected while
// another change to the appointment is being saved, and blocks new ones
// until the backend answers.
func (s *CalendarService) Delete(ctx context.Context, id string) error {
	return s.list.Reconcile(ctx, id, "The appointment could not be deleted", func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	})
}

func duration(a entities.Appointment) (time.Duration, bool) {
	if a.End == "" {
		return 0, false
	}
	from, okFrom := filters.ParseTimestamp(a.Start, time.Local)
	to, okTo := filters.ParseTimestamp(a.End, time.Local)
	if !okFrom || !okTo || to.Before(from) {
		return 0, false
	}
	return to.Sub(from), true
}

// endAfter formats start+d the way start was written: with its offset when
// it carried one, as local wall time otherwise.
func endAfter(start string, startAt time.Time, d time.Duration) string {
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(start)); err == nil {
		return t.Add(d).Format(time.RFC3339)
	}
	return startAt.Add(d).Format("2006-01-02T15:04:05")
}

func parseTimestamp(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, apperrors.NewValidationError(field + " is required")
	}
	t, ok := filters.ParseTimestamp(value, time.Local)
	if !ok {
		return time.Time{}, apperrors.NewValidationError(fmt.Sprintf("%s %q is not a valid timestamp", field, value))
	}
	return t, nil
}
