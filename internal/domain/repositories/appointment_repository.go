package repositories

import (
	"context"

	"github.com/zatekoja/clinicdesk/internal/domain/entities"
)

// AppointmentRepository defines the appointment resource operations
type AppointmentRepository interface {
	Repository[entities.Appointment]

	// Patch sends only the changed fields of an appointment
	Patch(ctx context.Context, id string, patch entities.AppointmentPatch) (*entities.Appointment, error)
}

// TaskRepository defines the task resource operations
type TaskRepository interface {
	Repository[entities.Task]

	// Patch sends only the changed fields of a task
	Patch(ctx context.Context, id string, patch entities.TaskPatch) (*entities.Task, error)
}
