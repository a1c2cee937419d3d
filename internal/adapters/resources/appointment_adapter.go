package resources

import (
	"context"

	"github.com/zatekoja/clinicdesk/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/internal/domain/repositories"
	"github.com/zatekoja/clinicdesk/internal/infrastructure/clients/clinicapi"
)

// AppointmentAdapter implements AppointmentRepository over /appointments
type AppointmentAdapter struct {
	*Resource[entities.Appointment]
}

// NewAppointmentAdapter creates a new appointment adapter
func NewAppointmentAdapter(client clinicapi.Client) repositories.AppointmentRepository {
	return &AppointmentAdapter{Resource: NewResource[entities.Appointment](client, entities.ResourceAppointments)}
}

// Patch handles PATCH /appointments/:id. The patch is sent as given; the
// backend decides what it accepts. It may answer without a body, in which
// case the returned appointment is nil.
func (a *AppointmentAdapter) Patch(ctx context.Context, id string, patch entities.AppointmentPatch) (*entities.Appointment, error) {
	return a.patch(ctx, id, patch)
}

// TaskAdapter implements TaskRepository over /tasks
type TaskAdapter struct {
	*Resource[entities.Task]
}

// NewTaskAdapter creates a new task adapter
func NewTaskAdapter(client clinicapi.Client) repositories.TaskRepository {
	return &TaskAdapter{Resource: NewResource[entities.Task](client, entities.ResourceTasks)}
}

// Patch handles PATCH /tasks/:id
func (a *TaskAdapter) Patch(ctx context.Context, id string, patch entities.TaskPatch) (*entities.Task, error) {
	return a.patch(ctx, id, patch)
}
