package services

import (
	"context"
	"fmt"

	"github.com/zatekoja/clinicdesk/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/internal/domain/providers"
	"github.com/zatekoja/clinicdesk/internal/domain/repositories"
	"github.com/zatekoja/clinicdesk/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/clinicdesk/pkg/errors"
)

// TaskBoardService drives the task panel with the same optimistic flow as
// the calendar: ticking a task off or re-prioritising it shows at once.
type TaskBoardService struct {
	repo repositories.TaskRepository
	list *OptimisticList[entities.Task]
}

// NewTaskBoardService creates a new task board service
func NewTaskBoardService(repo repositories.TaskRepository, notifier providers.Notifier, metrics *observability.Metrics) *TaskBoardService {
	return &TaskBoardService{
		repo: repo,
		list: NewOptimisticList[entities.Task](entities.ResourceTasks, repo.GetAll, notifier, metrics),
	}
}

func (s *TaskBoardService) Load(ctx context.Context) error {
	return s.list.Load(ctx)
}

func (s *TaskBoardService) State() ListState[entities.Task] {
	return s.list.State()
}

// SetCompleted marks a task done or reopens it
func (s *TaskBoardService) SetCompleted(ctx context.Context, id string, completed bool) error {
	return s.apply(ctx, id, entities.TaskPatch{Completed: &completed})
}

// SetPriority changes how urgent a task is
func (s *TaskBoardService) SetPriority(ctx context.Context, id string, priority entities.TaskPriority) error {
	if priority.Rank() == 0 {
		return apperrors.NewValidationError(fmt.Sprintf("invalid task priority %q", priority))
	}
	return s.apply(ctx, id, entities.TaskPatch{Priority: &priority})
}

// Assign hands a task to a user
func (s *TaskBoardService) Assign(ctx context.Context, id, userID string) error {
	if userID == "" {
		return apperrors.NewValidationError("assignee is required")
	}
	return s.apply(ctx, id, entities.TaskPatch{AssigneeID: &userID})
}

func (s *TaskBoardService) apply(ctx context.Context, id string, patch entities.TaskPatch) error {
	return s.list.Mutate(ctx, id, patch.ApplyTo, func(ctx context.Context) (*entities.Task, error) {
		return s.repo.Patch(ctx, id, patch)
	})
}
