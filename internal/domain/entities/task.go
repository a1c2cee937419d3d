package entities

import (
	"fmt"
	"strings"
)

// TaskPriority represents how urgent a task is
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Rank orders priorities High > Medium > Low; unknown values sort last.
func (p TaskPriority) Rank() int {
	switch TaskPriority(strings.ToLower(string(p))) {
	case TaskPriorityHigh:
		return 3
	case TaskPriorityMedium:
		return 2
	case TaskPriorityLow:
		return 1
	}
	return 0
}

// ParseTaskPriority accepts a priority in any letter case
func ParseTaskPriority(s string) (TaskPriority, error) {
	p := TaskPriority(strings.ToLower(strings.TrimSpace(s)))
	if p.Rank() == 0 {
		return "", fmt.Errorf("invalid task priority %q", s)
	}
	return p, nil
}

// Task represents an internal to-do item assigned to staff
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Priority    TaskPriority `json:"priority"`
	Completed   bool         `json:"completed"`
	AssigneeID  *string      `json:"assigneeId,omitempty"`
	DueDate     string       `json:"dueDate,omitempty"`
}

func (t Task) GetID() string { return t.ID }

func (t Task) EventDate() string { return t.DueDate }

func (t Task) SearchFields() []string {
	return []string{t.Title, t.Description}
}

// TaskPatch is a partial task update
type TaskPatch struct {
	Completed  *bool         `json:"completed,omitempty"`
	Priority   *TaskPriority `json:"priority,omitempty"`
	AssigneeID *string       `json:"assigneeId,omitempty"`
}

// ApplyTo overwrites the patched fields
func (p TaskPatch) ApplyTo(t *Task) {
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssigneeID != nil {
		t.AssigneeID = p.AssigneeID
	}
}
