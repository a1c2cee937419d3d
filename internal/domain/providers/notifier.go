package providers

import "context"

// NotificationLevel grades a user-facing notification
type NotificationLevel string

const (
	NotificationInfo    NotificationLevel = "info"
	NotificationWarning NotificationLevel = "warning"
	NotificationError   NotificationLevel = "error"
)

// Notification is a non-blocking message for whoever is looking at a view
type Notification struct {
	Level    NotificationLevel
	Resource string
	EntityID string
	Message  string
	Err      error
}

// Notifier surfaces failures to the user. Implementations must not block.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}
