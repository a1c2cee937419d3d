package entities

import (
	"time"

	"github.com/google/uuid"
)

// ResourceEventType represents the kind of write that produced an event
type ResourceEventType string

const (
	ResourceEventCreated ResourceEventType = "created"
	ResourceEventUpdated ResourceEventType = "updated"
	ResourceEventPatched ResourceEventType = "patched"
	ResourceEventDeleted ResourceEventType = "deleted"
)

// ResourceEvent announces that an entity changed on the backend so every
// view sharing the cache can drop its stale copy.
type ResourceEvent struct {
	ID        string            `json:"id"`
	Resource  string            `json:"resource"`
	EntityID  string            `json:"entity_id,omitempty"`
	EventType ResourceEventType `json:"event_type"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewResourceEvent creates a new resource event
func NewResourceEvent(resource, entityID string, eventType ResourceEventType) *ResourceEvent {
	return &ResourceEvent{
		ID:        uuid.NewString(),
		Resource:  resource,
		EntityID:  entityID,
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
