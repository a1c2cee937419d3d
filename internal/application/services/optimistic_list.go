package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zatekoja/clinicdesk/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/internal/domain/providers"
	"github.com/zatekoja/clinicdesk/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/clinicdesk/pkg/errors"
)

// ErrMutationInFlight rejects a second change to an entity whose previous
// change has not been answered yet.
var ErrMutationInFlight = apperrors.NewConflictError("a previous change to this item is still being saved")

// ListStatus tells "no data" apart from "load failed"
type ListStatus string

const (
	ListIdle    ListStatus = "idle"
	ListLoading ListStatus = "loading"
	ListLoaded  ListStatus = "loaded"
	ListEmpty   ListStatus = "empty"
	ListFailed  ListStatus = "failed"
)

// ListState is a snapshot of one view's list. On ListFailed, Items still
// holds the last successfully loaded (stale) entries.
type ListState[T any] struct {
	Status   ListStatus
	Items    []T
	Err      error
	LoadedAt time.Time
}

// LoadFunc fetches the full list from the backend
type LoadFunc[T any] func(ctx context.Context) ([]T, error)

// OptimisticList holds one view's copy of a resource list and applies
// changes to it before the backend confirms them. A failed change is rolled
// back and the list is reloaded from the backend.
//
// Every call takes the view's context. When that context is cancelled by the
// time a response arrives, the response is dropped and the list is left as is.
type OptimisticList[T entities.Identifiable] struct {
	resource string
	load     LoadFunc[T]
	notifier providers.Notifier
	metrics  *observability.Metrics

	mu         sync.Mutex
	state      ListState[T]
	inFlight   map[string]struct{}
	loadSeq    uint64
	appliedSeq uint64
}

// NewOptimisticList creates an idle list for resource
func NewOptimisticList[T entities.Identifiable](resource string, load LoadFunc[T], notifier providers.Notifier, metrics *observability.Metrics) *OptimisticList[T] {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	return &OptimisticList[T]{
		resource: resource,
		load:     load,
		notifier: notifier,
		metrics:  metrics,
		state:    ListState[T]{Status: ListIdle, Items: []T{}},
		inFlight: make(map[string]struct{}),
	}
}

// State returns a copy of the current list state
func (l *OptimisticList[T]) State() ListState[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.state
	out.Items = append([]T(nil), l.state.Items...)
	if out.Items == nil {
		out.Items = []T{}
	}
	return out
}

// Get returns the local copy of one entity
func (l *OptimisticList[T]) Get(id string) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexOf(id); i >= 0 {
		return l.state.Items[i], true
	}
	var zero T
	return zero, false
}

// Load replaces the list with the backend's. A failure keeps the previous
// items, marks the state failed and notifies the user. When several loads
// overlap, an older response never overwrites a newer one.
func (l *OptimisticList[T]) Load(ctx context.Context) error {
	l.mu.Lock()
	l.loadSeq++
	seq := l.loadSeq
	previous := l.state.Status
	l.state.Status = ListLoading
	l.mu.Unlock()

	items, err := l.load(ctx)

	l.mu.Lock()
	if ctx.Err() != nil {
		if l.state.Status == ListLoading && seq == l.loadSeq {
			l.state.Status = previous
		}
		l.mu.Unlock()
		return ctx.Err()
	}
	if seq < l.appliedSeq {
		l.mu.Unlock()
		return err
	}
	l.appliedSeq = seq

	if err != nil {
		l.state.Status = ListFailed
		l.state.Err = err
		l.mu.Unlock()
		l.notify(ctx, providers.NotificationError, "", fmt.Sprintf("Could not load %s", l.resource), err)
		return err
	}

	l.state.Items = append([]T{}, items...)
	l.state.Err = nil
	l.state.LoadedAt = time.Now()
	if len(items) == 0 {
		l.state.Status = ListEmpty
	} else {
		l.state.Status = ListLoaded
	}
	l.mu.Unlock()
	return nil
}

// Mutate applies change to the local copy of id at once and then calls send.
// On success the server echo, when there is one, replaces the local copy. On
// failure the entity is put back as it was, the user is notified and the
// whole list is reloaded; the send error is returned.
func (l *OptimisticList[T]) Mutate(ctx context.Context, id string, change func(*T), send func(ctx context.Context) (*T, error)) error {
	l.mu.Lock()
	if _, busy := l.inFlight[id]; busy {
		l.mu.Unlock()
		return ErrMutationInFlight
	}
	i := l.indexOf(id)
	if i < 0 {
		l.mu.Unlock()
		return apperrors.NewNotFoundError(fmt.Sprintf("%s %s is not in the list", l.resource, id))
	}
	before := l.state.Items[i]
	updated := before
	change(&updated)
	l.replaceAt(i, updated)
	l.inFlight[id] = struct{}{}
	l.mu.Unlock()

	echo, err := send(ctx)

	l.mu.Lock()
	delete(l.inFlight, id)
	if ctx.Err() != nil {
		l.mu.Unlock()
		return ctx.Err()
	}
	if err != nil {
		if j := l.indexOf(id); j >= 0 {
			l.replaceAt(j, before)
		}
		l.mu.Unlock()

		observability.RecordRollback(ctx, l.metrics, l.resource)
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("resource", l.resource).
			Str("id", id).
			Msg("optimistic change rejected, reloading")
		l.notify(ctx, providers.NotificationError, id, "Your change could not be saved and was undone", err)
		_ = l.Load(ctx)
		return err
	}
	if echo != nil {
		if j := l.indexOf(id); j >= 0 {
			l.replaceAt(j, *echo)
		}
	}
	l.mu.Unlock()
	return nil
}

// ApplyEcho overwrites the local copy of an entity with the server's.
// Applying the same echo twice is the same as applying it once.
func (l *OptimisticList[T]) ApplyEcho(echo T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexOf(echo.GetID())
	if i < 0 {
		return false
	}
	l.replaceAt(i, echo)
	return true
}

// Reconcile runs a non-optimistic write, used for creates and deletes, which
// reorder or resize the list. When entityID is set the entity is marked in
// flight for the duration of the write, so a concurrent Mutate of it is
// rejected and vice versa. A failed write notifies the user and leaves the
// list alone; a successful one reloads it. Only the write's error is
// returned; a failed reload shows up in State.
func (l *OptimisticList[T]) Reconcile(ctx context.Context, entityID, failure string, write func(ctx context.Context) error) error {
	if entityID != "" {
		if err := l.claim(entityID); err != nil {
			return err
		}
	}
	err := write(ctx)
	if entityID != "" {
		l.release(entityID)
	}
	if err != nil {
		if ctx.Err() == nil {
			l.notify(ctx, providers.NotificationError, entityID, failure, err)
		}
		return err
	}
	_ = l.Load(ctx)
	return nil
}

func (l *OptimisticList[T]) claim(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.inFlight[id]; busy {
		return ErrMutationInFlight
	}
	l.inFlight[id] = struct{}{}
	return nil
}

func (l *OptimisticList[T]) release(id string) {
	l.mu.Lock()
	delete(l.inFlight, id)
	l.mu.Unlock()
}

func (l *OptimisticList[T]) notify(ctx context.Context, level providers.NotificationLevel, id, message string, err error) {
	l.notifier.Notify(ctx, providers.Notification{
		Level:    level,
		Resource: l.resource,
		EntityID: id,
		Message:  message,
		Err:      err,
	})
}

func (l *OptimisticList[T]) replaceAt(i int, item T) {
	l.state.Items[i] = item
}

func (l *OptimisticList[T]) indexOf(id string) int {
	for i, item := range l.state.Items {
		if item.GetID() == id {
			return i
		}
	}
	return -1
}

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, providers.Notification) {}
