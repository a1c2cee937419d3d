package resources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/zatekoja/clinicdesk/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/internal/infrastructure/clients/clinicapi"
	apperrors "github.com/zatekoja/clinicdesk/pkg/errors"
)

// Resource binds the CRUD verbs to one backend base path. It performs no
// caching, validation of entity fields, or retries; errors from the client
// are returned unchanged.
type Resource[T entities.Identifiable] struct {
	client   clinicapi.Client
	name     string
	basePath string
}

// NewResource creates a resource adapter for /<name>
func NewResource[T entities.Identifiable](client clinicapi.Client, name string) *Resource[T] {
	return &Resource[T]{
		client:   client,
		name:     name,
		basePath: "/" + strings.Trim(name, "/"),
	}
}

// Name returns the resource name, e.g. "appointments"
func (r *Resource[T]) Name() string {
	return r.name
}

// GetAll handles GET /<resource>
func (r *Resource[T]) GetAll(ctx context.Context) ([]T, error) {
	result, err := r.client.Get(ctx, r.basePath)
	if err != nil {
		return nil, err
	}
	return decodeList[T](result)
}

// GetByID handles GET /<resource>/:id
func (r *Resource[T]) GetByID(ctx context.Context, id string) (*T, error) {
	path, err := r.itemPath(id)
	if err != nil {
		return nil, err
	}
	result, err := r.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	out, err := decodeOne[T](result, nil)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("%s %s returned no body", r.name, id))
	}
	return out, nil
}

// Create handles POST /<resource>
func (r *Resource[T]) Create(ctx context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, apperrors.NewValidationError(r.name + ": entity is required")
	}
	result, err := r.client.Post(ctx, r.basePath, entity)
	if err != nil {
		return nil, err
	}
	return decodeOne(result, entity)
}

// Update handles PUT /<resource>/:id with the full entity
func (r *Resource[T]) Update(ctx context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, apperrors.NewValidationError(r.name + ": entity is required")
	}
	path, err := r.itemPath((*entity).GetID())
	if err != nil {
		return nil, err
	}
	result, err := r.client.Put(ctx, path, entity)
	if err != nil {
		return nil, err
	}
	return decodeOne(result, entity)
}

// Delete handles DELETE /<resource>/:id
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	path, err := r.itemPath(id)
	if err != nil {
		return err
	}
	_, err = r.client.Delete(ctx, path)
	return err
}

// patch handles PATCH /<resource>/:id with a partial body
func (r *Resource[T]) patch(ctx context.Context, id string, body interface{}) (*T, error) {
	path, err := r.itemPath(id)
	if err != nil {
		return nil, err
	}
	result, err := r.client.Patch(ctx, path, body)
	if err != nil {
		return nil, err
	}
	return decodeOne[T](result, nil)
}

func (r *Resource[T]) itemPath(id string, sub ...string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", apperrors.NewValidationError(r.name + ": id is required")
	}
	path := r.basePath + "/" + url.PathEscape(id)
	for _, s := range sub {
		path += "/" + s
	}
	return path, nil
}

// decodeList accepts a bare JSON array or a {"data": [...]} envelope.
func decodeList[T any](result *clinicapi.Result) ([]T, error) {
	items := []T{}
	if result.IsEmpty() {
		return items, nil
	}
	body := bytes.TrimSpace(result.Body)
	if len(body) > 0 && body[0] == '{' {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := result.Decode(&envelope); err != nil {
			return nil, err
		}
		if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
			return items, nil
		}
		if err := json.Unmarshal(envelope.Data, &items); err != nil {
			return nil, apperrors.NewParseError("decode list envelope", err)
		}
		return items, nil
	}
	if err := result.Decode(&items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// decodeOne decodes a single entity, unwrapping {"data": {...}} when the
// object has no id of its own. Responses without a JSON body yield fallback.
func decodeOne[T any](result *clinicapi.Result, fallback *T) (*T, error) {
	if result.IsEmpty() || !result.IsJSON() {
		return fallback, nil
	}
	body := result.Body
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err == nil {
		if data, ok := envelope["data"]; ok {
			if _, hasID := envelope["id"]; !hasID {
				body = data
			}
		}
	}
	out := new(T)
	if err := json.Unmarshal(body, out); err != nil {
		return nil, apperrors.NewParseError("decode entity", err)
	}
	return out, nil
}
