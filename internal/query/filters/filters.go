// Package filters derives filtered and sorted views from raw entity lists.
// Every function is pure: inputs are never modified and the same input
// always gives the same output.
package filters

import (
	"strings"
	"time"
)

// All is the sentinel filter value that disables a predicate
const All = "all"

// Dated is an entity with a date used for range filters and sorting
type Dated interface {
	EventDate() string
}

// Searchable is an entity with free-text searchable fields
type Searchable interface {
	SearchFields() []string
}

// Predicate reports whether an item stays in the view. A nil Predicate
// keeps everything.
type Predicate[T any] func(T) bool

// Apply keeps the items matching every predicate. The result is a new slice,
// never nil, in input order.
func Apply[T any](items []T, preds ...Predicate[T]) []T {
	active := make([]Predicate[T], 0, len(preds))
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}

	out := make([]T, 0, len(items))
next:
	for _, item := range items {
		for _, p := range active {
			if !p(item) {
				continue next
			}
		}
		out = append(out, item)
	}
	return out
}

// IsAll reports whether a filter value means "no filtering"
func IsAll(value string) bool {
	value = strings.TrimSpace(value)
	return value == "" || strings.EqualFold(value, All)
}

// DateRange is an inclusive range of calendar days. From and To are
// YYYY-MM-DD (timestamps are accepted and truncated to their day); either
// may be empty. Days are taken in Location, or time.Local when nil.
type DateRange struct {
	From     string
	To       string
	Location *time.Location
}

// IsZero reports a range with no bounds
func (r DateRange) IsZero() bool {
	return strings.TrimSpace(r.From) == "" && strings.TrimSpace(r.To) == ""
}

// Contains reports whether date falls on or between the bounds. A date that
// cannot be parsed is outside every bounded range. An unparseable bound is
// ignored.
func (r DateRange) Contains(date string) bool {
	if r.IsZero() {
		return true
	}
	day, ok := LocalDay(date, r.Location)
	if !ok {
		return false
	}
	if from, ok := LocalDay(r.From, r.Location); ok && day.Before(from) {
		return false
	}
	if to, ok := LocalDay(r.To, r.Location); ok && day.After(to) {
		return false
	}
	return true
}

// InDateRange filters dated entities by r
func InDateRange[T Dated](r DateRange) Predicate[T] {
	if r.IsZero() {
		return nil
	}
	return func(item T) bool {
		return r.Contains(item.EventDate())
	}
}

// TextSearch matches entities where any searchable field contains query,
// ignoring case
func TextSearch[T Searchable](query string) Predicate[T] {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}
	return func(item T) bool {
		for _, field := range item.SearchFields() {
			if strings.Contains(strings.ToLower(field), needle) {
				return true
			}
		}
		return false
	}
}

// FieldEquals matches entities whose field equals value exactly. value ""
// or All disables the predicate.
func FieldEquals[T any](value string, field func(T) string) Predicate[T] {
	if IsAll(value) {
		return nil
	}
	return func(item T) bool {
		return field(item) == value
	}
}

// Deref reads a nullable foreign key, treating nil as ""
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
