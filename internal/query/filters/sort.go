package filters

import (
	"sort"
	"time"

	"github.com/zatekoja/clinicdesk/internal/domain/entities"
)

// SortByDateDesc returns a copy of items, newest first. Dates without an
// offset are read in loc, or time.Local when nil, the same way DateRange
// reads them. Items with equal or unparseable dates keep their relative
// order; unparseable ones go last.
func SortByDateDesc[T Dated](items []T, loc *time.Location) []T {
	type keyed struct {
		item T
		at   time.Time
		ok   bool
	}
	rows := make([]keyed, len(items))
	for i, item := range items {
		at, ok := ParseTimestamp(item.EventDate(), loc)
		rows[i] = keyed{item: item, at: at, ok: ok}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ok != b.ok {
			return a.ok
		}
		return a.at.After(b.at)
	})

	out := make([]T, len(rows))
	for i, row := range rows {
		out[i] = row.item
	}
	return out
}

// SortTasks returns a copy of tasks with open tasks first, then by priority
// High > Medium > Low, then by due date (earliest first, undated last). Due
// dates without an offset are local.
func SortTasks(tasks []entities.Task) []entities.Task {
	out := append([]entities.Task(nil), tasks...)
	if out == nil {
		out = []entities.Task{}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return ra > rb
		}
		da, okA := ParseTimestamp(a.DueDate, time.Local)
		db, okB := ParseTimestamp(b.DueDate, time.Local)
		if okA != okB {
			return okA
		}
		return okA && da.Before(db)
	})
	return out
}
