package filters

import (
	"strings"

	"github.com/zatekoja/clinicdesk/internal/domain/entities"
)

// AppointmentFilter is the filter bar of the appointment list
type AppointmentFilter struct {
	Range          DateRange
	Status         string
	ProfessionalID string
	PatientID      string
	Query          string
}

// Predicates builds the active predicates; inactive fields contribute none
func (f AppointmentFilter) Predicates() []Predicate[entities.Appointment] {
	preds := []Predicate[entities.Appointment]{
		InDateRange[entities.Appointment](f.Range),
		TextSearch[entities.Appointment](f.Query),
		FieldEquals(strings.ToLower(strings.TrimSpace(f.Status)), func(a entities.Appointment) string { return string(a.Status) }),
		FieldEquals(f.ProfessionalID, func(a entities.Appointment) string { return Deref(a.ProfessionalID) }),
		FieldEquals(f.PatientID, func(a entities.Appointment) string { return Deref(a.PatientID) }),
	}
	return compact(preds)
}

// Apply filters appointments and orders them newest first
func (f AppointmentFilter) Apply(items []entities.Appointment) []entities.Appointment {
	return SortByDateDesc(Apply(items, f.Predicates()...), f.Range.Location)
}

// Task completion filter values
const (
	TaskStatusPending = "pending"
	TaskStatusDone    = "done"
)

// TaskFilter is the filter bar of the task board
type TaskFilter struct {
	// Status is "pending", "done" or All
	Status     string
	AssigneeID string
	Priority   string
	Query      string
}

func (f TaskFilter) Predicates() []Predicate[entities.Task] {
	preds := []Predicate[entities.Task]{
		TextSearch[entities.Task](f.Query),
		FieldEquals(f.AssigneeID, func(t entities.Task) string { return Deref(t.AssigneeID) }),
		FieldEquals(strings.ToLower(strings.TrimSpace(f.Priority)), func(t entities.Task) string { return strings.ToLower(string(t.Priority)) }),
		FieldEquals(strings.ToLower(strings.TrimSpace(f.Status)), func(t entities.Task) string {
			if t.Completed {
				return TaskStatusDone
			}
			return TaskStatusPending
		}),
	}
	return compact(preds)
}

// Apply filters tasks and orders them open first, then by priority
func (f TaskFilter) Apply(items []entities.Task) []entities.Task {
	return SortTasks(Apply(items, f.Predicates()...))
}

// PatientFilter is the search box of the patient list
type PatientFilter struct {
	Query       string
	AgreementID string
}

func (f PatientFilter) Predicates() []Predicate[entities.Patient] {
	return compact([]Predicate[entities.Patient]{
		TextSearch[entities.Patient](f.Query),
		FieldEquals(f.AgreementID, func(p entities.Patient) string { return Deref(p.AgreementID) }),
	})
}

// Apply filters patients keeping backend order
func (f PatientFilter) Apply(items []entities.Patient) []entities.Patient {
	return Apply(items, f.Predicates()...)
}

// TransactionFilter is the filter bar of the finance ledger
type TransactionFilter struct {
	Range    DateRange
	Kind     string
	Category string
	Query    string
}

func (f TransactionFilter) Predicates() []Predicate[entities.Transaction] {
	return compact([]Predicate[entities.Transaction]{
		InDateRange[entities.Transaction](f.Range),
		TextSearch[entities.Transaction](f.Query),
		FieldEquals(strings.ToLower(strings.TrimSpace(f.Kind)), func(t entities.Transaction) string { return string(t.Kind) }),
		FieldEquals(f.Category, func(t entities.Transaction) string { return t.Category }),
	})
}

// Apply filters ledger lines and orders them newest first
func (f TransactionFilter) Apply(items []entities.Transaction) []entities.Transaction {
	return SortByDateDesc(Apply(items, f.Predicates()...), f.Range.Location)
}

// Totals summarises a ledger
type Totals struct {
	Income  float64
	Expense float64
	Balance float64
}

// SumTransactions adds up income and expense. Amounts are taken as absolute
// values; the kind decides the sign.
func SumTransactions(items []entities.Transaction) Totals {
	var t Totals
	for _, tx := range items {
		amount := tx.Amount
		if amount < 0 {
			amount = -amount
		}
		switch tx.Kind {
		case entities.TransactionKindIncome:
			t.Income += amount
		case entities.TransactionKindExpense:
			t.Expense += amount
		}
	}
	t.Balance = t.Income - t.Expense
	return t
}

func compact[T any](preds []Predicate[T]) []Predicate[T] {
	out := preds[:0]
	for _, p := range preds {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}
