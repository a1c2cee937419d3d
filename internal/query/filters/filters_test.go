package filters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinicdesk/internal/domain/entities"
)

func ids[T entities.Identifiable](items []T) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.GetID()
	}
	return out
}

func TestDateRange_SingleDay(t *testing.T) {
	appointments := []entities.Appointment{
		{ID: "1", Start: "2025-10-01T09:00"},
		{ID: "2", Start: "2025-10-05T09:00"},
	}
	r := DateRange{From: "2025-10-01", To: "2025-10-01", Location: time.UTC}

	got := Apply(appointments, InDateRange[entities.Appointment](r))
	assert.Equal(t, []string{"1"}, ids(got))
}

func TestDateRange_Boundaries(t *testing.T) {
	r := DateRange{From: "2025-10-10", To: "2025-10-20", Location: time.UTC}

	tests := []struct {
		date string
		want bool
	}{
		{"2025-10-09T23:59:59Z", false},
		{"2025-10-10T00:00:00Z", true},
		{"2025-10-10", true},
		{"2025-10-15T12:00", true},
		{"2025-10-20T23:59:59Z", true},
		{"2025-10-21T00:00:00Z", false},
		{"not a date", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Contains(tt.date))
		})
	}
}

func TestDateRange_OpenEnded(t *testing.T) {
	from := DateRange{From: "2025-10-10", Location: time.UTC}
	assert.True(t, from.Contains("2030-01-01"))
	assert.False(t, from.Contains("2025-10-09"))

	to := DateRange{To: "2025-10-10", Location: time.UTC}
	assert.True(t, to.Contains("2000-01-01"))
	assert.False(t, to.Contains("2025-10-11"))

	assert.True(t, DateRange{}.Contains("garbage"))
}

func TestDateRange_ComparesLocalDays(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	r := DateRange{From: "2025-10-01", To: "2025-10-01", Location: saoPaulo}

	// 23:30 local on Oct 1 is already Oct 2 in UTC
	assert.True(t, r.Contains("2025-10-02T02:30:00Z"))
	assert.True(t, r.Contains("2025-10-01T23:30:00-03:00"))
	assert.False(t, r.Contains("2025-10-02T03:30:00Z"))
}

func TestTextSearch_CaseInsensitive(t *testing.T) {
	patients := []entities.Patient{
		{ID: "1", Name: "Ana Souza", Email: "ana@example.com"},
		{ID: "2", Name: "Bruno Lima", Document: "123.456.789-00"},
		{ID: "3", Name: "Carla ANAYA"},
	}

	assert.Equal(t, []string{"1", "3"}, ids(Apply(patients, TextSearch[entities.Patient]("ana"))))
	assert.Equal(t, []string{"2"}, ids(Apply(patients, TextSearch[entities.Patient]("456"))))
	assert.Len(t, Apply(patients, TextSearch[entities.Patient]("   ")), 3)
	assert.Empty(t, Apply(patients, TextSearch[entities.Patient]("zzz")))
}

func TestFieldEquals_AllSentinel(t *testing.T) {
	tasks := []entities.Task{
		{ID: "1", AssigneeID: entities.StrPtr("u1")},
		{ID: "2", AssigneeID: entities.StrPtr("u2")},
		{ID: "3"},
	}
	assignee := func(t entities.Task) string { return Deref(t.AssigneeID) }

	assert.Equal(t, []string{"2"}, ids(Apply(tasks, FieldEquals("u2", assignee))))
	assert.Len(t, Apply(tasks, FieldEquals(All, assignee)), 3)
	assert.Len(t, Apply(tasks, FieldEquals("ALL", assignee)), 3)
	assert.Len(t, Apply(tasks, FieldEquals("", assignee)), 3)
	assert.Empty(t, Apply(tasks, FieldEquals("U2", assignee)), "exact match is case-sensitive")
}

func TestApply_CombinationLaw(t *testing.T) {
	appointments := []entities.Appointment{
		{ID: "1", Start: "2025-10-01T09:00:00Z", Status: entities.AppointmentStatusPending, ProfessionalID: entities.StrPtr("pr1")},
		{ID: "2", Start: "2025-10-01T10:00:00Z", Status: entities.AppointmentStatusConfirmed, ProfessionalID: entities.StrPtr("pr1")},
		{ID: "3", Start: "2025-10-03T09:00:00Z", Status: entities.AppointmentStatusPending, ProfessionalID: entities.StrPtr("pr2")},
		{ID: "4", Start: "2025-10-04T09:00:00Z", Status: entities.AppointmentStatusPending, ProfessionalID: entities.StrPtr("pr1")},
	}
	f1 := InDateRange[entities.Appointment](DateRange{From: "2025-10-01", To: "2025-10-03", Location: time.UTC})
	f2 := FieldEquals("pending", func(a entities.Appointment) string { return string(a.Status) })
	f3 := FieldEquals("pr1", func(a entities.Appointment) string { return Deref(a.ProfessionalID) })

	together := Apply(appointments, f1, f2, f3)
	assert.Equal(t, []string{"1"}, ids(together))
	assert.Equal(t, together, Apply(Apply(Apply(appointments, f1), f2), f3))
	assert.Equal(t, together, Apply(Apply(appointments, f3, f2), f1))
	assert.Equal(t, Apply(appointments, f1, f2), Apply(appointments, f2, f1))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := []entities.Task{
		{ID: "a", Priority: entities.TaskPriorityLow},
		{ID: "b", Priority: entities.TaskPriorityHigh},
	}
	snapshot := append([]entities.Task(nil), in...)

	_ = TaskFilter{Priority: "high"}.Apply(in)
	_ = SortTasks(in)

	assert.Equal(t, snapshot, in)
	assert.NotNil(t, Apply[entities.Task](nil))
}

func TestSortTasks(t *testing.T) {
	tasks := []entities.Task{
		{ID: "low-done", Priority: entities.TaskPriorityLow, Completed: true},
		{ID: "high", Priority: entities.TaskPriorityHigh},
		{ID: "medium", Priority: entities.TaskPriorityMedium},
	}
	assert.Equal(t, []string{"high", "medium", "low-done"}, ids(SortTasks(tasks)))
}

func TestSortTasks_TieBreaks(t *testing.T) {
	tasks := []entities.Task{
		{ID: "done-high", Priority: entities.TaskPriorityHigh, Completed: true},
		{ID: "open-low", Priority: entities.TaskPriorityLow},
		{ID: "open-high-undated", Priority: "HIGH"},
		{ID: "open-high-late", Priority: entities.TaskPriorityHigh, DueDate: "2025-12-01"},
		{ID: "open-high-soon", Priority: entities.TaskPriorityHigh, DueDate: "2025-10-01"},
		{ID: "open-unknown", Priority: "someday"},
	}
	assert.Equal(t,
		[]string{"open-high-soon", "open-high-late", "open-high-undated", "open-low", "open-unknown", "done-high"},
		ids(SortTasks(tasks)))
}

func TestSortByDateDesc(t *testing.T) {
	txs := []entities.Transaction{
		{ID: "old", Date: "2025-01-05"},
		{ID: "broken", Date: "n/a"},
		{ID: "new", Date: "2025-10-01T08:00:00Z"},
		{ID: "mid-a", Date: "2025-05-01"},
		{ID: "mid-b", Date: "2025-05-01"},
	}
	assert.Equal(t, []string{"new", "mid-a", "mid-b", "old", "broken"}, ids(SortByDateDesc(txs, time.UTC)))
}

func TestSortByDateDesc_NaiveDatesUseFilterLocation(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)

	// 22:00 BRT is 01:00Z the next day
	txs := []entities.Transaction{
		{ID: "zoned", Date: "2025-10-02T00:30:00Z"},
		{ID: "naive", Date: "2025-10-01T22:00:00"},
	}
	assert.Equal(t, []string{"naive", "zoned"}, ids(SortByDateDesc(txs, saoPaulo)))
	assert.Equal(t, []string{"zoned", "naive"}, ids(SortByDateDesc(txs, time.UTC)))

	f := TransactionFilter{Range: DateRange{From: "2025-10-01", To: "2025-10-01", Location: saoPaulo}}
	assert.Equal(t, []string{"naive", "zoned"}, ids(f.Apply(txs)))
}

func TestAppointmentFilter(t *testing.T) {
	appointments := []entities.Appointment{
		{ID: "1", Start: "2025-10-01T09:00:00Z", Status: entities.AppointmentStatusPending, PatientID: entities.StrPtr("p1"), Title: "Checkup"},
		{ID: "2", Start: "2025-10-02T09:00:00Z", Status: entities.AppointmentStatusPending, PatientID: entities.StrPtr("p1"), Title: "Return visit"},
		{ID: "3", Start: "2025-10-03T09:00:00Z", Status: entities.AppointmentStatusCancelled, PatientID: entities.StrPtr("p2")},
	}

	got := AppointmentFilter{Status: "Pending", PatientID: "p1"}.Apply(appointments)
	assert.Equal(t, []string{"2", "1"}, ids(got))

	got = AppointmentFilter{Status: All, Query: "checkup"}.Apply(appointments)
	assert.Equal(t, []string{"1"}, ids(got))

	assert.Empty(t, AppointmentFilter{}.Predicates())
}

func TestTaskFilter(t *testing.T) {
	tasks := []entities.Task{
		{ID: "1", Title: "Call lab", Priority: entities.TaskPriorityHigh},
		{ID: "2", Title: "Order gloves", Priority: entities.TaskPriorityLow, Completed: true},
		{ID: "3", Title: "Call insurer", Priority: entities.TaskPriorityMedium, AssigneeID: entities.StrPtr("u1")},
	}

	assert.Equal(t, []string{"1", "3"}, ids(TaskFilter{Status: TaskStatusPending}.Apply(tasks)))
	assert.Equal(t, []string{"2"}, ids(TaskFilter{Status: TaskStatusDone}.Apply(tasks)))
	assert.Equal(t, []string{"3"}, ids(TaskFilter{Query: "call", AssigneeID: "u1"}.Apply(tasks)))
	assert.Equal(t, []string{"1", "3", "2"}, ids(TaskFilter{Status: All}.Apply(tasks)))
}

func TestTransactionFilterAndTotals(t *testing.T) {
	txs := []entities.Transaction{
		{ID: "1", Date: "2025-10-01", Kind: entities.TransactionKindIncome, Amount: 200, Category: "consult"},
		{ID: "2", Date: "2025-10-02", Kind: entities.TransactionKindExpense, Amount: 50, Category: "supplies"},
		{ID: "3", Date: "2025-10-03", Kind: entities.TransactionKindExpense, Amount: -30, Category: "supplies"},
		{ID: "4", Date: "2025-11-01", Kind: entities.TransactionKindIncome, Amount: 999},
	}

	october := TransactionFilter{Range: DateRange{From: "2025-10-01", To: "2025-10-31", Location: time.UTC}}.Apply(txs)
	require.Equal(t, []string{"3", "2", "1"}, ids(october))

	totals := SumTransactions(october)
	assert.Equal(t, Totals{Income: 200, Expense: 80, Balance: 120}, totals)

	supplies := TransactionFilter{Kind: "expense", Category: "supplies"}.Apply(txs)
	assert.Equal(t, []string{"3", "2"}, ids(supplies))
}

func TestPatientFilter(t *testing.T) {
	patients := []entities.Patient{
		{ID: "1", Name: "Ana", AgreementID: entities.StrPtr("unimed")},
		{ID: "2", Name: "Anabela"},
	}
	assert.Equal(t, []string{"1"}, ids(PatientFilter{Query: "ana", AgreementID: "unimed"}.Apply(patients)))
	assert.Equal(t, []string{"1", "2"}, ids(PatientFilter{Query: "ANA", AgreementID: All}.Apply(patients)))
}
