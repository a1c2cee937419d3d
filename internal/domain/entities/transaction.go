package entities

// TransactionKind distinguishes money in from money out
type TransactionKind string

const (
	TransactionKindIncome  TransactionKind = "income"
	TransactionKindExpense TransactionKind = "expense"
)

// Transaction is one finance ledger line
type Transaction struct {
	ID            string          `json:"id"`
	Date          string          `json:"date"`
	Description   string          `json:"description"`
	Category      string          `json:"category,omitempty"`
	Kind          TransactionKind `json:"kind"`
	Amount        float64         `json:"amount"`
	PatientID     *string         `json:"patientId,omitempty"`
	AppointmentID *string         `json:"appointmentId,omitempty"`
}

func (t Transaction) GetID() string { return t.ID }

func (t Transaction) EventDate() string { return t.Date }

func (t Transaction) SearchFields() []string {
	return []string{t.Description, t.Category}
}
