package entities

// Identifiable is implemented by every entity the client caches or lists
type Identifiable interface {
	GetID() string
}

// StrPtr returns a pointer to s, for nullable foreign keys and patches.
func StrPtr(s string) *string {
	return &s
}

// Backend resource names; each is also the REST base path segment.
const (
	ResourcePatients      = "patients"
	ResourceAppointments  = "appointments"
	ResourceProfessionals = "professionals"
	ResourceSpecialties   = "specialties"
	ResourceTasks         = "tasks"
	ResourceUsers         = "users"
	ResourceAgreements    = "agreements"
	ResourceTransactions  = "transactions"
)
