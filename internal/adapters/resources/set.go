package resources

import (
	"github.com/zatekoja/clinicdesk/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/internal/domain/providers"
	"github.com/zatekoja/clinicdesk/internal/domain/repositories"
	"github.com/zatekoja/clinicdesk/internal/infrastructure/clients/clinicapi"
)

// Set groups one adapter per backend resource so calling code reaches every
// resource through the same shape.
type Set struct {
	Patients      repositories.PatientRepository
	Appointments  repositories.AppointmentRepository
	Professionals repositories.Repository[entities.Professional]
	Specialties   repositories.Repository[entities.Specialty]
	Tasks         repositories.TaskRepository
	Users         repositories.Repository[entities.User]
	Agreements    repositories.Repository[entities.Agreement]
	Transactions  repositories.Repository[entities.Transaction]
}

// NewSet binds every resource to the given client
func NewSet(client clinicapi.Client) *Set {
	return &Set{
		Patients:      NewPatientAdapter(client),
		Appointments:  NewAppointmentAdapter(client),
		Professionals: NewResource[entities.Professional](client, entities.ResourceProfessionals),
		Specialties:   NewResource[entities.Specialty](client, entities.ResourceSpecialties),
		Tasks:         NewTaskAdapter(client),
		Users:         NewResource[entities.User](client, entities.ResourceUsers),
		Agreements:    NewResource[entities.Agreement](client, entities.ResourceAgreements),
		Transactions:  NewResource[entities.Transaction](client, entities.ResourceTransactions),
	}
}

// NewCachedSet wraps every resource of s with the shared cache. Views built
// on the returned set see each other's writes on their next read.
func NewCachedSet(s *Set, cache providers.CacheProvider, opts ...CacheOption) *Set {
	return &Set{
		Patients:      NewCachedPatients(s.Patients, cache, opts...),
		Appointments:  NewCachedAppointments(s.Appointments, cache, opts...),
		Professionals: NewCachedResource[entities.Professional](s.Professionals, entities.ResourceProfessionals, cache, opts...),
		Specialties:   NewCachedResource[entities.Specialty](s.Specialties, entities.ResourceSpecialties, cache, opts...),
		Tasks:         NewCachedTasks(s.Tasks, cache, opts...),
		Users:         NewCachedResource[entities.User](s.Users, entities.ResourceUsers, cache, opts...),
		Agreements:    NewCachedResource[entities.Agreement](s.Agreements, entities.ResourceAgreements, cache, opts...),
		Transactions:  NewCachedResource[entities.Transaction](s.Transactions, entities.ResourceTransactions, cache, opts...),
	}
}
