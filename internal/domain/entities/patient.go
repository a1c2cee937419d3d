package entities

// Patient represents a clinic patient
type Patient struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Document    string  `json:"document,omitempty"`
	Email       string  `json:"email,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	BirthDate   string  `json:"birthDate,omitempty"`
	AgreementID *string `json:"agreementId,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

func (p Patient) GetID() string { return p.ID }

func (p Patient) SearchFields() []string {
	return []string{p.Name, p.Document, p.Email, p.Phone}
}

// PatientHistoryEntry is one record under /patients/:id/history
type PatientHistoryEntry struct {
	ID             string  `json:"id"`
	PatientID      string  `json:"patientId"`
	Date           string  `json:"date"`
	Description    string  `json:"description"`
	ProfessionalID *string `json:"professionalId,omitempty"`
	AppointmentID  *string `json:"appointmentId,omitempty"`
}

func (h PatientHistoryEntry) GetID() string { return h.ID }

func (h PatientHistoryEntry) EventDate() string { return h.Date }

func (h PatientHistoryEntry) SearchFields() []string {
	return []string{h.Description}
}

// Anamnesis is the single intake questionnaire under /patients/:id/anamnesis
type Anamnesis struct {
	PatientID     string `json:"patientId"`
	MainComplaint string `json:"mainComplaint,omitempty"`
	History       string `json:"history,omitempty"`
	Medications   string `json:"medications,omitempty"`
	Allergies     string `json:"allergies,omitempty"`
	FamilyHistory string `json:"familyHistory,omitempty"`
	Observations  string `json:"observations,omitempty"`
	UpdatedAt     string `json:"updatedAt,omitempty"`
}
