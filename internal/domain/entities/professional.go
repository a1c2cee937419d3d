package entities

// Professional represents a clinician who can be booked
type Professional struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Email              string  `json:"email,omitempty"`
	Phone              string  `json:"phone,omitempty"`
	RegistrationNumber string  `json:"registrationNumber,omitempty"`
	SpecialtyID        *string `json:"specialtyId,omitempty"`
	Active             bool    `json:"active"`
}

func (p Professional) GetID() string { return p.ID }

func (p Professional) SearchFields() []string {
	return []string{p.Name, p.Email, p.RegistrationNumber}
}

// Specialty represents a medical specialty offered by the clinic
type Specialty struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (s Specialty) GetID() string { return s.ID }

func (s Specialty) SearchFields() []string {
	return []string{s.Name, s.Description}
}
