package entities

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// AppointmentStatuses lists every valid status in display order
var AppointmentStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
	AppointmentStatusCompleted,
	AppointmentStatusCancelled,
}

// ParseAppointmentStatus accepts a status in any letter case.
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	candidate := AppointmentStatus(strings.ToLower(strings.TrimSpace(s)))
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid appointment status %q", s)
	}
	return candidate, nil
}

// IsValid reports whether the status is one of the four known values
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

// UnmarshalJSON rejects unknown statuses so a decoded appointment is always valid.
func (s *AppointmentStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseAppointmentStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Appointment represents a scheduled appointment as held by the client.
// Start and End keep the backend's ISO timestamp text unchanged.
type Appointment struct {
	ID               string            `json:"id"`
	Start            string            `json:"start"`
	End              string            `json:"end,omitempty"`
	Status           AppointmentStatus `json:"status"`
	PatientID        *string           `json:"patientId"`
	ProfessionalID   *string           `json:"professionalId"`
	SpecialtyID      *string           `json:"specialtyId,omitempty"`
	AgreementID      *string           `json:"agreementId,omitempty"`
	InsurancePending bool              `json:"insurancePending"`
	Title            string            `json:"title,omitempty"`
	Notes            string            `json:"notes,omitempty"`
}

func (a Appointment) GetID() string { return a.ID }

// EventDate is the timestamp used for date filtering and sorting
func (a Appointment) EventDate() string { return a.Start }

func (a Appointment) SearchFields() []string {
	return []string{a.ID, a.Title, a.Notes}
}

// AppointmentPatch carries only the fields a reschedule or status change touches.
type AppointmentPatch struct {
	Start  *string            `json:"start,omitempty"`
	End    *string            `json:"end,omitempty"`
	Status *AppointmentStatus `json:"status,omitempty"`
}

// ApplyTo overwrites the patched fields. Applying the same patch twice
// leaves the appointment unchanged after the first application.
func (p AppointmentPatch) ApplyTo(a *Appointment) {
	if p.Start != nil {
		a.Start = *p.Start
	}
	if p.End != nil {
		a.End = *p.End
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
}
