package model

import (
	"errors"
	"fmt"
	"time"
)

// BedType classifies the kind of bed a request asks for.
type BedType string

const (
	BedTypeICU     BedType = "ICU"
	BedTypeOT      BedType = "OT"
	BedTypeGeneral BedType = "General"
)

// Valid reports whether the bed type is one of the recognized values.
func (b BedType) Valid() bool {
	switch b {
	case BedTypeICU, BedTypeOT, BedTypeGeneral:
		return true
	}
	return false
}

// RequestStatus is the lifecycle state of a bed request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "Pending"
	StatusAssigned RequestStatus = "Assigned"
)

// Valid reports whether the status is one of the recognized values.
func (s RequestStatus) Valid() bool {
	return s == StatusPending || s == StatusAssigned
}

// BedRequest is a bed-request ticket. RequestID is minted by the allocator
// and never changes; Status is the only field mutated after creation.
type BedRequest struct {
	ID             int64         `gorm:"primaryKey" json:"-"`
	RequestID      string        `gorm:"uniqueIndex;size:32;not null" json:"requestId"`
	ConsultationID string        `gorm:"size:64;not null" json:"consultationId"`
	AdmissionIndex int           `gorm:"not null" json:"admissionIndex"`
	AppointmentID  string        `gorm:"size:64;not null" json:"appointmentId"`
	PatientID      string        `gorm:"size:64;not null;index" json:"patientId"`
	PatientName    string        `gorm:"size:256;not null" json:"patientName"`
	DoctorID       string        `gorm:"size:64;not null" json:"doctorId"`
	BedType        BedType       `gorm:"size:16;not null" json:"bedType"`
	Status         RequestStatus `gorm:"size:16;not null;default:'Pending'" json:"status"`
	CreatedAt      time.Time     `gorm:"not null;index" json:"createdAt"`
	UpdatedAt      time.Time     `gorm:"not null" json:"updatedAt"`
}

// Validate checks the required-field and enum invariants of a bed request.
// RequestID is deliberately not checked here: it is minted after validation.
func (r *BedRequest) Validate() error {
	required := []struct {
		field, value string
	}{
		{"consultationId", r.ConsultationID},
		{"appointmentId", r.AppointmentID},
		{"patientId", r.PatientID},
		{"patientName", r.PatientName},
		{"doctorId", r.DoctorID},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("%s is required", f.field)
		}
	}
	if r.AdmissionIndex < 0 {
		return errors.New("admissionIndex must not be negative")
	}
	if !r.BedType.Valid() {
		return fmt.Errorf("bedType %q is not one of ICU, OT, General", r.BedType)
	}
	if r.Status != "" && !r.Status.Valid() {
		return fmt.Errorf("status %q is not one of Pending, Assigned", r.Status)
	}
	return nil
}
