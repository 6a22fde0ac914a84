package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	AppointmentStatusPending   = "pending"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCancelled = "cancelled"
)

type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientName     string    `db:"patient_name" json:"patient_name"`
	PatientIDNumber string    `db:"patient_id_number" json:"patient_id_number"`
	PatientPhone    string    `db:"patient_phone" json:"patient_phone"`
	PatientEmail    *string   `db:"patient_email" json:"patient_email,omitempty"`
	AppointmentTime string    `db:"appointment_time" json:"appointment_time"`
	Status          string    `db:"status" json:"status"`
	UserID          uuid.UUID `db:"user_id" json:"user_id"`
	HospitalID      uuid.UUID `db:"hospital_id" json:"hospital_id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type CreateAppointmentRequest struct {
	HospitalID      uuid.UUID `json:"hospital_id" binding:"required"`
	DoctorID        uuid.UUID `json:"doctor_id" binding:"required"`
	AppointmentTime string    `json:"appointment_time" binding:"required,max=50"`
	PatientName     string    `json:"patient_name" binding:"required,max=255"`
	PatientIDNumber string    `json:"patient_id_number" binding:"required,max=100"`
	PatientPhone    string    `json:"patient_phone" binding:"required,max=50"`
	PatientEmail    *string   `json:"patient_email" binding:"omitempty,max=255"`
}

// ServiceCreateAppointmentRequest is the trusted service-to-service variant:
// the caller supplies user_id directly instead of an authenticated identity.
type ServiceCreateAppointmentRequest struct {
	CreateAppointmentRequest
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// UpdateAppointmentRequest applies only the fields present; absent fields are
// left untouched.
type UpdateAppointmentRequest struct {
	Status *string `json:"status" binding:"omitempty,appointment_status"`
}

// UserValidation is the pre-booking patient-details check payload.
type UserValidation struct {
	Name     string  `json:"name" binding:"required,max=255"`
	IDNumber string  `json:"idNumber" binding:"required,max=100"`
	Phone    string  `json:"phone" binding:"required,max=50"`
	Email    *string `json:"email" binding:"omitempty,max=255"`
}

// Requester is the caller context for booking operations: an authenticated
// user, or the trusted service-to-service caller which bypasses ownership
// checks entirely.
type Requester struct {
	UserID    uuid.UUID
	Superuser bool
	Trusted   bool
}

// ServiceRequester returns the trusted requester used by the standalone
// services, which have no identity concept.
func ServiceRequester() Requester {
	return Requester{Trusted: true}
}

// CanAccess reports whether the requester may read or mutate the appointment.
func (r Requester) CanAccess(a *Appointment) bool {
	return r.Trusted || r.Superuser || a.UserID == r.UserID
}
