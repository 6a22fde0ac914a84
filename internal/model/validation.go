package model

import (
	"github.com/go-playground/validator/v10"
)

var appointmentStatuses = map[string]bool{
	AppointmentStatusPending:   true,
	AppointmentStatusConfirmed: true,
	AppointmentStatusCancelled: true,
}

// ValidAppointmentStatus backs the appointment_status binding tag.
func ValidAppointmentStatus(fl validator.FieldLevel) bool {
	return appointmentStatuses[fl.Field().String()]
}
