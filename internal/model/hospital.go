package model

import (
	"github.com/google/uuid"
)

// Hospital is seeded at bootstrap and read-only afterwards.
type Hospital struct {
	ID      uuid.UUID `db:"id" json:"id"`
	Name    string    `db:"name" json:"name"`
	Address string    `db:"address" json:"address"`
}

type Doctor struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Specialty  string    `db:"specialty" json:"specialty"`
	Rating     float64   `db:"rating" json:"rating"`
	HospitalID uuid.UUID `db:"hospital_id" json:"hospital_id"`
}

// DoctorTimeSlot is one bookable time label for one doctor. The label is an
// opaque string ("09:00 AM"); appointments reference it by exact equality.
type DoctorTimeSlot struct {
	ID          uuid.UUID `db:"id" json:"id"`
	TimeSlot    string    `db:"time_slot" json:"time_slot"`
	IsAvailable bool      `db:"is_available" json:"is_available"`
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
}
