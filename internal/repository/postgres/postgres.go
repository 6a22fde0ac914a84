package postgres

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/medibook/booking-api/internal/repository"
	"github.com/medibook/booking-api/pkg/metrics"
)

type hospitalRepository struct {
	db *sqlx.DB
}

type doctorRepository struct {
	db *sqlx.DB
}

type timeSlotRepository struct {
	db *sqlx.DB
}

type appointmentRepository struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
}

// observe records one database operation. Pass the error address so deferred
// calls see the final value.
func (r *appointmentRepository) observe(op string, start time.Time, errp *error) {
	if r.metrics == nil {
		return
	}
	status := "ok"
	if *errp != nil {
		status = "error"
	}
	r.metrics.DatabaseOperations.WithLabelValues(op, status).Inc()
	r.metrics.DatabaseLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

type userRepository struct {
	db *sqlx.DB
}

type itemRepository struct {
	db *sqlx.DB
}

func NewHospitalRepository(db *sqlx.DB) repository.HospitalRepository {
	return &hospitalRepository{db: db}
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{db: db}
}

func NewTimeSlotRepository(db *sqlx.DB) repository.TimeSlotRepository {
	return &timeSlotRepository{db: db}
}

func NewAppointmentRepository(db *sqlx.DB, m *metrics.Metrics) repository.AppointmentRepository {
	return &appointmentRepository{db: db, metrics: m}
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func NewItemRepository(db *sqlx.DB) repository.ItemRepository {
	return &itemRepository{db: db}
}
