package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/model"
)

// Sentinel errors surfaced by implementations; services translate them into
// the API error taxonomy.
var (
	ErrNotFound       = errors.New("not found")
	ErrSlotTaken      = errors.New("time slot is no longer available")
	ErrDuplicateEmail = errors.New("email already registered")
)

type HospitalRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error)
	List(ctx context.Context, skip, limit int) ([]*model.Hospital, int, error)
}

type DoctorRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	ListByHospital(ctx context.Context, hospitalID uuid.UUID, skip, limit int) ([]*model.Doctor, int, error)
}

type TimeSlotRepository interface {
	// FindBookable returns the available slot matching the doctor and the
	// exact time label, or ErrNotFound.
	FindBookable(ctx context.Context, doctorID uuid.UUID, timeSlot string) (*model.DoctorTimeSlot, error)
	ListAvailable(ctx context.Context, doctorID uuid.UUID) ([]*model.DoctorTimeSlot, error)
}

type AppointmentRepository interface {
	// Book inserts the appointment and marks the slot unavailable in one
	// transaction. Returns ErrSlotTaken when the slot was claimed by a
	// concurrent booking between the availability check and the commit.
	Book(ctx context.Context, appointment *model.Appointment, slotID uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	// List returns a page of appointments plus the unpaginated count,
	// optionally scoped to one owner. Ordering is stable (creation order).
	List(ctx context.Context, userID *uuid.UUID, skip, limit int) ([]*model.Appointment, int, error)
	// Update persists the appointment row; when restoreSlot is set the
	// matching slot is re-opened in the same transaction, tolerating a
	// missing slot.
	Update(ctx context.Context, appointment *model.Appointment, restoreSlot bool) error
	// Delete removes the appointment after best-effort re-opening its slot,
	// both in one transaction.
	Delete(ctx context.Context, appointment *model.Appointment) error
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	Get(ctx context.Context, id uuid.UUID) (*model.Item, error)
	List(ctx context.Context, ownerID *uuid.UUID, skip, limit int) ([]*model.Item, int, error)
	Update(ctx context.Context, item *model.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
}
