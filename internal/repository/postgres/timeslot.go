package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
)

func (r *timeSlotRepository) FindBookable(ctx context.Context, doctorID uuid.UUID, timeSlot string) (*model.DoctorTimeSlot, error) {
	// Exact string match on the label, no normalization. If a doctor carries
	// duplicate labels the first row wins.
	query := `
		SELECT id, time_slot, is_available, doctor_id
		FROM doctor_time_slots
		WHERE doctor_id = $1 AND time_slot = $2 AND is_available
		LIMIT 1
	`
	var slot model.DoctorTimeSlot
	err := r.db.GetContext(ctx, &slot, query, doctorID, timeSlot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find time slot: %w", err)
	}
	return &slot, nil
}

func (r *timeSlotRepository) ListAvailable(ctx context.Context, doctorID uuid.UUID) ([]*model.DoctorTimeSlot, error) {
	query := `
		SELECT id, time_slot, is_available, doctor_id
		FROM doctor_time_slots
		WHERE doctor_id = $1 AND is_available
		ORDER BY created_at, id
	`
	slots := []*model.DoctorTimeSlot{}
	if err := r.db.SelectContext(ctx, &slots, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list time slots: %w", err)
	}
	return slots, nil
}
