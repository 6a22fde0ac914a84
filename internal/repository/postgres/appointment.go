package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
)

const appointmentColumns = `
	id, patient_name, patient_id_number, patient_phone, patient_email,
	appointment_time, status, user_id, hospital_id, doctor_id,
	created_at, updated_at
`

// Book claims the slot and inserts the appointment atomically. The guarded
// UPDATE is what makes concurrent bookings of the same slot safe: whichever
// transaction commits first flips is_available, the other sees zero rows and
// rolls back with ErrSlotTaken.
func (r *appointmentRepository) Book(ctx context.Context, appointment *model.Appointment, slotID uuid.UUID) (err error) {
	defer r.observe("book", time.Now(), &err)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE doctor_time_slots
		SET is_available = FALSE
		WHERE id = $1 AND is_available
	`, slotID)
	if err != nil {
		return fmt.Errorf("failed to claim time slot: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrSlotTaken
	}

	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt

	_, err = tx.ExecContext(ctx, `
		INSERT INTO appointments (
			id, patient_name, patient_id_number, patient_phone, patient_email,
			appointment_time, status, user_id, hospital_id, doctor_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		appointment.ID,
		appointment.PatientName,
		appointment.PatientIDNumber,
		appointment.PatientPhone,
		appointment.PatientEmail,
		appointment.AppointmentTime,
		appointment.Status,
		appointment.UserID,
		appointment.HospitalID,
		appointment.DoctorID,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (_ *model.Appointment, err error) {
	defer r.observe("get", time.Now(), &err)

	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	err = r.db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) List(ctx context.Context, userID *uuid.UUID, skip, limit int) (_ []*model.Appointment, _ int, err error) {
	defer r.observe("list", time.Now(), &err)

	countQuery := `SELECT COUNT(*) FROM appointments`
	listQuery := `SELECT ` + appointmentColumns + ` FROM appointments`
	countArgs := []interface{}{}
	listArgs := []interface{}{skip, limit}

	if userID != nil {
		countQuery += ` WHERE user_id = $1`
		listQuery += ` WHERE user_id = $3`
		countArgs = append(countArgs, *userID)
		listArgs = append(listArgs, *userID)
	}
	listQuery += ` ORDER BY created_at, id OFFSET $1 LIMIT $2`

	var count int
	if err := r.db.GetContext(ctx, &count, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	appointments := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, listQuery, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, count, nil
}

// reopenSlot makes the appointment's slot available again. Zero matched rows
// is not an error: the slot may have been removed independently.
func reopenSlot(ctx context.Context, tx *sqlx.Tx, doctorID uuid.UUID, timeSlot string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE doctor_time_slots
		SET is_available = TRUE
		WHERE doctor_id = $1 AND time_slot = $2
	`, doctorID, timeSlot)
	if err != nil {
		return fmt.Errorf("failed to reopen time slot: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment, restoreSlot bool) (err error) {
	defer r.observe("update", time.Now(), &err)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if restoreSlot {
		if err := reopenSlot(ctx, tx, appointment.DoctorID, appointment.AppointmentTime); err != nil {
			return err
		}
	}

	appointment.UpdatedAt = time.Now()
	result, err := tx.ExecContext(ctx, `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3
	`, appointment.Status, appointment.UpdatedAt, appointment.ID)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit update: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, appointment *model.Appointment) (err error) {
	defer r.observe("delete", time.Now(), &err)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := reopenSlot(ctx, tx, appointment.DoctorID, appointment.AppointmentTime); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, appointment.ID)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}
