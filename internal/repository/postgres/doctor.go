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

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT id, name, specialty, rating, hospital_id
		FROM doctors
		WHERE id = $1
	`
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) ListByHospital(ctx context.Context, hospitalID uuid.UUID, skip, limit int) ([]*model.Doctor, int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM doctors WHERE hospital_id = $1`, hospitalID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count doctors: %w", err)
	}

	query := `
		SELECT id, name, specialty, rating, hospital_id
		FROM doctors
		WHERE hospital_id = $1
		ORDER BY created_at, id
		OFFSET $2 LIMIT $3
	`
	doctors := []*model.Doctor{}
	if err := r.db.SelectContext(ctx, &doctors, query, hospitalID, skip, limit); err != nil {
		return nil, 0, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, count, nil
}
