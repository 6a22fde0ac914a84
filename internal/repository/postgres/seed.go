package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/pkg/security"
)

type seedDoctor struct {
	name      string
	specialty string
	rating    float64
	slots     []string
}

type seedHospital struct {
	name    string
	address string
	doctors []seedDoctor
}

var seedHospitals = []seedHospital{
	{
		name:    "City General Hospital",
		address: "123 Main St",
		doctors: []seedDoctor{
			{"Dr. John Smith", "Cardiology", 4.8, []string{"09:00 AM", "10:30 AM", "02:00 PM", "03:30 PM"}},
			{"Dr. Sarah Johnson", "Internal Medicine", 4.9, []string{"08:30 AM", "11:00 AM", "01:30 PM", "04:00 PM"}},
		},
	},
	{
		name:    "St. Mary Medical Center",
		address: "456 Oak Ave",
		doctors: []seedDoctor{
			{"Dr. Michael Brown", "Orthopedics", 4.7, []string{"09:30 AM", "11:30 AM", "02:30 PM"}},
			{"Dr. Emily Davis", "Pediatrics", 4.9, []string{"08:00 AM", "10:00 AM", "01:00 PM", "03:00 PM"}},
		},
	},
	{
		name:    "University Hospital",
		address: "789 College Blvd",
		doctors: []seedDoctor{
			{"Dr. Robert Wilson", "Neurology", 4.8, []string{"09:00 AM", "10:00 AM", "02:00 PM"}},
			{"Dr. Lisa Anderson", "Dermatology", 4.6, []string{"08:30 AM", "11:30 AM", "01:30 PM", "03:30 PM"}},
		},
	},
}

// Seed populates the first superuser and the hospital/doctor/time-slot
// bootstrap data. It is idempotent: hospitals are only inserted when the
// table is empty, the superuser only when the email is absent.
func Seed(ctx context.Context, db *sqlx.DB, superuserEmail, superuserPassword string) error {
	if superuserEmail != "" {
		if err := seedSuperuser(ctx, db, superuserEmail, superuserPassword); err != nil {
			return err
		}
	}

	var hospitalCount int
	if err := db.GetContext(ctx, &hospitalCount, `SELECT COUNT(*) FROM hospitals`); err != nil {
		return fmt.Errorf("failed to count hospitals: %w", err)
	}
	if hospitalCount > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, h := range seedHospitals {
		hospitalID := uuid.New()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO hospitals (id, name, address) VALUES ($1, $2, $3)`,
			hospitalID, h.name, h.address,
		); err != nil {
			return fmt.Errorf("failed to seed hospital: %w", err)
		}

		for _, d := range h.doctors {
			doctorID := uuid.New()
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO doctors (id, name, specialty, rating, hospital_id) VALUES ($1, $2, $3, $4, $5)`,
				doctorID, d.name, d.specialty, d.rating, hospitalID,
			); err != nil {
				return fmt.Errorf("failed to seed doctor: %w", err)
			}

			for _, slot := range d.slots {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO doctor_time_slots (id, time_slot, is_available, doctor_id) VALUES ($1, $2, TRUE, $3)`,
					uuid.New(), slot, doctorID,
				); err != nil {
					return fmt.Errorf("failed to seed time slot: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed data: %w", err)
	}
	return nil
}

func seedSuperuser(ctx context.Context, db *sqlx.DB, email, password string) error {
	var exists bool
	err := db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
	if err != nil {
		return fmt.Errorf("failed to check superuser: %w", err)
	}
	if exists {
		return nil
	}

	hasher := security.NewBcryptHasher(12)
	hashed, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash superuser password: %w", err)
	}

	user := &model.User{
		ID:             uuid.New(),
		Email:          email,
		HashedPassword: hashed,
		IsActive:       true,
		IsSuperuser:    true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO users (id, email, hashed_password, is_active, is_superuser, full_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, user.ID, user.Email, user.HashedPassword, user.IsActive, user.IsSuperuser, user.FullName, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to seed superuser: %w", err)
	}
	return nil
}
