package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
)

func (r *itemRepository) Create(ctx context.Context, item *model.Item) error {
	item.ID = uuid.New()
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO items (id, title, description, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		item.ID,
		item.Title,
		item.Description,
		item.OwnerID,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

func (r *itemRepository) Get(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	query := `
		SELECT id, title, description, owner_id, created_at, updated_at
		FROM items
		WHERE id = $1
	`
	var item model.Item
	err := r.db.GetContext(ctx, &item, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

func (r *itemRepository) List(ctx context.Context, ownerID *uuid.UUID, skip, limit int) ([]*model.Item, int, error) {
	countQuery := `SELECT COUNT(*) FROM items`
	listQuery := `
		SELECT id, title, description, owner_id, created_at, updated_at
		FROM items
	`
	countArgs := []interface{}{}
	listArgs := []interface{}{skip, limit}

	if ownerID != nil {
		countQuery += ` WHERE owner_id = $1`
		listQuery += ` WHERE owner_id = $3`
		countArgs = append(countArgs, *ownerID)
		listArgs = append(listArgs, *ownerID)
	}
	listQuery += ` ORDER BY created_at, id OFFSET $1 LIMIT $2`

	var count int
	if err := r.db.GetContext(ctx, &count, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count items: %w", err)
	}

	items := []*model.Item{}
	if err := r.db.SelectContext(ctx, &items, listQuery, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to list items: %w", err)
	}
	return items, count, nil
}

func (r *itemRepository) Update(ctx context.Context, item *model.Item) error {
	item.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, `
		UPDATE items
		SET title = $1, description = $2, updated_at = $3
		WHERE id = $4
	`, item.Title, item.Description, item.UpdatedAt, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
