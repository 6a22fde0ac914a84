package item

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
	apperrors "github.com/medibook/booking-api/pkg/errors"
)

// Service is the trusted item CRUD used by the standalone items service; the
// caller is responsible for supplying owner_id.
type Service struct {
	items repository.ItemRepository
}

func NewService(items repository.ItemRepository) *Service {
	return &Service{items: items}
}

func (s *Service) CreateItem(ctx context.Context, req *model.CreateItemRequest) (*model.Item, error) {
	item := &model.Item{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     req.OwnerID,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, apperrors.Internal(err)
	}
	return item, nil
}

func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	item, err := s.items.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Item", err)
		}
		return nil, apperrors.Internal(err)
	}
	return item, nil
}

func (s *Service) ListItems(ctx context.Context, ownerID *uuid.UUID, skip, limit int) ([]*model.Item, int, error) {
	items, count, err := s.items.List(ctx, ownerID, skip, limit)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return items, count, nil
}

// UpdateItem applies only the fields present in the patch.
func (s *Service) UpdateItem(ctx context.Context, id uuid.UUID, patch *model.UpdateItemRequest) (*model.Item, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		item.Title = *patch.Title
	}
	if patch.Description != nil {
		item.Description = patch.Description
	}

	if err := s.items.Update(ctx, item); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Item", err)
		}
		return nil, apperrors.Internal(err)
	}
	return item, nil
}

func (s *Service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetItem(ctx, id); err != nil {
		return err
	}
	if err := s.items.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("Item", err)
		}
		return apperrors.Internal(err)
	}
	return nil
}
