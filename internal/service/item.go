package service

import (
	"context"
	"strings"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/logger"
	"rentdesk-backend/internal/repository"

	"github.com/google/uuid"
)

type itemService struct {
	itemRepo repository.ItemRepository
}

func NewItemService(itemRepo repository.ItemRepository) ItemService {
	return &itemService{itemRepo: itemRepo}
}

func validateItem(item *domain.Item) error {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return &domain.ValidationError{Field: "name", Reason: "is required"}
	}
	if !item.Status.Valid() {
		return &domain.ValidationError{Field: "status", Reason: "must be one of working, damage, on rent, sold out"}
	}
	if item.RealPriceCents < 0 || item.PaidPriceCents < 0 || item.RentAmountCents < 0 {
		return &domain.ValidationError{Field: "price", Reason: "must be >= 0"}
	}
	if item.SoldPriceCents != nil && *item.SoldPriceCents < 0 {
		return &domain.ValidationError{Field: "sold_price_cents", Reason: "must be >= 0"}
	}
	if item.Images == nil {
		item.Images = []string{}
	}
	return nil
}

func (s *itemService) CreateItem(ctx context.Context, item *domain.Item) error {
	if item.Status == "" {
		item.Status = domain.ItemStatusWorking
	}
	if err := validateItem(item); err != nil {
		return err
	}
	item.ID = uuid.NewString()
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return storeErr("items.create", err)
	}
	logger.Info("Item created", "item_id", item.ID, "name", item.Name)
	return nil
}

func (s *itemService) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("items.get", err)
	}
	return item, nil
}

func (s *itemService) ListItems(ctx context.Context) ([]domain.Item, error) {
	items, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, storeErr("items.list", err)
	}
	return items, nil
}

// ListPublicCatalog hides items that can no longer be rented.
func (s *itemService) ListPublicCatalog(ctx context.Context) ([]domain.Item, error) {
	items, err := s.itemRepo.ListByStatusNotIn(ctx, []domain.ItemStatus{domain.ItemStatusDamage, domain.ItemStatusSoldOut})
	if err != nil {
		return nil, storeErr("items.list_public", err)
	}
	return items, nil
}

// UpdateItem keeps the stored status when item.Status is empty.
func (s *itemService) UpdateItem(ctx context.Context, item *domain.Item) error {
	existing, err := s.itemRepo.GetByID(ctx, item.ID)
	if err != nil {
		return storeErr("items.get", err)
	}
	if item.Status == "" {
		item.Status = existing.Status
	}
	if err := validateItem(item); err != nil {
		return err
	}
	item.CreatedOn = existing.CreatedOn
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return storeErr("items.update", err)
	}
	return nil
}

func (s *itemService) UpdateItemStatus(ctx context.Context, id string, status domain.ItemStatus) (*domain.Item, error) {
	if !status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Reason: "must be one of working, damage, on rent, sold out"}
	}
	if err := s.itemRepo.UpdateStatus(ctx, []string{id}, status); err != nil {
		return nil, storeErr("items.update_status", err)
	}
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("items.get", err)
	}
	logger.Info("Item status changed", "item_id", id, "status", status)
	return item, nil
}

func (s *itemService) DeleteItem(ctx context.Context, id string) error {
	if err := s.itemRepo.Delete(ctx, id); err != nil {
		return storeErr("items.delete", err)
	}
	return nil
}
