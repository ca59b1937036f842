package service

import (
	"context"
	"strings"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/repository"

	"github.com/google/uuid"
)

type catalogService struct {
	catalogRepo repository.CatalogRepository
}

func NewCatalogService(catalogRepo repository.CatalogRepository) CatalogService {
	return &catalogService{catalogRepo: catalogRepo}
}

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &domain.ValidationError{Field: "name", Reason: "is required"}
	}
	return name, nil
}

func (s *catalogService) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	brands, err := s.catalogRepo.ListBrands(ctx)
	if err != nil {
		return nil, storeErr("brands.list", err)
	}
	return brands, nil
}

func (s *catalogService) CreateBrand(ctx context.Context, name string) (*domain.Brand, error) {
	name, err := requireName(name)
	if err != nil {
		return nil, err
	}
	brand := &domain.Brand{ID: uuid.NewString(), Name: name}
	if err := s.catalogRepo.CreateBrand(ctx, brand); err != nil {
		return nil, storeErr("brands.create", err)
	}
	return brand, nil
}

func (s *catalogService) UpdateBrand(ctx context.Context, id, name string) (*domain.Brand, error) {
	name, err := requireName(name)
	if err != nil {
		return nil, err
	}
	brand := &domain.Brand{ID: id, Name: name}
	if err := s.catalogRepo.UpdateBrand(ctx, brand); err != nil {
		return nil, storeErr("brands.update", err)
	}
	return brand, nil
}

func (s *catalogService) DeleteBrand(ctx context.Context, id string) error {
	if err := s.catalogRepo.DeleteBrand(ctx, id); err != nil {
		return storeErr("brands.delete", err)
	}
	return nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.catalogRepo.ListCategories(ctx)
	if err != nil {
		return nil, storeErr("categories.list", err)
	}
	return categories, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	name, err := requireName(name)
	if err != nil {
		return nil, err
	}
	category := &domain.Category{ID: uuid.NewString(), Name: name}
	if err := s.catalogRepo.CreateCategory(ctx, category); err != nil {
		return nil, storeErr("categories.create", err)
	}
	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id, name string) (*domain.Category, error) {
	name, err := requireName(name)
	if err != nil {
		return nil, err
	}
	category := &domain.Category{ID: id, Name: name}
	if err := s.catalogRepo.UpdateCategory(ctx, category); err != nil {
		return nil, storeErr("categories.update", err)
	}
	return category, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.catalogRepo.DeleteCategory(ctx, id); err != nil {
		return storeErr("categories.delete", err)
	}
	return nil
}
