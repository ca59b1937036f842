package service

import (
	"context"
	"time"

	"rentdesk-backend/internal/domain"
)

// BookingService is the booking conflict resolver: availability, commits and the item
// status transitions they drive.
type BookingService interface {
	FindAvailableItems(ctx context.Context, start, end time.Time) ([]domain.Item, error)
	CommitRental(ctx context.Context, in RentalInput) (*domain.Rental, error)
	UpdateRental(ctx context.Context, id string, in RentalInput) (*domain.Rental, error)
	CompleteRental(ctx context.Context, id, notes string) error
	DeleteRental(ctx context.Context, id string) error
	ReturnRental(ctx context.Context, id string, itemIDs []string) error
	GetRental(ctx context.Context, id string) (*domain.Rental, error)
	ListRentals(ctx context.Context) ([]domain.Rental, error)

	CommitOrder(ctx context.Context, in OrderInput) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	ListOrders(ctx context.Context) ([]domain.Order, error)

	SyncItemStatuses(ctx context.Context) (*SyncResult, error)
}

type ItemService interface {
	CreateItem(ctx context.Context, item *domain.Item) error
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	ListItems(ctx context.Context) ([]domain.Item, error)
	ListPublicCatalog(ctx context.Context) ([]domain.Item, error)
	UpdateItem(ctx context.Context, item *domain.Item) error
	UpdateItemStatus(ctx context.Context, id string, status domain.ItemStatus) (*domain.Item, error)
	DeleteItem(ctx context.Context, id string) error
}

type CatalogService interface {
	ListBrands(ctx context.Context) ([]domain.Brand, error)
	CreateBrand(ctx context.Context, name string) (*domain.Brand, error)
	UpdateBrand(ctx context.Context, id, name string) (*domain.Brand, error)
	DeleteBrand(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id, name string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type ClientService interface {
	ListClients(ctx context.Context) ([]domain.Client, error)
	CreateClient(ctx context.Context, client *domain.Client) error
	UpdateClient(ctx context.Context, client *domain.Client) error
	DeleteClient(ctx context.Context, id string) error
}

type DashboardService interface {
	GetDashboard(ctx context.Context) (*Dashboard, error)
}
