package repository

import (
	"context"
	"time"

	"rentdesk-backend/internal/domain"
)

type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Item, error)
	Update(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Item, error)
	ListByStatusNotIn(ctx context.Context, statuses []domain.ItemStatus) ([]domain.Item, error)
	CountByStatus(ctx context.Context) (map[domain.ItemStatus]int, error)

	// Status writes used by the booking resolver
	UpdateStatus(ctx context.Context, ids []string, status domain.ItemStatus) error
	UpdateStatusWhere(ctx context.Context, ids []string, from, to domain.ItemStatus) (int64, error)
	// SyncRentedStatus moves working items of rentals that became active by t to on rent, once
	// per rental item, and on-rent items no active rental holds back to working. Returned items
	// are never held.
	SyncRentedStatus(ctx context.Context, at time.Time) (activated, released int64, err error)
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id string) (*domain.Rental, error)
	Update(ctx context.Context, rental *domain.Rental) error
	Delete(ctx context.Context, id string) error
	Complete(ctx context.Context, id string, notes *string) error
	List(ctx context.Context) ([]domain.Rental, error)
	ListStartedBetween(ctx context.Context, from, to time.Time) ([]domain.Rental, error)
	CountByClient(ctx context.Context, clientID string) (int, error)

	// FindOverlapping returns rentals whose interval overlaps iv. When itemIDs is non-empty only
	// rentals referencing at least one of them are returned; excludeID skips one rental.
	FindOverlapping(ctx context.Context, iv domain.Interval, itemIDs []string, excludeID string) ([]domain.Rental, error)
	// ClaimedItemIDs returns which of itemIDs are held by a non-completed rental active at t,
	// ignoring excludeID and items already returned from it. An empty itemIDs means every item
	// held at t.
	ClaimedItemIDs(ctx context.Context, itemIDs []string, at time.Time, excludeID string) ([]string, error)
	// MarkActivated records that the rental's items were put on rent at t. Returned items are skipped.
	MarkActivated(ctx context.Context, rentalID string, at time.Time) error
	// MarkReturned records an early return of itemIDs from the rental.
	MarkReturned(ctx context.Context, rentalID string, itemIDs []string, at time.Time) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Order, error)
	FindOverlapping(ctx context.Context, iv domain.Interval, itemIDs []string) ([]domain.Order, error)
}

type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Client, error)
}

type CatalogRepository interface {
	CreateBrand(ctx context.Context, brand *domain.Brand) error
	UpdateBrand(ctx context.Context, brand *domain.Brand) error
	DeleteBrand(ctx context.Context, id string) error
	ListBrands(ctx context.Context) ([]domain.Brand, error)

	CreateCategory(ctx context.Context, category *domain.Category) error
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// ItemLocker serializes bookings that touch the same items. Locks are held until the
// surrounding transaction ends.
type ItemLocker interface {
	LockItems(ctx context.Context, itemIDs []string) error
}

// Repositories is the transaction-scoped view handed to Transactor callbacks.
type Repositories struct {
	Items   ItemRepository
	Rentals RentalRepository
	Orders  OrderRepository
	Clients ClientRepository
	Locker  ItemLocker
}

type Transactor interface {
	// WithinTx runs fn inside one transaction. fn's error rolls back; nil commits.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
