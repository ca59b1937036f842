package service_test

import (
	"context"
	"time"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/events"
	"rentdesk-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockItemRepo
type MockItemRepo struct {
	mock.Mock
}

func (m *MockItemRepo) Create(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}
func (m *MockItemRepo) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}
func (m *MockItemRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Item, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Item), args.Error(1)
}
func (m *MockItemRepo) Update(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}
func (m *MockItemRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockItemRepo) List(ctx context.Context) ([]domain.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Item), args.Error(1)
}
func (m *MockItemRepo) ListByStatusNotIn(ctx context.Context, statuses []domain.ItemStatus) ([]domain.Item, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Item), args.Error(1)
}
func (m *MockItemRepo) CountByStatus(ctx context.Context) (map[domain.ItemStatus]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.ItemStatus]int), args.Error(1)
}
func (m *MockItemRepo) UpdateStatus(ctx context.Context, ids []string, status domain.ItemStatus) error {
	args := m.Called(ctx, ids, status)
	return args.Error(0)
}
func (m *MockItemRepo) UpdateStatusWhere(ctx context.Context, ids []string, from, to domain.ItemStatus) (int64, error) {
	args := m.Called(ctx, ids, from, to)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockItemRepo) SyncRentedStatus(ctx context.Context, at time.Time) (int64, int64, error) {
	args := m.Called(ctx, at)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) Create(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) Update(ctx context.Context, rental *domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockRentalRepo) Complete(ctx context.Context, id string, notes *string) error {
	args := m.Called(ctx, id, notes)
	return args.Error(0)
}
func (m *MockRentalRepo) List(ctx context.Context) ([]domain.Rental, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListStartedBetween(ctx context.Context, from, to time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) CountByClient(ctx context.Context, clientID string) (int, error) {
	args := m.Called(ctx, clientID)
	return args.Int(0), args.Error(1)
}
func (m *MockRentalRepo) FindOverlapping(ctx context.Context, iv domain.Interval, itemIDs []string, excludeID string) ([]domain.Rental, error) {
	args := m.Called(ctx, iv, itemIDs, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ClaimedItemIDs(ctx context.Context, itemIDs []string, at time.Time, excludeID string) ([]string, error) {
	args := m.Called(ctx, itemIDs, at, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockRentalRepo) MarkActivated(ctx context.Context, rentalID string, at time.Time) error {
	args := m.Called(ctx, rentalID, at)
	return args.Error(0)
}
func (m *MockRentalRepo) MarkReturned(ctx context.Context, rentalID string, itemIDs []string, at time.Time) error {
	args := m.Called(ctx, rentalID, itemIDs, at)
	return args.Error(0)
}

// MockOrderRepo
type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}
func (m *MockOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}
func (m *MockOrderRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockOrderRepo) List(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}
func (m *MockOrderRepo) FindOverlapping(ctx context.Context, iv domain.Interval, itemIDs []string) ([]domain.Order, error) {
	args := m.Called(ctx, iv, itemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

// MockClientRepo
type MockClientRepo struct {
	mock.Mock
}

func (m *MockClientRepo) Create(ctx context.Context, client *domain.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}
func (m *MockClientRepo) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}
func (m *MockClientRepo) Update(ctx context.Context, client *domain.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}
func (m *MockClientRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockClientRepo) List(ctx context.Context) ([]domain.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Client), args.Error(1)
}

// MockCatalogRepo
type MockCatalogRepo struct {
	mock.Mock
}

func (m *MockCatalogRepo) CreateBrand(ctx context.Context, brand *domain.Brand) error {
	args := m.Called(ctx, brand)
	return args.Error(0)
}
func (m *MockCatalogRepo) UpdateBrand(ctx context.Context, brand *domain.Brand) error {
	args := m.Called(ctx, brand)
	return args.Error(0)
}
func (m *MockCatalogRepo) DeleteBrand(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockCatalogRepo) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Brand), args.Error(1)
}
func (m *MockCatalogRepo) CreateCategory(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}
func (m *MockCatalogRepo) UpdateCategory(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}
func (m *MockCatalogRepo) DeleteCategory(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockCatalogRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

// MockLocker
type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) LockItems(ctx context.Context, itemIDs []string) error {
	args := m.Called(ctx, itemIDs)
	return args.Error(0)
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, evt events.Event) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

// fakeTx hands the mocks to the callback as if they were transaction-scoped.
type fakeTx struct {
	repos    repository.Repositories
	calls    int
	returned error
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	f.calls++
	f.returned = fn(ctx, f.repos)
	return f.returned
}

type bookingMocks struct {
	items     *MockItemRepo
	rentals   *MockRentalRepo
	orders    *MockOrderRepo
	clients   *MockClientRepo
	locker    *MockLocker
	publisher *MockPublisher
	tx        *fakeTx
}

func newBookingMocks() *bookingMocks {
	m := &bookingMocks{
		items:     new(MockItemRepo),
		rentals:   new(MockRentalRepo),
		orders:    new(MockOrderRepo),
		clients:   new(MockClientRepo),
		locker:    new(MockLocker),
		publisher: new(MockPublisher),
	}
	m.tx = &fakeTx{repos: repository.Repositories{
		Items:   m.items,
		Rentals: m.rentals,
		Orders:  m.orders,
		Clients: m.clients,
		Locker:  m.locker,
	}}
	return m
}
