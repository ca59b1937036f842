package service

import (
	"context"
	"time"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/repository"
)

type Dashboard struct {
	MonthStart       time.Time                 `json:"month_start"`
	TotalIncomeCents int64                     `json:"total_income_cents"`
	Rentals          []domain.Rental           `json:"rentals"`
	Orders           []domain.Order            `json:"orders"`
	ItemCounts       map[domain.ItemStatus]int `json:"item_counts"`
}

type dashboardService struct {
	booking    BookingService
	rentalRepo repository.RentalRepository
	itemRepo   repository.ItemRepository
	now        func() time.Time
}

func NewDashboardService(booking BookingService, rentalRepo repository.RentalRepository, itemRepo repository.ItemRepository, now func() time.Time) DashboardService {
	if now == nil {
		now = time.Now
	}
	return &dashboardService{
		booking:    booking,
		rentalRepo: rentalRepo,
		itemRepo:   itemRepo,
		now:        now,
	}
}

// monthBounds returns the first and last instant of the calendar month containing t.
func monthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
}

func (s *dashboardService) GetDashboard(ctx context.Context) (*Dashboard, error) {
	from, to := monthBounds(s.now())

	monthly, err := s.rentalRepo.ListStartedBetween(ctx, from, to)
	if err != nil {
		return nil, storeErr("rentals.list_started_between", err)
	}
	var income int64
	for _, rt := range monthly {
		income += rt.TotalPaymentCents
	}

	rentals, err := s.booking.ListRentals(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.booking.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.itemRepo.CountByStatus(ctx)
	if err != nil {
		return nil, storeErr("items.count_by_status", err)
	}

	return &Dashboard{
		MonthStart:       from,
		TotalIncomeCents: income,
		Rentals:          rentals,
		Orders:           orders,
		ItemCounts:       counts,
	}, nil
}
