package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"rentdesk-backend/internal/config"
	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/events"
	"rentdesk-backend/internal/logger"
	"rentdesk-backend/internal/repository"
	"rentdesk-backend/internal/utils"

	"github.com/google/uuid"
)

// RentalInput carries the caller-supplied fields of a rental commit or update.
type RentalInput struct {
	ItemIDs         []string
	ClientID        string
	Start           time.Time
	End             time.Time
	RentAmountCents int64
	DiscountCents   int64
	AmountPaidCents int64
	PaymentType     string
	Description     string
}

type OrderInput struct {
	ItemIDs               []string
	CustomerName          string
	Start                 time.Time
	End                   time.Time
	TargetRentAmountCents int64
}

// SyncResult reports how many items SyncItemStatuses moved in each direction.
type SyncResult struct {
	Activated int64 `json:"activated"`
	Released  int64 `json:"released"`
}

type BookingOption func(*bookingService)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) BookingOption {
	return func(s *bookingService) { s.now = now }
}

// WithReleasePolicy selects config.ReleaseUnconditional or config.ReleaseGuarded.
func WithReleasePolicy(policy string) BookingOption {
	return func(s *bookingService) { s.releasePolicy = policy }
}

type bookingService struct {
	tx            repository.Transactor
	itemRepo      repository.ItemRepository
	rentalRepo    repository.RentalRepository
	orderRepo     repository.OrderRepository
	publisher     events.Publisher
	now           func() time.Time
	releasePolicy string
}

func NewBookingService(
	tx repository.Transactor,
	itemRepo repository.ItemRepository,
	rentalRepo repository.RentalRepository,
	orderRepo repository.OrderRepository,
	publisher events.Publisher,
	opts ...BookingOption,
) BookingService {
	s := &bookingService{
		tx:            tx,
		itemRepo:      itemRepo,
		rentalRepo:    rentalRepo,
		orderRepo:     orderRepo,
		publisher:     publisher,
		now:           time.Now,
		releasePolicy: config.ReleaseUnconditional,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	return s
}

func (s *bookingService) FindAvailableItems(ctx context.Context, start, end time.Time) ([]domain.Item, error) {
	logger.EnterMethod("BookingService.FindAvailableItems", "start", start, "end", end)

	iv, err := domain.NewInterval(start, end)
	if err != nil {
		return nil, err
	}

	items, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, storeErr("items.list", err)
	}
	rentals, err := s.rentalRepo.FindOverlapping(ctx, iv, nil, "")
	if err != nil {
		return nil, storeErr("rentals.find_overlapping", err)
	}
	orders, err := s.orderRepo.FindOverlapping(ctx, iv, nil)
	if err != nil {
		return nil, storeErr("orders.find_overlapping", err)
	}

	booked := make(map[string]struct{})
	for _, rt := range rentals {
		for _, id := range rt.ItemIDs {
			booked[id] = struct{}{}
		}
	}
	for _, o := range orders {
		for _, id := range o.ItemIDs {
			booked[id] = struct{}{}
		}
	}

	available := make([]domain.Item, 0, len(items))
	for _, it := range items {
		if _, ok := booked[it.ID]; ok {
			continue
		}
		if !it.Status.Bookable() {
			continue
		}
		available = append(available, it)
	}

	logger.ExitMethod("BookingService.FindAvailableItems", "total", len(items), "available", len(available))
	return available, nil
}

func (s *bookingService) CommitRental(ctx context.Context, in RentalInput) (*domain.Rental, error) {
	methodName := "BookingService.CommitRental"
	logger.EnterMethod(methodName, "client_id", in.ClientID, "items", len(in.ItemIDs))

	itemIDs, iv, cost, err := validateRentalInput(in)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rental := &domain.Rental{
		ID:                uuid.NewString(),
		ClientID:          in.ClientID,
		ItemIDs:           itemIDs,
		Interval:          iv,
		Days:              cost.Days,
		RentAmountCents:   in.RentAmountCents,
		DiscountCents:     in.DiscountCents,
		TotalPaymentCents: cost.TotalCents,
		AmountPaidCents:   in.AmountPaidCents,
		PaymentType:       strings.TrimSpace(in.PaymentType),
		Description:       strings.TrimSpace(in.Description),
		Status:            domain.RentalStatusActive,
		ReceiptNo:         utils.ReceiptNumber(now),
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Locker.LockItems(ctx, itemIDs); err != nil {
			return storeErr("items.lock", err)
		}
		if _, err := repos.Clients.GetByID(ctx, in.ClientID); err != nil {
			return storeErr("clients.get", err)
		}

		existing, err := repos.Rentals.FindOverlapping(ctx, iv, itemIDs, "")
		if err != nil {
			return storeErr("rentals.find_overlapping", err)
		}
		if conflict := conflictError(itemIDs, rentalItemIDs(existing)); conflict != nil {
			return conflict
		}

		if err := repos.Rentals.Create(ctx, rental); err != nil {
			return storeErr("rentals.create", err)
		}

		// Future and past rentals leave status alone; activation happens on sync.
		if iv.Contains(now) {
			return s.activate(ctx, repos, rental.ID, itemIDs, now)
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError(methodName, err)
		return nil, err
	}

	logger.Info("Rental committed", "rental_id", rental.ID, "receipt_no", rental.ReceiptNo, "items", itemIDs, "active", iv.Contains(now))
	s.publish(ctx, events.RentalCreated, rental.ID, "", itemIDs)

	created, err := s.GetRental(ctx, rental.ID)
	if err != nil {
		return nil, err
	}
	logger.ExitMethod(methodName, "rental_id", created.ID)
	return created, nil
}

func (s *bookingService) UpdateRental(ctx context.Context, id string, in RentalInput) (*domain.Rental, error) {
	methodName := "BookingService.UpdateRental"
	logger.EnterMethod(methodName, "rental_id", id, "items", len(in.ItemIDs))

	itemIDs, iv, cost, err := validateRentalInput(in)
	if err != nil {
		return nil, err
	}

	now := s.now()
	err = s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		prev, err := repos.Rentals.GetByID(ctx, id)
		if err != nil {
			return storeErr("rentals.get", err)
		}
		if err := repos.Locker.LockItems(ctx, union(prev.ItemIDs, itemIDs)); err != nil {
			return storeErr("items.lock", err)
		}
		if prev.ClientID != in.ClientID {
			if _, err := repos.Clients.GetByID(ctx, in.ClientID); err != nil {
				return storeErr("clients.get", err)
			}
		}

		existing, err := repos.Rentals.FindOverlapping(ctx, iv, itemIDs, id)
		if err != nil {
			return storeErr("rentals.find_overlapping", err)
		}
		if conflict := conflictError(itemIDs, rentalItemIDs(existing)); conflict != nil {
			return conflict
		}

		updated := *prev
		updated.Client = nil
		updated.ClientID = in.ClientID
		updated.ItemIDs = itemIDs
		updated.Interval = iv
		updated.Days = cost.Days
		updated.RentAmountCents = in.RentAmountCents
		updated.DiscountCents = in.DiscountCents
		updated.TotalPaymentCents = cost.TotalCents
		updated.AmountPaidCents = in.AmountPaidCents
		updated.PaymentType = strings.TrimSpace(in.PaymentType)
		updated.Description = strings.TrimSpace(in.Description)
		if err := repos.Rentals.Update(ctx, &updated); err != nil {
			return storeErr("rentals.update", err)
		}

		if err := s.release(ctx, repos, difference(prev.ItemIDs, itemIDs), id, now); err != nil {
			return err
		}
		if iv.Contains(now) {
			return s.activate(ctx, repos, id, itemIDs, now)
		}
		// Outside its interval the rental no longer holds its items.
		return s.release(ctx, repos, itemIDs, id, now)
	})
	if err != nil {
		logger.ExitMethodWithError(methodName, err, "rental_id", id)
		return nil, err
	}

	s.publish(ctx, events.RentalUpdated, id, "", itemIDs)

	rental, err := s.GetRental(ctx, id)
	if err != nil {
		return nil, err
	}
	logger.ExitMethod(methodName, "rental_id", id)
	return rental, nil
}

func (s *bookingService) CompleteRental(ctx context.Context, id, notes string) error {
	methodName := "BookingService.CompleteRental"
	logger.EnterMethod(methodName, "rental_id", id)

	var itemIDs []string
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		rental, err := repos.Rentals.GetByID(ctx, id)
		if err != nil {
			return storeErr("rentals.get", err)
		}
		itemIDs = rental.ItemIDs
		if err := repos.Locker.LockItems(ctx, itemIDs); err != nil {
			return storeErr("items.lock", err)
		}

		var notesPtr *string
		if trimmed := strings.TrimSpace(notes); trimmed != "" {
			notesPtr = &trimmed
		}
		if err := repos.Rentals.Complete(ctx, id, notesPtr); err != nil {
			return storeErr("rentals.complete", err)
		}
		return s.release(ctx, repos, itemIDs, id, s.now())
	})
	if err != nil {
		logger.ExitMethodWithError(methodName, err, "rental_id", id)
		return err
	}

	s.publish(ctx, events.RentalCompleted, id, "", itemIDs)
	logger.ExitMethod(methodName, "rental_id", id)
	return nil
}

func (s *bookingService) DeleteRental(ctx context.Context, id string) error {
	methodName := "BookingService.DeleteRental"
	logger.EnterMethod(methodName, "rental_id", id)

	var itemIDs []string
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		rental, err := repos.Rentals.GetByID(ctx, id)
		if err != nil {
			return storeErr("rentals.get", err)
		}
		itemIDs = rental.ItemIDs
		if err := repos.Locker.LockItems(ctx, itemIDs); err != nil {
			return storeErr("items.lock", err)
		}

		now := s.now()
		wasActive := rental.Contains(now)
		if err := repos.Rentals.Delete(ctx, id); err != nil {
			return storeErr("rentals.delete", err)
		}
		if !wasActive {
			return nil
		}
		return s.release(ctx, repos, itemIDs, id, now)
	})
	if err != nil {
		logger.ExitMethodWithError(methodName, err, "rental_id", id)
		return err
	}

	s.publish(ctx, events.RentalDeleted, id, "", itemIDs)
	logger.ExitMethod(methodName, "rental_id", id)
	return nil
}

func (s *bookingService) ReturnRental(ctx context.Context, id string, itemIDs []string) error {
	methodName := "BookingService.ReturnRental"
	logger.EnterMethod(methodName, "rental_id", id, "items", len(itemIDs))

	itemIDs = dedupe(itemIDs)
	if len(itemIDs) == 0 {
		return &domain.ValidationError{Field: "item_ids", Reason: "at least one item is required"}
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Rentals.GetByID(ctx, id); err != nil {
			return storeErr("rentals.get", err)
		}
		if err := repos.Locker.LockItems(ctx, itemIDs); err != nil {
			return storeErr("items.lock", err)
		}
		now := s.now()
		if err := repos.Rentals.MarkReturned(ctx, id, itemIDs, now); err != nil {
			return storeErr("rentals.mark_returned", err)
		}
		return s.release(ctx, repos, itemIDs, id, now)
	})
	if err != nil {
		logger.ExitMethodWithError(methodName, err, "rental_id", id)
		return err
	}

	s.publish(ctx, events.RentalReturned, id, "", itemIDs)
	logger.ExitMethod(methodName, "rental_id", id)
	return nil
}

func (s *bookingService) GetRental(ctx context.Context, id string) (*domain.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("rentals.get", err)
	}
	items, err := s.itemRepo.GetByIDs(ctx, rental.ItemIDs)
	if err != nil {
		return nil, storeErr("items.get", err)
	}
	rental.Items = orderItems(rental.ItemIDs, items)
	return rental, nil
}

func (s *bookingService) ListRentals(ctx context.Context) ([]domain.Rental, error) {
	rentals, err := s.rentalRepo.List(ctx)
	if err != nil {
		return nil, storeErr("rentals.list", err)
	}

	var ids []string
	for _, rt := range rentals {
		ids = union(ids, rt.ItemIDs)
	}
	items, err := s.itemRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr("items.get", err)
	}
	for i := range rentals {
		rentals[i].Items = orderItems(rentals[i].ItemIDs, items)
	}
	return rentals, nil
}

func (s *bookingService) CommitOrder(ctx context.Context, in OrderInput) (*domain.Order, error) {
	methodName := "BookingService.CommitOrder"
	logger.EnterMethod(methodName, "customer", in.CustomerName, "items", len(in.ItemIDs))

	itemIDs := dedupe(in.ItemIDs)
	if len(itemIDs) == 0 {
		return nil, &domain.ValidationError{Field: "item_ids", Reason: "at least one item is required"}
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, &domain.ValidationError{Field: "customer_name", Reason: "is required"}
	}
	if in.TargetRentAmountCents < 0 {
		return nil, &domain.ValidationError{Field: "target_rent_amount_cents", Reason: "must be >= 0"}
	}
	iv, err := domain.NewInterval(in.Start, in.End)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:                    uuid.NewString(),
		CustomerName:          strings.TrimSpace(in.CustomerName),
		ItemIDs:               itemIDs,
		Interval:              iv,
		TargetRentAmountCents: in.TargetRentAmountCents,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Locker.LockItems(ctx, itemIDs); err != nil {
			return storeErr("items.lock", err)
		}

		rentals, err := repos.Rentals.FindOverlapping(ctx, iv, itemIDs, "")
		if err != nil {
			return storeErr("rentals.find_overlapping", err)
		}
		orders, err := repos.Orders.FindOverlapping(ctx, iv, itemIDs)
		if err != nil {
			return storeErr("orders.find_overlapping", err)
		}
		booked := rentalItemIDs(rentals)
		for _, o := range orders {
			booked = append(booked, o.ItemIDs...)
		}
		if conflict := conflictError(itemIDs, booked); conflict != nil {
			return conflict
		}

		if err := repos.Orders.Create(ctx, order); err != nil {
			return storeErr("orders.create", err)
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError(methodName, err)
		return nil, err
	}

	s.publish(ctx, events.OrderCreated, "", order.ID, itemIDs)

	items, err := s.itemRepo.GetByIDs(ctx, itemIDs)
	if err != nil {
		return nil, storeErr("items.get", err)
	}
	order.Items = orderItems(itemIDs, items)
	logger.ExitMethod(methodName, "order_id", order.ID)
	return order, nil
}

func (s *bookingService) DeleteOrder(ctx context.Context, id string) error {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return storeErr("orders.get", err)
	}
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return storeErr("orders.delete", err)
	}
	s.publish(ctx, events.OrderDeleted, "", id, order.ItemIDs)
	return nil
}

func (s *bookingService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return nil, storeErr("orders.list", err)
	}

	var ids []string
	for _, o := range orders {
		ids = union(ids, o.ItemIDs)
	}
	items, err := s.itemRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr("items.get", err)
	}
	for i := range orders {
		orders[i].Items = orderItems(orders[i].ItemIDs, items)
	}
	return orders, nil
}

// SyncItemStatuses brings working/on rent in line with the rentals active right now.
// Damaged and sold-out items are never touched.
func (s *bookingService) SyncItemStatuses(ctx context.Context) (*SyncResult, error) {
	methodName := "BookingService.SyncItemStatuses"
	now := s.now()
	logger.EnterMethod(methodName, "at", now)

	result := &SyncResult{}
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		activated, released, err := repos.Items.SyncRentedStatus(ctx, now)
		if err != nil {
			return storeErr("items.sync_rented_status", err)
		}
		result.Activated, result.Released = activated, released
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError(methodName, err)
		return nil, err
	}

	if result.Activated > 0 || result.Released > 0 {
		s.publish(ctx, events.ItemsSynced, "", "", nil)
	}
	logger.ExitMethod(methodName, "activated", result.Activated, "released", result.Released)
	return result, nil
}

// activate puts the rental's items on rent and records it, so the sync job does not put them
// back on rent after a return or completion.
func (s *bookingService) activate(ctx context.Context, repos repository.Repositories, rentalID string, itemIDs []string, now time.Time) error {
	if err := repos.Items.UpdateStatus(ctx, itemIDs, domain.ItemStatusOnRent); err != nil {
		return storeErr("items.update_status", err)
	}
	if err := repos.Rentals.MarkActivated(ctx, rentalID, now); err != nil {
		return storeErr("rentals.mark_activated", err)
	}
	return nil
}

// release returns items to working. Under the guarded policy items still held by another
// active rental, and items not currently on rent, keep their status.
func (s *bookingService) release(ctx context.Context, repos repository.Repositories, itemIDs []string, rentalID string, now time.Time) error {
	if len(itemIDs) == 0 {
		return nil
	}

	if s.releasePolicy != config.ReleaseGuarded {
		if err := repos.Items.UpdateStatus(ctx, itemIDs, domain.ItemStatusWorking); err != nil {
			return storeErr("items.update_status", err)
		}
		return nil
	}

	claimed, err := repos.Rentals.ClaimedItemIDs(ctx, itemIDs, now, rentalID)
	if err != nil {
		return storeErr("rentals.claimed_items", err)
	}
	free := difference(itemIDs, claimed)
	if len(claimed) > 0 {
		logger.Debug("Items still held by another active rental", "rental_id", rentalID, "item_ids", claimed)
	}
	if _, err := repos.Items.UpdateStatusWhere(ctx, free, domain.ItemStatusOnRent, domain.ItemStatusWorking); err != nil {
		return storeErr("items.update_status", err)
	}
	return nil
}

func (s *bookingService) publish(ctx context.Context, t events.Type, rentalID, orderID string, itemIDs []string) {
	evt := events.New(t)
	evt.RentalID = rentalID
	evt.OrderID = orderID
	evt.ItemIDs = itemIDs
	if err := s.publisher.Publish(ctx, evt); err != nil {
		// The booking is already committed; a lost event only delays downstream refreshes.
		logger.Warn("Failed to publish booking event", "type", t, "error", err)
	}
}

func validateRentalInput(in RentalInput) ([]string, domain.Interval, utils.RentalCostBreakdown, error) {
	itemIDs := dedupe(in.ItemIDs)
	if len(itemIDs) == 0 {
		return nil, domain.Interval{}, utils.RentalCostBreakdown{}, &domain.ValidationError{Field: "item_ids", Reason: "at least one item is required"}
	}
	if strings.TrimSpace(in.ClientID) == "" {
		return nil, domain.Interval{}, utils.RentalCostBreakdown{}, &domain.ValidationError{Field: "client_id", Reason: "is required"}
	}
	for field, v := range map[string]int64{
		"rent_amount_cents": in.RentAmountCents,
		"discount_cents":    in.DiscountCents,
		"amount_paid_cents": in.AmountPaidCents,
	} {
		if v < 0 {
			return nil, domain.Interval{}, utils.RentalCostBreakdown{}, &domain.ValidationError{Field: field, Reason: "must be >= 0"}
		}
	}

	iv, err := domain.NewInterval(in.Start, in.End)
	if err != nil {
		return nil, domain.Interval{}, utils.RentalCostBreakdown{}, err
	}
	cost, err := utils.CalculateRentalCost(iv, in.RentAmountCents, in.DiscountCents)
	if err != nil {
		return nil, domain.Interval{}, utils.RentalCostBreakdown{}, err
	}
	return itemIDs, iv, cost, nil
}

// conflictError returns nil when none of requested appear in booked.
func conflictError(requested, booked []string) error {
	ids := intersect(requested, booked)
	if len(ids) == 0 {
		return nil
	}
	sort.Strings(ids)
	return &domain.ConflictError{ItemIDs: ids}
}

func rentalItemIDs(rentals []domain.Rental) []string {
	var ids []string
	for _, rt := range rentals {
		ids = append(ids, rt.ItemIDs...)
	}
	return ids
}

// storeErr wraps repository failures in domain.StoreError, passing domain errors through.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		conflict   *domain.ConflictError
		validation *domain.ValidationError
		rangeErr   *domain.InvalidRangeError
		storeError *domain.StoreError
	)
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrClientHasRentals),
		errors.As(err, &conflict),
		errors.As(err, &validation),
		errors.As(err, &rangeErr),
		errors.As(err, &storeError):
		return err
	}
	return &domain.StoreError{Op: op, Err: err}
}
