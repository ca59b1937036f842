//go:build integration

package service_test

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"rentdesk-backend/internal/config"
	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/events"
	"rentdesk-backend/internal/repository/postgres"
	"rentdesk-backend/internal/service"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configPath string

func init() {
	flag.StringVar(&configPath, "config", "config/config.test.yaml", "path to config file")
}

func prepareDB(t *testing.T) *sql.DB {
	// Ensure flags are parsed
	if !flag.Parsed() {
		flag.Parse()
	}

	// Logic to handle running from root vs package dir
	finalPath := configPath
	if _, err := os.Stat(finalPath); os.IsNotExist(err) {
		altPath := filepath.Join("..", "..", configPath)
		if _, err := os.Stat(altPath); err == nil {
			finalPath = altPath
		}
	}

	cfg, err := config.Load(finalPath)
	if err != nil {
		t.Fatalf("failed to load config from %s: %v", finalPath, err)
	}

	var db *sql.DB
	// Retry connection as DB might still be starting up
	for i := 0; i < 10; i++ {
		db, err = sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err == nil {
			if err = db.Ping(); err == nil {
				require.NoError(t, postgres.Migrate(db))
				return db
			}
		}
		time.Sleep(2 * time.Second)
	}
	t.Fatalf("failed to connect to database: %v", err)
	return nil
}

func TestBooking_Integration(t *testing.T) {
	db := prepareDB(t)
	defer db.Close()

	ctx := context.Background()
	store := postgres.NewStore(db)
	items := service.NewItemService(store.ItemRepository)
	clients := service.NewClientService(store.ClientRepository, store.RentalRepository)

	start := time.Now().Add(-time.Hour).Truncate(time.Second)
	end := start.Add(48 * time.Hour)

	item := &domain.Item{Name: "Integration camera", RentAmountCents: 1000, PurchaseDate: start}
	require.NoError(t, items.CreateItem(ctx, item))
	client := &domain.Client{Name: "Integration client", Mobile: "555-" + item.ID[:8]}
	require.NoError(t, clients.CreateClient(ctx, client))

	t.Run("ConcurrentCommitsOneWins", func(t *testing.T) {
		booking := service.NewBookingService(store, store.ItemRepository, store.RentalRepository, store.OrderRepository, events.NopPublisher{})
		in := service.RentalInput{ItemIDs: []string{item.ID}, ClientID: client.ID, Start: start, End: end, RentAmountCents: 1000}

		const attempts = 5
		var wg sync.WaitGroup
		errs := make([]error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = booking.CommitRental(ctx, in)
			}(i)
		}
		wg.Wait()

		var ok, conflicts int
		for _, err := range errs {
			var conflict *domain.ConflictError
			switch {
			case err == nil:
				ok++
			case errors.As(err, &conflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, ok)
		assert.Equal(t, attempts-1, conflicts)

		got, err := items.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ItemStatusOnRent, got.Status)

		available, err := booking.FindAvailableItems(ctx, start, end)
		require.NoError(t, err)
		for _, it := range available {
			assert.NotEqual(t, item.ID, it.ID)
		}
	})

	newItem := func(t *testing.T, name string) *domain.Item {
		it := &domain.Item{Name: name, RentAmountCents: 1000, PurchaseDate: start}
		require.NoError(t, items.CreateItem(ctx, it))
		return it
	}
	statusOf := func(t *testing.T, id string) domain.ItemStatus {
		it, err := items.GetItem(ctx, id)
		require.NoError(t, err)
		return it.Status
	}

	t.Run("ReturnSurvivesSync", func(t *testing.T) {
		booking := service.NewBookingService(store, store.ItemRepository, store.RentalRepository, store.OrderRepository, events.NopPublisher{})
		kept := newItem(t, "Integration tripod")
		returned := newItem(t, "Integration lens")

		rental, err := booking.CommitRental(ctx, service.RentalInput{
			ItemIDs: []string{kept.ID, returned.ID}, ClientID: client.ID, Start: start, End: end, RentAmountCents: 1000,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ItemStatusOnRent, statusOf(t, returned.ID))

		require.NoError(t, booking.ReturnRental(ctx, rental.ID, []string{returned.ID}))
		assert.Equal(t, domain.ItemStatusWorking, statusOf(t, returned.ID))

		_, err = booking.SyncItemStatuses(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.ItemStatusWorking, statusOf(t, returned.ID))
		assert.Equal(t, domain.ItemStatusOnRent, statusOf(t, kept.ID))
	})

	t.Run("FutureRentalActivatesOnceThenReturns", func(t *testing.T) {
		booking := service.NewBookingService(store, store.ItemRepository, store.RentalRepository, store.OrderRepository, events.NopPublisher{})
		later := time.Now().Add(3 * time.Hour)
		afterStart := service.NewBookingService(store, store.ItemRepository, store.RentalRepository, store.OrderRepository, events.NopPublisher{},
			service.WithClock(func() time.Time { return later }))
		lens := newItem(t, "Integration flash")

		rental, err := booking.CommitRental(ctx, service.RentalInput{
			ItemIDs: []string{lens.ID}, ClientID: client.ID, Start: time.Now().Add(2 * time.Hour), End: time.Now().Add(26 * time.Hour), RentAmountCents: 1000,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ItemStatusWorking, statusOf(t, lens.ID))

		_, err = afterStart.SyncItemStatuses(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.ItemStatusOnRent, statusOf(t, lens.ID))

		require.NoError(t, afterStart.ReturnRental(ctx, rental.ID, []string{lens.ID}))
		_, err = afterStart.SyncItemStatuses(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.ItemStatusWorking, statusOf(t, lens.ID))
	})

	t.Run("CompletionSurvivesSync", func(t *testing.T) {
		booking := service.NewBookingService(store, store.ItemRepository, store.RentalRepository, store.OrderRepository, events.NopPublisher{})
		body := newItem(t, "Integration body")

		rental, err := booking.CommitRental(ctx, service.RentalInput{
			ItemIDs: []string{body.ID}, ClientID: client.ID, Start: start, End: end, RentAmountCents: 1000,
		})
		require.NoError(t, err)
		require.NoError(t, booking.CompleteRental(ctx, rental.ID, ""))

		_, err = booking.SyncItemStatuses(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.ItemStatusWorking, statusOf(t, body.ID))
	})

	t.Run("ClientWithRentalsCannotBeDeleted", func(t *testing.T) {
		assert.ErrorIs(t, clients.DeleteClient(ctx, client.ID), domain.ErrClientHasRentals)
	})
}
