package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/logger"
	"rentdesk-backend/internal/repository"

	"github.com/lib/pq"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

type Store struct {
	db *sql.DB
	repository.ItemRepository
	repository.RentalRepository
	repository.OrderRepository
	repository.ClientRepository
	repository.CatalogRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                db,
		ItemRepository:    NewItemRepository(db),
		RentalRepository:  NewRentalRepository(db),
		OrderRepository:   NewOrderRepository(db),
		ClientRepository:  NewClientRepository(db),
		CatalogRepository: NewCatalogRepository(db),
	}
}

// WithinTx implements repository.Transactor.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	repos := repository.Repositories{
		Items:   &itemRepository{db: tx},
		Rentals: &rentalRepository{db: tx},
		Orders:  &orderRepository{db: tx},
		Clients: &clientRepository{db: tx},
		Locker:  &itemLocker{db: tx},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// itemLocker takes transaction-scoped advisory locks, one per item, in sorted id order so
// concurrent bookings over overlapping item sets cannot deadlock.
type itemLocker struct {
	db querier
}

func NewItemLocker(db *sql.Tx) repository.ItemLocker {
	return &itemLocker{db: db}
}

func (l *itemLocker) LockItems(ctx context.Context, itemIDs []string) error {
	ids := append([]string(nil), itemIDs...)
	sort.Strings(ids)

	for i, id := range ids {
		if i > 0 && ids[i-1] == id {
			continue
		}
		logger.DatabaseCall("LockItems", "pg_advisory_xact_lock", "item_id", id)
		if _, err := l.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, id); err != nil {
			return translateError(err)
		}
	}
	return nil
}

// translateError maps driver errors onto domain errors where the caller can act on them.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return &domain.ValidationError{Field: pqErr.Constraint, Reason: "already exists"}
		case "23503": // foreign_key_violation
			return &domain.ValidationError{Field: pqErr.Constraint, Reason: "references a missing or still-used record"}
		case "23514": // check_violation
			return &domain.ValidationError{Field: pqErr.Constraint, Reason: "violates check constraint"}
		}
	}
	return err
}

func expectRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
