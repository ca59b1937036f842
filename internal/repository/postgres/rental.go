package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/repository"

	"github.com/lib/pq"
)

const rentalSelect = `SELECT r.id, r.client_id, r.start_date, r.end_date, r.days, r.rent_amount_cents, r.discount_cents, r.total_payment_cents,
	        r.amount_paid_cents, COALESCE(r.payment_type, ''), COALESCE(r.description, ''), r.status, r.receipt_no, r.notes, r.created_on, r.updated_on,
	        ARRAY(SELECT ri.item_id FROM rental_items ri WHERE ri.rental_id = r.id ORDER BY ri.position),
	        c.id, c.name, c.mobile, COALESCE(c.address, ''), COALESCE(c.reference, ''), c.created_on
	        FROM rentals r JOIN clients c ON c.id = r.client_id`

type rentalRepository struct {
	db querier
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func scanRental(s rowScanner) (domain.Rental, error) {
	var rt domain.Rental
	var c domain.Client
	var status string
	err := s.Scan(&rt.ID, &rt.ClientID, &rt.Start, &rt.End, &rt.Days, &rt.RentAmountCents, &rt.DiscountCents, &rt.TotalPaymentCents,
		&rt.AmountPaidCents, &rt.PaymentType, &rt.Description, &status, &rt.ReceiptNo, &rt.Notes, &rt.CreatedOn, &rt.UpdatedOn,
		pq.Array(&rt.ItemIDs),
		&c.ID, &c.Name, &c.Mobile, &c.Address, &c.Reference, &c.CreatedOn)
	rt.Status = domain.RentalStatus(status)
	rt.Client = &c
	return rt, err
}

func (r *rentalRepository) queryRentals(ctx context.Context, query string, args ...any) ([]domain.Rental, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, rt)
	}
	return rentals, rows.Err()
}

func (r *rentalRepository) replaceItems(ctx context.Context, rentalID string, itemIDs []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM rental_items WHERE rental_id = $1`, rentalID); err != nil {
		return translateError(err)
	}
	query := `INSERT INTO rental_items (rental_id, item_id, position)
	          SELECT $1, t.item_id, t.ord FROM unnest($2::text[]) WITH ORDINALITY AS t(item_id, ord)`
	_, err := r.db.ExecContext(ctx, query, rentalID, pq.Array(itemIDs))
	return translateError(err)
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	now := time.Now()
	query := `INSERT INTO rentals (id, client_id, start_date, end_date, days, rent_amount_cents, discount_cents, total_payment_cents, amount_paid_cents, payment_type, description, status, receipt_no, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)`
	_, err := r.db.ExecContext(ctx, query, rt.ID, rt.ClientID, rt.Start, rt.End, rt.Days, rt.RentAmountCents, rt.DiscountCents,
		rt.TotalPaymentCents, rt.AmountPaidCents, nullString(rt.PaymentType), nullString(rt.Description), string(rt.Status), rt.ReceiptNo, now)
	if err != nil {
		return translateError(err)
	}
	if err := r.replaceItems(ctx, rt.ID, rt.ItemIDs); err != nil {
		return err
	}
	rt.CreatedOn, rt.UpdatedOn = now, now
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	rt, err := scanRental(r.db.QueryRowContext(ctx, rentalSelect+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, translateError(err)
	}
	return &rt, nil
}

// Update rewrites the booking fields and replaces the item set wholesale.
func (r *rentalRepository) Update(ctx context.Context, rt *domain.Rental) error {
	now := time.Now()
	query := `UPDATE rentals SET client_id=$1, start_date=$2, end_date=$3, days=$4, rent_amount_cents=$5, discount_cents=$6, total_payment_cents=$7,
	          amount_paid_cents=$8, payment_type=$9, description=$10, updated_on=$11 WHERE id=$12`
	res, err := r.db.ExecContext(ctx, query, rt.ClientID, rt.Start, rt.End, rt.Days, rt.RentAmountCents, rt.DiscountCents, rt.TotalPaymentCents,
		rt.AmountPaidCents, nullString(rt.PaymentType), nullString(rt.Description), now, rt.ID)
	if err != nil {
		return translateError(err)
	}
	if err := expectRows(res); err != nil {
		return err
	}
	if err := r.replaceItems(ctx, rt.ID, rt.ItemIDs); err != nil {
		return err
	}
	rt.UpdatedOn = now
	return nil
}

func (r *rentalRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rentals WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	return expectRows(res)
}

func (r *rentalRepository) Complete(ctx context.Context, id string, notes *string) error {
	query := `UPDATE rentals SET status = $1, notes = $2, updated_on = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, string(domain.RentalStatusCompleted), notes, time.Now(), id)
	if err != nil {
		return translateError(err)
	}
	return expectRows(res)
}

func (r *rentalRepository) List(ctx context.Context) ([]domain.Rental, error) {
	return r.queryRentals(ctx, rentalSelect+` ORDER BY r.created_on DESC`)
}

func (r *rentalRepository) ListStartedBetween(ctx context.Context, from, to time.Time) ([]domain.Rental, error) {
	query := rentalSelect + ` WHERE r.start_date >= $1 AND r.start_date <= $2 ORDER BY r.start_date`
	return r.queryRentals(ctx, query, from, to)
}

func (r *rentalRepository) CountByClient(ctx context.Context, clientID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM rentals WHERE client_id = $1`, clientID).Scan(&count)
	if err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

func (r *rentalRepository) FindOverlapping(ctx context.Context, iv domain.Interval, itemIDs []string, excludeID string) ([]domain.Rental, error) {
	query := rentalSelect + ` WHERE r.start_date <= $1 AND r.end_date >= $2`
	args := []any{iv.End, iv.Start}
	argIdx := 3

	if len(itemIDs) > 0 {
		query += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM rental_items ri WHERE ri.rental_id = r.id AND ri.item_id = ANY($%d))", argIdx)
		args = append(args, pq.Array(itemIDs))
		argIdx++
	}
	if excludeID != "" {
		query += fmt.Sprintf(" AND r.id <> $%d", argIdx)
		args = append(args, excludeID)
	}
	query += " ORDER BY r.start_date"

	return r.queryRentals(ctx, query, args...)
}

func (r *rentalRepository) ClaimedItemIDs(ctx context.Context, itemIDs []string, at time.Time, excludeID string) ([]string, error) {
	query := `SELECT DISTINCT ri.item_id FROM rental_items ri JOIN rentals r ON r.id = ri.rental_id
	          WHERE r.status <> $1 AND r.start_date <= $2 AND r.end_date >= $2 AND ri.returned_on IS NULL`
	args := []any{string(domain.RentalStatusCompleted), at}
	argIdx := 3

	if len(itemIDs) > 0 {
		query += fmt.Sprintf(" AND ri.item_id = ANY($%d)", argIdx)
		args = append(args, pq.Array(itemIDs))
		argIdx++
	}
	if excludeID != "" {
		query += fmt.Sprintf(" AND r.id <> $%d", argIdx)
		args = append(args, excludeID)
	}
	query += " ORDER BY ri.item_id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *rentalRepository) MarkActivated(ctx context.Context, rentalID string, at time.Time) error {
	query := `UPDATE rental_items SET activated_on = $2
	          WHERE rental_id = $1 AND activated_on IS NULL AND returned_on IS NULL`
	_, err := r.db.ExecContext(ctx, query, rentalID, at)
	return translateError(err)
}

func (r *rentalRepository) MarkReturned(ctx context.Context, rentalID string, itemIDs []string, at time.Time) error {
	if len(itemIDs) == 0 {
		return nil
	}
	query := `UPDATE rental_items SET returned_on = $3
	          WHERE rental_id = $1 AND item_id = ANY($2) AND returned_on IS NULL`
	_, err := r.db.ExecContext(ctx, query, rentalID, pq.Array(itemIDs), at)
	return translateError(err)
}
