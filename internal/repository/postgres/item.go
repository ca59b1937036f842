package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/repository"

	"github.com/lib/pq"
)

const itemColumns = `id, name, category_id, brand_id, status, purchase_date, sold_date, real_price_cents, paid_price_cents, sold_price_cents, rent_amount_cents, serial_no, description, images, created_on, updated_on`

type itemRepository struct {
	db querier
}

func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

func scanItem(s rowScanner) (domain.Item, error) {
	var it domain.Item
	var status string
	err := s.Scan(&it.ID, &it.Name, &it.CategoryID, &it.BrandID, &status, &it.PurchaseDate, &it.SoldDate,
		&it.RealPriceCents, &it.PaidPriceCents, &it.SoldPriceCents, &it.RentAmountCents, &it.SerialNo,
		&it.Description, pq.Array(&it.Images), &it.CreatedOn, &it.UpdatedOn)
	it.Status = domain.ItemStatus(status)
	if it.Images == nil {
		it.Images = []string{}
	}
	return it, err
}

func (r *itemRepository) queryItems(ctx context.Context, query string, args ...any) ([]domain.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *itemRepository) Create(ctx context.Context, it *domain.Item) error {
	now := time.Now()
	query := `INSERT INTO items (id, name, category_id, brand_id, status, purchase_date, sold_date, real_price_cents, paid_price_cents, sold_price_cents, rent_amount_cents, serial_no, description, images, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)`
	_, err := r.db.ExecContext(ctx, query, it.ID, it.Name, it.CategoryID, it.BrandID, string(it.Status), it.PurchaseDate, it.SoldDate,
		it.RealPriceCents, it.PaidPriceCents, it.SoldPriceCents, it.RentAmountCents, it.SerialNo, it.Description, pq.Array(it.Images), now)
	if err != nil {
		return translateError(err)
	}
	it.CreatedOn, it.UpdatedOn = now, now
	return nil
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	it, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return &it, nil
}

func (r *itemRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ANY($1) ORDER BY created_on DESC`
	return r.queryItems(ctx, query, pq.Array(ids))
}

func (r *itemRepository) Update(ctx context.Context, it *domain.Item) error {
	now := time.Now()
	query := `UPDATE items SET name=$1, category_id=$2, brand_id=$3, status=$4, purchase_date=$5, sold_date=$6, real_price_cents=$7, paid_price_cents=$8,
	          sold_price_cents=$9, rent_amount_cents=$10, serial_no=$11, description=$12, images=$13, updated_on=$14 WHERE id=$15`
	res, err := r.db.ExecContext(ctx, query, it.Name, it.CategoryID, it.BrandID, string(it.Status), it.PurchaseDate, it.SoldDate,
		it.RealPriceCents, it.PaidPriceCents, it.SoldPriceCents, it.RentAmountCents, it.SerialNo, it.Description, pq.Array(it.Images), now, it.ID)
	if err != nil {
		return translateError(err)
	}
	it.UpdatedOn = now
	return expectRows(res)
}

func (r *itemRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	return expectRows(res)
}

func (r *itemRepository) List(ctx context.Context) ([]domain.Item, error) {
	return r.queryItems(ctx, `SELECT `+itemColumns+` FROM items ORDER BY created_on DESC`)
}

func (r *itemRepository) ListByStatusNotIn(ctx context.Context, statuses []domain.ItemStatus) ([]domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE NOT (status = ANY($1)) ORDER BY created_on DESC`
	return r.queryItems(ctx, query, pq.Array(statusStrings(statuses)))
}

func (r *itemRepository) CountByStatus(ctx context.Context) (map[domain.ItemStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, count(*) FROM items GROUP BY status`)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	counts := make(map[domain.ItemStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[domain.ItemStatus(status)] = n
	}
	return counts, rows.Err()
}

func (r *itemRepository) UpdateStatus(ctx context.Context, ids []string, status domain.ItemStatus) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE items SET status = $1, updated_on = $2 WHERE id = ANY($3)`
	_, err := r.db.ExecContext(ctx, query, string(status), time.Now(), pq.Array(ids))
	return translateError(err)
}

func (r *itemRepository) UpdateStatusWhere(ctx context.Context, ids []string, from, to domain.ItemStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `UPDATE items SET status = $1, updated_on = $2 WHERE id = ANY($3) AND status = $4`
	res, err := r.db.ExecContext(ctx, query, string(to), time.Now(), pq.Array(ids), string(from))
	if err != nil {
		return 0, translateError(err)
	}
	return res.RowsAffected()
}

// SyncRentedStatus puts items of rentals that came into force since their commit on rent,
// once per rental item, and returns on-rent items nothing holds any more to working.
// Returned rows never hold their item.
func (r *itemRepository) SyncRentedStatus(ctx context.Context, at time.Time) (int64, int64, error) {
	activate := `UPDATE items SET status = $1, updated_on = $3 WHERE status = $2 AND id IN (
	                 SELECT ri.item_id FROM rental_items ri JOIN rentals r ON r.id = ri.rental_id
	                 WHERE r.status <> $4 AND r.start_date <= $3 AND r.end_date >= $3
	                   AND ri.activated_on IS NULL AND ri.returned_on IS NULL)`
	res, err := r.db.ExecContext(ctx, activate, string(domain.ItemStatusOnRent), string(domain.ItemStatusWorking), at, string(domain.RentalStatusCompleted))
	if err != nil {
		return 0, 0, translateError(err)
	}
	activated, err := res.RowsAffected()
	if err != nil {
		return 0, 0, err
	}

	stamp := `UPDATE rental_items ri SET activated_on = $1 FROM rentals r
	          WHERE r.id = ri.rental_id AND r.status <> $2 AND r.start_date <= $1 AND r.end_date >= $1
	            AND ri.activated_on IS NULL AND ri.returned_on IS NULL`
	if _, err := r.db.ExecContext(ctx, stamp, at, string(domain.RentalStatusCompleted)); err != nil {
		return activated, 0, translateError(err)
	}

	release := `UPDATE items SET status = $1, updated_on = $3 WHERE status = $2 AND id NOT IN (
	                SELECT ri.item_id FROM rental_items ri JOIN rentals r ON r.id = ri.rental_id
	                WHERE r.status <> $4 AND r.start_date <= $3 AND r.end_date >= $3 AND ri.returned_on IS NULL)`
	res, err = r.db.ExecContext(ctx, release, string(domain.ItemStatusWorking), string(domain.ItemStatusOnRent), at, string(domain.RentalStatusCompleted))
	if err != nil {
		return activated, 0, translateError(err)
	}
	released, err := res.RowsAffected()
	return activated, released, err
}

func statusStrings(statuses []domain.ItemStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
