package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/repository"

	"github.com/lib/pq"
)

const orderSelect = `SELECT o.id, o.customer_name, o.start_date, o.end_date, o.target_rent_amount_cents, o.created_on,
	        ARRAY(SELECT oi.item_id FROM order_items oi WHERE oi.order_id = o.id ORDER BY oi.position)
	        FROM orders o`

type orderRepository struct {
	db querier
}

func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func scanOrder(s rowScanner) (domain.Order, error) {
	var o domain.Order
	err := s.Scan(&o.ID, &o.CustomerName, &o.Start, &o.End, &o.TargetRentAmountCents, &o.CreatedOn, pq.Array(&o.ItemIDs))
	return o, err
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *orderRepository) Create(ctx context.Context, o *domain.Order) error {
	now := time.Now()
	query := `INSERT INTO orders (id, customer_name, start_date, end_date, target_rent_amount_cents, created_on) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query, o.ID, o.CustomerName, o.Start, o.End, o.TargetRentAmountCents, now); err != nil {
		return translateError(err)
	}

	itemsQuery := `INSERT INTO order_items (order_id, item_id, position)
	               SELECT $1, t.item_id, t.ord FROM unnest($2::text[]) WITH ORDINALITY AS t(item_id, ord)`
	if _, err := r.db.ExecContext(ctx, itemsQuery, o.ID, pq.Array(o.ItemIDs)); err != nil {
		return translateError(err)
	}
	o.CreatedOn = now
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, orderSelect+` WHERE o.id = $1`, id))
	if err != nil {
		return nil, translateError(err)
	}
	return &o, nil
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	return expectRows(res)
}

func (r *orderRepository) List(ctx context.Context) ([]domain.Order, error) {
	return r.queryOrders(ctx, orderSelect+` ORDER BY o.created_on DESC`)
}

func (r *orderRepository) FindOverlapping(ctx context.Context, iv domain.Interval, itemIDs []string) ([]domain.Order, error) {
	query := orderSelect + ` WHERE o.start_date <= $1 AND o.end_date >= $2`
	args := []any{iv.End, iv.Start}

	if len(itemIDs) > 0 {
		query += " AND EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = o.id AND oi.item_id = ANY($3))"
		args = append(args, pq.Array(itemIDs))
	}
	query += " ORDER BY o.start_date"

	return r.queryOrders(ctx, query, args...)
}
