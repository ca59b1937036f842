package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/repository"
)

type clientRepository struct {
	db querier
}

func NewClientRepository(db *sql.DB) repository.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, c *domain.Client) error {
	now := time.Now()
	query := `INSERT INTO clients (id, name, mobile, address, reference, created_on) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Mobile, nullString(c.Address), nullString(c.Reference), now)
	if err != nil {
		return translateError(err)
	}
	c.CreatedOn = now
	return nil
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	c := &domain.Client{}
	query := `SELECT id, name, mobile, COALESCE(address, ''), COALESCE(reference, ''), created_on FROM clients WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Mobile, &c.Address, &c.Reference, &c.CreatedOn)
	if err != nil {
		return nil, translateError(err)
	}
	return c, nil
}

func (r *clientRepository) Update(ctx context.Context, c *domain.Client) error {
	query := `UPDATE clients SET name=$1, mobile=$2, address=$3, reference=$4 WHERE id=$5`
	res, err := r.db.ExecContext(ctx, query, c.Name, c.Mobile, nullString(c.Address), nullString(c.Reference), c.ID)
	if err != nil {
		return translateError(err)
	}
	return expectRows(res)
}

func (r *clientRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	return expectRows(res)
}

func (r *clientRepository) List(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, mobile, COALESCE(address, ''), COALESCE(reference, ''), created_on FROM clients ORDER BY name ASC`)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Mobile, &c.Address, &c.Reference, &c.CreatedOn); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}
