package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/repository"
)

// catalogRepository stores brands and categories; both are plain named lookup tables.
type catalogRepository struct {
	db querier
}

func NewCatalogRepository(db *sql.DB) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) create(ctx context.Context, table, id, name string) (time.Time, error) {
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `INSERT INTO `+table+` (id, name, created_on) VALUES ($1, $2, $3)`, id, name, now)
	return now, translateError(err)
}

func (r *catalogRepository) rename(ctx context.Context, table, id, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE `+table+` SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return translateError(err)
	}
	return expectRows(res)
}

func (r *catalogRepository) delete(ctx context.Context, table, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	return expectRows(res)
}

func (r *catalogRepository) list(ctx context.Context, table string, fn func(id, name string, created time.Time)) error {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_on FROM `+table+` ORDER BY name ASC`)
	if err != nil {
		return translateError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		var created time.Time
		if err := rows.Scan(&id, &name, &created); err != nil {
			return err
		}
		fn(id, name, created)
	}
	return rows.Err()
}

func (r *catalogRepository) CreateBrand(ctx context.Context, b *domain.Brand) error {
	created, err := r.create(ctx, "brands", b.ID, b.Name)
	if err != nil {
		return err
	}
	b.CreatedOn = created
	return nil
}

func (r *catalogRepository) UpdateBrand(ctx context.Context, b *domain.Brand) error {
	return r.rename(ctx, "brands", b.ID, b.Name)
}

func (r *catalogRepository) DeleteBrand(ctx context.Context, id string) error {
	return r.delete(ctx, "brands", id)
}

func (r *catalogRepository) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	var brands []domain.Brand
	err := r.list(ctx, "brands", func(id, name string, created time.Time) {
		brands = append(brands, domain.Brand{ID: id, Name: name, CreatedOn: created})
	})
	return brands, err
}

func (r *catalogRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	created, err := r.create(ctx, "categories", c.ID, c.Name)
	if err != nil {
		return err
	}
	c.CreatedOn = created
	return nil
}

func (r *catalogRepository) UpdateCategory(ctx context.Context, c *domain.Category) error {
	return r.rename(ctx, "categories", c.ID, c.Name)
}

func (r *catalogRepository) DeleteCategory(ctx context.Context, id string) error {
	return r.delete(ctx, "categories", id)
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	err := r.list(ctx, "categories", func(id, name string, created time.Time) {
		categories = append(categories, domain.Category{ID: id, Name: name, CreatedOn: created})
	})
	return categories, err
}
