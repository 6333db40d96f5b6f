package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradepost-shop/tradepost/internal/shared"
)

// Repository defines persistence operations for the catalog module.
type Repository interface {
	GetCategory(ctx context.Context, id int64) (*Category, error)
	ListCategories(ctx context.Context, parentID *int64) ([]Category, error)
	CreateCategory(ctx context.Context, category Category) (int64, error)
	DeleteCategory(ctx context.Context, id int64) error
	CountChildCategories(ctx context.Context, id int64) (int, error)

	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	ListProductsByCategory(ctx context.Context, categoryID int64) ([]Product, error)
	CreateProduct(ctx context.Context, product Product) (int64, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db dbtx
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) GetCategory(ctx context.Context, id int64) (*Category, error) {
	var cat Category
	err := r.db.QueryRow(ctx, `
		SELECT id, name, parent_id, created_at FROM categories WHERE id = $1`, id,
	).Scan(&cat.ID, &cat.Name, &cat.ParentID, &cat.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cat, nil
}

func (r *repository) ListCategories(ctx context.Context, parentID *int64) ([]Category, error) {
	query := `SELECT id, name, parent_id, created_at FROM categories ORDER BY id`
	args := []interface{}{}
	if parentID != nil {
		query = `SELECT id, name, parent_id, created_at FROM categories WHERE parent_id = $1 ORDER BY id`
		args = append(args, *parentID)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cats []Category
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.ParentID, &cat.CreatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}

func (r *repository) CreateCategory(ctx context.Context, category Category) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO categories (name, parent_id, created_at) VALUES ($1, $2, $3)
		RETURNING id`,
		category.Name, category.ParentID, time.Now().UTC(),
	).Scan(&id)
	return id, err
}

func (r *repository) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) CountChildCategories(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories WHERE parent_id = $1`, id).Scan(&count)
	return count, err
}

const productColumns = `id, category_id, name, title, price, created_at, updated_at`

func (r *repository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id).Scan(
		&p.ID, &p.CategoryID, &p.Name, &p.Title, &p.Price, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) listProducts(ctx context.Context, query string, args ...interface{}) ([]Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Title, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) ListProducts(ctx context.Context) ([]Product, error) {
	return r.listProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
}

func (r *repository) ListProductsByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	return r.listProducts(ctx, `SELECT `+productColumns+` FROM products WHERE category_id = $1 ORDER BY id`, categoryID)
}

func (r *repository) CreateProduct(ctx context.Context, product Product) (int64, error) {
	now := time.Now().UTC()
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO products (category_id, name, title, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id`,
		product.CategoryID, product.Name, product.Title, product.Price, now,
	).Scan(&id)
	return id, err
}

var _ Repository = (*repository)(nil)
