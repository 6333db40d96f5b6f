package catalog_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/tradepost-shop/tradepost/internal/catalog"
	"github.com/tradepost-shop/tradepost/internal/shared"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeRepo struct {
	nextID     int64
	categories map[int64]catalog.Category
	products   map[int64]catalog.Product
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		categories: map[int64]catalog.Category{},
		products:   map[int64]catalog.Product{},
	}
}

func (r *fakeRepo) GetCategory(_ context.Context, id int64) (*catalog.Category, error) {
	cat, ok := r.categories[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &cat, nil
}

func (r *fakeRepo) ListCategories(_ context.Context, parentID *int64) ([]catalog.Category, error) {
	var cats []catalog.Category
	for _, cat := range r.categories {
		if parentID != nil && (cat.ParentID == nil || *cat.ParentID != *parentID) {
			continue
		}
		cats = append(cats, cat)
	}
	return cats, nil
}

func (r *fakeRepo) CreateCategory(_ context.Context, category catalog.Category) (int64, error) {
	r.nextID++
	category.ID = r.nextID
	category.CreatedAt = time.Now().UTC()
	r.categories[category.ID] = category
	return category.ID, nil
}

func (r *fakeRepo) DeleteCategory(_ context.Context, id int64) error {
	if _, ok := r.categories[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *fakeRepo) CountChildCategories(_ context.Context, id int64) (int, error) {
	count := 0
	for _, cat := range r.categories {
		if cat.ParentID != nil && *cat.ParentID == id {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) GetProduct(_ context.Context, id int64) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (r *fakeRepo) ListProducts(_ context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	for _, p := range r.products {
		products = append(products, p)
	}
	return products, nil
}

func (r *fakeRepo) ListProductsByCategory(_ context.Context, categoryID int64) ([]catalog.Product, error) {
	var products []catalog.Product
	for _, p := range r.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			products = append(products, p)
		}
	}
	return products, nil
}

func (r *fakeRepo) CreateProduct(_ context.Context, product catalog.Product) (int64, error) {
	r.nextID++
	product.ID = r.nextID
	product.CreatedAt = time.Now().UTC()
	product.UpdatedAt = product.CreatedAt
	r.products[product.ID] = product
	return product.ID, nil
}

var _ catalog.Repository = (*fakeRepo)(nil)
