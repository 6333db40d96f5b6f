package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/tradepost-shop/tradepost/internal/shared"
)

// ErrCategoryHasChildren blocks deletion of a category that still has children.
var ErrCategoryHasChildren = errors.New("category has child categories")

// Service wraps catalog business rules.
type Service struct {
	repo   Repository
	export *Exporter
}

// NewService constructs a new Service. export may be nil to disable the
// spreadsheet sink.
func NewService(repo Repository, export *Exporter) *Service {
	return &Service{repo: repo, export: export}
}

// CreateCategory creates a category, validating the parent when given.
func (s *Service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	if req.ParentID != nil {
		if _, err := s.repo.GetCategory(ctx, *req.ParentID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent category", shared.ErrNotFound)
			}
			return nil, fmt.Errorf("check parent category: %w", err)
		}
	}

	category := Category{Name: req.Name, ParentID: req.ParentID}
	id, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return s.repo.GetCategory(ctx, id)
}

// ListCategories returns categories, optionally filtered by parent.
func (s *Service) ListCategories(ctx context.Context, parentID *int64) ([]Category, error) {
	return s.repo.ListCategories(ctx, parentID)
}

// DeleteCategory removes a category. Categories with children must be
// emptied first.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := s.repo.GetCategory(ctx, id); err != nil {
		return err
	}
	children, err := s.repo.CountChildCategories(ctx, id)
	if err != nil {
		return fmt.Errorf("count child categories: %w", err)
	}
	if children > 0 {
		return ErrCategoryHasChildren
	}
	return s.repo.DeleteCategory(ctx, id)
}

// CreateProduct creates a product, validating the category when given. The
// created product is appended to the export sink out of band; a sink failure
// never fails the request.
func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if req.CategoryID != nil {
		if _, err := s.repo.GetCategory(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, fmt.Errorf("%w: category", shared.ErrNotFound)
			}
			return nil, fmt.Errorf("check category: %w", err)
		}
	}

	product := Product{
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Title:      req.Title,
		Price:      req.Price,
	}
	id, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	created, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.export != nil {
		s.export.Append(*created)
	}
	return created, nil
}

// ListProducts returns the full product list.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.repo.ListProducts(ctx)
}

// ProductsByCategory returns the category together with its products.
// An empty category is reported as not found, matching the public API.
func (s *Service) ProductsByCategory(ctx context.Context, categoryID int64) (*Category, []Product, error) {
	category, err := s.repo.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, nil, err
	}
	products, err := s.repo.ListProductsByCategory(ctx, categoryID)
	if err != nil {
		return nil, nil, err
	}
	if len(products) == 0 {
		return nil, nil, fmt.Errorf("%w: no products in category", shared.ErrNotFound)
	}
	return category, products, nil
}
