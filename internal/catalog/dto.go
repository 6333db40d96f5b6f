package catalog

import "time"

type CreateCategoryRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	ParentID *int64 `json:"parent_id,omitempty" validate:"omitempty,gt=0"`
}

type CreateProductRequest struct {
	CategoryID *int64 `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	Name       string `json:"name" validate:"required,max=150"`
	Title      string `json:"title" validate:"required,max=150"`
	Price      int64  `json:"price" validate:"required,gt=0"`
}

type CategoryResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ParentID  *int64 `json:"parent_id"`
	CreatedAt string `json:"created_at"`
}

type ProductResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	CreatedAt string `json:"created_at"`
}

func newCategoryResponse(c *Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		ParentID:  c.ParentID,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func newProductResponse(p *Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Title:     p.Title,
		Price:     p.Price,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
}
