package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tradepost-shop/tradepost/internal/platform/httpx"
	"github.com/tradepost-shop/tradepost/internal/shared"
)

// Handler wires HTTP endpoints for the product catalog.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid data")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid data")
		return
	}

	category, err := h.service.CreateCategory(r.Context(), req)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "Parent category not found")
			return
		}
		h.logger.Error("create category", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]any{
		"Message":  "Category created successfully",
		"category": newCategoryResponse(category),
	})
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	var parentID *int64
	if raw := r.URL.Query().Get("parent_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "Invalid data")
			return
		}
		parentID = &parsed
	}

	categories, err := h.service.ListCategories(r.Context(), parentID)
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	out := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, newCategoryResponse(&categories[i]))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid data")
		return
	}

	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			httpx.Error(w, http.StatusNotFound, "Category not found")
		case errors.Is(err, ErrCategoryHasChildren):
			httpx.Error(w, http.StatusBadRequest, "Category has child categories. Please remove child categories first")
		default:
			h.logger.Error("delete category", slog.Int64("id", id), slog.Any("error", err))
			httpx.Error(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]string{"Message": "Category deleted successfully"})
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid data")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid data")
		return
	}

	product, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "Category id not found")
			return
		}
		h.logger.Error("create product", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]any{
		"Message": "Product created successfully",
		"product": newProductResponse(product),
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, newProductResponse(&products[i]))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) productsByCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid data")
		return
	}

	category, products, err := h.service.ProductsByCategory(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "Category not found")
			return
		}
		h.logger.Error("products by category", slog.Int64("id", id), slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, newProductResponse(&products[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"category": category.Name,
		"products": out,
	})
}

func (h *Handler) exportProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("export products", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="product_list.csv"`)
	if err := WriteSheet(w, products); err != nil {
		h.logger.Error("write product sheet", slog.Any("error", err))
	}
}
