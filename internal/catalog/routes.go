package catalog

import (
	"github.com/go-chi/chi/v5"

	"github.com/tradepost-shop/tradepost/internal/identity"
)

// MountRoutes registers catalog routes on the provided router. Product
// creation and export are restricted to authenticated admins; the rest of
// the catalog is public.
func (h *Handler) MountRoutes(r chi.Router, auth identity.Middleware) {
	r.Post("/categories", h.createCategory)
	r.Get("/categories", h.listCategories)
	r.Delete("/categories/{id}", h.deleteCategory)
	r.Get("/product-list", h.listProducts)
	r.Get("/category/{id}/products", h.productsByCategory)

	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(auth.RequireRole(string(identity.KindAdmin)))
		r.Post("/product-create", h.createProduct)
		r.Get("/product-export", h.exportProducts)
	})
}
