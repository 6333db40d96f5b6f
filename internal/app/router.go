package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tradepost-shop/tradepost/internal/catalog"
	"github.com/tradepost-shop/tradepost/internal/identity"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	IdentityHandler *identity.Handler
	CatalogHandler  *catalog.Handler
	AuthMiddleware  identity.Middleware
}

// NewRouter constructs the chi.Router with tradepost defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/users", func(r chi.Router) {
		params.IdentityHandler.MountRoutes(r)
	})
	r.Route("/products", func(r chi.Router) {
		params.CatalogHandler.MountRoutes(r, params.AuthMiddleware)
	})

	return r
}
