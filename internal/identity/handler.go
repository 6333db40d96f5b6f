package identity

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tradepost-shop/tradepost/internal/platform/httpx"
	"github.com/tradepost-shop/tradepost/internal/shared"
)

// Handler wires HTTP endpoints for account provisioning and login.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	tokens    *TokenIssuer
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, tokens *TokenIssuer) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		tokens:    tokens,
		validator: validator.New(),
	}
}

// MountRoutes registers identity routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/admin-create", h.createAccount(KindAdmin))
	r.Post("/buyer-create", h.createAccount(KindBuyer))
	r.Post("/login", h.login)
	r.Get("/all-users", h.listUsers)
}

func (h *Handler) createAccount(kind AccountKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAccountRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "Invalid data")
			return
		}
		if err := h.validator.Struct(req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "Invalid data")
			return
		}

		user, err := h.service.ProvisionAccount(r.Context(), kind, req.Username, req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, shared.ErrInvalidInput):
				httpx.Error(w, http.StatusBadRequest, "Invalid data")
			case errors.Is(err, shared.ErrAlreadyExists):
				httpx.JSON(w, http.StatusBadRequest, map[string]string{"message": "This username or email already exists"})
			default:
				h.logger.Error("provision account", slog.String("kind", kind.String()), slog.Any("error", err))
				httpx.Error(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			}
			return
		}

		httpx.JSON(w, http.StatusCreated, map[string]any{
			"Message": "User created successfully",
			"user":    newUserResponse(user),
		})
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid data")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid data")
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "Bad email or password")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.logger.Error("issue token", slog.Int64("user_id", user.ID), slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]string{"access_token": token})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, newUserResponse(&users[i]))
	}
	httpx.JSON(w, http.StatusOK, out)
}
