package identity_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepost-shop/tradepost/internal/identity"
	_ "github.com/tradepost-shop/tradepost/testing"
)

func newIdentityRouter(t *testing.T) (http.Handler, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	service := identity.NewService(repo)
	tokens := identity.NewTokenIssuer("test-secret", time.Hour)
	handler := identity.NewHandler(testLogger(), service, tokens)

	r := chi.NewRouter()
	r.Route("/users", func(r chi.Router) {
		handler.MountRoutes(r)
	})
	return r, repo
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestAdminCreate(t *testing.T) {
	router, _ := newIdentityRouter(t)

	res := postJSON(t, router, "/users/admin-create",
		`{"username":"admin","email":"admin@mail.ru","password":"admin12345"}`)
	require.Equal(t, http.StatusCreated, res.Code)

	var body struct {
		Message string `json:"Message"`
		User    struct {
			Username  string `json:"username"`
			Email     string `json:"email"`
			CreatedAt string `json:"created_at"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, "User created successfully", body.Message)
	assert.Equal(t, "admin", body.User.Username)
	_, err := time.Parse(time.RFC3339, body.User.CreatedAt)
	assert.NoError(t, err)
}

func TestAdminCreateDuplicate(t *testing.T) {
	router, _ := newIdentityRouter(t)

	payload := `{"username":"admin","email":"admin@mail.ru","password":"admin12345"}`
	first := postJSON(t, router, "/users/admin-create", payload)
	require.Equal(t, http.StatusCreated, first.Code)

	second := postJSON(t, router, "/users/admin-create", payload)
	require.Equal(t, http.StatusBadRequest, second.Code)
	assert.Contains(t, second.Body.String(), "already exists")
}

func TestAdminCreateInvalidData(t *testing.T) {
	router, _ := newIdentityRouter(t)

	res := postJSON(t, router, "/users/admin-create",
		`{"username":"admin","email":"admin@mail.ru"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, "Invalid data", body["error"])
}

// A short password is still a valid password; length policy is not enforced here.
func TestAdminCreateShortPassword(t *testing.T) {
	router, _ := newIdentityRouter(t)

	res := postJSON(t, router, "/users/admin-create",
		`{"username":"admin","email":"admin@mail.ru","password":"pw"}`)
	require.Equal(t, http.StatusCreated, res.Code)
}

// Server-side failures must not leak internals to the client.
func TestAdminCreateStoreFailureHidesCause(t *testing.T) {
	router, repo := newIdentityRouter(t)
	repo.failCreateUser = errors.New("pg: connection to 10.0.0.5:5432 refused")

	res := postJSON(t, router, "/users/admin-create",
		`{"username":"admin","email":"admin@mail.ru","password":"admin12345"}`)
	require.Equal(t, http.StatusInternalServerError, res.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, res.Body.String())
	assert.NotContains(t, res.Body.String(), "10.0.0.5")
}

func TestLoginMissingPassword(t *testing.T) {
	router, _ := newIdentityRouter(t)

	res := postJSON(t, router, "/users/login", `{"email":"buyer@mail.ru"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.JSONEq(t, `{"error":"Invalid data"}`, res.Body.String())
}

func TestLoginIssuesToken(t *testing.T) {
	router, _ := newIdentityRouter(t)

	res := postJSON(t, router, "/users/buyer-create",
		`{"username":"buyer","email":"buyer@mail.ru","password":"buyer12345"}`)
	require.Equal(t, http.StatusCreated, res.Code)

	login := postJSON(t, router, "/users/login",
		`{"email":"buyer@mail.ru","password":"buyer12345"}`)
	require.Equal(t, http.StatusCreated, login.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &body))
	assert.NotEmpty(t, body["access_token"])
}

// The login failure response must not reveal whether the email exists.
func TestLoginUnknownEmail(t *testing.T) {
	router, _ := newIdentityRouter(t)

	res := postJSON(t, router, "/users/buyer-create",
		`{"username":"buyer","email":"buyer@mail.ru","password":"buyer12345"}`)
	require.Equal(t, http.StatusCreated, res.Code)

	missing := postJSON(t, router, "/users/login",
		`{"email":"nobody@mail.ru","password":"buyer12345"}`)
	wrongPass := postJSON(t, router, "/users/login",
		`{"email":"buyer@mail.ru","password":"wrongpass"}`)

	require.Equal(t, http.StatusUnauthorized, missing.Code)
	require.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.JSONEq(t, `{"error":"Bad email or password"}`, missing.Body.String())
	assert.Equal(t, missing.Body.String(), wrongPass.Body.String())
}

func TestListAllUsers(t *testing.T) {
	router, _ := newIdentityRouter(t)

	for _, payload := range []string{
		`{"username":"admin","email":"admin@mail.ru","password":"admin12345"}`,
		`{"username":"buyer","email":"buyer@mail.ru","password":"buyer12345"}`,
	} {
		res := postJSON(t, router, "/users/admin-create", payload)
		require.Equal(t, http.StatusCreated, res.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/users/all-users", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)

	var users []map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &users))
	assert.Len(t, users, 2)
	for _, user := range users {
		assert.NotContains(t, user, "password_hash")
	}
}
