package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonhub-backend/internal/config"
	"salonhub-backend/internal/domain"
	"salonhub-backend/internal/handler"
	"salonhub-backend/internal/notifier"
	"salonhub-backend/internal/repository"
	"salonhub-backend/internal/server/authctx"
	"salonhub-backend/internal/service"
)

const secret = "test-secret"

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func accessClaims(role domain.AdminRole, branch string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":        "u-1",
		"email":      "admin@salon.test",
		"name":       "Asha",
		"role":       string(role),
		"branch":     branch,
		"branchId":   "br-1",
		"token_type": "access",
		"exp":        time.Now().Add(time.Hour).Unix(),
	}
}

func withoutBranchID(c jwt.MapClaims) jwt.MapClaims {
	delete(c, "branchId")
	return c
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := authctx.FromContext(r.Context())
		if u == nil {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(string(u.Role) + "|" + u.Branch + "|" + u.ID))
	})
}

func TestAuthMiddleware(t *testing.T) {
	h := AuthMiddleware(secret)(echoUser())

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing", "", http.StatusUnauthorized, ""},
		{"garbage", "Bearer nope", http.StatusUnauthorized, ""},
		{"refresh token", "Bearer " + sign(t, jwt.MapClaims{"sub": "u-1", "token_type": "refresh"}), http.StatusUnauthorized, ""},
		{"branch admin without branch", "Bearer " + sign(t, accessClaims(domain.RoleBranchAdmin, "")), http.StatusForbidden, ""},
		{"branch admin without branch id", "Bearer " + sign(t, withoutBranchID(accessClaims(domain.RoleBranchAdmin, "Downtown"))), http.StatusForbidden, ""},
		{"branch admin", "Bearer " + sign(t, accessClaims(domain.RoleBranchAdmin, "Downtown")), http.StatusOK, "branch_admin|Downtown|u-1"},
		{"super admin", "Bearer " + sign(t, accessClaims(domain.RoleSuperAdmin, "")), http.StatusOK, "super_admin||u-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, rec.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(domain.RoleSuperAdmin)(echoUser())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(authctx.WithCurrentUser(req.Context(), authctx.CurrentUser{ID: "u", Role: domain.RoleBranchAdmin, Branch: "Downtown"}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(authctx.WithCurrentUser(req.Context(), authctx.CurrentUser{ID: "u", Role: domain.RoleSuperAdmin}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterProtectsAPI(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.Fetcher{Source: repository.NewMemorySource(), Logger: logger}
	n := notifier.New(store, nil, nil, logger, nil)
	reg := prometheus.NewRegistry()

	router := NewRouter(config.Config{JWTSecret: secret}, logger, reg, Handlers{
		Notifications: handler.NotificationHandler{Notifier: n},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, accessClaims(domain.RoleSuperAdmin, "")))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unread":0`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "swagger-ui")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIssuedTokensPassMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	src := repository.NewMemorySource()
	src.Seed(repository.CollectionAdmins, "uid-desk", map[string]any{"email": "desk@salon.test", "role": "branch_admin", "branch": "Downtown", "branchId": "br-1"})
	authSvc := service.AuthService{
		Secret:     secret,
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
		Admins:     repository.AdminRepository{Store: repository.Fetcher{Source: src, Logger: logger}},
	}
	res, err := authSvc.Refresh(context.Background(), sign(t, jwt.MapClaims{"sub": "uid-desk", "token_type": "refresh", "exp": time.Now().Add(time.Hour).Unix()}))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+res.AccessToken)
	rec := httptest.NewRecorder()
	AuthMiddleware(secret)(echoUser()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "branch_admin|Downtown|uid-desk", rec.Body.String())
}
