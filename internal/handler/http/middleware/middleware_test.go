package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func newProtectedRouter(svc *jwt.JWTService, roles ...jwt.Role) http.Handler {
	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(svc.JWTAuth()))
	r.Use(AuthRequired(svc.JWTAuth()))
	r.Use(RequireRole(roles...))
	r.Use(RequireOffice)
	r.Get("/", okHandler)
	return r
}

func TestAuthAndRole(t *testing.T) {
	svc := jwt.NewJWTService("test-secret", time.Hour)
	router := newProtectedRouter(svc, jwt.RoleAdmin)

	token := func(c jwt.Claims) string {
		tok, _, err := svc.GenerateAccessToken(c)
		require.NoError(t, err)
		return tok
	}
	sseToken, _, err := svc.GenerateSSEToken("uid-1")
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"sse token rejected", sseToken, http.StatusUnauthorized},
		{"wrong role", token(jwt.Claims{OfficeID: "office-1", Role: jwt.RoleEmployee}), http.StatusForbidden},
		{"no office scope", token(jwt.Claims{Role: jwt.RoleAdmin}), http.StatusForbidden},
		{"admin with office", token(jwt.Claims{OfficeID: "office-1", Role: jwt.RoleAdmin}), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handler := RateLimit(ctx, 0.001, 2)(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	other := httptest.NewRequest(http.MethodPost, "/", nil)
	other.Header.Set("X-Forwarded-For", "10.0.0.2, 10.0.0.1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}
