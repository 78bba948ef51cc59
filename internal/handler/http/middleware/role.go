package middleware

import (
	"net/http"
	"slices"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/jwt"
)

// RequireRole allows only tokens issued to one of roles.
func RequireRole(roles ...jwt.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok || !slices.Contains(roles, role) {
				response.HandleError(w, auth.ErrInsufficientRole)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOffice rejects tokens that are not scoped to an office.
func RequireOffice(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := OfficeIDFromContext(r.Context()); err != nil {
			response.HandleError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
