package middleware

import (
	"context"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// OfficeIDFromContext returns the office the caller's token is scoped to.
func OfficeIDFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", auth.ErrInvalidToken
	}
	officeID, ok := claims["office_id"].(string)
	if !ok || officeID == "" {
		return "", auth.ErrOfficeScopeRequired
	}
	return officeID, nil
}

// UIDFromContext returns the caller's uid.
func UIDFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", auth.ErrInvalidToken
	}
	uid, ok := claims["uid"].(string)
	if !ok || uid == "" {
		return "", auth.ErrUIDRequired
	}
	return uid, nil
}

// RoleFromContext returns the caller's role.
func RoleFromContext(ctx context.Context) (jwt.Role, bool) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", false
	}
	role, ok := claims["role"].(string)
	return jwt.Role(role), ok
}
