package auth

import "errors"

var (
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrOfficeScopeRequired = errors.New("token is not scoped to an office")
	ErrUIDRequired         = errors.New("token carries no uid")
	ErrInsufficientRole    = errors.New("role is not allowed to access this resource")
)
