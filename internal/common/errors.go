// Package common defines the sentinel errors shared across the layers of
// the access-management server. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Registration errors.
	ErrUsernameTaken   = errors.New("username already taken")
	ErrPasswordTooWeak = errors.New("password too weak")

	// Credential errors. HTTP rendering must not let callers tell these
	// two apart (username enumeration).
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token lifecycle errors.
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrNotAuthenticated = errors.New("not authenticated")
)
