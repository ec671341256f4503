package domain

import (
	"github.com/allisson/registry/internal/errors"
)

// Authentication and authorization errors.
var (
	// ErrTokenNotFound indicates a token with the specified ID was not found.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrInvalidCredentials indicates the presented credential is missing,
	// malformed, expired, or revoked. Kept generic to prevent enumeration.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid or expired credentials")
)
