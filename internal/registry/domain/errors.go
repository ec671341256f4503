package domain

import (
	"github.com/allisson/registry/internal/errors"
)

// Repository metadata errors.
var (
	// ErrRepositoryNotFound indicates no repository exists with the given key.
	ErrRepositoryNotFound = errors.Wrap(errors.ErrNotFound, "repository not found")

	// ErrRepositoryAlreadyExists indicates the repository key is taken within the tenant.
	ErrRepositoryAlreadyExists = errors.Wrap(errors.ErrConflict, "repository already exists")
)
