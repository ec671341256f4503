// Package domain defines repository metadata models. The authorization layer
// treats the repository type as opaque: content storage, proxying, and
// aggregation live elsewhere.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/registry/internal/errors"
)

// RepositoryType classifies how a repository serves artifacts. The access
// control core never interprets it.
type RepositoryType string

const (
	// TypeLocal stores artifacts directly.
	TypeLocal RepositoryType = "local"

	// TypeRemote proxies an upstream repository.
	TypeRemote RepositoryType = "remote"

	// TypeVirtual aggregates other repositories.
	TypeVirtual RepositoryType = "virtual"
)

// ParseRepositoryType parses a repository type case-insensitively.
func ParseRepositoryType(text string) (RepositoryType, error) {
	repoType := RepositoryType(strings.ToLower(strings.TrimSpace(text)))
	switch repoType {
	case TypeLocal, TypeRemote, TypeVirtual:
		return repoType, nil
	default:
		return "", apperrors.Wrap(
			apperrors.ErrInvalidInput,
			fmt.Sprintf("unknown repository type %q", text),
		)
	}
}

// Repository is the metadata record for one artifact repository within a
// tenant. Key is the tenant-unique identifier referenced by scopes and role
// bindings.
type Repository struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Key       string
	Type      RepositoryType
	CreatedAt time.Time
}

// CreateRepositoryInput contains the parameters for creating a repository.
type CreateRepositoryInput struct {
	Key  string
	Type string
}
