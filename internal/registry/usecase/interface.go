// Package usecase implements business logic orchestration for repository metadata.
package usecase

import (
	"context"

	"github.com/google/uuid"

	registryDomain "github.com/allisson/registry/internal/registry/domain"
)

// RepositoryStore defines the persistence operations for repository metadata.
type RepositoryStore interface {
	// Create inserts a repository. Returns ErrRepositoryAlreadyExists when the
	// (tenant, key) pair is taken.
	Create(ctx context.Context, repo *registryDomain.Repository) error

	// GetByKey retrieves a repository by tenant and key. Returns
	// ErrRepositoryNotFound when absent.
	GetByKey(ctx context.Context, tenantID uuid.UUID, key string) (*registryDomain.Repository, error)

	// List retrieves all repositories of a tenant ordered by key.
	List(ctx context.Context, tenantID uuid.UUID) ([]*registryDomain.Repository, error)

	// Delete removes a repository by key. Returns ErrRepositoryNotFound when absent.
	Delete(ctx context.Context, tenantID uuid.UUID, key string) error
}

// UseCase defines repository metadata operations.
type UseCase interface {
	Create(
		ctx context.Context,
		tenantID uuid.UUID,
		actor string,
		input *registryDomain.CreateRepositoryInput,
	) (*registryDomain.Repository, error)
	Get(ctx context.Context, tenantID uuid.UUID, key string) (*registryDomain.Repository, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*registryDomain.Repository, error)
	Delete(ctx context.Context, tenantID uuid.UUID, actor string, key string) error
}
