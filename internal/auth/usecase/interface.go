// Package usecase implements business logic orchestration for authentication
// and authorization operations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/registry/internal/auth/domain"
	registryDomain "github.com/allisson/registry/internal/registry/domain"
	tenantDomain "github.com/allisson/registry/internal/tenant/domain"
)

// TokenRepository defines the persistence operations for personal access tokens.
type TokenRepository interface {
	// Create inserts a new token row.
	Create(ctx context.Context, token *authDomain.PersonalAccessToken) error

	// GetActiveByHash retrieves an unrevoked, unexpired token by its hash.
	// Returns ErrTokenNotFound on a miss (including expired or revoked rows).
	// Persisted scope strings are re-parsed on every read; a parse failure is
	// a hard ErrUnavailable, never silently dropped.
	GetActiveByHash(ctx context.Context, tokenHash string) (*authDomain.PersonalAccessToken, error)

	// Revoke marks the token revoked and inserts its revocation detail row in
	// one atomic step, scoped to the tenant. Returns false when the token is
	// absent or already revoked (idempotent, not an error).
	Revoke(
		ctx context.Context,
		tenantID uuid.UUID,
		tokenID uuid.UUID,
		revokedBy string,
		revokedAt time.Time,
	) (bool, error)

	// HasTokens reports whether the tenant has any token rows of any status.
	HasTokens(ctx context.Context, tenantID uuid.UUID) (bool, error)
}

// RoleBindingRepository defines the persistence operations for role bindings.
type RoleBindingRepository interface {
	// Upsert creates or replaces the binding for (tenant, repository, subject).
	// Last-writer-wins: the stored role set is replaced, not merged.
	Upsert(ctx context.Context, binding *authDomain.RoleBinding) error

	// ListBySubject retrieves all bindings of a subject within a tenant.
	ListBySubject(
		ctx context.Context,
		tenantID uuid.UUID,
		subject string,
	) ([]*authDomain.RoleBinding, error)

	// ListByRepository retrieves all bindings on a repository within a tenant.
	ListByRepository(
		ctx context.Context,
		tenantID uuid.UUID,
		repositoryKey string,
	) ([]*authDomain.RoleBinding, error)
}

// TenantRepository resolves tenants idempotently by slug.
type TenantRepository interface {
	// Resolve returns the tenant for the slug, creating it on first use.
	// A changed display name is updated in place; identity is preserved.
	Resolve(ctx context.Context, slug, displayName string) (*tenantDomain.Tenant, error)
}

// RepositoryResolver checks repository existence for binding validation.
// Implemented by the registry module's stores.
type RepositoryResolver interface {
	GetByKey(ctx context.Context, tenantID uuid.UUID, key string) (*registryDomain.Repository, error)
}

// TokenUseCase defines the token lifecycle operations.
type TokenUseCase interface {
	// Issue creates a new personal access token, enforcing the bootstrap gate
	// for anonymous callers. The plaintext is returned exactly once.
	Issue(ctx context.Context, input *authDomain.IssueTokenInput) (*authDomain.IssueTokenOutput, error)

	// Revoke irreversibly revokes a token within the caller's tenant.
	// Idempotent: a missing or already-revoked token reports Revoked=false.
	Revoke(
		ctx context.Context,
		principal *authDomain.Principal,
		input *authDomain.RevokeTokenInput,
	) (*authDomain.RevokeTokenOutput, error)

	// Authenticate resolves a plaintext credential to a Principal, or
	// ErrInvalidCredentials when the token is unknown, expired, or revoked.
	// The result must not be cached across requests.
	Authenticate(ctx context.Context, plainToken string) (*authDomain.Principal, error)
}

// RoleBindingUseCase defines role binding management operations.
type RoleBindingUseCase interface {
	// Upsert creates or replaces the role binding for (repository, subject).
	// Fails with ErrRepositoryNotFound when the repository doesn't exist.
	Upsert(
		ctx context.Context,
		principal *authDomain.Principal,
		input *authDomain.UpsertRoleBindingInput,
	) (*authDomain.RoleBinding, error)

	// ListByRepository returns all bindings on a repository within the tenant.
	ListByRepository(
		ctx context.Context,
		tenantID uuid.UUID,
		repositoryKey string,
	) ([]*authDomain.RoleBinding, error)
}

// Authorizer decides whether a principal may perform an operation requiring a
// role on a target repository key. Checks are never cached: callers invoke
// this on every request so revocation takes effect immediately.
type Authorizer interface {
	// RequireRole returns nil when the principal's scopes satisfy the required
	// role on the target key, ErrUnauthorized for a nil principal, and
	// ErrForbidden for an authenticated principal with insufficient scope.
	RequireRole(principal *authDomain.Principal, targetKey string, required authDomain.Role) error
}
