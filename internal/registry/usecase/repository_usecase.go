package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/registry/internal/audit/domain"
	auditUseCase "github.com/allisson/registry/internal/audit/usecase"
	"github.com/allisson/registry/internal/database"
	apperrors "github.com/allisson/registry/internal/errors"
	registryDomain "github.com/allisson/registry/internal/registry/domain"
)

// repositoryUseCase implements UseCase for repository metadata.
type repositoryUseCase struct {
	txManager database.TxManager
	repoStore RepositoryStore
	audit     auditUseCase.UseCase
}

// Create validates the input and inserts the repository metadata row together
// with its audit record in a single transaction.
func (r *repositoryUseCase) Create(
	ctx context.Context,
	tenantID uuid.UUID,
	actor string,
	input *registryDomain.CreateRepositoryInput,
) (*registryDomain.Repository, error) {
	key := strings.ToLower(strings.TrimSpace(input.Key))
	if key == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "repository key must not be empty")
	}

	repoType, err := registryDomain.ParseRepositoryType(input.Type)
	if err != nil {
		return nil, err
	}

	repo := &registryDomain.Repository{
		ID:        uuid.Must(uuid.NewV7()),
		TenantID:  tenantID,
		Key:       key,
		Type:      repoType,
		CreatedAt: time.Now().UTC(),
	}

	err = r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := r.repoStore.Create(ctx, repo); err != nil {
			return err
		}
		return r.audit.Append(ctx, &auditDomain.AppendInput{
			TenantID:     tenantID,
			Actor:        actor,
			Action:       auditDomain.ActionRepositoryCreated,
			ResourceType: auditDomain.ResourceTypeRepository,
			ResourceID:   repo.Key,
			Details: map[string]any{
				"type": string(repo.Type),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	return repo, nil
}

// Get retrieves a repository by key within the tenant.
func (r *repositoryUseCase) Get(
	ctx context.Context,
	tenantID uuid.UUID,
	key string,
) (*registryDomain.Repository, error) {
	return r.repoStore.GetByKey(ctx, tenantID, strings.ToLower(strings.TrimSpace(key)))
}

// List retrieves all repositories of the tenant.
func (r *repositoryUseCase) List(
	ctx context.Context,
	tenantID uuid.UUID,
) ([]*registryDomain.Repository, error) {
	return r.repoStore.List(ctx, tenantID)
}

// Delete removes the repository metadata row and appends the audit record in
// a single transaction. A missing key surfaces as ErrRepositoryNotFound.
func (r *repositoryUseCase) Delete(
	ctx context.Context,
	tenantID uuid.UUID,
	actor string,
	key string,
) error {
	key = strings.ToLower(strings.TrimSpace(key))
	return r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := r.repoStore.Delete(ctx, tenantID, key); err != nil {
			return err
		}
		return r.audit.Append(ctx, &auditDomain.AppendInput{
			TenantID:     tenantID,
			Actor:        actor,
			Action:       auditDomain.ActionRepositoryDeleted,
			ResourceType: auditDomain.ResourceTypeRepository,
			ResourceID:   key,
		})
	})
}

// NewRepositoryUseCase creates a new repository metadata UseCase.
func NewRepositoryUseCase(
	txManager database.TxManager,
	repoStore RepositoryStore,
	audit auditUseCase.UseCase,
) UseCase {
	return &repositoryUseCase{
		txManager: txManager,
		repoStore: repoStore,
		audit:     audit,
	}
}
