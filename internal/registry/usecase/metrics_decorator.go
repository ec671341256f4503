package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/registry/internal/metrics"
	registryDomain "github.com/allisson/registry/internal/registry/domain"
)

// useCaseWithMetrics decorates the repository UseCase with metrics
// instrumentation.
type useCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewUseCaseWithMetrics wraps a repository UseCase with metrics recording.
func NewUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &useCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Create records metrics for repository creation operations.
func (u *useCaseWithMetrics) Create(
	ctx context.Context,
	tenantID uuid.UUID,
	actor string,
	input *registryDomain.CreateRepositoryInput,
) (*registryDomain.Repository, error) {
	start := time.Now()
	repo, err := u.next.Create(ctx, tenantID, actor, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "registry", "repository_create", status)
	u.metrics.RecordDuration(ctx, "registry", "repository_create", time.Since(start), status)

	return repo, err
}

// Get records metrics for repository lookup operations.
func (u *useCaseWithMetrics) Get(
	ctx context.Context,
	tenantID uuid.UUID,
	key string,
) (*registryDomain.Repository, error) {
	start := time.Now()
	repo, err := u.next.Get(ctx, tenantID, key)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "registry", "repository_get", status)
	u.metrics.RecordDuration(ctx, "registry", "repository_get", time.Since(start), status)

	return repo, err
}

// List records metrics for repository listing operations.
func (u *useCaseWithMetrics) List(
	ctx context.Context,
	tenantID uuid.UUID,
) ([]*registryDomain.Repository, error) {
	start := time.Now()
	repos, err := u.next.List(ctx, tenantID)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "registry", "repository_list", status)
	u.metrics.RecordDuration(ctx, "registry", "repository_list", time.Since(start), status)

	return repos, err
}

// Delete records metrics for repository deletion operations.
func (u *useCaseWithMetrics) Delete(
	ctx context.Context,
	tenantID uuid.UUID,
	actor string,
	key string,
) error {
	start := time.Now()
	err := u.next.Delete(ctx, tenantID, actor, key)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "registry", "repository_delete", status)
	u.metrics.RecordDuration(ctx, "registry", "repository_delete", time.Since(start), status)

	return err
}
