package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/registry/internal/audit/domain"
	apperrors "github.com/allisson/registry/internal/errors"
)

const (
	// defaultReadLimit applies when the caller omits the limit or passes a
	// non-positive value.
	defaultReadLimit = 100

	// maxReadLimit caps a single read to keep result sets bounded.
	maxReadLimit = 500
)

// auditUseCase implements UseCase.
type auditUseCase struct {
	auditRepo AuditRepository
}

// Append validates the input, normalizes detail values to canonical text, and
// appends the record. Records inherit any transaction present in the context,
// so mutations and their audit events commit or roll back together.
func (a *auditUseCase) Append(ctx context.Context, input *auditDomain.AppendInput) error {
	if input.TenantID == uuid.Nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "audit record requires a tenant")
	}
	if input.Action == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "audit record requires an action")
	}

	record := &auditDomain.Record{
		TenantID:     input.TenantID,
		Actor:        input.Actor,
		Action:       input.Action,
		ResourceType: input.ResourceType,
		ResourceID:   input.ResourceID,
		Details:      auditDomain.EncodeDetails(input.Details),
		OccurredAt:   time.Now().UTC(),
	}

	return a.auditRepo.Create(ctx, record)
}

// Read returns records for a tenant ordered newest-first. Limits outside
// [1, maxReadLimit] are defaulted or clamped rather than rejected.
func (a *auditUseCase) Read(
	ctx context.Context,
	tenantID uuid.UUID,
	limit int,
) ([]*auditDomain.Record, error) {
	if limit <= 0 {
		limit = defaultReadLimit
	}
	if limit > maxReadLimit {
		limit = maxReadLimit
	}

	return a.auditRepo.List(ctx, tenantID, limit)
}

// NewAuditUseCase creates a new audit UseCase with the provided repository.
func NewAuditUseCase(auditRepo AuditRepository) UseCase {
	return &auditUseCase{auditRepo: auditRepo}
}
