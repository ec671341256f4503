package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/registry/internal/audit/domain"
	"github.com/allisson/registry/internal/metrics"
)

// useCaseWithMetrics decorates the audit UseCase with metrics instrumentation.
type useCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewUseCaseWithMetrics wraps an audit UseCase with metrics recording.
func NewUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &useCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Append records metrics for audit append operations.
func (u *useCaseWithMetrics) Append(ctx context.Context, input *auditDomain.AppendInput) error {
	start := time.Now()
	err := u.next.Append(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "audit", "append", status)
	u.metrics.RecordDuration(ctx, "audit", "append", time.Since(start), status)

	return err
}

// Read records metrics for audit read operations.
func (u *useCaseWithMetrics) Read(
	ctx context.Context,
	tenantID uuid.UUID,
	limit int,
) ([]*auditDomain.Record, error) {
	start := time.Now()
	records, err := u.next.Read(ctx, tenantID, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "audit", "read", status)
	u.metrics.RecordDuration(ctx, "audit", "read", time.Since(start), status)

	return records, err
}
