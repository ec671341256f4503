// Package usecase implements business logic orchestration for the audit trail.
package usecase

import (
	"context"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/registry/internal/audit/domain"
)

// AuditRepository defines the persistence operations for audit records.
// Append-only: no update or delete operations exist.
type AuditRepository interface {
	// Create appends a new audit record. The store assigns the sequence ID.
	Create(ctx context.Context, record *auditDomain.Record) error

	// List retrieves up to limit records for a tenant, newest first.
	List(ctx context.Context, tenantID uuid.UUID, limit int) ([]*auditDomain.Record, error)
}

// UseCase defines the audit recorder operations consumed by other modules.
type UseCase interface {
	// Append normalizes detail values to canonical text and appends a record.
	// When called inside a transaction context, the write joins that transaction.
	Append(ctx context.Context, input *auditDomain.AppendInput) error

	// Read returns records for a tenant newest-first. The limit is defaulted
	// when absent or invalid and clamped to a safe maximum.
	Read(ctx context.Context, tenantID uuid.UUID, limit int) ([]*auditDomain.Record, error)
}
