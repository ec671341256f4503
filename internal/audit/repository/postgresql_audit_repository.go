// Package repository implements audit record persistence for PostgreSQL and
// MySQL. The audit table is append-only: records are inserted and listed,
// never updated or deleted.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/registry/internal/audit/domain"
	"github.com/allisson/registry/internal/database"
	apperrors "github.com/allisson/registry/internal/errors"
)

// PostgreSQLAuditRepository implements audit Record persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLAuditRepository struct {
	db *sql.DB
}

// Create appends a new audit record. The BIGSERIAL sequence assigns the ID,
// which is written back to the record.
func (p *PostgreSQLAuditRepository) Create(ctx context.Context, record *auditDomain.Record) error {
	querier := database.GetTx(ctx, p.db)

	detailsJSON, err := json.Marshal(record.Details)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit details")
	}

	query := `INSERT INTO audit_records (tenant_id, actor, action, resource_type, resource_id, details, occurred_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`

	err = querier.QueryRowContext(
		ctx,
		query,
		record.TenantID,
		record.Actor,
		record.Action,
		record.ResourceType,
		record.ResourceID,
		detailsJSON,
		record.OccurredAt,
	).Scan(&record.ID)
	if err != nil {
		return apperrors.Unavailable(err, "failed to create audit record")
	}
	return nil
}

// List retrieves up to limit records for a tenant, newest first. The sequence
// ID orders records; it is assigned at commit time so the listing order is
// stable even when timestamps collide.
func (p *PostgreSQLAuditRepository) List(
	ctx context.Context,
	tenantID uuid.UUID,
	limit int,
) ([]*auditDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, tenant_id, actor, action, resource_type, resource_id, details, occurred_at
			  FROM audit_records
			  WHERE tenant_id = $1
			  ORDER BY id DESC
			  LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list audit records")
	}
	defer rows.Close()

	var records []*auditDomain.Record
	for rows.Next() {
		var record auditDomain.Record
		var detailsJSON []byte

		err := rows.Scan(
			&record.ID,
			&record.TenantID,
			&record.Actor,
			&record.Action,
			&record.ResourceType,
			&record.ResourceID,
			&detailsJSON,
			&record.OccurredAt,
		)
		if err != nil {
			return nil, apperrors.Unavailable(err, "failed to scan audit record")
		}

		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &record.Details); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal audit details")
			}
		}

		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Unavailable(err, "failed to iterate audit records")
	}

	return records, nil
}

// NewPostgreSQLAuditRepository creates a new PostgreSQL audit record repository.
func NewPostgreSQLAuditRepository(db *sql.DB) *PostgreSQLAuditRepository {
	return &PostgreSQLAuditRepository{db: db}
}
