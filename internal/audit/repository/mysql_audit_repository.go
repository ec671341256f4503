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

// MySQLAuditRepository implements audit Record persistence for MySQL.
// Uses CHAR(36) string UUIDs with transaction support via database.GetTx().
type MySQLAuditRepository struct {
	db *sql.DB
}

// Create appends a new audit record. The AUTO_INCREMENT column assigns the
// ID, which is written back to the record.
func (m *MySQLAuditRepository) Create(ctx context.Context, record *auditDomain.Record) error {
	querier := database.GetTx(ctx, m.db)

	detailsJSON, err := json.Marshal(record.Details)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit details")
	}

	query := `INSERT INTO audit_records (tenant_id, actor, action, resource_type, resource_id, details, occurred_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	result, err := querier.ExecContext(
		ctx,
		query,
		record.TenantID.String(),
		record.Actor,
		record.Action,
		record.ResourceType,
		record.ResourceID,
		detailsJSON,
		record.OccurredAt,
	)
	if err != nil {
		return apperrors.Unavailable(err, "failed to create audit record")
	}

	record.ID, err = result.LastInsertId()
	if err != nil {
		return apperrors.Unavailable(err, "failed to read audit record id")
	}
	return nil
}

// List retrieves up to limit records for a tenant, newest first.
func (m *MySQLAuditRepository) List(
	ctx context.Context,
	tenantID uuid.UUID,
	limit int,
) ([]*auditDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, tenant_id, actor, action, resource_type, resource_id, details, occurred_at
			  FROM audit_records
			  WHERE tenant_id = ?
			  ORDER BY id DESC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, tenantID.String(), limit)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list audit records")
	}
	defer rows.Close()

	var records []*auditDomain.Record
	for rows.Next() {
		var record auditDomain.Record
		var tenantIDStr string
		var detailsJSON []byte

		err := rows.Scan(
			&record.ID,
			&tenantIDStr,
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

		record.TenantID, err = uuid.Parse(tenantIDStr)
		if err != nil {
			return nil, apperrors.Unavailable(err, "failed to parse tenant id")
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

// NewMySQLAuditRepository creates a new MySQL audit record repository.
func NewMySQLAuditRepository(db *sql.DB) *MySQLAuditRepository {
	return &MySQLAuditRepository{db: db}
}
