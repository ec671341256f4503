package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/registry/internal/database"
	apperrors "github.com/allisson/registry/internal/errors"
	tenantDomain "github.com/allisson/registry/internal/tenant/domain"
)

// MySQLTenantRepository implements Tenant persistence for MySQL.
// Uses CHAR(36) string UUIDs with transaction support via database.GetTx().
type MySQLTenantRepository struct {
	db *sql.DB
}

// Resolve returns the tenant for the slug, creating it on first use. MySQL
// lacks RETURNING, so the upsert runs first and the row is read back in a
// second statement through the same querier.
func (m *MySQLTenantRepository) Resolve(
	ctx context.Context,
	slug, displayName string,
) (*tenantDomain.Tenant, error) {
	querier := database.GetTx(ctx, m.db)

	insertQuery := `INSERT INTO tenants (id, slug, display_name, created_at)
					VALUES (?, ?, ?, NOW())
					ON DUPLICATE KEY UPDATE display_name = VALUES(display_name)`

	_, err := querier.ExecContext(ctx, insertQuery, uuid.Must(uuid.NewV7()).String(), slug, displayName)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to resolve tenant")
	}

	selectQuery := `SELECT id, slug, display_name, created_at FROM tenants WHERE slug = ?`

	var tenant tenantDomain.Tenant
	var id string
	err = querier.QueryRowContext(ctx, selectQuery, slug).Scan(
		&id,
		&tenant.Slug,
		&tenant.DisplayName,
		&tenant.CreatedAt,
	)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to read back tenant")
	}

	tenant.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to parse tenant id")
	}

	return &tenant, nil
}

// NewMySQLTenantRepository creates a new MySQL Tenant repository.
func NewMySQLTenantRepository(db *sql.DB) *MySQLTenantRepository {
	return &MySQLTenantRepository{db: db}
}
