// Package repository implements tenant persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/registry/internal/database"
	apperrors "github.com/allisson/registry/internal/errors"
	tenantDomain "github.com/allisson/registry/internal/tenant/domain"
)

// PostgreSQLTenantRepository implements Tenant persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLTenantRepository struct {
	db *sql.DB
}

// Resolve returns the tenant for the slug, creating it on first use. The
// upsert keeps the slug as the stable identity: a changed display name is
// updated in place and the original row's ID and creation time survive.
func (p *PostgreSQLTenantRepository) Resolve(
	ctx context.Context,
	slug, displayName string,
) (*tenantDomain.Tenant, error) {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO tenants (id, slug, display_name, created_at)
			  VALUES ($1, $2, $3, now())
			  ON CONFLICT (slug) DO UPDATE SET display_name = EXCLUDED.display_name
			  RETURNING id, slug, display_name, created_at`

	var tenant tenantDomain.Tenant
	err := querier.QueryRowContext(ctx, query, uuid.Must(uuid.NewV7()), slug, displayName).Scan(
		&tenant.ID,
		&tenant.Slug,
		&tenant.DisplayName,
		&tenant.CreatedAt,
	)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to resolve tenant")
	}

	return &tenant, nil
}

// NewPostgreSQLTenantRepository creates a new PostgreSQL Tenant repository.
func NewPostgreSQLTenantRepository(db *sql.DB) *PostgreSQLTenantRepository {
	return &PostgreSQLTenantRepository{db: db}
}
