package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	authDomain "github.com/allisson/registry/internal/auth/domain"
	"github.com/allisson/registry/internal/database"
	apperrors "github.com/allisson/registry/internal/errors"
)

// MySQLRoleBindingRepository implements role binding persistence for MySQL.
// Uses CHAR(36) string UUIDs.
type MySQLRoleBindingRepository struct {
	db *sql.DB
}

// Upsert creates or replaces the binding for (tenant, repository, subject).
// The stored role set is replaced wholesale; the original row's ID and
// creation time survive an update.
func (m *MySQLRoleBindingRepository) Upsert(
	ctx context.Context,
	binding *authDomain.RoleBinding,
) error {
	querier := database.GetTx(ctx, m.db)

	rolesJSON, err := json.Marshal(roleTexts(binding.Roles))
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal binding roles")
	}

	query := `INSERT INTO role_bindings (id, tenant_id, repo_key, subject, roles, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE roles = VALUES(roles), updated_at = VALUES(updated_at)`

	_, err = querier.ExecContext(
		ctx,
		query,
		binding.ID.String(),
		binding.TenantID.String(),
		binding.RepositoryKey,
		binding.Subject,
		rolesJSON,
		binding.CreatedAt,
		binding.UpdatedAt,
	)
	if err != nil {
		return apperrors.Unavailable(err, "failed to upsert role binding")
	}
	return nil
}

// ListBySubject retrieves all bindings of a subject within a tenant.
func (m *MySQLRoleBindingRepository) ListBySubject(
	ctx context.Context,
	tenantID uuid.UUID,
	subject string,
) ([]*authDomain.RoleBinding, error) {
	query := `SELECT id, tenant_id, repo_key, subject, roles, created_at, updated_at
			  FROM role_bindings
			  WHERE tenant_id = ? AND subject = ?
			  ORDER BY repo_key`

	return m.queryBindings(ctx, query, tenantID.String(), subject)
}

// ListByRepository retrieves all bindings on a repository within a tenant.
func (m *MySQLRoleBindingRepository) ListByRepository(
	ctx context.Context,
	tenantID uuid.UUID,
	repositoryKey string,
) ([]*authDomain.RoleBinding, error) {
	query := `SELECT id, tenant_id, repo_key, subject, roles, created_at, updated_at
			  FROM role_bindings
			  WHERE tenant_id = ? AND repo_key = ?
			  ORDER BY subject`

	return m.queryBindings(ctx, query, tenantID.String(), repositoryKey)
}

func (m *MySQLRoleBindingRepository) queryBindings(
	ctx context.Context,
	query string,
	args ...any,
) ([]*authDomain.RoleBinding, error) {
	querier := database.GetTx(ctx, m.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list role bindings")
	}
	defer rows.Close()

	var bindings []*authDomain.RoleBinding
	for rows.Next() {
		var binding authDomain.RoleBinding
		var id, tenantID string
		var rolesJSON []byte

		err := rows.Scan(
			&id,
			&tenantID,
			&binding.RepositoryKey,
			&binding.Subject,
			&rolesJSON,
			&binding.CreatedAt,
			&binding.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Unavailable(err, "failed to scan role binding")
		}

		binding.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, apperrors.Unavailable(err, "failed to parse binding id")
		}
		binding.TenantID, err = uuid.Parse(tenantID)
		if err != nil {
			return nil, apperrors.Unavailable(err, "failed to parse tenant id")
		}

		binding.Roles, err = unmarshalRoles(rolesJSON)
		if err != nil {
			return nil, err
		}

		bindings = append(bindings, &binding)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Unavailable(err, "failed to iterate role bindings")
	}

	return bindings, nil
}

// NewMySQLRoleBindingRepository creates a new MySQL role binding repository.
func NewMySQLRoleBindingRepository(db *sql.DB) *MySQLRoleBindingRepository {
	return &MySQLRoleBindingRepository{db: db}
}
