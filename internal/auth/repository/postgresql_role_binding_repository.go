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

// PostgreSQLRoleBindingRepository implements role binding persistence for
// PostgreSQL. Uses native UUID types.
type PostgreSQLRoleBindingRepository struct {
	db *sql.DB
}

// Upsert creates or replaces the binding for (tenant, repository, subject).
// The stored role set is replaced wholesale; the original row's ID and
// creation time survive an update.
func (p *PostgreSQLRoleBindingRepository) Upsert(
	ctx context.Context,
	binding *authDomain.RoleBinding,
) error {
	querier := database.GetTx(ctx, p.db)

	rolesJSON, err := json.Marshal(roleTexts(binding.Roles))
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal binding roles")
	}

	query := `INSERT INTO role_bindings (id, tenant_id, repo_key, subject, roles, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (tenant_id, repo_key, subject)
			  DO UPDATE SET roles = EXCLUDED.roles, updated_at = EXCLUDED.updated_at`

	_, err = querier.ExecContext(
		ctx,
		query,
		binding.ID,
		binding.TenantID,
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
func (p *PostgreSQLRoleBindingRepository) ListBySubject(
	ctx context.Context,
	tenantID uuid.UUID,
	subject string,
) ([]*authDomain.RoleBinding, error) {
	query := `SELECT id, tenant_id, repo_key, subject, roles, created_at, updated_at
			  FROM role_bindings
			  WHERE tenant_id = $1 AND subject = $2
			  ORDER BY repo_key`

	return p.queryBindings(ctx, query, tenantID, subject)
}

// ListByRepository retrieves all bindings on a repository within a tenant.
func (p *PostgreSQLRoleBindingRepository) ListByRepository(
	ctx context.Context,
	tenantID uuid.UUID,
	repositoryKey string,
) ([]*authDomain.RoleBinding, error) {
	query := `SELECT id, tenant_id, repo_key, subject, roles, created_at, updated_at
			  FROM role_bindings
			  WHERE tenant_id = $1 AND repo_key = $2
			  ORDER BY subject`

	return p.queryBindings(ctx, query, tenantID, repositoryKey)
}

func (p *PostgreSQLRoleBindingRepository) queryBindings(
	ctx context.Context,
	query string,
	args ...any,
) ([]*authDomain.RoleBinding, error) {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list role bindings")
	}
	defer rows.Close()

	var bindings []*authDomain.RoleBinding
	for rows.Next() {
		var binding authDomain.RoleBinding
		var rolesJSON []byte

		err := rows.Scan(
			&binding.ID,
			&binding.TenantID,
			&binding.RepositoryKey,
			&binding.Subject,
			&rolesJSON,
			&binding.CreatedAt,
			&binding.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Unavailable(err, "failed to scan role binding")
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

func roleTexts(roles []authDomain.Role) []string {
	texts := make([]string, len(roles))
	for i, role := range roles {
		texts[i] = role.String()
	}
	return texts
}

// unmarshalRoles decodes and re-validates persisted role names.
func unmarshalRoles(rolesJSON []byte) ([]authDomain.Role, error) {
	var texts []string
	if err := json.Unmarshal(rolesJSON, &texts); err != nil {
		return nil, apperrors.Unavailable(err, "failed to unmarshal binding roles")
	}

	roles := make([]authDomain.Role, 0, len(texts))
	for _, text := range texts {
		role, err := authDomain.ParseRole(text)
		if err != nil {
			return nil, apperrors.Unavailable(err, "persisted binding roles failed validation")
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// NewPostgreSQLRoleBindingRepository creates a new PostgreSQL role binding repository.
func NewPostgreSQLRoleBindingRepository(db *sql.DB) *PostgreSQLRoleBindingRepository {
	return &PostgreSQLRoleBindingRepository{db: db}
}
