// Package repository implements repository metadata persistence for
// PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/registry/internal/database"
	apperrors "github.com/allisson/registry/internal/errors"
	registryDomain "github.com/allisson/registry/internal/registry/domain"
)

// PostgreSQLRepositoryStore implements Repository persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLRepositoryStore struct {
	db *sql.DB
}

// Create inserts a new repository into the PostgreSQL database. A unique
// constraint violation on (tenant_id, key) maps to ErrRepositoryAlreadyExists.
func (p *PostgreSQLRepositoryStore) Create(
	ctx context.Context,
	repo *registryDomain.Repository,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO repositories (id, tenant_id, repo_key, repo_type, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		repo.ID,
		repo.TenantID,
		repo.Key,
		string(repo.Type),
		repo.CreatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return registryDomain.ErrRepositoryAlreadyExists
		}
		return apperrors.Unavailable(err, "failed to create repository")
	}
	return nil
}

// GetByKey retrieves a repository by tenant and key.
func (p *PostgreSQLRepositoryStore) GetByKey(
	ctx context.Context,
	tenantID uuid.UUID,
	key string,
) (*registryDomain.Repository, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, tenant_id, repo_key, repo_type, created_at
			  FROM repositories
			  WHERE tenant_id = $1 AND repo_key = $2`

	var repo registryDomain.Repository
	var repoType string
	err := querier.QueryRowContext(ctx, query, tenantID, key).Scan(
		&repo.ID,
		&repo.TenantID,
		&repo.Key,
		&repoType,
		&repo.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registryDomain.ErrRepositoryNotFound
		}
		return nil, apperrors.Unavailable(err, "failed to get repository")
	}

	repo.Type = registryDomain.RepositoryType(repoType)
	return &repo, nil
}

// List retrieves all repositories of a tenant ordered by key.
func (p *PostgreSQLRepositoryStore) List(
	ctx context.Context,
	tenantID uuid.UUID,
) ([]*registryDomain.Repository, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, tenant_id, repo_key, repo_type, created_at
			  FROM repositories
			  WHERE tenant_id = $1
			  ORDER BY repo_key`

	rows, err := querier.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list repositories")
	}
	defer rows.Close()

	var repos []*registryDomain.Repository
	for rows.Next() {
		var repo registryDomain.Repository
		var repoType string
		err := rows.Scan(&repo.ID, &repo.TenantID, &repo.Key, &repoType, &repo.CreatedAt)
		if err != nil {
			return nil, apperrors.Unavailable(err, "failed to scan repository")
		}
		repo.Type = registryDomain.RepositoryType(repoType)
		repos = append(repos, &repo)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Unavailable(err, "failed to iterate repositories")
	}

	return repos, nil
}

// Delete removes a repository by key. Returns ErrRepositoryNotFound when no
// row matched.
func (p *PostgreSQLRepositoryStore) Delete(
	ctx context.Context,
	tenantID uuid.UUID,
	key string,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM repositories WHERE tenant_id = $1 AND repo_key = $2`

	result, err := querier.ExecContext(ctx, query, tenantID, key)
	if err != nil {
		return apperrors.Unavailable(err, "failed to delete repository")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Unavailable(err, "failed to read delete result")
	}
	if affected == 0 {
		return registryDomain.ErrRepositoryNotFound
	}
	return nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique
// constraint violation.
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}

// NewPostgreSQLRepositoryStore creates a new PostgreSQL repository metadata store.
func NewPostgreSQLRepositoryStore(db *sql.DB) *PostgreSQLRepositoryStore {
	return &PostgreSQLRepositoryStore{db: db}
}
