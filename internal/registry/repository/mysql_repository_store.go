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

// MySQLRepositoryStore implements Repository persistence for MySQL.
// Uses CHAR(36) string UUIDs with transaction support via database.GetTx().
type MySQLRepositoryStore struct {
	db *sql.DB
}

// Create inserts a new repository into the MySQL database. A duplicate entry
// error on (tenant_id, key) maps to ErrRepositoryAlreadyExists.
func (m *MySQLRepositoryStore) Create(ctx context.Context, repo *registryDomain.Repository) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO repositories (id, tenant_id, repo_key, repo_type, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		repo.ID.String(),
		repo.TenantID.String(),
		repo.Key,
		string(repo.Type),
		repo.CreatedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return registryDomain.ErrRepositoryAlreadyExists
		}
		return apperrors.Unavailable(err, "failed to create repository")
	}
	return nil
}

// GetByKey retrieves a repository by tenant and key.
func (m *MySQLRepositoryStore) GetByKey(
	ctx context.Context,
	tenantID uuid.UUID,
	key string,
) (*registryDomain.Repository, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, tenant_id, repo_key, repo_type, created_at
			  FROM repositories
			  WHERE tenant_id = ? AND repo_key = ?`

	var repo registryDomain.Repository
	var id, rowTenantID, repoType string
	err := querier.QueryRowContext(ctx, query, tenantID.String(), key).Scan(
		&id,
		&rowTenantID,
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

	if err := scanRepositoryIDs(&repo, id, rowTenantID); err != nil {
		return nil, err
	}
	repo.Type = registryDomain.RepositoryType(repoType)
	return &repo, nil
}

// List retrieves all repositories of a tenant ordered by key.
func (m *MySQLRepositoryStore) List(
	ctx context.Context,
	tenantID uuid.UUID,
) ([]*registryDomain.Repository, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, tenant_id, repo_key, repo_type, created_at
			  FROM repositories
			  WHERE tenant_id = ?
			  ORDER BY repo_key`

	rows, err := querier.QueryContext(ctx, query, tenantID.String())
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to list repositories")
	}
	defer rows.Close()

	var repos []*registryDomain.Repository
	for rows.Next() {
		var repo registryDomain.Repository
		var id, rowTenantID, repoType string
		err := rows.Scan(&id, &rowTenantID, &repo.Key, &repoType, &repo.CreatedAt)
		if err != nil {
			return nil, apperrors.Unavailable(err, "failed to scan repository")
		}
		if err := scanRepositoryIDs(&repo, id, rowTenantID); err != nil {
			return nil, err
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
func (m *MySQLRepositoryStore) Delete(ctx context.Context, tenantID uuid.UUID, key string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM repositories WHERE tenant_id = ? AND repo_key = ?`

	result, err := querier.ExecContext(ctx, query, tenantID.String(), key)
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

func scanRepositoryIDs(repo *registryDomain.Repository, id, tenantID string) error {
	var err error
	repo.ID, err = uuid.Parse(id)
	if err != nil {
		return apperrors.Unavailable(err, "failed to parse repository id")
	}
	repo.TenantID, err = uuid.Parse(tenantID)
	if err != nil {
		return apperrors.Unavailable(err, "failed to parse tenant id")
	}
	return nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint
// violation (Error 1062: Duplicate entry).
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}

// NewMySQLRepositoryStore creates a new MySQL repository metadata store.
func NewMySQLRepositoryStore(db *sql.DB) *MySQLRepositoryStore {
	return &MySQLRepositoryStore{db: db}
}
