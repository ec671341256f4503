// Package repository implements persistence for tokens and role bindings.
// Repositories support both PostgreSQL and MySQL with transaction support via
// database.GetTx().
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/registry/internal/auth/domain"
	"github.com/allisson/registry/internal/database"
	apperrors "github.com/allisson/registry/internal/errors"
)

// PostgreSQLTokenRepository implements personal access token persistence for
// PostgreSQL. Uses native UUID types.
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

// Create inserts a new token into the PostgreSQL database. Scopes are stored
// as a JSON array of canonical scope strings.
func (p *PostgreSQLTokenRepository) Create(
	ctx context.Context,
	token *authDomain.PersonalAccessToken,
) error {
	querier := database.GetTx(ctx, p.db)

	scopesJSON, err := json.Marshal(authDomain.ScopeStrings(token.Scopes))
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal token scopes")
	}

	query := `INSERT INTO tokens (id, tenant_id, subject, scopes, token_hash, expires_at, revoked_at, created_by, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = querier.ExecContext(
		ctx,
		query,
		token.ID,
		token.TenantID,
		token.Subject,
		scopesJSON,
		token.TokenHash,
		token.ExpiresAt,
		token.RevokedAt,
		token.CreatedBy,
		token.CreatedAt,
	)
	if err != nil {
		return apperrors.Unavailable(err, "failed to create token")
	}
	return nil
}

// GetActiveByHash retrieves an unrevoked, unexpired token by its hash.
// Expiry is evaluated against the database clock so all instances agree.
func (p *PostgreSQLTokenRepository) GetActiveByHash(
	ctx context.Context,
	tokenHash string,
) (*authDomain.PersonalAccessToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, tenant_id, subject, scopes, token_hash, expires_at, revoked_at, created_by, created_at
			  FROM tokens
			  WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > now()`

	var token authDomain.PersonalAccessToken
	var scopesJSON []byte

	err := querier.QueryRowContext(ctx, query, tokenHash).Scan(
		&token.ID,
		&token.TenantID,
		&token.Subject,
		&scopesJSON,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.RevokedAt,
		&token.CreatedBy,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrTokenNotFound
		}
		return nil, apperrors.Unavailable(err, "failed to get token by hash")
	}

	token.Scopes, err = unmarshalScopes(scopesJSON)
	if err != nil {
		return nil, err
	}

	return &token, nil
}

// Revoke marks the token revoked and records who revoked it. Both statements
// run through the same querier, so when called inside a transaction they
// commit or roll back together. Returns false when the token is absent or
// already revoked.
func (p *PostgreSQLTokenRepository) Revoke(
	ctx context.Context,
	tenantID uuid.UUID,
	tokenID uuid.UUID,
	revokedBy string,
	revokedAt time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	updateQuery := `UPDATE tokens
					SET revoked_at = $1
					WHERE id = $2 AND tenant_id = $3 AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, updateQuery, revokedAt, tokenID, tenantID)
	if err != nil {
		return false, apperrors.Unavailable(err, "failed to revoke token")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Unavailable(err, "failed to read revoke result")
	}
	if affected == 0 {
		return false, nil
	}

	insertQuery := `INSERT INTO token_revocations (token_id, revoked_by, revoked_at)
					VALUES ($1, $2, $3)`

	_, err = querier.ExecContext(ctx, insertQuery, tokenID, revokedBy, revokedAt)
	if err != nil {
		return false, apperrors.Unavailable(err, "failed to record token revocation")
	}

	return true, nil
}

// HasTokens reports whether the tenant has any token rows of any status.
func (p *PostgreSQLTokenRepository) HasTokens(
	ctx context.Context,
	tenantID uuid.UUID,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT EXISTS(SELECT 1 FROM tokens WHERE tenant_id = $1)`

	var exists bool
	err := querier.QueryRowContext(ctx, query, tenantID).Scan(&exists)
	if err != nil {
		return false, apperrors.Unavailable(err, "failed to count tenant tokens")
	}
	return exists, nil
}

// unmarshalScopes decodes and re-validates persisted scope strings. A row
// that no longer parses is an infrastructure fault: credentials backed by it
// must not authenticate with partial permissions.
func unmarshalScopes(scopesJSON []byte) ([]authDomain.Scope, error) {
	var texts []string
	if err := json.Unmarshal(scopesJSON, &texts); err != nil {
		return nil, apperrors.Unavailable(err, "failed to unmarshal token scopes")
	}

	scopes, err := authDomain.ParseScopes(texts)
	if err != nil {
		return nil, apperrors.Unavailable(err, "persisted token scopes failed validation")
	}
	return scopes, nil
}

// NewPostgreSQLTokenRepository creates a new PostgreSQL token repository.
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db}
}
