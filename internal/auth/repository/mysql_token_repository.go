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

// MySQLTokenRepository implements personal access token persistence for
// MySQL. Uses CHAR(36) string UUIDs.
type MySQLTokenRepository struct {
	db *sql.DB
}

// Create inserts a new token into the MySQL database. Scopes are stored as a
// JSON array of canonical scope strings.
func (m *MySQLTokenRepository) Create(
	ctx context.Context,
	token *authDomain.PersonalAccessToken,
) error {
	querier := database.GetTx(ctx, m.db)

	scopesJSON, err := json.Marshal(authDomain.ScopeStrings(token.Scopes))
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal token scopes")
	}

	query := `INSERT INTO tokens (id, tenant_id, subject, scopes, token_hash, expires_at, revoked_at, created_by, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		token.ID.String(),
		token.TenantID.String(),
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
// Expiry is evaluated against the database UTC clock so all instances agree;
// rows are written with UTC timestamps, so the session time zone must not
// leak into the comparison.
func (m *MySQLTokenRepository) GetActiveByHash(
	ctx context.Context,
	tokenHash string,
) (*authDomain.PersonalAccessToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, tenant_id, subject, scopes, token_hash, expires_at, revoked_at, created_by, created_at
			  FROM tokens
			  WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP(6)`

	var token authDomain.PersonalAccessToken
	var id, tenantID string
	var scopesJSON []byte

	err := querier.QueryRowContext(ctx, query, tokenHash).Scan(
		&id,
		&tenantID,
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

	token.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to parse token id")
	}
	token.TenantID, err = uuid.Parse(tenantID)
	if err != nil {
		return nil, apperrors.Unavailable(err, "failed to parse tenant id")
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
func (m *MySQLTokenRepository) Revoke(
	ctx context.Context,
	tenantID uuid.UUID,
	tokenID uuid.UUID,
	revokedBy string,
	revokedAt time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	updateQuery := `UPDATE tokens
					SET revoked_at = ?
					WHERE id = ? AND tenant_id = ? AND revoked_at IS NULL`

	result, err := querier.ExecContext(ctx, updateQuery, revokedAt, tokenID.String(), tenantID.String())
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
					VALUES (?, ?, ?)`

	_, err = querier.ExecContext(ctx, insertQuery, tokenID.String(), revokedBy, revokedAt)
	if err != nil {
		return false, apperrors.Unavailable(err, "failed to record token revocation")
	}

	return true, nil
}

// HasTokens reports whether the tenant has any token rows of any status.
func (m *MySQLTokenRepository) HasTokens(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT EXISTS(SELECT 1 FROM tokens WHERE tenant_id = ?)`

	var exists bool
	err := querier.QueryRowContext(ctx, query, tenantID.String()).Scan(&exists)
	if err != nil {
		return false, apperrors.Unavailable(err, "failed to count tenant tokens")
	}
	return exists, nil
}

// NewMySQLTokenRepository creates a new MySQL token repository.
func NewMySQLTokenRepository(db *sql.DB) *MySQLTokenRepository {
	return &MySQLTokenRepository{db: db}
}
