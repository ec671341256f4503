package domain

import (
	"time"

	"github.com/google/uuid"
)

// PersonalAccessToken is a bearer credential tied to a subject within a tenant.
// Only the SHA-256 hash of the plaintext credential is stored; the plaintext is
// returned exactly once at issuance. A token is usable for authentication iff
// RevokedAt is unset and the current time is before ExpiresAt. Tokens are never
// physically deleted: revocation is a one-way transition kept for forensics.
type PersonalAccessToken struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Subject   string
	Scopes    []Scope
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedBy string
	CreatedAt time.Time
}

// IsActive reports whether the token is usable for authentication at the given time.
func (t *PersonalAccessToken) IsActive(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

// IssueTokenInput contains the parameters for issuing a personal access token.
// Principal is nil for anonymous (bootstrap) issuance; BootstrapSecret carries
// the out-of-band secret when presented.
type IssueTokenInput struct {
	TenantSlug      string
	TenantName      string
	Subject         string
	Scopes          []string
	TTLMinutes      int
	BootstrapSecret string
	Principal       *Principal
}

// IssueTokenOutput contains the result of token issuance.
// SECURITY: PlainToken is only returned once and must be transmitted securely
// to the caller. It is never persisted or logged and cannot be recovered.
type IssueTokenOutput struct {
	Token      *PersonalAccessToken
	PlainToken string
}

// RevokeTokenInput contains the parameters for revoking a token. The operation
// is scoped to the caller's tenant and is idempotent: revoking a missing or
// already-revoked token reports Revoked=false without error.
type RevokeTokenInput struct {
	TokenID uuid.UUID
}

// RevokeTokenOutput reports whether the token transitioned from active to revoked.
type RevokeTokenOutput struct {
	Revoked bool
}
