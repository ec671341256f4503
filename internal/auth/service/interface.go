// Package service provides technical services for authentication operations.
//
// This package implements reusable services for token generation and hashing
// and for verifying the out-of-band bootstrap secret.
package service

// TokenService defines operations for access token generation and hashing.
// Implementations must use cryptographically secure random generation and a
// fast one-way digest suitable for lookup by hash (e.g., SHA-256).
type TokenService interface {
	// GenerateToken creates a new cryptographically secure random token.
	// Returns both the plain text token (to be shared with the caller exactly
	// once) and the hashed version (to be stored in the database). The random
	// space is large enough that collisions are treated as impossible; no
	// uniqueness check is performed.
	GenerateToken() (plainToken string, tokenHash string, err error)

	// HashToken hashes a plain text token. Used for authentication lookup by
	// comparing against the persisted hash.
	HashToken(plainToken string) string
}

// BootstrapSecretVerifier verifies a presented bootstrap secret against the
// configured hash. Used for the one-time pre-authentication path that creates
// the first administrative credential of a tenant, and as the operator
// recovery escape hatch afterwards.
type BootstrapSecretVerifier interface {
	// Enabled reports whether a bootstrap secret is configured at all.
	Enabled() bool

	// Verify performs a constant-time comparison of the presented secret
	// against the configured hash. Returns false when no secret is configured.
	Verify(presented string) bool
}
