package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/registry/internal/errors"
)

// bootstrapSecretVerifier implements BootstrapSecretVerifier using Argon2id.
// The configured value is a pwdhash-formatted hash, never the plaintext: the
// secret itself lives only in the operator's hands.
type bootstrapSecretVerifier struct {
	hasher     *pwdhash.PasswordHasher
	secretHash string
}

// Enabled reports whether a bootstrap secret hash is configured.
func (b *bootstrapSecretVerifier) Enabled() bool {
	return b.secretHash != ""
}

// Verify performs a constant-time comparison of the presented secret against
// the configured Argon2id hash. Returns false when the bootstrap path is
// disabled or the secret doesn't match.
func (b *bootstrapSecretVerifier) Verify(presented string) bool {
	if !b.Enabled() || presented == "" {
		return false
	}
	ok, err := b.hasher.Verify([]byte(presented), b.secretHash)
	if err != nil {
		return false
	}
	return ok
}

// NewBootstrapSecretVerifier creates a BootstrapSecretVerifier for the given
// Argon2id hash. An empty hash disables the bootstrap path.
func NewBootstrapSecretVerifier(secretHash string) BootstrapSecretVerifier {
	return &bootstrapSecretVerifier{
		hasher:     newHasher(),
		secretHash: secretHash,
	}
}

// HashBootstrapSecret hashes a plaintext bootstrap secret with Argon2id for
// storage in configuration. Used by the hash-bootstrap-secret command.
func HashBootstrapSecret(plainSecret string) (string, error) {
	hashed, err := newHasher().Hash([]byte(plainSecret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash bootstrap secret")
	}
	return hashed, nil
}

// newHasher creates the Argon2id hasher with the Moderate policy, a balance
// between security and verification latency on the issuance path.
func newHasher() *pwdhash.PasswordHasher {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}
	return hasher
}
