package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	authService "github.com/allisson/registry/internal/auth/service"
)

// RunHashBootstrapSecret hashes a bootstrap secret with Argon2id and prints
// the value for the BOOTSTRAP_SECRET_HASH environment variable. When no
// secret is given, a cryptographically random one is generated and printed
// alongside the hash.
func RunHashBootstrapSecret(w io.Writer, secret string) error {
	generated := false
	if secret == "" {
		randomBytes := make([]byte, 32)
		if _, err := rand.Read(randomBytes); err != nil {
			return fmt.Errorf("failed to generate secret: %w", err)
		}
		secret = hex.EncodeToString(randomBytes)
		generated = true
	}

	hash, err := authService.HashBootstrapSecret(secret)
	if err != nil {
		return fmt.Errorf("failed to hash secret: %w", err)
	}

	if generated {
		fmt.Fprintln(w, "# Generated secret (store it securely, it is shown only once):")
		fmt.Fprintf(w, "BOOTSTRAP_SECRET=%q\n\n", secret)
	}

	fmt.Fprintf(w, "BOOTSTRAP_SECRET_HASH=%q\n", hash)
	return nil
}
