package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	authDomain "github.com/allisson/registry/internal/auth/domain"
	authUseCase "github.com/allisson/registry/internal/auth/usecase"
)

// RunBootstrapToken issues a personal access token through the bootstrap
// secret, without any existing credential. This is the operator recovery
// path: it works even when every administrative token of the tenant has been
// revoked or has expired.
//
// Requirements: Database must be migrated and accessible, and
// BOOTSTRAP_SECRET_HASH must be configured.
func RunBootstrapToken(
	ctx context.Context,
	tokenUseCase authUseCase.TokenUseCase,
	logger *slog.Logger,
	w io.Writer,
	tenantSlug string,
	subject string,
	scopes []string,
	ttlMinutes int,
	secret string,
	format string,
) error {
	if secret == "" {
		return fmt.Errorf("bootstrap secret must not be empty")
	}

	logger.Info("issuing bootstrap token",
		slog.String("tenant", tenantSlug),
		slog.String("subject", subject),
		slog.Int("ttl_minutes", ttlMinutes),
	)

	output, err := tokenUseCase.Issue(ctx, &authDomain.IssueTokenInput{
		TenantSlug:      tenantSlug,
		Subject:         subject,
		Scopes:          scopes,
		TTLMinutes:      ttlMinutes,
		BootstrapSecret: secret,
	})
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	if format == "json" {
		return outputBootstrapTokenJSON(w, output)
	}
	outputBootstrapTokenText(w, output)

	logger.Info("bootstrap token issued", slog.String("token_id", output.Token.ID.String()))
	return nil
}

// outputBootstrapTokenText outputs the result in human-readable text format.
// The plaintext token is shown exactly once and cannot be recovered.
func outputBootstrapTokenText(w io.Writer, output *authDomain.IssueTokenOutput) {
	fmt.Fprintf(w, "Token ID:   %s\n", output.Token.ID)
	fmt.Fprintf(w, "Subject:    %s\n", output.Token.Subject)
	fmt.Fprintf(w, "Scopes:     %s\n", strings.Join(authDomain.ScopeStrings(output.Token.Scopes), ", "))
	fmt.Fprintf(w, "Expires at: %s\n", output.Token.ExpiresAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Token:      %s\n", output.PlainToken)
	fmt.Fprintln(w, "\nStore the token now: it is not persisted and cannot be shown again.")
}

// outputBootstrapTokenJSON outputs the result in JSON format for machine consumption.
func outputBootstrapTokenJSON(w io.Writer, output *authDomain.IssueTokenOutput) error {
	result := map[string]interface{}{
		"id":         output.Token.ID.String(),
		"subject":    output.Token.Subject,
		"scopes":     authDomain.ScopeStrings(output.Token.Scopes),
		"expires_at": output.Token.ExpiresAt.Format(time.RFC3339),
		"token":      output.PlainToken,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Fprintln(w, string(jsonBytes))
	return nil
}
