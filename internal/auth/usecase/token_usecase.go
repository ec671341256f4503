package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/registry/internal/audit/domain"
	auditUseCase "github.com/allisson/registry/internal/audit/usecase"
	authDomain "github.com/allisson/registry/internal/auth/domain"
	"github.com/allisson/registry/internal/auth/service"
	"github.com/allisson/registry/internal/database"
	apperrors "github.com/allisson/registry/internal/errors"
)

const (
	minTTLMinutes = 5
	maxTTLMinutes = 1440
)

type tokenUseCase struct {
	txManager         database.TxManager
	tokenRepo         TokenRepository
	bindingRepo       RoleBindingRepository
	tenantRepo        TenantRepository
	tokenService      service.TokenService
	bootstrapVerifier service.BootstrapSecretVerifier
	audit             auditUseCase.UseCase
	now               func() time.Time
}

func (t *tokenUseCase) Issue(
	ctx context.Context,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	slug := strings.ToLower(strings.TrimSpace(input.TenantSlug))
	if slug == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "tenant slug must not be empty")
	}

	subject := strings.ToLower(strings.TrimSpace(input.Subject))
	if subject == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "subject must not be empty")
	}

	if input.TTLMinutes < minTTLMinutes || input.TTLMinutes > maxTTLMinutes {
		return nil, apperrors.Wrap(
			apperrors.ErrInvalidInput,
			fmt.Sprintf("ttl_minutes must be between %d and %d", minTTLMinutes, maxTTLMinutes),
		)
	}

	displayName := strings.TrimSpace(input.TenantName)
	if displayName == "" {
		displayName = slug
	}

	// The gate runs before the tenant is resolved so a refused caller never
	// leaves a tenant row behind: Resolve upserts by slug.
	actor, viaBootstrap, err := t.authorizeIssuance(input)
	if err != nil {
		return nil, err
	}

	tenant, err := t.tenantRepo.Resolve(ctx, slug, displayName)
	if err != nil {
		return nil, err
	}

	if input.Principal != nil && input.Principal.TenantID != tenant.ID {
		return nil, apperrors.Wrap(
			apperrors.ErrForbidden, "credential does not belong to the target tenant",
		)
	}

	hasTokens, err := t.tokenRepo.HasTokens(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}

	scopes, err := t.resolveScopes(ctx, tenant.ID, subject, input.Scopes)
	if err != nil {
		return nil, err
	}

	plainToken, tokenHash, err := t.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}

	now := t.now()
	token := &authDomain.PersonalAccessToken{
		ID:        uuid.Must(uuid.NewV7()),
		TenantID:  tenant.ID,
		Subject:   subject,
		Scopes:    scopes,
		TokenHash: tokenHash,
		ExpiresAt: now.Add(time.Duration(input.TTLMinutes) * time.Minute),
		CreatedBy: actor,
		CreatedAt: now,
	}

	err = t.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := t.tokenRepo.Create(ctx, token); err != nil {
			return err
		}
		return t.audit.Append(ctx, &auditDomain.AppendInput{
			TenantID:     tenant.ID,
			Actor:        actor,
			Action:       auditDomain.ActionTokenIssued,
			ResourceType: auditDomain.ResourceTypeToken,
			ResourceID:   token.ID.String(),
			Details: map[string]any{
				"subject":           subject,
				"ttl_minutes":       input.TTLMinutes,
				"scopes":            strings.Join(authDomain.ScopeStrings(scopes), ","),
				"bootstrap":         viaBootstrap,
				"tenant_had_tokens": hasTokens,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	return &authDomain.IssueTokenOutput{Token: token, PlainToken: plainToken}, nil
}

// authorizeIssuance applies the issuance gate: a wildcard admin principal may
// always issue, the bootstrap secret unlocks issuance for anyone presenting
// it, and everything else is refused. The gate needs no tenant state; the
// caller still has to verify that an authenticated principal belongs to the
// target tenant once it is resolved.
func (t *tokenUseCase) authorizeIssuance(
	input *authDomain.IssueTokenInput,
) (actor string, viaBootstrap bool, err error) {
	principal := input.Principal
	if principal != nil && principal.IsWildcardAdmin() {
		return principal.Subject, false, nil
	}

	if input.BootstrapSecret != "" {
		if !t.bootstrapVerifier.Enabled() {
			return "", false, apperrors.Wrap(
				apperrors.ErrForbidden, "bootstrap issuance is disabled",
			)
		}
		if !t.bootstrapVerifier.Verify(input.BootstrapSecret) {
			return "", false, authDomain.ErrInvalidCredentials
		}
		if principal != nil {
			return principal.Subject, true, nil
		}
		return auditDomain.ActorBootstrap, true, nil
	}

	return "", false, apperrors.Wrap(
		apperrors.ErrForbidden,
		"token issuance requires an admin credential on scope \"*\" or the bootstrap secret",
	)
}

// resolveScopes parses the explicit scope list when present, otherwise derives
// scopes from the subject's role bindings. Either path must yield at least one
// scope.
func (t *tokenUseCase) resolveScopes(
	ctx context.Context,
	tenantID uuid.UUID,
	subject string,
	requested []string,
) ([]authDomain.Scope, error) {
	if len(requested) > 0 {
		return authDomain.ParseScopes(requested)
	}

	bindings, err := t.bindingRepo.ListBySubject(ctx, tenantID, subject)
	if err != nil {
		return nil, err
	}

	var derived []string
	for _, binding := range bindings {
		derived = append(derived, authDomain.ScopeStrings(binding.Scopes())...)
	}
	if len(derived) == 0 {
		return nil, apperrors.Wrap(
			apperrors.ErrInvalidInput,
			fmt.Sprintf("no scopes requested and subject %q has no role bindings", subject),
		)
	}
	return authDomain.ParseScopes(derived)
}

func (t *tokenUseCase) Revoke(
	ctx context.Context,
	principal *authDomain.Principal,
	input *authDomain.RevokeTokenInput,
) (*authDomain.RevokeTokenOutput, error) {
	if principal == nil {
		return nil, authDomain.ErrInvalidCredentials
	}

	revokedAt := t.now()
	var revoked bool

	err := t.txManager.WithTx(ctx, func(ctx context.Context) error {
		wasActive, err := t.tokenRepo.Revoke(
			ctx, principal.TenantID, input.TokenID, principal.Subject, revokedAt,
		)
		if err != nil {
			return err
		}
		revoked = wasActive
		if !wasActive {
			return nil
		}
		return t.audit.Append(ctx, &auditDomain.AppendInput{
			TenantID:     principal.TenantID,
			Actor:        principal.Subject,
			Action:       auditDomain.ActionTokenRevoked,
			ResourceType: auditDomain.ResourceTypeToken,
			ResourceID:   input.TokenID.String(),
			Details: map[string]any{
				"revoked_by": principal.Subject,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	return &authDomain.RevokeTokenOutput{Revoked: revoked}, nil
}

func (t *tokenUseCase) Authenticate(
	ctx context.Context,
	plainToken string,
) (*authDomain.Principal, error) {
	if plainToken == "" {
		return nil, authDomain.ErrInvalidCredentials
	}

	tokenHash := t.tokenService.HashToken(plainToken)
	token, err := t.tokenRepo.GetActiveByHash(ctx, tokenHash)
	if err != nil {
		if apperrors.Is(err, authDomain.ErrTokenNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	// The store only returns active rows, but the row may have expired
	// between the query and now; re-check against the use case clock.
	if !token.IsActive(t.now()) {
		return nil, authDomain.ErrInvalidCredentials
	}

	return &authDomain.Principal{
		TenantID: token.TenantID,
		TokenID:  token.ID,
		Subject:  token.Subject,
		Scopes:   token.Scopes,
	}, nil
}

// NewTokenUseCase creates a token lifecycle use case.
func NewTokenUseCase(
	txManager database.TxManager,
	tokenRepo TokenRepository,
	bindingRepo RoleBindingRepository,
	tenantRepo TenantRepository,
	tokenService service.TokenService,
	bootstrapVerifier service.BootstrapSecretVerifier,
	audit auditUseCase.UseCase,
) TokenUseCase {
	return &tokenUseCase{
		txManager:         txManager,
		tokenRepo:         tokenRepo,
		bindingRepo:       bindingRepo,
		tenantRepo:        tenantRepo,
		tokenService:      tokenService,
		bootstrapVerifier: bootstrapVerifier,
		audit:             audit,
		now:               func() time.Time { return time.Now().UTC() },
	}
}
