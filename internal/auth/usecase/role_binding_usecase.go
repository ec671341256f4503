package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/registry/internal/audit/domain"
	auditUseCase "github.com/allisson/registry/internal/audit/usecase"
	authDomain "github.com/allisson/registry/internal/auth/domain"
	"github.com/allisson/registry/internal/database"
	apperrors "github.com/allisson/registry/internal/errors"
)

type roleBindingUseCase struct {
	txManager    database.TxManager
	bindingRepo  RoleBindingRepository
	repoResolver RepositoryResolver
	audit        auditUseCase.UseCase
	now          func() time.Time
}

func (r *roleBindingUseCase) Upsert(
	ctx context.Context,
	principal *authDomain.Principal,
	input *authDomain.UpsertRoleBindingInput,
) (*authDomain.RoleBinding, error) {
	if principal == nil {
		return nil, authDomain.ErrInvalidCredentials
	}

	subject := strings.ToLower(strings.TrimSpace(input.Subject))
	if subject == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "subject must not be empty")
	}

	key := strings.ToLower(strings.TrimSpace(input.RepositoryKey))
	if key == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "repository key must not be empty")
	}

	roles, err := parseRoles(input.Roles)
	if err != nil {
		return nil, err
	}

	// Bindings reference concrete repositories only; the wildcard exists on
	// token scopes, not on bindings.
	if _, err := r.repoResolver.GetByKey(ctx, principal.TenantID, key); err != nil {
		return nil, err
	}

	now := r.now()
	binding := &authDomain.RoleBinding{
		ID:            uuid.Must(uuid.NewV7()),
		TenantID:      principal.TenantID,
		RepositoryKey: key,
		Subject:       subject,
		Roles:         roles,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := r.bindingRepo.Upsert(ctx, binding); err != nil {
			return err
		}
		return r.audit.Append(ctx, &auditDomain.AppendInput{
			TenantID:     principal.TenantID,
			Actor:        principal.Subject,
			Action:       auditDomain.ActionBindingUpserted,
			ResourceType: auditDomain.ResourceTypeRoleBinding,
			ResourceID:   key,
			Details: map[string]any{
				"subject": subject,
				"roles":   rolesText(roles),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	return binding, nil
}

func (r *roleBindingUseCase) ListByRepository(
	ctx context.Context,
	tenantID uuid.UUID,
	repositoryKey string,
) ([]*authDomain.RoleBinding, error) {
	key := strings.ToLower(strings.TrimSpace(repositoryKey))
	if key == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "repository key must not be empty")
	}
	return r.bindingRepo.ListByRepository(ctx, tenantID, key)
}

// parseRoles normalizes and deduplicates a textual role list, requiring at
// least one valid role.
func parseRoles(texts []string) ([]authDomain.Role, error) {
	if len(texts) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "at least one role is required")
	}

	seen := make(map[authDomain.Role]bool, len(texts))
	roles := make([]authDomain.Role, 0, len(texts))
	for _, text := range texts {
		role, err := authDomain.ParseRole(text)
		if err != nil {
			return nil, err
		}
		if seen[role] {
			continue
		}
		seen[role] = true
		roles = append(roles, role)
	}
	return roles, nil
}

func rolesText(roles []authDomain.Role) string {
	parts := make([]string, len(roles))
	for i, role := range roles {
		parts[i] = role.String()
	}
	return strings.Join(parts, ",")
}

// NewRoleBindingUseCase creates a role binding management use case.
func NewRoleBindingUseCase(
	txManager database.TxManager,
	bindingRepo RoleBindingRepository,
	repoResolver RepositoryResolver,
	audit auditUseCase.UseCase,
) RoleBindingUseCase {
	return &roleBindingUseCase{
		txManager:    txManager,
		bindingRepo:  bindingRepo,
		repoResolver: repoResolver,
		audit:        audit,
		now:          func() time.Time { return time.Now().UTC() },
	}
}
