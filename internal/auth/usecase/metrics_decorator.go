package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/registry/internal/auth/domain"
	"github.com/allisson/registry/internal/metrics"
)

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Issue records metrics for token issuance operations.
func (t *tokenUseCaseWithMetrics) Issue(
	ctx context.Context,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	start := time.Now()
	output, err := t.next.Issue(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "auth", "token_issue", status)
	t.metrics.RecordDuration(ctx, "auth", "token_issue", time.Since(start), status)

	return output, err
}

// Revoke records metrics for token revocation operations.
func (t *tokenUseCaseWithMetrics) Revoke(
	ctx context.Context,
	principal *authDomain.Principal,
	input *authDomain.RevokeTokenInput,
) (*authDomain.RevokeTokenOutput, error) {
	start := time.Now()
	output, err := t.next.Revoke(ctx, principal, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "auth", "token_revoke", status)
	t.metrics.RecordDuration(ctx, "auth", "token_revoke", time.Since(start), status)

	return output, err
}

// Authenticate records metrics for credential resolution operations.
func (t *tokenUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	plainToken string,
) (*authDomain.Principal, error) {
	start := time.Now()
	principal, err := t.next.Authenticate(ctx, plainToken)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "auth", "authenticate", status)
	t.metrics.RecordDuration(ctx, "auth", "authenticate", time.Since(start), status)

	return principal, err
}

// roleBindingUseCaseWithMetrics decorates RoleBindingUseCase with metrics
// instrumentation.
type roleBindingUseCaseWithMetrics struct {
	next    RoleBindingUseCase
	metrics metrics.BusinessMetrics
}

// NewRoleBindingUseCaseWithMetrics wraps a RoleBindingUseCase with metrics
// recording.
func NewRoleBindingUseCaseWithMetrics(
	useCase RoleBindingUseCase,
	m metrics.BusinessMetrics,
) RoleBindingUseCase {
	return &roleBindingUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Upsert records metrics for role binding upsert operations.
func (r *roleBindingUseCaseWithMetrics) Upsert(
	ctx context.Context,
	principal *authDomain.Principal,
	input *authDomain.UpsertRoleBindingInput,
) (*authDomain.RoleBinding, error) {
	start := time.Now()
	binding, err := r.next.Upsert(ctx, principal, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "auth", "binding_upsert", status)
	r.metrics.RecordDuration(ctx, "auth", "binding_upsert", time.Since(start), status)

	return binding, err
}

// ListByRepository records metrics for role binding list operations.
func (r *roleBindingUseCaseWithMetrics) ListByRepository(
	ctx context.Context,
	tenantID uuid.UUID,
	repositoryKey string,
) ([]*authDomain.RoleBinding, error) {
	start := time.Now()
	bindings, err := r.next.ListByRepository(ctx, tenantID, repositoryKey)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "auth", "binding_list", status)
	r.metrics.RecordDuration(ctx, "auth", "binding_list", time.Since(start), status)

	return bindings, err
}
