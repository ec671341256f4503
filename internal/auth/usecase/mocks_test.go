package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/registry/internal/audit/domain"
	authDomain "github.com/allisson/registry/internal/auth/domain"
	registryDomain "github.com/allisson/registry/internal/registry/domain"
	tenantDomain "github.com/allisson/registry/internal/tenant/domain"
)

// mockTxManager runs the transactional function directly, without a database.
type mockTxManager struct {
	mock.Mock
}

func (m *mockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type mockTokenRepository struct {
	mock.Mock
}

func (m *mockTokenRepository) Create(ctx context.Context, token *authDomain.PersonalAccessToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockTokenRepository) GetActiveByHash(
	ctx context.Context,
	tokenHash string,
) (*authDomain.PersonalAccessToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.PersonalAccessToken), args.Error(1)
}

func (m *mockTokenRepository) Revoke(
	ctx context.Context,
	tenantID uuid.UUID,
	tokenID uuid.UUID,
	revokedBy string,
	revokedAt time.Time,
) (bool, error) {
	args := m.Called(ctx, tenantID, tokenID, revokedBy, revokedAt)
	return args.Bool(0), args.Error(1)
}

func (m *mockTokenRepository) HasTokens(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID)
	return args.Bool(0), args.Error(1)
}

type mockRoleBindingRepository struct {
	mock.Mock
}

func (m *mockRoleBindingRepository) Upsert(ctx context.Context, binding *authDomain.RoleBinding) error {
	args := m.Called(ctx, binding)
	return args.Error(0)
}

func (m *mockRoleBindingRepository) ListBySubject(
	ctx context.Context,
	tenantID uuid.UUID,
	subject string,
) ([]*authDomain.RoleBinding, error) {
	args := m.Called(ctx, tenantID, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.RoleBinding), args.Error(1)
}

func (m *mockRoleBindingRepository) ListByRepository(
	ctx context.Context,
	tenantID uuid.UUID,
	repositoryKey string,
) ([]*authDomain.RoleBinding, error) {
	args := m.Called(ctx, tenantID, repositoryKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.RoleBinding), args.Error(1)
}

type mockTenantRepository struct {
	mock.Mock
}

func (m *mockTenantRepository) Resolve(
	ctx context.Context,
	slug, displayName string,
) (*tenantDomain.Tenant, error) {
	args := m.Called(ctx, slug, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.Tenant), args.Error(1)
}

type mockRepositoryResolver struct {
	mock.Mock
}

func (m *mockRepositoryResolver) GetByKey(
	ctx context.Context,
	tenantID uuid.UUID,
	key string,
) (*registryDomain.Repository, error) {
	args := m.Called(ctx, tenantID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.Repository), args.Error(1)
}

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) GenerateToken() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockTokenService) HashToken(plainToken string) string {
	args := m.Called(plainToken)
	return args.String(0)
}

type mockBootstrapVerifier struct {
	mock.Mock
}

func (m *mockBootstrapVerifier) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *mockBootstrapVerifier) Verify(presented string) bool {
	args := m.Called(presented)
	return args.Bool(0)
}

type mockAuditUseCase struct {
	mock.Mock
}

func (m *mockAuditUseCase) Append(ctx context.Context, input *auditDomain.AppendInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *mockAuditUseCase) Read(
	ctx context.Context,
	tenantID uuid.UUID,
	limit int,
) ([]*auditDomain.Record, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auditDomain.Record), args.Error(1)
}
