package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/registry/internal/audit/domain"
	apperrors "github.com/allisson/registry/internal/errors"
	registryDomain "github.com/allisson/registry/internal/registry/domain"
)

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

type mockRepositoryStore struct {
	mock.Mock
}

func (m *mockRepositoryStore) Create(ctx context.Context, repo *registryDomain.Repository) error {
	args := m.Called(ctx, repo)
	return args.Error(0)
}

func (m *mockRepositoryStore) GetByKey(
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

func (m *mockRepositoryStore) List(
	ctx context.Context,
	tenantID uuid.UUID,
) ([]*registryDomain.Repository, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*registryDomain.Repository), args.Error(1)
}

func (m *mockRepositoryStore) Delete(ctx context.Context, tenantID uuid.UUID, key string) error {
	args := m.Called(ctx, tenantID, key)
	return args.Error(0)
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

// TestRepositoryUseCase_Create tests the Create method of repositoryUseCase.
func TestRepositoryUseCase_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		txManager := &mockTxManager{}
		store := &mockRepositoryStore{}
		audit := &mockAuditUseCase{}
		useCase := NewRepositoryUseCase(txManager, store, audit)

		txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		store.On("Create", ctx, mock.AnythingOfType("*domain.Repository")).Return(nil)
		audit.On("Append", ctx, mock.MatchedBy(func(input *auditDomain.AppendInput) bool {
			return input.Action == auditDomain.ActionRepositoryCreated &&
				input.ResourceID == "npm-local" &&
				input.Actor == "root"
		})).Return(nil)

		repo, err := useCase.Create(ctx, tenantID, "root", &registryDomain.CreateRepositoryInput{
			Key:  "NPM-Local",
			Type: "local",
		})

		assert.NoError(t, err)
		assert.Equal(t, "npm-local", repo.Key)
		assert.Equal(t, registryDomain.TypeLocal, repo.Type)
		assert.Equal(t, tenantID, repo.TenantID)
		audit.AssertExpectations(t)
	})

	t.Run("Error_DuplicateKey", func(t *testing.T) {
		txManager := &mockTxManager{}
		store := &mockRepositoryStore{}
		audit := &mockAuditUseCase{}
		useCase := NewRepositoryUseCase(txManager, store, audit)

		txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		store.On("Create", ctx, mock.AnythingOfType("*domain.Repository")).
			Return(registryDomain.ErrRepositoryAlreadyExists)

		repo, err := useCase.Create(ctx, tenantID, "root", &registryDomain.CreateRepositoryInput{
			Key:  "npm-local",
			Type: "local",
		})

		assert.Nil(t, repo)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		audit.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("Error_UnknownType", func(t *testing.T) {
		useCase := NewRepositoryUseCase(&mockTxManager{}, &mockRepositoryStore{}, &mockAuditUseCase{})

		_, err := useCase.Create(ctx, tenantID, "root", &registryDomain.CreateRepositoryInput{
			Key:  "npm-local",
			Type: "mirror",
		})

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_EmptyKey", func(t *testing.T) {
		useCase := NewRepositoryUseCase(&mockTxManager{}, &mockRepositoryStore{}, &mockAuditUseCase{})

		_, err := useCase.Create(ctx, tenantID, "root", &registryDomain.CreateRepositoryInput{
			Key:  "  ",
			Type: "local",
		})

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

// TestRepositoryUseCase_Delete tests the Delete method of repositoryUseCase.
func TestRepositoryUseCase_Delete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		txManager := &mockTxManager{}
		store := &mockRepositoryStore{}
		audit := &mockAuditUseCase{}
		useCase := NewRepositoryUseCase(txManager, store, audit)

		txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		store.On("Delete", ctx, tenantID, "npm-local").Return(nil)
		audit.On("Append", ctx, mock.MatchedBy(func(input *auditDomain.AppendInput) bool {
			return input.Action == auditDomain.ActionRepositoryDeleted
		})).Return(nil)

		err := useCase.Delete(ctx, tenantID, "root", "npm-local")

		assert.NoError(t, err)
		audit.AssertExpectations(t)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		txManager := &mockTxManager{}
		store := &mockRepositoryStore{}
		audit := &mockAuditUseCase{}
		useCase := NewRepositoryUseCase(txManager, store, audit)

		txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		store.On("Delete", ctx, tenantID, "ghost").Return(registryDomain.ErrRepositoryNotFound)

		err := useCase.Delete(ctx, tenantID, "root", "ghost")

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		audit.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})
}
