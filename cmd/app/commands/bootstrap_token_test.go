package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/registry/internal/auth/domain"
)

type mockTokenUseCase struct {
	mock.Mock
}

func (m *mockTokenUseCase) Issue(
	ctx context.Context,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.IssueTokenOutput), args.Error(1)
}

func (m *mockTokenUseCase) Revoke(
	ctx context.Context,
	principal *authDomain.Principal,
	input *authDomain.RevokeTokenInput,
) (*authDomain.RevokeTokenOutput, error) {
	args := m.Called(ctx, principal, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.RevokeTokenOutput), args.Error(1)
}

func (m *mockTokenUseCase) Authenticate(
	ctx context.Context,
	plainToken string,
) (*authDomain.Principal, error) {
	args := m.Called(ctx, plainToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Principal), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func issueOutput(t *testing.T) *authDomain.IssueTokenOutput {
	t.Helper()
	scopes, err := authDomain.ParseScopes([]string{"*:admin"})
	require.NoError(t, err)
	return &authDomain.IssueTokenOutput{
		Token: &authDomain.PersonalAccessToken{
			ID:        uuid.Must(uuid.NewV7()),
			Subject:   "root",
			Scopes:    scopes,
			ExpiresAt: time.Now().Add(time.Hour).UTC(),
		},
		PlainToken: "plaintext-credential",
	}
}

func TestRunBootstrapToken(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()

	t.Run("text-output", func(t *testing.T) {
		mockUseCase := &mockTokenUseCase{}
		mockUseCase.On("Issue", ctx, mock.MatchedBy(func(input *authDomain.IssueTokenInput) bool {
			return input.TenantSlug == "acme" &&
				input.Subject == "root" &&
				input.BootstrapSecret == "swordfish" &&
				input.Principal == nil
		})).Return(issueOutput(t), nil)

		var out bytes.Buffer
		err := RunBootstrapToken(
			ctx, mockUseCase, logger, &out,
			"acme", "root", []string{"*:admin"}, 60, "swordfish", "text",
		)

		require.NoError(t, err)
		require.Contains(t, out.String(), "plaintext-credential")
		require.Contains(t, out.String(), "*:admin")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		mockUseCase := &mockTokenUseCase{}
		mockUseCase.On("Issue", ctx, mock.Anything).Return(issueOutput(t), nil)

		var out bytes.Buffer
		err := RunBootstrapToken(
			ctx, mockUseCase, logger, &out,
			"acme", "root", []string{"*:admin"}, 60, "swordfish", "json",
		)

		require.NoError(t, err)
		require.Contains(t, out.String(), `"token": "plaintext-credential"`)
		require.Contains(t, out.String(), `"subject": "root"`)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("empty-secret", func(t *testing.T) {
		mockUseCase := &mockTokenUseCase{}

		err := RunBootstrapToken(
			ctx, mockUseCase, logger, &bytes.Buffer{},
			"acme", "root", []string{"*:admin"}, 60, "", "text",
		)

		require.Error(t, err)
		require.Contains(t, err.Error(), "bootstrap secret must not be empty")
		mockUseCase.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	})

	t.Run("issue-failure", func(t *testing.T) {
		mockUseCase := &mockTokenUseCase{}
		mockUseCase.On("Issue", ctx, mock.Anything).Return(nil, errors.New("boom"))

		err := RunBootstrapToken(
			ctx, mockUseCase, logger, &bytes.Buffer{},
			"acme", "root", []string{"*:admin"}, 60, "swordfish", "text",
		)

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to issue token")
	})
}
