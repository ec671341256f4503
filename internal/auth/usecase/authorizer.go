package usecase

import (
	"fmt"

	authDomain "github.com/allisson/registry/internal/auth/domain"
	apperrors "github.com/allisson/registry/internal/errors"
)

type authorizer struct{}

func (a *authorizer) RequireRole(
	principal *authDomain.Principal,
	targetKey string,
	required authDomain.Role,
) error {
	if principal == nil {
		return authDomain.ErrInvalidCredentials
	}
	if !principal.HasRole(targetKey, required) {
		return apperrors.Wrap(
			apperrors.ErrForbidden,
			fmt.Sprintf("operation requires role %q on %q", required, targetKey),
		)
	}
	return nil
}

// NewAuthorizer creates the scope-based access decision point. It is
// stateless: every check evaluates the principal's scopes in memory.
func NewAuthorizer() Authorizer {
	return &authorizer{}
}
