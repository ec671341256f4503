// Package domain defines authentication and authorization domain models.
// Implements scope-based access control with personal access tokens, role
// bindings, and a fixed role hierarchy gating repository operations.
package domain

import (
	"fmt"
	"strings"

	apperrors "github.com/allisson/registry/internal/errors"
)

// Role is an ordered rank from a fixed enumeration. A principal holding a role
// on a repository key is authorized for any required role of equal or lower rank.
type Role string

const (
	// RoleRead allows reading repository metadata and artifacts.
	RoleRead Role = "read"

	// RoleWrite allows publishing and updating artifacts, and implies read.
	RoleWrite Role = "write"

	// RoleAdmin allows administrative operations (token issuance/revocation,
	// repository creation/deletion, permission management), and implies write.
	RoleAdmin Role = "admin"
)

// roleRanks defines the total order read < write < admin.
var roleRanks = map[Role]int{
	RoleRead:  1,
	RoleWrite: 2,
	RoleAdmin: 3,
}

// ParseRole parses a role name case-insensitively. Unknown names fail with
// ErrInvalidInput.
func ParseRole(text string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(text)))
	if _, ok := roleRanks[role]; !ok {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("unknown role %q", text))
	}
	return role, nil
}

// Rank returns the position of the role in the hierarchy. Unknown roles rank
// below every valid role.
func (r Role) Rank() int {
	return roleRanks[r]
}

// Satisfies reports whether the role's rank is at least the required role's rank.
func (r Role) Satisfies(required Role) bool {
	return r.Rank() >= required.Rank()
}

// String returns the canonical lowercase role name.
func (r Role) String() string {
	return string(r)
}
