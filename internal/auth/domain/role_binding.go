package domain

import (
	"time"

	"github.com/google/uuid"
)

// RoleBinding is a durable default-permission record: the set of roles a
// subject holds on a repository within a tenant. Updates are last-writer-wins;
// concurrent writers are not merged. Bindings are the default scope source
// when a token is issued without explicit scopes.
type RoleBinding struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	RepositoryKey string
	Subject       string
	Roles         []Role
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Scopes flattens the binding into one scope per role.
func (b *RoleBinding) Scopes() []Scope {
	scopes := make([]Scope, 0, len(b.Roles))
	for _, role := range b.Roles {
		scopes = append(scopes, Scope{Key: b.RepositoryKey, Role: role})
	}
	return scopes
}

// UpsertRoleBindingInput contains the parameters for creating or replacing a
// role binding for (repository, subject).
type UpsertRoleBindingInput struct {
	RepositoryKey string
	Subject       string
	Roles         []string
}
