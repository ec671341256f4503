package domain

import (
	"github.com/google/uuid"
)

// Principal is the resolved identity and permissions for one authenticated
// request: the token's tenant, subject, and granted scopes. It is derived per
// request and never persisted or cached, so revocation takes effect on the
// next call.
type Principal struct {
	TenantID uuid.UUID
	TokenID  uuid.UUID
	Subject  string
	Scopes   []Scope
}

// HasRole reports whether the principal's scopes satisfy the required role on
// the target repository key.
func (p *Principal) HasRole(targetKey string, required Role) bool {
	return HasRole(p.Scopes, targetKey, required)
}

// IsWildcardAdmin reports whether the principal holds the admin role on every
// repository key. Tenant-wide administrative actions require this.
func (p *Principal) IsWildcardAdmin() bool {
	return HasRole(p.Scopes, WildcardKey, RoleAdmin)
}
