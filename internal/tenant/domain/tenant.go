// Package domain defines the tenant domain model. A tenant is the identity
// boundary for tokens, role bindings, repositories, and audit records.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is resolved idempotently by its stable slug: one row per slug,
// created lazily on first use and never deleted. Re-resolving with a changed
// display name updates the name but preserves identity.
type Tenant struct {
	ID          uuid.UUID
	Slug        string
	DisplayName string
	CreatedAt   time.Time
}
