// Package domain defines the audit trail domain model: append-only records of
// security-relevant mutations, keyed by tenant.
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded by the service. Actions are namespaced strings so the
// trail can be filtered by area without a schema change.
const (
	ActionTokenIssued       = "auth.pat.issued"
	ActionTokenRevoked      = "auth.pat.revoked"
	ActionBindingUpserted   = "auth.binding.upserted"
	ActionRepositoryCreated = "repo.created"
	ActionRepositoryDeleted = "repo.deleted"
)

// Resource types referenced by audit records.
const (
	ResourceTypeToken       = "token"
	ResourceTypeRoleBinding = "role_binding"
	ResourceTypeRepository  = "repository"
)

// ActorBootstrap is recorded as the actor when the anonymous bootstrap path
// issues a token using the out-of-band secret.
const ActorBootstrap = "bootstrap"

// Record is one append-only audit event. ID is a monotonically increasing
// sequence assigned by the store; records are never mutated or deleted.
// Details is a flat string-keyed mapping: non-string values are captured as
// their canonical textual encoding, not as typed values.
type Record struct {
	ID           int64
	TenantID     uuid.UUID
	Actor        string
	Action       string
	ResourceType string
	ResourceID   string
	Details      map[string]string
	OccurredAt   time.Time
}

// AppendInput contains the parameters for appending an audit record. Detail
// values may be of any type; they are normalized to canonical text before
// persistence.
type AppendInput struct {
	TenantID     uuid.UUID
	Actor        string
	Action       string
	ResourceType string
	ResourceID   string
	Details      map[string]any
}

// EncodeDetails normalizes a detail mapping to flat canonical text. Strings
// pass through; booleans and numbers use their strconv forms; everything else
// (nested structures, slices) is JSON-encoded. This is a deliberate
// simplification for the persisted form, not a general serialization contract.
func EncodeDetails(details map[string]any) map[string]string {
	if details == nil {
		return nil
	}

	encoded := make(map[string]string, len(details))
	for key, value := range details {
		encoded[key] = encodeDetailValue(value)
	}
	return encoded
}

func encodeDetailValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}
