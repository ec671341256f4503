// Package dto provides data transfer objects for audit trail responses.
package dto

import (
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/registry/internal/audit/domain"
)

// AuditRecordResponse is the wire form of one audit record.
type AuditRecordResponse struct {
	ID           int64             `json:"id"`
	TenantID     uuid.UUID         `json:"tenant_id"`
	Actor        string            `json:"actor"`
	Action       string            `json:"action"`
	ResourceType string            `json:"resource_type"`
	ResourceID   string            `json:"resource_id"`
	Details      map[string]string `json:"details,omitempty"`
	OccurredAt   time.Time         `json:"occurred_at"`
}

// MapRecordsToResponse converts audit records to response DTOs.
func MapRecordsToResponse(records []*auditDomain.Record) []*AuditRecordResponse {
	responses := make([]*AuditRecordResponse, len(records))
	for i, record := range records {
		responses[i] = &AuditRecordResponse{
			ID:           record.ID,
			TenantID:     record.TenantID,
			Actor:        record.Actor,
			Action:       record.Action,
			ResourceType: record.ResourceType,
			ResourceID:   record.ResourceID,
			Details:      record.Details,
			OccurredAt:   record.OccurredAt,
		}
	}
	return responses
}
