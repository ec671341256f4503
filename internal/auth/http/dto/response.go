package dto

import (
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/registry/internal/auth/domain"
)

// IssueTokenResponse is returned once at issuance. Token carries the
// plaintext credential; it is never retrievable again.
type IssueTokenResponse struct {
	ID        uuid.UUID `json:"id"`
	Token     string    `json:"token"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Subject   string    `json:"subject"`
	Scopes    []string  `json:"scopes"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// MapTokenToIssueResponse converts an issuance result to its response DTO.
func MapTokenToIssueResponse(output *authDomain.IssueTokenOutput) *IssueTokenResponse {
	token := output.Token
	return &IssueTokenResponse{
		ID:        token.ID,
		Token:     output.PlainToken,
		TenantID:  token.TenantID,
		Subject:   token.Subject,
		Scopes:    authDomain.ScopeStrings(token.Scopes),
		ExpiresAt: token.ExpiresAt,
		CreatedBy: token.CreatedBy,
		CreatedAt: token.CreatedAt,
	}
}

// RevokeTokenResponse reports whether the revocation changed anything.
// Revoked is false when the token was already revoked or never existed.
type RevokeTokenResponse struct {
	Revoked bool `json:"revoked"`
}

// RoleBindingResponse is the wire form of a role binding.
type RoleBindingResponse struct {
	ID            uuid.UUID `json:"id"`
	RepositoryKey string    `json:"repository_key"`
	Subject       string    `json:"subject"`
	Roles         []string  `json:"roles"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MapRoleBindingToResponse converts a role binding to its response DTO.
func MapRoleBindingToResponse(binding *authDomain.RoleBinding) *RoleBindingResponse {
	roles := make([]string, len(binding.Roles))
	for i, role := range binding.Roles {
		roles[i] = role.String()
	}
	return &RoleBindingResponse{
		ID:            binding.ID,
		RepositoryKey: binding.RepositoryKey,
		Subject:       binding.Subject,
		Roles:         roles,
		CreatedAt:     binding.CreatedAt,
		UpdatedAt:     binding.UpdatedAt,
	}
}

// MapRoleBindingsToResponse converts a binding list to response DTOs.
func MapRoleBindingsToResponse(bindings []*authDomain.RoleBinding) []*RoleBindingResponse {
	responses := make([]*RoleBindingResponse, len(bindings))
	for i, binding := range bindings {
		responses[i] = MapRoleBindingToResponse(binding)
	}
	return responses
}
