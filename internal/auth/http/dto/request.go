// Package dto provides data transfer objects for HTTP request and response
// handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/registry/internal/validation"
)

// IssueTokenRequest contains the parameters for issuing a personal access
// token. Scopes may be omitted to derive them from the subject's role
// bindings.
type IssueTokenRequest struct {
	Subject    string   `json:"subject"`
	Scopes     []string `json:"scopes"`
	TTLMinutes int      `json:"ttl_minutes"`
	TenantName string   `json:"tenant_name"`
}

// Validate checks if the issue token request is valid. Scope grammar and TTL
// bounds are enforced by the use case; this catches shape errors early.
func (r *IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Subject,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.TTLMinutes,
			validation.Required,
			validation.Min(1),
		),
		validation.Field(&r.Scopes,
			validation.Each(customValidation.NotBlank),
		),
	)
}

// RevokeTokenRequest contains the parameters for revoking a token.
type RevokeTokenRequest struct {
	TokenID string `json:"token_id"`
}

// Validate checks if the revoke token request is valid.
func (r *RevokeTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TokenID,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// UpsertRoleBindingRequest contains the parameters for creating or replacing
// a role binding on a repository.
type UpsertRoleBindingRequest struct {
	Subject string   `json:"subject"`
	Roles   []string `json:"roles"`
}

// Validate checks if the upsert role binding request is valid.
func (r *UpsertRoleBindingRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Subject,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Roles,
			validation.Required,
			validation.Length(1, 0),
			validation.Each(customValidation.NotBlank),
		),
	)
}
