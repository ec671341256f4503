// Package dto provides data transfer objects for repository metadata
// endpoints.
package dto

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	registryDomain "github.com/allisson/registry/internal/registry/domain"
	customValidation "github.com/allisson/registry/internal/validation"
)

// CreateRepositoryRequest contains the parameters for creating a repository.
type CreateRepositoryRequest struct {
	Key  string `json:"key"`
	Type string `json:"type"`
}

// Validate checks if the create repository request is valid.
func (r *CreateRepositoryRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Key,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Slug,
			validation.Length(1, 255),
		),
		validation.Field(&r.Type,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// RepositoryResponse is the wire form of a repository.
type RepositoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Key       string    `json:"key"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// MapRepositoryToResponse converts a repository to its response DTO.
func MapRepositoryToResponse(repo *registryDomain.Repository) *RepositoryResponse {
	return &RepositoryResponse{
		ID:        repo.ID,
		Key:       repo.Key,
		Type:      string(repo.Type),
		CreatedAt: repo.CreatedAt,
	}
}

// MapRepositoriesToResponse converts a repository list to response DTOs.
func MapRepositoriesToResponse(repos []*registryDomain.Repository) []*RepositoryResponse {
	responses := make([]*RepositoryResponse, len(repos))
	for i, repo := range repos {
		responses[i] = MapRepositoryToResponse(repo)
	}
	return responses
}
