// Package http provides HTTP handlers for repository metadata operations.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/registry/internal/auth/http"
	apperrors "github.com/allisson/registry/internal/errors"
	"github.com/allisson/registry/internal/httputil"
	registryDomain "github.com/allisson/registry/internal/registry/domain"
	"github.com/allisson/registry/internal/registry/http/dto"
	registryUseCase "github.com/allisson/registry/internal/registry/usecase"
	customValidation "github.com/allisson/registry/internal/validation"
)

// RepositoryHandler handles HTTP requests for repository metadata.
type RepositoryHandler struct {
	repositoryUseCase registryUseCase.UseCase
	logger            *slog.Logger
}

// NewRepositoryHandler creates a new repository handler.
func NewRepositoryHandler(
	useCase registryUseCase.UseCase,
	logger *slog.Logger,
) *RepositoryHandler {
	return &RepositoryHandler{
		repositoryUseCase: useCase,
		logger:            logger,
	}
}

// CreateHandler creates a repository.
// POST /v1/repositories - requires Admin on the wildcard resource.
// Returns 201 Created, or 409 Conflict when the key is taken.
func (h *RepositoryHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateRepositoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	principal, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	repo, err := h.repositoryUseCase.Create(
		c.Request.Context(),
		principal.TenantID,
		principal.Subject,
		&registryDomain.CreateRepositoryInput{Key: req.Key, Type: req.Type},
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("repository created",
		slog.String("key", repo.Key),
		slog.String("type", string(repo.Type)))

	c.JSON(http.StatusCreated, dto.MapRepositoryToResponse(repo))
}

// GetHandler retrieves a repository by key.
// GET /v1/repositories/:key - requires Read on the key.
func (h *RepositoryHandler) GetHandler(c *gin.Context) {
	principal, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	repo, err := h.repositoryUseCase.Get(c.Request.Context(), principal.TenantID, c.Param("key"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRepositoryToResponse(repo))
}

// ListHandler lists the tenant's repositories.
// GET /v1/repositories - requires authentication; results are tenant-scoped.
func (h *RepositoryHandler) ListHandler(c *gin.Context) {
	principal, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	repos, err := h.repositoryUseCase.List(c.Request.Context(), principal.TenantID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, gin.H{"repositories": dto.MapRepositoriesToResponse(repos)})
}

// DeleteHandler removes a repository.
// DELETE /v1/repositories/:key - requires Admin on the wildcard resource.
// Returns 204 No Content, or 404 when the key doesn't exist.
func (h *RepositoryHandler) DeleteHandler(c *gin.Context) {
	principal, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	err := h.repositoryUseCase.Delete(
		c.Request.Context(), principal.TenantID, principal.Subject, c.Param("key"),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("repository deleted", slog.String("key", c.Param("key")))

	c.Status(http.StatusNoContent)
}
