package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/registry/internal/auth/domain"
	"github.com/allisson/registry/internal/auth/http/dto"
	authUseCase "github.com/allisson/registry/internal/auth/usecase"
	apperrors "github.com/allisson/registry/internal/errors"
	"github.com/allisson/registry/internal/httputil"
	customValidation "github.com/allisson/registry/internal/validation"
)

// RoleBindingHandler handles HTTP requests for repository permission
// management.
type RoleBindingHandler struct {
	bindingUseCase authUseCase.RoleBindingUseCase
	logger         *slog.Logger
}

// NewRoleBindingHandler creates a new role binding handler.
func NewRoleBindingHandler(
	bindingUseCase authUseCase.RoleBindingUseCase,
	logger *slog.Logger,
) *RoleBindingHandler {
	return &RoleBindingHandler{
		bindingUseCase: bindingUseCase,
		logger:         logger,
	}
}

// UpsertHandler creates or replaces the role binding for a subject on a
// repository. Last-writer-wins: the submitted role set replaces the stored
// one.
// PUT /v1/repositories/:key/permissions - requires Admin on the key.
// Returns 200 OK with the stored binding.
func (h *RoleBindingHandler) UpsertHandler(c *gin.Context) {
	var req dto.UpsertRoleBindingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	principal, _ := GetPrincipal(c.Request.Context())

	binding, err := h.bindingUseCase.Upsert(c.Request.Context(), principal, &authDomain.UpsertRoleBindingInput{
		RepositoryKey: c.Param("key"),
		Subject:       req.Subject,
		Roles:         req.Roles,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("role binding upserted",
		slog.String("repository_key", binding.RepositoryKey),
		slog.String("subject", binding.Subject))

	c.JSON(http.StatusOK, dto.MapRoleBindingToResponse(binding))
}

// ListHandler lists the role bindings on a repository.
// GET /v1/repositories/:key/permissions - requires Admin on the key.
// Returns 200 OK with the binding list.
func (h *RoleBindingHandler) ListHandler(c *gin.Context) {
	principal, ok := GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	bindings, err := h.bindingUseCase.ListByRepository(
		c.Request.Context(), principal.TenantID, c.Param("key"),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, gin.H{"permissions": dto.MapRoleBindingsToResponse(bindings)})
}
