// Package http provides HTTP handlers for reading the audit trail.
package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/allisson/registry/internal/audit/http/dto"
	auditUseCase "github.com/allisson/registry/internal/audit/usecase"
	authHTTP "github.com/allisson/registry/internal/auth/http"
	apperrors "github.com/allisson/registry/internal/errors"
	"github.com/allisson/registry/internal/httputil"
)

// AuditHandler handles HTTP requests for the tenant audit trail.
type AuditHandler struct {
	auditUseCase auditUseCase.UseCase
	logger       *slog.Logger
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(useCase auditUseCase.UseCase, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{
		auditUseCase: useCase,
		logger:       logger,
	}
}

// ReadHandler returns the tenant's audit records, newest first.
// GET /v1/audit?limit=n - requires Read on the wildcard resource. The limit
// is defaulted when absent or invalid and clamped by the use case.
func (h *AuditHandler) ReadHandler(c *gin.Context) {
	principal, ok := authHTTP.GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	// An unparseable limit is treated like an absent one; the use case
	// substitutes the default.
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	records, err := h.auditUseCase.Read(c.Request.Context(), principal.TenantID, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": dto.MapRecordsToResponse(records)})
}
