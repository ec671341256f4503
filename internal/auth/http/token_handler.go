package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/registry/internal/auth/domain"
	"github.com/allisson/registry/internal/auth/http/dto"
	authUseCase "github.com/allisson/registry/internal/auth/usecase"
	apperrors "github.com/allisson/registry/internal/errors"
	"github.com/allisson/registry/internal/httputil"
	customValidation "github.com/allisson/registry/internal/validation"
)

// bootstrapSecretHeader carries the out-of-band secret for the anonymous
// bootstrap issuance path. A header rather than a body field keeps the secret
// out of request logs that capture bodies.
const bootstrapSecretHeader = "X-Bootstrap-Secret"

// TokenHandler handles HTTP requests for the token lifecycle.
type TokenHandler struct {
	tokenUseCase authUseCase.TokenUseCase
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(tokenUseCase authUseCase.TokenUseCase, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		tokenUseCase: tokenUseCase,
		logger:       logger,
	}
}

// IssueHandler issues a new personal access token.
// POST /v1/tenants/:slug/tokens - anonymous allowed when the bootstrap secret
// is presented via the X-Bootstrap-Secret header; otherwise requires a
// wildcard admin bearer token.
// Returns 201 Created with the plaintext token (shown exactly once).
func (h *TokenHandler) IssueHandler(c *gin.Context) {
	var req dto.IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	principal, _ := GetPrincipal(c.Request.Context())

	input := &authDomain.IssueTokenInput{
		TenantSlug:      c.Param("slug"),
		TenantName:      req.TenantName,
		Subject:         req.Subject,
		Scopes:          req.Scopes,
		TTLMinutes:      req.TTLMinutes,
		BootstrapSecret: c.GetHeader(bootstrapSecretHeader),
		Principal:       principal,
	}

	output, err := h.tokenUseCase.Issue(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("token issued",
		slog.String("token_id", output.Token.ID.String()),
		slog.String("tenant_id", output.Token.TenantID.String()),
		slog.String("subject", output.Token.Subject))

	c.JSON(http.StatusCreated, dto.MapTokenToIssueResponse(output))
}

// RevokeHandler revokes a token within the caller's tenant.
// POST /v1/tokens/revoke - requires a wildcard admin bearer token.
// Returns 200 OK with {revoked: bool}; idempotent.
func (h *TokenHandler) RevokeHandler(c *gin.Context) {
	var req dto.RevokeTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	tokenID, err := uuid.Parse(req.TokenID)
	if err != nil {
		httputil.HandleErrorGin(
			c, apperrors.Wrap(apperrors.ErrInvalidInput, "token_id must be a valid UUID"), h.logger,
		)
		return
	}

	principal, _ := GetPrincipal(c.Request.Context())

	output, err := h.tokenUseCase.Revoke(
		c.Request.Context(), principal, &authDomain.RevokeTokenInput{TokenID: tokenID},
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if output.Revoked {
		h.logger.Info("token revoked", slog.String("token_id", tokenID.String()))
	}

	c.JSON(http.StatusOK, &dto.RevokeTokenResponse{Revoked: output.Revoked})
}
