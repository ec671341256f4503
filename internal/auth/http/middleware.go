package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/registry/internal/auth/domain"
	authUseCase "github.com/allisson/registry/internal/auth/usecase"
	apperrors "github.com/allisson/registry/internal/errors"
	"github.com/allisson/registry/internal/httputil"
)

const bearerPrefix = "bearer "

// extractBearerToken pulls the bearer credential out of the Authorization
// header. Returns ("", false) when no credential was presented at all and
// ("", true) when a header was present but malformed.
func extractBearerToken(c *gin.Context) (token string, presented bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	if len(authHeader) < len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return "", true
	}
	return authHeader[len(bearerPrefix):], true
}

// AuthenticationMiddleware requires a valid bearer token on every request.
//
// The middleware extracts the Authorization header (case-insensitive
// "Bearer"), resolves it to a Principal via TokenUseCase.Authenticate, and
// stores the principal in the request context for downstream handlers.
// Resolution happens on every request so a revocation is effective on the
// next call.
//
// Error handling:
//   - Missing or malformed Authorization header → 401 Unauthorized
//   - Unknown, expired, or revoked token → 401 Unauthorized
//   - Persistence failure during lookup → 503 Service Unavailable
func AuthenticationMiddleware(
	tokenUseCase authUseCase.TokenUseCase,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		plainToken, presented := extractBearerToken(c)
		if !presented || plainToken == "" {
			logger.Debug("authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		principal, err := tokenUseCase.Authenticate(c.Request.Context(), plainToken)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

// OptionalAuthenticationMiddleware resolves a bearer token when one is
// presented but lets anonymous requests through. The token issuance endpoint
// uses it: a missing credential is a valid state there (the bootstrap path),
// while a presented-but-invalid credential is still a hard 401 so callers
// never silently fall back to bootstrap semantics.
func OptionalAuthenticationMiddleware(
	tokenUseCase authUseCase.TokenUseCase,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		plainToken, presented := extractBearerToken(c)
		if !presented {
			c.Next()
			return
		}
		if plainToken == "" {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		principal, err := tokenUseCase.Authenticate(c.Request.Context(), plainToken)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

// RequireRoleMiddleware gates a route on the caller holding the required role
// for the target repository key. When keyParam is non-empty, the target key
// is taken from that URL parameter; otherwise the wildcard resource is the
// target (tenant-wide administrative routes).
//
// MUST be used after AuthenticationMiddleware.
func RequireRoleMiddleware(
	authorizer authUseCase.Authorizer,
	keyParam string,
	required authDomain.Role,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, _ := GetPrincipal(c.Request.Context())

		targetKey := authDomain.WildcardKey
		if keyParam != "" {
			targetKey = strings.ToLower(strings.TrimSpace(c.Param(keyParam)))
		}

		if err := authorizer.RequireRole(principal, targetKey, required); err != nil {
			logger.Debug("authorization failed",
				slog.String("target_key", targetKey),
				slog.String("required_role", required.String()),
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
