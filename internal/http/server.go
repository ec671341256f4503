// Package http provides the HTTP API server and its middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditHTTP "github.com/allisson/registry/internal/audit/http"
	authDomain "github.com/allisson/registry/internal/auth/domain"
	authHTTP "github.com/allisson/registry/internal/auth/http"
	authUseCase "github.com/allisson/registry/internal/auth/usecase"
	registryHTTP "github.com/allisson/registry/internal/registry/http"
)

// RouterConfig carries the handlers and middlewares the API routes need.
// Optional middlewares (rate limiting, metrics) are skipped when nil.
type RouterConfig struct {
	TokenHandler       *authHTTP.TokenHandler
	RoleBindingHandler *authHTTP.RoleBindingHandler
	AuditHandler       *auditHTTP.AuditHandler
	RepositoryHandler  *registryHTTP.RepositoryHandler

	// Authentication resolves a mandatory bearer token into a principal.
	Authentication gin.HandlerFunc
	// OptionalAuthentication resolves a bearer token when presented but lets
	// anonymous requests through; the token issuance route uses it so the
	// bootstrap path can run without credentials.
	OptionalAuthentication gin.HandlerFunc
	// Authorizer gates protected routes on scope roles.
	Authorizer authUseCase.Authorizer

	RateLimit      gin.HandlerFunc
	IssueRateLimit gin.HandlerFunc
	Metrics        gin.HandlerFunc

	CORSEnabled      bool
	CORSAllowOrigins string
}

// Server is the API HTTP server.
type Server struct {
	server *http.Server
	router *gin.Engine
	db     *sql.DB
	logger *slog.Logger
}

// NewServer creates the API server. Call SetupRouter before Start to register
// the route table; db is used by the readiness probe.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the Gin engine and registers all API routes.
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.Metrics != nil {
		router.Use(cfg.Metrics)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	// Token issuance allows anonymous callers so the bootstrap secret can
	// mint the first administrative token of a tenant. It is rate limited
	// per client IP instead of per principal.
	issuance := v1.Group("")
	if cfg.IssueRateLimit != nil {
		issuance.Use(cfg.IssueRateLimit)
	}
	issuance.Use(cfg.OptionalAuthentication)
	issuance.POST("/tenants/:slug/tokens", cfg.TokenHandler.IssueHandler)

	authenticated := v1.Group("")
	authenticated.Use(cfg.Authentication)
	if cfg.RateLimit != nil {
		authenticated.Use(cfg.RateLimit)
	}

	wildcardAdmin := authHTTP.RequireRoleMiddleware(cfg.Authorizer, "", authDomain.RoleAdmin, s.logger)
	wildcardRead := authHTTP.RequireRoleMiddleware(cfg.Authorizer, "", authDomain.RoleRead, s.logger)
	repositoryRead := authHTTP.RequireRoleMiddleware(cfg.Authorizer, "key", authDomain.RoleRead, s.logger)
	repositoryAdmin := authHTTP.RequireRoleMiddleware(cfg.Authorizer, "key", authDomain.RoleAdmin, s.logger)

	authenticated.POST("/tokens/revoke", wildcardAdmin, cfg.TokenHandler.RevokeHandler)
	authenticated.GET("/audit", wildcardRead, cfg.AuditHandler.ReadHandler)

	authenticated.POST("/repositories", wildcardAdmin, cfg.RepositoryHandler.CreateHandler)
	authenticated.GET("/repositories", cfg.RepositoryHandler.ListHandler)
	authenticated.GET("/repositories/:key", repositoryRead, cfg.RepositoryHandler.GetHandler)
	authenticated.DELETE("/repositories/:key", wildcardAdmin, cfg.RepositoryHandler.DeleteHandler)
	authenticated.PUT("/repositories/:key/permissions", repositoryAdmin, cfg.RoleBindingHandler.UpsertHandler)
	authenticated.GET("/repositories/:key/permissions", repositoryAdmin, cfg.RoleBindingHandler.ListHandler)

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the API server. SetupRouter must have been called.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured: call SetupRouter first")
	}

	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic, checking
// database connectivity.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"database": "ok"}

	ready := true
	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.String("error", err.Error()))
			components["database"] = "error"
			ready = false
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
