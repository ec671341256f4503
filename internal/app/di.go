// Package app provides the dependency injection container assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	auditHTTP "github.com/allisson/registry/internal/audit/http"
	auditUseCase "github.com/allisson/registry/internal/audit/usecase"
	authHTTP "github.com/allisson/registry/internal/auth/http"
	authService "github.com/allisson/registry/internal/auth/service"
	authUseCase "github.com/allisson/registry/internal/auth/usecase"
	"github.com/allisson/registry/internal/config"
	"github.com/allisson/registry/internal/database"
	"github.com/allisson/registry/internal/http"
	"github.com/allisson/registry/internal/metrics"
	registryHTTP "github.com/allisson/registry/internal/registry/http"
	registryUseCase "github.com/allisson/registry/internal/registry/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger
	db     *sql.DB

	// Managers
	txManager database.TxManager

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Services
	tokenService      authService.TokenService
	bootstrapVerifier authService.BootstrapSecretVerifier

	// Repositories
	tokenRepository       authUseCase.TokenRepository
	roleBindingRepository authUseCase.RoleBindingRepository
	tenantRepository      authUseCase.TenantRepository
	auditRepository       auditUseCase.AuditRepository
	repositoryStore       registryUseCase.RepositoryStore

	// Use Cases
	tokenUseCase       authUseCase.TokenUseCase
	roleBindingUseCase authUseCase.RoleBindingUseCase
	authorizer         authUseCase.Authorizer
	auditUseCase       auditUseCase.UseCase
	repositoryUseCase  registryUseCase.UseCase

	// Handlers
	tokenHandler       *authHTTP.TokenHandler
	roleBindingHandler *authHTTP.RoleBindingHandler
	auditHandler       *auditHTTP.AuditHandler
	repositoryHandler  *registryHTTP.RepositoryHandler

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                        sync.Mutex
	loggerInit                sync.Once
	dbInit                    sync.Once
	txManagerInit             sync.Once
	metricsProviderInit       sync.Once
	businessMetricsInit       sync.Once
	tokenServiceInit          sync.Once
	bootstrapVerifierInit     sync.Once
	tokenRepositoryInit       sync.Once
	roleBindingRepositoryInit sync.Once
	tenantRepositoryInit      sync.Once
	auditRepositoryInit       sync.Once
	repositoryStoreInit       sync.Once
	tokenUseCaseInit          sync.Once
	roleBindingUseCaseInit    sync.Once
	authorizerInit            sync.Once
	auditUseCaseInit          sync.Once
	repositoryUseCaseInit     sync.Once
	tokenHandlerInit          sync.Once
	roleBindingHandlerInit    sync.Once
	auditHandlerInit          sync.Once
	repositoryHandlerInit     sync.Once
	httpServerInit            sync.Once
	metricsServerInit         sync.Once
	initErrors                map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// HTTPServer returns the API HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics HTTP server instance.
// Returns nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}

	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown HTTP server if initialized
	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	// Shutdown metrics server if initialized
	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Shutdown metrics provider if initialized
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Close database connection if initialized
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	// Return combined errors if any occurred
	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initHTTPServer creates the API HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for http server: %w", err)
	}

	tokenHandler, err := c.TokenHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get token handler for http server: %w", err)
	}

	roleBindingHandler, err := c.RoleBindingHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get role binding handler for http server: %w", err)
	}

	auditHandler, err := c.AuditHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit handler for http server: %w", err)
	}

	repositoryHandler, err := c.RepositoryHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get repository handler for http server: %w", err)
	}

	routerConfig := http.RouterConfig{
		TokenHandler:           tokenHandler,
		RoleBindingHandler:     roleBindingHandler,
		AuditHandler:           auditHandler,
		RepositoryHandler:      repositoryHandler,
		Authentication:         authHTTP.AuthenticationMiddleware(tokenUseCase, logger),
		OptionalAuthentication: authHTTP.OptionalAuthenticationMiddleware(tokenUseCase, logger),
		Authorizer:             c.Authorizer(),
		CORSEnabled:            c.config.CORSEnabled,
		CORSAllowOrigins:       c.config.CORSAllowOrigins,
	}

	if c.config.RateLimitEnabled {
		routerConfig.RateLimit = authHTTP.RateLimitMiddleware(
			c.config.RateLimitRequestsPerSec,
			c.config.RateLimitBurst,
			logger,
		)
	}

	if c.config.RateLimitIssueEnabled {
		routerConfig.IssueRateLimit = authHTTP.IssueRateLimitMiddleware(
			c.config.RateLimitIssueRequestsPerSec,
			c.config.RateLimitIssueBurst,
			logger,
		)
	}

	if c.config.MetricsEnabled {
		metricsProvider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
		}
		routerConfig.Metrics = metrics.HTTPMetricsMiddleware(
			metricsProvider.MeterProvider(),
			c.config.MetricsNamespace,
		)
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(routerConfig)

	return server, nil
}

// initMetricsServer creates the metrics HTTP server.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}

	return http.NewMetricsServer(
		c.config.ServerHost,
		c.config.MetricsPort,
		c.Logger(),
		metricsProvider,
	), nil
}
