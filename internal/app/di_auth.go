package app

import (
	"fmt"

	authHTTP "github.com/allisson/registry/internal/auth/http"
	authRepository "github.com/allisson/registry/internal/auth/repository"
	authService "github.com/allisson/registry/internal/auth/service"
	authUseCase "github.com/allisson/registry/internal/auth/usecase"
	tenantRepository "github.com/allisson/registry/internal/tenant/repository"
)

// TokenService returns the token codec service.
func (c *Container) TokenService() authService.TokenService {
	c.tokenServiceInit.Do(func() {
		c.tokenService = authService.NewTokenService()
	})
	return c.tokenService
}

// BootstrapVerifier returns the bootstrap secret verifier. The verifier is
// disabled when no secret hash is configured.
func (c *Container) BootstrapVerifier() authService.BootstrapSecretVerifier {
	c.bootstrapVerifierInit.Do(func() {
		c.bootstrapVerifier = authService.NewBootstrapSecretVerifier(c.config.BootstrapSecretHash)
	})
	return c.bootstrapVerifier
}

// TokenRepository returns the token repository based on database driver.
func (c *Container) TokenRepository() (authUseCase.TokenRepository, error) {
	var err error
	c.tokenRepositoryInit.Do(func() {
		c.tokenRepository, err = c.initTokenRepository()
		if err != nil {
			c.initErrors["tokenRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenRepository"]; exists {
		return nil, storedErr
	}
	return c.tokenRepository, nil
}

// RoleBindingRepository returns the role binding repository based on database driver.
func (c *Container) RoleBindingRepository() (authUseCase.RoleBindingRepository, error) {
	var err error
	c.roleBindingRepositoryInit.Do(func() {
		c.roleBindingRepository, err = c.initRoleBindingRepository()
		if err != nil {
			c.initErrors["roleBindingRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["roleBindingRepository"]; exists {
		return nil, storedErr
	}
	return c.roleBindingRepository, nil
}

// TenantRepository returns the tenant repository based on database driver.
func (c *Container) TenantRepository() (authUseCase.TenantRepository, error) {
	var err error
	c.tenantRepositoryInit.Do(func() {
		c.tenantRepository, err = c.initTenantRepository()
		if err != nil {
			c.initErrors["tenantRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tenantRepository"]; exists {
		return nil, storedErr
	}
	return c.tenantRepository, nil
}

// TokenUseCase returns the token lifecycle use case.
func (c *Container) TokenUseCase() (authUseCase.TokenUseCase, error) {
	var err error
	c.tokenUseCaseInit.Do(func() {
		c.tokenUseCase, err = c.initTokenUseCase()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// RoleBindingUseCase returns the role binding management use case.
func (c *Container) RoleBindingUseCase() (authUseCase.RoleBindingUseCase, error) {
	var err error
	c.roleBindingUseCaseInit.Do(func() {
		c.roleBindingUseCase, err = c.initRoleBindingUseCase()
		if err != nil {
			c.initErrors["roleBindingUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["roleBindingUseCase"]; exists {
		return nil, storedErr
	}
	return c.roleBindingUseCase, nil
}

// Authorizer returns the stateless scope authorizer.
func (c *Container) Authorizer() authUseCase.Authorizer {
	c.authorizerInit.Do(func() {
		c.authorizer = authUseCase.NewAuthorizer()
	})
	return c.authorizer
}

// TokenHandler returns the HTTP handler for token operations.
func (c *Container) TokenHandler() (*authHTTP.TokenHandler, error) {
	var err error
	c.tokenHandlerInit.Do(func() {
		c.tokenHandler, err = c.initTokenHandler()
		if err != nil {
			c.initErrors["tokenHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenHandler"]; exists {
		return nil, storedErr
	}
	return c.tokenHandler, nil
}

// RoleBindingHandler returns the HTTP handler for repository permissions.
func (c *Container) RoleBindingHandler() (*authHTTP.RoleBindingHandler, error) {
	var err error
	c.roleBindingHandlerInit.Do(func() {
		c.roleBindingHandler, err = c.initRoleBindingHandler()
		if err != nil {
			c.initErrors["roleBindingHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["roleBindingHandler"]; exists {
		return nil, storedErr
	}
	return c.roleBindingHandler, nil
}

// initTokenRepository creates the token repository based on the database driver.
func (c *Container) initTokenRepository() (authUseCase.TokenRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for token repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return authRepository.NewPostgreSQLTokenRepository(db), nil
	case "mysql":
		return authRepository.NewMySQLTokenRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initRoleBindingRepository creates the role binding repository based on the database driver.
func (c *Container) initRoleBindingRepository() (authUseCase.RoleBindingRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for role binding repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return authRepository.NewPostgreSQLRoleBindingRepository(db), nil
	case "mysql":
		return authRepository.NewMySQLRoleBindingRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initTenantRepository creates the tenant repository based on the database driver.
func (c *Container) initTenantRepository() (authUseCase.TenantRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tenant repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return tenantRepository.NewPostgreSQLTenantRepository(db), nil
	case "mysql":
		return tenantRepository.NewMySQLTenantRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initTokenUseCase creates the token use case with all its dependencies.
func (c *Container) initTokenUseCase() (authUseCase.TokenUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for token use case: %w", err)
	}

	tokenRepository, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for token use case: %w", err)
	}

	roleBindingRepository, err := c.RoleBindingRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role binding repository for token use case: %w", err)
	}

	tenantRepository, err := c.TenantRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant repository for token use case: %w", err)
	}

	auditUseCase, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for token use case: %w", err)
	}

	baseUseCase := authUseCase.NewTokenUseCase(
		txManager,
		tokenRepository,
		roleBindingRepository,
		tenantRepository,
		c.TokenService(),
		c.BootstrapVerifier(),
		auditUseCase,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
		}
		return authUseCase.NewTokenUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initRoleBindingUseCase creates the role binding use case with all its dependencies.
func (c *Container) initRoleBindingUseCase() (authUseCase.RoleBindingUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for role binding use case: %w", err)
	}

	roleBindingRepository, err := c.RoleBindingRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role binding repository for role binding use case: %w", err)
	}

	repositoryStore, err := c.RepositoryStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get repository store for role binding use case: %w", err)
	}

	auditUseCase, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for role binding use case: %w", err)
	}

	baseUseCase := authUseCase.NewRoleBindingUseCase(
		txManager,
		roleBindingRepository,
		repositoryStore,
		auditUseCase,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for role binding use case: %w", err)
		}
		return authUseCase.NewRoleBindingUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initTokenHandler creates the token HTTP handler with all its dependencies.
func (c *Container) initTokenHandler() (*authHTTP.TokenHandler, error) {
	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for token handler: %w", err)
	}

	return authHTTP.NewTokenHandler(tokenUseCase, c.Logger()), nil
}

// initRoleBindingHandler creates the role binding HTTP handler with all its dependencies.
func (c *Container) initRoleBindingHandler() (*authHTTP.RoleBindingHandler, error) {
	roleBindingUseCase, err := c.RoleBindingUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get role binding use case for role binding handler: %w", err)
	}

	return authHTTP.NewRoleBindingHandler(roleBindingUseCase, c.Logger()), nil
}
