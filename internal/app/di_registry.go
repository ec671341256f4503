package app

import (
	"fmt"

	registryHTTP "github.com/allisson/registry/internal/registry/http"
	registryRepository "github.com/allisson/registry/internal/registry/repository"
	registryUseCase "github.com/allisson/registry/internal/registry/usecase"
)

// RepositoryStore returns the repository metadata store based on database driver.
func (c *Container) RepositoryStore() (registryUseCase.RepositoryStore, error) {
	var err error
	c.repositoryStoreInit.Do(func() {
		c.repositoryStore, err = c.initRepositoryStore()
		if err != nil {
			c.initErrors["repositoryStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["repositoryStore"]; exists {
		return nil, storedErr
	}
	return c.repositoryStore, nil
}

// RepositoryUseCase returns the repository metadata use case.
func (c *Container) RepositoryUseCase() (registryUseCase.UseCase, error) {
	var err error
	c.repositoryUseCaseInit.Do(func() {
		c.repositoryUseCase, err = c.initRepositoryUseCase()
		if err != nil {
			c.initErrors["repositoryUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["repositoryUseCase"]; exists {
		return nil, storedErr
	}
	return c.repositoryUseCase, nil
}

// RepositoryHandler returns the HTTP handler for repository metadata operations.
func (c *Container) RepositoryHandler() (*registryHTTP.RepositoryHandler, error) {
	var err error
	c.repositoryHandlerInit.Do(func() {
		c.repositoryHandler, err = c.initRepositoryHandler()
		if err != nil {
			c.initErrors["repositoryHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["repositoryHandler"]; exists {
		return nil, storedErr
	}
	return c.repositoryHandler, nil
}

// initRepositoryStore creates the repository store based on the database driver.
func (c *Container) initRepositoryStore() (registryUseCase.RepositoryStore, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for repository store: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return registryRepository.NewPostgreSQLRepositoryStore(db), nil
	case "mysql":
		return registryRepository.NewMySQLRepositoryStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initRepositoryUseCase creates the repository use case with all its dependencies.
func (c *Container) initRepositoryUseCase() (registryUseCase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for repository use case: %w", err)
	}

	repositoryStore, err := c.RepositoryStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get repository store for repository use case: %w", err)
	}

	auditUseCase, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for repository use case: %w", err)
	}

	baseUseCase := registryUseCase.NewRepositoryUseCase(txManager, repositoryStore, auditUseCase)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for repository use case: %w", err)
		}
		return registryUseCase.NewUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initRepositoryHandler creates the repository HTTP handler with all its dependencies.
func (c *Container) initRepositoryHandler() (*registryHTTP.RepositoryHandler, error) {
	useCase, err := c.RepositoryUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get repository use case for repository handler: %w", err)
	}

	return registryHTTP.NewRepositoryHandler(useCase, c.Logger()), nil
}
