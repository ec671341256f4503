package app

import (
	"fmt"

	auditHTTP "github.com/allisson/registry/internal/audit/http"
	auditRepository "github.com/allisson/registry/internal/audit/repository"
	auditUseCase "github.com/allisson/registry/internal/audit/usecase"
)

// AuditRepository returns the audit record repository based on database driver.
func (c *Container) AuditRepository() (auditUseCase.AuditRepository, error) {
	var err error
	c.auditRepositoryInit.Do(func() {
		c.auditRepository, err = c.initAuditRepository()
		if err != nil {
			c.initErrors["auditRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditRepository"]; exists {
		return nil, storedErr
	}
	return c.auditRepository, nil
}

// AuditUseCase returns the audit trail use case.
func (c *Container) AuditUseCase() (auditUseCase.UseCase, error) {
	var err error
	c.auditUseCaseInit.Do(func() {
		c.auditUseCase, err = c.initAuditUseCase()
		if err != nil {
			c.initErrors["auditUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditUseCase, nil
}

// AuditHandler returns the HTTP handler for audit reads.
func (c *Container) AuditHandler() (*auditHTTP.AuditHandler, error) {
	var err error
	c.auditHandlerInit.Do(func() {
		c.auditHandler, err = c.initAuditHandler()
		if err != nil {
			c.initErrors["auditHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditHandler"]; exists {
		return nil, storedErr
	}
	return c.auditHandler, nil
}

// initAuditRepository creates the audit repository based on the database driver.
func (c *Container) initAuditRepository() (auditUseCase.AuditRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return auditRepository.NewPostgreSQLAuditRepository(db), nil
	case "mysql":
		return auditRepository.NewMySQLAuditRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuditUseCase creates the audit use case with all its dependencies.
func (c *Container) initAuditUseCase() (auditUseCase.UseCase, error) {
	auditRepo, err := c.AuditRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit repository for audit use case: %w", err)
	}

	baseUseCase := auditUseCase.NewAuditUseCase(auditRepo)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for audit use case: %w", err)
		}
		return auditUseCase.NewUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initAuditHandler creates the audit HTTP handler with all its dependencies.
func (c *Container) initAuditHandler() (*auditHTTP.AuditHandler, error) {
	useCase, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for audit handler: %w", err)
	}

	return auditHTTP.NewAuditHandler(useCase, c.Logger()), nil
}
