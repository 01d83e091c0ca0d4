package app

import (
	"fmt"

	tenantHTTP "github.com/keygateio/keygate/internal/tenant/http"
	tenantRepository "github.com/keygateio/keygate/internal/tenant/repository"
	tenantUseCase "github.com/keygateio/keygate/internal/tenant/usecase"
)

// WorkspaceRepository returns the workspace repository.
func (c *Container) WorkspaceRepository() (*tenantRepository.PostgreSQLWorkspaceRepository, error) {
	var err error
	c.workspaceRepoInit.Do(func() {
		c.workspaceRepo, err = c.initWorkspaceRepository()
		if err != nil {
			c.initErrors["workspaceRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["workspaceRepo"]; exists {
		return nil, storedErr
	}
	return c.workspaceRepo, nil
}

// APIRepository returns the API repository.
func (c *Container) APIRepository() (*tenantRepository.PostgreSQLAPIRepository, error) {
	var err error
	c.apiRepoInit.Do(func() {
		c.apiRepo, err = c.initAPIRepository()
		if err != nil {
			c.initErrors["apiRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["apiRepo"]; exists {
		return nil, storedErr
	}
	return c.apiRepo, nil
}

// ClientRepository returns the client repository.
func (c *Container) ClientRepository() (*tenantRepository.PostgreSQLClientRepository, error) {
	var err error
	c.clientRepoInit.Do(func() {
		c.clientRepo, err = c.initClientRepository()
		if err != nil {
			c.initErrors["clientRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["clientRepo"]; exists {
		return nil, storedErr
	}
	return c.clientRepo, nil
}

// ClientSecretRepository returns the client secret repository.
func (c *Container) ClientSecretRepository() (*tenantRepository.PostgreSQLClientSecretRepository, error) {
	var err error
	c.clientSecretRepoInit.Do(func() {
		c.clientSecretRepo, err = c.initClientSecretRepository()
		if err != nil {
			c.initErrors["clientSecretRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["clientSecretRepo"]; exists {
		return nil, storedErr
	}
	return c.clientSecretRepo, nil
}

// SigningSecretRepository returns the signing secret repository.
func (c *Container) SigningSecretRepository() (*tenantRepository.PostgreSQLSigningSecretRepository, error) {
	var err error
	c.signingSecretRepoInit.Do(func() {
		c.signingSecretRepo, err = c.initSigningSecretRepository()
		if err != nil {
			c.initErrors["signingSecretRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["signingSecretRepo"]; exists {
		return nil, storedErr
	}
	return c.signingSecretRepo, nil
}

// IdempotencyKeyRepository returns the idempotency key repository.
func (c *Container) IdempotencyKeyRepository() (*tenantRepository.PostgreSQLIdempotencyKeyRepository, error) {
	var err error
	c.idempotencyRepoInit.Do(func() {
		c.idempotencyKeyRepo, err = c.initIdempotencyKeyRepository()
		if err != nil {
			c.initErrors["idempotencyKeyRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["idempotencyKeyRepo"]; exists {
		return nil, storedErr
	}
	return c.idempotencyKeyRepo, nil
}

// TokenUsageRepository returns the token usage repository.
func (c *Container) TokenUsageRepository() (*tenantRepository.PostgreSQLTokenUsageRepository, error) {
	var err error
	c.tokenUsageRepoInit.Do(func() {
		c.tokenUsageRepo, err = c.initTokenUsageRepository()
		if err != nil {
			c.initErrors["tokenUsageRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenUsageRepo"]; exists {
		return nil, storedErr
	}
	return c.tokenUsageRepo, nil
}

// WorkspaceUseCase returns the workspace use case.
func (c *Container) WorkspaceUseCase() (tenantUseCase.WorkspaceUseCase, error) {
	var err error
	c.workspaceUseCaseInit.Do(func() {
		c.workspaceUseCase, err = c.initWorkspaceUseCase()
		if err != nil {
			c.initErrors["workspaceUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["workspaceUseCase"]; exists {
		return nil, storedErr
	}
	return c.workspaceUseCase, nil
}

// APIUseCase returns the API use case.
func (c *Container) APIUseCase() (tenantUseCase.APIUseCase, error) {
	var err error
	c.apiUseCaseInit.Do(func() {
		c.apiUseCase, err = c.initAPIUseCase()
		if err != nil {
			c.initErrors["apiUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["apiUseCase"]; exists {
		return nil, storedErr
	}
	return c.apiUseCase, nil
}

// ClientUseCase returns the client use case.
func (c *Container) ClientUseCase() (tenantUseCase.ClientUseCase, error) {
	var err error
	c.clientUseCaseInit.Do(func() {
		c.clientUseCase, err = c.initClientUseCase()
		if err != nil {
			c.initErrors["clientUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["clientUseCase"]; exists {
		return nil, storedErr
	}
	return c.clientUseCase, nil
}

// WorkspaceHandler returns the HTTP handler for workspace management operations.
func (c *Container) WorkspaceHandler() (*tenantHTTP.WorkspaceHandler, error) {
	var err error
	c.workspaceHandlerInit.Do(func() {
		c.workspaceHandler, err = c.initWorkspaceHandler()
		if err != nil {
			c.initErrors["workspaceHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["workspaceHandler"]; exists {
		return nil, storedErr
	}
	return c.workspaceHandler, nil
}

// APIHandler returns the HTTP handler for API management operations.
func (c *Container) APIHandler() (*tenantHTTP.APIHandler, error) {
	var err error
	c.apiHandlerInit.Do(func() {
		c.apiHandler, err = c.initAPIHandler()
		if err != nil {
			c.initErrors["apiHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["apiHandler"]; exists {
		return nil, storedErr
	}
	return c.apiHandler, nil
}

// ClientHandler returns the HTTP handler for client management operations.
func (c *Container) ClientHandler() (*tenantHTTP.ClientHandler, error) {
	var err error
	c.clientHandlerInit.Do(func() {
		c.clientHandler, err = c.initClientHandler()
		if err != nil {
			c.initErrors["clientHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["clientHandler"]; exists {
		return nil, storedErr
	}
	return c.clientHandler, nil
}

// initWorkspaceRepository creates the workspace repository based on the database driver.
func (c *Container) initWorkspaceRepository() (*tenantRepository.PostgreSQLWorkspaceRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for workspace repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return tenantRepository.NewPostgreSQLWorkspaceRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAPIRepository creates the API repository based on the database driver.
func (c *Container) initAPIRepository() (*tenantRepository.PostgreSQLAPIRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for api repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return tenantRepository.NewPostgreSQLAPIRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initClientRepository creates the client repository based on the database driver.
func (c *Container) initClientRepository() (*tenantRepository.PostgreSQLClientRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for client repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return tenantRepository.NewPostgreSQLClientRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initClientSecretRepository creates the client secret repository based on the database driver.
func (c *Container) initClientSecretRepository() (*tenantRepository.PostgreSQLClientSecretRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for client secret repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return tenantRepository.NewPostgreSQLClientSecretRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initSigningSecretRepository creates the signing secret repository based on the database driver.
func (c *Container) initSigningSecretRepository() (*tenantRepository.PostgreSQLSigningSecretRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for signing secret repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return tenantRepository.NewPostgreSQLSigningSecretRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initIdempotencyKeyRepository creates the idempotency key repository based on the database driver.
func (c *Container) initIdempotencyKeyRepository() (*tenantRepository.PostgreSQLIdempotencyKeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for idempotency key repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return tenantRepository.NewPostgreSQLIdempotencyKeyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initTokenUsageRepository creates the token usage repository based on the database driver.
func (c *Container) initTokenUsageRepository() (*tenantRepository.PostgreSQLTokenUsageRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for token usage repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return tenantRepository.NewPostgreSQLTokenUsageRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initWorkspaceUseCase creates the workspace use case with all its dependencies.
func (c *Container) initWorkspaceUseCase() (tenantUseCase.WorkspaceUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for workspace use case: %w", err)
	}

	workspaceRepo, err := c.WorkspaceRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace repository for workspace use case: %w", err)
	}

	envelope, err := c.Envelope()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope service for workspace use case: %w", err)
	}

	baseUseCase := tenantUseCase.NewWorkspaceUseCase(txManager, workspaceRepo, envelope)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for workspace use case: %w", err)
		}
		return tenantUseCase.NewWorkspaceUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initAPIUseCase creates the API use case with all its dependencies.
func (c *Container) initAPIUseCase() (tenantUseCase.APIUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for api use case: %w", err)
	}

	workspaceRepo, err := c.WorkspaceRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace repository for api use case: %w", err)
	}

	apiRepo, err := c.APIRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get api repository for api use case: %w", err)
	}

	signingSecretRepo, err := c.SigningSecretRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get signing secret repository for api use case: %w", err)
	}

	envelope, err := c.Envelope()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope service for api use case: %w", err)
	}

	jwksService, err := c.JWKSService()
	if err != nil {
		return nil, fmt.Errorf("failed to get jwks service for api use case: %w", err)
	}

	baseUseCase := tenantUseCase.NewAPIUseCase(
		txManager,
		workspaceRepo,
		apiRepo,
		signingSecretRepo,
		envelope,
		jwksService,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for api use case: %w", err)
		}
		return tenantUseCase.NewAPIUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initClientUseCase creates the client use case with all its dependencies.
func (c *Container) initClientUseCase() (tenantUseCase.ClientUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for client use case: %w", err)
	}

	apiRepo, err := c.APIRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get api repository for client use case: %w", err)
	}

	clientRepo, err := c.ClientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client repository for client use case: %w", err)
	}

	clientSecretRepo, err := c.ClientSecretRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client secret repository for client use case: %w", err)
	}

	baseUseCase := tenantUseCase.NewClientUseCase(
		txManager,
		apiRepo,
		clientRepo,
		clientSecretRepo,
		c.SecretService(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for client use case: %w", err)
		}
		return tenantUseCase.NewClientUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initWorkspaceHandler creates the workspace handler.
func (c *Container) initWorkspaceHandler() (*tenantHTTP.WorkspaceHandler, error) {
	workspaceUC, err := c.WorkspaceUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace use case for workspace handler: %w", err)
	}
	return tenantHTTP.NewWorkspaceHandler(workspaceUC, c.Logger()), nil
}

// initAPIHandler creates the API handler.
func (c *Container) initAPIHandler() (*tenantHTTP.APIHandler, error) {
	apiUC, err := c.APIUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get api use case for api handler: %w", err)
	}
	return tenantHTTP.NewAPIHandler(apiUC, c.Logger()), nil
}

// initClientHandler creates the client handler.
func (c *Container) initClientHandler() (*tenantHTTP.ClientHandler, error) {
	clientUC, err := c.ClientUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get client use case for client handler: %w", err)
	}

	apiUC, err := c.APIUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get api use case for client handler: %w", err)
	}

	return tenantHTTP.NewClientHandler(clientUC, apiUC, c.Logger()), nil
}
