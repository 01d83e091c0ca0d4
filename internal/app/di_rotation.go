package app

import (
	"fmt"

	outboxRepository "github.com/keygateio/keygate/internal/outbox/repository"
	outboxUsecase "github.com/keygateio/keygate/internal/outbox/usecase"
	rotationHTTP "github.com/keygateio/keygate/internal/rotation/http"
	rotationUseCase "github.com/keygateio/keygate/internal/rotation/usecase"
)

// OutboxRepository returns the outbox event repository.
func (c *Container) OutboxRepository() (*outboxRepository.PostgreSQLOutboxEventRepository, error) {
	var err error
	c.outboxRepoInit.Do(func() {
		c.outboxRepo, err = c.initOutboxRepository()
		if err != nil {
			c.initErrors["outboxRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxRepo"]; exists {
		return nil, storedErr
	}
	return c.outboxRepo, nil
}

// RotationUseCase returns the rotation use case.
func (c *Container) RotationUseCase() (rotationUseCase.RotationUseCase, error) {
	var err error
	c.rotationUseCaseInit.Do(func() {
		c.rotationUseCase, err = c.initRotationUseCase()
		if err != nil {
			c.initErrors["rotationUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["rotationUseCase"]; exists {
		return nil, storedErr
	}
	return c.rotationUseCase, nil
}

// FinalizeUseCase returns the rotation finalization use case.
func (c *Container) FinalizeUseCase() (rotationUseCase.FinalizeUseCase, error) {
	var err error
	c.finalizeUseCaseInit.Do(func() {
		c.finalizeUseCase, err = c.initFinalizeUseCase()
		if err != nil {
			c.initErrors["finalizeUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["finalizeUseCase"]; exists {
		return nil, storedErr
	}
	return c.finalizeUseCase, nil
}

// OutboxUseCase returns the outbox polling use case.
func (c *Container) OutboxUseCase() (outboxUsecase.UseCase, error) {
	var err error
	c.outboxUseCaseInit.Do(func() {
		c.outboxUseCase, err = c.initOutboxUseCase()
		if err != nil {
			c.initErrors["outboxUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxUseCase"]; exists {
		return nil, storedErr
	}
	return c.outboxUseCase, nil
}

// RotationHandler returns the HTTP handler for rotation operations.
func (c *Container) RotationHandler() (*rotationHTTP.RotationHandler, error) {
	var err error
	c.rotationHandlerInit.Do(func() {
		c.rotationHandler, err = c.initRotationHandler()
		if err != nil {
			c.initErrors["rotationHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["rotationHandler"]; exists {
		return nil, storedErr
	}
	return c.rotationHandler, nil
}

// initOutboxRepository creates the outbox event repository based on the database driver.
func (c *Container) initOutboxRepository() (*outboxRepository.PostgreSQLOutboxEventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return outboxRepository.NewPostgreSQLOutboxEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initRotationUseCase creates the rotation use case with all its dependencies.
func (c *Container) initRotationUseCase() (rotationUseCase.RotationUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for rotation use case: %w", err)
	}

	workspaceRepo, err := c.WorkspaceRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace repository for rotation use case: %w", err)
	}

	apiRepo, err := c.APIRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get api repository for rotation use case: %w", err)
	}

	clientRepo, err := c.ClientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client repository for rotation use case: %w", err)
	}

	signingSecretRepo, err := c.SigningSecretRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get signing secret repository for rotation use case: %w", err)
	}

	clientSecretRepo, err := c.ClientSecretRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client secret repository for rotation use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for rotation use case: %w", err)
	}

	envelope, err := c.Envelope()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope service for rotation use case: %w", err)
	}

	jwksService, err := c.JWKSService()
	if err != nil {
		return nil, fmt.Errorf("failed to get jwks service for rotation use case: %w", err)
	}

	baseUseCase := rotationUseCase.NewRotationUseCase(
		txManager,
		workspaceRepo,
		apiRepo,
		clientRepo,
		signingSecretRepo,
		clientSecretRepo,
		outboxRepo,
		envelope,
		jwksService,
		c.SecretService(),
		c.config.RotationOverlap,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for rotation use case: %w", err)
		}
		return rotationUseCase.NewRotationUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initFinalizeUseCase creates the finalization use case with all its dependencies.
func (c *Container) initFinalizeUseCase() (rotationUseCase.FinalizeUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for finalize use case: %w", err)
	}

	apiRepo, err := c.APIRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get api repository for finalize use case: %w", err)
	}

	clientRepo, err := c.ClientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client repository for finalize use case: %w", err)
	}

	signingSecretRepo, err := c.SigningSecretRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get signing secret repository for finalize use case: %w", err)
	}

	clientSecretRepo, err := c.ClientSecretRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client secret repository for finalize use case: %w", err)
	}

	idempotencyRepo, err := c.IdempotencyKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get idempotency key repository for finalize use case: %w", err)
	}

	return rotationUseCase.NewFinalizeUseCase(
		txManager,
		apiRepo,
		clientRepo,
		signingSecretRepo,
		clientSecretRepo,
		idempotencyRepo,
		c.config.IdempotencyKeyTTL,
		c.Logger(),
	), nil
}

// initOutboxUseCase creates the outbox use case with all its dependencies.
func (c *Container) initOutboxUseCase() (outboxUsecase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
	}

	finalizeUC, err := c.FinalizeUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get finalize use case for outbox use case: %w", err)
	}

	useCaseConfig := outboxUsecase.Config{
		Interval:   c.config.OutboxInterval,
		BatchSize:  c.config.OutboxBatchSize,
		MaxRetries: c.config.OutboxMaxRetries,
	}

	eventProcessor := rotationUseCase.NewExpiryProcessor(finalizeUC)
	useCase := outboxUsecase.NewOutboxUseCase(useCaseConfig, txManager, outboxRepo, eventProcessor, c.Logger())

	return useCase, nil
}

// initRotationHandler creates the rotation handler.
func (c *Container) initRotationHandler() (*rotationHTTP.RotationHandler, error) {
	rotationUC, err := c.RotationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get rotation use case for rotation handler: %w", err)
	}

	clientUC, err := c.ClientUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get client use case for rotation handler: %w", err)
	}

	return rotationHTTP.NewRotationHandler(rotationUC, clientUC, c.Logger()), nil
}
