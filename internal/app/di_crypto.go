package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/keygateio/keygate/internal/crypto/domain"
	cryptoRepository "github.com/keygateio/keygate/internal/crypto/repository"
	cryptoService "github.com/keygateio/keygate/internal/crypto/service"
)

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// KMSKeeper returns the keeper for the configured master key. All workspace
// data keys are wrapped and unwrapped through this keeper.
func (c *Container) KMSKeeper() (cryptoDomain.KMSKeeper, error) {
	var err error
	c.kmsKeeperInit.Do(func() {
		c.kmsKeeper, err = c.initKMSKeeper()
		if err != nil {
			c.initErrors["kmsKeeper"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["kmsKeeper"]; exists {
		return nil, storedErr
	}
	return c.kmsKeeper, nil
}

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// DataKeyRepository returns the data key repository.
func (c *Container) DataKeyRepository() (*cryptoRepository.PostgreSQLDataKeyRepository, error) {
	var err error
	c.dataKeyRepoInit.Do(func() {
		c.dataKeyRepo, err = c.initDataKeyRepository()
		if err != nil {
			c.initErrors["dataKeyRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["dataKeyRepo"]; exists {
		return nil, storedErr
	}
	return c.dataKeyRepo, nil
}

// Envelope returns the envelope encryption service.
func (c *Container) Envelope() (cryptoService.Envelope, error) {
	var err error
	c.envelopeInit.Do(func() {
		c.envelope, err = c.initEnvelope()
		if err != nil {
			c.initErrors["envelope"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["envelope"]; exists {
		return nil, storedErr
	}
	return c.envelope, nil
}

// initKMSKeeper opens the keeper for the configured KMS key URI.
func (c *Container) initKMSKeeper() (cryptoDomain.KMSKeeper, error) {
	if c.config.KMSKeyURI == "" {
		return nil, fmt.Errorf("KMS_KEY_URI is not configured")
	}

	keeper, err := c.KMSService().OpenKeeper(context.Background(), c.config.KMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// initDataKeyRepository creates the data key repository based on the database driver.
func (c *Container) initDataKeyRepository() (*cryptoRepository.PostgreSQLDataKeyRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for data key repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return cryptoRepository.NewPostgreSQLDataKeyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initEnvelope creates the envelope encryption service with all its dependencies.
func (c *Container) initEnvelope() (cryptoService.Envelope, error) {
	keeper, err := c.KMSKeeper()
	if err != nil {
		return nil, fmt.Errorf("failed to get KMS keeper for envelope service: %w", err)
	}

	dataKeyRepo, err := c.DataKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get data key repository for envelope service: %w", err)
	}

	return cryptoService.NewEnvelope(keeper, c.AEADManager(), dataKeyRepo, cryptoDomain.AlgorithmAESGCM), nil
}
