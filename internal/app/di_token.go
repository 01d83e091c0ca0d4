package app

import (
	"context"
	"fmt"

	"gocloud.dev/blob"

	"github.com/keygateio/keygate/internal/cache"
	"github.com/keygateio/keygate/internal/ratelimit"
	tokenHTTP "github.com/keygateio/keygate/internal/token/http"
	tokenService "github.com/keygateio/keygate/internal/token/service"
	tokenUseCase "github.com/keygateio/keygate/internal/token/usecase"
)

// JWKSBucket returns the blob bucket backing JWKS storage.
func (c *Container) JWKSBucket() (*blob.Bucket, error) {
	var err error
	c.jwksBucketInit.Do(func() {
		c.jwksBucket, err = tokenService.OpenBucket(context.Background(), c.config.JWKSBucketURL)
		if err != nil {
			c.initErrors["jwksBucket"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["jwksBucket"]; exists {
		return nil, storedErr
	}
	return c.jwksBucket, nil
}

// JWKSService returns the JWKS publication service.
func (c *Container) JWKSService() (tokenService.JWKSService, error) {
	var err error
	c.jwksServiceInit.Do(func() {
		c.jwksService, err = c.initJWKSService()
		if err != nil {
			c.initErrors["jwksService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["jwksService"]; exists {
		return nil, storedErr
	}
	return c.jwksService, nil
}

// Codec returns the JWT codec.
func (c *Container) Codec() tokenService.Codec {
	c.codecInit.Do(func() {
		c.codec = tokenService.NewCodec()
	})
	return c.codec
}

// SecretService returns the client secret generation service.
func (c *Container) SecretService() tokenService.SecretService {
	c.secretServiceInit.Do(func() {
		c.secretService = tokenService.NewSecretService()
	})
	return c.secretService
}

// VerificationCache returns the read-through cache for verification bundles.
func (c *Container) VerificationCache() cache.Cache {
	c.verificationCacheInit.Do(func() {
		c.verificationCache = cache.New(c.config.VerificationCacheTTL)
	})
	return c.verificationCache
}

// RateLimiter returns the per-client token bucket limiter.
func (c *Container) RateLimiter() ratelimit.Limiter {
	c.rateLimiterInit.Do(func() {
		c.rateLimiter = ratelimit.New()
	})
	return c.rateLimiter
}

// QuotaPolicy returns the monthly token quota policy.
func (c *Container) QuotaPolicy() (tokenUseCase.QuotaPolicy, error) {
	var err error
	c.quotaPolicyInit.Do(func() {
		c.quotaPolicy, err = c.initQuotaPolicy()
		if err != nil {
			c.initErrors["quotaPolicy"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["quotaPolicy"]; exists {
		return nil, storedErr
	}
	return c.quotaPolicy, nil
}

// IssueUseCase returns the token issuance use case.
func (c *Container) IssueUseCase() (tokenUseCase.IssueUseCase, error) {
	var err error
	c.issueUseCaseInit.Do(func() {
		c.issueUseCase, err = c.initIssueUseCase()
		if err != nil {
			c.initErrors["issueUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["issueUseCase"]; exists {
		return nil, storedErr
	}
	return c.issueUseCase, nil
}

// VerifyUseCase returns the token verification use case.
func (c *Container) VerifyUseCase() (tokenUseCase.VerifyUseCase, error) {
	var err error
	c.verifyUseCaseInit.Do(func() {
		c.verifyUseCase, err = c.initVerifyUseCase()
		if err != nil {
			c.initErrors["verifyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["verifyUseCase"]; exists {
		return nil, storedErr
	}
	return c.verifyUseCase, nil
}

// TokenHandler returns the HTTP handler for token operations.
func (c *Container) TokenHandler() (*tokenHTTP.TokenHandler, error) {
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

// initJWKSService creates the JWKS service over the configured bucket.
func (c *Container) initJWKSService() (tokenService.JWKSService, error) {
	bucket, err := c.JWKSBucket()
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket for jwks service: %w", err)
	}
	return tokenService.NewJWKSService(bucket), nil
}

// initQuotaPolicy creates the quota policy with all its dependencies.
func (c *Container) initQuotaPolicy() (tokenUseCase.QuotaPolicy, error) {
	tokenUsageRepo, err := c.TokenUsageRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token usage repository for quota policy: %w", err)
	}
	return tokenUseCase.NewUsageQuotaPolicy(tokenUsageRepo, c.VerificationCache()), nil
}

// initIssueUseCase creates the token issuance use case with all its dependencies.
func (c *Container) initIssueUseCase() (tokenUseCase.IssueUseCase, error) {
	clientRepo, err := c.ClientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client repository for issue use case: %w", err)
	}

	clientSecretRepo, err := c.ClientSecretRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client secret repository for issue use case: %w", err)
	}

	workspaceRepo, err := c.WorkspaceRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace repository for issue use case: %w", err)
	}

	apiRepo, err := c.APIRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get api repository for issue use case: %w", err)
	}

	signingSecretRepo, err := c.SigningSecretRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get signing secret repository for issue use case: %w", err)
	}

	envelope, err := c.Envelope()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope service for issue use case: %w", err)
	}

	quotaPolicy, err := c.QuotaPolicy()
	if err != nil {
		return nil, fmt.Errorf("failed to get quota policy for issue use case: %w", err)
	}

	tokenMetrics, err := c.TokenMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get token metrics for issue use case: %w", err)
	}

	return tokenUseCase.NewIssueUseCase(
		clientRepo,
		clientSecretRepo,
		workspaceRepo,
		apiRepo,
		signingSecretRepo,
		envelope,
		c.Codec(),
		c.SecretService(),
		quotaPolicy,
		tokenMetrics,
		c.Logger(),
	), nil
}

// initVerifyUseCase creates the token verification use case with all its dependencies.
func (c *Container) initVerifyUseCase() (tokenUseCase.VerifyUseCase, error) {
	clientRepo, err := c.ClientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client repository for verify use case: %w", err)
	}

	workspaceRepo, err := c.WorkspaceRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace repository for verify use case: %w", err)
	}

	apiRepo, err := c.APIRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get api repository for verify use case: %w", err)
	}

	signingSecretRepo, err := c.SigningSecretRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get signing secret repository for verify use case: %w", err)
	}

	envelope, err := c.Envelope()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope service for verify use case: %w", err)
	}

	jwksService, err := c.JWKSService()
	if err != nil {
		return nil, fmt.Errorf("failed to get jwks service for verify use case: %w", err)
	}

	tokenMetrics, err := c.TokenMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get token metrics for verify use case: %w", err)
	}

	return tokenUseCase.NewVerifyUseCase(
		clientRepo,
		workspaceRepo,
		apiRepo,
		signingSecretRepo,
		envelope,
		c.Codec(),
		jwksService,
		c.VerificationCache(),
		c.RateLimiter(),
		tokenMetrics,
		c.Logger(),
	), nil
}

// initTokenHandler creates the token handler.
func (c *Container) initTokenHandler() (*tokenHTTP.TokenHandler, error) {
	issueUC, err := c.IssueUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get issue use case for token handler: %w", err)
	}

	verifyUC, err := c.VerifyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get verify use case for token handler: %w", err)
	}

	jwksService, err := c.JWKSService()
	if err != nil {
		return nil, fmt.Errorf("failed to get jwks service for token handler: %w", err)
	}

	return tokenHTTP.NewTokenHandler(issueUC, verifyUC, jwksService, c.Logger()), nil
}
