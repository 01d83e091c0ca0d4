// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gocloud.dev/blob"

	"github.com/keygateio/keygate/internal/cache"
	"github.com/keygateio/keygate/internal/config"
	cryptoDomain "github.com/keygateio/keygate/internal/crypto/domain"
	cryptoRepository "github.com/keygateio/keygate/internal/crypto/repository"
	cryptoService "github.com/keygateio/keygate/internal/crypto/service"
	"github.com/keygateio/keygate/internal/database"
	"github.com/keygateio/keygate/internal/http"
	"github.com/keygateio/keygate/internal/metrics"
	outboxRepository "github.com/keygateio/keygate/internal/outbox/repository"
	outboxUsecase "github.com/keygateio/keygate/internal/outbox/usecase"
	"github.com/keygateio/keygate/internal/ratelimit"
	rotationHTTP "github.com/keygateio/keygate/internal/rotation/http"
	rotationUseCase "github.com/keygateio/keygate/internal/rotation/usecase"
	tenantHTTP "github.com/keygateio/keygate/internal/tenant/http"
	tenantRepository "github.com/keygateio/keygate/internal/tenant/repository"
	tenantUseCase "github.com/keygateio/keygate/internal/tenant/usecase"
	tokenHTTP "github.com/keygateio/keygate/internal/token/http"
	tokenService "github.com/keygateio/keygate/internal/token/service"
	tokenUseCase "github.com/keygateio/keygate/internal/token/usecase"
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

	// Crypto
	kmsService  cryptoService.KMSService
	kmsKeeper   cryptoDomain.KMSKeeper
	aeadManager cryptoService.AEADManager
	dataKeyRepo *cryptoRepository.PostgreSQLDataKeyRepository
	envelope    cryptoService.Envelope

	// Metrics
	metricsProvider *metrics.Provider
	tokenMetrics    metrics.TokenMetrics
	businessMetrics metrics.BusinessMetrics

	// Repositories
	workspaceRepo      *tenantRepository.PostgreSQLWorkspaceRepository
	apiRepo            *tenantRepository.PostgreSQLAPIRepository
	clientRepo         *tenantRepository.PostgreSQLClientRepository
	clientSecretRepo   *tenantRepository.PostgreSQLClientSecretRepository
	signingSecretRepo  *tenantRepository.PostgreSQLSigningSecretRepository
	idempotencyKeyRepo *tenantRepository.PostgreSQLIdempotencyKeyRepository
	tokenUsageRepo     *tenantRepository.PostgreSQLTokenUsageRepository
	outboxRepo         *outboxRepository.PostgreSQLOutboxEventRepository

	// Token services
	jwksBucket        *blob.Bucket
	jwksService       tokenService.JWKSService
	codec             tokenService.Codec
	secretService     tokenService.SecretService
	verificationCache cache.Cache
	rateLimiter       ratelimit.Limiter
	quotaPolicy       tokenUseCase.QuotaPolicy

	// Use Cases
	workspaceUseCase tenantUseCase.WorkspaceUseCase
	apiUseCase       tenantUseCase.APIUseCase
	clientUseCase    tenantUseCase.ClientUseCase
	issueUseCase     tokenUseCase.IssueUseCase
	verifyUseCase    tokenUseCase.VerifyUseCase
	rotationUseCase  rotationUseCase.RotationUseCase
	finalizeUseCase  rotationUseCase.FinalizeUseCase
	outboxUseCase    outboxUsecase.UseCase

	// Handlers
	tokenHandler     *tokenHTTP.TokenHandler
	workspaceHandler *tenantHTTP.WorkspaceHandler
	apiHandler       *tenantHTTP.APIHandler
	clientHandler    *tenantHTTP.ClientHandler
	rotationHandler  *rotationHTTP.RotationHandler

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                    sync.Mutex
	loggerInit            sync.Once
	dbInit                sync.Once
	txManagerInit         sync.Once
	kmsServiceInit        sync.Once
	kmsKeeperInit         sync.Once
	aeadManagerInit       sync.Once
	dataKeyRepoInit       sync.Once
	envelopeInit          sync.Once
	metricsProviderInit   sync.Once
	tokenMetricsInit      sync.Once
	businessMetricsInit   sync.Once
	workspaceRepoInit     sync.Once
	apiRepoInit           sync.Once
	clientRepoInit        sync.Once
	clientSecretRepoInit  sync.Once
	signingSecretRepoInit sync.Once
	idempotencyRepoInit   sync.Once
	tokenUsageRepoInit    sync.Once
	outboxRepoInit        sync.Once
	jwksBucketInit        sync.Once
	jwksServiceInit       sync.Once
	codecInit             sync.Once
	secretServiceInit     sync.Once
	verificationCacheInit sync.Once
	rateLimiterInit       sync.Once
	quotaPolicyInit       sync.Once
	workspaceUseCaseInit  sync.Once
	apiUseCaseInit        sync.Once
	clientUseCaseInit     sync.Once
	issueUseCaseInit      sync.Once
	verifyUseCaseInit     sync.Once
	rotationUseCaseInit   sync.Once
	finalizeUseCaseInit   sync.Once
	outboxUseCaseInit     sync.Once
	tokenHandlerInit      sync.Once
	workspaceHandlerInit  sync.Once
	apiHandlerInit        sync.Once
	clientHandlerInit     sync.Once
	rotationHandlerInit   sync.Once
	httpServerInit        sync.Once
	metricsServerInit     sync.Once
	initErrors            map[string]error
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

// HTTPServer returns the HTTP server instance with all routes configured.
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

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown HTTP servers if initialized
	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}
	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Flush the metrics pipeline if initialized
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Close the JWKS bucket if initialized
	if c.jwksBucket != nil {
		if err := c.jwksBucket.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("jwks bucket close: %w", err))
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

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	tokenHandler, err := c.TokenHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get token handler for http server: %w", err)
	}

	workspaceHandler, err := c.WorkspaceHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace handler for http server: %w", err)
	}

	apiHandler, err := c.APIHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get api handler for http server: %w", err)
	}

	clientHandler, err := c.ClientHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get client handler for http server: %w", err)
	}

	rotationHandler, err := c.RotationHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get rotation handler for http server: %w", err)
	}

	verifyUC, err := c.VerifyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get verify use case for http server: %w", err)
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(c.config, http.RouterHandlers{
		Token:          tokenHandler,
		Workspace:      workspaceHandler,
		API:            apiHandler,
		Client:         clientHandler,
		Rotation:       rotationHandler,
		ManagementAuth: tenantHTTP.ManagementAuthMiddleware(verifyUC, logger),
	})

	return server, nil
}
