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

	"github.com/keygateio/keygate/internal/config"
	rotationHTTP "github.com/keygateio/keygate/internal/rotation/http"
	tenantHTTP "github.com/keygateio/keygate/internal/tenant/http"
	tokenHTTP "github.com/keygateio/keygate/internal/token/http"
)

// Server represents the public HTTP server.
type Server struct {
	server *http.Server
	router *gin.Engine
	db     *sql.DB
	logger *slog.Logger
}

// NewServer creates a new HTTP server. Routes are registered separately with
// SetupRouter.
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

// RouterHandlers bundles the handlers mounted on the server.
type RouterHandlers struct {
	Token     *tokenHTTP.TokenHandler
	Workspace *tenantHTTP.WorkspaceHandler
	API       *tenantHTTP.APIHandler
	Client    *tenantHTTP.ClientHandler
	Rotation  *rotationHTTP.RotationHandler

	// ManagementAuth guards the management routes. Typically
	// tenantHTTP.ManagementAuthMiddleware.
	ManagementAuth gin.HandlerFunc
}

// SetupRouter builds the gin engine and registers all routes.
//
// Route map:
//   - GET  /health, /ready                               (public)
//   - POST /v1/token, /v1/verify                         (public; token endpoint optionally IP rate limited)
//   - GET  /:workspace_id/:api_id/.well-known/jwks.json  (public)
//   - POST/GET management routes under /v1               (root client bearer auth)
func (s *Server) SetupRouter(cfg *config.Config, handlers RouterHandlers) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	// Public token surface
	public := router.Group("/v1")
	{
		tokenRoute := []gin.HandlerFunc{handlers.Token.IssueTokenHandler}
		if cfg.RateLimitTokenEnabled {
			tokenRoute = append([]gin.HandlerFunc{
				TokenRateLimitMiddleware(cfg.RateLimitTokenRequestsPerSec, cfg.RateLimitTokenBurst, s.logger),
			}, tokenRoute...)
		}
		public.POST("/token", tokenRoute...)
		public.POST("/verify", handlers.Token.VerifyTokenHandler)
	}

	// Published JWKS documents, addressed by workspace and API
	router.GET("/:workspace_id/:api_id/.well-known/jwks.json", handlers.Token.JWKSHandler)

	// Management surface, root clients only
	management := router.Group("/v1")
	management.Use(handlers.ManagementAuth)
	{
		management.POST("/workspaces", handlers.Workspace.CreateHandler)
		management.GET("/workspaces/:id", handlers.Workspace.GetHandler)

		management.POST("/apis", handlers.API.CreateHandler)
		management.GET("/apis", handlers.API.ListHandler)
		management.GET("/apis/:id", handlers.API.GetHandler)
		management.POST("/apis/:id/rotate", handlers.Rotation.RotateSigningSecretHandler)

		management.POST("/clients", handlers.Client.CreateHandler)
		management.GET("/clients", handlers.Client.ListHandler)
		management.GET("/clients/:id", handlers.Client.GetHandler)
		management.POST("/clients/:id/rotate", handlers.Rotation.RotateClientSecretHandler)
	}

	s.router = router
	s.server.Handler = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured: call SetupRouter first")
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic. The database
// is the only hard dependency: KMS and blob access are exercised lazily.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"database": "ok"}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.db == nil {
		components["database"] = "error"
	} else if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		components["database"] = "error"
	}

	if components["database"] != "ok" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}
