package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/keygateio/keygate/internal/errors"
	"github.com/keygateio/keygate/internal/httputil"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
	tokenUseCase "github.com/keygateio/keygate/internal/token/usecase"
)

// ManagementAuthMiddleware authenticates management requests via a Bearer
// token in the Authorization header.
//
// The presented token goes through the full verification state machine, so a
// rate-limited or version-stale token cannot reach the management surface.
// Only root clients (clients provisioned with for_workspace_id) pass: a plain
// API client with a perfectly valid token gets 403.
//
// Error handling:
//   - Missing/malformed Authorization header → 401 Unauthorized
//   - Token fails verification → 401 Unauthorized
//   - Verified token belongs to a non-root client → 403 Forbidden
//
// Downstream handlers access the caller via GetClient() and enforce
// per-workspace authorization themselves.
func ManagementAuthMiddleware(verifyUseCase tokenUseCase.VerifyUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("management authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		// Parse Bearer token (case-insensitive)
		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("management authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		token := authHeader[len(bearerPrefix):]
		if token == "" {
			logger.Debug("management authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		result := verifyUseCase.Verify(c.Request.Context(), token, nil, tenantDomain.ScopeModeOne)
		if !result.Valid {
			logger.Debug("management authentication failed: token rejected",
				slog.String("reason", string(result.Reason)))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if result.Client.ForWorkspaceID == nil {
			logger.Debug("management authorization failed: not a root client",
				slog.String("client_id", result.Client.ID.String()))
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithClient(c.Request.Context(), result.Client))
		c.Next()
	}
}
