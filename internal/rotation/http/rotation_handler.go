// Package http provides HTTP handlers for the rotation endpoints.
package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/keygateio/keygate/internal/errors"
	"github.com/keygateio/keygate/internal/httputil"
	"github.com/keygateio/keygate/internal/rotation/http/dto"
	rotationUseCase "github.com/keygateio/keygate/internal/rotation/usecase"
	tenantHTTP "github.com/keygateio/keygate/internal/tenant/http"
	tenantUseCase "github.com/keygateio/keygate/internal/tenant/usecase"
	customValidation "github.com/keygateio/keygate/internal/validation"
)

// RotationHandler handles HTTP requests for secret rotations.
type RotationHandler struct {
	rotationUseCase rotationUseCase.RotationUseCase
	clientUseCase   tenantUseCase.ClientUseCase
	logger          *slog.Logger
}

// NewRotationHandler creates a new rotation handler with required dependencies.
func NewRotationHandler(
	useCase rotationUseCase.RotationUseCase,
	clientUseCase tenantUseCase.ClientUseCase,
	logger *slog.Logger,
) *RotationHandler {
	return &RotationHandler{
		rotationUseCase: useCase,
		clientUseCase:   clientUseCase,
		logger:          logger,
	}
}

// bindRotateRequest binds the optional request body. An empty body means
// server defaults.
func (h *RotationHandler) bindRotateRequest(c *gin.Context, req *dto.RotateSecretRequest) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return false
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return false
	}
	return true
}

// RotateSigningSecretHandler opens a signing secret rotation window for an API.
// POST /v1/apis/:id/rotate - Requires a root client for the API's workspace.
// Returns 202 Accepted with the new signing secret ID; an in-flight rotation
// answers 409.
func (h *RotationHandler) RotateSigningSecretHandler(c *gin.Context) {
	apiID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid API ID format: must be a valid UUID"),
			h.logger)
		return
	}

	var req dto.RotateSecretRequest
	if !h.bindRotateRequest(c, &req) {
		return
	}

	caller, ok := tenantHTTP.GetClient(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	secret, err := h.rotationUseCase.RotateSigningSecret(c.Request.Context(), apiID, caller, req.ExpiresIn())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusAccepted, dto.RotateSigningSecretResponse{
		NewSigningSecretID: secret.ID.String(),
	})
}

// RotateClientSecretHandler opens a client secret rotation window.
// POST /v1/clients/:id/rotate - Requires a root client for the client's
// workspace.
// Returns 202 Accepted with the new secret in plain text (shown exactly
// once); an in-flight rotation answers 409.
func (h *RotationHandler) RotateClientSecretHandler(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid client ID format: must be a valid UUID"),
			h.logger)
		return
	}

	var req dto.RotateSecretRequest
	if !h.bindRotateRequest(c, &req) {
		return
	}

	// The target client decides which workspace the caller must be root for.
	client, err := h.clientUseCase.Get(c.Request.Context(), clientID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	caller, ok := tenantHTTP.GetClient(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}
	if !caller.IsRootFor(client.WorkspaceID) {
		httputil.HandleErrorGin(c, apperrors.ErrForbidden, h.logger)
		return
	}

	output, err := h.rotationUseCase.RotateClientSecret(c.Request.Context(), clientID, req.ExpiresIn())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusAccepted, dto.RotateClientSecretResponse{
		SecretID: output.SecretID.String(),
		Secret:   output.PlaintextSecret,
	})
}
