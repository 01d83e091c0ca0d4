package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/keygateio/keygate/internal/errors"
	"github.com/keygateio/keygate/internal/httputil"
	"github.com/keygateio/keygate/internal/tenant/http/dto"
	tenantUseCase "github.com/keygateio/keygate/internal/tenant/usecase"
	customValidation "github.com/keygateio/keygate/internal/validation"
)

// ClientHandler handles HTTP requests for client management operations.
type ClientHandler struct {
	clientUseCase tenantUseCase.ClientUseCase
	apiUseCase    tenantUseCase.APIUseCase
	logger        *slog.Logger
}

// NewClientHandler creates a new client handler with required dependencies.
func NewClientHandler(
	clientUseCase tenantUseCase.ClientUseCase,
	apiUseCase tenantUseCase.APIUseCase,
	logger *slog.Logger,
) *ClientHandler {
	return &ClientHandler{
		clientUseCase: clientUseCase,
		apiUseCase:    apiUseCase,
		logger:        logger,
	}
}

// CreateHandler provisions a client of an API together with its first secret.
// POST /v1/clients - Requires a root client for the API's workspace.
// Returns 201 Created with client data and the plain text secret.
func (h *ClientHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateClientRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	apiID, err := uuid.Parse(req.APIID)
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid api_id format: must be a valid UUID"),
			h.logger)
		return
	}

	var forWorkspaceID *uuid.UUID
	if req.ForWorkspaceID != "" {
		parsed, err := uuid.Parse(req.ForWorkspaceID)
		if err != nil {
			httputil.HandleValidationErrorGin(c,
				fmt.Errorf("invalid for_workspace_id format: must be a valid UUID"),
				h.logger)
			return
		}
		forWorkspaceID = &parsed
	}

	// The target API decides which workspace the caller must be root for.
	api, err := h.apiUseCase.Get(c.Request.Context(), apiID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	caller, ok := GetClient(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}
	if !caller.IsRootFor(api.WorkspaceID) {
		httputil.HandleErrorGin(c, apperrors.ErrForbidden, h.logger)
		return
	}

	input := tenantUseCase.CreateClientInput{
		APIID:            apiID,
		Name:             req.Name,
		ForWorkspaceID:   forWorkspaceID,
		Scopes:           req.Scopes,
		Metadata:         req.Metadata,
		BucketSize:       req.BucketSize,
		RefillAmount:     req.RefillAmount,
		RefillIntervalMS: req.RefillIntervalMS,
		SecretExpiresAt:  req.SecretExpiresAt,
	}

	output, err := h.clientUseCase.Create(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.CreateClientResponse{
		Client: dto.MapClientToResponse(output.Client),
		Secret: output.PlaintextSecret,
	}

	c.JSON(http.StatusCreated, response)
}

// GetHandler retrieves a client by ID.
// GET /v1/clients/:id - Requires a root client for the client's workspace.
// Returns 200 OK with client data (no secret).
func (h *ClientHandler) GetHandler(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid client ID format: must be a valid UUID"),
			h.logger)
		return
	}

	client, err := h.clientUseCase.Get(c.Request.Context(), clientID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	caller, ok := GetClient(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}
	if !caller.IsRootFor(client.WorkspaceID) {
		httputil.HandleErrorGin(c, apperrors.ErrForbidden, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapClientToResponse(client))
}

// ListHandler lists the clients of an API.
// GET /v1/clients?api_id=<uuid>&offset=0&limit=50 - Requires a root client
// for the API's workspace.
// Returns 200 OK with paginated client data.
func (h *ClientHandler) ListHandler(c *gin.Context) {
	apiID, err := uuid.Parse(c.Query("api_id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid api_id parameter: must be a valid UUID"),
			h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	api, err := h.apiUseCase.Get(c.Request.Context(), apiID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	caller, ok := GetClient(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}
	if !caller.IsRootFor(api.WorkspaceID) {
		httputil.HandleErrorGin(c, apperrors.ErrForbidden, h.logger)
		return
	}

	clients, err := h.clientUseCase.ListByAPI(c.Request.Context(), apiID, limit, offset)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapClientsToListResponse(clients))
}
