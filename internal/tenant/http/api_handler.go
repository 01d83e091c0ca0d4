package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/keygateio/keygate/internal/errors"
	"github.com/keygateio/keygate/internal/httputil"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
	"github.com/keygateio/keygate/internal/tenant/http/dto"
	tenantUseCase "github.com/keygateio/keygate/internal/tenant/usecase"
	customValidation "github.com/keygateio/keygate/internal/validation"
)

// APIHandler handles HTTP requests for API management operations.
type APIHandler struct {
	apiUseCase tenantUseCase.APIUseCase
	logger     *slog.Logger
}

// NewAPIHandler creates a new API handler with required dependencies.
func NewAPIHandler(apiUseCase tenantUseCase.APIUseCase, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		apiUseCase: apiUseCase,
		logger:     logger,
	}
}

// CreateHandler registers an API and generates its initial signing secret.
// POST /v1/apis - Requires a root client for the target workspace.
// Returns 201 Created with API data; rsa256 APIs also get their first JWKS
// document published.
func (h *APIHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateAPIRequest

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

	workspaceID, err := uuid.Parse(req.WorkspaceID)
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid workspace_id format: must be a valid UUID"),
			h.logger)
		return
	}

	caller, ok := GetClient(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}
	if !caller.IsRootFor(workspaceID) {
		httputil.HandleErrorGin(c, apperrors.ErrForbidden, h.logger)
		return
	}

	input := tenantUseCase.CreateAPIInput{
		WorkspaceID:            workspaceID,
		Name:                   req.Name,
		Algorithm:              tenantDomain.SigningAlgorithm(req.Algorithm),
		TokenExpirationSeconds: req.TokenExpirationSeconds,
		Scopes:                 req.Scopes,
	}

	api, err := h.apiUseCase.Create(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapAPIToResponse(api))
}

// GetHandler retrieves an API by ID.
// GET /v1/apis/:id - Requires a root client for the API's workspace.
// Returns 200 OK with API data.
func (h *APIHandler) GetHandler(c *gin.Context) {
	apiID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid API ID format: must be a valid UUID"),
			h.logger)
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

	c.JSON(http.StatusOK, dto.MapAPIToResponse(api))
}

// ListHandler lists the APIs of a workspace.
// GET /v1/apis?workspace_id=<uuid>&offset=0&limit=50 - Requires a root client
// for that workspace.
// Returns 200 OK with paginated API data.
func (h *APIHandler) ListHandler(c *gin.Context) {
	workspaceID, err := uuid.Parse(c.Query("workspace_id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid workspace_id parameter: must be a valid UUID"),
			h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	caller, ok := GetClient(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}
	if !caller.IsRootFor(workspaceID) {
		httputil.HandleErrorGin(c, apperrors.ErrForbidden, h.logger)
		return
	}

	apis, err := h.apiUseCase.ListByWorkspace(c.Request.Context(), workspaceID, limit, offset)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAPIsToListResponse(apis))
}
