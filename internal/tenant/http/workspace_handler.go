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

// WorkspaceHandler handles HTTP requests for workspace management operations.
type WorkspaceHandler struct {
	workspaceUseCase tenantUseCase.WorkspaceUseCase
	logger           *slog.Logger
}

// NewWorkspaceHandler creates a new workspace handler with required dependencies.
func NewWorkspaceHandler(workspaceUseCase tenantUseCase.WorkspaceUseCase, logger *slog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceUseCase: workspaceUseCase,
		logger:           logger,
	}
}

// CreateHandler provisions a new workspace with its own data encryption key.
// POST /v1/workspaces - Requires a root client. The first workspace of a
// deployment is created with the create-workspace CLI command instead.
// Returns 201 Created with workspace data.
func (h *WorkspaceHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateWorkspaceRequest

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

	input := tenantUseCase.CreateWorkspaceInput{
		Name:              req.Name,
		Plan:              tenantDomain.Plan(req.Plan),
		MonthlyTokenQuota: req.MonthlyTokenQuota,
	}

	workspace, err := h.workspaceUseCase.Create(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapWorkspaceToResponse(workspace))
}

// GetHandler retrieves a workspace by ID.
// GET /v1/workspaces/:id - Requires a root client for that workspace.
// Returns 200 OK with workspace data.
func (h *WorkspaceHandler) GetHandler(c *gin.Context) {
	workspaceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid workspace ID format: must be a valid UUID"),
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

	workspace, err := h.workspaceUseCase.Get(c.Request.Context(), workspaceID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapWorkspaceToResponse(workspace))
}
