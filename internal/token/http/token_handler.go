// Package http provides HTTP handlers for the token issuance, verification,
// and JWKS endpoints.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/keygateio/keygate/internal/httputil"
	"github.com/keygateio/keygate/internal/token/http/dto"
	tokenService "github.com/keygateio/keygate/internal/token/service"
	tokenUseCase "github.com/keygateio/keygate/internal/token/usecase"
	customValidation "github.com/keygateio/keygate/internal/validation"
)

// TokenHandler handles HTTP requests for the public token surface.
type TokenHandler struct {
	issueUseCase  tokenUseCase.IssueUseCase
	verifyUseCase tokenUseCase.VerifyUseCase
	jwksService   tokenService.JWKSService
	logger        *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(
	issueUseCase tokenUseCase.IssueUseCase,
	verifyUseCase tokenUseCase.VerifyUseCase,
	jwksService tokenService.JWKSService,
	logger *slog.Logger,
) *TokenHandler {
	return &TokenHandler{
		issueUseCase:  issueUseCase,
		verifyUseCase: verifyUseCase,
		jwksService:   jwksService,
		logger:        logger,
	}
}

// IssueTokenHandler exchanges client credentials for a signed token.
// POST /v1/token - No authentication required (this is the authentication endpoint).
// Returns 201 Created with the token, its type, and expiration.
func (h *TokenHandler) IssueTokenHandler(c *gin.Context) {
	var req dto.IssueTokenRequest

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

	// Parse client ID as UUID
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid client_id format: must be a valid UUID"),
			h.logger)
		return
	}

	// Call use case
	output, err := h.issueUseCase.Issue(c.Request.Context(), clientID, req.ClientSecret)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.IssueTokenResponse{
		Token:     output.Token,
		TokenType: output.TokenType,
		ExpiresIn: output.ExpiresIn,
		Scope:     output.Scope,
	}

	c.JSON(http.StatusCreated, response)
}

// VerifyTokenHandler checks a presented token against the requested scopes.
// POST /v1/verify - No authentication required.
// Returns 200 OK for every well-formed request: failed verifications answer
// with valid=false and a reason, never with an HTTP error status.
func (h *TokenHandler) VerifyTokenHandler(c *gin.Context) {
	var req dto.VerifyTokenRequest

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

	result := h.verifyUseCase.Verify(c.Request.Context(), req.Token, req.Scopes, req.ScopeModeOrDefault())

	c.JSON(http.StatusOK, dto.NewVerifyTokenResponse(result))
}

// JWKSHandler serves the published JWKS document for an rsa256 API.
// GET /:workspace_id/:api_id/.well-known/jwks.json - No authentication required.
// The stored document is served verbatim; APIs without a published document
// (including all hsa256 APIs) answer 404.
func (h *TokenHandler) JWKSHandler(c *gin.Context) {
	workspaceID, err := uuid.Parse(c.Param("workspace_id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid workspace_id format: must be a valid UUID"),
			h.logger)
		return
	}

	apiID, err := uuid.Parse(c.Param("api_id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid api_id format: must be a valid UUID"),
			h.logger)
		return
	}

	raw, err := h.jwksService.Raw(c.Request.Context(), workspaceID, apiID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusOK, "application/json", raw)
}
