package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "github.com/keygateio/keygate/internal/errors"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
	tokenDomain "github.com/keygateio/keygate/internal/token/domain"
	"github.com/keygateio/keygate/internal/token/http/dto"
	httpMocks "github.com/keygateio/keygate/internal/token/http/mocks"
	tokenService "github.com/keygateio/keygate/internal/token/service"
	tokenUseCase "github.com/keygateio/keygate/internal/token/usecase"
)

// setupTokenTestHandler creates a test token handler with mocked dependencies.
func setupTokenTestHandler(t *testing.T) (*TokenHandler, *httpMocks.MockIssueUseCase, *httpMocks.MockVerifyUseCase, *httpMocks.MockJWKSService) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockIssueUseCase := &httpMocks.MockIssueUseCase{}
	mockVerifyUseCase := &httpMocks.MockVerifyUseCase{}
	mockJWKSService := &httpMocks.MockJWKSService{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewTokenHandler(mockIssueUseCase, mockVerifyUseCase, mockJWKSService, logger)

	return handler, mockIssueUseCase, mockVerifyUseCase, mockJWKSService
}

// createTestContext builds a gin test context with an optional JSON body.
func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

func TestTokenHandler_IssueTokenHandler(t *testing.T) {
	t.Run("Success_ValidCredentials", func(t *testing.T) {
		handler, mockIssue, _, _ := setupTokenTestHandler(t)

		clientID := uuid.Must(uuid.NewV7())

		request := dto.IssueTokenRequest{
			ClientID:     clientID.String(),
			ClientSecret: "test_secret_123",
		}

		expectedOutput := &tokenUseCase.IssueOutput{
			Token:     "eyJhbGciOiJIUzI1NiJ9.payload.sig",
			TokenType: "Bearer",
			ExpiresIn: 3600,
			Scope:     "read:orders write:orders",
		}

		mockIssue.On("Issue", mock.Anything, clientID, "test_secret_123").
			Return(expectedOutput, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/token", request)

		handler.IssueTokenHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.IssueTokenResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, expectedOutput.Token, response.Token)
		assert.Equal(t, "Bearer", response.TokenType)
		assert.Equal(t, int64(3600), response.ExpiresIn)
		assert.Equal(t, "read:orders write:orders", response.Scope)

		mockIssue.AssertExpectations(t)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		handler, _, _, _ := setupTokenTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/token", nil)
		c.Request.Body = io.NopCloser(bytes.NewReader([]byte("invalid json")))

		handler.IssueTokenHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "BAD_REQUEST", response["error"])
	})

	t.Run("Error_MissingClientSecret", func(t *testing.T) {
		handler, _, _, _ := setupTokenTestHandler(t)

		request := dto.IssueTokenRequest{
			ClientID:     uuid.Must(uuid.NewV7()).String(),
			ClientSecret: "",
		}

		c, w := createTestContext(http.MethodPost, "/v1/token", request)

		handler.IssueTokenHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "BAD_REQUEST", response["error"])
	})

	t.Run("Error_InvalidClientIDFormat", func(t *testing.T) {
		handler, mockIssue, _, _ := setupTokenTestHandler(t)

		request := dto.IssueTokenRequest{
			ClientID:     "not-a-uuid",
			ClientSecret: "test_secret_123",
		}

		c, w := createTestContext(http.MethodPost, "/v1/token", request)

		handler.IssueTokenHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockIssue.AssertNotCalled(t, "Issue")
	})

	t.Run("Error_BadCredentials", func(t *testing.T) {
		handler, mockIssue, _, _ := setupTokenTestHandler(t)

		clientID := uuid.Must(uuid.NewV7())
		request := dto.IssueTokenRequest{
			ClientID:     clientID.String(),
			ClientSecret: "wrong_secret",
		}

		mockIssue.On("Issue", mock.Anything, clientID, "wrong_secret").
			Return(nil, apperrors.Wrap(apperrors.ErrForbidden, "client authentication failed")).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/token", request)

		handler.IssueTokenHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "FORBIDDEN", response["error"])

		mockIssue.AssertExpectations(t)
	})
}

func TestTokenHandler_VerifyTokenHandler(t *testing.T) {
	t.Run("Success_ValidToken", func(t *testing.T) {
		handler, _, mockVerify, _ := setupTokenTestHandler(t)

		client := &tenantDomain.Client{
			ID:          uuid.Must(uuid.NewV7()),
			WorkspaceID: uuid.Must(uuid.NewV7()),
			Scopes:      []string{"read:orders"},
		}

		request := dto.VerifyTokenRequest{
			Token:  "some.jwt.token",
			Scopes: []string{"read:orders"},
		}

		mockVerify.On("Verify", mock.Anything, "some.jwt.token", []string{"read:orders"}, tenantDomain.ScopeModeOne).
			Return(tokenDomain.Verified(client, &tokenDomain.Claims{})).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/verify", request)

		handler.VerifyTokenHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.VerifyTokenResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.True(t, response.Valid)
		assert.Empty(t, response.Reason)
		assert.Equal(t, client.ID.String(), response.ClientID)
		assert.Equal(t, client.WorkspaceID.String(), response.WorkspaceID)
		assert.Equal(t, []string{"read:orders"}, response.Scopes)

		mockVerify.AssertExpectations(t)
	})

	t.Run("Success_DeniedTokenAnswers200", func(t *testing.T) {
		handler, _, mockVerify, _ := setupTokenTestHandler(t)

		request := dto.VerifyTokenRequest{Token: "some.jwt.token"}

		mockVerify.On("Verify", mock.Anything, "some.jwt.token", []string(nil), tenantDomain.ScopeModeOne).
			Return(tokenDomain.Denied(tokenDomain.ReasonExpired)).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/verify", request)

		handler.VerifyTokenHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.VerifyTokenResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.False(t, response.Valid)
		assert.Equal(t, "EXPIRED", response.Reason)
		assert.Empty(t, response.ClientID)

		mockVerify.AssertExpectations(t)
	})

	t.Run("Success_ScopeModeAllPassedThrough", func(t *testing.T) {
		handler, _, mockVerify, _ := setupTokenTestHandler(t)

		request := dto.VerifyTokenRequest{
			Token:     "some.jwt.token",
			Scopes:    []string{"read:orders", "write:orders"},
			ScopeMode: "all",
		}

		mockVerify.On("Verify", mock.Anything, "some.jwt.token", request.Scopes, tenantDomain.ScopeModeAll).
			Return(tokenDomain.Denied(tokenDomain.ReasonMissingScopes)).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/verify", request)

		handler.VerifyTokenHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		mockVerify.AssertExpectations(t)
	})

	t.Run("Error_MissingToken", func(t *testing.T) {
		handler, _, mockVerify, _ := setupTokenTestHandler(t)

		request := dto.VerifyTokenRequest{Token: ""}

		c, w := createTestContext(http.MethodPost, "/v1/verify", request)

		handler.VerifyTokenHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockVerify.AssertNotCalled(t, "Verify")
	})

	t.Run("Error_UnknownScopeMode", func(t *testing.T) {
		handler, _, mockVerify, _ := setupTokenTestHandler(t)

		request := dto.VerifyTokenRequest{
			Token:     "some.jwt.token",
			ScopeMode: "any",
		}

		c, w := createTestContext(http.MethodPost, "/v1/verify", request)

		handler.VerifyTokenHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockVerify.AssertNotCalled(t, "Verify")
	})
}

func TestTokenHandler_JWKSHandler(t *testing.T) {
	t.Run("Success_ServesStoredDocument", func(t *testing.T) {
		handler, _, _, mockJWKS := setupTokenTestHandler(t)

		workspaceID := uuid.Must(uuid.NewV7())
		apiID := uuid.Must(uuid.NewV7())
		document := []byte(`{"keys":[]}`)

		mockJWKS.On("Raw", mock.Anything, workspaceID, apiID).
			Return(document, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/jwks", nil)
		c.Params = gin.Params{
			{Key: "workspace_id", Value: workspaceID.String()},
			{Key: "api_id", Value: apiID.String()},
		}

		handler.JWKSHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.Equal(t, document, w.Body.Bytes())

		mockJWKS.AssertExpectations(t)
	})

	t.Run("Error_NoPublishedDocument", func(t *testing.T) {
		handler, _, _, mockJWKS := setupTokenTestHandler(t)

		workspaceID := uuid.Must(uuid.NewV7())
		apiID := uuid.Must(uuid.NewV7())

		mockJWKS.On("Raw", mock.Anything, workspaceID, apiID).
			Return(nil, tokenService.ErrJWKSNotFound).
			Once()

		c, w := createTestContext(http.MethodGet, "/jwks", nil)
		c.Params = gin.Params{
			{Key: "workspace_id", Value: workspaceID.String()},
			{Key: "api_id", Value: apiID.String()},
		}

		handler.JWKSHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_InvalidWorkspaceID", func(t *testing.T) {
		handler, _, _, mockJWKS := setupTokenTestHandler(t)

		c, w := createTestContext(http.MethodGet, "/jwks", nil)
		c.Params = gin.Params{
			{Key: "workspace_id", Value: "not-a-uuid"},
			{Key: "api_id", Value: uuid.Must(uuid.NewV7()).String()},
		}

		handler.JWKSHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockJWKS.AssertNotCalled(t, "Raw")
	})
}
