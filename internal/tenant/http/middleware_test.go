package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
	tokenDomain "github.com/keygateio/keygate/internal/token/domain"
	tokenMocks "github.com/keygateio/keygate/internal/token/http/mocks"
)

// setupProtectedRouter mounts the management middleware in front of a probe
// handler that reports whether the caller made it into the context.
func setupProtectedRouter(t *testing.T, mockVerify *tokenMocks.MockVerifyUseCase) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ManagementAuthMiddleware(mockVerify, testLogger()))
	router.GET("/protected", func(c *gin.Context) {
		caller, ok := GetClient(c.Request.Context())
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no caller in context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"client_id": caller.ID.String()})
	})

	return router
}

func TestManagementAuthMiddleware(t *testing.T) {
	t.Run("Success_RootClient", func(t *testing.T) {
		mockVerify := &tokenMocks.MockVerifyUseCase{}
		router := setupProtectedRouter(t, mockVerify)

		workspaceID := uuid.Must(uuid.NewV7())
		caller := &tenantDomain.Client{
			ID:             uuid.Must(uuid.NewV7()),
			WorkspaceID:    workspaceID,
			ForWorkspaceID: &workspaceID,
		}

		mockVerify.On("Verify", mock.Anything, "valid-token", []string(nil), tenantDomain.ScopeModeOne).
			Return(tokenDomain.Verified(caller, &tokenDomain.Claims{})).
			Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), caller.ID.String())

		mockVerify.AssertExpectations(t)
	})

	t.Run("Success_CaseInsensitiveBearerPrefix", func(t *testing.T) {
		mockVerify := &tokenMocks.MockVerifyUseCase{}
		router := setupProtectedRouter(t, mockVerify)

		workspaceID := uuid.Must(uuid.NewV7())
		caller := &tenantDomain.Client{
			ID:             uuid.Must(uuid.NewV7()),
			WorkspaceID:    workspaceID,
			ForWorkspaceID: &workspaceID,
		}

		mockVerify.On("Verify", mock.Anything, "valid-token", []string(nil), tenantDomain.ScopeModeOne).
			Return(tokenDomain.Verified(caller, &tokenDomain.Claims{})).
			Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "bearer valid-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_MissingAuthorizationHeader", func(t *testing.T) {
		mockVerify := &tokenMocks.MockVerifyUseCase{}
		router := setupProtectedRouter(t, mockVerify)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockVerify.AssertNotCalled(t, "Verify")
	})

	t.Run("Error_MalformedAuthorizationHeader", func(t *testing.T) {
		mockVerify := &tokenMocks.MockVerifyUseCase{}
		router := setupProtectedRouter(t, mockVerify)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockVerify.AssertNotCalled(t, "Verify")
	})

	t.Run("Error_RejectedToken", func(t *testing.T) {
		mockVerify := &tokenMocks.MockVerifyUseCase{}
		router := setupProtectedRouter(t, mockVerify)

		mockVerify.On("Verify", mock.Anything, "stale-token", []string(nil), tenantDomain.ScopeModeOne).
			Return(tokenDomain.Denied(tokenDomain.ReasonVersionMismatch)).
			Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer stale-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockVerify.AssertExpectations(t)
	})

	t.Run("Error_NonRootClient", func(t *testing.T) {
		mockVerify := &tokenMocks.MockVerifyUseCase{}
		router := setupProtectedRouter(t, mockVerify)

		caller := &tenantDomain.Client{
			ID:          uuid.Must(uuid.NewV7()),
			WorkspaceID: uuid.Must(uuid.NewV7()),
		}

		mockVerify.On("Verify", mock.Anything, "valid-token", []string(nil), tenantDomain.ScopeModeOne).
			Return(tokenDomain.Verified(caller, &tokenDomain.Claims{})).
			Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		mockVerify.AssertExpectations(t)
	})
}
