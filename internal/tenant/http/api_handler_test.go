package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
	"github.com/keygateio/keygate/internal/tenant/http/dto"
	httpMocks "github.com/keygateio/keygate/internal/tenant/http/mocks"
	tenantUseCase "github.com/keygateio/keygate/internal/tenant/usecase"
)

func TestAPIHandler_CreateHandler(t *testing.T) {
	t.Run("Success_ValidRequest", func(t *testing.T) {
		mockUseCase := &httpMocks.MockAPIUseCase{}
		handler := NewAPIHandler(mockUseCase, testLogger())

		workspaceID := uuid.Must(uuid.NewV7())
		api := &tenantDomain.API{
			ID:                     uuid.Must(uuid.NewV7()),
			WorkspaceID:            workspaceID,
			Name:                   "orders",
			Algorithm:              tenantDomain.AlgorithmHS256,
			TokenExpirationSeconds: 3600,
			CurrentSigningSecretID: uuid.Must(uuid.NewV7()),
			Scopes:                 []string{"read:orders"},
		}

		request := dto.CreateAPIRequest{
			WorkspaceID: workspaceID.String(),
			Name:        "orders",
			Algorithm:   "hsa256",
			Scopes:      []string{"read:orders"},
		}

		expectedInput := tenantUseCase.CreateAPIInput{
			WorkspaceID: workspaceID,
			Name:        "orders",
			Algorithm:   tenantDomain.AlgorithmHS256,
			Scopes:      []string{"read:orders"},
		}

		mockUseCase.On("Create", mock.Anything, expectedInput).
			Return(api, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/apis", request)
		withCaller(c, rootClientFor(workspaceID))

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.APIResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, api.ID.String(), response.ID)
		assert.Equal(t, "hsa256", response.Algorithm)
		assert.Equal(t, api.CurrentSigningSecretID.String(), response.CurrentSigningSecretID)
		assert.Empty(t, response.NextSigningSecretID)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_RootForDifferentWorkspace", func(t *testing.T) {
		mockUseCase := &httpMocks.MockAPIUseCase{}
		handler := NewAPIHandler(mockUseCase, testLogger())

		request := dto.CreateAPIRequest{
			WorkspaceID: uuid.Must(uuid.NewV7()).String(),
			Name:        "orders",
			Algorithm:   "hsa256",
		}

		c, w := createTestContext(http.MethodPost, "/v1/apis", request)
		withCaller(c, rootClientFor(uuid.Must(uuid.NewV7())))

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		mockUseCase.AssertNotCalled(t, "Create")
	})

	t.Run("Error_UnknownAlgorithm", func(t *testing.T) {
		mockUseCase := &httpMocks.MockAPIUseCase{}
		handler := NewAPIHandler(mockUseCase, testLogger())

		request := dto.CreateAPIRequest{
			WorkspaceID: uuid.Must(uuid.NewV7()).String(),
			Name:        "orders",
			Algorithm:   "es256",
		}

		c, w := createTestContext(http.MethodPost, "/v1/apis", request)

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "Create")
	})
}

func TestAPIHandler_ListHandler(t *testing.T) {
	t.Run("Success_PaginationDefaults", func(t *testing.T) {
		mockUseCase := &httpMocks.MockAPIUseCase{}
		handler := NewAPIHandler(mockUseCase, testLogger())

		workspaceID := uuid.Must(uuid.NewV7())
		apis := []*tenantDomain.API{
			{ID: uuid.Must(uuid.NewV7()), WorkspaceID: workspaceID, Algorithm: tenantDomain.AlgorithmRS256},
		}

		mockUseCase.On("ListByWorkspace", mock.Anything, workspaceID, 50, 0).
			Return(apis, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/apis?workspace_id="+workspaceID.String(), nil)
		withCaller(c, rootClientFor(workspaceID))

		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListAPIsResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Len(t, response.Data, 1)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_MissingWorkspaceID", func(t *testing.T) {
		mockUseCase := &httpMocks.MockAPIUseCase{}
		handler := NewAPIHandler(mockUseCase, testLogger())

		c, w := createTestContext(http.MethodGet, "/v1/apis", nil)
		withCaller(c, rootClientFor(uuid.Must(uuid.NewV7())))

		handler.ListHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "ListByWorkspace")
	})
}
