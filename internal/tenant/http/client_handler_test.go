package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "github.com/keygateio/keygate/internal/errors"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
	"github.com/keygateio/keygate/internal/tenant/http/dto"
	httpMocks "github.com/keygateio/keygate/internal/tenant/http/mocks"
	tenantUseCase "github.com/keygateio/keygate/internal/tenant/usecase"
)

func TestClientHandler_CreateHandler(t *testing.T) {
	t.Run("Success_SecretReturnedOnce", func(t *testing.T) {
		mockClientUseCase := &httpMocks.MockClientUseCase{}
		mockAPIUseCase := &httpMocks.MockAPIUseCase{}
		handler := NewClientHandler(mockClientUseCase, mockAPIUseCase, testLogger())

		workspaceID := uuid.Must(uuid.NewV7())
		api := &tenantDomain.API{
			ID:          uuid.Must(uuid.NewV7()),
			WorkspaceID: workspaceID,
			Scopes:      []string{"read:orders"},
		}

		client := &tenantDomain.Client{
			ID:          uuid.Must(uuid.NewV7()),
			APIID:       api.ID,
			WorkspaceID: workspaceID,
			Name:        "billing-service",
			Version:     1,
			Scopes:      []string{"read:orders"},
		}

		request := dto.CreateClientRequest{
			APIID:  api.ID.String(),
			Name:   "billing-service",
			Scopes: []string{"read:orders"},
		}

		mockAPIUseCase.On("Get", mock.Anything, api.ID).
			Return(api, nil).
			Once()
		mockClientUseCase.On("Create", mock.Anything, mock.MatchedBy(func(input tenantUseCase.CreateClientInput) bool {
			return input.APIID == api.ID && input.Name == "billing-service"
		})).
			Return(&tenantUseCase.CreateClientOutput{Client: client, PlaintextSecret: "plain-secret"}, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/clients", request)
		withCaller(c, rootClientFor(workspaceID))

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.CreateClientResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, client.ID.String(), response.Client.ID)
		assert.Equal(t, "plain-secret", response.Secret)
		assert.Equal(t, int64(1), response.Client.Version)

		mockClientUseCase.AssertExpectations(t)
		mockAPIUseCase.AssertExpectations(t)
	})

	t.Run("Error_RootForDifferentWorkspace", func(t *testing.T) {
		mockClientUseCase := &httpMocks.MockClientUseCase{}
		mockAPIUseCase := &httpMocks.MockAPIUseCase{}
		handler := NewClientHandler(mockClientUseCase, mockAPIUseCase, testLogger())

		api := &tenantDomain.API{
			ID:          uuid.Must(uuid.NewV7()),
			WorkspaceID: uuid.Must(uuid.NewV7()),
		}

		request := dto.CreateClientRequest{
			APIID: api.ID.String(),
			Name:  "billing-service",
		}

		mockAPIUseCase.On("Get", mock.Anything, api.ID).
			Return(api, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/clients", request)
		withCaller(c, rootClientFor(uuid.Must(uuid.NewV7())))

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		mockClientUseCase.AssertNotCalled(t, "Create")
	})

	t.Run("Error_UnknownAPI", func(t *testing.T) {
		mockClientUseCase := &httpMocks.MockClientUseCase{}
		mockAPIUseCase := &httpMocks.MockAPIUseCase{}
		handler := NewClientHandler(mockClientUseCase, mockAPIUseCase, testLogger())

		apiID := uuid.Must(uuid.NewV7())
		request := dto.CreateClientRequest{
			APIID: apiID.String(),
			Name:  "billing-service",
		}

		mockAPIUseCase.On("Get", mock.Anything, apiID).
			Return(nil, apperrors.Wrap(apperrors.ErrNotFound, "api not found")).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/clients", request)
		withCaller(c, rootClientFor(uuid.Must(uuid.NewV7())))

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockClientUseCase.AssertNotCalled(t, "Create")
	})
}

func TestClientHandler_GetHandler(t *testing.T) {
	t.Run("Success_NoSecretInResponse", func(t *testing.T) {
		mockClientUseCase := &httpMocks.MockClientUseCase{}
		mockAPIUseCase := &httpMocks.MockAPIUseCase{}
		handler := NewClientHandler(mockClientUseCase, mockAPIUseCase, testLogger())

		workspaceID := uuid.Must(uuid.NewV7())
		client := &tenantDomain.Client{
			ID:          uuid.Must(uuid.NewV7()),
			APIID:       uuid.Must(uuid.NewV7()),
			WorkspaceID: workspaceID,
			Name:        "billing-service",
			Version:     3,
		}

		mockClientUseCase.On("Get", mock.Anything, client.ID).
			Return(client, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/clients/"+client.ID.String(), nil)
		c.Params = gin.Params{{Key: "id", Value: client.ID.String()}}
		withCaller(c, rootClientFor(workspaceID))

		handler.GetHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, client.ID.String(), response["id"])
		assert.NotContains(t, response, "secret")

		mockClientUseCase.AssertExpectations(t)
	})

	t.Run("Error_InvalidID", func(t *testing.T) {
		mockClientUseCase := &httpMocks.MockClientUseCase{}
		mockAPIUseCase := &httpMocks.MockAPIUseCase{}
		handler := NewClientHandler(mockClientUseCase, mockAPIUseCase, testLogger())

		c, w := createTestContext(http.MethodGet, "/v1/clients/not-a-uuid", nil)
		c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
		withCaller(c, rootClientFor(uuid.Must(uuid.NewV7())))

		handler.GetHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockClientUseCase.AssertNotCalled(t, "Get")
	})
}

func TestClientHandler_ListHandler(t *testing.T) {
	t.Run("Success_ListsByAPI", func(t *testing.T) {
		mockClientUseCase := &httpMocks.MockClientUseCase{}
		mockAPIUseCase := &httpMocks.MockAPIUseCase{}
		handler := NewClientHandler(mockClientUseCase, mockAPIUseCase, testLogger())

		workspaceID := uuid.Must(uuid.NewV7())
		api := &tenantDomain.API{ID: uuid.Must(uuid.NewV7()), WorkspaceID: workspaceID}
		clients := []*tenantDomain.Client{
			{ID: uuid.Must(uuid.NewV7()), APIID: api.ID, WorkspaceID: workspaceID, Version: 1},
			{ID: uuid.Must(uuid.NewV7()), APIID: api.ID, WorkspaceID: workspaceID, Version: 2},
		}

		mockAPIUseCase.On("Get", mock.Anything, api.ID).
			Return(api, nil).
			Once()
		mockClientUseCase.On("ListByAPI", mock.Anything, api.ID, 10, 5).
			Return(clients, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/clients?api_id="+api.ID.String()+"&limit=10&offset=5", nil)
		withCaller(c, rootClientFor(workspaceID))

		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListClientsResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Len(t, response.Data, 2)

		mockClientUseCase.AssertExpectations(t)
		mockAPIUseCase.AssertExpectations(t)
	})
}
