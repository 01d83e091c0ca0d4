package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
	tenantMocks "github.com/keygateio/keygate/internal/tenant/http/mocks"
	tenantUseCase "github.com/keygateio/keygate/internal/tenant/usecase"
)

func TestRunCreateAPI(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()
	workspaceID := uuid.Must(uuid.NewV7())
	apiID := uuid.Must(uuid.NewV7())

	t.Run("text output", func(t *testing.T) {
		mockUseCase := &tenantMocks.MockAPIUseCase{}
		api := &tenantDomain.API{
			ID:          apiID,
			WorkspaceID: workspaceID,
			Name:        "payments",
			Algorithm:   tenantDomain.AlgorithmRS256,
		}

		mockUseCase.On("Create", ctx, tenantUseCase.CreateAPIInput{
			WorkspaceID:            workspaceID,
			Name:                   "payments",
			Algorithm:              tenantDomain.AlgorithmRS256,
			TokenExpirationSeconds: 3600,
			Scopes:                 []string{"payments:read", "payments:write"},
		}).Return(api, nil)

		var out bytes.Buffer
		err := RunCreateAPI(
			ctx, mockUseCase, logger,
			workspaceID.String(), "payments", "rsa256", 3600, "payments:read,payments:write", "text",
			IOTuple{Writer: &out},
		)
		require.NoError(t, err)
		require.Contains(t, out.String(), apiID.String())
		require.Contains(t, out.String(), "payments")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json output", func(t *testing.T) {
		mockUseCase := &tenantMocks.MockAPIUseCase{}
		api := &tenantDomain.API{ID: apiID, WorkspaceID: workspaceID, Name: "payments", Algorithm: tenantDomain.AlgorithmHS256}

		mockUseCase.On("Create", ctx, mock.AnythingOfType("usecase.CreateAPIInput")).Return(api, nil)

		var out bytes.Buffer
		err := RunCreateAPI(
			ctx, mockUseCase, logger,
			workspaceID.String(), "payments", "hsa256", 0, "", "json",
			IOTuple{Writer: &out},
		)
		require.NoError(t, err)
		require.Contains(t, out.String(), `"api_id"`)
	})

	t.Run("invalid workspace id", func(t *testing.T) {
		mockUseCase := &tenantMocks.MockAPIUseCase{}

		var out bytes.Buffer
		err := RunCreateAPI(ctx, mockUseCase, logger, "not-a-uuid", "payments", "hsa256", 0, "", "text", IOTuple{Writer: &out})
		require.Error(t, err)
		mockUseCase.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
