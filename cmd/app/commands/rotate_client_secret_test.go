package commands

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	rotationMocks "github.com/keygateio/keygate/internal/rotation/http/mocks"
	rotationUseCase "github.com/keygateio/keygate/internal/rotation/usecase"
)

func TestRunRotateClientSecret(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()
	clientID := uuid.Must(uuid.NewV7())
	secretID := uuid.Must(uuid.NewV7())

	t.Run("prints new secret once", func(t *testing.T) {
		mockUseCase := &rotationMocks.MockRotationUseCase{}
		output := &rotationUseCase.RotateClientSecretOutput{
			SecretID:        secretID,
			PlaintextSecret: "new-plain-secret",
		}
		mockUseCase.On("RotateClientSecret", ctx, clientID, time.Hour).Return(output, nil)

		var out bytes.Buffer
		err := RunRotateClientSecret(ctx, mockUseCase, logger, clientID.String(), time.Hour, "text", IOTuple{Writer: &out})
		require.NoError(t, err)
		require.Equal(t, 1, bytes.Count(out.Bytes(), []byte("new-plain-secret")))
		require.Contains(t, out.String(), secretID.String())
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json output", func(t *testing.T) {
		mockUseCase := &rotationMocks.MockRotationUseCase{}
		output := &rotationUseCase.RotateClientSecretOutput{
			SecretID:        secretID,
			PlaintextSecret: "new-plain-secret",
		}
		mockUseCase.On("RotateClientSecret", ctx, clientID, time.Duration(0)).Return(output, nil)

		var out bytes.Buffer
		err := RunRotateClientSecret(ctx, mockUseCase, logger, clientID.String(), 0, "json", IOTuple{Writer: &out})
		require.NoError(t, err)
		require.Contains(t, out.String(), `"secret_id"`)
	})

	t.Run("invalid client id", func(t *testing.T) {
		mockUseCase := &rotationMocks.MockRotationUseCase{}

		var out bytes.Buffer
		err := RunRotateClientSecret(ctx, mockUseCase, logger, "nope", 0, "text", IOTuple{Writer: &out})
		require.Error(t, err)
		mockUseCase.AssertNotCalled(t, "RotateClientSecret", mock.Anything, mock.Anything, mock.Anything)
	})
}
