// Package mocks provides mock implementations for testing rotation HTTP
// handlers.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	rotationUseCase "github.com/keygateio/keygate/internal/rotation/usecase"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
)

// MockRotationUseCase is a mock implementation of RotationUseCase for testing.
type MockRotationUseCase struct {
	mock.Mock
}

// RotateSigningSecret mocks the RotateSigningSecret method of RotationUseCase.
func (m *MockRotationUseCase) RotateSigningSecret(
	ctx context.Context,
	apiID uuid.UUID,
	rotatedBy *tenantDomain.Client,
	expiresIn time.Duration,
) (*tenantDomain.SigningSecret, error) {
	args := m.Called(ctx, apiID, rotatedBy, expiresIn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.SigningSecret), args.Error(1)
}

// RotateClientSecret mocks the RotateClientSecret method of RotationUseCase.
func (m *MockRotationUseCase) RotateClientSecret(
	ctx context.Context,
	clientID uuid.UUID,
	expiresIn time.Duration,
) (*rotationUseCase.RotateClientSecretOutput, error) {
	args := m.Called(ctx, clientID, expiresIn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rotationUseCase.RotateClientSecretOutput), args.Error(1)
}
