// Package mocks provides mock implementations for testing management HTTP
// handlers.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
	tenantUseCase "github.com/keygateio/keygate/internal/tenant/usecase"
)

// MockWorkspaceUseCase is a mock implementation of WorkspaceUseCase for testing.
type MockWorkspaceUseCase struct {
	mock.Mock
}

// Create mocks the Create method of WorkspaceUseCase.
func (m *MockWorkspaceUseCase) Create(
	ctx context.Context,
	input tenantUseCase.CreateWorkspaceInput,
) (*tenantDomain.Workspace, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.Workspace), args.Error(1)
}

// Get mocks the Get method of WorkspaceUseCase.
func (m *MockWorkspaceUseCase) Get(ctx context.Context, workspaceID uuid.UUID) (*tenantDomain.Workspace, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.Workspace), args.Error(1)
}

// List mocks the List method of WorkspaceUseCase.
func (m *MockWorkspaceUseCase) List(ctx context.Context, limit, offset int) ([]*tenantDomain.Workspace, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tenantDomain.Workspace), args.Error(1)
}

// MockAPIUseCase is a mock implementation of APIUseCase for testing.
type MockAPIUseCase struct {
	mock.Mock
}

// Create mocks the Create method of APIUseCase.
func (m *MockAPIUseCase) Create(ctx context.Context, input tenantUseCase.CreateAPIInput) (*tenantDomain.API, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.API), args.Error(1)
}

// Get mocks the Get method of APIUseCase.
func (m *MockAPIUseCase) Get(ctx context.Context, apiID uuid.UUID) (*tenantDomain.API, error) {
	args := m.Called(ctx, apiID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.API), args.Error(1)
}

// ListByWorkspace mocks the ListByWorkspace method of APIUseCase.
func (m *MockAPIUseCase) ListByWorkspace(
	ctx context.Context,
	workspaceID uuid.UUID,
	limit, offset int,
) ([]*tenantDomain.API, error) {
	args := m.Called(ctx, workspaceID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tenantDomain.API), args.Error(1)
}

// MockClientUseCase is a mock implementation of ClientUseCase for testing.
type MockClientUseCase struct {
	mock.Mock
}

// Create mocks the Create method of ClientUseCase.
func (m *MockClientUseCase) Create(
	ctx context.Context,
	input tenantUseCase.CreateClientInput,
) (*tenantUseCase.CreateClientOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantUseCase.CreateClientOutput), args.Error(1)
}

// Get mocks the Get method of ClientUseCase.
func (m *MockClientUseCase) Get(ctx context.Context, clientID uuid.UUID) (*tenantDomain.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.Client), args.Error(1)
}

// ListByAPI mocks the ListByAPI method of ClientUseCase.
func (m *MockClientUseCase) ListByAPI(
	ctx context.Context,
	apiID uuid.UUID,
	limit, offset int,
) ([]*tenantDomain.Client, error) {
	args := m.Called(ctx, apiID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tenantDomain.Client), args.Error(1)
}
