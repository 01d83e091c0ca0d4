// Package mocks provides mock implementations for testing HTTP handlers.
package mocks

import (
	"context"
	"crypto/rsa"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
	tokenDomain "github.com/keygateio/keygate/internal/token/domain"
	tokenUseCase "github.com/keygateio/keygate/internal/token/usecase"
)

// MockIssueUseCase is a mock implementation of IssueUseCase for testing.
type MockIssueUseCase struct {
	mock.Mock
}

// Issue mocks the Issue method of IssueUseCase.
func (m *MockIssueUseCase) Issue(
	ctx context.Context,
	clientID uuid.UUID,
	clientSecret string,
) (*tokenUseCase.IssueOutput, error) {
	args := m.Called(ctx, clientID, clientSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenUseCase.IssueOutput), args.Error(1)
}

// MockVerifyUseCase is a mock implementation of VerifyUseCase for testing.
type MockVerifyUseCase struct {
	mock.Mock
}

// Verify mocks the Verify method of VerifyUseCase.
func (m *MockVerifyUseCase) Verify(
	ctx context.Context,
	token string,
	requiredScopes []string,
	mode tenantDomain.ScopeMode,
) tokenDomain.VerifyResult {
	args := m.Called(ctx, token, requiredScopes, mode)
	return args.Get(0).(tokenDomain.VerifyResult)
}

// MockJWKSService is a mock implementation of JWKSService for testing.
type MockJWKSService struct {
	mock.Mock
}

// Fetch mocks the Fetch method of JWKSService.
func (m *MockJWKSService) Fetch(ctx context.Context, workspaceID, apiID uuid.UUID) (*jose.JSONWebKeySet, error) {
	args := m.Called(ctx, workspaceID, apiID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jose.JSONWebKeySet), args.Error(1)
}

// Raw mocks the Raw method of JWKSService.
func (m *MockJWKSService) Raw(ctx context.Context, workspaceID, apiID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, workspaceID, apiID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Publish mocks the Publish method of JWKSService.
func (m *MockJWKSService) Publish(ctx context.Context, workspaceID, apiID uuid.UUID, set *jose.JSONWebKeySet) error {
	args := m.Called(ctx, workspaceID, apiID, set)
	return args.Error(0)
}

// AppendKey mocks the AppendKey method of JWKSService.
func (m *MockJWKSService) AppendKey(
	ctx context.Context,
	workspaceID, apiID uuid.UUID,
	publicKey *rsa.PublicKey,
	kid string,
) error {
	args := m.Called(ctx, workspaceID, apiID, publicKey, kid)
	return args.Error(0)
}
