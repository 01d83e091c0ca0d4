package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/keygateio/keygate/internal/crypto/domain"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
)

// MockWorkspaceRepository is a mock implementation of WorkspaceRepository
type MockWorkspaceRepository struct {
	mock.Mock
}

func (m *MockWorkspaceRepository) Get(ctx context.Context, workspaceID uuid.UUID) (*tenantDomain.Workspace, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.Workspace), args.Error(1)
}

// MockAPIRepository is a mock implementation of APIRepository
type MockAPIRepository struct {
	mock.Mock
}

func (m *MockAPIRepository) Get(ctx context.Context, apiID uuid.UUID) (*tenantDomain.API, error) {
	args := m.Called(ctx, apiID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.API), args.Error(1)
}

// MockClientRepository is a mock implementation of ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Get(ctx context.Context, clientID uuid.UUID) (*tenantDomain.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.Client), args.Error(1)
}

// MockClientSecretRepository is a mock implementation of ClientSecretRepository
type MockClientSecretRepository struct {
	mock.Mock
}

func (m *MockClientSecretRepository) Get(ctx context.Context, secretID uuid.UUID) (*tenantDomain.ClientSecret, error) {
	args := m.Called(ctx, secretID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.ClientSecret), args.Error(1)
}

// MockSigningSecretRepository is a mock implementation of SigningSecretRepository
type MockSigningSecretRepository struct {
	mock.Mock
}

func (m *MockSigningSecretRepository) Get(ctx context.Context, secretID uuid.UUID) (*tenantDomain.SigningSecret, error) {
	args := m.Called(ctx, secretID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.SigningSecret), args.Error(1)
}

// MockQuotaPolicy is a mock implementation of QuotaPolicy
type MockQuotaPolicy struct {
	mock.Mock
}

func (m *MockQuotaPolicy) Allow(ctx context.Context, workspace *tenantDomain.Workspace, now time.Time) (bool, error) {
	args := m.Called(ctx, workspace, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuotaPolicy) RecordIssued(ctx context.Context, workspace *tenantDomain.Workspace, now time.Time) error {
	args := m.Called(ctx, workspace, now)
	return args.Error(0)
}

// identityEnvelope treats stored ciphertext as plaintext, standing in for the
// real envelope service in engine tests.
type identityEnvelope struct{}

func (identityEnvelope) CreateDataKey(context.Context) (*cryptoDomain.DataKey, error) {
	panic("not used in engine tests")
}

func (identityEnvelope) EncryptWithDataKey(_ context.Context, _ uuid.UUID, plaintext []byte) ([]byte, []byte, error) {
	return plaintext, []byte("nonce"), nil
}

func (identityEnvelope) DecryptWithDataKey(_ context.Context, _ uuid.UUID, ciphertext, _ []byte) ([]byte, error) {
	return ciphertext, nil
}

// nopTokenMetrics discards metric recordings.
type nopTokenMetrics struct{}

func (nopTokenMetrics) RecordTokenGenerated(context.Context, string, string, string)       {}
func (nopTokenMetrics) RecordTokenVerified(context.Context, string, string, string, string) {}
