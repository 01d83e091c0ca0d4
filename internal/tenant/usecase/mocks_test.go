package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/keygateio/keygate/internal/crypto/domain"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
)

// MockTxManager executes the function directly, without a transaction.
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockWorkspaceRepository struct {
	mock.Mock
}

func (m *MockWorkspaceRepository) Create(ctx context.Context, workspace *tenantDomain.Workspace) error {
	args := m.Called(ctx, workspace)
	return args.Error(0)
}

func (m *MockWorkspaceRepository) Get(ctx context.Context, workspaceID uuid.UUID) (*tenantDomain.Workspace, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) List(ctx context.Context, limit, offset int) ([]*tenantDomain.Workspace, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tenantDomain.Workspace), args.Error(1)
}

type MockAPIRepository struct {
	mock.Mock
}

func (m *MockAPIRepository) Create(ctx context.Context, api *tenantDomain.API) error {
	args := m.Called(ctx, api)
	return args.Error(0)
}

func (m *MockAPIRepository) Get(ctx context.Context, apiID uuid.UUID) (*tenantDomain.API, error) {
	args := m.Called(ctx, apiID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.API), args.Error(1)
}

func (m *MockAPIRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]*tenantDomain.API, error) {
	args := m.Called(ctx, workspaceID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tenantDomain.API), args.Error(1)
}

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, client *tenantDomain.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) Get(ctx context.Context, clientID uuid.UUID) (*tenantDomain.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.Client), args.Error(1)
}

func (m *MockClientRepository) ListByAPI(ctx context.Context, apiID uuid.UUID, limit, offset int) ([]*tenantDomain.Client, error) {
	args := m.Called(ctx, apiID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tenantDomain.Client), args.Error(1)
}

type MockSigningSecretRepository struct {
	mock.Mock
}

func (m *MockSigningSecretRepository) Create(ctx context.Context, secret *tenantDomain.SigningSecret) error {
	args := m.Called(ctx, secret)
	return args.Error(0)
}

type MockClientSecretRepository struct {
	mock.Mock
}

func (m *MockClientSecretRepository) Create(ctx context.Context, secret *tenantDomain.ClientSecret) error {
	args := m.Called(ctx, secret)
	return args.Error(0)
}

// identityEnvelope treats ciphertext as plaintext so tests can assert on the
// stored key material directly.
type identityEnvelope struct{}

func (identityEnvelope) CreateDataKey(context.Context) (*cryptoDomain.DataKey, error) {
	return &cryptoDomain.DataKey{ID: uuid.Must(uuid.NewV7())}, nil
}

func (identityEnvelope) EncryptWithDataKey(_ context.Context, _ uuid.UUID, plaintext []byte) ([]byte, []byte, error) {
	return plaintext, []byte("nonce"), nil
}

func (identityEnvelope) DecryptWithDataKey(_ context.Context, _ uuid.UUID, ciphertext, _ []byte) ([]byte, error) {
	return ciphertext, nil
}
