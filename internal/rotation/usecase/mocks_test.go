package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/keygateio/keygate/internal/crypto/domain"
	outboxDomain "github.com/keygateio/keygate/internal/outbox/domain"
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

func (m *MockWorkspaceRepository) Get(ctx context.Context, workspaceID uuid.UUID) (*tenantDomain.Workspace, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.Workspace), args.Error(1)
}

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

func (m *MockAPIRepository) OpenRotation(ctx context.Context, apiID, expectedCurrentID, nextID uuid.UUID) error {
	args := m.Called(ctx, apiID, expectedCurrentID, nextID)
	return args.Error(0)
}

func (m *MockAPIRepository) FinalizeRotation(ctx context.Context, apiID, expectedCurrentID, newCurrentID uuid.UUID) error {
	args := m.Called(ctx, apiID, expectedCurrentID, newCurrentID)
	return args.Error(0)
}

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

func (m *MockClientRepository) OpenSecretRotation(ctx context.Context, clientID, expectedCurrentID, nextID uuid.UUID) error {
	args := m.Called(ctx, clientID, expectedCurrentID, nextID)
	return args.Error(0)
}

func (m *MockClientRepository) FinalizeSecretRotation(ctx context.Context, clientID, expectedCurrentID, newCurrentID uuid.UUID) error {
	args := m.Called(ctx, clientID, expectedCurrentID, newCurrentID)
	return args.Error(0)
}

type MockSigningSecretRepository struct {
	mock.Mock
}

func (m *MockSigningSecretRepository) Create(ctx context.Context, secret *tenantDomain.SigningSecret) error {
	args := m.Called(ctx, secret)
	return args.Error(0)
}

func (m *MockSigningSecretRepository) Get(ctx context.Context, secretID uuid.UUID) (*tenantDomain.SigningSecret, error) {
	args := m.Called(ctx, secretID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.SigningSecret), args.Error(1)
}

func (m *MockSigningSecretRepository) SetExpiry(ctx context.Context, secretID uuid.UUID, expiresAt time.Time) error {
	args := m.Called(ctx, secretID, expiresAt)
	return args.Error(0)
}

func (m *MockSigningSecretRepository) Revoke(ctx context.Context, secretID uuid.UUID, now time.Time) error {
	args := m.Called(ctx, secretID, now)
	return args.Error(0)
}

type MockClientSecretRepository struct {
	mock.Mock
}

func (m *MockClientSecretRepository) Create(ctx context.Context, secret *tenantDomain.ClientSecret) error {
	args := m.Called(ctx, secret)
	return args.Error(0)
}

func (m *MockClientSecretRepository) SetExpiry(ctx context.Context, secretID uuid.UUID, expiresAt time.Time) error {
	args := m.Called(ctx, secretID, expiresAt)
	return args.Error(0)
}

func (m *MockClientSecretRepository) Revoke(ctx context.Context, secretID uuid.UUID, now time.Time) error {
	args := m.Called(ctx, secretID, now)
	return args.Error(0)
}

type MockOutboxEventRepository struct {
	mock.Mock
}

func (m *MockOutboxEventRepository) Create(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockIdempotencyKeyRepository struct {
	mock.Mock
}

func (m *MockIdempotencyKeyRepository) Exists(ctx context.Context, key string, now time.Time) (bool, error) {
	args := m.Called(ctx, key, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyKeyRepository) Create(ctx context.Context, idempotencyKey *tenantDomain.IdempotencyKey) error {
	args := m.Called(ctx, idempotencyKey)
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
