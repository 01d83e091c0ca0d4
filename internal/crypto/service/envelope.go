package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/keygateio/keygate/internal/crypto/domain"
)

// EnvelopeService implements the Envelope interface for envelope encryption.
//
// Secrets are encrypted under per-workspace data keys, and each data key is
// wrapped by the master key held in the external KMS. Only the wrapped form
// of a data key is persisted; plaintext key material is recovered by
// unwrapping through the KMS keeper and then cached in process memory, so a
// busy workspace pays the KMS round-trip once per process lifetime.
type EnvelopeService struct {
	keeper      cryptoDomain.KMSKeeper
	aeadManager AEADManager
	repo        DataKeyRepository
	algorithm   cryptoDomain.Algorithm

	mu        sync.RWMutex
	unwrapped map[uuid.UUID]*cryptoDomain.DataKey
}

// NewEnvelope creates a new EnvelopeService instance.
func NewEnvelope(
	keeper cryptoDomain.KMSKeeper,
	aeadManager AEADManager,
	repo DataKeyRepository,
	algorithm cryptoDomain.Algorithm,
) *EnvelopeService {
	return &EnvelopeService{
		keeper:      keeper,
		aeadManager: aeadManager,
		repo:        repo,
		algorithm:   algorithm,
		unwrapped:   make(map[uuid.UUID]*cryptoDomain.DataKey),
	}
}

// CreateDataKey generates a fresh 32-byte data key, wraps it through the KMS
// keeper and persists the wrapped form. The returned DataKey carries the
// plaintext key material, which is also cached for later use.
func (e *EnvelopeService) CreateDataKey(ctx context.Context) (*cryptoDomain.DataKey, error) {
	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate data key: %w", err)
	}

	wrapped, err := e.keeper.Encrypt(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap data key: %w", err)
	}

	dataKey := &cryptoDomain.DataKey{
		ID:         uuid.Must(uuid.NewV7()),
		Algorithm:  e.algorithm,
		WrappedKey: wrapped,
		CreatedAt:  time.Now().UTC(),
		Key:        key,
	}

	if err := e.repo.Create(ctx, dataKey); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.unwrapped[dataKey.ID] = dataKey
	e.mu.Unlock()

	return dataKey, nil
}

// EncryptWithDataKey encrypts plaintext under the identified data key.
func (e *EnvelopeService) EncryptWithDataKey(
	ctx context.Context,
	dataKeyID uuid.UUID,
	plaintext []byte,
) (ciphertext, nonce []byte, err error) {
	dataKey, err := e.unwrap(ctx, dataKeyID)
	if err != nil {
		return nil, nil, err
	}

	aead, err := e.aeadManager.CreateCipher(dataKey.Key, dataKey.Algorithm)
	if err != nil {
		return nil, nil, err
	}

	return aead.Encrypt(plaintext, nil)
}

// DecryptWithDataKey decrypts ciphertext produced by EncryptWithDataKey.
func (e *EnvelopeService) DecryptWithDataKey(
	ctx context.Context,
	dataKeyID uuid.UUID,
	ciphertext, nonce []byte,
) ([]byte, error) {
	dataKey, err := e.unwrap(ctx, dataKeyID)
	if err != nil {
		return nil, err
	}

	aead, err := e.aeadManager.CreateCipher(dataKey.Key, dataKey.Algorithm)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Decrypt(ciphertext, nonce, nil)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	return plaintext, nil
}

// unwrap loads a data key and recovers its plaintext key material, consulting
// the in-process cache before hitting the repository and the KMS.
func (e *EnvelopeService) unwrap(ctx context.Context, dataKeyID uuid.UUID) (*cryptoDomain.DataKey, error) {
	e.mu.RLock()
	cached, ok := e.unwrapped[dataKeyID]
	e.mu.RUnlock()
	if ok {
		return cached, nil
	}

	dataKey, err := e.repo.Get(ctx, dataKeyID)
	if err != nil {
		return nil, err
	}

	key, err := e.keeper.Decrypt(ctx, dataKey.WrappedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap data key: %w", err)
	}
	dataKey.Key = key

	e.mu.Lock()
	e.unwrapped[dataKeyID] = dataKey
	e.mu.Unlock()

	return dataKey, nil
}
