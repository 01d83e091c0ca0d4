package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/keygateio/keygate/internal/errors"

	cryptoDomain "github.com/keygateio/keygate/internal/crypto/domain"
)

// generateLocalSecretsURI generates a base64key:// URI for testing.
func generateLocalSecretsURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}

// memoryDataKeyRepository is an in-memory DataKeyRepository for tests.
type memoryDataKeyRepository struct {
	keys map[uuid.UUID]cryptoDomain.DataKey
	gets int
}

func newMemoryDataKeyRepository() *memoryDataKeyRepository {
	return &memoryDataKeyRepository{keys: make(map[uuid.UUID]cryptoDomain.DataKey)}
}

func (r *memoryDataKeyRepository) Create(_ context.Context, dataKey *cryptoDomain.DataKey) error {
	stored := *dataKey
	stored.Key = nil
	r.keys[dataKey.ID] = stored
	return nil
}

func (r *memoryDataKeyRepository) Get(_ context.Context, dataKeyID uuid.UUID) (*cryptoDomain.DataKey, error) {
	r.gets++
	stored, ok := r.keys[dataKeyID]
	if !ok {
		return nil, appErrors.Wrap(appErrors.ErrNotFound, cryptoDomain.ErrDataKeyNotFound.Error())
	}
	return &stored, nil
}

func newTestEnvelope(t *testing.T) (*EnvelopeService, *memoryDataKeyRepository) {
	t.Helper()
	ctx := context.Background()

	keeper, err := NewKMSService().OpenKeeper(ctx, generateLocalSecretsURI(t))
	require.NoError(t, err)

	repo := newMemoryDataKeyRepository()
	envelope := NewEnvelope(keeper, NewAEADManager(), repo, cryptoDomain.AlgorithmAESGCM)
	return envelope, repo
}

func TestEnvelopeService_CreateDataKey(t *testing.T) {
	ctx := context.Background()
	envelope, repo := newTestEnvelope(t)

	dataKey, err := envelope.CreateDataKey(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, dataKey.ID)
	assert.Equal(t, cryptoDomain.AlgorithmAESGCM, dataKey.Algorithm)
	assert.Len(t, dataKey.Key, cryptoDomain.KeySize)
	assert.NotEmpty(t, dataKey.WrappedKey)
	assert.NotEqual(t, dataKey.Key, dataKey.WrappedKey)
	assert.False(t, dataKey.CreatedAt.IsZero())

	// Persisted form never carries plaintext key material.
	stored := repo.keys[dataKey.ID]
	assert.Nil(t, stored.Key)
	assert.Equal(t, dataKey.WrappedKey, stored.WrappedKey)
}

func TestEnvelopeService_EncryptDecryptRoundTrip(t *testing.T) {
	ctx := context.Background()
	envelope, _ := newTestEnvelope(t)

	dataKey, err := envelope.CreateDataKey(ctx)
	require.NoError(t, err)

	plaintext := []byte("sensitive signing key material")

	ciphertext, nonce, err := envelope.EncryptWithDataKey(ctx, dataKey.ID, plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := envelope.DecryptWithDataKey(ctx, dataKey.ID, ciphertext, nonce)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEnvelopeService_DecryptAfterRestart(t *testing.T) {
	// A fresh envelope with an empty in-process cache must recover the data
	// key by unwrapping the persisted form through the KMS keeper.
	ctx := context.Background()

	keeper, err := NewKMSService().OpenKeeper(ctx, generateLocalSecretsURI(t))
	require.NoError(t, err)
	repo := newMemoryDataKeyRepository()

	first := NewEnvelope(keeper, NewAEADManager(), repo, cryptoDomain.AlgorithmAESGCM)
	dataKey, err := first.CreateDataKey(ctx)
	require.NoError(t, err)

	ciphertext, nonce, err := first.EncryptWithDataKey(ctx, dataKey.ID, []byte("payload"))
	require.NoError(t, err)

	second := NewEnvelope(keeper, NewAEADManager(), repo, cryptoDomain.AlgorithmAESGCM)
	decrypted, err := second.DecryptWithDataKey(ctx, dataKey.ID, ciphertext, nonce)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), decrypted)
}

func TestEnvelopeService_PlaintextKeyCaching(t *testing.T) {
	ctx := context.Background()

	keeper, err := NewKMSService().OpenKeeper(ctx, generateLocalSecretsURI(t))
	require.NoError(t, err)
	repo := newMemoryDataKeyRepository()

	envelope := NewEnvelope(keeper, NewAEADManager(), repo, cryptoDomain.AlgorithmAESGCM)
	dataKey, err := envelope.CreateDataKey(ctx)
	require.NoError(t, err)

	for range 3 {
		_, _, err := envelope.EncryptWithDataKey(ctx, dataKey.ID, []byte("payload"))
		require.NoError(t, err)
	}

	// CreateDataKey primes the cache, so the repository is never consulted.
	assert.Equal(t, 0, repo.gets)
}

func TestEnvelopeService_DecryptTamperedCiphertext(t *testing.T) {
	ctx := context.Background()
	envelope, _ := newTestEnvelope(t)

	dataKey, err := envelope.CreateDataKey(ctx)
	require.NoError(t, err)

	ciphertext, nonce, err := envelope.EncryptWithDataKey(ctx, dataKey.ID, []byte("payload"))
	require.NoError(t, err)

	ciphertext[0] ^= 0xff

	_, err = envelope.DecryptWithDataKey(ctx, dataKey.ID, ciphertext, nonce)
	assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
}

func TestEnvelopeService_UnknownDataKey(t *testing.T) {
	ctx := context.Background()
	envelope, _ := newTestEnvelope(t)

	_, _, err := envelope.EncryptWithDataKey(ctx, uuid.Must(uuid.NewV7()), []byte("payload"))
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAEADManager_CreateCipher(t *testing.T) {
	manager := NewAEADManager()
	key := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	t.Run("AES-GCM", func(t *testing.T) {
		aead, err := manager.CreateCipher(key, cryptoDomain.AlgorithmAESGCM)
		require.NoError(t, err)
		assert.IsType(t, &AESGCMCipher{}, aead)
	})

	t.Run("ChaCha20-Poly1305", func(t *testing.T) {
		aead, err := manager.CreateCipher(key, cryptoDomain.AlgorithmChaCha20)
		require.NoError(t, err)
		assert.IsType(t, &ChaCha20Poly1305Cipher{}, aead)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		_, err := manager.CreateCipher(key, cryptoDomain.Algorithm("des"))
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
	})
}
