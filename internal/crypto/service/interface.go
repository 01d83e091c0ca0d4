// Package service provides cryptographic services for envelope encryption.
// Implements AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305) and the
// per-workspace data-key layer used to protect signing secrets at rest.
package service

import (
	"context"

	"github.com/google/uuid"

	cryptoDomain "github.com/keygateio/keygate/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// DataKeyRepository persists wrapped data keys.
type DataKeyRepository interface {
	Create(ctx context.Context, dataKey *cryptoDomain.DataKey) error
	Get(ctx context.Context, dataKeyID uuid.UUID) (*cryptoDomain.DataKey, error)
}

// Envelope encrypts and decrypts small secrets under per-workspace data keys.
// The data key itself is wrapped by the KMS master key; plaintext data keys
// are cached in process memory after the first unwrap.
type Envelope interface {
	// CreateDataKey generates a fresh data key, wraps it through the KMS
	// keeper and persists the wrapped form.
	CreateDataKey(ctx context.Context) (*cryptoDomain.DataKey, error)

	// EncryptWithDataKey encrypts plaintext under the identified data key.
	EncryptWithDataKey(ctx context.Context, dataKeyID uuid.UUID, plaintext []byte) (ciphertext, nonce []byte, err error)

	// DecryptWithDataKey decrypts ciphertext produced by EncryptWithDataKey.
	DecryptWithDataKey(ctx context.Context, dataKeyID uuid.UUID, ciphertext, nonce []byte) ([]byte, error)
}
