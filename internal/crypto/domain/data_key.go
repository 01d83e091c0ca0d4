package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DataKey is a per-workspace encryption key. Only the wrapped form is
// persisted; the plaintext key exists in process memory while in use and is
// recovered by unwrapping through the KMS master key.
type DataKey struct {
	ID         uuid.UUID
	Algorithm  Algorithm
	WrappedKey []byte
	CreatedAt  time.Time

	// Key holds the plaintext key material when known. Never persisted.
	Key []byte
}

// KMSKeeper wraps and unwraps small secrets under a master key held in an
// external KMS. *secrets.Keeper from gocloud.dev implements this.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}
