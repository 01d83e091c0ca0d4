package domain

import (
	"crypto/subtle"
	"time"

	"github.com/google/uuid"
)

// ClientSecret stores the SHA-256 hash of a client's credential. The
// plaintext is returned exactly once, at creation or rotation time, and is
// never persisted.
type ClientSecret struct {
	ID         uuid.UUID
	ClientID   uuid.UUID
	SecretHash string // hex-encoded SHA-256 of the plaintext secret
	Status     SecretStatus
	ExpiresAt  *time.Time
	CreatedAt  time.Time
	DeletedAt  *time.Time
}

// Authenticates reports whether the stored hash matches the provided one and
// the secret is still valid at the given instant. Unlike signing secrets, an
// expired client secret stops authenticating immediately, before
// finalization revokes it.
func (s *ClientSecret) Authenticates(providedHash string, now time.Time) bool {
	if s.Status != SecretStatusActive || s.DeletedAt != nil {
		return false
	}
	if s.ExpiresAt != nil && !s.ExpiresAt.After(now) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.SecretHash), []byte(providedHash)) == 1
}
