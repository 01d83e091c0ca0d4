package domain

import (
	"time"

	"github.com/google/uuid"
)

// SecretStatus is the lifecycle state of a signing secret or client secret.
type SecretStatus string

const (
	// SecretStatusActive marks a secret usable for signing or authentication.
	SecretStatusActive SecretStatus = "active"

	// SecretStatusRevoked marks a secret retired by rotation finalization.
	// Revoked secrets are kept for audit; they never verify or authenticate.
	SecretStatusRevoked SecretStatus = "revoked"
)

// SigningSecret holds an API's signing key material, envelope-encrypted with
// the workspace data key. For hsa256 the plaintext is the raw 32-byte HMAC
// key; for rsa256 it is the PEM-encoded RSA private key.
//
// Secrets are soft-revoked only: rotation finalization sets Status and
// DeletedAt but never deletes the row.
type SigningSecret struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Algorithm   SigningAlgorithm
	Secret      []byte // envelope-encrypted key material
	IV          []byte // AEAD nonce for Secret
	Status      SecretStatus
	ExpiresAt   *time.Time // set when a rotation window opens
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

// Usable reports whether the secret may still sign or verify tokens at the
// given instant. An expiring secret stays usable until finalization revokes
// it; ExpiresAt only schedules that revocation.
func (s *SigningSecret) Usable() bool {
	return s.Status == SecretStatusActive && s.DeletedAt == nil
}
