package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	apperrors "github.com/keygateio/keygate/internal/errors"
)

// clientSecretBytes is the entropy of generated client secrets.
const clientSecretBytes = 32

// SecretService generates and hashes client secrets. Only the hex SHA-256
// hash is ever persisted; the plaintext is returned once at creation or
// rotation time.
type SecretService interface {
	// Generate returns a fresh random secret and its hash.
	Generate() (plaintext, hash string, err error)

	// Hash returns the hex SHA-256 of a provided secret, for comparison
	// against stored hashes.
	Hash(plaintext string) string
}

type secretService struct{}

// NewSecretService creates a new SecretService.
func NewSecretService() SecretService {
	return &secretService{}
}

func (s *secretService) Generate() (string, string, error) {
	raw := make([]byte, clientSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate client secret")
	}
	plaintext := base64.RawURLEncoding.EncodeToString(raw)
	return plaintext, s.Hash(plaintext), nil
}

func (s *secretService) Hash(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
