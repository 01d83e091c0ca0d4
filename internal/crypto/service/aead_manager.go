package service

import (
	cryptoDomain "github.com/keygateio/keygate/internal/crypto/domain"
)

// aeadManager implements AEADManager, creating cipher instances by algorithm.
type aeadManager struct{}

// NewAEADManager creates a new AEADManager instance.
func NewAEADManager() AEADManager {
	return &aeadManager{}
}

// CreateCipher creates an AEAD cipher instance for the specified algorithm.
func (m *aeadManager) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	switch alg {
	case cryptoDomain.AlgorithmAESGCM:
		return NewAESGCM(key)
	case cryptoDomain.AlgorithmChaCha20:
		return NewChaCha20Poly1305(key)
	default:
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
}
