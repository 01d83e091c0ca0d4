// Package domain defines the core crypto domain entities and types.
package domain

// Algorithm represents an AEAD algorithm used for envelope encryption.
type Algorithm string

const (
	// AlgorithmAESGCM is AES-256-GCM, the default. Hardware accelerated on
	// most server CPUs.
	AlgorithmAESGCM Algorithm = "aes-gcm"

	// AlgorithmChaCha20 is ChaCha20-Poly1305, preferred on platforms without
	// AES hardware acceleration.
	AlgorithmChaCha20 Algorithm = "chacha20-poly1305"
)

// KeySize is the size in bytes of data keys and HMAC signing keys.
const KeySize = 32
