package domain

import "errors"

var (
	// ErrUnsupportedAlgorithm indicates an unknown AEAD algorithm.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrDecryptionFailed indicates decryption or authentication failure.
	// Deliberately generic: callers never learn whether the key, nonce, or
	// ciphertext was wrong.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrDataKeyNotFound indicates the referenced data key row is missing.
	ErrDataKeyNotFound = errors.New("data key not found")
)
