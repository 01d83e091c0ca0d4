package service

import "github.com/keygateio/keygate/internal/errors"

var (
	// ErrMalformedToken indicates the token is not three base64url JSON segments.
	ErrMalformedToken = errors.New("malformed token")

	// ErrTokenEncoding indicates header or claims could not be serialized.
	ErrTokenEncoding = errors.New("failed to encode token")

	// ErrTokenSigning indicates the signing primitive rejected the key.
	ErrTokenSigning = errors.New("failed to sign token")

	// ErrUnsupportedSigningAlg indicates an algorithm other than HS256/RS256.
	ErrUnsupportedSigningAlg = errors.New("unsupported signing algorithm")

	// ErrInvalidKeyMaterial indicates key bytes that could not be imported.
	ErrInvalidKeyMaterial = errors.New("invalid key material")

	// ErrJWKSNotFound indicates the JWKS object is missing from storage.
	ErrJWKSNotFound = errors.Wrap(errors.ErrNotFound, "jwks not found")
)
