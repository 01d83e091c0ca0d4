package service

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
)

// ParseRSAPrivateKeyPEM imports a PEM-encoded RSA private key (PKCS1 or PKCS8).
func ParseRSAPrivateKeyPEM(pemBytes []byte) (*rsa.PrivateKey, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return nil, ErrInvalidKeyMaterial
	}
	return key, nil
}

// ParseRSAPublicKeyPEM imports a PEM-encoded RSA public key (SPKI or PKCS1).
func ParseRSAPublicKeyPEM(pemBytes []byte) (*rsa.PublicKey, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM(pemBytes)
	if err != nil {
		return nil, ErrInvalidKeyMaterial
	}
	return key, nil
}

// MarshalRSAPrivateKeyPEM encodes a private key as PKCS8 PEM. This is the
// plaintext form stored (envelope-encrypted) for rsa256 signing secrets.
func MarshalRSAPrivateKeyPEM(key *rsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, ErrInvalidKeyMaterial
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// GenerateRSAKey generates a fresh RSA-2048 key pair for rsa256 signing
// secrets.
func GenerateRSAKey() (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, 2048)
}

// ImportJWK parses a single JSON Web Key.
func ImportJWK(data []byte) (*jose.JSONWebKey, error) {
	var key jose.JSONWebKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, ErrInvalidKeyMaterial
	}
	if !key.Valid() {
		return nil, ErrInvalidKeyMaterial
	}
	return &key, nil
}

// PublicJWK wraps an RSA public key as a signing JWK tagged with the signing
// secret id, the form published in JWKS documents.
func PublicJWK(publicKey *rsa.PublicKey, kid string) jose.JSONWebKey {
	return jose.JSONWebKey{
		Key:       publicKey,
		KeyID:     kid,
		Algorithm: "RS256",
		Use:       "sig",
	}
}
