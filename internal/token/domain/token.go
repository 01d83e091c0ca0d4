// Package domain defines the token wire format and verification outcomes.
//
// Tokens are compact JWTs: three base64url segments joined by dots. The
// header always carries typ, kid, and alg; the payload carries the claims
// below. The kid is the signing secret id, which is how verifiers pick the
// right key during a rotation overlap window.
package domain

import "time"

// Token header and signature algorithm names.
const (
	TokenType = "JWT"

	// AlgHS256 is HMAC-SHA256 over the signing string.
	AlgHS256 = "HS256"

	// AlgRS256 is RSASSA-PKCS1-v1.5 with SHA-256.
	AlgRS256 = "RS256"
)

// Header is the decoded JWT header.
type Header struct {
	Type      string `json:"typ"`
	KeyID     string `json:"kid"`
	Algorithm string `json:"alg"`
}

// Claims is the decoded JWT payload.
//
// Version mirrors the client's version at issue time; a mismatch against the
// live client revokes the token without touching it individually.
// SecretExpiresAt is set when the authenticating client secret had a
// scheduled expiry, so tokens minted from a dying secret die with it.
type Claims struct {
	Subject         string            `json:"sub"`
	IssuedAt        int64             `json:"iat"`
	ExpiresAt       int64             `json:"exp"`
	Version         int64             `json:"version"`
	SecretExpiresAt *int64            `json:"secret_expires_at,omitempty"`
	Scope           string            `json:"scope,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// Expired reports whether the exp claim has passed.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != 0 && c.ExpiresAt <= now.Unix()
}

// SecretExpired reports whether the secret_expires_at claim has passed.
func (c *Claims) SecretExpired(now time.Time) bool {
	return c.SecretExpiresAt != nil && *c.SecretExpiresAt <= now.Unix()
}
