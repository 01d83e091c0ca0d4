package domain

import (
	"time"

	"github.com/google/uuid"
)

// SigningAlgorithm identifies the token signing scheme of an API.
// Fixed at creation time; changing it would invalidate all outstanding tokens.
type SigningAlgorithm string

const (
	// AlgorithmHS256 signs tokens with HMAC-SHA256 using a shared 32-byte key.
	AlgorithmHS256 SigningAlgorithm = "hsa256"

	// AlgorithmRS256 signs tokens with RSASSA-PKCS1-v1.5/SHA-256 using an
	// RSA-2048 key pair. Public keys are published as a JWKS document.
	AlgorithmRS256 SigningAlgorithm = "rsa256"
)

// API is a token audience within a workspace. Tokens are issued and verified
// per API, signed with the API's signing secret.
//
// CurrentSigningSecretID is always set. NextSigningSecretID is set only while
// a signing-secret rotation window is open; during that window tokens signed
// by either secret verify, and newly issued tokens prefer the next secret.
type API struct {
	ID                     uuid.UUID
	WorkspaceID            uuid.UUID
	Name                   string
	Algorithm              SigningAlgorithm
	TokenExpirationSeconds int64
	CurrentSigningSecretID uuid.UUID
	NextSigningSecretID    *uuid.UUID
	Scopes                 []string // scopes clients of this API may be granted
	CreatedAt              time.Time
}

// RotationOpen reports whether a signing-secret rotation window is in
// progress for this API.
func (a *API) RotationOpen() bool {
	return a.NextSigningSecretID != nil
}

// SigningSecretIDForIssuance returns the signing secret new tokens should be
// signed with: the next secret when a rotation window is open, otherwise the
// current one.
func (a *API) SigningSecretIDForIssuance() uuid.UUID {
	if a.NextSigningSecretID != nil {
		return *a.NextSigningSecretID
	}
	return a.CurrentSigningSecretID
}
