// Package dto provides data transfer objects for the rotation endpoints.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"
)

// RotateSecretRequest optionally overrides the overlap window for a rotation.
type RotateSecretRequest struct {
	ExpiresInSeconds int64 `json:"expires_in_seconds,omitempty"`
}

// Validate checks if the rotate secret request is valid.
func (r *RotateSecretRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ExpiresInSeconds,
			validation.Min(int64(0)),
		),
	)
}

// ExpiresIn converts the requested overlap to a duration. Zero means the
// server default.
func (r *RotateSecretRequest) ExpiresIn() time.Duration {
	return time.Duration(r.ExpiresInSeconds) * time.Second
}

// RotateSigningSecretResponse describes the freshly opened signing rotation
// window: the new secret signs from now on, the old one keeps verifying until
// the scheduled expiry finalizes the window.
type RotateSigningSecretResponse struct {
	NewSigningSecretID string `json:"new_signing_secret_id"`
}

// RotateClientSecretResponse contains the result of rotating a client secret.
// SECURITY: The secret is only returned once and must be saved securely.
type RotateClientSecretResponse struct {
	SecretID string `json:"secret_id"`
	Secret   string `json:"secret"` //nolint:gosec // returned once on rotation
}
