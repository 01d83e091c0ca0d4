package domain

import (
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
)

// DeniedReason classifies a failed verification. Verification outcomes are
// typed results, not errors: callers branch on the reason.
type DeniedReason string

const (
	// ReasonBadJWT means the token is not structurally a JWT.
	ReasonBadJWT DeniedReason = "BAD_JWT"

	// ReasonInvalidClient means the subject could not be resolved to a
	// usable client/workspace/api/key chain. Internal inconsistencies are
	// deliberately reported the same way as unknown clients.
	ReasonInvalidClient DeniedReason = "INVALID_CLIENT"

	// ReasonMissingScopes means the token's scope grant does not satisfy the
	// requested scopes.
	ReasonMissingScopes DeniedReason = "MISSING_SCOPES"

	// ReasonInvalidSignature means no usable key verified the signature.
	ReasonInvalidSignature DeniedReason = "INVALID_SIGNATURE"

	// ReasonExpired means the exp claim has passed.
	ReasonExpired DeniedReason = "EXPIRED"

	// ReasonSecretExpired means the issuing client secret expired after the
	// token was minted.
	ReasonSecretExpired DeniedReason = "SECRET_EXPIRED"

	// ReasonVersionMismatch means the client rotated its secret after the
	// token was issued.
	ReasonVersionMismatch DeniedReason = "VERSION_MISMATCH"

	// ReasonRateLimitExceeded means the client's token bucket is empty.
	ReasonRateLimitExceeded DeniedReason = "RATELIMIT_EXCEEDED"
)

// VerifyResult is the terminal outcome of a verification.
type VerifyResult struct {
	Valid  bool
	Reason DeniedReason
	Client *tenantDomain.Client
	Claims *Claims
}

// Denied builds a failed VerifyResult.
func Denied(reason DeniedReason) VerifyResult {
	return VerifyResult{Valid: false, Reason: reason}
}

// Verified builds a successful VerifyResult.
func Verified(client *tenantDomain.Client, claims *Claims) VerifyResult {
	return VerifyResult{Valid: true, Client: client, Claims: claims}
}
