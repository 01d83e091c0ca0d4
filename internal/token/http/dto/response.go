package dto

import (
	tokenDomain "github.com/keygateio/keygate/internal/token/domain"
)

// IssueTokenResponse is returned on successful token issuance.
type IssueTokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
	Scope     string `json:"scope,omitempty"`
}

// VerifyTokenResponse reports a verification outcome. Verification failures
// are not HTTP errors: the endpoint answers 200 with valid=false and the
// denial reason.
type VerifyTokenResponse struct {
	Valid       bool     `json:"valid"`
	Reason      string   `json:"reason,omitempty"`
	ClientID    string   `json:"client_id,omitempty"`
	WorkspaceID string   `json:"workspace_id,omitempty"`
	Scopes      []string `json:"scopes,omitempty"`
}

// NewVerifyTokenResponse maps a verification result to its wire form.
func NewVerifyTokenResponse(result tokenDomain.VerifyResult) VerifyTokenResponse {
	if !result.Valid {
		return VerifyTokenResponse{
			Valid:  false,
			Reason: string(result.Reason),
		}
	}
	return VerifyTokenResponse{
		Valid:       true,
		ClientID:    result.Client.ID.String(),
		WorkspaceID: result.Client.WorkspaceID.String(),
		Scopes:      result.Client.Scopes,
	}
}
