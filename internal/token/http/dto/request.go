// Package dto provides data transfer objects for the token endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
	customValidation "github.com/keygateio/keygate/internal/validation"
)

// IssueTokenRequest contains the client credentials exchanged for a token.
type IssueTokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// Validate checks if the issue token request is valid.
func (r *IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ClientID,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 64),
		),
		validation.Field(&r.ClientSecret,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// VerifyTokenRequest contains a token and the scope requirements to check it
// against.
type VerifyTokenRequest struct {
	Token     string   `json:"token"`
	Scopes    []string `json:"scopes,omitempty"`
	ScopeMode string   `json:"scope_mode,omitempty"`
}

// Validate checks if the verify token request is valid.
func (r *VerifyTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.Scopes,
			validation.Each(customValidation.ScopeName),
		),
		validation.Field(&r.ScopeMode,
			validation.In(string(tenantDomain.ScopeModeOne), string(tenantDomain.ScopeModeAll)),
		),
	)
}

// ScopeModeOrDefault returns the requested scope mode, defaulting to "one".
func (r *VerifyTokenRequest) ScopeModeOrDefault() tenantDomain.ScopeMode {
	if r.ScopeMode == string(tenantDomain.ScopeModeAll) {
		return tenantDomain.ScopeModeAll
	}
	return tenantDomain.ScopeModeOne
}
