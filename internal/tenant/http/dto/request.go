// Package dto provides data transfer objects for the management endpoints.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
	customValidation "github.com/keygateio/keygate/internal/validation"
)

// CreateWorkspaceRequest contains the parameters for provisioning a workspace.
type CreateWorkspaceRequest struct {
	Name              string `json:"name"`
	Plan              string `json:"plan,omitempty"`
	MonthlyTokenQuota int64  `json:"monthly_token_quota,omitempty"`
}

// Validate checks if the create workspace request is valid.
func (r *CreateWorkspaceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Plan,
			validation.In(string(tenantDomain.PlanFree), string(tenantDomain.PlanPro)),
		),
		validation.Field(&r.MonthlyTokenQuota,
			validation.Min(int64(0)),
		),
	)
}

// CreateAPIRequest contains the parameters for registering an API under a
// workspace.
type CreateAPIRequest struct {
	WorkspaceID            string   `json:"workspace_id"`
	Name                   string   `json:"name"`
	Algorithm              string   `json:"algorithm"`
	TokenExpirationSeconds int64    `json:"token_expiration_seconds,omitempty"`
	Scopes                 []string `json:"scopes,omitempty"`
}

// Validate checks if the create API request is valid.
func (r *CreateAPIRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.WorkspaceID,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Algorithm,
			validation.Required,
			validation.In(string(tenantDomain.AlgorithmHS256), string(tenantDomain.AlgorithmRS256)),
		),
		validation.Field(&r.TokenExpirationSeconds,
			validation.Min(int64(0)),
		),
		validation.Field(&r.Scopes,
			validation.Each(customValidation.ScopeName),
		),
	)
}

// CreateClientRequest contains the parameters for provisioning a client of an
// API. Setting for_workspace_id marks the client as a root (management)
// client for that workspace.
type CreateClientRequest struct {
	APIID            string            `json:"api_id"`
	Name             string            `json:"name"`
	ForWorkspaceID   string            `json:"for_workspace_id,omitempty"`
	Scopes           []string          `json:"scopes,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	BucketSize       *int64            `json:"bucket_size,omitempty"`
	RefillAmount     *int64            `json:"refill_amount,omitempty"`
	RefillIntervalMS *int64            `json:"refill_interval_ms,omitempty"`
	SecretExpiresAt  *time.Time        `json:"secret_expires_at,omitempty"`
}

// Validate checks if the create client request is valid.
func (r *CreateClientRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.APIID,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Scopes,
			validation.Each(customValidation.ScopeName),
		),
		validation.Field(&r.BucketSize,
			validation.Min(int64(1)),
		),
		validation.Field(&r.RefillAmount,
			validation.Min(int64(1)),
		),
		validation.Field(&r.RefillIntervalMS,
			validation.Min(int64(1)),
		),
	)
}
