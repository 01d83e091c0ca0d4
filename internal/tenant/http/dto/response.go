package dto

import (
	"time"

	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
)

// WorkspaceResponse represents a workspace in API responses.
type WorkspaceResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Plan              string    `json:"plan"`
	MonthlyTokenQuota int64     `json:"monthly_token_quota"`
	CreatedAt         time.Time `json:"created_at"`
}

// MapWorkspaceToResponse converts a domain workspace to an API response.
func MapWorkspaceToResponse(workspace *tenantDomain.Workspace) WorkspaceResponse {
	return WorkspaceResponse{
		ID:                workspace.ID.String(),
		Name:              workspace.Name,
		Plan:              string(workspace.Plan),
		MonthlyTokenQuota: workspace.MonthlyTokenQuota,
		CreatedAt:         workspace.CreatedAt,
	}
}

// ListWorkspacesResponse represents a paginated list of workspaces.
type ListWorkspacesResponse struct {
	Data []WorkspaceResponse `json:"data"`
}

// MapWorkspacesToListResponse converts a slice of domain workspaces to a list API response.
func MapWorkspacesToListResponse(workspaces []*tenantDomain.Workspace) ListWorkspacesResponse {
	responses := make([]WorkspaceResponse, 0, len(workspaces))
	for _, workspace := range workspaces {
		responses = append(responses, MapWorkspaceToResponse(workspace))
	}
	return ListWorkspacesResponse{Data: responses}
}

// APIResponse represents an API in responses. The next signing secret id is
// present only while a rotation window is open.
type APIResponse struct {
	ID                     string    `json:"id"`
	WorkspaceID            string    `json:"workspace_id"`
	Name                   string    `json:"name"`
	Algorithm              string    `json:"algorithm"`
	TokenExpirationSeconds int64     `json:"token_expiration_seconds"`
	CurrentSigningSecretID string    `json:"current_signing_secret_id"`
	NextSigningSecretID    string    `json:"next_signing_secret_id,omitempty"`
	Scopes                 []string  `json:"scopes,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
}

// MapAPIToResponse converts a domain API to an API response.
func MapAPIToResponse(api *tenantDomain.API) APIResponse {
	response := APIResponse{
		ID:                     api.ID.String(),
		WorkspaceID:            api.WorkspaceID.String(),
		Name:                   api.Name,
		Algorithm:              string(api.Algorithm),
		TokenExpirationSeconds: api.TokenExpirationSeconds,
		CurrentSigningSecretID: api.CurrentSigningSecretID.String(),
		Scopes:                 api.Scopes,
		CreatedAt:              api.CreatedAt,
	}
	if api.NextSigningSecretID != nil {
		response.NextSigningSecretID = api.NextSigningSecretID.String()
	}
	return response
}

// ListAPIsResponse represents a paginated list of APIs.
type ListAPIsResponse struct {
	Data []APIResponse `json:"data"`
}

// MapAPIsToListResponse converts a slice of domain APIs to a list API response.
func MapAPIsToListResponse(apis []*tenantDomain.API) ListAPIsResponse {
	responses := make([]APIResponse, 0, len(apis))
	for _, api := range apis {
		responses = append(responses, MapAPIToResponse(api))
	}
	return ListAPIsResponse{Data: responses}
}

// ClientResponse represents a client in API responses (excludes secret).
type ClientResponse struct {
	ID               string            `json:"id"`
	APIID            string            `json:"api_id"`
	WorkspaceID      string            `json:"workspace_id"`
	ForWorkspaceID   string            `json:"for_workspace_id,omitempty"`
	Name             string            `json:"name"`
	Version          int64             `json:"version"`
	Scopes           []string          `json:"scopes,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	BucketSize       *int64            `json:"bucket_size,omitempty"`
	RefillAmount     *int64            `json:"refill_amount,omitempty"`
	RefillIntervalMS *int64            `json:"refill_interval_ms,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

// MapClientToResponse converts a domain client to an API response.
func MapClientToResponse(client *tenantDomain.Client) ClientResponse {
	response := ClientResponse{
		ID:               client.ID.String(),
		APIID:            client.APIID.String(),
		WorkspaceID:      client.WorkspaceID.String(),
		Name:             client.Name,
		Version:          client.Version,
		Scopes:           client.Scopes,
		Metadata:         client.Metadata,
		BucketSize:       client.BucketSize,
		RefillAmount:     client.RefillAmount,
		RefillIntervalMS: client.RefillIntervalMS,
		CreatedAt:        client.CreatedAt,
	}
	if client.ForWorkspaceID != nil {
		response.ForWorkspaceID = client.ForWorkspaceID.String()
	}
	return response
}

// ListClientsResponse represents a paginated list of clients.
type ListClientsResponse struct {
	Data []ClientResponse `json:"data"`
}

// MapClientsToListResponse converts a slice of domain clients to a list API response.
func MapClientsToListResponse(clients []*tenantDomain.Client) ListClientsResponse {
	responses := make([]ClientResponse, 0, len(clients))
	for _, client := range clients {
		responses = append(responses, MapClientToResponse(client))
	}
	return ListClientsResponse{Data: responses}
}

// CreateClientResponse contains the result of provisioning a client.
// SECURITY: The secret is only returned once and must be saved securely.
type CreateClientResponse struct {
	Client ClientResponse `json:"client"`
	Secret string         `json:"secret"` //nolint:gosec // returned once on creation
}
