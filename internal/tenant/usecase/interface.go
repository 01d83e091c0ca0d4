// Package usecase implements tenant management: provisioning workspaces with
// their data keys, APIs with their initial signing secrets, and clients with
// their initial client secrets.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
)

// WorkspaceRepository defines persistence operations for workspaces.
type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *tenantDomain.Workspace) error
	Get(ctx context.Context, workspaceID uuid.UUID) (*tenantDomain.Workspace, error)
	List(ctx context.Context, limit, offset int) ([]*tenantDomain.Workspace, error)
}

// APIRepository defines persistence operations for APIs.
type APIRepository interface {
	Create(ctx context.Context, api *tenantDomain.API) error
	Get(ctx context.Context, apiID uuid.UUID) (*tenantDomain.API, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]*tenantDomain.API, error)
}

// ClientRepository defines persistence operations for clients.
type ClientRepository interface {
	Create(ctx context.Context, client *tenantDomain.Client) error
	Get(ctx context.Context, clientID uuid.UUID) (*tenantDomain.Client, error)
	ListByAPI(ctx context.Context, apiID uuid.UUID, limit, offset int) ([]*tenantDomain.Client, error)
}

// SigningSecretRepository persists envelope-encrypted signing secrets.
type SigningSecretRepository interface {
	Create(ctx context.Context, secret *tenantDomain.SigningSecret) error
}

// ClientSecretRepository persists hashed client secrets.
type ClientSecretRepository interface {
	Create(ctx context.Context, secret *tenantDomain.ClientSecret) error
}

// CreateWorkspaceInput carries the fields for provisioning a workspace.
type CreateWorkspaceInput struct {
	Name              string
	Plan              tenantDomain.Plan
	MonthlyTokenQuota int64
}

// CreateAPIInput carries the fields for provisioning an API.
type CreateAPIInput struct {
	WorkspaceID            uuid.UUID
	Name                   string
	Algorithm              tenantDomain.SigningAlgorithm
	TokenExpirationSeconds int64
	Scopes                 []string
}

// CreateClientInput carries the fields for provisioning a client.
type CreateClientInput struct {
	APIID            uuid.UUID
	Name             string
	ForWorkspaceID   *uuid.UUID
	Scopes           []string
	Metadata         map[string]any
	BucketSize       *int64
	RefillAmount     *int64
	RefillIntervalMS *int64
	SecretExpiresAt  *time.Time
}

// CreateClientOutput returns the provisioned client together with the
// generated secret. The plaintext is returned exactly once; only its hash is
// stored.
type CreateClientOutput struct {
	Client          *tenantDomain.Client
	PlaintextSecret string
}

// WorkspaceUseCase manages workspaces.
type WorkspaceUseCase interface {
	Create(ctx context.Context, input CreateWorkspaceInput) (*tenantDomain.Workspace, error)
	Get(ctx context.Context, workspaceID uuid.UUID) (*tenantDomain.Workspace, error)
	List(ctx context.Context, limit, offset int) ([]*tenantDomain.Workspace, error)
}

// APIUseCase manages APIs and their initial signing material.
type APIUseCase interface {
	Create(ctx context.Context, input CreateAPIInput) (*tenantDomain.API, error)
	Get(ctx context.Context, apiID uuid.UUID) (*tenantDomain.API, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]*tenantDomain.API, error)
}

// ClientUseCase manages clients and their initial secrets.
type ClientUseCase interface {
	Create(ctx context.Context, input CreateClientInput) (*CreateClientOutput, error)
	Get(ctx context.Context, clientID uuid.UUID) (*tenantDomain.Client, error)
	ListByAPI(ctx context.Context, apiID uuid.UUID, limit, offset int) ([]*tenantDomain.Client, error)
}
