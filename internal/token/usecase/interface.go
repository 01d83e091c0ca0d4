// Package usecase implements the token issuance and verification engines.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
	tokenDomain "github.com/keygateio/keygate/internal/token/domain"
)

// WorkspaceRepository defines the workspace reads needed by the engines.
type WorkspaceRepository interface {
	Get(ctx context.Context, workspaceID uuid.UUID) (*tenantDomain.Workspace, error)
}

// APIRepository defines the API reads needed by the engines.
type APIRepository interface {
	Get(ctx context.Context, apiID uuid.UUID) (*tenantDomain.API, error)
}

// ClientRepository defines the client reads needed by the engines.
type ClientRepository interface {
	Get(ctx context.Context, clientID uuid.UUID) (*tenantDomain.Client, error)
}

// ClientSecretRepository defines the client secret reads needed by the engines.
type ClientSecretRepository interface {
	Get(ctx context.Context, secretID uuid.UUID) (*tenantDomain.ClientSecret, error)
}

// SigningSecretRepository defines the signing secret reads needed by the engines.
type SigningSecretRepository interface {
	Get(ctx context.Context, secretID uuid.UUID) (*tenantDomain.SigningSecret, error)
}

// TokenUsageRepository tracks per-workspace monthly issuance counts.
type TokenUsageRepository interface {
	Increment(ctx context.Context, workspaceID uuid.UUID, period string) error
	Get(ctx context.Context, workspaceID uuid.UUID, period string) (int64, error)
}

// QuotaPolicy gates issuance on the workspace's monthly token quota.
type QuotaPolicy interface {
	// Allow reports whether the workspace may issue another token now.
	Allow(ctx context.Context, workspace *tenantDomain.Workspace, now time.Time) (bool, error)

	// RecordIssued accounts a successfully issued token.
	RecordIssued(ctx context.Context, workspace *tenantDomain.Workspace, now time.Time) error
}

// IssueOutput is the result of a successful token issuance.
type IssueOutput struct {
	Token     string
	TokenType string
	ExpiresIn int64
	Scope     string
}

// IssueUseCase exchanges client credentials for a signed token.
type IssueUseCase interface {
	// Issue authenticates the client secret against the current and next
	// secret candidates and returns a signed token. Unknown clients and bad
	// secrets both fail with ErrForbidden; the caller never learns which.
	Issue(ctx context.Context, clientID uuid.UUID, clientSecret string) (*IssueOutput, error)
}

// VerifyUseCase checks a presented token.
type VerifyUseCase interface {
	// Verify runs the verification state machine and returns a typed
	// result. It never returns an error: internal faults fail closed as
	// INVALID_CLIENT.
	Verify(ctx context.Context, token string, requiredScopes []string, mode tenantDomain.ScopeMode) tokenDomain.VerifyResult
}
