// Package usecase implements two-phase secret rotation: opening a rotation
// window that keeps old and new secrets valid side by side, scheduling the
// old secret's expiry through the transactional outbox, and finalizing the
// swap idempotently when the expiry event is delivered.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	outboxDomain "github.com/keygateio/keygate/internal/outbox/domain"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
)

// WorkspaceRepository resolves workspaces for envelope encryption.
type WorkspaceRepository interface {
	Get(ctx context.Context, workspaceID uuid.UUID) (*tenantDomain.Workspace, error)
}

// APIRepository defines the API operations rotation needs.
type APIRepository interface {
	Get(ctx context.Context, apiID uuid.UUID) (*tenantDomain.API, error)
	OpenRotation(ctx context.Context, apiID, expectedCurrentID, nextID uuid.UUID) error
	FinalizeRotation(ctx context.Context, apiID, expectedCurrentID, newCurrentID uuid.UUID) error
}

// ClientRepository defines the client operations rotation needs.
type ClientRepository interface {
	Get(ctx context.Context, clientID uuid.UUID) (*tenantDomain.Client, error)
	OpenSecretRotation(ctx context.Context, clientID, expectedCurrentID, nextID uuid.UUID) error
	FinalizeSecretRotation(ctx context.Context, clientID, expectedCurrentID, newCurrentID uuid.UUID) error
}

// SigningSecretRepository defines the signing secret operations rotation needs.
type SigningSecretRepository interface {
	Create(ctx context.Context, secret *tenantDomain.SigningSecret) error
	Get(ctx context.Context, secretID uuid.UUID) (*tenantDomain.SigningSecret, error)
	SetExpiry(ctx context.Context, secretID uuid.UUID, expiresAt time.Time) error
	Revoke(ctx context.Context, secretID uuid.UUID, now time.Time) error
}

// ClientSecretRepository defines the client secret operations rotation needs.
type ClientSecretRepository interface {
	Create(ctx context.Context, secret *tenantDomain.ClientSecret) error
	SetExpiry(ctx context.Context, secretID uuid.UUID, expiresAt time.Time) error
	Revoke(ctx context.Context, secretID uuid.UUID, now time.Time) error
}

// OutboxEventRepository enqueues expiry events in the rotation transaction.
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// IdempotencyKeyRepository tracks processed expiry deliveries.
type IdempotencyKeyRepository interface {
	Exists(ctx context.Context, key string, now time.Time) (bool, error)
	Create(ctx context.Context, idempotencyKey *tenantDomain.IdempotencyKey) error
}

// RotateClientSecretOutput returns the rotated secret's id and its plaintext.
// The plaintext is returned exactly once.
type RotateClientSecretOutput struct {
	SecretID        uuid.UUID
	PlaintextSecret string
}

// RotationUseCase opens rotation windows.
type RotationUseCase interface {
	// RotateSigningSecret starts a signing secret rotation for the API. The
	// caller must be a root client for the API's workspace. The old secret
	// stays valid for expiresIn (the configured overlap when zero).
	RotateSigningSecret(ctx context.Context, apiID uuid.UUID, rotatedBy *tenantDomain.Client, expiresIn time.Duration) (*tenantDomain.SigningSecret, error)

	// RotateClientSecret starts a client secret rotation. The client's
	// version bumps immediately, invalidating all outstanding tokens.
	RotateClientSecret(ctx context.Context, clientID uuid.UUID, expiresIn time.Duration) (*RotateClientSecretOutput, error)
}

// FinalizeUseCase closes rotation windows when expiry events are delivered.
// Deliveries are at-least-once; deliveryID deduplicates redeliveries and
// pointer guards make replayed finalizations no-ops.
type FinalizeUseCase interface {
	HandleExpiry(ctx context.Context, deliveryID, eventType string, payload []byte) error
}
