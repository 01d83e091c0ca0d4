package domain

import (
	"github.com/keygateio/keygate/internal/errors"
)

// Tenancy lookup and rotation errors.
var (
	// ErrWorkspaceNotFound indicates a workspace with the specified ID was not found.
	ErrWorkspaceNotFound = errors.Wrap(errors.ErrNotFound, "workspace not found")

	// ErrAPINotFound indicates an API with the specified ID was not found.
	ErrAPINotFound = errors.Wrap(errors.ErrNotFound, "api not found")

	// ErrClientNotFound indicates a client with the specified ID was not found.
	ErrClientNotFound = errors.Wrap(errors.ErrNotFound, "client not found")

	// ErrSigningSecretNotFound indicates a signing secret with the specified ID was not found.
	ErrSigningSecretNotFound = errors.Wrap(errors.ErrNotFound, "signing secret not found")

	// ErrClientSecretNotFound indicates a client secret with the specified ID was not found.
	ErrClientSecretNotFound = errors.Wrap(errors.ErrNotFound, "client secret not found")

	// ErrRotationConflict indicates a concurrent rotation updated the secret
	// pointer first. The caller should re-read and retry if still needed.
	ErrRotationConflict = errors.Wrap(errors.ErrConflict, "secret pointer changed concurrently")
)
