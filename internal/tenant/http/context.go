// Package http provides HTTP middleware and handlers for the management
// endpoints.
package http

import (
	"context"

	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
)

// clientKey is a context key type for storing authenticated clients.
type clientKey struct{}

// WithClient stores an authenticated client in the context.
// This is typically called by the management authentication middleware after
// successful token verification.
func WithClient(ctx context.Context, client *tenantDomain.Client) context.Context {
	return context.WithValue(ctx, clientKey{}, client)
}

// GetClient retrieves an authenticated client from the context.
// Returns (client, true) if a client is present, or (nil, false) if no client
// was set.
func GetClient(ctx context.Context) (*tenantDomain.Client, bool) {
	client, ok := ctx.Value(clientKey{}).(*tenantDomain.Client)
	return client, ok
}
