package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/keygateio/keygate/internal/ratelimit"
)

// ScopeMode selects how requested scopes are checked against a token's
// granted scopes during verification.
type ScopeMode string

const (
	// ScopeModeOne passes when the token holds at least one requested scope.
	ScopeModeOne ScopeMode = "one"

	// ScopeModeAll passes only when the token holds every requested scope.
	ScopeModeAll ScopeMode = "all"
)

// Client is a machine identity that exchanges its client secret for tokens.
//
// Version increments on every client-secret rotation. Issued tokens embed the
// version at issue time, so tokens minted under an older secret generation
// fail verification as soon as the rotation starts, even though their
// signature is still valid.
//
// ForWorkspaceID marks a root client: a client whose tokens administer the
// referenced workspace (rotations, tenant management) rather than merely
// authenticate against an API.
type Client struct {
	ID                    uuid.UUID
	APIID                 uuid.UUID
	WorkspaceID           uuid.UUID
	ForWorkspaceID        *uuid.UUID
	Name                  string
	Version               int64
	CurrentClientSecretID uuid.UUID
	NextClientSecretID    *uuid.UUID
	BucketSize            *int64
	RefillAmount          *int64
	RefillIntervalMS      *int64
	Scopes                []string
	Metadata              map[string]any
	CreatedAt             time.Time
}

// IsRootFor reports whether the client is a root client for the given
// workspace.
func (c *Client) IsRootFor(workspaceID uuid.UUID) bool {
	return c.ForWorkspaceID != nil && *c.ForWorkspaceID == workspaceID
}

// RateLimits returns the client's token-bucket parameters. Clients with any
// parameter unset are exempt from rate limiting and get zero-valued Limits.
func (c *Client) RateLimits() ratelimit.Limits {
	if c.BucketSize == nil || c.RefillAmount == nil || c.RefillIntervalMS == nil {
		return ratelimit.Limits{}
	}
	return ratelimit.Limits{
		BucketSize:     *c.BucketSize,
		RefillAmount:   *c.RefillAmount,
		RefillInterval: time.Duration(*c.RefillIntervalMS) * time.Millisecond,
	}
}

// HasScopes checks granted scopes against the requested ones under the given
// mode. An empty request always passes.
func (c *Client) HasScopes(requested []string, mode ScopeMode) bool {
	return MatchScopes(c.Scopes, requested, mode)
}

// MatchScopes checks a granted scope set against a requested one. Mode "all"
// requires every requested scope to be granted; any other mode behaves as
// "one" and requires at least a single match. An empty request always passes.
func MatchScopes(granted, requested []string, mode ScopeMode) bool {
	if len(requested) == 0 {
		return true
	}
	if mode == ScopeModeAll {
		for _, scope := range requested {
			if !slices.Contains(granted, scope) {
				return false
			}
		}
		return true
	}
	for _, scope := range requested {
		if slices.Contains(granted, scope) {
			return true
		}
	}
	return false
}
