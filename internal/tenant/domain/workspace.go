// Package domain defines the tenancy domain models: workspaces, APIs, clients,
// and their rotating secrets.
//
// A workspace owns APIs and clients. Each API issues and verifies tokens under
// its own signing secret; each client authenticates with a hashed client
// secret. Both secret kinds rotate through a two-phase window where the old
// and new secret are valid simultaneously until finalization.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Plan identifies a workspace billing plan.
type Plan string

const (
	// PlanFree is the free tier, subject to the monthly token quota.
	PlanFree Plan = "free"

	// PlanPro is the paid tier. Quota checks are skipped.
	PlanPro Plan = "pro"
)

// Workspace is the tenancy root. Every API, client, and secret belongs to
// exactly one workspace, and all secret material under a workspace is
// envelope-encrypted with the workspace's data key.
type Workspace struct {
	ID                  uuid.UUID
	Name                string
	DataEncryptionKeyID uuid.UUID // per-workspace data key used for envelope encryption
	Plan                Plan
	MonthlyTokenQuota   int64 // 0 means unlimited
	CreatedAt           time.Time
}

// QuotaEnforced reports whether the workspace's monthly token quota applies.
func (w *Workspace) QuotaEnforced() bool {
	return w.Plan == PlanFree && w.MonthlyTokenQuota > 0
}
