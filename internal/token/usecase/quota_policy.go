package usecase

import (
	"context"
	"time"

	"github.com/keygateio/keygate/internal/cache"
	tenantDomain "github.com/keygateio/keygate/internal/tenant/domain"
)

const quotaCacheNamespace = "monthlyUsage"

// usageQuotaPolicy enforces the free-tier monthly token quota against a
// cached monthly aggregate. The cached count lags behind writes by up to the
// cache TTL, so enforcement is approximate near the boundary; that is
// accepted in exchange for not reading the counter on every issuance.
type usageQuotaPolicy struct {
	usageRepo TokenUsageRepository
	cache     cache.Cache
}

// NewUsageQuotaPolicy creates a QuotaPolicy backed by the token usage counter.
func NewUsageQuotaPolicy(usageRepo TokenUsageRepository, c cache.Cache) QuotaPolicy {
	return &usageQuotaPolicy{usageRepo: usageRepo, cache: c}
}

func usagePeriod(now time.Time) string {
	return now.UTC().Format("2006-01")
}

func (p *usageQuotaPolicy) Allow(ctx context.Context, workspace *tenantDomain.Workspace, now time.Time) (bool, error) {
	if !workspace.QuotaEnforced() {
		return true, nil
	}

	period := usagePeriod(now)
	key := workspace.ID.String() + ":" + period

	value, err := p.cache.FetchOrPopulate(ctx, quotaCacheNamespace, key, func(ctx context.Context) (any, error) {
		count, err := p.usageRepo.Get(ctx, workspace.ID, period)
		if err != nil {
			return nil, err
		}
		return count, nil
	})
	if err != nil {
		return false, err
	}

	count, _ := value.(int64)
	return count < workspace.MonthlyTokenQuota, nil
}

func (p *usageQuotaPolicy) RecordIssued(ctx context.Context, workspace *tenantDomain.Workspace, now time.Time) error {
	return p.usageRepo.Increment(ctx, workspace.ID, usagePeriod(now))
}
