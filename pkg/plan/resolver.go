package plan

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fleetward/quotakit/pkg/subscription"
)

// Resolver answers "what is this tenant's limit for X right now".
//
// Resolution is read-only and two-step: the tenant's current subscription
// yields a plan ID, the plan catalog yields the limit value. A tenant with
// no current subscription hard-fails with ErrNoActiveSubscription rather
// than being treated as unlimited.
type Resolver interface {
	// GetLimit resolves the named limit for the tenant's current plan.
	// The returned value may be the Unlimited or Disabled sentinel; callers
	// must distinguish the two.
	GetLimit(ctx context.Context, tenantID uuid.UUID, name LimitName) (int64, error)

	// CurrentPlan returns the tenant's current plan.
	CurrentPlan(ctx context.Context, tenantID uuid.UUID) (Plan, error)

	// Plan returns a plan from the catalog by ID.
	Plan(planID string) (Plan, error)
}

// resolver implements Resolver over a loaded plan catalog and the
// subscription store. The catalog map is immutable after construction.
type resolver struct {
	plans map[string]Plan
	subs  subscription.Store
	cache Cache
	ttl   time.Duration
	now   func() time.Time
}

// ResolverOption configures a Resolver.
type ResolverOption func(*resolver)

// WithCache adds a read-through cache for tenant-to-plan lookups. Limit
// reads sit on every quota check, so shaving the subscription query matters
// under load.
func WithCache(cache Cache, ttl time.Duration) ResolverOption {
	return func(r *resolver) {
		if cache != nil && ttl > 0 {
			r.cache = cache
			r.ttl = ttl
		}
	}
}

// WithResolverClock overrides the time source, used in tests.
func WithResolverClock(now func() time.Time) ResolverOption {
	return func(r *resolver) { r.now = now }
}

// NewResolver loads the plan catalog from src and returns a Resolver bound
// to the subscription store. Panics on nil src or subs to fail fast.
func NewResolver(ctx context.Context, src Source, subs subscription.Store, opts ...ResolverOption) (Resolver, error) {
	if src == nil {
		panic("plan: Source is required")
	}
	if subs == nil {
		panic("plan: subscription.Store is required")
	}

	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	if err := validatePlans(plans); err != nil {
		return nil, err
	}

	r := &resolver{
		plans: plans,
		subs:  subs,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *resolver) GetLimit(ctx context.Context, tenantID uuid.UUID, name LimitName) (int64, error) {
	p, err := r.CurrentPlan(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return p.Limit(name), nil
}

func (r *resolver) CurrentPlan(ctx context.Context, tenantID uuid.UUID) (Plan, error) {
	planID, err := r.currentPlanID(ctx, tenantID)
	if err != nil {
		return Plan{}, err
	}
	return r.Plan(planID)
}

func (r *resolver) Plan(planID string) (Plan, error) {
	p, ok := r.plans[planID]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return p, nil
}

func (r *resolver) currentPlanID(ctx context.Context, tenantID uuid.UUID) (string, error) {
	if r.cache != nil {
		if planID, ok := r.cache.Get(ctx, tenantID); ok {
			return planID, nil
		}
	}

	sub, err := r.subs.Current(ctx, tenantID, r.now())
	if err != nil {
		if errors.Is(err, subscription.ErrNoCurrentSubscription) {
			return "", ErrNoActiveSubscription
		}
		return "", err
	}

	if r.cache != nil {
		// Cap the TTL at the subscription window so a renewal onto another
		// plan is never masked by a stale cache entry.
		ttl := r.ttl
		if remaining := sub.EndDate.Sub(r.now()); remaining < ttl {
			ttl = remaining
		}
		if ttl > 0 {
			r.cache.Set(ctx, tenantID, sub.PlanID, ttl)
		}
	}
	return sub.PlanID, nil
}

// CycleResolverFor adapts a Resolver into the subscription lifecycle's
// plan-to-cycle lookup.
func CycleResolverFor(r Resolver) subscription.CycleResolver {
	return func(planID string) (subscription.BillingCycle, error) {
		p, err := r.Plan(planID)
		if err != nil {
			return "", err
		}
		return p.Cycle, nil
	}
}
