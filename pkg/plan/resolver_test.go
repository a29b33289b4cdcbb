package plan_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetward/quotakit/pkg/plan"
	"github.com/fleetward/quotakit/pkg/subscription"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testPlans() map[string]plan.Plan {
	return map[string]plan.Plan{
		"starter": {
			ID:    "starter",
			Name:  "Starter",
			Cycle: subscription.CycleMonthly,
			Limits: map[plan.LimitName]int64{
				plan.LimitMaxActiveDrivers: 10,
				plan.LimitMonthlyOrders:    500,
				plan.LimitMonthlyTokens:    50000,
				plan.LimitStorageMB:        1024,
			},
		},
		"enterprise": {
			ID:       "enterprise",
			Name:     "Enterprise",
			Cycle:    subscription.CycleAnnual,
			IsCustom: true,
			Limits: map[plan.LimitName]int64{
				plan.LimitMaxActiveDrivers: plan.Unlimited,
				plan.LimitMonthlyOrders:    plan.Unlimited,
			},
		},
	}
}

func subscribe(t *testing.T, subs subscription.Store, tenantID uuid.UUID, planID string, start, end time.Time) {
	t.Helper()
	require.NoError(t, subs.Create(context.Background(), &subscription.Subscription{
		TenantID:     tenantID,
		PlanID:       planID,
		BillingCycle: subscription.CycleMonthly,
		StartDate:    start,
		EndDate:      end,
		IsActive:     true,
	}))
}

func TestResolver_GetLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	subs := subscription.NewMemoryStore()
	now := date(2025, time.May, 15)

	r, err := plan.NewResolver(ctx, plan.NewInMemSource(testPlans()), subs,
		plan.WithResolverClock(func() time.Time { return now }))
	require.NoError(t, err)

	tenantID := uuid.New()
	subscribe(t, subs, tenantID, "starter", date(2025, time.May, 1), date(2025, time.June, 1))

	t.Run("defined limit", func(t *testing.T) {
		v, err := r.GetLimit(ctx, tenantID, plan.LimitMonthlyOrders)
		require.NoError(t, err)
		assert.Equal(t, int64(500), v)
	})

	t.Run("absent limit means disabled", func(t *testing.T) {
		v, err := r.GetLimit(ctx, tenantID, plan.LimitMonthlyLicenses)
		require.NoError(t, err)
		assert.Equal(t, plan.Disabled, v)
	})

	t.Run("no subscription is a hard failure", func(t *testing.T) {
		_, err := r.GetLimit(ctx, uuid.New(), plan.LimitMonthlyOrders)
		assert.ErrorIs(t, err, plan.ErrNoActiveSubscription)
	})

	t.Run("unlimited on custom plan", func(t *testing.T) {
		entID := uuid.New()
		subscribe(t, subs, entID, "enterprise", date(2025, time.May, 1), date(2026, time.May, 1))

		v, err := r.GetLimit(ctx, entID, plan.LimitMaxActiveDrivers)
		require.NoError(t, err)
		assert.Equal(t, plan.Unlimited, v)
	})
}

func TestResolver_CurrentPlanFollowsRenewal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	subs := subscription.NewMemoryStore()
	now := date(2025, time.May, 15)

	r, err := plan.NewResolver(ctx, plan.NewInMemSource(testPlans()), subs,
		plan.WithResolverClock(func() time.Time { return now }))
	require.NoError(t, err)

	tenantID := uuid.New()
	subscribe(t, subs, tenantID, "starter", date(2025, time.May, 1), date(2025, time.June, 1))

	p, err := r.CurrentPlan(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, "starter", p.ID)

	// Supersede onto enterprise; the uncached resolver sees it immediately.
	got, err := subs.Current(ctx, tenantID, now)
	require.NoError(t, err)
	require.NoError(t, subs.Deactivate(ctx, got.ID))
	subscribe(t, subs, tenantID, "enterprise", now, date(2026, time.May, 15))

	p, err = r.CurrentPlan(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, "enterprise", p.ID)
}

func TestResolver_PlanLookup(t *testing.T) {
	t.Parallel()

	r, err := plan.NewResolver(context.Background(), plan.NewInMemSource(testPlans()), subscription.NewMemoryStore())
	require.NoError(t, err)

	p, err := r.Plan("starter")
	require.NoError(t, err)
	assert.Equal(t, "Starter", p.Name)

	_, err = r.Plan("nonexistent")
	assert.ErrorIs(t, err, plan.ErrPlanNotFound)
}

func TestResolver_Cache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	subs := subscription.NewMemoryStore()
	now := date(2025, time.May, 15)

	cache := plan.NewMemoryCache()
	r, err := plan.NewResolver(ctx, plan.NewInMemSource(testPlans()), subs,
		plan.WithResolverClock(func() time.Time { return now }),
		plan.WithCache(cache, time.Minute))
	require.NoError(t, err)

	tenantID := uuid.New()
	subscribe(t, subs, tenantID, "starter", date(2025, time.May, 1), date(2025, time.June, 1))

	p, err := r.CurrentPlan(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, "starter", p.ID)

	// Hot path now served from cache: even with the subscription gone,
	// the cached plan ID resolves until the TTL expires.
	got, err := subs.Current(ctx, tenantID, now)
	require.NoError(t, err)
	require.NoError(t, subs.Deactivate(ctx, got.ID))

	p, err = r.CurrentPlan(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, "starter", p.ID)
}

func TestNewResolver_Validation(t *testing.T) {
	t.Parallel()

	t.Run("unlimited on non-custom plan rejected", func(t *testing.T) {
		t.Parallel()
		plans := map[string]plan.Plan{
			"bad": {
				ID:    "bad",
				Cycle: subscription.CycleMonthly,
				Limits: map[plan.LimitName]int64{
					plan.LimitMonthlyOrders: plan.Unlimited,
				},
			},
		}
		_, err := plan.NewResolver(context.Background(), plan.NewInMemSource(plans), subscription.NewMemoryStore())
		assert.ErrorIs(t, err, plan.ErrInvalidPlanConfiguration)
	})

	t.Run("unknown limit name rejected", func(t *testing.T) {
		t.Parallel()
		plans := map[string]plan.Plan{
			"bad": {
				ID:     "bad",
				Cycle:  subscription.CycleMonthly,
				Limits: map[plan.LimitName]int64{"max_spaceships": 5},
			},
		}
		_, err := plan.NewResolver(context.Background(), plan.NewInMemSource(plans), subscription.NewMemoryStore())
		assert.ErrorIs(t, err, plan.ErrInvalidPlanConfiguration)
	})

	t.Run("negative limit rejected", func(t *testing.T) {
		t.Parallel()
		plans := map[string]plan.Plan{
			"bad": {
				ID:     "bad",
				Cycle:  subscription.CycleMonthly,
				Limits: map[plan.LimitName]int64{plan.LimitMonthlyOrders: -7},
			},
		}
		_, err := plan.NewResolver(context.Background(), plan.NewInMemSource(plans), subscription.NewMemoryStore())
		assert.ErrorIs(t, err, plan.ErrInvalidPlanConfiguration)
	})

	t.Run("nil source panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			_, _ = plan.NewResolver(context.Background(), nil, subscription.NewMemoryStore())
		})
	})
}
