package subscription_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetward/quotakit/pkg/subscription"
)

func newSub(tenantID uuid.UUID, start, end time.Time) *subscription.Subscription {
	return &subscription.Subscription{
		TenantID:     tenantID,
		PlanID:       "starter",
		BillingCycle: subscription.CycleMonthly,
		StartDate:    start,
		EndDate:      end,
		IsActive:     true,
	}
}

func TestMemoryStore_CreateAndCurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := subscription.NewMemoryStore()
	tenantID := uuid.New()

	sub := newSub(tenantID, date(2025, time.January, 1), date(2025, time.February, 1))
	require.NoError(t, store.Create(ctx, sub))
	require.NotEqual(t, uuid.Nil, sub.ID, "Create assigns an ID")

	got, err := store.Current(ctx, tenantID, date(2025, time.January, 15))
	require.NoError(t, err)
	assert.Equal(t, sub.ID, got.ID)
	assert.Equal(t, "starter", got.PlanID)

	_, err = store.Current(ctx, tenantID, date(2025, time.February, 15))
	assert.ErrorIs(t, err, subscription.ErrNoCurrentSubscription, "after end date")

	_, err = store.Current(ctx, uuid.New(), date(2025, time.January, 15))
	assert.ErrorIs(t, err, subscription.ErrNoCurrentSubscription, "other tenant")
}

func TestMemoryStore_OverlapRejected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := subscription.NewMemoryStore()
	tenantID := uuid.New()

	require.NoError(t, store.Create(ctx, newSub(tenantID, date(2025, time.January, 1), date(2025, time.February, 1))))

	err := store.Create(ctx, newSub(tenantID, date(2025, time.January, 15), date(2025, time.February, 15)))
	assert.ErrorIs(t, err, subscription.ErrSubscriptionOverlap)

	// Adjacent half-open windows do not overlap.
	err = store.Create(ctx, newSub(tenantID, date(2025, time.February, 1), date(2025, time.March, 1)))
	assert.NoError(t, err)

	// Another tenant is unaffected.
	err = store.Create(ctx, newSub(uuid.New(), date(2025, time.January, 15), date(2025, time.February, 15)))
	assert.NoError(t, err)
}

func TestMemoryStore_OverlapIgnoresInactive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := subscription.NewMemoryStore()
	tenantID := uuid.New()

	first := newSub(tenantID, date(2025, time.January, 1), date(2025, time.February, 1))
	require.NoError(t, store.Create(ctx, first))
	require.NoError(t, store.Deactivate(ctx, first.ID))

	// Deactivated rows stay as history but no longer block new windows.
	err := store.Create(ctx, newSub(tenantID, date(2025, time.January, 15), date(2025, time.February, 15)))
	assert.NoError(t, err)
}

func TestMemoryStore_Deactivate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := subscription.NewMemoryStore()
	tenantID := uuid.New()

	sub := newSub(tenantID, date(2025, time.January, 1), date(2025, time.February, 1))
	require.NoError(t, store.Create(ctx, sub))
	require.NoError(t, store.Deactivate(ctx, sub.ID))

	_, err := store.Current(ctx, tenantID, date(2025, time.January, 15))
	assert.ErrorIs(t, err, subscription.ErrNoCurrentSubscription)

	assert.ErrorIs(t, store.Deactivate(ctx, uuid.New()), subscription.ErrSubscriptionNotFound)
}

func TestMemoryStore_ListByTenant(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := subscription.NewMemoryStore()
	tenantID := uuid.New()

	older := newSub(tenantID, date(2025, time.January, 1), date(2025, time.February, 1))
	older.IsActive = false
	newer := newSub(tenantID, date(2025, time.February, 1), date(2025, time.March, 1))

	require.NoError(t, store.Create(ctx, older))
	require.NoError(t, store.Create(ctx, newer))
	require.NoError(t, store.Create(ctx, newSub(uuid.New(), date(2025, time.January, 1), date(2025, time.February, 1))))

	subs, err := store.ListByTenant(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, newer.ID, subs[0].ID, "newest first")
	assert.Equal(t, older.ID, subs[1].ID)
}

func TestMemoryStore_CreateValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := subscription.NewMemoryStore()

	t.Run("inverted window", func(t *testing.T) {
		t.Parallel()
		sub := newSub(uuid.New(), date(2025, time.February, 1), date(2025, time.January, 1))
		assert.ErrorIs(t, store.Create(ctx, sub), subscription.ErrInvalidWindow)
	})

	t.Run("invalid cycle", func(t *testing.T) {
		t.Parallel()
		sub := newSub(uuid.New(), date(2025, time.January, 1), date(2025, time.February, 1))
		sub.BillingCycle = "weekly"
		assert.ErrorIs(t, store.Create(ctx, sub), subscription.ErrInvalidBillingCycle)
	})
}
