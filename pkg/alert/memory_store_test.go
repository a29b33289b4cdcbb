package alert_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetward/quotakit/pkg/alert"
	"github.com/fleetward/quotakit/pkg/plan"
)

func newAlert(tenantID, periodID uuid.UUID, band alert.Band) *alert.Alert {
	return &alert.Alert{
		TenantID:   tenantID,
		PeriodID:   periodID,
		Limit:      plan.LimitMonthlyTokens,
		Band:       band,
		UsedValue:  75,
		LimitValue: 100,
	}
}

func TestMemoryStore_RecordIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := alert.NewMemoryStore()
	tenantID, periodID := uuid.New(), uuid.New()

	created, err := store.Record(ctx, newAlert(tenantID, periodID, 75))
	require.NoError(t, err)
	assert.True(t, created)

	// Same (period, limit, band): dropped.
	created, err = store.Record(ctx, newAlert(tenantID, periodID, 75))
	require.NoError(t, err)
	assert.False(t, created)

	// A different band in the same period is a new alert.
	created, err = store.Record(ctx, newAlert(tenantID, periodID, 90))
	require.NoError(t, err)
	assert.True(t, created)

	// Same band in the next period re-arms.
	created, err = store.Record(ctx, newAlert(tenantID, uuid.New(), 75))
	require.NoError(t, err)
	assert.True(t, created)

	alerts, err := store.ListByTenant(ctx, tenantID)
	require.NoError(t, err)
	assert.Len(t, alerts, 3)
}

func TestMemoryStore_Acknowledge(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := alert.NewMemoryStore()
	tenantID, periodID := uuid.New(), uuid.New()

	a := newAlert(tenantID, periodID, 75)
	_, err := store.Record(ctx, a)
	require.NoError(t, err)
	_, err = store.Record(ctx, newAlert(tenantID, periodID, 90))
	require.NoError(t, err)

	require.NoError(t, store.Acknowledge(ctx, a.ID))

	unacked, err := store.Unacknowledged(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, unacked, 1)
	assert.Equal(t, alert.Band(90), unacked[0].Band)

	all, err := store.ListByTenant(ctx, tenantID)
	require.NoError(t, err)
	assert.Len(t, all, 2, "acknowledged alerts stay listed")

	for _, got := range all {
		if got.ID == a.ID {
			assert.True(t, got.Acknowledged)
			assert.NotNil(t, got.AcknowledgedAt)
		}
	}

	assert.ErrorIs(t, store.Acknowledge(ctx, uuid.New()), alert.ErrAlertNotFound)
}
