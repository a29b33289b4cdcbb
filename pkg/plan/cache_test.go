package plan_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetward/quotakit/pkg/plan"
)

func TestMemoryCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := plan.NewMemoryCache()
	tenantID := uuid.New()

	_, ok := cache.Get(ctx, tenantID)
	assert.False(t, ok, "empty cache misses")

	cache.Set(ctx, tenantID, "starter", time.Minute)
	planID, ok := cache.Get(ctx, tenantID)
	require.True(t, ok)
	assert.Equal(t, "starter", planID)

	cache.Delete(ctx, tenantID)
	_, ok = cache.Get(ctx, tenantID)
	assert.False(t, ok, "deleted entry misses")
}

func TestMemoryCache_Expiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := plan.NewMemoryCache()
	tenantID := uuid.New()

	cache.Set(ctx, tenantID, "starter", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	_, ok := cache.Get(ctx, tenantID)
	assert.False(t, ok, "expired entry misses")
}
