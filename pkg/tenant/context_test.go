package tenant_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetward/quotakit/pkg/tenant"
)

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	tn := &tenant.Tenant{ID: uuid.New(), Name: "Acme Logistics", Subdomain: "acme", Active: true}
	ctx := tenant.WithTenant(context.Background(), tn)

	got, ok := tenant.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, tn, got)

	id, ok := tenant.IDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, tn.ID, id)
}

func TestFromContext_Empty(t *testing.T) {
	t.Parallel()

	_, ok := tenant.FromContext(context.Background())
	assert.False(t, ok)

	id, ok := tenant.IDFromContext(context.Background())
	assert.False(t, ok)
	assert.Equal(t, uuid.UUID{}, id)
}

func TestMustFromContext_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		tenant.MustFromContext(context.Background())
	})
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	extract := tenant.LoggerExtractor()

	_, ok := extract(context.Background())
	assert.False(t, ok, "no attr without a tenant in context")

	tn := &tenant.Tenant{ID: uuid.New()}
	attr, ok := extract(tenant.WithTenant(context.Background(), tn))
	require.True(t, ok)
	assert.Equal(t, "tenant_id", attr.Key)
	assert.Equal(t, tn.ID.String(), attr.Value.String())
}
