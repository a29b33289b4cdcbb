package quota_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	quotamod "github.com/fleetward/quotakit/modules/quota"
	"github.com/fleetward/quotakit/pkg/alert"
	"github.com/fleetward/quotakit/pkg/plan"
	"github.com/fleetward/quotakit/pkg/quota"
	"github.com/fleetward/quotakit/pkg/subscription"
	"github.com/fleetward/quotakit/pkg/tenant"
	"github.com/fleetward/quotakit/pkg/usage"
)

var testNow = time.Date(2025, time.May, 15, 0, 0, 0, 0, time.UTC)

type staticTenants map[string]*tenant.Tenant

func (s staticTenants) GetByIdentifier(ctx context.Context, identifier string) (*tenant.Tenant, error) {
	tn, ok := s[identifier]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return tn, nil
}

type fixture struct {
	router  http.Handler
	svc     *quota.Service
	alerts  alert.Store
	tenants staticTenants
	tenant  *tenant.Tenant
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	subs := subscription.NewMemoryStore()
	store := usage.NewMemoryStore()
	alerts := alert.NewMemoryStore()

	plans := map[string]plan.Plan{
		"starter": {
			ID:    "starter",
			Name:  "Starter",
			Cycle: subscription.CycleMonthly,
			Limits: map[plan.LimitName]int64{
				plan.LimitMonthlyOrders: 500,
				plan.LimitMonthlyTokens: 50000,
				plan.LimitStorageMB:     10,
			},
		},
	}

	resolver, err := plan.NewResolver(context.Background(), plan.NewInMemSource(plans), subs,
		plan.WithResolverClock(func() time.Time { return testNow }))
	require.NoError(t, err)

	svc := quota.NewService(resolver, subs, store, alerts,
		quota.WithClock(func() time.Time { return testNow }))

	tn := &tenant.Tenant{ID: uuid.New(), Name: "Acme Logistics", Subdomain: "acme", Active: true}
	tenants := staticTenants{tn.ID.String(): tn, "acme": tn}

	require.NoError(t, subs.Create(context.Background(), &subscription.Subscription{
		TenantID:     tn.ID,
		PlanID:       "starter",
		BillingCycle: subscription.CycleMonthly,
		StartDate:    time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		IsActive:     true,
	}))

	return &fixture{
		router: quotamod.Router(quotamod.RouterOptions{
			Service: svc,
			Alerts:  alerts,
			Tenants: tenants,
		}),
		svc:     svc,
		alerts:  alerts,
		tenants: tenants,
		tenant:  tn,
	}
}

func (f *fixture) request(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-Tenant-ID", f.tenant.ID.String())
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Usage(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.CheckAndLog(context.Background(), f.tenant.ID,
		quota.FeatureTokenUsage, usage.Delta{Tokens: 40000})
	require.NoError(t, err)

	rec := f.request(t, http.MethodGet, "/usage")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			PeriodStart time.Time                  `json:"period_start"`
			Metered     map[string]quota.UsageInfo `json:"metered"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC), body.Data.PeriodStart)

	tokens := body.Data.Metered["monthly_token_limit"]
	assert.Equal(t, int64(40000), tokens.Used)
	assert.Equal(t, 80, tokens.Percent)
}

func TestRouter_TenantResolution(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	t.Run("missing tenant", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/usage", nil)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/usage", nil)
		req.Header.Set("X-Tenant-ID", uuid.NewString())
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("resolved from subdomain", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/usage", nil)
		req.Host = "acme.app.example.com"
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("inactive tenant", func(t *testing.T) {
		t.Parallel()
		inactive := &tenant.Tenant{ID: uuid.New(), Subdomain: "dormant", Active: false}
		f.tenants[inactive.ID.String()] = inactive

		req := httptest.NewRequest(http.MethodGet, "/usage", nil)
		req.Header.Set("X-Tenant-ID", inactive.ID.String())
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRouter_UsageWithoutSubscription(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	orphan := &tenant.Tenant{ID: uuid.New(), Subdomain: "orphan", Active: true}
	f.tenants[orphan.ID.String()] = orphan

	req := httptest.NewRequest(http.MethodGet, "/usage", nil)
	req.Header.Set("X-Tenant-ID", orphan.ID.String())
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Contains(t, rec.Body.String(), "no_subscription")
}

func TestRouter_Alerts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	// Drive tokens to 80%: fires the 75% band.
	_, err := f.svc.CheckAndLog(ctx, f.tenant.ID, quota.FeatureTokenUsage, usage.Delta{Tokens: 40000})
	require.NoError(t, err)

	rec := f.request(t, http.MethodGet, "/alerts")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []alert.Alert `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, alert.Band(75), body.Data[0].Band)
	assert.False(t, body.Data[0].Acknowledged)

	// Acknowledge it.
	rec = f.request(t, http.MethodPost, "/alerts/"+body.Data[0].ID.String()+"/ack")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.request(t, http.MethodGet, "/alerts")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.True(t, body.Data[0].Acknowledged)
}

func TestRouter_AcknowledgeValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	t.Run("malformed id", func(t *testing.T) {
		t.Parallel()
		rec := f.request(t, http.MethodPost, "/alerts/not-a-uuid/ack")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()
		rec := f.request(t, http.MethodPost, "/alerts/"+uuid.NewString()+"/ack")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("foreign tenant alert looks like a miss", func(t *testing.T) {
		t.Parallel()
		foreign := &alert.Alert{
			TenantID:   uuid.New(),
			PeriodID:   uuid.New(),
			Limit:      plan.LimitMonthlyTokens,
			Band:       75,
			UsedValue:  75,
			LimitValue: 100,
		}
		_, err := f.alerts.Record(context.Background(), foreign)
		require.NoError(t, err)

		rec := f.request(t, http.MethodPost, "/alerts/"+foreign.ID.String()+"/ack")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUploadGuard(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	var reached bool
	handler := quotamod.ResolveTenant(f.tenants, testLogger())(
		quotamod.UploadGuard(f.svc, testLogger())(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
				w.WriteHeader(http.StatusCreated)
			})))

	upload := func(sizeBytes int) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/files", strings.NewReader(strings.Repeat("x", sizeBytes)))
		req.Header.Set("X-Tenant-ID", f.tenant.ID.String())
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	// Plan allows 10 MB. An 8 MB upload passes.
	rec := upload(8 << 20)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, reached)

	// A further 4 MB would exceed the ceiling: denied, handler never runs.
	reached = false
	rec = upload(4 << 20)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.False(t, reached)
	assert.Contains(t, rec.Body.String(), "quota_exceeded")

	// 2 MB still fits exactly.
	rec = upload(2 << 20)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
