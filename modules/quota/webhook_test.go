package quota_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	quotamod "github.com/fleetward/quotakit/modules/quota"
	"github.com/fleetward/quotakit/pkg/subscription"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProvider accepts payloads signed with "valid" and replays a canned event.
type fakeProvider struct {
	event *subscription.WebhookEvent
}

func (p *fakeProvider) CreateCheckoutLink(ctx context.Context, req subscription.CheckoutRequest) (*subscription.CheckoutLink, error) {
	return &subscription.CheckoutLink{URL: "https://checkout.example.com/session"}, nil
}

func (p *fakeProvider) GetCustomerPortalLink(ctx context.Context, sub *subscription.Subscription) (*subscription.PortalLink, error) {
	return &subscription.PortalLink{URL: "https://portal.example.com/session"}, nil
}

func (p *fakeProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*subscription.WebhookEvent, error) {
	if signature != "valid" {
		return nil, subscription.ErrWebhookVerificationFailed
	}
	if p.event == nil {
		return nil, subscription.ErrUnknownWebhookEvent
	}
	return p.event, nil
}

func newWebhookRouter(t *testing.T, provider subscription.BillingProvider) (http.Handler, subscription.Store) {
	t.Helper()

	f := newFixture(t)
	subs := subscription.NewMemoryStore()
	lifecycle := subscription.NewLifecycle(subs,
		func(planID string) (subscription.BillingCycle, error) {
			return subscription.CycleMonthly, nil
		},
		subscription.WithClock(func() time.Time { return testNow }),
		subscription.WithLogger(testLogger()))

	router := quotamod.Router(quotamod.RouterOptions{
		Service:   f.svc,
		Alerts:    f.alerts,
		Tenants:   f.tenants,
		Provider:  provider,
		Lifecycle: lifecycle,
		Logger:    testLogger(),
	})
	return router, subs
}

func postWebhook(router http.Handler, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/billing", strings.NewReader(`{"event":"payload"}`))
	if signature != "" {
		req.Header.Set("Paddle-Signature", signature)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_AppliesEvent(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	router, subs := newWebhookRouter(t, &fakeProvider{
		event: &subscription.WebhookEvent{
			Type:           subscription.EventSubscriptionCreated,
			TenantID:       tenantID.String(),
			PlanID:         "starter",
			SubscriptionID: "sub_123",
		},
	})

	rec := postWebhook(router, "valid")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "processed")

	sub, err := subs.Current(context.Background(), tenantID, testNow)
	require.NoError(t, err)
	assert.Equal(t, "starter", sub.PlanID)
	assert.Equal(t, "sub_123", sub.ProviderSubID)
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	t.Parallel()

	router, _ := newWebhookRouter(t, &fakeProvider{
		event: &subscription.WebhookEvent{
			Type:     subscription.EventSubscriptionCreated,
			TenantID: uuid.NewString(),
			PlanID:   "starter",
		},
	})

	rec := postWebhook(router, "forged")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postWebhook(router, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhook_IgnoresUnmappedEvents(t *testing.T) {
	t.Parallel()

	router, _ := newWebhookRouter(t, &fakeProvider{event: nil})

	rec := postWebhook(router, "valid")
	assert.Equal(t, http.StatusOK, rec.Code, "unmapped events are acked so the provider stops retrying")
	assert.Contains(t, rec.Body.String(), "ignored")
}
