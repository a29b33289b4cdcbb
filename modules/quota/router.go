package quota

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/fleetward/quotakit/pkg/alert"
	"github.com/fleetward/quotakit/pkg/quota"
	"github.com/fleetward/quotakit/pkg/subscription"
	"github.com/fleetward/quotakit/pkg/tenant"
)

// RouterOptions wires the quota module's dependencies. Service, Alerts and
// Tenants are required; the billing webhook route is only mounted when both
// Provider and Lifecycle are set.
type RouterOptions struct {
	Service   *quota.Service
	Alerts    alert.Store
	Tenants   tenant.Provider
	Provider  subscription.BillingProvider
	Lifecycle *subscription.Lifecycle
	Logger    *slog.Logger
}

// Router creates the quota module router.
//
// Tenant-scoped routes resolve the tenant from the X-Tenant-ID header (or
// the subdomain) before reaching a handler. The billing webhook is mounted
// outside tenant resolution: the tenant is carried inside the verified
// payload, not the request URL.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Mount("/quota", quotamod.Router(quotamod.RouterOptions{
//	    Service:   svc,
//	    Alerts:    alertStore,
//	    Tenants:   tenantProvider,
//	    Provider:  paddleProvider,
//	    Lifecycle: lifecycle,
//	}))
func Router(opts RouterOptions) chi.Router {
	if opts.Service == nil {
		panic("quota module: service is required")
	}
	if opts.Alerts == nil {
		panic("quota module: alert store is required")
	}
	if opts.Tenants == nil {
		panic("quota module: tenant provider is required")
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	h := &handlers{
		svc:    opts.Service,
		alerts: opts.Alerts,
		log:    log,
	}

	r := chi.NewRouter()

	r.Group(func(tr chi.Router) {
		tr.Use(ResolveTenant(opts.Tenants, log))

		tr.Get("/usage", h.usage)
		tr.Get("/alerts", h.listAlerts)
		tr.Post("/alerts/{alertID}/ack", h.acknowledgeAlert)
	})

	if opts.Provider != nil && opts.Lifecycle != nil {
		wh := &webhookHandler{
			provider:  opts.Provider,
			lifecycle: opts.Lifecycle,
			log:       log,
		}
		r.Post("/webhooks/billing", wh.handle)
	}

	return r
}
