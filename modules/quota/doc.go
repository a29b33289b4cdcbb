// Package quota is the HTTP surface of the quota accounting core.
//
// It mounts a small JSON API for tenant dashboards plus the billing webhook
// that drives the subscription lifecycle:
//
//	GET  /usage                  current period snapshot with percentages
//	GET  /alerts                 all threshold alerts for the tenant
//	POST /alerts/{alertID}/ack   acknowledge one alert
//	POST /webhooks/billing       verified billing provider events
//
// Tenant-scoped routes run behind ResolveTenant, which resolves the tenant
// from the X-Tenant-ID header or the request subdomain. The webhook route is
// unauthenticated at the HTTP layer; authenticity comes from the provider's
// payload signature.
//
// UploadGuard is exported separately so file-serving routes elsewhere in the
// application can admit uploads against the storage quota:
//
//	r.With(quotamod.ResolveTenant(tenants, log), quotamod.UploadGuard(svc, log)).
//	    Post("/files", uploadHandler)
package quota
