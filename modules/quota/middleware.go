package quota

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fleetward/quotakit/pkg/logger"
	"github.com/fleetward/quotakit/pkg/quota"
	"github.com/fleetward/quotakit/pkg/tenant"
	"github.com/fleetward/quotakit/pkg/usage"
)

// tenantHeader carries the tenant identifier on API calls that do not go
// through a subdomain, e.g. service-to-service traffic.
const tenantHeader = "X-Tenant-ID"

// ResolveTenant returns middleware that resolves the request's tenant from
// the X-Tenant-ID header, falling back to the host's first subdomain label,
// and stores it in the request context. Requests without a resolvable,
// active tenant are rejected.
func ResolveTenant(provider tenant.Provider, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := r.Header.Get(tenantHeader)
			if identifier == "" {
				identifier = subdomain(r.Host)
			}
			if identifier == "" {
				respondError(w, http.StatusUnauthorized, "tenant_required", "no tenant identifier on request")
				return
			}

			tn, err := provider.GetByIdentifier(r.Context(), identifier)
			if err != nil {
				if errors.Is(err, tenant.ErrTenantNotFound) {
					respondError(w, http.StatusUnauthorized, "tenant_not_found", "unknown tenant")
					return
				}
				log.ErrorContext(r.Context(), "failed to resolve tenant", logger.Error(err))
				respondError(w, http.StatusInternalServerError, "internal_error", "failed to resolve tenant")
				return
			}
			if !tn.Active || tn.Deleted() {
				respondError(w, http.StatusForbidden, "tenant_inactive", "tenant is inactive")
				return
			}

			next.ServeHTTP(w, r.WithContext(tenant.WithTenant(r.Context(), tn)))
		})
	}
}

// subdomain extracts the first host label when the host has at least three
// labels ("acme.app.example.com" -> "acme"). Returns "" otherwise.
func subdomain(host string) string {
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	parts := strings.Split(host, ".")
	if len(parts) < 3 || parts[0] == "" || parts[0] == "www" {
		return ""
	}
	return parts[0]
}

// UploadGuard returns middleware that admits file uploads against the
// tenant's storage quota before the body is handed to the next handler.
// The upload size is taken from Content-Length, rounded up to whole
// megabytes. A denied upload gets 402 with the denial reason; the request
// never reaches the handler, so no storage is consumed.
//
// Requires ResolveTenant to run first.
func UploadGuard(svc *quota.Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tn := tenant.MustFromContext(r.Context())

			if r.ContentLength < 0 {
				respondError(w, http.StatusLengthRequired, "length_required", "upload size must be known in advance")
				return
			}

			sizeMB := (r.ContentLength + (1 << 20) - 1) / (1 << 20)
			if sizeMB == 0 {
				next.ServeHTTP(w, r)
				return
			}

			decision, err := svc.CheckAndLog(r.Context(), tn.ID, quota.FeatureFileUpload, usage.Delta{StorageMB: sizeMB})
			if err != nil {
				log.ErrorContext(r.Context(), "upload quota check failed", logger.Error(err))
				respondError(w, http.StatusInternalServerError, "internal_error", "quota check failed")
				return
			}
			if !decision.Allowed {
				respondError(w, http.StatusPaymentRequired, "quota_exceeded", decision.Reason)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
