package quota

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fleetward/quotakit/pkg/alert"
	"github.com/fleetward/quotakit/pkg/logger"
	"github.com/fleetward/quotakit/pkg/quota"
	"github.com/fleetward/quotakit/pkg/subscription"
	"github.com/fleetward/quotakit/pkg/tenant"
)

type handlers struct {
	svc    *quota.Service
	alerts alert.Store
	log    *slog.Logger
}

// usage returns the tenant's current period snapshot: metered counters with
// limits and percentages, standing resource counts, and open alerts.
func (h *handlers) usage(w http.ResponseWriter, r *http.Request) {
	tn := tenant.MustFromContext(r.Context())

	snap, err := h.svc.Snapshot(r.Context(), tn.ID)
	if err != nil {
		if errors.Is(err, subscription.ErrNoCurrentSubscription) {
			respondError(w, http.StatusPaymentRequired, "no_subscription", "tenant has no active subscription")
			return
		}
		h.log.ErrorContext(r.Context(), "failed to build usage snapshot", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load usage")
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

func (h *handlers) listAlerts(w http.ResponseWriter, r *http.Request) {
	tn := tenant.MustFromContext(r.Context())

	alerts, err := h.alerts.ListByTenant(r.Context(), tn.ID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to list alerts", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load alerts")
		return
	}

	respondJSON(w, http.StatusOK, alerts)
}

func (h *handlers) acknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	tn := tenant.MustFromContext(r.Context())

	alertID, err := uuid.Parse(chi.URLParam(r, "alertID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_alert_id", "alert id must be a UUID")
		return
	}

	// Acknowledging a foreign tenant's alert must look identical to a miss.
	owned, err := h.ownsAlert(r, tn.ID, alertID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to check alert ownership", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to acknowledge alert")
		return
	}
	if !owned {
		respondError(w, http.StatusNotFound, "alert_not_found", "alert not found")
		return
	}

	if err := h.alerts.Acknowledge(r.Context(), alertID); err != nil {
		if errors.Is(err, alert.ErrAlertNotFound) {
			respondError(w, http.StatusNotFound, "alert_not_found", "alert not found")
			return
		}
		h.log.ErrorContext(r.Context(), "failed to acknowledge alert", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to acknowledge alert")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"acknowledged": true})
}

func (h *handlers) ownsAlert(r *http.Request, tenantID, alertID uuid.UUID) (bool, error) {
	alerts, err := h.alerts.ListByTenant(r.Context(), tenantID)
	if err != nil {
		return false, err
	}
	for i := range alerts {
		if alerts[i].ID == alertID {
			return true, nil
		}
	}
	return false, nil
}
