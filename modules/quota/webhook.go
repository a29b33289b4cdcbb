package quota

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/fleetward/quotakit/pkg/logger"
	"github.com/fleetward/quotakit/pkg/subscription"
)

// maxWebhookBody caps billing webhook payloads at 1 MiB.
const maxWebhookBody = 1 << 20

type webhookHandler struct {
	provider  subscription.BillingProvider
	lifecycle *subscription.Lifecycle
	log       *slog.Logger
}

// handle verifies and applies a billing provider webhook. Unverifiable
// payloads get 401. Events the provider does not map are acknowledged with
// 200 so the provider stops retrying them.
func (h *webhookHandler) handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_payload", "failed to read webhook body")
		return
	}

	event, err := h.provider.ParseWebhook(r.Context(), payload, r.Header.Get("Paddle-Signature"))
	if err != nil {
		if errors.Is(err, subscription.ErrWebhookVerificationFailed) {
			h.log.WarnContext(r.Context(), "rejected unverifiable billing webhook", logger.Error(err))
			respondError(w, http.StatusUnauthorized, "verification_failed", "webhook signature verification failed")
			return
		}
		if errors.Is(err, subscription.ErrUnknownWebhookEvent) {
			respondJSON(w, http.StatusOK, map[string]any{"ignored": true})
			return
		}
		h.log.ErrorContext(r.Context(), "failed to parse billing webhook", logger.Error(err))
		respondError(w, http.StatusBadRequest, "invalid_payload", "failed to parse webhook payload")
		return
	}

	if err := h.lifecycle.HandleEvent(r.Context(), event); err != nil {
		h.log.ErrorContext(r.Context(), "failed to apply billing event",
			slog.String("event_type", string(event.Type)),
			slog.String("provider_event", event.ProviderEvent),
			logger.Error(err))
		// 500 makes the provider retry, which is what we want for transient
		// store failures.
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to apply billing event")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"processed": true})
}
