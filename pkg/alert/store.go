package alert

import (
	"context"

	"github.com/google/uuid"
)

// Store persists quota alerts.
//
// Record is idempotent per (period, limit, band): once a band has alerted
// within a period it stays armed-off for the rest of that period, even if
// usage drops below the band and crosses it again. A new period re-arms
// every band. Alerts are never auto-deleted.
type Store interface {
	// Record persists the alert unless one already exists for the same
	// (period, limit, band). Returns true when a new row was created.
	Record(ctx context.Context, a *Alert) (created bool, err error)

	// ListByTenant returns all alerts for a tenant, newest first.
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Alert, error)

	// Unacknowledged returns the tenant's unacknowledged alerts, newest first.
	Unacknowledged(ctx context.Context, tenantID uuid.UUID) ([]Alert, error)

	// Acknowledge marks an alert as seen. Returns ErrAlertNotFound if absent.
	Acknowledge(ctx context.Context, alertID uuid.UUID) error
}
