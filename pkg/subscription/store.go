package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines the interface for subscription persistence.
//
// Implementations must preserve the core invariant: at most one subscription
// per tenant is current at any instant (active, with a window covering that
// instant). Create enforces this by rejecting rows whose window overlaps an
// existing active row for the same tenant.
type Store interface {
	// Current returns the tenant's current subscription at the given
	// instant. Returns ErrNoCurrentSubscription if no active subscription
	// covers the instant.
	Current(ctx context.Context, tenantID uuid.UUID, at time.Time) (*Subscription, error)

	// Create persists a new subscription row. Returns ErrSubscriptionOverlap
	// if an active row for the same tenant overlaps the new window, and
	// ErrInvalidBillingCycle or ErrInvalidWindow for malformed rows.
	Create(ctx context.Context, sub *Subscription) error

	// Deactivate flips IsActive off for the given subscription.
	// Deactivation is the only permitted mutation of an existing row.
	Deactivate(ctx context.Context, id uuid.UUID) error

	// ListByTenant returns all subscription rows for a tenant, newest first.
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Subscription, error)
}

// validate checks a subscription row before insertion.
func validate(sub *Subscription) error {
	if !sub.BillingCycle.Valid() {
		return ErrInvalidBillingCycle
	}
	if !sub.StartDate.Before(sub.EndDate) {
		return ErrInvalidWindow
	}
	return nil
}
