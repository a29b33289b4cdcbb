package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// CycleResolver maps a plan ID to its billing cycle. Injected so this
// package does not depend on the plan catalog.
type CycleResolver func(planID string) (BillingCycle, error)

// Lifecycle drives subscription rows from billing provider events and
// explicit provisioning calls. All transitions follow the supersede rule:
// a renewal or plan change deactivates the current row and inserts a fresh
// one instead of mutating history.
type Lifecycle struct {
	store  Store
	cycles CycleResolver
	log    *slog.Logger
	now    func() time.Time
}

// LifecycleOption configures a Lifecycle.
type LifecycleOption func(*Lifecycle)

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) LifecycleOption {
	return func(l *Lifecycle) { l.now = now }
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) LifecycleOption {
	return func(l *Lifecycle) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLifecycle creates a subscription lifecycle service.
// Panics on nil store or cycle resolver to fail fast during initialization.
func NewLifecycle(store Store, cycles CycleResolver, opts ...LifecycleOption) *Lifecycle {
	if store == nil {
		panic("subscription: Store is required")
	}
	if cycles == nil {
		panic("subscription: CycleResolver is required")
	}

	l := &Lifecycle{
		store:  store,
		cycles: cycles,
		log:    slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Provision creates a current subscription for a tenant starting now,
// covering one billing cycle. Used for signup on free/manual plans where no
// provider event will arrive.
func (l *Lifecycle) Provision(ctx context.Context, tenantID uuid.UUID, planID string) (*Subscription, error) {
	return l.startSubscription(ctx, tenantID, planID, "")
}

// HandleEvent applies a normalized billing event to the subscription store.
func (l *Lifecycle) HandleEvent(ctx context.Context, event *WebhookEvent) error {
	tenantID, err := uuid.Parse(event.TenantID)
	if err != nil {
		return fmt.Errorf("invalid tenant ID in billing event: %w", err)
	}

	switch event.Type {
	case EventSubscriptionCreated:
		sub, err := l.startSubscription(ctx, tenantID, event.PlanID, event.SubscriptionID)
		if err != nil {
			// A duplicate provider event (created + transaction.completed)
			// races itself; overlap here means the row already exists.
			if errors.Is(err, ErrSubscriptionOverlap) {
				return nil
			}
			return err
		}
		l.log.InfoContext(ctx, "subscription created",
			slog.String("tenant_id", tenantID.String()),
			slog.String("plan_id", sub.PlanID))
		return nil

	case EventSubscriptionRenewed, EventSubscriptionUpdated:
		// Supersede: close the current row and open a new one for the
		// (possibly different) plan, starting a fresh billing window.
		current, err := l.store.Current(ctx, tenantID, l.now())
		if err != nil && !errors.Is(err, ErrNoCurrentSubscription) {
			return err
		}
		if current != nil {
			if err := l.store.Deactivate(ctx, current.ID); err != nil {
				return err
			}
		}
		sub, err := l.startSubscription(ctx, tenantID, event.PlanID, event.SubscriptionID)
		if err != nil {
			return err
		}
		l.log.InfoContext(ctx, "subscription superseded",
			slog.String("tenant_id", tenantID.String()),
			slog.String("plan_id", sub.PlanID))
		return nil

	case EventSubscriptionCancelled, EventPaymentFailed:
		current, err := l.store.Current(ctx, tenantID, l.now())
		if err != nil {
			if errors.Is(err, ErrNoCurrentSubscription) {
				return nil
			}
			return err
		}
		if err := l.store.Deactivate(ctx, current.ID); err != nil {
			return err
		}
		l.log.InfoContext(ctx, "subscription deactivated",
			slog.String("tenant_id", tenantID.String()),
			slog.String("reason", string(event.Type)))
		return nil

	default:
		return errors.Join(ErrUnknownWebhookEvent, fmt.Errorf("event type %q", event.Type))
	}
}

func (l *Lifecycle) startSubscription(ctx context.Context, tenantID uuid.UUID, planID, providerSubID string) (*Subscription, error) {
	cycle, err := l.cycles(planID)
	if err != nil {
		return nil, err
	}

	start := l.now()
	sub := &Subscription{
		ID:            uuid.New(),
		TenantID:      tenantID,
		PlanID:        planID,
		BillingCycle:  cycle,
		StartDate:     start,
		EndDate:       cycle.Advance(start),
		IsActive:      true,
		ProviderSubID: providerSubID,
		CreatedAt:     start,
	}
	if err := l.store.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}
