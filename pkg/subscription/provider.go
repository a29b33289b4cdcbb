package subscription

import (
	"context"
	"time"
)

// BillingProvider abstracts the hosted-billing vendor (Paddle, Stripe, ...).
// The provider owns checkout and payment collection; this package only
// consumes the normalized lifecycle events it emits.
type BillingProvider interface {
	// CreateCheckoutLink creates a hosted checkout session for a plan.
	CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error)

	// GetCustomerPortalLink returns a temporary customer-portal link where
	// the tenant can update payment methods or cancel.
	GetCustomerPortalLink(ctx context.Context, sub *Subscription) (*PortalLink, error)

	// ParseWebhook verifies the signature and normalizes the payload.
	// Must reject unverifiable payloads with ErrWebhookVerificationFailed.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
}

// CheckoutRequest contains data needed to create a checkout session.
type CheckoutRequest struct {
	PriceID    string // provider's price identifier for the plan
	TenantID   string // internal tenant ID, echoed back in webhooks
	Email      string // optional billing email
	SuccessURL string
	CancelURL  string
}

// CheckoutLink represents a hosted checkout session.
type CheckoutLink struct {
	URL       string
	SessionID string
	ExpiresAt time.Time
}

// PortalLink represents a customer portal session.
type PortalLink struct {
	URL       string
	ExpiresAt time.Time
}

// EventType is the normalized billing event type. Provider implementations
// map their vendor-specific event names onto these.
type EventType string

const (
	EventSubscriptionCreated   EventType = "subscription_created"
	EventSubscriptionRenewed   EventType = "subscription_renewed"
	EventSubscriptionUpdated   EventType = "subscription_updated"
	EventSubscriptionCancelled EventType = "subscription_cancelled"
	EventPaymentFailed         EventType = "payment_failed"
)

// WebhookEvent is a normalized billing event.
type WebhookEvent struct {
	Type           EventType
	ProviderEvent  string // original provider event name
	SubscriptionID string // provider's subscription ID
	TenantID       string // internal tenant ID carried in custom data
	PlanID         string // plan/price the tenant subscribed to
	Raw            map[string]any
}
