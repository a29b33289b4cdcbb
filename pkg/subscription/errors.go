package subscription

import "errors"

// Domain errors for subscription operations
var (
	ErrSubscriptionNotFound  = errors.New("subscription.errors.subscription_not_found")
	ErrNoCurrentSubscription = errors.New("subscription.errors.no_current_subscription")
	ErrSubscriptionOverlap   = errors.New("subscription.errors.subscription_overlap")
	ErrInvalidBillingCycle   = errors.New("subscription.errors.invalid_billing_cycle")
	ErrInvalidWindow         = errors.New("subscription.errors.invalid_window")

	// Billing provider errors
	ErrWebhookVerificationFailed = errors.New("subscription.errors.webhook_verification_failed")
	ErrUnknownWebhookEvent       = errors.New("subscription.errors.unknown_webhook_event")
	ErrFailedToCreateCheckout    = errors.New("subscription.errors.failed_to_create_checkout")
	ErrFailedToGetPortalLink     = errors.New("subscription.errors.failed_to_get_portal_link")
)
