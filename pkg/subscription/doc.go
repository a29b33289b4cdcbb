// Package subscription manages tenant subscription rows and their billing
// lifecycle.
//
// A subscription binds one tenant to one plan for a half-open time window
// [StartDate, EndDate) with a billing cycle. At most one subscription per
// tenant is current at any instant; the Store enforces this with an overlap
// check on active rows. Rows are never rewritten: renewals and plan changes
// deactivate the current row and insert a superseding one, so the billing
// history is append-only.
//
// PeriodWindow derives the usage-accounting window for a subscription, the
// billing-cycle slice containing the given instant. The usage package opens
// exactly one usage period per such window.
//
// Billing provider integration is abstracted behind BillingProvider; a
// Paddle implementation is included. Lifecycle consumes the provider's
// normalized webhook events and applies them to the store:
//
//	provider, _ := subscription.NewPaddleProvider(cfg)
//	lifecycle := subscription.NewLifecycle(store, cycleResolver)
//
//	event, err := provider.ParseWebhook(ctx, payload, signature)
//	if err == nil {
//	    err = lifecycle.HandleEvent(ctx, event)
//	}
package subscription
