package subscription

// BillingCycle represents the billing frequency for a tenant subscription.
// The cycle defines both how the tenant is charged and the window over
// which metered usage counters accumulate before resetting.
type BillingCycle string

const (
	CycleMonthly BillingCycle = "monthly"
	CycleAnnual  BillingCycle = "annual"
)

// Valid reports whether the cycle is one of the supported values.
func (c BillingCycle) Valid() bool {
	return c == CycleMonthly || c == CycleAnnual
}

// Money represents a monetary amount in the smallest currency unit.
// For example, $10.99 USD would be Amount: 1099, Currency: "USD".
type Money struct {
	Amount   int64  `json:"amount" yaml:"amount"`     // Amount in smallest currency unit (cents for USD)
	Currency string `json:"currency" yaml:"currency"` // ISO 4217 currency code
}
