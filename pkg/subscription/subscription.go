package subscription

import (
	"time"

	"github.com/google/uuid"
)

// Subscription binds a tenant to a plan for the window [StartDate, EndDate).
// Rows are immutable apart from activation flips: a renewal or plan change
// inserts a superseding row instead of rewriting the existing one, so the
// billing history stays intact.
type Subscription struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	PlanID        string
	BillingCycle  BillingCycle
	StartDate     time.Time
	EndDate       time.Time
	IsActive      bool
	ProviderSubID string // billing provider's subscription ID (empty for manually provisioned plans)
	CreatedAt     time.Time
}

// IsCurrentAt reports whether the subscription is the tenant's current one
// at the given instant: active and covering the instant.
func (s *Subscription) IsCurrentAt(at time.Time) bool {
	return s.IsActive && !at.Before(s.StartDate) && at.Before(s.EndDate)
}

// IsCurrent reports whether the subscription is current right now.
func (s *Subscription) IsCurrent() bool {
	return s.IsCurrentAt(time.Now().UTC())
}

// Advance moves t forward by one billing cycle. Months and years are
// calendar-based rather than fixed durations, with time.AddDate overflow
// normalization: a monthly cycle anchored on Jan 31 lands in early March.
func (c BillingCycle) Advance(t time.Time) time.Time {
	switch c {
	case CycleAnnual:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// PeriodWindow returns the billing-cycle window containing at, anchored at
// the subscription's start date and advanced by whole cycles. The returned
// window is half-open: [start, end).
//
// Metered usage counters accumulate within exactly one such window; a new
// window implies a fresh usage period.
func PeriodWindow(sub *Subscription, at time.Time) (start, end time.Time) {
	start = sub.StartDate
	end = sub.BillingCycle.Advance(start)
	for !at.Before(end) && end.Before(sub.EndDate) {
		start = end
		end = sub.BillingCycle.Advance(start)
	}
	// Never let a window spill past the subscription itself.
	if end.After(sub.EndDate) {
		end = sub.EndDate
	}
	return start, end
}
