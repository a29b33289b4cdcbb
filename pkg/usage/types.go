package usage

import (
	"time"

	"github.com/google/uuid"
)

// Counter identifies one metered counter within a usage period.
type Counter string

const (
	CounterOrders    Counter = "orders_processed"
	CounterLicenses  Counter = "licenses_processed"
	CounterTokens    Counter = "tokens_used"
	CounterStorageMB Counter = "storage_used_mb"
)

// counterOrder fixes the evaluation order so denial messages always name
// the same counter for the same input.
var counterOrder = []Counter{CounterOrders, CounterLicenses, CounterTokens, CounterStorageMB}

// Counters is a snapshot of a period's accumulated usage.
type Counters struct {
	Orders    int64
	Licenses  int64
	Tokens    int64
	StorageMB int64
}

// Get returns the value of one counter.
func (c Counters) Get(name Counter) int64 {
	switch name {
	case CounterOrders:
		return c.Orders
	case CounterLicenses:
		return c.Licenses
	case CounterTokens:
		return c.Tokens
	default:
		return c.StorageMB
	}
}

// Delta is a proposed usage increment. All fields default to zero, meaning
// the counter is untouched. StorageMB is the only field that may be
// negative: deletions return storage to the tenant.
type Delta struct {
	Orders    int64
	Licenses  int64
	Tokens    int64
	StorageMB int64
}

// IsZero reports whether the delta touches no counter.
func (d Delta) IsZero() bool {
	return d.Orders == 0 && d.Licenses == 0 && d.Tokens == 0 && d.StorageMB == 0
}

// Get returns the delta for one counter.
func (d Delta) Get(name Counter) int64 {
	switch name {
	case CounterOrders:
		return d.Orders
	case CounterLicenses:
		return d.Licenses
	case CounterTokens:
		return d.Tokens
	default:
		return d.StorageMB
	}
}

// Limits carries the resolved ceilings into the conditional increment.
// NoCeiling disables the guard for a counter; increments past a finite
// ceiling are rejected, decrements always pass.
type Limits struct {
	Orders    int64
	Licenses  int64
	Tokens    int64
	StorageMB int64
}

// NoCeiling disables the limit guard for a counter.
const NoCeiling int64 = -1

// Unguarded returns Limits with every guard disabled.
func Unguarded() Limits {
	return Limits{Orders: NoCeiling, Licenses: NoCeiling, Tokens: NoCeiling, StorageMB: NoCeiling}
}

// Get returns the ceiling for one counter.
func (l Limits) Get(name Counter) int64 {
	switch name {
	case CounterOrders:
		return l.Orders
	case CounterLicenses:
		return l.Licenses
	case CounterTokens:
		return l.Tokens
	default:
		return l.StorageMB
	}
}

// Period is one row per (tenant, billing period) accumulating metered
// usage. Exactly one period per tenant is open at any time; counters are
// monotonically non-decreasing within a period except storage, which is
// delta-based and may shrink.
type Period struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	PeriodStart time.Time
	PeriodEnd   time.Time
	Counters
	ClosedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Open reports whether the period still accepts usage.
func (p *Period) Open() bool {
	return p.ClosedAt == nil
}

// Log is one append-only usage event, the audit trail from which period
// aggregates can be cross-checked. Rows are write-once.
type Log struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	PeriodID   uuid.UUID
	Feature    string
	Orders     int64
	Licenses   int64
	Tokens     int64
	StorageMB  int64 // signed delta, negative for freed space
	OccurredAt time.Time
}
