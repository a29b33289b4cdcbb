// Package usage persists per-tenant, per-billing-period usage counters and
// the append-only event log behind them.
//
// A Period accumulates four counters (orders processed, licenses processed,
// tokens used, storage MB). Exactly one period per tenant is open at any
// time; it is created lazily on the first usage event of a billing cycle
// and frozen when the cycle rolls over. Every admitted event also appends
// one Log row, so aggregates can always be cross-checked against the trail.
//
// The Store contract centers on ApplyDelta: an all-or-nothing conditional
// increment that checks every proposed counter against its ceiling and
// applies the whole delta atomically, or nothing at all. The PostgreSQL
// implementation does this in one guarded UPDATE; the in-memory one holds a
// mutex across check+increment. Either way, two concurrent callers can
// never both slip past a ceiling on a stale read.
//
// Only increases are guarded. A negative storage delta (file deletion) is
// always admitted and floors at zero.
package usage
