// Package quota is the evaluation engine that decides whether a tenant's
// proposed usage is admitted, and records it when it is.
//
// One call does everything:
//
//	decision, err := svc.CheckAndLog(ctx, tenantID, quota.FeatureOrderCreated,
//	    usage.Delta{Orders: 1})
//	if err != nil {
//	    return err // infrastructure failure
//	}
//	if !decision.Allowed {
//	    return fmt.Errorf("rejected: %s", decision.Reason)
//	}
//
// The engine resolves the tenant's current plan, lazily opens the usage
// period for the current billing window, and hands the delta to the usage
// store's atomic conditional increment. Admission is all-or-nothing across
// a compound delta: if any counter would pass its ceiling, nothing is
// metered and no log row is written. Admitted deltas append exactly one
// usage log row and run the alerting policy with the pre/post counters.
//
// Denials are data, not errors. A tenant without a subscription, a limit
// the plan disables, and an exceeded ceiling all come back as a Decision
// with Allowed false and a reason naming the limit; only storage failures
// and boundary violations (unknown feature, negative non-storage delta)
// surface as errors.
//
// Standing resources (active drivers, trucks, organizations) are checked by
// CanCreate against live counts registered in a CounterRegistry, mirroring
// how the fleet CRUD layer owns those aggregates.
package quota
