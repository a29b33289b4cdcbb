// Package plan defines the subscription plan catalog and resolves tenant
// limits from it.
//
// A plan is a named bundle of numeric limits plus pricing. Limits come in
// two classes: standing resource ceilings (active drivers, trucks,
// organizations) and per-billing-period metered ceilings (orders, licenses,
// tokens, storage).
//
// Limit values follow a strict convention:
//
//   - a positive value is the ceiling;
//   - 0 or an absent key means the feature is disabled for the plan;
//   - Unlimited (-1) removes the ceiling, and is only valid on plans marked
//     IsCustom — a regular plan can never be accidentally unlimited.
//
// The Resolver joins a tenant's current subscription to the catalog:
//
//	src := plan.NewYAMLSource("plans.yaml")
//	resolver, err := plan.NewResolver(ctx, src, subStore,
//	    plan.WithCache(plan.NewRedisCache(redisClient), 5*time.Minute))
//
//	limit, err := resolver.GetLimit(ctx, tenantID, plan.LimitMonthlyTokens)
//
// A tenant without a current subscription resolves to
// ErrNoActiveSubscription: no subscription means no usage, never unlimited.
package plan
