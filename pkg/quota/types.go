package quota

import (
	"context"

	"github.com/google/uuid"

	"github.com/fleetward/quotakit/pkg/plan"
	"github.com/fleetward/quotakit/pkg/usage"
)

// Feature tags identify which quota dimensions an event affects. Callers
// pass one per CheckAndLog call; unknown tags are rejected at the boundary.
type Feature string

const (
	FeatureFileUpload       Feature = "file_upload"
	FeatureOrderCreated     Feature = "order_created"
	FeatureLicenseProcessed Feature = "license_processed"
	FeatureTokenUsage       Feature = "token_usage"
)

// Valid reports whether the feature tag is recognized.
func (f Feature) Valid() bool {
	switch f {
	case FeatureFileUpload, FeatureOrderCreated, FeatureLicenseProcessed, FeatureTokenUsage:
		return true
	}
	return false
}

// Decision is the outcome of a quota evaluation. Denials are decisions, not
// errors: the calling workflow chooses how to present them.
type Decision struct {
	Allowed bool
	Reason  string         // human-readable denial reason, empty when allowed
	Limit   plan.LimitName // the limit that denied the call, empty when allowed
}

// allow is the affirmative decision.
var allow = Decision{Allowed: true}

func deny(limit plan.LimitName, reason string) Decision {
	return Decision{Allowed: false, Limit: limit, Reason: reason}
}

// Resource is a standing countable entity guarded by a plan ceiling. Unlike
// metered features, standing resources are compared against live counts.
type Resource string

const (
	ResourceDrivers       Resource = "drivers"
	ResourceTrucks        Resource = "trucks"
	ResourceOrganizations Resource = "organizations"
)

// resourceLimits maps standing resources to their plan limit names.
var resourceLimits = map[Resource]plan.LimitName{
	ResourceDrivers:       plan.LimitMaxActiveDrivers,
	ResourceTrucks:        plan.LimitMaxActiveTrucks,
	ResourceOrganizations: plan.LimitMaxOrganizations,
}

// counterLimits maps metered counters to their plan limit names.
var counterLimits = map[usage.Counter]plan.LimitName{
	usage.CounterOrders:    plan.LimitMonthlyOrders,
	usage.CounterLicenses:  plan.LimitMonthlyLicenses,
	usage.CounterTokens:    plan.LimitMonthlyTokens,
	usage.CounterStorageMB: plan.LimitStorageMB,
}

// CounterFunc returns the current live count of a standing resource for a
// tenant. Should be fast: an indexed aggregate or a cached value.
type CounterFunc func(ctx context.Context, tenantID uuid.UUID) (int64, error)

// CounterRegistry maps standing resources to their CounterFuncs.
// Not thread-safe: register all counters at startup only.
type CounterRegistry map[Resource]CounterFunc

// NewRegistry returns a new, empty CounterRegistry.
func NewRegistry() CounterRegistry {
	return make(CounterRegistry)
}

// Register sets or replaces the CounterFunc for the resource. Panics on nil fn.
func (r CounterRegistry) Register(res Resource, fn CounterFunc) {
	if fn == nil {
		panic("quota: CounterFunc cannot be nil for resource " + string(res))
	}
	r[res] = fn
}

// UsageInfo pairs a current value with its resolved limit for display.
type UsageInfo struct {
	Used    int64 `json:"used"`
	Limit   int64 `json:"limit"`   // -1 for unlimited, 0 for disabled
	Percent int   `json:"percent"` // -1 for unlimited, capped at 100
}

// percentOf computes used as a percentage of limit following the display
// conventions above.
func percentOf(used, limit int64) int {
	if limit == plan.Unlimited {
		return -1
	}
	if limit <= 0 {
		return 100
	}
	return min(int((used*100)/limit), 100)
}
