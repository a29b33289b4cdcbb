package plan

// LimitName identifies a plan-defined quota dimension.
type LimitName string

// Standing resource limits: ceilings on how many of an entity may exist at
// once. Checked against live counts, not period counters.
const (
	LimitMaxActiveDrivers LimitName = "max_active_drivers"
	LimitMaxActiveTrucks  LimitName = "max_active_trucks"
	LimitMaxOrganizations LimitName = "max_organizations"
)

// Metered limits: ceilings on usage accumulated within one billing period.
const (
	LimitMonthlyOrders   LimitName = "monthly_order_limit"
	LimitMonthlyLicenses LimitName = "monthly_license_limit"
	LimitMonthlyTokens   LimitName = "monthly_token_limit"
	LimitStorageMB       LimitName = "storage_limit_mb"
)

// Limit value sentinels.
const (
	// Unlimited marks a limit with no ceiling (-1 chosen for SQL compatibility).
	// Only custom plans may carry it; the zero/absent case always means disabled.
	Unlimited int64 = -1

	// Disabled marks a feature that the plan does not include at all.
	Disabled int64 = 0
)

// KnownLimits enumerates every limit name a plan may define.
var KnownLimits = []LimitName{
	LimitMaxActiveDrivers,
	LimitMaxActiveTrucks,
	LimitMaxOrganizations,
	LimitMonthlyOrders,
	LimitMonthlyLicenses,
	LimitMonthlyTokens,
	LimitStorageMB,
}
