package plan

import "errors"

// Domain errors for plan and limit resolution
var (
	ErrPlanNotFound             = errors.New("plan.errors.plan_not_found")
	ErrUnknownLimit             = errors.New("plan.errors.unknown_limit")
	ErrInvalidPlanConfiguration = errors.New("plan.errors.invalid_plan_configuration")
	ErrNoActiveSubscription     = errors.New("plan.errors.no_active_subscription")
	ErrFailedToLoadPlans        = errors.New("plan.errors.failed_to_load_plans")
)
