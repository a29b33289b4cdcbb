package quota

import "errors"

// Domain errors for quota evaluation
var (
	ErrInvalidFeature           = errors.New("quota.errors.invalid_feature")
	ErrInvalidDelta             = errors.New("quota.errors.invalid_delta")
	ErrInvalidResource          = errors.New("quota.errors.invalid_resource")
	ErrNoCounterRegistered      = errors.New("quota.errors.no_counter_registered")
	ErrLimitReached             = errors.New("quota.errors.limit_reached")
	ErrFeatureDisabled          = errors.New("quota.errors.feature_disabled")
	ErrTokenMeterUnavailable    = errors.New("quota.errors.token_meter_unavailable")
	ErrFailedToCountResource    = errors.New("quota.errors.failed_to_count_resource")
	ErrConflictRetriesExhausted = errors.New("quota.errors.conflict_retries_exhausted")
)
