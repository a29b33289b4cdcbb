package plan

import (
	"errors"
	"fmt"
	"slices"

	"github.com/fleetward/quotakit/pkg/subscription"
)

// Plan is a named bundle of numeric limits plus pricing. Plans are immutable
// reference data managed by administrators; tenants reference them by ID
// through their subscription rows.
type Plan struct {
	ID          string                    `yaml:"id"`
	Name        string                    `yaml:"name"`
	Description string                    `yaml:"description"`
	Price       subscription.Money        `yaml:"price"`
	Cycle       subscription.BillingCycle `yaml:"cycle"`
	Limits      map[LimitName]int64       `yaml:"limits"`
	IsCustom    bool                      `yaml:"is_custom"` // custom plans may carry Unlimited limits
	Public      bool                      `yaml:"public"`    // available for self-service signup
}

// Limit returns the plan's value for the named limit. An absent key means
// the feature is disabled, never unlimited.
func (p Plan) Limit(name LimitName) int64 {
	v, ok := p.Limits[name]
	if !ok {
		return Disabled
	}
	return v
}

// validatePlans checks plan configurations for internal consistency.
func validatePlans(plans map[string]Plan) error {
	for planID, p := range plans {
		if p.ID != planID {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan ID mismatch: map key %s != plan.ID %s", planID, p.ID))
		}
		if !p.Cycle.Valid() {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has invalid billing cycle %q", planID, p.Cycle))
		}
		for name, v := range p.Limits {
			if !slices.Contains(KnownLimits, name) {
				return errors.Join(ErrInvalidPlanConfiguration,
					fmt.Errorf("plan %s defines unknown limit %q", planID, name))
			}
			if v < 0 && v != Unlimited {
				return errors.Join(ErrInvalidPlanConfiguration,
					fmt.Errorf("plan %s has negative limit %s: %d", planID, name, v))
			}
			if v == Unlimited && !p.IsCustom {
				return errors.Join(ErrInvalidPlanConfiguration,
					fmt.Errorf("plan %s carries an unlimited %s but is not custom", planID, name))
			}
		}
	}
	return nil
}
