package plan

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fleetward/quotakit/pkg/subscription"
)

// yamlSource loads the plan catalog from a YAML file. Plans are reference
// data that changes at deploy time, so a config file keeps them reviewable
// next to the rest of the deployment configuration.
//
// File shape:
//
//	plans:
//	  - id: starter
//	    name: Starter
//	    cycle: monthly
//	    price: {amount: 4900, currency: USD}
//	    limits:
//	      max_active_drivers: 10
//	      monthly_order_limit: 500
//	      monthly_token_limit: 50000
//	      storage_limit_mb: 1024
//
// An explicit null limit on a plan marked is_custom means unlimited; the
// value is normalized to the Unlimited sentinel at load time. On any other
// plan a null is rejected.
type yamlSource struct {
	path string
}

// NewYAMLSource returns a Source reading the plan catalog from path.
func NewYAMLSource(path string) Source {
	return &yamlSource{path: path}
}

type yamlCatalog struct {
	Plans []yamlPlan `yaml:"plans"`
}

// yamlPlan mirrors Plan but takes nullable limits so the custom-plan
// "null means unlimited" convention can be expressed in the file.
type yamlPlan struct {
	ID          string                    `yaml:"id"`
	Name        string                    `yaml:"name"`
	Description string                    `yaml:"description"`
	Price       subscription.Money        `yaml:"price"`
	Cycle       subscription.BillingCycle `yaml:"cycle"`
	Limits      map[LimitName]*int64      `yaml:"limits"`
	IsCustom    bool                      `yaml:"is_custom"`
	Public      bool                      `yaml:"public"`
}

func (s *yamlSource) Load(ctx context.Context) (map[string]Plan, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	var catalog yamlCatalog
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	plans := make(map[string]Plan, len(catalog.Plans))
	for _, yp := range catalog.Plans {
		p := Plan{
			ID:          yp.ID,
			Name:        yp.Name,
			Description: yp.Description,
			Price:       yp.Price,
			Cycle:       yp.Cycle,
			IsCustom:    yp.IsCustom,
			Public:      yp.Public,
			Limits:      make(map[LimitName]int64, len(yp.Limits)),
		}
		for name, v := range yp.Limits {
			switch {
			case v != nil:
				p.Limits[name] = *v
			case yp.IsCustom:
				p.Limits[name] = Unlimited
			default:
				return nil, errors.Join(ErrFailedToLoadPlans,
					fmt.Errorf("plan %s: null limit %s on a non-custom plan", p.ID, name))
			}
		}
		plans[p.ID] = p
	}
	return plans, nil
}
