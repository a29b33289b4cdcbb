package alert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetward/quotakit/pkg/alert"
	"github.com/fleetward/quotakit/pkg/plan"
)

func bandsOf(crossings []alert.Crossing) []alert.Band {
	var out []alert.Band
	for _, c := range crossings {
		out = append(out, c.Band)
	}
	return out
}

func TestPolicy_Evaluate(t *testing.T) {
	t.Parallel()

	policy := alert.NewPolicy(nil) // default bands 75, 90, 100

	tests := []struct {
		name     string
		oldValue int64
		newValue int64
		limit    int64
		want     []alert.Band
	}{
		{"no crossing below first band", 0, 50, 100, nil},
		{"crosses 75", 70, 80, 100, []alert.Band{75}},
		{"landing exactly on a band crosses it", 74, 75, 100, []alert.Band{75}},
		{"already at band does not re-fire", 75, 80, 100, nil},
		{"one jump over several bands", 10, 95, 100, []alert.Band{75, 90}},
		{"jump to the ceiling fires everything", 0, 100, 100, []alert.Band{75, 90, 100}},
		{"decrease never alerts", 95, 50, 100, nil},
		{"no change never alerts", 80, 80, 100, nil},
		{"unlimited never alerts", 0, 1_000_000, -1, nil},
		{"disabled never alerts", 0, 10, 0, nil},
		// 74.9% -> 75.1% with a limit that does not divide evenly: the
		// comparison is exact, so the band fires on the true crossing.
		{"exact rational comparison", 2246, 2254, 3000, []alert.Band{75}},
		{"no phantom crossing from rounding", 2240, 2249, 3000, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := policy.Evaluate(plan.LimitMonthlyTokens, tt.oldValue, tt.newValue, tt.limit)
			assert.Equal(t, tt.want, bandsOf(got))
		})
	}
}

func TestPolicy_EvaluateCarriesValues(t *testing.T) {
	t.Parallel()

	policy := alert.NewPolicy(nil)
	crossings := policy.Evaluate(plan.LimitMonthlyTokens, 49990, 50000, 50000)

	require.Len(t, crossings, 1)
	c := crossings[0]
	assert.Equal(t, plan.LimitMonthlyTokens, c.Limit)
	assert.Equal(t, alert.Band(100), c.Band)
	assert.Equal(t, int64(50000), c.UsedValue)
	assert.Equal(t, int64(50000), c.LimitValue)
}

func TestNewPolicy_FiltersBands(t *testing.T) {
	t.Parallel()

	// Out-of-range bands are dropped; an all-invalid set falls back to defaults.
	policy := alert.NewPolicy([]alert.Band{-5, 0, 50, 150})
	got := policy.Evaluate(plan.LimitMonthlyOrders, 0, 100, 100)
	assert.Equal(t, []alert.Band{50}, bandsOf(got))

	fallback := alert.NewPolicy([]alert.Band{-5, 101})
	got = fallback.Evaluate(plan.LimitMonthlyOrders, 0, 100, 100)
	assert.Equal(t, []alert.Band{75, 90, 100}, bandsOf(got))
}
