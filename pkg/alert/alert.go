package alert

import (
	"time"

	"github.com/google/uuid"

	"github.com/fleetward/quotakit/pkg/plan"
)

// Band is a percentage-of-limit boundary that triggers an alert when usage
// crosses it upward.
type Band int

// DefaultBands are the threshold bands observed in production tenants:
// early warning, last call, and hard stop.
var DefaultBands = []Band{75, 90, 100}

// Alert is one (tenant, threshold-crossing) record. Alerts are advisory:
// they never deny an operation, and they are created at most once per
// (period, limit, band).
type Alert struct {
	ID             uuid.UUID      `json:"id"`
	TenantID       uuid.UUID      `json:"tenant_id"`
	PeriodID       uuid.UUID      `json:"period_id"`
	Limit          plan.LimitName `json:"limit"`
	Band           Band           `json:"band"`
	UsedValue      int64          `json:"used_value"`
	LimitValue     int64          `json:"limit_value"`
	Acknowledged   bool           `json:"acknowledged"`
	AcknowledgedAt *time.Time     `json:"acknowledged_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Crossing reports one upward band crossing produced by a usage update.
type Crossing struct {
	Limit      plan.LimitName
	Band       Band
	UsedValue  int64
	LimitValue int64
}

// Policy derives threshold crossings from counter updates. The zero value
// is not usable; construct with NewPolicy.
type Policy struct {
	bands []Band
}

// NewPolicy returns a Policy with the given bands; nil or empty falls back
// to DefaultBands. Bands outside (0, 100] are ignored.
func NewPolicy(bands []Band) *Policy {
	var valid []Band
	for _, b := range bands {
		if b > 0 && b <= 100 {
			valid = append(valid, b)
		}
	}
	if len(valid) == 0 {
		valid = append([]Band(nil), DefaultBands...)
	}
	return &Policy{bands: valid}
}

// Evaluate returns the bands crossed upward by moving the named limit's
// usage from oldValue to newValue. A band is crossed when the old
// percentage sat below it and the new percentage reaches it. Unlimited or
// disabled limits never alert.
//
// The comparison is exact rational arithmetic (value*100 vs band*limit), so
// no rounding can produce a phantom crossing.
func (p *Policy) Evaluate(limit plan.LimitName, oldValue, newValue, limitValue int64) []Crossing {
	if limitValue <= 0 || newValue <= oldValue {
		return nil
	}

	var out []Crossing
	for _, band := range p.bands {
		threshold := int64(band) * limitValue
		if oldValue*100 < threshold && newValue*100 >= threshold {
			out = append(out, Crossing{
				Limit:      limit,
				Band:       band,
				UsedValue:  newValue,
				LimitValue: limitValue,
			})
		}
	}
	return out
}
