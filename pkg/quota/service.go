package quota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fleetward/quotakit/pkg/alert"
	"github.com/fleetward/quotakit/pkg/plan"
	"github.com/fleetward/quotakit/pkg/subscription"
	"github.com/fleetward/quotakit/pkg/usage"
)

// conflictRetries bounds how often a CheckAndLog call is retried when the
// usage row moves underneath it before surfacing the conflict.
const conflictRetries = 3

// Service is the quota evaluation engine. It joins the plan resolver, the
// subscription store, the usage store, and the alerting policy into one
// check-and-record operation per usage event.
type Service struct {
	resolver plan.Resolver
	subs     subscription.Store
	store    usage.Store
	alerts   alert.Store
	policy   *alert.Policy
	counters CounterRegistry
	log      *slog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithAlertPolicy overrides the default 75/90/100 threshold bands.
func WithAlertPolicy(p *alert.Policy) Option {
	return func(s *Service) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithCounters registers standing-resource counters for CanCreate checks.
func WithCounters(reg CounterRegistry) Option {
	return func(s *Service) {
		if reg != nil {
			s.counters = reg
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the quota engine. Panics on nil required dependencies
// to fail fast during initialization.
func NewService(resolver plan.Resolver, subs subscription.Store, store usage.Store, alerts alert.Store, opts ...Option) *Service {
	if resolver == nil {
		panic("quota: plan.Resolver is required")
	}
	if subs == nil {
		panic("quota: subscription.Store is required")
	}
	if store == nil {
		panic("quota: usage.Store is required")
	}
	if alerts == nil {
		panic("quota: alert.Store is required")
	}

	s := &Service{
		resolver: resolver,
		subs:     subs,
		store:    store,
		alerts:   alerts,
		policy:   alert.NewPolicy(nil),
		counters: NewRegistry(),
		log:      slog.Default(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckAndLog evaluates a proposed usage delta against the tenant's plan,
// and on admission records it atomically: counters incremented, one usage
// log appended, threshold alerts emitted.
//
// Admission is all-or-nothing across the delta's counters; a compound event
// is never partially metered. Denials come back as a Decision with a nil
// error — only infrastructure failures are errors.
func (s *Service) CheckAndLog(ctx context.Context, tenantID uuid.UUID, feature Feature, delta usage.Delta) (Decision, error) {
	if !feature.Valid() {
		return Decision{}, errors.Join(ErrInvalidFeature, fmt.Errorf("feature %q", feature))
	}
	// Storage is the only counter that may shrink.
	if delta.Orders < 0 || delta.Licenses < 0 || delta.Tokens < 0 {
		return Decision{}, ErrInvalidDelta
	}

	now := s.now()
	sub, err := s.subs.Current(ctx, tenantID, now)
	if err != nil {
		if errors.Is(err, subscription.ErrNoCurrentSubscription) {
			s.log.InfoContext(ctx, "quota denied: no active subscription",
				slog.String("tenant_id", tenantID.String()),
				slog.String("feature", string(feature)))
			return deny("", "no active subscription: all usage is suspended until one is provisioned"), nil
		}
		return Decision{}, err
	}

	currentPlan, err := s.resolver.Plan(sub.PlanID)
	if err != nil {
		return Decision{}, err
	}

	limits, denied := s.resolveLimits(currentPlan, delta)
	if denied != nil {
		s.log.InfoContext(ctx, "quota denied: feature disabled",
			slog.String("tenant_id", tenantID.String()),
			slog.String("limit", string(denied.Limit)))
		return *denied, nil
	}

	start, end := subscription.PeriodWindow(sub, now)

	for attempt := 0; ; attempt++ {
		period, err := s.store.GetOrCreate(ctx, tenantID, start, end)
		if err != nil {
			return Decision{}, err
		}

		before, after, err := s.store.ApplyDelta(ctx, period.ID, delta, limits)
		switch {
		case err == nil:
			return s.recordAdmission(ctx, tenantID, period.ID, feature, delta, before, after, currentPlan)

		case errors.Is(err, usage.ErrQuotaExceeded):
			var exceeded *usage.LimitExceededError
			if !errors.As(err, &exceeded) {
				return Decision{}, err
			}
			limitName := counterLimits[exceeded.Counter]
			s.log.InfoContext(ctx, "quota denied: limit exceeded",
				slog.String("tenant_id", tenantID.String()),
				slog.String("feature", string(feature)),
				slog.String("limit", string(limitName)),
				slog.Int64("current", exceeded.Current),
				slog.Int64("delta", exceeded.Delta),
				slog.Int64("limit_value", exceeded.Limit))
			return deny(limitName, fmt.Sprintf("%s exceeded: %d used of %d, requested %d more",
				limitName, exceeded.Current, exceeded.Limit, exceeded.Delta)), nil

		case errors.Is(err, usage.ErrConcurrentUpdate), errors.Is(err, usage.ErrPeriodClosed):
			// A contending writer or a rollover landed between our read and
			// write. Both are transient: re-resolve the period and retry.
			if attempt >= conflictRetries {
				s.log.WarnContext(ctx, "quota check exhausted conflict retries",
					slog.String("tenant_id", tenantID.String()),
					slog.String("feature", string(feature)))
				return Decision{}, errors.Join(ErrConflictRetriesExhausted, err)
			}

		default:
			return Decision{}, err
		}
	}
}

// resolveLimits maps the touched counters to their plan ceilings. A touched
// counter whose limit is disabled denies the whole call.
func (s *Service) resolveLimits(p plan.Plan, delta usage.Delta) (usage.Limits, *Decision) {
	limits := usage.Unguarded()

	set := func(touched int64, counter usage.Counter, apply func(int64)) *Decision {
		if touched <= 0 {
			return nil
		}
		name := counterLimits[counter]
		v := p.Limit(name)
		if v == plan.Disabled {
			d := deny(name, fmt.Sprintf("%s is not included in the %s plan", name, p.Name))
			return &d
		}
		if v != plan.Unlimited {
			apply(v)
		}
		return nil
	}

	if d := set(delta.Orders, usage.CounterOrders, func(v int64) { limits.Orders = v }); d != nil {
		return limits, d
	}
	if d := set(delta.Licenses, usage.CounterLicenses, func(v int64) { limits.Licenses = v }); d != nil {
		return limits, d
	}
	if d := set(delta.Tokens, usage.CounterTokens, func(v int64) { limits.Tokens = v }); d != nil {
		return limits, d
	}
	if d := set(delta.StorageMB, usage.CounterStorageMB, func(v int64) { limits.StorageMB = v }); d != nil {
		return limits, d
	}
	return limits, nil
}

// recordAdmission writes the audit log and emits threshold alerts for an
// admitted delta. Alerting is advisory: a failure there is logged, not
// surfaced, since the usage is already committed.
func (s *Service) recordAdmission(ctx context.Context, tenantID, periodID uuid.UUID, feature Feature, delta usage.Delta, before, after usage.Counters, p plan.Plan) (Decision, error) {
	entry := &usage.Log{
		TenantID:   tenantID,
		PeriodID:   periodID,
		Feature:    string(feature),
		Orders:     delta.Orders,
		Licenses:   delta.Licenses,
		Tokens:     delta.Tokens,
		StorageMB:  delta.StorageMB,
		OccurredAt: s.now(),
	}
	if err := s.store.AppendLog(ctx, entry); err != nil {
		return Decision{}, err
	}

	for counter, limitName := range counterLimits {
		limitValue := p.Limit(limitName)
		if limitValue <= 0 {
			continue // unlimited and disabled limits never alert
		}
		for _, crossing := range s.policy.Evaluate(limitName, before.Get(counter), after.Get(counter), limitValue) {
			created, err := s.alerts.Record(ctx, &alert.Alert{
				TenantID:   tenantID,
				PeriodID:   periodID,
				Limit:      crossing.Limit,
				Band:       crossing.Band,
				UsedValue:  crossing.UsedValue,
				LimitValue: crossing.LimitValue,
				CreatedAt:  s.now(),
			})
			if err != nil {
				s.log.ErrorContext(ctx, "failed to record quota alert",
					slog.String("tenant_id", tenantID.String()),
					slog.String("limit", string(crossing.Limit)),
					slog.Any("error", err))
				continue
			}
			if created {
				s.log.InfoContext(ctx, "quota threshold crossed",
					slog.String("tenant_id", tenantID.String()),
					slog.String("limit", string(crossing.Limit)),
					slog.Int("band", int(crossing.Band)))
			}
		}
	}

	return allow, nil
}

// CanCreate checks whether the tenant may create one more instance of a
// standing resource under its plan ceiling. Returns nil when allowed;
// ErrLimitReached, ErrFeatureDisabled, or a resolution error otherwise.
func (s *Service) CanCreate(ctx context.Context, tenantID uuid.UUID, res Resource) error {
	limitName, ok := resourceLimits[res]
	if !ok {
		return ErrInvalidResource
	}

	limit, err := s.resolver.GetLimit(ctx, tenantID, limitName)
	if err != nil {
		return err
	}
	if limit == plan.Unlimited {
		return nil
	}
	if limit == plan.Disabled {
		return ErrFeatureDisabled
	}

	counter, ok := s.counters[res]
	if !ok {
		return ErrNoCounterRegistered
	}
	current, err := counter(ctx, tenantID)
	if err != nil {
		return errors.Join(ErrFailedToCountResource, err)
	}
	if current >= limit {
		return ErrLimitReached
	}
	return nil
}

// PeriodSnapshot is a read-only view of the tenant's open usage period for
// dashboards and admin reports.
type PeriodSnapshot struct {
	PeriodStart time.Time                    `json:"period_start"`
	PeriodEnd   time.Time                    `json:"period_end"`
	Metered     map[plan.LimitName]UsageInfo `json:"metered"`
	Standing    map[plan.LimitName]UsageInfo `json:"standing,omitempty"`
	Alerts      []alert.Alert                `json:"alerts,omitempty"`
}

// Snapshot assembles the tenant's current usage view: metered counters with
// their limits and percentages, standing resource counts where counters are
// registered, and unacknowledged alerts. Never mutates anything.
func (s *Service) Snapshot(ctx context.Context, tenantID uuid.UUID) (*PeriodSnapshot, error) {
	now := s.now()
	sub, err := s.subs.Current(ctx, tenantID, now)
	if err != nil {
		return nil, err
	}
	currentPlan, err := s.resolver.Plan(sub.PlanID)
	if err != nil {
		return nil, err
	}

	start, end := subscription.PeriodWindow(sub, now)
	period, err := s.store.GetOrCreate(ctx, tenantID, start, end)
	if err != nil {
		return nil, err
	}

	snap := &PeriodSnapshot{
		PeriodStart: period.PeriodStart,
		PeriodEnd:   period.PeriodEnd,
		Metered:     make(map[plan.LimitName]UsageInfo, len(counterLimits)),
		Standing:    make(map[plan.LimitName]UsageInfo),
	}

	for counter, limitName := range counterLimits {
		limit := currentPlan.Limit(limitName)
		used := period.Counters.Get(counter)
		snap.Metered[limitName] = UsageInfo{Used: used, Limit: limit, Percent: percentOf(used, limit)}
	}

	for res, limitName := range resourceLimits {
		counterFn, ok := s.counters[res]
		if !ok {
			continue
		}
		used, err := counterFn(ctx, tenantID)
		if err != nil {
			continue // display-only; a broken counter should not sink the page
		}
		limit := currentPlan.Limit(limitName)
		snap.Standing[limitName] = UsageInfo{Used: used, Limit: limit, Percent: percentOf(used, limit)}
	}

	if alerts, err := s.alerts.Unacknowledged(ctx, tenantID); err == nil {
		snap.Alerts = alerts
	}

	return snap, nil
}

// UsagePercentage returns one metered limit's usage as a percentage
// (0-100, or -1 for unlimited). Returns 0 on any resolution error so
// dashboards degrade instead of erroring.
func (s *Service) UsagePercentage(ctx context.Context, tenantID uuid.UUID, limitName plan.LimitName) int {
	snap, err := s.Snapshot(ctx, tenantID)
	if err != nil {
		return 0
	}
	if info, ok := snap.Metered[limitName]; ok {
		return info.Percent
	}
	if info, ok := snap.Standing[limitName]; ok {
		return info.Percent
	}
	return 0
}
