package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetward/quotakit/pkg/pg"
)

// pgStore is the PostgreSQL Store implementation backed by a pgx pool.
// The subscriptions table carries an exclusion constraint on active windows
// per tenant (see migrations), so the overlap invariant holds even under
// concurrent inserts; the in-engine check here only produces a friendlier
// error for the common path.
type pgStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) Current(ctx context.Context, tenantID uuid.UUID, at time.Time) (*Subscription, error) {
	const q = `
		SELECT id, tenant_id, plan_id, billing_cycle, start_date, end_date, is_active, provider_sub_id, created_at
		FROM subscriptions
		WHERE tenant_id = $1 AND is_active AND start_date <= $2 AND $2 < end_date
		ORDER BY start_date DESC
		LIMIT 1`

	var sub Subscription
	err := s.pool.QueryRow(ctx, q, tenantID, at).Scan(
		&sub.ID, &sub.TenantID, &sub.PlanID, &sub.BillingCycle,
		&sub.StartDate, &sub.EndDate, &sub.IsActive, &sub.ProviderSubID, &sub.CreatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNoCurrentSubscription
		}
		return nil, err
	}
	return &sub, nil
}

func (s *pgStore) Create(ctx context.Context, sub *Subscription) error {
	if err := validate(sub); err != nil {
		return err
	}
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}

	const q = `
		INSERT INTO subscriptions (id, tenant_id, plan_id, billing_cycle, start_date, end_date, is_active, provider_sub_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.pool.Exec(ctx, q,
		sub.ID, sub.TenantID, sub.PlanID, sub.BillingCycle,
		sub.StartDate, sub.EndDate, sub.IsActive, sub.ProviderSubID, sub.CreatedAt,
	)
	if err != nil {
		if pg.IsExclusionViolationError(err) || pg.IsDuplicateKeyError(err) {
			return ErrSubscriptionOverlap
		}
		return err
	}
	return nil
}

func (s *pgStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `UPDATE subscriptions SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (s *pgStore) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Subscription, error) {
	const q = `
		SELECT id, tenant_id, plan_id, billing_cycle, start_date, end_date, is_active, provider_sub_id, created_at
		FROM subscriptions
		WHERE tenant_id = $1
		ORDER BY start_date DESC`

	rows, err := s.pool.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Subscription
	for rows.Next() {
		var sub Subscription
		if err := rows.Scan(
			&sub.ID, &sub.TenantID, &sub.PlanID, &sub.BillingCycle,
			&sub.StartDate, &sub.EndDate, &sub.IsActive, &sub.ProviderSubID, &sub.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return out, nil
}
