package alert

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgStore is the PostgreSQL Store implementation. Idempotence per
// (period, limit, band) rides on a unique index plus ON CONFLICT DO
// NOTHING, so concurrent crossings of the same band insert exactly one row.
type pgStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) Record(ctx context.Context, a *Alert) (bool, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	const q = `
		INSERT INTO quota_alerts (id, tenant_id, period_id, limit_name, band, used_value, limit_value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (period_id, limit_name, band) DO NOTHING`

	tag, err := s.pool.Exec(ctx, q,
		a.ID, a.TenantID, a.PeriodID, a.Limit, a.Band,
		a.UsedValue, a.LimitValue, a.CreatedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const alertColumns = `id, tenant_id, period_id, limit_name, band, used_value, limit_value,
	acknowledged, acknowledged_at, created_at`

func (s *pgStore) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Alert, error) {
	return s.query(ctx, `
		SELECT `+alertColumns+` FROM quota_alerts
		WHERE tenant_id = $1 ORDER BY created_at DESC`, tenantID)
}

func (s *pgStore) Unacknowledged(ctx context.Context, tenantID uuid.UUID) ([]Alert, error) {
	return s.query(ctx, `
		SELECT `+alertColumns+` FROM quota_alerts
		WHERE tenant_id = $1 AND NOT acknowledged ORDER BY created_at DESC`, tenantID)
}

func (s *pgStore) query(ctx context.Context, q string, args ...any) ([]Alert, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Alert
	for rows.Next() {
		var a Alert
		if err := rows.Scan(
			&a.ID, &a.TenantID, &a.PeriodID, &a.Limit, &a.Band,
			&a.UsedValue, &a.LimitValue,
			&a.Acknowledged, &a.AcknowledgedAt, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *pgStore) Acknowledge(ctx context.Context, alertID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE quota_alerts SET acknowledged = TRUE, acknowledged_at = now()
		WHERE id = $1 AND NOT acknowledged`, alertID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Distinguish "missing" from "already acknowledged".
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM quota_alerts WHERE id = $1)`, alertID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrAlertNotFound
		}
	}
	return nil
}
