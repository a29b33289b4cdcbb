package usage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetward/quotakit/pkg/pg"
)

// pgStore is the PostgreSQL Store implementation.
//
// ApplyDelta is a single UPDATE with the ceiling checks in its WHERE clause,
// so the check and the increment commit together: concurrent callers
// serialize on the row and the loser re-evaluates against the committed
// counters, never a stale read.
type pgStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

const periodColumns = `id, tenant_id, period_start, period_end,
	orders_processed, licenses_processed, tokens_used, storage_used_mb,
	closed_at, created_at, updated_at`

func scanPeriod(row interface{ Scan(...any) error }) (*Period, error) {
	var p Period
	err := row.Scan(
		&p.ID, &p.TenantID, &p.PeriodStart, &p.PeriodEnd,
		&p.Orders, &p.Licenses, &p.Tokens, &p.StorageMB,
		&p.ClosedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *pgStore) GetOrCreate(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (*Period, error) {
	if !start.Before(end) {
		return nil, ErrInvalidPeriod
	}

	// Freeze any open period with a different window start: a rollover or a
	// mid-cycle supersede must never leave two open periods for one tenant.
	_, err := s.pool.Exec(ctx, `
		UPDATE usage_periods SET closed_at = now(), updated_at = now()
		WHERE tenant_id = $1 AND closed_at IS NULL AND period_start <> $2`,
		tenantID, start)
	if err != nil {
		return nil, err
	}

	// Insert-or-fetch under the (tenant_id, period_start) unique index so
	// two concurrent first events of a cycle converge on one row.
	row := s.pool.QueryRow(ctx, `
		INSERT INTO usage_periods (id, tenant_id, period_start, period_end)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, period_start) DO NOTHING
		RETURNING `+periodColumns,
		uuid.New(), tenantID, start, end)

	p, err := scanPeriod(row)
	if err == nil {
		return p, nil
	}
	if !pg.IsNotFoundError(err) {
		return nil, err
	}

	// Conflict path: the row already exists.
	row = s.pool.QueryRow(ctx, `
		SELECT `+periodColumns+`
		FROM usage_periods WHERE tenant_id = $1 AND period_start = $2`,
		tenantID, start)
	p, err = scanPeriod(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrPeriodNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *pgStore) Get(ctx context.Context, periodID uuid.UUID) (*Period, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+periodColumns+` FROM usage_periods WHERE id = $1`, periodID)
	p, err := scanPeriod(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrPeriodNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *pgStore) ApplyDelta(ctx context.Context, periodID uuid.UUID, delta Delta, limits Limits) (Counters, Counters, error) {
	// The CTE locks the row; the UPDATE applies the guarded increment and
	// returns both the pre- and post-update counters in one round trip.
	// Guards apply only to increases; storage floors at zero on decrements.
	const q = `
		WITH cur AS (
			SELECT id, orders_processed, licenses_processed, tokens_used, storage_used_mb, closed_at
			FROM usage_periods
			WHERE id = $1
			FOR UPDATE
		)
		UPDATE usage_periods u SET
			orders_processed   = cur.orders_processed + $2,
			licenses_processed = cur.licenses_processed + $3,
			tokens_used        = cur.tokens_used + $4,
			storage_used_mb    = GREATEST(0, cur.storage_used_mb + $5),
			updated_at         = now()
		FROM cur
		WHERE u.id = cur.id
			AND cur.closed_at IS NULL
			AND ($6::bigint = -1 OR $2::bigint <= 0 OR cur.orders_processed + $2 <= $6)
			AND ($7::bigint = -1 OR $3::bigint <= 0 OR cur.licenses_processed + $3 <= $7)
			AND ($8::bigint = -1 OR $4::bigint <= 0 OR cur.tokens_used + $4 <= $8)
			AND ($9::bigint = -1 OR $5::bigint <= 0 OR cur.storage_used_mb + $5 <= $9)
		RETURNING
			cur.orders_processed, cur.licenses_processed, cur.tokens_used, cur.storage_used_mb,
			u.orders_processed, u.licenses_processed, u.tokens_used, u.storage_used_mb`

	var before, after Counters
	err := s.pool.QueryRow(ctx, q, periodID,
		delta.Orders, delta.Licenses, delta.Tokens, delta.StorageMB,
		limits.Orders, limits.Licenses, limits.Tokens, limits.StorageMB,
	).Scan(
		&before.Orders, &before.Licenses, &before.Tokens, &before.StorageMB,
		&after.Orders, &after.Licenses, &after.Tokens, &after.StorageMB,
	)
	if err == nil {
		return before, after, nil
	}
	if !pg.IsNotFoundError(err) {
		return Counters{}, Counters{}, err
	}

	// The guard rejected the update; re-read to name the reason. The
	// snapshot is informational only, the deny decision already happened
	// atomically above.
	p, err := s.Get(ctx, periodID)
	if err != nil {
		return Counters{}, Counters{}, err
	}
	if !p.Open() {
		return Counters{}, Counters{}, ErrPeriodClosed
	}
	if exc := exceededCounter(p.Counters, delta, limits); exc != nil {
		return Counters{}, Counters{}, exc
	}
	// Counters moved between the guard and the re-read; let the caller retry.
	return Counters{}, Counters{}, ErrConcurrentUpdate
}

func (s *pgStore) AppendLog(ctx context.Context, log *Log) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.OccurredAt.IsZero() {
		log.OccurredAt = time.Now().UTC()
	}

	const q = `
		INSERT INTO usage_logs (id, tenant_id, period_id, feature, orders, licenses, tokens, storage_mb, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.pool.Exec(ctx, q,
		log.ID, log.TenantID, log.PeriodID, log.Feature,
		log.Orders, log.Licenses, log.Tokens, log.StorageMB, log.OccurredAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrLogAlreadyWritten
		}
		return err
	}
	return nil
}

func (s *pgStore) Close(ctx context.Context, periodID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE usage_periods SET closed_at = now(), updated_at = now()
		WHERE id = $1 AND closed_at IS NULL`, periodID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either already closed (fine) or missing.
		if _, err := s.Get(ctx, periodID); err != nil {
			return err
		}
	}
	return nil
}

func (s *pgStore) ListLogs(ctx context.Context, periodID uuid.UUID) ([]Log, error) {
	const q = `
		SELECT id, tenant_id, period_id, feature, orders, licenses, tokens, storage_mb, occurred_at
		FROM usage_logs
		WHERE period_id = $1
		ORDER BY occurred_at ASC`

	rows, err := s.pool.Query(ctx, q, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Log
	for rows.Next() {
		var log Log
		if err := rows.Scan(
			&log.ID, &log.TenantID, &log.PeriodID, &log.Feature,
			&log.Orders, &log.Licenses, &log.Tokens, &log.StorageMB, &log.OccurredAt,
		); err != nil {
			return nil, err
		}
		out = append(out, log)
	}
	return out, rows.Err()
}
