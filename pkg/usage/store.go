package usage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists usage periods and logs.
//
// ApplyDelta is the heart of the quota discipline: it must be a single
// atomic conditional read-modify-write so that two concurrent callers can
// never both pass a ceiling check against a stale read. Implementations
// either hold a row lock for the check+increment or use an atomic
// conditional update; they must never read counters into the engine and
// write them back.
type Store interface {
	// GetOrCreate returns the open period for the given window, creating it
	// lazily on the first usage event of a new billing cycle. Any open
	// period for the tenant with a different window start (rolled over, or
	// superseded mid-cycle by a plan change) is closed first, preserving
	// the one-open-period-per-tenant invariant.
	GetOrCreate(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (*Period, error)

	// Get returns a period by ID. Returns ErrPeriodNotFound if absent.
	Get(ctx context.Context, periodID uuid.UUID) (*Period, error)

	// ApplyDelta atomically increments the period's counters, guarded by
	// the given ceilings. On success it returns the counters before and
	// after the update. It fails without mutating anything with a
	// *LimitExceededError when an increase would pass a finite ceiling,
	// ErrPeriodClosed on a frozen period, or ErrConcurrentUpdate when the
	// row version moved underneath an optimistic implementation (callers
	// retry a bounded number of times).
	ApplyDelta(ctx context.Context, periodID uuid.UUID, delta Delta, limits Limits) (before, after Counters, err error)

	// AppendLog writes one usage event. Logs are write-once.
	AppendLog(ctx context.Context, log *Log) error

	// Close freezes the period; further ApplyDelta calls fail with
	// ErrPeriodClosed. Closing an already-closed period is a no-op.
	Close(ctx context.Context, periodID uuid.UUID) error

	// ListLogs returns a period's usage events, oldest first.
	ListLogs(ctx context.Context, periodID uuid.UUID) ([]Log, error)
}
