package usage

import (
	"errors"
	"fmt"
)

// Domain errors for usage accounting
var (
	ErrPeriodNotFound    = errors.New("usage.errors.period_not_found")
	ErrPeriodClosed      = errors.New("usage.errors.period_closed")
	ErrQuotaExceeded     = errors.New("usage.errors.quota_exceeded")
	ErrConcurrentUpdate  = errors.New("usage.errors.concurrent_update")
	ErrInvalidPeriod     = errors.New("usage.errors.invalid_period")
	ErrLogAlreadyWritten = errors.New("usage.errors.log_already_written")
)

// LimitExceededError reports which counter's prospective total would have
// exceeded its ceiling. It unwraps to ErrQuotaExceeded.
type LimitExceededError struct {
	Counter Counter
	Current int64
	Delta   int64
	Limit   int64
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("usage: %s would exceed limit: %d + %d > %d",
		e.Counter, e.Current, e.Delta, e.Limit)
}

func (e *LimitExceededError) Unwrap() error {
	return ErrQuotaExceeded
}

// exceededCounter returns the first counter whose prospective total would
// pass its ceiling, in fixed evaluation order. Only increases are guarded.
func exceededCounter(current Counters, delta Delta, limits Limits) *LimitExceededError {
	for _, name := range counterOrder {
		d := delta.Get(name)
		if d <= 0 {
			continue
		}
		lim := limits.Get(name)
		if lim == NoCeiling {
			continue
		}
		if cur := current.Get(name); cur+d > lim {
			return &LimitExceededError{Counter: name, Current: cur, Delta: d, Limit: lim}
		}
	}
	return nil
}
