package usage

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore is an in-memory Store for tests and development. A single mutex
// serializes check+increment, which satisfies the atomicity contract.
type memStore struct {
	mu      sync.Mutex
	periods map[uuid.UUID]*Period
	logs    []Log
}

// NewMemoryStore returns an in-memory Store.
func NewMemoryStore() Store {
	return &memStore{periods: make(map[uuid.UUID]*Period)}
}

func (s *memStore) GetOrCreate(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (*Period, error) {
	if !start.Before(end) {
		return nil, ErrInvalidPeriod
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	var match *Period
	for _, p := range s.periods {
		if p.TenantID != tenantID || !p.Open() {
			continue
		}
		if p.PeriodStart.Equal(start) {
			match = p
			continue
		}
		// Rolled over or superseded mid-cycle; freeze the stale period so
		// the tenant never carries two open periods.
		closedAt := now
		p.ClosedAt = &closedAt
	}
	if match != nil {
		cp := *match
		return &cp, nil
	}

	p := &Period{
		ID:          uuid.New(),
		TenantID:    tenantID,
		PeriodStart: start,
		PeriodEnd:   end,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.periods[p.ID] = p
	cp := *p
	return &cp, nil
}

func (s *memStore) Get(ctx context.Context, periodID uuid.UUID) (*Period, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.periods[periodID]
	if !ok {
		return nil, ErrPeriodNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) ApplyDelta(ctx context.Context, periodID uuid.UUID, delta Delta, limits Limits) (Counters, Counters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.periods[periodID]
	if !ok {
		return Counters{}, Counters{}, ErrPeriodNotFound
	}
	if !p.Open() {
		return Counters{}, Counters{}, ErrPeriodClosed
	}

	before := p.Counters
	if exc := exceededCounter(before, delta, limits); exc != nil {
		return Counters{}, Counters{}, exc
	}

	p.Orders += delta.Orders
	p.Licenses += delta.Licenses
	p.Tokens += delta.Tokens
	p.StorageMB += delta.StorageMB
	if p.StorageMB < 0 {
		p.StorageMB = 0
	}
	p.UpdatedAt = time.Now().UTC()

	return before, p.Counters, nil
}

func (s *memStore) AppendLog(ctx context.Context, log *Log) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.OccurredAt.IsZero() {
		log.OccurredAt = time.Now().UTC()
	}
	for _, existing := range s.logs {
		if existing.ID == log.ID {
			return ErrLogAlreadyWritten
		}
	}
	s.logs = append(s.logs, *log)
	return nil
}

func (s *memStore) Close(ctx context.Context, periodID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.periods[periodID]
	if !ok {
		return ErrPeriodNotFound
	}
	if p.ClosedAt == nil {
		now := time.Now().UTC()
		p.ClosedAt = &now
	}
	return nil
}

func (s *memStore) ListLogs(ctx context.Context, periodID uuid.UUID) ([]Log, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Log
	for _, log := range s.logs {
		if log.PeriodID == periodID {
			out = append(out, log)
		}
	}
	slices.SortFunc(out, func(a, b Log) int {
		return a.OccurredAt.Compare(b.OccurredAt)
	})
	return out, nil
}
