package alert

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fleetward/quotakit/pkg/plan"
)

// memStore is an in-memory Store for tests and development.
type memStore struct {
	mu     sync.Mutex
	alerts []Alert
	seen   map[dedupeKey]struct{}
}

type dedupeKey struct {
	periodID uuid.UUID
	limit    plan.LimitName
	band     Band
}

// NewMemoryStore returns an in-memory Store.
func NewMemoryStore() Store {
	return &memStore{seen: make(map[dedupeKey]struct{})}
}

func (s *memStore) Record(ctx context.Context, a *Alert) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dedupeKey{periodID: a.PeriodID, limit: a.Limit, band: a.Band}
	if _, dup := s.seen[key]; dup {
		return false, nil
	}

	cp := *a
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
		a.ID = cp.ID
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.seen[key] = struct{}{}
	s.alerts = append(s.alerts, cp)
	return true, nil
}

func (s *memStore) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Alert, error) {
	return s.list(tenantID, false), nil
}

func (s *memStore) Unacknowledged(ctx context.Context, tenantID uuid.UUID) ([]Alert, error) {
	return s.list(tenantID, true), nil
}

func (s *memStore) list(tenantID uuid.UUID, onlyUnacked bool) []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Alert
	for _, a := range s.alerts {
		if a.TenantID != tenantID {
			continue
		}
		if onlyUnacked && a.Acknowledged {
			continue
		}
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b Alert) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func (s *memStore) Acknowledge(ctx context.Context, alertID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.alerts {
		if s.alerts[i].ID == alertID {
			now := time.Now().UTC()
			s.alerts[i].Acknowledged = true
			s.alerts[i].AcknowledgedAt = &now
			return nil
		}
	}
	return ErrAlertNotFound
}
