package subscription

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore is an in-memory Store implementation for tests and development.
type memStore struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*Subscription
}

// NewMemoryStore returns an in-memory Store.
func NewMemoryStore() Store {
	return &memStore{rows: make(map[uuid.UUID]*Subscription)}
}

func (s *memStore) Current(ctx context.Context, tenantID uuid.UUID, at time.Time) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.rows {
		if sub.TenantID == tenantID && sub.IsCurrentAt(at) {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, ErrNoCurrentSubscription
}

func (s *memStore) Create(ctx context.Context, sub *Subscription) error {
	if err := validate(sub); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.rows {
		if existing.TenantID != sub.TenantID || !existing.IsActive {
			continue
		}
		// Half-open windows overlap when each starts before the other ends.
		if sub.StartDate.Before(existing.EndDate) && existing.StartDate.Before(sub.EndDate) {
			return ErrSubscriptionOverlap
		}
	}

	cp := *sub
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
		sub.ID = cp.ID
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.rows[cp.ID] = &cp
	return nil
}

func (s *memStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.rows[id]
	if !ok {
		return ErrSubscriptionNotFound
	}
	sub.IsActive = false
	return nil
}

func (s *memStore) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Subscription
	for _, sub := range s.rows {
		if sub.TenantID == tenantID {
			out = append(out, *sub)
		}
	}
	slices.SortFunc(out, func(a, b Subscription) int {
		return b.StartDate.Compare(a.StartDate)
	})
	return out, nil
}
