package plan

import (
	"context"
	"maps"
	"sync"
)

// Source defines how the plan catalog is loaded into a Resolver.
type Source interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

// inMemSource implements Source over a static plan map.
type inMemSource struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

// NewInMemSource returns an in-memory Source with a deep copy of the given plans.
func NewInMemSource(plans map[string]Plan) Source {
	return &inMemSource{plans: clonePlans(plans)}
}

func (s *inMemSource) Load(ctx context.Context) (map[string]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePlans(s.plans), nil
}

func clonePlans(plans map[string]Plan) map[string]Plan {
	out := make(map[string]Plan, len(plans))
	for id, p := range plans {
		p.Limits = maps.Clone(p.Limits)
		out[id] = p
	}
	return out
}
