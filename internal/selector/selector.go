// Package selector picks one backend endpoint from a model group according to
// the group's configured load-balancing strategy.
package selector

import (
	"math/rand"
	"sync"

	"modelgate/config"
)

// Strategy names recognized in group configuration. Any unrecognized value
// behaves like sequential.
const (
	StrategyRoundRobin = "round-robin"
	StrategyRandom     = "random"
	StrategySequential = "sequential"
)

// Selector holds the per-group round-robin cursors. The cursor map is the
// only mutable state shared between requests; all access is serialized so a
// concurrent read-modify-write cannot lose an update and bias the
// distribution. Cursors live for the lifetime of the Selector.
type Selector struct {
	mu      sync.Mutex
	cursors map[string]int
}

// New creates a Selector with fresh cursor state.
func New() *Selector {
	return &Selector{cursors: make(map[string]int)}
}

// Pick returns exactly one member endpoint of the group. The caller must have
// already established that the group is selectable (enabled with at least one
// member).
func (s *Selector) Pick(group *config.ModelGroup) config.ModelEndpoint {
	models := group.Models
	n := len(models)

	switch group.Strategy {
	case StrategyRoundRobin:
		s.mu.Lock()
		defer s.mu.Unlock()
		// A reload may have shrunk the group since the cursor was stored.
		idx := s.cursors[group.ID] % n
		s.cursors[group.ID] = (idx + 1) % n
		return models[idx]

	case StrategyRandom:
		return models[rand.Intn(n)]

	default:
		// sequential and anything unrecognized: always the first member.
		return models[0]
	}
}
