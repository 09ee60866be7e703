// Package policystate holds the last successfully fetched DLP policy for the
// lifetime of the process. The cell is passed explicitly to whoever consults
// it; there is no ambient global.
package policystate

import (
	"sync"

	"github.com/lueurxax/telegram-dlp-gateway/internal/core/domain"
)

// State is a single-writer configuration cell. Reads are frequent (every
// interception consults the standing policy); writes happen once at startup
// and on each subsequent successful fetch. Last successful fetch wins.
type State struct {
	mu     sync.RWMutex
	policy domain.DlpPolicy
	loaded bool
}

func New() *State {
	return &State{}
}

// Current returns the standing policy, or the built-in default if nothing has
// been stored yet.
func (s *State) Current() domain.DlpPolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return domain.DefaultPolicy()
	}

	return s.policy
}

// Loaded reports whether a policy has ever been stored.
func (s *State) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loaded
}

// Set replaces the standing policy.
func (s *State) Set(policy domain.DlpPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.policy = policy
	s.loaded = true
}
