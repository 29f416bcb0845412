package onboarding

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry scopes accumulators to wizard sessions so no ambient
// global state survives between runs. Sessions that never finish are
// evicted after the idle TTL.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
}

type session struct {
	acc      *Accumulator
	lastSeen time.Time
}

func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Registry{
		sessions: make(map[string]*session),
		ttl:      ttl,
	}
}

// Start creates a fresh accumulator and returns its session id.
func (r *Registry) Start() string {
	id := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &session{acc: NewAccumulator(), lastSeen: time.Now()}
	return id
}

// Get returns the accumulator for a session, if it exists.
func (r *Registry) Get(id string) (*Accumulator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	s.lastSeen = time.Now()
	return s.acc, true
}

// Consume finalizes and removes a session in one step. Registration
// calls this so a wizard run can only be spent once. A missing
// session yields an empty snapshot: skipping the wizard is allowed.
func (r *Registry) Consume(id string) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return Snapshot{}
	}
	delete(r.sessions, id)
	return s.acc.Finalize()
}

// Sweep drops sessions idle past the TTL and reports how many were
// removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-r.ttl)
	removed := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}
