package attendance

import (
	"sync"
	"time"
)

// State holds the single currently-active token for one operator session.
// Replace is the only mutator and always overwrites wholesale: at most one
// live token exists per session at any instant.
type State struct {
	mu      sync.RWMutex
	session Session
	active  bool
}

func (st *State) Replace(tok Token, startedAt time.Time) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.session = Session{Token: tok, StartedAt: startedAt}
	st.active = true
}

// Current returns the active session, if any. Before the first mint there
// is no session and no reconciliation is possible.
func (st *State) Current() (Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.session, st.active
}

// Registry keys independent session states per operator browsing context.
// Two operators minting concurrently never share a token.
type Registry struct {
	mu     sync.Mutex
	states map[string]*State
}

func NewRegistry() *Registry {
	return &Registry{states: make(map[string]*State)}
}

// Get returns the state for the given operator key, creating it on first use.
func (r *Registry) Get(key string) *State {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.states[key]
	if !ok {
		st = new(State)
		r.states[key] = st
	}
	return st
}
