package wizard

import (
	"sync"
	"time"

	"github.com/mcoot/bodaform/internal/dependencies/clock"
)

// Registry holds the active wizard sessions of HTTP clients, keyed by the
// token session ID. Expired entries are dropped when they are next touched.
type Registry struct {
	clock clock.Clock

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	// serialises operations on one session, including the save in Next
	mu        sync.Mutex
	session   Session
	expiresAt time.Time
}

// NewRegistry creates an empty Registry
func NewRegistry(clock clock.Clock) *Registry {
	return &Registry{
		clock:   clock,
		entries: make(map[string]*entry),
	}
}

// Put stores a session until expiresAt, replacing any previous one for id
func (r *Registry) Put(id string, s Session, expiresAt time.Time) {
	r.mu.Lock()
	r.entries[id] = &entry{session: s.clone(), expiresAt: expiresAt}
	r.mu.Unlock()
}

// Get returns a copy of the session for id
func (r *Registry) Get(id string) (Session, error) {
	e, err := r.lookup(id)
	if err != nil {
		return Session{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.clone(), nil
}

// Update applies fn to the session for id and stores whatever session fn
// returns, even alongside an error.
func (r *Registry) Update(id string, fn func(Session) (Session, error)) (Session, error) {
	e, err := r.lookup(id)
	if err != nil {
		return Session{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := fn(e.session.clone())
	e.session = next.clone()
	return next, err
}

// Delete removes the session for id and returns it
func (r *Registry) Delete(id string) (Session, error) {
	e, err := r.lookup(id)
	if err != nil {
		return Session{}, err
	}

	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.clone(), nil
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.Sweep()
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops every expired session
func (r *Registry) Sweep() {
	now := r.clock.Now()
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, e := range r.entries {
		if now.After(e.expiresAt) {
			delete(r.entries, id)
		}
	}
}

func (r *Registry) lookup(id string) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, ErrNoSession
	}
	if r.clock.Now().After(e.expiresAt) {
		delete(r.entries, id)
		return nil, ErrNoSession
	}
	return e, nil
}
