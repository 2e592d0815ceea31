package service

import (
	"sync"
	"time"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
	"github.com/cx-tal-miterani/flight-seat-booking/internal/selection"
	"github.com/google/uuid"
)

// sessionEntry is one registered selection session. mu serializes every
// operation on it.
type sessionEntry struct {
	mu          sync.Mutex
	id          string
	owner       string
	flight      *models.Flight
	class       models.CabinClass
	base        float64
	sel         *selection.Session
	checkingOut bool
	lastUsed    time.Time
}

func (e *sessionEntry) touch(now time.Time) { e.lastUsed = now }

// view must be called with mu held.
func (e *sessionEntry) view() *SessionView {
	return &SessionView{
		ID:             e.id,
		FlightID:       e.flight.ID,
		CabinClass:     e.class,
		ClassBasePrice: e.base,
		State:          e.sel.State(),
		RequiredCount:  e.sel.RequiredCount(),
		SelectedSeats:  e.sel.SelectedSeats(),
		Quote:          e.sel.Quote(e.base),
	}
}

type registry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

func newRegistry() *registry {
	return &registry{sessions: make(map[string]*sessionEntry)}
}

func (r *registry) add(owner string, flight *models.Flight, class models.CabinClass, base float64, sel *selection.Session, now time.Time) *sessionEntry {
	e := &sessionEntry{
		id:       uuid.New().String(),
		owner:    owner,
		flight:   flight,
		class:    class,
		base:     base,
		sel:      sel,
		lastUsed: now,
	}
	r.mu.Lock()
	r.sessions[e.id] = e
	r.mu.Unlock()
	return e
}

// get returns the session if it exists and belongs to owner. Another user's
// session is reported as missing.
func (r *registry) get(owner, id string) (*sessionEntry, error) {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok || e.owner != owner {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

// removeIf unregisters id only while it still maps to e.
func (r *registry) removeIf(id string, e *sessionEntry) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.sessions[id]; ok && cur == e {
		delete(r.sessions, id)
		return true
	}
	return false
}

// expire discards sessions idle since before cutoff, skipping any in checkout.
func (r *registry) expire(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, e := range r.sessions {
		e.mu.Lock()
		if !e.checkingOut && e.lastUsed.Before(cutoff) {
			e.sel.Discard()
			delete(r.sessions, id)
			n++
		}
		e.mu.Unlock()
	}
	return n
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
