package session

import (
	"errors"
	"sync"
)

// ErrNoFreeSlot is returned by Claim when every slot holds a live session —
// a programming error, since the admission semaphore guarantees at most
// MaxGames concurrent active sessions (spec.md §4.4).
var ErrNoFreeSlot = errors.New("session: no free registry slot")

// Registry is the fixed-size array of session slots scoreboard-visible
// metadata is read from (spec.md §3/§4.4), guarded by a single mutex.
type Registry struct {
	mu    sync.Mutex
	slots []*Session
}

// NewRegistry creates a registry with maxGames slots.
func NewRegistry(maxGames int) *Registry {
	return &Registry{slots: make([]*Session, maxGames)}
}

// Claim installs sess in the first empty-or-inactive slot, releasing any
// inactive occupant's storage first, and returns the slot index. Returns
// ErrNoFreeSlot if every slot holds an active session.
func (r *Registry) Claim(sess *Session) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, occupant := range r.slots {
		if occupant == nil || !occupant.Active() {
			r.slots[i] = sess
			return i, nil
		}
	}
	return 0, ErrNoFreeSlot
}

// Release clears slot i immediately (spec.md §9: prefer immediate release
// over lazy release by the next claimant).
func (r *Registry) Release(i int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[i] = nil
}

// ActiveSnapshot returns references to every slot holding an active
// session, taken under the registry mutex and released before the caller
// does anything further with them (spec.md §4.8 step 1-2).
func (r *Registry) ActiveSnapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Session, 0, len(r.slots))
	for _, s := range r.slots {
		if s != nil && s.Active() {
			out = append(out, s)
		}
	}
	return out
}

// Len returns the number of slots (== MaxGames).
func (r *Registry) Len() int {
	return len(r.slots)
}
