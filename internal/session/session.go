// Package session implements the registration/dispatch layer, the bounded
// worker pool, the per-session game engine, and the leaderboard subsystem
// described by the game server spec (§4.3-§4.9).
package session

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/pacd/pacd/internal/engine"
	"github.com/pacd/pacd/internal/pnet"
)

// Session is the authoritative per-client state (spec.md §3).
type Session struct {
	ID   int32
	conn net.Conn

	// mu guards writes on conn so a BoardUpdate header+payload pair is
	// atomic with respect to other writers (spec.md §5 lock order:
	// state_lock -> session.lock, never the reverse). The shutdown/error
	// flags are atomics and are not guarded by mu.
	mu sync.Mutex

	// score indirects to the current level's pacman points; rebound each
	// level (spec.md §9 "Score-pointer rebinding") rather than held as a
	// raw pointer, avoiding a dangling reference between levels.
	score atomic.Pointer[engine.Pacman]

	active   atomic.Bool
	shutdown atomic.Bool
	errFlag  atomic.Bool
}

// NewSession creates a session for an accepted connection.
func NewSession(id int32, conn net.Conn) *Session {
	s := &Session{ID: id, conn: conn}
	s.active.Store(true)
	return s
}

// Conn returns the session's duplex channel.
func (s *Session) Conn() net.Conn { return s.conn }

// Active reports whether the slot holding this session is still in play.
func (s *Session) Active() bool { return s.active.Load() }

// SetActive marks the session inactive immediately on completion, rather
// than lazily from the next claimant (spec.md §9 recommendation).
func (s *Session) SetActive(v bool) { s.active.Store(v) }

// ShuttingDown reports the cooperative shutdown flag agent goroutines poll.
func (s *Session) ShuttingDown() bool { return s.shutdown.Load() }

// SetShutdown raises the cooperative shutdown flag.
func (s *Session) SetShutdown() { s.shutdown.Store(true) }

// Errored reports whether a fatal client-channel failure occurred.
func (s *Session) Errored() bool { return s.errFlag.Load() }

// SetError marks the session as having failed fatally.
func (s *Session) SetError() { s.errFlag.Store(true) }

// RebindScore points the session's score reader at the given level's
// pacman, so Points always reflects the level currently in play.
func (s *Session) RebindScore(p *engine.Pacman) { s.score.Store(p) }

// Points reads the current level's accumulated score, or 0 before any
// level has been bound.
func (s *Session) Points() int32 {
	p := s.score.Load()
	if p == nil {
		return 0
	}
	return p.Points
}

// WriteFrame writes a pre-encoded frame to the client under the session
// lock, so two frames written concurrently never interleave bytes.
func (s *Session) WriteFrame(buf []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pnet.WriteAll(s.conn, buf)
}
