package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/pacd/pacd/internal/engine"
	"github.com/pacd/pacd/internal/metrics"
	"github.com/pacd/pacd/internal/pnet"
	"golang.org/x/sync/semaphore"
)

// WorkerPool is the fixed-size pool of game-running goroutines described by
// spec.md §4.6. Admission is governed by sem, which the dispatcher never
// touches: acquiring a token and dequeuing a registration are independent
// steps, so a full pool simply leaves registrations queued rather than
// blocking the accept loop.
type WorkerPool struct {
	Queue    *Queue
	Registry *Registry
	Sem      *semaphore.Weighted
	LevelDir string
	Backoff  time.Duration
	Metrics  *metrics.Metrics
}

// Run starts n workers and blocks until ctx is cancelled and every worker
// has returned.
func (wp *WorkerPool) Run(ctx context.Context, n int) {
	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			wp.runWorker(ctx)
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}
}

// runWorker repeatedly acquires an admission token, dequeues one
// registration (or backs off if the queue is empty), and plays the game to
// completion before releasing the token (spec.md §4.6 steps 1-7).
func (wp *WorkerPool) runWorker(ctx context.Context) {
	for {
		if err := wp.Sem.Acquire(ctx, 1); err != nil {
			return // ctx cancelled
		}

		rec, ok := wp.Queue.Dequeue()
		if !ok {
			wp.Sem.Release(1)
			select {
			case <-ctx.Done():
				return
			case <-time.After(wp.Backoff):
			}
			continue
		}

		wp.serve(ctx, rec)
		wp.Sem.Release(1)
	}
}

// serve runs one client's full game: admits the registration, claims a
// registry slot, plays every level in directory order, and cleans up on
// exit (spec.md §4.6 steps 3-7).
func (wp *WorkerPool) serve(ctx context.Context, rec *RegistrationRecord) {
	sess := NewSession(rec.ClientID, rec.Conn)

	if err := sess.WriteFrame(pnet.EncodeRegistrationResponse(0)); err != nil {
		slog.Warn("registration response failed", "client_id", sess.ID, "err", err)
		sess.conn.Close()
		return
	}

	slot, err := wp.Registry.Claim(sess)
	if err != nil {
		// The admission semaphore guarantees a free slot; surface loudly.
		slog.Error("registry has no free slot under an acquired token", "client_id", sess.ID, "err", err)
		sess.conn.Close()
		return
	}
	if wp.Metrics != nil {
		wp.Metrics.ActiveSessions.Inc()
	}
	defer func() {
		sess.SetActive(false)
		wp.Registry.Release(slot)
		sess.conn.Close()
		if wp.Metrics != nil {
			wp.Metrics.ActiveSessions.Dec()
		}
	}()

	levels, err := engine.ListLevels(wp.LevelDir)
	if err != nil {
		slog.Error("listing levels failed", "client_id", sess.ID, "err", err)
		sess.SetError()
		return
	}

	var points int32
	for _, name := range levels {
		var outcome LevelOutcome
		outcome, points = RunLevel(ctx, sess, name, wp.LevelDir, points)
		if outcome != OutcomeNextLevel {
			break
		}
	}

	if sess.Errored() {
		return
	}

	if err := SendEndgame(sess); err != nil {
		slog.Warn("endgame frame failed", "client_id", sess.ID, "err", err)
		return
	}
	AwaitDisconnect(sess)
}
