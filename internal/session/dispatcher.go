package session

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/pacd/pacd/internal/metrics"
	"github.com/pacd/pacd/internal/pnet"
)

// Dispatcher owns the listener and runs the accept loop described by
// spec.md §4.5, adapted from the acceptLoop/handleConnection shape the
// teacher's gslistener server used for its own TCP front door.
type Dispatcher struct {
	Listener        net.Listener
	Queue           *Queue
	Registry        *Registry
	Signals         *SignalPlane
	LeaderboardPath string
	LeaderboardTopN int
	AcceptPoll      time.Duration
	RegRead         time.Duration
	Metrics         *metrics.Metrics

	nextID atomic.Int32
}

// Run polls the signal plane and accepts connections until ctx is
// cancelled or the listener is closed.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if d.Signals.LeaderboardRequested() {
			if err := WriteLeaderboard(d.Registry, d.LeaderboardPath, d.LeaderboardTopN); err != nil {
				slog.Error("leaderboard write failed", "err", err)
			}
		}

		type deadliner interface{ SetDeadline(time.Time) error }
		if dl, ok := d.Listener.(deadliner); ok {
			_ = dl.SetDeadline(time.Now().Add(d.AcceptPoll))
		}

		conn, err := d.Listener.Accept()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Error("accept failed", "err", err)
			continue
		}

		d.handle(conn)
	}
}

// handle reads the single registration frame off a freshly accepted
// connection and enqueues it (spec.md §4.5 steps 3-4). A refused connection
// (queue bound exceeded) gets a RegistrationResponse{result: 1} before the
// dispatcher closes it — the worker pool never sees refused connections.
func (d *Dispatcher) handle(conn net.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(d.RegRead))
	opcode := make([]byte, 1)
	if err := pnet.ReadAll(conn, opcode); err != nil {
		slog.Warn("registration read failed", "remote", conn.RemoteAddr(), "err", err)
		conn.Close()
		return
	}
	if _, err := pnet.DecodeRegistration(opcode); err != nil {
		slog.Warn("invalid registration frame", "remote", conn.RemoteAddr(), "err", err)
		conn.Close()
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	id := d.nextID.Add(1)
	if err := d.Queue.Enqueue(conn, id); err != nil {
		slog.Warn("registration refused, queue full", "client_id", id)
		_ = pnet.WriteAll(conn, pnet.EncodeRegistrationResponse(1))
		conn.Close()
		if d.Metrics != nil {
			d.Metrics.RefusalsTotal.Inc()
		}
		return
	}
	if d.Metrics != nil {
		d.Metrics.RegistrationsTotal.Inc()
		d.Metrics.QueueDepth.Set(float64(d.Queue.Len()))
	}
}
