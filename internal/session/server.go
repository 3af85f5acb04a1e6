package session

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/pacd/pacd/internal/config"
	"github.com/pacd/pacd/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/semaphore"
)

// Server wires the listener, queue, registry, admission semaphore, signal
// plane, dispatcher, and worker pool into the runnable game session server
// (spec.md §1/§4, modeled on the gslistener Server/Serve shape).
type Server struct {
	cfg     config.Server
	reg     *prometheus.Registry
	metrics *metrics.Metrics

	listener   net.Listener
	queue      *Queue
	registry   *Registry
	sem        *semaphore.Weighted
	signals    *SignalPlane
	dispatcher *Dispatcher
	workers    *WorkerPool
}

// NewServer builds a Server from cfg but does not start listening.
func NewServer(cfg config.Server) *Server {
	reg := prometheus.NewRegistry()
	return &Server{
		cfg:      cfg,
		reg:      reg,
		metrics:  metrics.New(reg),
		queue:    NewQueue(cfg.QueueLimit),
		registry: NewRegistry(cfg.MaxGames),
		sem:      semaphore.NewWeighted(int64(cfg.MaxGames)),
		signals:  NewSignalPlane(),
	}
}

// Run starts the listener, the metrics endpoint (if configured), the
// dispatcher, and the worker pool, and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.listener = ln
	defer s.listener.Close()
	defer s.signals.Stop()

	slog.Info("listening", "addr", addr, "max_games", s.cfg.MaxGames, "level_dir", s.cfg.LevelDir)

	if s.cfg.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
		metricsSrv := &http.Server{Addr: s.cfg.MetricsAddress, Handler: mux}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics server failed", "err", err)
			}
		}()
		go func() {
			<-ctx.Done()
			_ = metricsSrv.Close()
		}()
	}

	s.dispatcher = &Dispatcher{
		Listener:        s.listener,
		Queue:           s.queue,
		Registry:        s.registry,
		Signals:         s.signals,
		LeaderboardPath: s.cfg.LeaderboardPath,
		LeaderboardTopN: s.cfg.LeaderboardTopN,
		AcceptPoll:      s.cfg.AcceptPollInterval,
		RegRead:         s.cfg.RegistrationRead,
		Metrics:         s.metrics,
	}
	s.workers = &WorkerPool{
		Queue:    s.queue,
		Registry: s.registry,
		Sem:      s.sem,
		LevelDir: s.cfg.LevelDir,
		Backoff:  s.cfg.WorkerBackoff,
		Metrics:  s.metrics,
	}

	workersDone := make(chan struct{})
	go func() {
		defer close(workersDone)
		s.workers.Run(ctx, s.cfg.MaxGames)
	}()

	err = s.dispatcher.Run(ctx)

	_ = s.listener.Close()
	<-workersDone
	return err
}
