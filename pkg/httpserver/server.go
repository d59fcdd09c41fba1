package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrymomot/masky/pkg/logger"
)

type closer struct {
	name string
	fn   func(context.Context) error
}

type config struct {
	addr              string
	readTimeout       time.Duration
	readHeaderTimeout time.Duration
	writeTimeout      time.Duration
	idleTimeout       time.Duration
	shutdownTimeout   time.Duration
	server            *http.Server
	logger            *slog.Logger
	readyHooks        []func(addr string)
	closers           []closer
}

func defaultConfig() *config {
	return &config{
		addr:              ":8080",
		readHeaderTimeout: 10 * time.Second,
		shutdownTimeout:   15 * time.Second,
	}
}

// Server wraps http.Server with graceful shutdown, logging and ordered
// release of the service's dependencies.
type Server struct {
	cfg     *config
	srv     *http.Server
	ln      net.Listener
	once    sync.Once
	mu      sync.Mutex
	stopped chan struct{}
}

// New returns a configured Server.
func New(opts ...Option) *Server {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	return &Server{cfg: cfg, stopped: make(chan struct{})}
}

// Addr returns the bound listen address, or "" before Run has started listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Run starts the HTTP server and blocks until ctx is cancelled, SIGINT or
// SIGTERM arrives, or Shutdown is called. Listen failures are returned
// immediately, wrapped with ErrStart.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, errors.New("server already running"))
	}
	select {
	case <-s.stopped:
		s.mu.Unlock()
		return errors.Join(ErrStart, errors.New("server already shut down"))
	default:
	}

	cfg := s.cfg
	srv := cfg.server
	if srv == nil {
		srv = &http.Server{}
	}
	if srv.Addr == "" {
		srv.Addr = cfg.addr
	}
	if srv.ReadTimeout == 0 {
		srv.ReadTimeout = cfg.readTimeout
	}
	if srv.ReadHeaderTimeout == 0 {
		srv.ReadHeaderTimeout = cfg.readHeaderTimeout
	}
	if srv.WriteTimeout == 0 {
		srv.WriteTimeout = cfg.writeTimeout
	}
	if srv.IdleTimeout == 0 {
		srv.IdleTimeout = cfg.idleTimeout
	}
	if srv.ErrorLog == nil {
		srv.ErrorLog = slog.NewLogLogger(cfg.logger.Handler(), slog.LevelWarn)
	}
	srv.Handler = handler

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, err)
	}
	s.srv = srv
	s.ln = ln
	s.mu.Unlock()

	addr := ln.Addr().String()
	cfg.logger.InfoContext(ctx, "http server listening", slog.String("addr", addr))
	for _, h := range cfg.readyHooks {
		h(addr)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var shutdownErr, serveErr error
	select {
	case <-sigCtx.Done():
		cfg.logger.InfoContext(ctx, "shutting down http server")
		shutdownErr = s.Shutdown(context.WithoutCancel(ctx))
		serveErr = <-errCh
	case <-s.stopped:
		// Shutdown may have raced with startup and missed srv.
		_ = srv.Close()
		serveErr = <-errCh
	case serveErr = <-errCh:
	}

	if errors.Is(serveErr, http.ErrServerClosed) {
		serveErr = nil
	}
	if serveErr != nil {
		return errors.Join(ErrStart, serveErr)
	}
	return shutdownErr
}

// Shutdown drains in-flight requests and then runs the registered closers
// in reverse registration order. It is safe for repeated calls; only the
// first does any work. Errors are wrapped with ErrShutdown.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		defer close(s.stopped)

		ctx, cancel := context.WithTimeout(ctx, s.cfg.shutdownTimeout)
		defer cancel()

		s.mu.Lock()
		srv := s.srv
		s.mu.Unlock()

		if srv != nil {
			if serr := srv.Shutdown(ctx); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
				err = errors.Join(err, serr)
			}
		}

		for i := len(s.cfg.closers) - 1; i >= 0; i-- {
			c := s.cfg.closers[i]
			if cerr := c.fn(ctx); cerr != nil {
				s.cfg.logger.ErrorContext(ctx, "failed to close dependency",
					logger.Component(c.name),
					logger.Error(cerr),
				)
				err = errors.Join(err, cerr)
			}
		}
	})

	if err != nil {
		return errors.Join(ErrShutdown, err)
	}
	return nil
}
