// Package server runs the poll loop and serves the dashboard over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/kylerisse/dadboard/pkg/actionlog"
	"github.com/kylerisse/dadboard/pkg/board"
	"github.com/kylerisse/dadboard/pkg/config"
	"github.com/kylerisse/dadboard/pkg/trigger"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// DefaultPollInterval is used when no interval is configured.
const DefaultPollInterval = 2 * time.Second

// ActionLister lists recently recorded actions.
type ActionLister interface {
	Recent(ctx context.Context, limit int) ([]actionlog.Action, error)
}

// Server owns the board, the poll loop and the HTTP API.
type Server struct {
	board        *board.Board
	dispatcher   *trigger.Dispatcher
	games        []config.Game
	actions      ActionLister
	logger       *logrus.Logger
	listen       string
	pollInterval time.Duration
	limiter      *rate.Limiter

	refresh chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	http    *http.Server
}

// Option is a functional option for configuring a Server.
type Option func(*Server) error

// WithListen sets the HTTP listen address.
func WithListen(addr string) Option {
	return func(s *Server) error {
		if addr == "" {
			return fmt.Errorf("listen address must not be empty")
		}
		s.listen = addr
		return nil
	}
}

// WithPollInterval sets the time between poll cycles.
func WithPollInterval(d time.Duration) Option {
	return func(s *Server) error {
		if d <= 0 {
			return fmt.Errorf("poll interval must be positive, got %v", d)
		}
		s.pollInterval = d
		return nil
	}
}

// WithGames sets the game list offered for launching.
func WithGames(games []config.Game) Option {
	return func(s *Server) error {
		s.games = append([]config.Game(nil), games...)
		return nil
	}
}

// WithActionLog exposes recent actions on the API.
func WithActionLog(l ActionLister) Option {
	return func(s *Server) error {
		s.actions = l
		return nil
	}
}

// WithRateLimiter replaces the global request rate limiter.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(s *Server) error {
		if l == nil {
			return fmt.Errorf("rate limiter must not be nil")
		}
		s.limiter = l
		return nil
	}
}

// NewServer creates a Server for the given board and dispatcher.
func NewServer(b *board.Board, d *trigger.Dispatcher, logger *logrus.Logger, opts ...Option) (*Server, error) {
	if b == nil {
		return nil, errors.New("server: board must not be nil")
	}
	if d == nil {
		return nil, errors.New("server: dispatcher must not be nil")
	}
	s := &Server{
		board:        b,
		dispatcher:   d,
		games:        []config.Game{},
		logger:       logger,
		listen:       config.DefaultListen,
		pollInterval: DefaultPollInterval,
		limiter:      rate.NewLimiter(rate.Limit(200), 500),
		refresh:      make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
	}
	return s, nil
}

// Start performs the first poll cycle, then starts the poll loop and the
// HTTP server in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.listen)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", s.listen, err)
	}

	s.board.ResolveAddresses(ctx)
	s.board.Refresh(ctx)

	s.wg.Add(1)
	go s.poll()

	s.http = &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Infof("Starting API server on %v...", ln.Addr())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("API server failed: %v", err)
		}
	}()
	return nil
}

// Stop shuts down the HTTP server and waits for the poll loop to exit.
func (s *Server) Stop(ctx context.Context) error {
	close(s.done)
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}
	s.wg.Wait()
	s.logger.Info("Poll loop and API server stopped.")
	return err
}

// RequestRefresh queues a poll cycle. It reports false when one is already
// queued.
func (s *Server) RequestRefresh() bool {
	select {
	case s.refresh <- struct{}{}:
		return true
	default:
		return false
	}
}
