// Package server exposes the forecast engine over http. The main listener serves a single
// POST /predict route and an optional admin listener serves metrics and health checks.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	forecaster "github.com/aouyang1/go-forecaster-server"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultAddr            = ":8080"
	DefaultAdminAddr       = ":9090"
	DefaultHorizon         = 365
	DefaultMaxBodyBytes    = 10 << 20
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
)

var (
	ErrNoEngine       = errors.New("no forecast engine")
	ErrInvalidOptions = errors.New("invalid server options")
)

// Options configures the http listeners
type Options struct {
	Addr      string
	AdminAddr string // empty disables the admin listener

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	MaxBodyBytes   int64
	DefaultHorizon int

	// AccessLog receives an apache combined log line per request when set
	AccessLog io.Writer
	Compress  bool
}

func NewDefaultOptions() *Options {
	return &Options{
		Addr:            DefaultAddr,
		AdminAddr:       DefaultAdminAddr,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		MaxBodyBytes:    DefaultMaxBodyBytes,
		DefaultHorizon:  DefaultHorizon,
		Compress:        true,
	}
}

// Server serves forecasts from a shared engine
type Server struct {
	opt     *Options
	engine  *forecaster.Engine
	metrics *Metrics

	router  *mux.Router
	handler http.Handler
	admin   http.Handler
}

// New creates a server. Nil options use the defaults.
func New(opt *Options, engine *forecaster.Engine) (*Server, error) {
	if engine == nil {
		return nil, ErrNoEngine
	}
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if opt.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("max body bytes of %d, %w", opt.MaxBodyBytes, ErrInvalidOptions)
	}
	if opt.DefaultHorizon <= 0 {
		return nil, fmt.Errorf("default horizon of %d, %w", opt.DefaultHorizon, ErrInvalidOptions)
	}

	s := &Server{
		opt:     opt,
		engine:  engine,
		metrics: NewMetrics(),
	}
	s.router = s.newRouter()
	s.handler = s.buildHandler()
	s.admin = s.newAdminRouter()
	return s, nil
}

func (s *Server) newRouter() *mux.Router {
	r := mux.NewRouter().SkipClean(true)
	r.HandleFunc("/predict", s.predict).Methods(http.MethodPost)

	// a route that exists under another method is still reported as not found
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(notFound)
	return r
}

func (s *Server) newAdminRouter() http.Handler {
	r := mux.NewRouter().SkipClean(true)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(notFound)
	return r
}

func (s *Server) buildHandler() http.Handler {
	var h http.Handler = s.router
	if s.opt.Compress {
		h = handlers.CompressHandler(h)
	}
	if s.opt.AccessLog != nil {
		h = handlers.CombinedLoggingHandler(s.opt.AccessLog, h)
	}
	h = s.instrumentMiddleware(h)
	h = recoverMiddleware(h)
	return requestIDMiddleware(h)
}

// Handler returns the main listener handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// AdminHandler returns the admin listener handler
func (s *Server) AdminHandler() http.Handler {
	return s.admin
}

func (s *Server) Metrics() *Metrics {
	return s.metrics
}

func (s *Server) httpServer(h http.Handler) *http.Server {
	return &http.Server{
		Handler:           h,
		ReadTimeout:       s.opt.ReadTimeout,
		ReadHeaderTimeout: s.opt.ReadTimeout,
		WriteTimeout:      s.opt.WriteTimeout,
		ErrorLog:          slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
	}
}

// Run listens on the configured addresses and serves until ctx is done, then shuts down
// gracefully
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opt.Addr)
	if err != nil {
		return fmt.Errorf("unable to listen on %s, %w", s.opt.Addr, err)
	}
	var adminLn net.Listener
	if s.opt.AdminAddr != "" {
		adminLn, err = net.Listen("tcp", s.opt.AdminAddr)
		if err != nil {
			ln.Close()
			return fmt.Errorf("unable to listen on %s, %w", s.opt.AdminAddr, err)
		}
	}
	return s.Serve(ctx, ln, adminLn)
}

// Serve serves the main handler on ln and the admin handler on adminLn until ctx is done. A nil
// adminLn disables the admin listener. Both listeners are closed on return.
func (s *Server) Serve(ctx context.Context, ln, adminLn net.Listener) error {
	type listener struct {
		name string
		ln   net.Listener
		srv  *http.Server
	}
	listeners := []listener{{"main", ln, s.httpServer(s.handler)}}
	if adminLn != nil {
		listeners = append(listeners, listener{"admin", adminLn, s.httpServer(s.admin)})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, l := range listeners {
		g.Go(func() error {
			slog.Info("listening", "listener", l.name, "addr", l.ln.Addr().String())
			if err := l.srv.Serve(l.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("unable to serve %s listener, %w", l.name, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		timeout := s.opt.ShutdownTimeout
		if timeout <= 0 {
			timeout = DefaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var errs []error
		for _, l := range listeners {
			if err := l.srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("unable to shutdown %s listener, %w", l.name, err))
			}
		}
		slog.Info("server stopped")
		return errors.Join(errs...)
	})

	return g.Wait()
}
