package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Server manages the HTTP server lifecycle and module coordination.
type Server struct {
	config  *Config
	modules []Module
	handler http.Handler
}

// NewServer creates a new Server instance with the given configuration.
func NewServer(cfg *Config) *Server {
	return &Server{
		config:  cfg,
		modules: make([]Module, 0),
	}
}

// LoadModules loads modules from the global registry.
func (s *Server) LoadModules() {
	s.modules = Modules()
}

// Init loads module configuration, initializes modules and builds the router.
func (s *Server) Init(ctx context.Context) error {
	proxies, err := ParseTrustedProxies(s.config.TrustedProxies)
	if err != nil {
		return err
	}

	if err := s.loadModuleConfigs(); err != nil {
		return err
	}

	if err := s.initModules(ctx); err != nil {
		return fmt.Errorf("failed to initialize modules: %w", err)
	}

	mux, err := s.buildMux()
	if err != nil {
		return err
	}

	s.handler = proxies.Handler(withRecover(withLogging(withCORS(s.config.CORSAllowedOrigins, mux))))
	return nil
}

// Handler returns the fully wrapped HTTP handler. Init must be called first.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve accepts connections on ln until ctx is cancelled, then shuts the
// HTTP server down within the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("started server", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		slog.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// ListenAndServe listens on the configured address and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.HTTPAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.HTTPAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Migrate runs storage migrations for every module that owns storage.
func (s *Server) Migrate(ctx context.Context) error {
	if err := s.loadModuleConfigs(); err != nil {
		return err
	}

	for _, mod := range s.modules {
		m, ok := mod.(Migrator)
		if !ok {
			continue
		}
		if err := m.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate %s module: %w", mod.Name(), err)
		}
		slog.Info("migrated module", "module", mod.Name())
	}
	return nil
}

// Stop gracefully shuts down all modules.
func (s *Server) Stop() error {
	var errs []error
	for _, mod := range s.modules {
		if err := mod.Shutdown(); err != nil {
			slog.Warn("failed to shutdown module", "module", mod.Name(), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Server) loadModuleConfigs() error {
	for _, mod := range s.modules {
		if cm, ok := mod.(ConfigurableModule); ok {
			if err := cm.LoadConfig(); err != nil {
				return fmt.Errorf("failed to load config for %s module: %w", mod.Name(), err)
			}
		}
	}
	return nil
}

// initModules initializes all loaded modules.
func (s *Server) initModules(ctx context.Context) error {
	deps := ModuleDependencies{
		Config:         s.config,
		HealthCheckers: make(map[string]HealthChecker),
	}
	for _, mod := range s.modules {
		if hc, ok := mod.(HealthChecker); ok {
			deps.HealthCheckers[mod.Name()] = hc
		}
	}

	for _, mod := range s.modules {
		if err := mod.Init(ctx, deps); err != nil {
			return fmt.Errorf("failed to initialize %s module: %w", mod.Name(), err)
		}
		slog.Debug("initialized module", "module", mod.Name())
	}

	moduleNames := make([]string, len(s.modules))
	for i, mod := range s.modules {
		moduleNames[i] = mod.Name()
	}
	slog.Info("initialized modules", "modules", moduleNames)

	return nil
}

// buildMux registers every module route. Two modules claiming the same
// pattern is a configuration error.
func (s *Server) buildMux() (*http.ServeMux, error) {
	mux := http.NewServeMux()
	owners := make(map[string]string)

	for _, mod := range s.modules {
		for pattern, handler := range mod.Routes() {
			if owner, ok := owners[pattern]; ok {
				return nil, fmt.Errorf("route %q registered by both %s and %s", pattern, owner, mod.Name())
			}
			owners[pattern] = mod.Name()
			mux.Handle(pattern, handler)
			slog.Debug("registered route", "module", mod.Name(), "pattern", pattern)
		}
	}

	return mux, nil
}
