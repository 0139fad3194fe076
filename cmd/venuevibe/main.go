package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	_ "github.com/sglre6355/venuevibe/internal/modules/health"
	_ "github.com/sglre6355/venuevibe/internal/modules/jukebox"
	"github.com/sglre6355/venuevibe/internal/server"
)

// version is set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0" ./cmd/venuevibe
var version = "dev"

var app = &cli.App{
	Name:    "venuevibe",
	Usage:   "pay-to-play track queue for live venues",
	Version: version,
	Commands: []*cli.Command{
		{
			Name:   "serve",
			Usage:  "run the HTTP server",
			Action: serve,
		},
		{
			Name:   "migrate",
			Usage:  "create database tables and exit",
			Action: migrate,
		},
	},
	Action: serve,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		slog.Error("exiting", "error", err)
		stop()
		os.Exit(1)
	}
}

// setup loads the host configuration, installs the JSON logger and
// registers every compiled-in module.
func setup() (*server.Server, error) {
	cfg, err := server.LoadConfig()
	if err != nil {
		return nil, err
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	s := server.NewServer(cfg)
	s.LoadModules()
	return s, nil
}

func serve(c *cli.Context) error {
	s, err := setup()
	if err != nil {
		return err
	}
	slog.Info("starting venuevibe", "version", version)

	defer func() {
		if err := s.Stop(); err != nil {
			slog.Error("failed to shutdown", "error", err)
		}
		slog.Info("completed shutdown")
	}()

	if err := s.Init(c.Context); err != nil {
		return err
	}
	return s.ListenAndServe(c.Context)
}

func migrate(c *cli.Context) error {
	s, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Stop(); err != nil {
			slog.Error("failed to close modules", "error", err)
		}
	}()

	if err := s.Migrate(c.Context); err != nil {
		return err
	}
	slog.Info("database tables created")
	return nil
}
