package server

import (
	"context"
	"net/http"
)

// ModuleDependencies provides dependencies that modules may need during initialization.
type ModuleDependencies struct {
	Config *Config

	// HealthCheckers holds every loaded module that reports its own health,
	// keyed by module name.
	HealthCheckers map[string]HealthChecker
}

// Module defines the interface that all server modules must implement.
type Module interface {
	// Name returns the unique identifier for this module.
	Name() string

	// Routes returns the module's handlers keyed by ServeMux pattern,
	// e.g. "POST /submit".
	Routes() map[string]http.Handler

	// Init initializes the module with the provided dependencies.
	Init(ctx context.Context, deps ModuleDependencies) error

	// Shutdown gracefully shuts down the module.
	Shutdown() error
}

// ConfigurableModule is an optional interface for modules that need configuration.
// Modules implementing this interface will have LoadConfig called before Init.
type ConfigurableModule interface {
	// LoadConfig loads and validates module-specific configuration.
	// Should return an error if required configuration is missing or invalid.
	LoadConfig() error
}

// Migrator is an optional interface for modules that own persistent storage.
type Migrator interface {
	// Migrate creates or updates the module's storage schema.
	Migrate(ctx context.Context) error
}

// HealthChecker is an optional interface for modules that can report readiness.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
