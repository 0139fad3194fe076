package health

import (
	"context"
	"net/http"

	"github.com/sglre6355/venuevibe/internal/modules/health/application"
	"github.com/sglre6355/venuevibe/internal/modules/health/presentation"
	"github.com/sglre6355/venuevibe/internal/server"
)

func init() {
	server.Register(&HealthModule{})
}

// HealthModule exposes liveness and readiness probes.
type HealthModule struct {
	liveness  *presentation.LivenessHandler
	readiness *presentation.ReadinessHandler
}

// Name returns the module name.
func (m *HealthModule) Name() string {
	return "health"
}

// Routes returns the probe handlers.
func (m *HealthModule) Routes() map[string]http.Handler {
	return map[string]http.Handler{
		"GET /healthz": m.liveness,
		"GET /readyz":  m.readiness,
	}
}

// Init initializes the module.
func (m *HealthModule) Init(_ context.Context, deps server.ModuleDependencies) error {
	checkers := make(map[string]application.Checker, len(deps.HealthCheckers))
	for name, hc := range deps.HealthCheckers {
		checkers[name] = hc
	}

	m.liveness = presentation.NewLivenessHandler()
	m.readiness = presentation.NewReadinessHandler(
		application.NewReadinessInteractor(checkers, application.DefaultCheckTimeout),
	)
	return nil
}

// Shutdown cleans up module resources.
func (m *HealthModule) Shutdown() error {
	return nil
}
