package jukebox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/benbjohnson/clock"

	"github.com/sglre6355/venuevibe/internal/modules/jukebox/application"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/application/ports"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/application/usecases"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/infrastructure"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/presentation"
	"github.com/sglre6355/venuevibe/internal/server"
)

func init() {
	server.Register(&JukeboxModule{})
}

// Compile-time interface checks.
var (
	_ server.ConfigurableModule = (*JukeboxModule)(nil)
	_ server.Migrator           = (*JukeboxModule)(nil)
	_ server.HealthChecker      = (*JukeboxModule)(nil)
)

// JukeboxModule provides the pay-to-play track queue.
type JukeboxModule struct {
	config *Config
	clock  clock.Clock

	store     *infrastructure.SQLStore
	queue     *infrastructure.MemoryQueue
	lavalink  *infrastructure.LavalinkResolver
	announcer ports.Announcer

	// Event-driven components
	eventBus            *infrastructure.ChannelEventBus
	announcementHandler *application.AnnouncementEventHandler
	streamHub           *presentation.StreamHub
	limiter             *presentation.RateLimiter

	routes map[string]http.Handler

	// Context for background workers
	ctx    context.Context
	cancel context.CancelFunc
}

// Name returns the module name.
func (m *JukeboxModule) Name() string {
	return "jukebox"
}

// Routes returns the HTTP handlers for this module.
func (m *JukeboxModule) Routes() map[string]http.Handler {
	return m.routes
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *JukeboxModule) LoadConfig() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init wires storage, collaborators and handlers, then rebuilds the queue
// from confirmed submissions that were never played.
func (m *JukeboxModule) Init(ctx context.Context, _ server.ModuleDependencies) error {
	if m.config == nil {
		return errors.New("jukebox: configuration not loaded")
	}
	if m.clock == nil {
		m.clock = clock.New()
	}

	weight, err := domain.NewTimeWeight(m.config.TimeWeight)
	if err != nil {
		return err
	}

	if err := m.openStore(ctx); err != nil {
		return err
	}
	if err := m.store.Migrate(ctx); err != nil {
		return err
	}

	resolver, err := m.newResolver(ctx)
	if err != nil {
		return err
	}
	gateway := infrastructure.NewStripeGateway(infrastructure.StripeConfig{
		APIKey:        m.config.StripeAPIKey,
		WebhookSecret: m.config.StripeWebhookSecret,
		SuccessURL:    m.config.CheckoutSuccessURL,
		CancelURL:     m.config.CheckoutCancelURL,
		Currency:      m.config.Currency,
	})
	if err := m.newAnnouncer(); err != nil {
		return err
	}

	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.eventBus = infrastructure.NewChannelEventBus(infrastructure.DefaultEventBufferSize)
	m.queue = infrastructure.NewMemoryQueue(weight, m.clock)

	submissions := usecases.NewSubmissionService(
		m.config.MaxBid,
		resolver,
		gateway,
		m.store,
		m.queue,
		m.eventBus,
		m.clock,
	)
	queue := usecases.NewQueueService(m.queue, m.store, m.eventBus, m.clock)

	restored, err := usecases.NewRecoveryService(m.store, m.queue).Rebuild(ctx)
	if err != nil {
		return err
	}
	if restored > 0 {
		slog.Info("restored queue from storage", "entries", restored)
	}

	m.announcementHandler = application.NewAnnouncementEventHandler(m.announcer, m.eventBus)
	m.announcementHandler.Start()

	m.streamHub = presentation.NewStreamHub(queue)
	m.streamHub.Start(m.eventBus)

	m.limiter = presentation.NewRateLimiter(m.config.SubmitRateLimit, m.config.SubmitRateBurst, m.clock)
	go m.limiter.Run(m.ctx)

	if m.config.EnableTestConfirm {
		slog.Warn("test payment confirmation endpoint is enabled")
	}

	m.routes = presentation.Routes(
		presentation.NewHandlers(submissions, queue),
		m.streamHub,
		presentation.RouteOptions{
			Limiter:           m.limiter,
			EnableTestConfirm: m.config.EnableTestConfirm,
		},
	)

	slog.Info("jukebox module initialized",
		"resolver", m.config.TrackResolver,
		"mock_payments", gateway.IsMock(),
		"time_weight", float64(weight),
	)

	return nil
}

// Migrate creates the module's tables.
func (m *JukeboxModule) Migrate(ctx context.Context) error {
	if m.config == nil {
		return errors.New("jukebox: configuration not loaded")
	}
	if err := m.openStore(ctx); err != nil {
		return err
	}
	return m.store.Migrate(ctx)
}

// HealthCheck reports whether the store is reachable.
func (m *JukeboxModule) HealthCheck(ctx context.Context) error {
	if m.store == nil {
		return errors.New("store not initialized")
	}
	return m.store.Ping(ctx)
}

// Shutdown cleans up module resources.
func (m *JukeboxModule) Shutdown() error {
	// Cancel context first to stop background workers
	if m.cancel != nil {
		m.cancel()
	}

	if m.streamHub != nil {
		m.streamHub.Close()
	}

	// Drain queued announcements before closing their targets
	if m.eventBus != nil {
		m.eventBus.Close()
	}

	if m.lavalink != nil {
		m.lavalink.Close()
	}
	if m.store != nil {
		return m.store.Close()
	}
	return nil
}

func (m *JukeboxModule) openStore(ctx context.Context) error {
	if m.store != nil {
		return nil
	}
	store, err := infrastructure.OpenStore(ctx, m.config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	m.store = store
	return nil
}

func (m *JukeboxModule) newResolver(ctx context.Context) (ports.MetadataResolver, error) {
	switch m.config.TrackResolver {
	case ResolverLavalink:
		resolver, err := infrastructure.NewLavalinkResolver(ctx, infrastructure.LavalinkConfig{
			Address:  m.config.LavalinkAddress,
			Password: m.config.LavalinkPassword,
			UserID:   m.config.LavalinkUserID,
		})
		if err != nil {
			return nil, err
		}
		m.lavalink = resolver
		return resolver, nil
	case ResolverSoundCloud:
		return infrastructure.NewSoundCloudResolver(infrastructure.SoundCloudConfig{
			ClientID: m.config.SoundCloudClientID,
			BaseURL:  m.config.SoundCloudAPIURL,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownResolver, m.config.TrackResolver)
	}
}

func (m *JukeboxModule) newAnnouncer() error {
	if !m.config.AnnouncementsEnabled() {
		slog.Info("discord announcements disabled, logging queue changes instead")
		m.announcer = infrastructure.LogAnnouncer{}
		return nil
	}

	announcer, err := infrastructure.NewDiscordAnnouncer(m.config.DiscordToken, m.config.DiscordChannelID)
	if err != nil {
		return err
	}
	m.announcer = announcer
	return nil
}
