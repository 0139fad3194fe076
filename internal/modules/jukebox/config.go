package jukebox

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/caarlos0/env/v11"
	"github.com/disgoorg/snowflake/v2"

	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
)

// Track resolver backends.
const (
	ResolverSoundCloud = "soundcloud"
	ResolverLavalink   = "lavalink"
)

var (
	ErrUnknownResolver       = errors.New("unknown track resolver")
	ErrMissingResolverConfig = errors.New("missing track resolver configuration")
	ErrInvalidRateLimit      = errors.New("submit rate limit must be positive")
	ErrInvalidMaxBid         = errors.New("max bid must be positive and finite")
)

// Config holds the jukebox module configuration.
type Config struct {
	// TimeWeight is the priority credit per second of waiting.
	TimeWeight  float64 `env:"TIME_WEIGHT"  envDefault:"0.000167"`
	MaxBid      float64 `env:"MAX_BID"      envDefault:"10000"`
	DatabaseURL string  `env:"DATABASE_URL" envDefault:"sqlite://venuevibe.db"`

	TrackResolver      string       `env:"TRACK_RESOLVER"       envDefault:"soundcloud"`
	SoundCloudClientID string       `env:"SOUNDCLOUD_CLIENT_ID"`
	SoundCloudAPIURL   string       `env:"SOUNDCLOUD_API_URL"`
	LavalinkAddress    string       `env:"LAVALINK_ADDRESS"`
	LavalinkPassword   string       `env:"LAVALINK_PASSWORD"`
	LavalinkUserID     snowflake.ID `env:"LAVALINK_USER_ID"`

	StripeAPIKey        string `env:"STRIPE_API_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	CheckoutSuccessURL  string `env:"CHECKOUT_SUCCESS_URL" envDefault:"http://localhost:8000/success"`
	CheckoutCancelURL   string `env:"CHECKOUT_CANCEL_URL"  envDefault:"http://localhost:8000/cancel"`
	Currency            string `env:"CURRENCY"             envDefault:"usd"`

	DiscordToken     string       `env:"DISCORD_TOKEN"`
	DiscordChannelID snowflake.ID `env:"DISCORD_CHANNEL_ID"`

	EnableTestConfirm bool    `env:"ENABLE_TEST_CONFIRM" envDefault:"false"`
	SubmitRateLimit   float64 `env:"SUBMIT_RATE_LIMIT"   envDefault:"1"`
	SubmitRateBurst   int     `env:"SUBMIT_RATE_BURST"   envDefault:"5"`
}

// LoadConfig parses and validates the module configuration from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	err := env.ParseWithOptions(cfg, env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(snowflake.ID(0)): func(v string) (any, error) {
				return snowflake.Parse(v)
			},
		},
	})
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if _, err := domain.NewTimeWeight(c.TimeWeight); err != nil {
		return err
	}
	if !(c.MaxBid > 0) || math.IsInf(c.MaxBid, 1) {
		return ErrInvalidMaxBid
	}

	switch c.TrackResolver {
	case ResolverSoundCloud:
		if c.SoundCloudClientID == "" {
			return fmt.Errorf("%w: SOUNDCLOUD_CLIENT_ID is required", ErrMissingResolverConfig)
		}
	case ResolverLavalink:
		if c.LavalinkAddress == "" || c.LavalinkPassword == "" || c.LavalinkUserID == 0 {
			return fmt.Errorf(
				"%w: LAVALINK_ADDRESS, LAVALINK_PASSWORD and LAVALINK_USER_ID are required",
				ErrMissingResolverConfig,
			)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownResolver, c.TrackResolver)
	}

	if c.SubmitRateLimit <= 0 || c.SubmitRateBurst <= 0 {
		return ErrInvalidRateLimit
	}
	return nil
}

// AnnouncementsEnabled reports whether Discord announcements are configured.
func (c *Config) AnnouncementsEnabled() bool {
	return c.DiscordToken != "" && c.DiscordChannelID != 0
}
