package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/sglre6355/venuevibe/internal/modules/jukebox/application/ports"
)

// MockSessionPrefix prefixes the session ids handed out when no Stripe key is configured.
const MockSessionPrefix = "mock_session_"

var (
	// ErrWebhookNotConfigured is returned when a webhook arrives without a signing secret.
	ErrWebhookNotConfigured = errors.New("stripe webhook secret is not configured")

	// ErrAmountOutOfRange is returned for amounts Stripe cannot charge.
	ErrAmountOutOfRange = errors.New("amount out of range")
)

// maxMinorUnits is the largest amount Stripe accepts, in cents.
const maxMinorUnits = 99_999_999

// StripeConfig contains Stripe configuration.
type StripeConfig struct {
	APIKey        string // Empty enables mock mode
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	Currency      string
}

// StripeGateway opens Stripe Checkout sessions and verifies Stripe webhooks.
type StripeGateway struct {
	api    *client.API // nil in mock mode
	config StripeConfig
}

// NewStripeGateway creates a new StripeGateway.
func NewStripeGateway(config StripeConfig) *StripeGateway {
	if config.Currency == "" {
		config.Currency = string(stripe.CurrencyUSD)
	}

	g := &StripeGateway{config: config}
	if config.APIKey != "" {
		g.api = &client.API{}
		g.api.Init(config.APIKey, nil)
	} else {
		slog.Warn("no Stripe API key configured, payment sessions are mocked")
	}
	return g
}

// IsMock reports whether sessions are created without contacting Stripe.
func (g *StripeGateway) IsMock() bool {
	return g.api == nil
}

// CreatePendingPayment opens a Checkout session charging req.Amount.
func (g *StripeGateway) CreatePendingPayment(
	ctx context.Context,
	req ports.PaymentRequest,
) (*ports.PaymentHandle, error) {
	if g.IsMock() {
		return &ports.PaymentHandle{SessionID: MockSessionPrefix + uuid.NewString()}, nil
	}

	unitAmount, err := toMinorUnits(req.Amount)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(g.config.SuccessURL),
		CancelURL:  stripe.String(g.config.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(g.config.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Song Submission: " + req.TrackTitle),
					},
					UnitAmount: stripe.Int64(unitAmount),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("track_id", string(req.TrackID))
	params.AddMetadata("bid_amount", fmt.Sprintf("%.2f", req.Amount))

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &ports.PaymentHandle{
		SessionID:   session.ID,
		CheckoutURL: session.URL,
	}, nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the event.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*ports.PaymentEvent, error) {
	if g.config.WebhookSecret == "" {
		return nil, ErrWebhookNotConfigured
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		g.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, err
	}

	result := &ports.PaymentEvent{
		Type:    ports.PaymentEventIgnored,
		RawType: string(event.Type),
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded,
		stripe.EventTypeCheckoutSessionExpired,
		stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
	default:
		return result, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	result.SessionID = session.ID

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		// Delayed payment methods complete the session before funds arrive;
		// those are confirmed by async_payment_succeeded instead.
		if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusUnpaid {
			result.Type = ports.PaymentEventCompleted
		}
	case stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		result.Type = ports.PaymentEventCompleted
	case stripe.EventTypeCheckoutSessionExpired, stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
		result.Type = ports.PaymentEventExpired
	}

	return result, nil
}

// toMinorUnits converts an amount to cents.
func toMinorUnits(amount float64) (int64, error) {
	cents := math.Round(amount * 100)
	if !(cents >= 0 && cents <= maxMinorUnits) {
		return 0, fmt.Errorf("%w: %v", ErrAmountOutOfRange, amount)
	}
	return int64(cents), nil
}

// Ensure StripeGateway implements PaymentGateway.
var _ ports.PaymentGateway = (*StripeGateway)(nil)
