package ports

import (
	"context"

	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
)

// PaymentRequest describes the pending payment for one submission.
type PaymentRequest struct {
	TrackID    domain.TrackID
	TrackTitle string
	Amount     float64
}

// PaymentHandle identifies a pending payment at the provider.
type PaymentHandle struct {
	SessionID   string
	CheckoutURL string // Empty in mock mode
}

// PaymentEventType is the kind of provider notification.
type PaymentEventType int

const (
	// PaymentEventIgnored is any notification the service does not act on.
	PaymentEventIgnored PaymentEventType = iota
	// PaymentEventCompleted means the payment for SessionID cleared.
	PaymentEventCompleted
	// PaymentEventExpired means the session expired without payment.
	PaymentEventExpired
)

// String returns a human-readable representation of the event type.
func (t PaymentEventType) String() string {
	switch t {
	case PaymentEventCompleted:
		return "completed"
	case PaymentEventExpired:
		return "expired"
	default:
		return "ignored"
	}
}

// PaymentEvent is a verified provider notification.
type PaymentEvent struct {
	Type      PaymentEventType
	SessionID string
	RawType   string // Provider-specific event name, for logging
}

// PaymentGateway creates pending payments and verifies provider notifications.
type PaymentGateway interface {
	// CreatePendingPayment opens a checkout session for req.
	CreatePendingPayment(ctx context.Context, req PaymentRequest) (*PaymentHandle, error)

	// ParseWebhook verifies the signature of payload and decodes it.
	ParseWebhook(payload []byte, signature string) (*PaymentEvent, error)
}
