package ports

import (
	"context"

	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
)

// EventSubscriber defines the interface for subscribing to queue events.
type EventSubscriber interface {
	OnEntryEnqueued(handler func(context.Context, domain.EntryEnqueuedEvent))
	OnEntryPopped(handler func(context.Context, domain.EntryPoppedEvent))
}
