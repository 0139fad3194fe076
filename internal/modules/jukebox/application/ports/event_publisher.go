package ports

import "github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"

// EventPublisher defines the interface for publishing queue events asynchronously.
type EventPublisher interface {
	PublishEntryEnqueued(event domain.EntryEnqueuedEvent)
	PublishEntryPopped(event domain.EntryPoppedEvent)
}
