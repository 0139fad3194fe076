package infrastructure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sglre6355/venuevibe/internal/modules/jukebox/application/ports"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
)

// DefaultEventBufferSize is the default buffer size for event channels.
const DefaultEventBufferSize = 100

// Compile-time checks that ChannelEventBus implements ports interfaces.
var (
	_ ports.EventPublisher  = (*ChannelEventBus)(nil)
	_ ports.EventSubscriber = (*ChannelEventBus)(nil)
)

// ChannelEventBus provides a channel-based event bus for async event handling.
// It implements both EventPublisher and EventSubscriber interfaces.
type ChannelEventBus struct {
	entryEnqueued chan domain.EntryEnqueuedEvent
	entryPopped   chan domain.EntryPoppedEvent

	entryEnqueuedHandlers []func(context.Context, domain.EntryEnqueuedEvent)
	entryPoppedHandlers   []func(context.Context, domain.EntryPoppedEvent)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

// NewChannelEventBus creates a new ChannelEventBus with the given buffer size.
func NewChannelEventBus(bufferSize int) *ChannelEventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	bus := &ChannelEventBus{
		entryEnqueued: make(chan domain.EntryEnqueuedEvent, bufferSize),
		entryPopped:   make(chan domain.EntryPoppedEvent, bufferSize),
		ctx:           ctx,
		cancel:        cancel,
	}

	bus.wg.Add(2)
	go dispatch(bus, bus.entryEnqueued, func() []func(context.Context, domain.EntryEnqueuedEvent) {
		return bus.entryEnqueuedHandlers
	})
	go dispatch(bus, bus.entryPopped, func() []func(context.Context, domain.EntryPoppedEvent) {
		return bus.entryPoppedHandlers
	})

	return bus
}

// dispatch delivers events from ch to the handlers returned by handlers until
// ch is closed and drained.
func dispatch[E any](
	b *ChannelEventBus,
	ch <-chan E,
	handlers func() []func(context.Context, E),
) {
	defer b.wg.Done()
	for event := range ch {
		b.mu.RLock()
		hs := handlers()
		b.mu.RUnlock()
		for _, handler := range hs {
			handler(b.ctx, event)
		}
	}
}

// --- EventPublisher interface ---

// PublishEntryEnqueued publishes an EntryEnqueuedEvent.
// Non-blocking: if the channel buffer is full, the event is dropped with a warning.
func (b *ChannelEventBus) PublishEntryEnqueued(event domain.EntryEnqueuedEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", "EntryEnqueued")
		return
	}

	select {
	case b.entryEnqueued <- event:
		slog.Debug("published event", "type", "EntryEnqueued", "track", event.Entry.TrackID)
	default:
		slog.Warn("event buffer full, dropping event", "type", "EntryEnqueued")
	}
}

// PublishEntryPopped publishes an EntryPoppedEvent.
// Non-blocking: if the channel buffer is full, the event is dropped with a warning.
func (b *ChannelEventBus) PublishEntryPopped(event domain.EntryPoppedEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", "EntryPopped")
		return
	}

	select {
	case b.entryPopped <- event:
		slog.Debug("published event", "type", "EntryPopped", "track", event.Entry.TrackID)
	default:
		slog.Warn("event buffer full, dropping event", "type", "EntryPopped")
	}
}

// --- EventSubscriber interface ---

// OnEntryEnqueued registers a handler for EntryEnqueuedEvent.
func (b *ChannelEventBus) OnEntryEnqueued(handler func(context.Context, domain.EntryEnqueuedEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entryEnqueuedHandlers = append(b.entryEnqueuedHandlers, handler)
}

// OnEntryPopped registers a handler for EntryPoppedEvent.
func (b *ChannelEventBus) OnEntryPopped(handler func(context.Context, domain.EntryPoppedEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entryPoppedHandlers = append(b.entryPoppedHandlers, handler)
}

// Close stops accepting events and blocks until every buffered event has
// been delivered. After calling Close, publishing will no longer send events.
func (b *ChannelEventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	close(b.entryEnqueued)
	close(b.entryPopped)

	b.wg.Wait()
	b.cancel()

	slog.Debug("channel event bus closed")
}
