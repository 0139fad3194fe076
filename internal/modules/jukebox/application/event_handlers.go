package application

import (
	"context"
	"log/slog"

	"github.com/sglre6355/venuevibe/internal/modules/jukebox/application/ports"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
)

// AnnouncementEventHandler relays queue events to the venue announcer.
type AnnouncementEventHandler struct {
	announcer  ports.Announcer
	subscriber ports.EventSubscriber
}

// NewAnnouncementEventHandler creates a new AnnouncementEventHandler.
func NewAnnouncementEventHandler(
	announcer ports.Announcer,
	subscriber ports.EventSubscriber,
) *AnnouncementEventHandler {
	return &AnnouncementEventHandler{
		announcer:  announcer,
		subscriber: subscriber,
	}
}

// Start registers event handlers with the subscriber.
func (h *AnnouncementEventHandler) Start() {
	h.subscriber.OnEntryEnqueued(h.handleEntryEnqueued)
	h.subscriber.OnEntryPopped(h.handleEntryPopped)

	slog.Debug("announcement event handlers registered")
}

func (h *AnnouncementEventHandler) handleEntryEnqueued(
	ctx context.Context,
	event domain.EntryEnqueuedEvent,
) {
	if err := h.announcer.AnnounceQueued(ctx, event); err != nil {
		slog.Warn("failed to announce queued track",
			"track", event.Entry.TrackID,
			"error", err,
		)
	}
}

func (h *AnnouncementEventHandler) handleEntryPopped(
	ctx context.Context,
	event domain.EntryPoppedEvent,
) {
	if err := h.announcer.AnnounceNowPlaying(ctx, event); err != nil {
		slog.Warn("failed to announce now playing",
			"track", event.Entry.TrackID,
			"error", err,
		)
	}
}
