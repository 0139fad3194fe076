package ports

import (
	"context"

	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
)

// Announcer tells the venue about queue changes (e.g. a Discord channel).
type Announcer interface {
	// AnnounceQueued reports a newly paid track.
	AnnounceQueued(ctx context.Context, event domain.EntryEnqueuedEvent) error

	// AnnounceNowPlaying reports the track just taken off the queue.
	AnnounceNowPlaying(ctx context.Context, event domain.EntryPoppedEvent) error
}
