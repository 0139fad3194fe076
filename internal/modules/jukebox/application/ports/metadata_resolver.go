package ports

import (
	"context"

	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
)

// MetadataResolver turns a participant-supplied track reference into track metadata.
type MetadataResolver interface {
	// Resolve returns the track for query. Unknown tracks yield domain.ErrTrackNotFound.
	Resolve(ctx context.Context, query *domain.TrackQuery) (*domain.Track, error)
}
