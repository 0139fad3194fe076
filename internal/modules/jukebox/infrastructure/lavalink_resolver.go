package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/application/ports"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
)

// LavalinkConfig contains Lavalink connection configuration.
type LavalinkConfig struct {
	Address  string
	Password string
	UserID   snowflake.ID // Client user id Lavalink sessions are opened for
}

// trackLoader is the part of a Lavalink node the resolver needs.
type trackLoader interface {
	LoadTracks(ctx context.Context, identifier string) (*lavalink.LoadResult, error)
}

// LavalinkResolver resolves track references through a Lavalink node. It is
// used for metadata only; no player is ever created.
type LavalinkResolver struct {
	link   disgolink.Client
	loader trackLoader // Overrides the best node when set
}

// NewLavalinkResolver connects to the Lavalink node described by config.
func NewLavalinkResolver(ctx context.Context, config LavalinkConfig) (*LavalinkResolver, error) {
	link := disgolink.New(config.UserID)

	node, err := link.AddNode(ctx, disgolink.NodeConfig{
		Name:     "main",
		Address:  config.Address,
		Password: config.Password,
		Secure:   false,
	})
	if err != nil {
		link.Close()
		return nil, fmt.Errorf("failed to add Lavalink node: %w", err)
	}

	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", config.Address)

	return &LavalinkResolver{link: link}, nil
}

// Resolve loads query from Lavalink and returns the first matching track.
func (r *LavalinkResolver) Resolve(ctx context.Context, query *domain.TrackQuery) (*domain.Track, error) {
	loader := r.loader
	if loader == nil {
		node := r.link.BestNode()
		if node == nil {
			return nil, errors.New("no available Lavalink node")
		}
		loader = node
	}

	result, err := loader.LoadTracks(ctx, query.LavalinkIdentifier())
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}

	return firstTrack(result)
}

// Close disconnects from every Lavalink node.
func (r *LavalinkResolver) Close() {
	if r.link != nil {
		r.link.Close()
	}
}

// firstTrack picks the track a load result refers to.
func firstTrack(result *lavalink.LoadResult) (*domain.Track, error) {
	switch data := result.Data.(type) {
	case lavalink.Track:
		return convertTrack(data), nil

	case lavalink.Playlist:
		if len(data.Tracks) == 0 {
			return nil, domain.ErrTrackNotFound
		}
		idx := data.Info.SelectedTrack
		if idx < 0 || idx >= len(data.Tracks) {
			idx = 0
		}
		return convertTrack(data.Tracks[idx]), nil

	case lavalink.Search:
		if len(data) == 0 {
			return nil, domain.ErrTrackNotFound
		}
		return convertTrack(data[0]), nil

	case lavalink.Exception:
		return nil, fmt.Errorf("lavalink load failed: %s", data.Message)

	default:
		return nil, domain.ErrTrackNotFound
	}
}

// convertTrack converts a Lavalink track to a domain Track.
func convertTrack(track lavalink.Track) *domain.Track {
	info := track.Info

	return &domain.Track{
		ID:         domain.TrackID(info.Identifier),
		Title:      info.Title,
		Artist:     info.Author,
		Duration:   time.Duration(info.Length) * time.Millisecond,
		URI:        getStringPtr(info.URI),
		ArtworkURL: getStringPtr(info.ArtworkURL),
		SourceName: info.SourceName,
	}
}

func getStringPtr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Ensure LavalinkResolver implements MetadataResolver.
var _ ports.MetadataResolver = (*LavalinkResolver)(nil)
