package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sglre6355/venuevibe/internal/modules/jukebox/application/ports"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
)

// DefaultSoundCloudAPI is the SoundCloud v2 API base URL.
const DefaultSoundCloudAPI = "https://api-v2.soundcloud.com"

// SoundCloudConfig contains SoundCloud API configuration.
type SoundCloudConfig struct {
	ClientID string
	BaseURL  string // Optional: defaults to DefaultSoundCloudAPI
}

// SoundCloudResolver resolves track URLs and search text through the SoundCloud v2 API.
type SoundCloudResolver struct {
	clientID   string
	baseURL    string
	httpClient *http.Client
}

// NewSoundCloudResolver creates a new SoundCloudResolver.
func NewSoundCloudResolver(config SoundCloudConfig) *SoundCloudResolver {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultSoundCloudAPI
	}
	return &SoundCloudResolver{
		clientID: config.ClientID,
		baseURL:  baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type soundCloudUser struct {
	Username string `json:"username"`
}

type soundCloudTrack struct {
	ID           int64          `json:"id"`
	Kind         string         `json:"kind"`
	Title        string         `json:"title"`
	Duration     int64          `json:"duration"` // milliseconds
	PermalinkURL string         `json:"permalink_url"`
	ArtworkURL   string         `json:"artwork_url"`
	User         soundCloudUser `json:"user"`
}

type soundCloudSearchResult struct {
	Collection []soundCloudTrack `json:"collection"`
}

// Resolve returns the SoundCloud track for query. URLs go through the resolve
// endpoint; anything else returns the first track search hit.
func (r *SoundCloudResolver) Resolve(ctx context.Context, query *domain.TrackQuery) (*domain.Track, error) {
	params := url.Values{}
	params.Set("client_id", r.clientID)

	var sc soundCloudTrack
	if query.IsURL {
		params.Set("url", query.Query)
		if err := r.get(ctx, "/resolve", params, &sc); err != nil {
			return nil, err
		}
	} else {
		params.Set("q", query.Query)
		params.Set("limit", "1")

		var result soundCloudSearchResult
		if err := r.get(ctx, "/search/tracks", params, &result); err != nil {
			return nil, err
		}
		if len(result.Collection) == 0 {
			return nil, domain.ErrTrackNotFound
		}
		sc = result.Collection[0]
	}

	if sc.ID == 0 || (sc.Kind != "" && sc.Kind != "track") {
		return nil, domain.ErrTrackNotFound
	}

	return &domain.Track{
		ID:         domain.TrackID(strconv.FormatInt(sc.ID, 10)),
		Title:      sc.Title,
		Artist:     sc.User.Username,
		Duration:   time.Duration(sc.Duration) * time.Millisecond,
		URI:        sc.PermalinkURL,
		ArtworkURL: sc.ArtworkURL,
		SourceName: string(domain.TrackSourceSoundCloud),
	}, nil
}

func (r *SoundCloudResolver) get(ctx context.Context, endpoint string, params url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("soundcloud request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrTrackNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("soundcloud returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode soundcloud response: %w", err)
	}
	return nil
}

// Ensure SoundCloudResolver implements MetadataResolver.
var _ ports.MetadataResolver = (*SoundCloudResolver)(nil)
