package presentation

import (
	"time"

	"github.com/sglre6355/venuevibe/internal/modules/jukebox/application/usecases"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
)

type submitRequest struct {
	URL string   `json:"url"`
	Bid *float64 `json:"bid"`
}

type submitResponse struct {
	CheckoutSessionID string `json:"checkout_session_id"`
	CheckoutURL       string `json:"checkout_url,omitempty"`
	TrackID           string `json:"track_id"`
	Title             string `json:"title,omitempty"`
}

// entryResponse is one ranked queue entry. Times are in seconds.
type entryResponse struct {
	Position   int       `json:"position,omitempty"`
	TrackID    string    `json:"track_id"`
	Title      string    `json:"title,omitempty"`
	Artist     string    `json:"artist,omitempty"`
	Duration   string    `json:"duration,omitempty"`
	URI        string    `json:"uri,omitempty"`
	Bid        float64   `json:"bid"`
	WaitTime   float64   `json:"wait_time"`
	FinalScore float64   `json:"final_score"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

type queueResponse struct {
	Entries    []entryResponse `json:"entries"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	ObservedAt time.Time       `json:"observed_at"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type statusResponse struct {
	Status string `json:"status"`
}

func newEntryResponse(entry domain.ScoredEntry, track *domain.Track, position int) entryResponse {
	resp := entryResponse{
		Position:   position,
		TrackID:    string(entry.TrackID),
		Bid:        entry.BidAmount,
		WaitTime:   entry.WaitTime.Seconds(),
		FinalScore: entry.EffectiveScore,
		EnqueuedAt: entry.EnqueuedAt.UTC(),
	}
	if track != nil {
		resp.Title = track.Title
		resp.Artist = track.Artist
		resp.Duration = track.FormattedDuration()
		resp.URI = track.URI
	}
	return resp
}

func newQueueResponse(out *usecases.QueueListOutput) queueResponse {
	entries := make([]entryResponse, len(out.Items))
	for i, item := range out.Items {
		entries[i] = newEntryResponse(item.ScoredEntry, item.Track, item.Position)
	}
	return queueResponse{
		Entries:    entries,
		Total:      out.TotalEntries,
		Page:       out.CurrentPage,
		TotalPages: out.TotalPages,
		ObservedAt: out.ObservedAt.UTC(),
	}
}
