package domain

import (
	"strings"
)

// SearchSource is the Lavalink search prefix used for non-URL queries.
type SearchSource string

const (
	// SourceSoundCloud searches SoundCloud.
	SourceSoundCloud SearchSource = "scsearch"
	// SourceDirect indicates a direct URL (no search prefix).
	SourceDirect SearchSource = ""
)

// TrackQuery is a participant-supplied track reference.
type TrackQuery struct {
	Query  string       // The search term or URL
	Source SearchSource // The search source
	IsURL  bool         // Whether the query is a direct URL
}

// NewTrackQuery creates a TrackQuery from user input.
// URLs are resolved directly; anything else is searched on SoundCloud.
func NewTrackQuery(input string) *TrackQuery {
	input = strings.TrimSpace(input)

	if isURL(input) {
		return &TrackQuery{
			Query:  input,
			Source: SourceDirect,
			IsURL:  true,
		}
	}

	return &TrackQuery{
		Query:  input,
		Source: SourceSoundCloud,
		IsURL:  false,
	}
}

// LavalinkIdentifier returns the query formatted as a Lavalink load identifier.
func (q *TrackQuery) LavalinkIdentifier() string {
	if q.IsURL {
		return q.Query
	}
	return string(q.Source) + ":" + q.Query
}

// IsValid returns true if the query is not empty.
func (q *TrackQuery) IsValid() bool {
	return q.Query != ""
}

func isURL(input string) bool {
	return strings.HasPrefix(input, "http://") ||
		strings.HasPrefix(input, "https://") ||
		strings.HasPrefix(input, "www.")
}
