package domain

import (
	"strconv"
	"time"
)

// TrackID is the stable identifier a metadata resolver assigns to a track
// (e.g. the SoundCloud track id). It is not unique within the queue.
type TrackID string

// Track holds the descriptive metadata of a resolved track.
type Track struct {
	ID         TrackID
	Title      string
	Artist     string
	Duration   time.Duration
	URI        string
	ArtworkURL string
	SourceName string // e.g., "soundcloud", "youtube"
}

// Source returns the parsed TrackSource for this track.
func (t *Track) Source() TrackSource {
	return ParseTrackSource(t.SourceName)
}

// IsValid returns true if the track has the minimum required fields.
func (t *Track) IsValid() bool {
	return t.ID != ""
}

// DisplayTitle returns the title, falling back to the track ID.
func (t *Track) DisplayTitle() string {
	if t.Title == "" {
		return string(t.ID)
	}
	return t.Title
}

// FormattedDuration returns the duration as mm:ss or hh:mm:ss.
// Tracks with unknown duration are shown as "--:--".
func (t *Track) FormattedDuration() string {
	if t.Duration <= 0 {
		return "--:--"
	}

	totalSeconds := int(t.Duration.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
	}
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
