package domain

// TrackSource represents the origin platform of a track.
type TrackSource string

const (
	TrackSourceSoundCloud TrackSource = "soundcloud"
	TrackSourceYouTube    TrackSource = "youtube"
	TrackSourceBandcamp   TrackSource = "bandcamp"
	TrackSourceOther      TrackSource = "other"
)

// ParseTrackSource converts a source name string to a TrackSource.
func ParseTrackSource(name string) TrackSource {
	switch name {
	case "soundcloud":
		return TrackSourceSoundCloud
	case "youtube":
		return TrackSourceYouTube
	case "bandcamp":
		return TrackSourceBandcamp
	default:
		return TrackSourceOther
	}
}

// Color returns the embed accent color used when announcing tracks from this source.
func (s TrackSource) Color() int {
	switch s {
	case TrackSourceSoundCloud:
		return 0xFF5500
	case TrackSourceYouTube:
		return 0xFF0000
	case TrackSourceBandcamp:
		return 0x629AA9
	default:
		return 0x5865F2
	}
}
