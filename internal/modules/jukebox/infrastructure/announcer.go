package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/sglre6355/venuevibe/internal/modules/jukebox/application/ports"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
)

// embedSender is the part of a discordgo session the announcer needs.
type embedSender interface {
	ChannelMessageSendEmbed(
		channelID string,
		embed *discordgo.MessageEmbed,
		options ...discordgo.RequestOption,
	) (*discordgo.Message, error)
}

// DiscordAnnouncer posts queue updates to a Discord channel over the REST API.
// No gateway connection is opened.
type DiscordAnnouncer struct {
	session   embedSender
	channelID snowflake.ID
}

// NewDiscordAnnouncer creates a DiscordAnnouncer authenticated with a bot token.
func NewDiscordAnnouncer(token string, channelID snowflake.ID) (*DiscordAnnouncer, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	return &DiscordAnnouncer{
		session:   session,
		channelID: channelID,
	}, nil
}

// AnnounceQueued posts an "Added to Queue" embed.
func (a *DiscordAnnouncer) AnnounceQueued(ctx context.Context, event domain.EntryEnqueuedEvent) error {
	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name: "Added to Queue",
		},
		Title:     event.Track.DisplayTitle(),
		URL:       event.Track.URI,
		Color:     event.Track.Source().Color(),
		Timestamp: event.OccurredAt.UTC().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Artist", Value: orDash(event.Track.Artist), Inline: true},
			{Name: "Bid", Value: fmt.Sprintf("%.2f", event.Entry.BidAmount), Inline: true},
			{Name: "In Queue", Value: fmt.Sprintf("%d", event.QueueLen), Inline: true},
		},
	}
	if event.Track.ArtworkURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: event.Track.ArtworkURL}
	}

	_, err := a.session.ChannelMessageSendEmbed(a.channelID.String(), embed, discordgo.WithContext(ctx))
	return err
}

// AnnounceNowPlaying posts a "Now Playing" embed.
func (a *DiscordAnnouncer) AnnounceNowPlaying(ctx context.Context, event domain.EntryPoppedEvent) error {
	title := event.Track.DisplayTitle()
	if title == "" {
		title = string(event.Entry.TrackID)
	}

	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name: "Now Playing",
		},
		Title:     title,
		URL:       event.Track.URI,
		Color:     event.Track.Source().Color(),
		Timestamp: event.OccurredAt.UTC().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Artist", Value: orDash(event.Track.Artist), Inline: true},
			{Name: "Duration", Value: event.Track.FormattedDuration(), Inline: true},
			{Name: "Bid", Value: fmt.Sprintf("%.2f", event.Entry.BidAmount), Inline: true},
			{Name: "Waited", Value: event.Entry.WaitTime.Round(time.Second).String(), Inline: true},
		},
	}
	if event.Track.ArtworkURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: event.Track.ArtworkURL}
	}

	_, err := a.session.ChannelMessageSendEmbed(a.channelID.String(), embed, discordgo.WithContext(ctx))
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// LogAnnouncer writes queue updates to the structured log. It is used when
// no Discord channel is configured.
type LogAnnouncer struct{}

// AnnounceQueued logs a newly queued track.
func (LogAnnouncer) AnnounceQueued(_ context.Context, event domain.EntryEnqueuedEvent) error {
	slog.Info("track queued",
		"track", event.Entry.TrackID,
		"title", event.Track.Title,
		"bid", event.Entry.BidAmount,
		"queue_len", event.QueueLen,
	)
	return nil
}

// AnnounceNowPlaying logs the track just taken off the queue.
func (LogAnnouncer) AnnounceNowPlaying(_ context.Context, event domain.EntryPoppedEvent) error {
	slog.Info("now playing",
		"track", event.Entry.TrackID,
		"title", event.Track.Title,
		"bid", event.Entry.BidAmount,
		"wait", event.Entry.WaitTime,
		"score", event.Entry.EffectiveScore,
	)
	return nil
}

// Compile-time checks that the announcers implement ports.Announcer.
var (
	_ ports.Announcer = (*DiscordAnnouncer)(nil)
	_ ports.Announcer = LogAnnouncer{}
)
