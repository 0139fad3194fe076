package usecases

import (
	"context"
	"log/slog"
	"time"

	"github.com/sglre6355/venuevibe/internal/modules/jukebox/application/ports"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
)

const DefaultPageSize = 10

// QueueItem is a ranked entry joined with its track metadata.
type QueueItem struct {
	domain.ScoredEntry
	Position int           // 1-indexed rank in the whole queue
	Track    *domain.Track // nil if metadata is unavailable
}

// QueueListInput contains the input for the QueueList use case.
type QueueListInput struct {
	Page     int // 1-indexed page number
	PageSize int // Items per page (optional, defaults to 10)
}

// QueueListOutput contains the result of the QueueList use case.
type QueueListOutput struct {
	Items        []QueueItem
	TotalEntries int
	CurrentPage  int
	TotalPages   int
	ObservedAt   time.Time
}

// PopNextOutput contains the result of the PopNext use case.
type PopNextOutput struct {
	Entry domain.ScoredEntry
	Track *domain.Track // nil if metadata is unavailable
}

// QueueService handles reading and draining the queue.
type QueueService struct {
	queue     ports.EntryQueue
	repo      domain.SubmissionRepository
	publisher ports.EventPublisher
	clock     ports.Clock
}

// NewQueueService creates a new QueueService.
func NewQueueService(
	queue ports.EntryQueue,
	repo domain.SubmissionRepository,
	publisher ports.EventPublisher,
	clock ports.Clock,
) *QueueService {
	return &QueueService{
		queue:     queue,
		repo:      repo,
		publisher: publisher,
		clock:     clock,
	}
}

// List returns the ranked queue with pagination.
// PageSize below zero returns every entry on a single page.
func (q *QueueService) List(ctx context.Context, input QueueListInput) (*QueueListOutput, error) {
	entries, observedAt := q.queue.Snapshot()
	total := len(entries)

	pageSize := input.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize < 0 {
		pageSize = max(total, 1)
	}

	page := input.Page
	if page <= 0 {
		page = 1
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	// Clamp page to valid range
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)

	items := make([]QueueItem, 0, max(end-start, 0))
	tracks := make(map[domain.TrackID]*domain.Track)
	for i := start; i < end; i++ {
		items = append(items, QueueItem{
			ScoredEntry: entries[i],
			Position:    i + 1,
			Track:       q.lookupTrack(ctx, entries[i].TrackID, tracks),
		})
	}

	return &QueueListOutput{
		Items:        items,
		TotalEntries: total,
		CurrentPage:  page,
		TotalPages:   totalPages,
		ObservedAt:   observedAt,
	}, nil
}

// PopNext removes the highest-priority entry and marks its submission played.
// ok is false when the queue is empty.
func (q *QueueService) PopNext(ctx context.Context) (*PopNextOutput, bool, error) {
	entry, ok := q.queue.ExtractTop()
	if !ok {
		return nil, false, nil
	}

	// The entry is already out of the queue, so bookkeeping failures are
	// logged rather than returned.
	if entry.SubmissionID != 0 {
		if err := q.repo.MarkPlayed(ctx, entry.SubmissionID, q.clock.Now()); err != nil {
			slog.Error("failed to mark submission played",
				"submission", entry.SubmissionID,
				"error", err,
			)
		}
	}

	track := q.lookupTrack(ctx, entry.TrackID, nil)

	slog.Info("popped next track",
		"track", entry.TrackID,
		"bid", entry.BidAmount,
		"wait", entry.WaitTime,
		"score", entry.EffectiveScore,
	)

	if q.publisher != nil {
		event := domain.EntryPoppedEvent{
			Entry:      entry,
			QueueLen:   q.queue.Len(),
			OccurredAt: entry.EnqueuedAt.Add(entry.WaitTime),
		}
		if track != nil {
			event.Track = *track
		}
		q.publisher.PublishEntryPopped(event)
	}

	return &PopNextOutput{
		Entry: entry,
		Track: track,
	}, true, nil
}

func (q *QueueService) lookupTrack(
	ctx context.Context,
	id domain.TrackID,
	cache map[domain.TrackID]*domain.Track,
) *domain.Track {
	if track, ok := cache[id]; ok {
		return track
	}

	track, err := q.repo.GetTrack(ctx, id)
	if err != nil {
		slog.Debug("track metadata unavailable", "track", id, "error", err)
		track = nil
	}
	if cache != nil {
		cache[id] = track
	}
	return track
}
