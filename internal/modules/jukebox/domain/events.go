package domain

import "time"

// EntryEnqueuedEvent is published when a paid track enters the queue.
type EntryEnqueuedEvent struct {
	Entry      QueueEntry
	Track      Track
	QueueLen   int
	OccurredAt time.Time
}

// EntryPoppedEvent is published when the next track is taken off the queue to play.
type EntryPoppedEvent struct {
	Entry      ScoredEntry
	Track      Track // Zero value if the track metadata could not be loaded
	QueueLen   int
	OccurredAt time.Time
}
