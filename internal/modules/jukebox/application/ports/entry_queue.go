package ports

import (
	"time"

	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
)

// EntryQueue is the shared, thread-safe priority wait queue. The queue reads
// its own clock; callers never supply enqueue or observation times, except
// through Restore.
type EntryQueue interface {
	// Insert adds a bid stamped with the queue's current time.
	Insert(bid domain.Bid) (domain.QueueEntry, error)

	// Restore adds a bid with a known enqueue time, used when rebuilding after restart.
	Restore(bid domain.Bid, enqueuedAt time.Time) (domain.QueueEntry, error)

	// ExtractTop removes the highest-priority entry. ok is false when empty.
	ExtractTop() (entry domain.ScoredEntry, ok bool)

	// Snapshot returns all entries ranked at one instant, which is returned too.
	Snapshot() ([]domain.ScoredEntry, time.Time)

	// Len returns the number of queued entries.
	Len() int
}
