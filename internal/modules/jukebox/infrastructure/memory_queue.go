package infrastructure

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/application/ports"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
)

// MemoryQueue is the process-wide priority wait queue. A single mutex guards
// the heap, and every operation reads the clock while holding it, so the
// enqueue and observation times are linearized with the heap changes.
type MemoryQueue struct {
	mu    sync.Mutex
	queue *domain.Queue
	clock clock.Clock
}

// NewMemoryQueue creates a new MemoryQueue. The queue's key epoch is the
// clock's time at construction.
func NewMemoryQueue(weight domain.TimeWeight, clk clock.Clock) *MemoryQueue {
	if clk == nil {
		clk = clock.New()
	}
	return &MemoryQueue{
		queue: domain.NewQueue(weight, clk.Now()),
		clock: clk,
	}
}

// Insert adds bid stamped with the current time.
func (q *MemoryQueue) Insert(bid domain.Bid) (domain.QueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.queue.Insert(bid, q.clock.Now())
}

// Restore adds bid with a previously recorded enqueue time.
func (q *MemoryQueue) Restore(bid domain.Bid, enqueuedAt time.Time) (domain.QueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.queue.Insert(bid, enqueuedAt)
}

// ExtractTop removes the highest-priority entry.
func (q *MemoryQueue) ExtractTop() (domain.ScoredEntry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.queue.ExtractTop(q.clock.Now())
}

// Peek returns the entry ExtractTop would return, without removing it.
func (q *MemoryQueue) Peek() (domain.ScoredEntry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.queue.Peek(q.clock.Now())
}

// Snapshot returns the ranked queue and the instant it was scored at.
func (q *MemoryQueue) Snapshot() ([]domain.ScoredEntry, time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.clock.Now()
	return q.queue.Snapshot(now), now
}

// Rekey changes the time weight of every stored entry.
func (q *MemoryQueue) Rekey(weight domain.TimeWeight) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.queue.Rekey(weight)
}

// Len returns the number of queued entries.
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.queue.Len()
}

// Ensure MemoryQueue implements EntryQueue.
var _ ports.EntryQueue = (*MemoryQueue)(nil)
