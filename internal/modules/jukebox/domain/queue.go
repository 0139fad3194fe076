package domain

import (
	"container/heap"
	"slices"
	"time"
)

// Queue is the priority wait queue: a max-priority heap keyed by a
// time-independent base key, so extraction is O(log n) and no entry is
// ever re-scored while the time weight is unchanged.
//
// Queue is not safe for concurrent use; callers provide the instant of
// every operation explicitly.
type Queue struct {
	entries entryHeap
	weight  TimeWeight
	epoch   time.Time
	lastSeq uint64
}

// NewQueue creates an empty Queue. Base keys are measured from epoch to keep
// their magnitude small; any fixed instant works.
func NewQueue(weight TimeWeight, epoch time.Time) *Queue {
	return &Queue{
		entries: make(entryHeap, 0),
		weight:  weight,
		epoch:   epoch,
	}
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	return q.entries.Len()
}

// IsEmpty returns true if nothing is queued.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// TimeWeight returns the weight the stored keys were computed with.
func (q *Queue) TimeWeight() TimeWeight {
	return q.weight
}

// Insert adds a bid with enqueuedAt = now and returns the stored entry.
// Invalid bids are rejected with ErrInvalidBid and leave the queue unchanged.
func (q *Queue) Insert(bid Bid, now time.Time) (QueueEntry, error) {
	if err := ValidateBid(bid.Amount); err != nil {
		return QueueEntry{}, err
	}

	q.lastSeq++
	entry := QueueEntry{
		Handle:       EntryHandle(q.lastSeq),
		TrackID:      bid.TrackID,
		SubmissionID: bid.SubmissionID,
		BidAmount:    bid.Amount,
		EnqueuedAt:   now,
	}
	heap.Push(&q.entries, newKeyedEntry(entry, q.lastSeq, q.epoch, q.weight))

	return entry, nil
}

// Peek returns the entry that ExtractTop would return at now, without removing it.
func (q *Queue) Peek(now time.Time) (ScoredEntry, bool) {
	if q.IsEmpty() {
		return ScoredEntry{}, false
	}
	return scoreEntry(q.entries[0].entry, now, q.weight), true
}

// ExtractTop removes and returns the entry with the highest effective score.
// now only affects the reported wait time and score, never which entry wins.
// The second return value is false when the queue is empty.
func (q *Queue) ExtractTop(now time.Time) (ScoredEntry, bool) {
	if q.IsEmpty() {
		return ScoredEntry{}, false
	}
	top := heap.Pop(&q.entries).(*keyedEntry)
	return scoreEntry(top.entry, now, q.weight), true
}

// Snapshot returns every queued entry ranked highest priority first, all
// scored at the same instant. The queue is not modified.
func (q *Queue) Snapshot(now time.Time) []ScoredEntry {
	ranked := slices.Clone(q.entries)
	slices.SortFunc(ranked, compareEntries)

	result := make([]ScoredEntry, len(ranked))
	for i, ke := range ranked {
		result[i] = scoreEntry(ke.entry, now, q.weight)
	}
	return result
}

// Rekey switches the queue to a new time weight, recomputing every stored
// key and restoring the heap order.
func (q *Queue) Rekey(weight TimeWeight) error {
	if _, err := NewTimeWeight(float64(weight)); err != nil {
		return err
	}

	q.weight = weight
	for _, ke := range q.entries {
		ke.baseKey = baseKey(ke.entry, q.epoch, weight)
	}
	heap.Init(&q.entries)
	return nil
}

