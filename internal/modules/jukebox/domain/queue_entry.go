package domain

import (
	"math"
	"time"
)

// EntryHandle identifies one queue entry for the lifetime of the process.
// Handles increase with insertion order.
type EntryHandle uint64

// TimeWeight is the priority credit gained per second of waiting,
// in the same monetary units as bids.
type TimeWeight float64

// NewTimeWeight validates w and returns it as a TimeWeight.
func NewTimeWeight(w float64) (TimeWeight, error) {
	if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return 0, ErrInvalidTimeWeight
	}
	return TimeWeight(w), nil
}

// Credit returns the priority credit accrued over d.
func (w TimeWeight) Credit(d time.Duration) float64 {
	return d.Seconds() * float64(w)
}

// ValidateBid returns ErrInvalidBid unless amount is finite and non-negative.
func ValidateBid(amount float64) error {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ErrInvalidBid
	}
	return nil
}

// Bid is a request to place a paid track into the queue.
type Bid struct {
	TrackID      TrackID
	Amount       float64
	SubmissionID SubmissionID // Optional: the persisted submission this bid belongs to
}

// QueueEntry is one confirmed track waiting to play. Entries are never
// mutated after insertion.
type QueueEntry struct {
	Handle       EntryHandle
	TrackID      TrackID
	SubmissionID SubmissionID
	BidAmount    float64
	EnqueuedAt   time.Time
}

// WaitTime returns how long the entry has waited at now.
func (e QueueEntry) WaitTime(now time.Time) time.Duration {
	return now.Sub(e.EnqueuedAt)
}

// EffectiveScore returns bid + wait time * weight, evaluated at now.
func (e QueueEntry) EffectiveScore(now time.Time, weight TimeWeight) float64 {
	return e.BidAmount + weight.Credit(e.WaitTime(now))
}

// ScoredEntry is a QueueEntry together with its score at one observation instant.
type ScoredEntry struct {
	QueueEntry
	WaitTime       time.Duration
	EffectiveScore float64
}

func scoreEntry(e QueueEntry, now time.Time, weight TimeWeight) ScoredEntry {
	return ScoredEntry{
		QueueEntry:     e,
		WaitTime:       e.WaitTime(now),
		EffectiveScore: e.EffectiveScore(now, weight),
	}
}
