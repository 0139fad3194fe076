package domain

import (
	"cmp"
	"time"
)

// keyedEntry wraps a QueueEntry with its time-independent ordering key.
//
// baseKey = bid - (enqueuedAt - epoch) * weight. Every entry gains the same
// (now - epoch) * weight at any instant, so ordering by baseKey is ordering
// by effective score and the key never needs updating while the weight is fixed.
type keyedEntry struct {
	entry   QueueEntry
	baseKey float64
	seq     uint64 // insertion order; last-resort tie-break
}

func newKeyedEntry(e QueueEntry, seq uint64, epoch time.Time, weight TimeWeight) *keyedEntry {
	return &keyedEntry{
		entry:   e,
		baseKey: baseKey(e, epoch, weight),
		seq:     seq,
	}
}

func baseKey(e QueueEntry, epoch time.Time, weight TimeWeight) float64 {
	return e.BidAmount - weight.Credit(e.EnqueuedAt.Sub(epoch))
}

// compareEntries orders a before b when a should play first: larger baseKey,
// then earlier enqueuedAt, then lower insertion sequence. Comparisons are
// exact so the order is a strict total order.
func compareEntries(a, b *keyedEntry) int {
	switch {
	case a.baseKey > b.baseKey:
		return -1
	case a.baseKey < b.baseKey:
		return 1
	}
	if c := a.entry.EnqueuedAt.Compare(b.entry.EnqueuedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

// entryHeap implements container/heap.Interface with the highest-priority
// entry at index 0.
type entryHeap []*keyedEntry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool { return compareEntries(h[i], h[j]) < 0 }

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

// Push appends x to the heap. Called by container/heap only.
func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(*keyedEntry))
}

// Pop removes and returns the last element. Called by container/heap only.
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
