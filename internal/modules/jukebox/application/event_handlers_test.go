package application

import (
	"context"
	"errors"
	"testing"

	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
)

type mockAnnouncer struct {
	queued  []domain.EntryEnqueuedEvent
	playing []domain.EntryPoppedEvent
	err     error
}

func (m *mockAnnouncer) AnnounceQueued(_ context.Context, event domain.EntryEnqueuedEvent) error {
	m.queued = append(m.queued, event)
	return m.err
}

func (m *mockAnnouncer) AnnounceNowPlaying(_ context.Context, event domain.EntryPoppedEvent) error {
	m.playing = append(m.playing, event)
	return m.err
}

// syncSubscriber calls handlers inline so tests need no goroutines.
type syncSubscriber struct {
	enqueued []func(context.Context, domain.EntryEnqueuedEvent)
	popped   []func(context.Context, domain.EntryPoppedEvent)
}

func (s *syncSubscriber) OnEntryEnqueued(handler func(context.Context, domain.EntryEnqueuedEvent)) {
	s.enqueued = append(s.enqueued, handler)
}

func (s *syncSubscriber) OnEntryPopped(handler func(context.Context, domain.EntryPoppedEvent)) {
	s.popped = append(s.popped, handler)
}

func (s *syncSubscriber) emitEnqueued(event domain.EntryEnqueuedEvent) {
	for _, h := range s.enqueued {
		h(context.Background(), event)
	}
}

func (s *syncSubscriber) emitPopped(event domain.EntryPoppedEvent) {
	for _, h := range s.popped {
		h(context.Background(), event)
	}
}

func TestAnnouncementEventHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "announcer succeeds"},
		{name: "announcer errors are swallowed", err: errors.New("discord down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			announcer := &mockAnnouncer{err: tt.err}
			sub := &syncSubscriber{}
			NewAnnouncementEventHandler(announcer, sub).Start()

			sub.emitEnqueued(domain.EntryEnqueuedEvent{Entry: domain.QueueEntry{TrackID: "a"}})
			sub.emitPopped(domain.EntryPoppedEvent{Entry: domain.ScoredEntry{QueueEntry: domain.QueueEntry{TrackID: "a"}}})

			if len(announcer.queued) != 1 {
				t.Errorf("expected 1 queued announcement, got %d", len(announcer.queued))
			}
			if len(announcer.playing) != 1 {
				t.Errorf("expected 1 now-playing announcement, got %d", len(announcer.playing))
			}
		})
	}
}
