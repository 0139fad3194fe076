package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/application/ports"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
)

var testStart = time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)

func newTestClock() *clock.Mock {
	c := clock.NewMock()
	c.Set(testStart)
	return c
}

func mockTrack(id string) *domain.Track {
	return &domain.Track{
		ID:         domain.TrackID(id),
		Title:      "Track " + id,
		Artist:     "Artist",
		Duration:   3 * time.Minute,
		SourceName: "soundcloud",
	}
}

type mockResolver struct {
	track   *domain.Track
	err     error
	queries []string
}

func (m *mockResolver) Resolve(_ context.Context, query *domain.TrackQuery) (*domain.Track, error) {
	m.queries = append(m.queries, query.Query)
	if m.err != nil {
		return nil, m.err
	}
	return m.track, nil
}

type mockGateway struct {
	createErr error
	requests  []ports.PaymentRequest
	nextID    int

	event    *ports.PaymentEvent
	parseErr error
}

func (m *mockGateway) CreatePendingPayment(
	_ context.Context,
	req ports.PaymentRequest,
) (*ports.PaymentHandle, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.requests = append(m.requests, req)
	m.nextID++
	id := "cs_test_" + string(rune('a'+m.nextID-1))
	return &ports.PaymentHandle{
		SessionID:   id,
		CheckoutURL: "https://checkout.example/" + id,
	}, nil
}

func (m *mockGateway) ParseWebhook(_ []byte, _ string) (*ports.PaymentEvent, error) {
	if m.parseErr != nil {
		return nil, m.parseErr
	}
	return m.event, nil
}

// mockRepository is an in-memory SubmissionRepository.
type mockRepository struct {
	tracks      map[domain.TrackID]domain.Track
	submissions []*domain.Submission
	played      []domain.SubmissionID

	saveErr     error
	createErr   error
	markErr     error
	listErr     error
	completeErr error
	recordErr   error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		tracks: make(map[domain.TrackID]domain.Track),
	}
}

func (m *mockRepository) SaveTrack(_ context.Context, track domain.Track) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.tracks[track.ID] = track
	return nil
}

func (m *mockRepository) GetTrack(_ context.Context, id domain.TrackID) (*domain.Track, error) {
	track, ok := m.tracks[id]
	if !ok {
		return nil, domain.ErrTrackNotFound
	}
	return &track, nil
}

func (m *mockRepository) Create(_ context.Context, s *domain.Submission) error {
	if m.createErr != nil {
		return m.createErr
	}
	s.ID = domain.SubmissionID(len(m.submissions) + 1)
	m.submissions = append(m.submissions, s)
	return nil
}

func (m *mockRepository) find(sessionID string) *domain.Submission {
	for _, s := range m.submissions {
		if s.PaymentSessionID == sessionID {
			return s
		}
	}
	return nil
}

func (m *mockRepository) GetByPaymentSession(_ context.Context, sessionID string) (*domain.Submission, error) {
	s := m.find(sessionID)
	if s == nil {
		return nil, domain.ErrSubmissionNotFound
	}
	return s, nil
}

func (m *mockRepository) Complete(_ context.Context, sessionID string, at time.Time) (*domain.Submission, error) {
	if m.completeErr != nil {
		return nil, m.completeErr
	}
	s := m.find(sessionID)
	if s == nil {
		return nil, domain.ErrSubmissionNotFound
	}
	if s.Status != domain.SubmissionPending {
		return nil, domain.ErrSubmissionNotPending
	}
	s.Status = domain.SubmissionCompleted
	s.ConfirmedAt = &at
	return s, nil
}

func (m *mockRepository) Fail(_ context.Context, sessionID string) error {
	s := m.find(sessionID)
	if s == nil {
		return domain.ErrSubmissionNotFound
	}
	if s.Status != domain.SubmissionPending {
		return domain.ErrSubmissionNotPending
	}
	s.Status = domain.SubmissionFailed
	return nil
}

func (m *mockRepository) RecordEnqueuedAt(_ context.Context, id domain.SubmissionID, at time.Time) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	for _, s := range m.submissions {
		if s.ID == id && s.Status == domain.SubmissionCompleted {
			s.ConfirmedAt = &at
			return nil
		}
	}
	return domain.ErrSubmissionNotFound
}

func (m *mockRepository) MarkPlayed(_ context.Context, id domain.SubmissionID, at time.Time) error {
	if m.markErr != nil {
		return m.markErr
	}
	for _, s := range m.submissions {
		if s.ID == id {
			s.Status = domain.SubmissionPlayed
			s.PlayedAt = &at
			m.played = append(m.played, id)
			return nil
		}
	}
	return domain.ErrSubmissionNotFound
}

func (m *mockRepository) ListQueued(_ context.Context) ([]*domain.Submission, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var queued []*domain.Submission
	for _, s := range m.submissions {
		if s.Status.IsQueued() {
			queued = append(queued, s)
		}
	}
	return queued, nil
}

// addSubmission stores a submission in the given state without going through Submit.
func (m *mockRepository) addSubmission(
	track *domain.Track,
	bid float64,
	sessionID string,
	status domain.SubmissionStatus,
	confirmedAt *time.Time,
) *domain.Submission {
	m.tracks[track.ID] = *track
	s := domain.NewSubmission(*track, bid, sessionID, testStart)
	s.Status = status
	s.ConfirmedAt = confirmedAt
	_ = m.Create(context.Background(), s)
	return s
}

// fakeQueue drives a domain.Queue with a mock clock, without locking.
type fakeQueue struct {
	q     *domain.Queue
	clock *clock.Mock
}

func newFakeQueue(weight domain.TimeWeight, c *clock.Mock) *fakeQueue {
	return &fakeQueue{q: domain.NewQueue(weight, testStart), clock: c}
}

func (f *fakeQueue) Insert(bid domain.Bid) (domain.QueueEntry, error) {
	return f.q.Insert(bid, f.clock.Now())
}

func (f *fakeQueue) Restore(bid domain.Bid, enqueuedAt time.Time) (domain.QueueEntry, error) {
	return f.q.Insert(bid, enqueuedAt)
}

func (f *fakeQueue) ExtractTop() (domain.ScoredEntry, bool) {
	return f.q.ExtractTop(f.clock.Now())
}

func (f *fakeQueue) Snapshot() ([]domain.ScoredEntry, time.Time) {
	now := f.clock.Now()
	return f.q.Snapshot(now), now
}

func (f *fakeQueue) Len() int {
	return f.q.Len()
}

type mockEventPublisher struct {
	enqueued []domain.EntryEnqueuedEvent
	popped   []domain.EntryPoppedEvent
}

func (m *mockEventPublisher) PublishEntryEnqueued(event domain.EntryEnqueuedEvent) {
	m.enqueued = append(m.enqueued, event)
}

func (m *mockEventPublisher) PublishEntryPopped(event domain.EntryPoppedEvent) {
	m.popped = append(m.popped, event)
}

var errBoom = errors.New("boom")
