package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sglre6355/venuevibe/internal/modules/jukebox/application/ports"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
)

// SubmitInput contains the input for the Submit use case.
type SubmitInput struct {
	TrackRef string // URL or search text
	Bid      float64
}

// SubmitOutput contains the result of the Submit use case.
type SubmitOutput struct {
	CheckoutSessionID string
	CheckoutURL       string
	Track             *domain.Track
}

// ConfirmOutput contains the result of the Confirm use case.
type ConfirmOutput struct {
	Entry      domain.QueueEntry
	Submission *domain.Submission
}

// DefaultMaxBid is the highest bid accepted when no limit is configured.
const DefaultMaxBid = 10000.0

// SubmissionService handles track submissions and their payment lifecycle.
type SubmissionService struct {
	maxBid    float64
	resolver  ports.MetadataResolver
	gateway   ports.PaymentGateway
	repo      domain.SubmissionRepository
	queue     ports.EntryQueue
	publisher ports.EventPublisher
	clock     ports.Clock
}

// NewSubmissionService creates a new SubmissionService. A maxBid of zero or
// less means DefaultMaxBid.
func NewSubmissionService(
	maxBid float64,
	resolver ports.MetadataResolver,
	gateway ports.PaymentGateway,
	repo domain.SubmissionRepository,
	queue ports.EntryQueue,
	publisher ports.EventPublisher,
	clock ports.Clock,
) *SubmissionService {
	if maxBid <= 0 {
		maxBid = DefaultMaxBid
	}
	return &SubmissionService{
		maxBid:    maxBid,
		resolver:  resolver,
		gateway:   gateway,
		repo:      repo,
		queue:     queue,
		publisher: publisher,
		clock:     clock,
	}
}

// Submit resolves the track, opens a pending payment and records the
// submission. Nothing is queued until the payment is confirmed.
func (s *SubmissionService) Submit(ctx context.Context, input SubmitInput) (*SubmitOutput, error) {
	if err := domain.ValidateBid(input.Bid); err != nil {
		return nil, err
	}
	if input.Bid > s.maxBid {
		return nil, fmt.Errorf("%w: must not exceed %.2f", domain.ErrInvalidBid, s.maxBid)
	}

	query := domain.NewTrackQuery(input.TrackRef)
	if !query.IsValid() {
		return nil, ErrInvalidTrackRef
	}

	track, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResolveFailure, err)
	}
	if track == nil || !track.IsValid() {
		return nil, fmt.Errorf("%w: %w", ErrResolveFailure, domain.ErrTrackNotFound)
	}

	if err := s.repo.SaveTrack(ctx, *track); err != nil {
		return nil, fmt.Errorf("failed to save track: %w", err)
	}

	handle, err := s.gateway.CreatePendingPayment(ctx, ports.PaymentRequest{
		TrackID:    track.ID,
		TrackTitle: track.DisplayTitle(),
		Amount:     input.Bid,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPaymentCreateFailure, err)
	}

	submission := domain.NewSubmission(*track, input.Bid, handle.SessionID, s.clock.Now())
	if err := s.repo.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	slog.Info("submission created",
		"submission", submission.ID,
		"track", track.ID,
		"bid", input.Bid,
		"session", handle.SessionID,
	)

	return &SubmitOutput{
		CheckoutSessionID: handle.SessionID,
		CheckoutURL:       handle.CheckoutURL,
		Track:             track,
	}, nil
}

// Confirm marks the pending submission for sessionID as paid and inserts it
// into the queue. Each session is queued at most once.
func (s *SubmissionService) Confirm(ctx context.Context, sessionID string) (*ConfirmOutput, error) {
	submission, err := s.repo.Complete(ctx, sessionID, s.clock.Now())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSubmissionNotFound):
			return nil, ErrPaymentNotFound
		case errors.Is(err, domain.ErrSubmissionNotPending):
			return nil, ErrPaymentNotPending
		default:
			return nil, fmt.Errorf("failed to complete submission: %w", err)
		}
	}

	entry, err := s.queue.Insert(submission.Bid())
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue submission %d: %w", submission.ID, err)
	}

	// The entry is queued either way; a stale confirmation time only shifts
	// its rank after a restart.
	if err := s.repo.RecordEnqueuedAt(ctx, submission.ID, entry.EnqueuedAt); err != nil {
		slog.Warn("failed to record enqueue time",
			"submission", submission.ID,
			"error", err,
		)
	} else {
		enqueuedAt := entry.EnqueuedAt
		submission.ConfirmedAt = &enqueuedAt
	}

	slog.Info("payment confirmed",
		"submission", submission.ID,
		"track", entry.TrackID,
		"bid", entry.BidAmount,
		"handle", entry.Handle,
	)

	if s.publisher != nil {
		s.publisher.PublishEntryEnqueued(domain.EntryEnqueuedEvent{
			Entry:      entry,
			Track:      submission.Track,
			QueueLen:   s.queue.Len(),
			OccurredAt: entry.EnqueuedAt,
		})
	}

	return &ConfirmOutput{
		Entry:      entry,
		Submission: submission,
	}, nil
}

// HandleWebhook verifies a payment provider notification and applies it.
// Replayed or unknown sessions are acknowledged without error so the provider
// stops retrying.
func (s *SubmissionService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWebhookSignatureInvalid, err)
	}

	switch event.Type {
	case ports.PaymentEventCompleted:
		_, err := s.Confirm(ctx, event.SessionID)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrPaymentNotPending), errors.Is(err, ErrPaymentNotFound):
			slog.Warn("ignoring payment notification",
				"session", event.SessionID,
				"reason", err,
			)
			return nil
		default:
			return err
		}

	case ports.PaymentEventExpired:
		err := s.repo.Fail(ctx, event.SessionID)
		switch {
		case err == nil:
			slog.Info("payment session expired", "session", event.SessionID)
			return nil
		case errors.Is(err, domain.ErrSubmissionNotFound), errors.Is(err, domain.ErrSubmissionNotPending):
			slog.Debug("ignoring expiry notification", "session", event.SessionID, "reason", err)
			return nil
		default:
			return fmt.Errorf("failed to mark submission failed: %w", err)
		}

	default:
		slog.Debug("ignoring payment event", "type", event.RawType)
		return nil
	}
}
