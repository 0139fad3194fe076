package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sglre6355/venuevibe/internal/modules/jukebox/application/ports"
	"github.com/sglre6355/venuevibe/internal/modules/jukebox/domain"
)

// RecoveryService rebuilds the in-memory queue from persisted submissions.
type RecoveryService struct {
	repo  domain.SubmissionRepository
	queue ports.EntryQueue
}

// NewRecoveryService creates a new RecoveryService.
func NewRecoveryService(repo domain.SubmissionRepository, queue ports.EntryQueue) *RecoveryService {
	return &RecoveryService{
		repo:  repo,
		queue: queue,
	}
}

// Rebuild re-inserts every paid, unplayed submission, keeping its original
// confirmation time as the enqueue time. It returns the number restored.
func (r *RecoveryService) Rebuild(ctx context.Context) (int, error) {
	submissions, err := r.repo.ListQueued(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list queued submissions: %w", err)
	}

	restored := 0
	for _, sub := range submissions {
		enqueuedAt := sub.CreatedAt
		if sub.ConfirmedAt != nil {
			enqueuedAt = *sub.ConfirmedAt
		}

		if _, err := r.queue.Restore(sub.Bid(), enqueuedAt); err != nil {
			slog.Warn("skipping unrecoverable submission",
				"submission", sub.ID,
				"bid", sub.BidAmount,
				"error", err,
			)
			continue
		}
		restored++
	}

	if restored > 0 {
		slog.Info("queue rebuilt from store", "entries", restored)
	}
	return restored, nil
}
