package domain

import (
	"context"
	"time"
)

// SubmissionRepository persists tracks and submissions.
type SubmissionRepository interface {
	// SaveTrack stores the track metadata, updating it if the track is already known.
	SaveTrack(ctx context.Context, track Track) error

	// GetTrack returns stored track metadata, or ErrTrackNotFound.
	GetTrack(ctx context.Context, id TrackID) (*Track, error)

	// Create stores a new pending submission and assigns its ID.
	Create(ctx context.Context, submission *Submission) error

	// GetByPaymentSession returns the submission for the payment session,
	// or ErrSubmissionNotFound.
	GetByPaymentSession(ctx context.Context, sessionID string) (*Submission, error)

	// Complete moves a pending submission to completed. Returns
	// ErrSubmissionNotFound or ErrSubmissionNotPending when it cannot.
	Complete(ctx context.Context, sessionID string, at time.Time) (*Submission, error)

	// Fail moves a pending submission to failed.
	Fail(ctx context.Context, sessionID string) error

	// RecordEnqueuedAt stores the time a completed submission entered the
	// queue as its confirmation time, so a rebuilt queue keeps its rank.
	RecordEnqueuedAt(ctx context.Context, id SubmissionID, at time.Time) error

	// MarkPlayed moves a completed submission to played.
	MarkPlayed(ctx context.Context, id SubmissionID, at time.Time) error

	// ListQueued returns completed, unplayed submissions ordered by confirmation time.
	ListQueued(ctx context.Context) ([]*Submission, error)
}
