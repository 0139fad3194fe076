package domain

import "time"

// SubmissionID identifies a persisted submission.
type SubmissionID int64

// SubmissionStatus is the payment/playback state of a submission.
type SubmissionStatus string

const (
	// SubmissionPending means the checkout session exists but is not paid yet.
	SubmissionPending SubmissionStatus = "pending"
	// SubmissionCompleted means payment cleared and the track is queued.
	SubmissionCompleted SubmissionStatus = "completed"
	// SubmissionFailed means the checkout session expired or failed.
	SubmissionFailed SubmissionStatus = "failed"
	// SubmissionPlayed means the track was popped from the queue.
	SubmissionPlayed SubmissionStatus = "played"
)

// ParseSubmissionStatus converts a string to a SubmissionStatus.
// Unknown values map to SubmissionPending.
func ParseSubmissionStatus(s string) SubmissionStatus {
	switch s {
	case "completed":
		return SubmissionCompleted
	case "failed":
		return SubmissionFailed
	case "played":
		return SubmissionPlayed
	default:
		return SubmissionPending
	}
}

// IsQueued returns true if the submission is paid and has not been played.
func (s SubmissionStatus) IsQueued() bool {
	return s == SubmissionCompleted
}

// Submission is a participant's paid (or to-be-paid) request to play a track.
type Submission struct {
	ID               SubmissionID
	Track            Track
	BidAmount        float64
	PaymentSessionID string
	Status           SubmissionStatus
	CreatedAt        time.Time
	ConfirmedAt      *time.Time
	PlayedAt         *time.Time
}

// NewSubmission creates a pending submission.
func NewSubmission(track Track, bidAmount float64, paymentSessionID string, now time.Time) *Submission {
	return &Submission{
		Track:            track,
		BidAmount:        bidAmount,
		PaymentSessionID: paymentSessionID,
		Status:           SubmissionPending,
		CreatedAt:        now.UTC(),
	}
}

// Bid returns the queue bid for this submission.
func (s *Submission) Bid() Bid {
	return Bid{
		TrackID:      s.Track.ID,
		Amount:       s.BidAmount,
		SubmissionID: s.ID,
	}
}
