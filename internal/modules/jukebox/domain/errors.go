package domain

import "errors"

var (
	// ErrInvalidBid is returned when a bid is negative, NaN or infinite.
	ErrInvalidBid = errors.New("bid amount must be a finite, non-negative number")

	// ErrInvalidTimeWeight is returned when a time weight is negative, NaN or infinite.
	ErrInvalidTimeWeight = errors.New("time weight must be a finite, non-negative number")

	// ErrTrackNotFound is returned when no stored track matches the lookup.
	ErrTrackNotFound = errors.New("track not found")

	// ErrSubmissionNotFound is returned when no submission matches the lookup.
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrSubmissionNotPending is returned when a status transition requires a
	// pending submission but the submission has already moved on.
	ErrSubmissionNotPending = errors.New("submission is not pending")
)
