package usecases

import "errors"

// Errors returned by the jukebox use cases. Collaborator failures are kept
// distinct so the presentation layer can map each to its own status.
var (
	// ErrInvalidTrackRef is returned when the submitted track reference is empty.
	ErrInvalidTrackRef = errors.New("track reference is required")

	// ErrResolveFailure is returned when the metadata resolver cannot resolve the track.
	ErrResolveFailure = errors.New("could not resolve track")

	// ErrPaymentCreateFailure is returned when the payment gateway cannot open a checkout session.
	ErrPaymentCreateFailure = errors.New("could not create payment session")

	// ErrWebhookSignatureInvalid is returned when a payment notification fails verification.
	ErrWebhookSignatureInvalid = errors.New("invalid webhook signature")

	// ErrPaymentNotFound is returned when no submission matches the payment session.
	ErrPaymentNotFound = errors.New("payment session not found")

	// ErrPaymentNotPending is returned when the payment session was already confirmed or failed.
	ErrPaymentNotPending = errors.New("payment session is not pending")
)
