package types

import "errors"

// Failure taxonomy for one submission. Routes map these onto HTTP statuses
// with errors.Is, so controllers wrap them with %w and never lose the class.
var (
	// ErrValidation: blank query or model selector, rejected before any I/O.
	ErrValidation = errors.New("validation failed")

	// ErrInferenceUnavailable: could not reach the inference service.
	ErrInferenceUnavailable = errors.New("inference service unavailable")

	// ErrInferenceRejected: the inference service answered with an error.
	ErrInferenceRejected = errors.New("inference service rejected request")

	// ErrPersistence: the exchange could not be written after a successful
	// inference call. The answer is discarded; nothing is published.
	ErrPersistence = errors.New("persistence failed")
)
