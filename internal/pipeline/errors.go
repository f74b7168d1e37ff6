package pipeline

import "errors"

// Error kinds for the event-submission path. Handlers branch on these with
// errors.Is; the concrete cause is wrapped alongside.
var (
	// ErrValidation marks malformed input that could not be recovered by
	// clamping or normalization (e.g. an unknown source type).
	ErrValidation = errors.New("validation error")

	// ErrPersistence marks a store read/write failure. It is surfaced,
	// never silently retried: a silent retry could double-count events.
	ErrPersistence = errors.New("persistence error")

	// ErrClassification marks a failure of the external classifier.
	ErrClassification = errors.New("classification error")
)
