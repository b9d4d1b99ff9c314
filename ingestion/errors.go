package ingestion

import "errors"

var (
	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrClassificationUnavailable is returned when the classifier cannot
	// produce a usable verdict and no fallback label is configured.
	ErrClassificationUnavailable = errors.New("classification unavailable")

	// ErrInvalidThreshold is returned for a threshold outside [0,1].
	ErrInvalidThreshold = errors.New("threshold must be in [0,1]")

	// ErrInvalidMaxAttempts is returned when retry attempts is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)
