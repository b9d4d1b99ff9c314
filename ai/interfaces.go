package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Classifier scores text against the fixed category schema.
// Implementations must be thread-safe for concurrent use.
type Classifier interface {
	// Classify analyzes text and returns a probability per category name.
	// A well-formed result contains the CategoryOne and CategoryTwo keys
	// with values in [0,1]; callers apply the threshold policy themselves.
	// Returns an error if the classification call fails.
	Classify(ctx context.Context, text string) (Probabilities, error)
}

// Generator produces a text completion for a prompt.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Complete generates an answer string for the given prompt.
	// Returns an error if the completion call fails.
	Complete(ctx context.Context, prompt string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder, Classifier,
// and Generator instances, ensuring they share configuration and resources.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Classifier returns the accessibility classification service.
	// The returned Classifier is safe for concurrent use.
	Classifier() Classifier

	// Generator returns the answer generation service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
