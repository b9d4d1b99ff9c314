package mock

import (
	"context"

	"github.com/poiesic/recallit/ai"
)

// MockClassifier is a test double for ai.Classifier.
// It allows custom behavior injection via function fields.
type MockClassifier struct {
	// ClassifyFunc is called by Classify if set.
	// If nil, returns a fixed work-leaning verdict.
	ClassifyFunc func(ctx context.Context, text string) (ai.Probabilities, error)

	callCount int
}

// NewMockClassifier creates a mock classifier with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockClassifier().
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{}
}

// Classify returns a fixed work-leaning verdict unless ClassifyFunc is set.
func (m *MockClassifier) Classify(ctx context.Context, text string) (ai.Probabilities, error) {
	m.callCount++

	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, text)
	}

	return ai.Probabilities{
		ai.CategoryOne: 0.05,
		ai.CategoryTwo: 0.95,
	}, nil
}

// CallCount returns the number of times Classify was called.
func (m *MockClassifier) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockClassifier) Reset() {
	m.callCount = 0
	m.ClassifyFunc = nil
}
