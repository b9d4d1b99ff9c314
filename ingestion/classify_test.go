package ingestion

import (
	"testing"

	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecideLabel(t *testing.T) {
	tests := []struct {
		name       string
		workProb   float64
		threshold  float64
		wantLabel  core.AccessibilityLabel
	}{
		{"well above threshold", 0.95, DefaultThreshold, core.LabelWork},
		{"exactly at threshold", 0.9, DefaultThreshold, core.LabelWork},
		{"just below threshold", 0.8999, DefaultThreshold, core.LabelPersonal},
		{"clearly personal", 0.05, DefaultThreshold, core.LabelPersonal},
		{"zero", 0, DefaultThreshold, core.LabelPersonal},
		{"one", 1, DefaultThreshold, core.LabelWork},
		{"custom threshold inclusive", 0.5, 0.5, core.LabelWork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probs := ai.Probabilities{
				ai.CategoryOne: 1 - tt.workProb,
				ai.CategoryTwo: tt.workProb,
			}

			cls, err := DecideLabel(probs, tt.threshold)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, cls.Label)
			// Confidence is the work probability for both labels
			assert.Equal(t, tt.workProb, cls.Confidence)
		})
	}
}

func TestDecideLabel_MissingCategory(t *testing.T) {
	_, err := DecideLabel(ai.Probabilities{ai.CategoryOne: 0.5}, DefaultThreshold)
	assert.ErrorIs(t, err, ErrClassificationUnavailable)
}

func TestDecideLabel_OutOfRangeProbability(t *testing.T) {
	_, err := DecideLabel(ai.Probabilities{ai.CategoryTwo: 1.5}, DefaultThreshold)
	assert.ErrorIs(t, err, ErrClassificationUnavailable)
}

func TestDecideLabel_InvalidThreshold(t *testing.T) {
	_, err := DecideLabel(ai.Probabilities{ai.CategoryTwo: 0.5}, 1.5)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}
