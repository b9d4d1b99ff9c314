package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTranscript(t *testing.T) {
	valid := &Transcript{
		ChatID: "c1",
		Turns: []Turn{
			{TurnID: "t1", Speaker: "user", Text: "hello"},
		},
	}

	t.Run("valid transcript", func(t *testing.T) {
		assert.NoError(t, ValidateTranscript(valid))
	})

	t.Run("nil transcript", func(t *testing.T) {
		err := ValidateTranscript(nil)
		assert.ErrorIs(t, err, ErrMalformedTranscript)
	})

	t.Run("empty chat id", func(t *testing.T) {
		err := ValidateTranscript(&Transcript{})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedTranscript)
		assert.ErrorIs(t, err, ErrEmptyChatID)
	})

	t.Run("turn without speaker", func(t *testing.T) {
		err := ValidateTranscript(&Transcript{
			ChatID: "c1",
			Turns:  []Turn{{TurnID: "t1", Text: "hello"}},
		})
		assert.ErrorIs(t, err, ErrMissingSpeaker)
	})

	t.Run("turn without id", func(t *testing.T) {
		err := ValidateTranscript(&Transcript{
			ChatID: "c1",
			Turns:  []Turn{{Speaker: "user", Text: "hello"}},
		})
		assert.ErrorIs(t, err, ErrMissingTurnID)
	})

	t.Run("empty turn text is allowed", func(t *testing.T) {
		err := ValidateTranscript(&Transcript{
			ChatID: "c1",
			Turns:  []Turn{{TurnID: "t1", Speaker: "user"}},
		})
		assert.NoError(t, err)
	})
}

func TestValidateLabel(t *testing.T) {
	assert.NoError(t, ValidateLabel(LabelWork))
	assert.NoError(t, ValidateLabel(LabelPersonal))
	assert.ErrorIs(t, ValidateLabel("business"), ErrInvalidLabel)
}

func TestValidateClassification(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateClassification(&Classification{Label: LabelWork, Confidence: 0.95}))
	})

	t.Run("boundary confidences", func(t *testing.T) {
		assert.NoError(t, ValidateClassification(&Classification{Label: LabelPersonal, Confidence: 0}))
		assert.NoError(t, ValidateClassification(&Classification{Label: LabelWork, Confidence: 1}))
	})

	t.Run("confidence out of range", func(t *testing.T) {
		err := ValidateClassification(&Classification{Label: LabelWork, Confidence: 1.2})
		assert.ErrorIs(t, err, ErrInvalidConfidence)
	})

	t.Run("unknown label", func(t *testing.T) {
		err := ValidateClassification(&Classification{Label: "secret", Confidence: 0.5})
		assert.ErrorIs(t, err, ErrInvalidLabel)
	})
}
