// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateTranscript validates a Transcript according to domain rules.
//
// Validation rules:
//   - ChatID must not be empty
//   - every Turn must pass ValidateTurn
//
// NOT validated:
//   - Title, ChatEngine, ChatAccount (optional, may come from configuration)
//   - Turn text being empty (an empty turn simply produces zero chunks)
func ValidateTranscript(t *Transcript) error {
	if t == nil {
		return fmt.Errorf("%w: transcript is nil", ErrMalformedTranscript)
	}

	if t.ChatID == "" {
		return fmt.Errorf("%w: %w", ErrMalformedTranscript, ErrEmptyChatID)
	}

	for i, turn := range t.Turns {
		if err := ValidateTurn(&turn); err != nil {
			return fmt.Errorf("%w: turn %d: %w", ErrMalformedTranscript, i, err)
		}
	}

	return nil
}

// ValidateTurn validates a Turn according to domain rules.
// Text may be empty; the parser reports ErrMissingText separately when the
// field is absent from the source document.
func ValidateTurn(turn *Turn) error {
	if turn == nil {
		return fmt.Errorf("turn is nil")
	}

	if turn.TurnID == "" {
		return ErrMissingTurnID
	}

	if turn.Speaker == "" {
		return ErrMissingSpeaker
	}

	return nil
}

// ValidateLabel validates that an AccessibilityLabel has a known value.
func ValidateLabel(label AccessibilityLabel) error {
	if label != LabelWork && label != LabelPersonal {
		return fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	return nil
}

// ValidateClassification validates a Classification according to domain rules.
func ValidateClassification(c *Classification) error {
	if c == nil {
		return fmt.Errorf("classification is nil")
	}

	if err := ValidateLabel(c.Label); err != nil {
		return err
	}

	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("%w: got %g", ErrInvalidConfidence, c.Confidence)
	}

	return nil
}
