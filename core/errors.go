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

import (
	"errors"
	"fmt"
)

// Domain validation errors
var (
	// ErrMalformedTranscript indicates a transcript document failed validation.
	ErrMalformedTranscript = errors.New("malformed transcript")

	// ErrEmptyChatID indicates the transcript has no chat identifier.
	ErrEmptyChatID = fmt.Errorf("%w: chat_id cannot be empty", ErrMalformedTranscript)

	// ErrMissingTurnID indicates a turn has no identifier.
	ErrMissingTurnID = fmt.Errorf("%w: turn_id is required", ErrMalformedTranscript)

	// ErrMissingSpeaker indicates a turn has no speaker.
	ErrMissingSpeaker = fmt.Errorf("%w: speaker is required", ErrMalformedTranscript)

	// ErrMissingText indicates a turn carries no text field at all.
	ErrMissingText = fmt.Errorf("%w: text is required", ErrMalformedTranscript)

	// ErrInvalidLabel indicates an unknown accessibility label value.
	ErrInvalidLabel = errors.New("invalid accessibility label")

	// ErrInvalidConfidence indicates a confidence score outside [0,1].
	ErrInvalidConfidence = errors.New("confidence must be in [0,1]")
)
