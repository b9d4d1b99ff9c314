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


package transcript

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/poiesic/recallit/core"
)

// rawChat mirrors the wire shapes produced by chat exporters.
// Exporters disagree on key names, so each field carries its aliases.
type rawChat struct {
	ChatID      string    `json:"chat_id"`
	Title       string    `json:"title"`
	ChatEngine  string    `json:"chat_engine"`
	ChatAccount string    `json:"chat_account"`
	ChatUser    string    `json:"chat_user"`
	Created     string    `json:"chat_creation_time"`
	Turns       []rawTurn `json:"turns"`
	Messages    []rawTurn `json:"messages"`
}

// rawTurn uses pointers so a missing key can be told apart from an
// empty value. Required fields that are absent make the turn malformed.
type rawTurn struct {
	TurnID        *string `json:"turn_id"`
	Speaker       *string `json:"speaker"`
	Author        *string `json:"author"`
	Text          *string `json:"text"`
	Message       *string `json:"message"`
	Timestamp     *string `json:"timestamp"`
	TurnTimestamp *string `json:"turn_timestamp"`
}

// envelope matches the three document shapes found in the wild:
// a single chat object, a {"data": [...]} wrapper, or a bare list.
type envelope struct {
	Data []rawChat `json:"data"`
}

// Parse reads a raw chat export document and returns normalized transcripts.
// Turn order within each transcript is preserved exactly as it appears in
// the document.
func Parse(r io.Reader) ([]core.Transcript, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedTranscript, err)
	}
	return ParseBytes(raw)
}

// ParseBytes parses a raw chat export document from memory.
func ParseBytes(raw []byte) ([]core.Transcript, error) {
	chats, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}

	transcripts := make([]core.Transcript, 0, len(chats))
	for i, chat := range chats {
		t, err := normalizeChat(chat)
		if err != nil {
			return nil, fmt.Errorf("chat %d: %w", i, err)
		}
		transcripts = append(transcripts, t)
	}

	return transcripts, nil
}

// decodeEnvelope detects which of the three wire shapes the document uses.
func decodeEnvelope(raw []byte) ([]rawChat, error) {
	// Bare list of chats
	var list []rawChat
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var single rawChat
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedTranscript, err)
	}

	// Single chat object with its own turns
	if single.Turns != nil || single.Messages != nil {
		return []rawChat{single}, nil
	}

	// Wrapper object with a "data" key
	var wrapped envelope
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Data != nil {
		return wrapped.Data, nil
	}

	return nil, fmt.Errorf("%w: document has neither turns nor a data wrapper", core.ErrMalformedTranscript)
}

func normalizeChat(chat rawChat) (core.Transcript, error) {
	t := core.Transcript{
		ChatID:      chat.ChatID,
		Title:       chat.Title,
		ChatEngine:  chat.ChatEngine,
		ChatAccount: firstNonEmpty(chat.ChatAccount, chat.ChatUser),
		Created:     chat.Created,
	}

	if t.ChatID == "" {
		return core.Transcript{}, core.ErrEmptyChatID
	}

	raws := chat.Turns
	if raws == nil {
		raws = chat.Messages
	}
	if len(raws) == 0 {
		return core.Transcript{}, fmt.Errorf("%w: chat %q has no turns", core.ErrMalformedTranscript, t.ChatID)
	}

	t.Turns = make([]core.Turn, 0, len(raws))
	for i, raw := range raws {
		turn, err := normalizeTurn(raw)
		if err != nil {
			return core.Transcript{}, fmt.Errorf("turn %d: %w", i, err)
		}
		t.Turns = append(t.Turns, turn)
	}

	return t, nil
}

func normalizeTurn(raw rawTurn) (core.Turn, error) {
	turn := core.Turn{}

	if raw.TurnID == nil || *raw.TurnID == "" {
		return core.Turn{}, core.ErrMissingTurnID
	}
	turn.TurnID = *raw.TurnID

	speaker := coalesce(raw.Speaker, raw.Author)
	if speaker == nil || *speaker == "" {
		return core.Turn{}, core.ErrMissingSpeaker
	}
	turn.Speaker = *speaker

	text := coalesce(raw.Text, raw.Message)
	if text == nil {
		return core.Turn{}, core.ErrMissingText
	}
	turn.Text = *text

	// Timestamps pass through verbatim; absence is tolerated.
	if ts := coalesce(raw.Timestamp, raw.TurnTimestamp); ts != nil {
		turn.Timestamp = *ts
	}

	return turn, nil
}

func coalesce(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
