package core

import (
	"encoding/binary"
	"fmt"

	"github.com/go-crypt/x/blake2b"
)

// UnitID is a fixed-width identifier derived from a chunk ID.
// It is used by storage backends that need fixed-size keys.
type UnitID uint64

// UnitIDFromChunkID generates a deterministic UnitID from a chunk ID using
// BLAKE2b hashing. Identical chunk IDs always produce identical UnitIDs, so
// re-ingesting the same transcript maps onto the same storage keys.
func UnitIDFromChunkID(chunkID string) UnitID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(chunkID))
	sum := h.Sum(nil)
	return UnitID(binary.LittleEndian.Uint64(sum))
}

// AccessibilityLabel classifies a conversation as work-related or personal.
type AccessibilityLabel string

const (
	// LabelWork marks a conversation classified as work-related.
	LabelWork AccessibilityLabel = "work"
	// LabelPersonal marks a conversation classified as personal.
	LabelPersonal AccessibilityLabel = "personal"
)

// Turn is a single message within a chat conversation.
// Turns are immutable once produced by the parser; their order within
// a transcript is significant and anchors chunk numbering.
type Turn struct {
	TurnID    string
	Speaker   string
	Text      string
	Timestamp string // original timestamp, passed through verbatim
}

// Transcript is one chat conversation: identifying metadata plus an
// ordered sequence of turns.
type Transcript struct {
	ChatID      string
	Title       string
	ChatEngine  string
	ChatAccount string
	Created     string // chat creation time, passed through verbatim
	Turns       []Turn
}

// Text returns the concatenated text of all turns, separated by newlines.
// This is the conversation-level view fed to the classifier.
func (t *Transcript) Text() string {
	var out string
	for i, turn := range t.Turns {
		if i > 0 {
			out += "\n"
		}
		out += turn.Text
	}
	return out
}

// Classification is the accessibility decision for a conversation.
// Confidence is always the probability of the work category (the score
// driving the threshold decision), regardless of the final label.
type Classification struct {
	Label      AccessibilityLabel
	Confidence float64
}

// Chunk is a contiguous text segment extracted from a turn's text.
// Overlap records how many leading runes of Text repeat the tail of the
// previous chunk of the same turn.
type Chunk struct {
	Index   int
	Text    string
	Overlap int
}

// UnitMetadata is the metadata stored alongside every retrieval unit.
// All fields except ChunkIndex and ChunkID are identical for every unit
// derived from the same turn. JSON tags match the vector store payload.
type UnitMetadata struct {
	ChatEngine              string             `json:"chat_engine"`
	ChatAccount             string             `json:"chat_account"`
	ChatID                  string             `json:"chat_id"`
	Title                   string             `json:"title"`
	Created                 string             `json:"chat_creation_time,omitempty"`
	TurnID                  string             `json:"turn_id"`
	Speaker                 string             `json:"speaker,omitempty"`
	Timestamp               string             `json:"turn_timestamp,omitempty"`
	Accessibility           AccessibilityLabel `json:"accessibility"`
	AccessibilityConfidence float64            `json:"accessibility_confidence_score"`
	ChunkIndex              int                `json:"chunk_index"`
	ChunkID                 string             `json:"chunk_id"`
}

// RetrievalUnit is the stored and searched object: one chunk of turn text
// plus the metadata it inherits from its turn, transcript, and
// classification. Units are created once at ingestion and never mutated;
// re-ingesting the same transcript replaces them key for key.
type RetrievalUnit struct {
	PageContent string       `json:"page_content"`
	Metadata    UnitMetadata `json:"metadata"`
	Vector      []float32    `json:"vector,omitempty"`
}

// ChunkID builds the globally unique, re-ingestion-stable composite key
// for a chunk: chat_id::turn_id::chunk_index.
func ChunkID(chatID, turnID string, chunkIndex int) string {
	return fmt.Sprintf("%s::%s::%d", chatID, turnID, chunkIndex)
}

// ScoredUnit is a retrieval unit returned from similarity search.
// Seq is the index insertion sequence, used as a deterministic tie break
// when scores are equal.
type ScoredUnit struct {
	Unit  *RetrievalUnit
	Score float32
	Seq   uint64
}

// Citation links an inline answer marker to its source retrieval unit.
// Citations are derived per query and never persisted.
type Citation struct {
	SourceID  string `json:"source_id"`
	Title     string `json:"title"`
	ChatID    string `json:"chat_id"`
	TurnID    string `json:"turn_id"`
	Timestamp string `json:"timestamp"`
}
