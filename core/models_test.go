package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkID(t *testing.T) {
	assert.Equal(t, "c1::t1::0", ChunkID("c1", "t1", 0))
	assert.Equal(t, "chat-9::turn-4::12", ChunkID("chat-9", "turn-4", 12))
}

func TestUnitIDFromChunkID(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := UnitIDFromChunkID("c1::t1::0")
		b := UnitIDFromChunkID("c1::t1::0")
		assert.Equal(t, a, b)
	})

	t.Run("distinct inputs produce distinct ids", func(t *testing.T) {
		a := UnitIDFromChunkID("c1::t1::0")
		b := UnitIDFromChunkID("c1::t1::1")
		assert.NotEqual(t, a, b)
	})
}

func TestTranscriptText(t *testing.T) {
	tr := &Transcript{
		ChatID: "c1",
		Turns: []Turn{
			{TurnID: "t1", Speaker: "user", Text: "hello"},
			{TurnID: "t2", Speaker: "assistant", Text: "hi there"},
		},
	}
	assert.Equal(t, "hello\nhi there", tr.Text())

	empty := &Transcript{ChatID: "c2"}
	assert.Equal(t, "", empty.Text())
}
