package search

import (
	"strings"
	"testing"

	"github.com/poiesic/recallit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoredUnit(chunkID, turnID, content string) *core.ScoredUnit {
	return &core.ScoredUnit{
		Unit: &core.RetrievalUnit{
			PageContent: content,
			Metadata: core.UnitMetadata{
				ChatID:    "c1",
				Title:     "Some chat",
				TurnID:    turnID,
				Timestamp: "2025-01-02T10:00:00Z",
				ChunkID:   chunkID,
			},
		},
	}
}

func TestBuildPrompt(t *testing.T) {
	sources := []*core.ScoredUnit{
		scoredUnit("c1::t1::0", "t1", "first snippet"),
		scoredUnit("c1::t2::0", "t2", "second snippet"),
	}

	prompt := buildPrompt("what happened?", sources)

	assert.Contains(t, prompt, "Source [1]:\nfirst snippet\n")
	assert.Contains(t, prompt, "Source [2]:\nsecond snippet\n")
	assert.Contains(t, prompt, NoAnswer)
	assert.Contains(t, prompt, "Question:\nwhat happened?")
	// Sources appear in retrieval order
	assert.Less(t, strings.Index(prompt, "first snippet"), strings.Index(prompt, "second snippet"))
}

func TestRenumberCitations_FirstAppearanceOrder(t *testing.T) {
	sources := []*core.ScoredUnit{
		scoredUnit("c1::t1::0", "t1", "a"),
		scoredUnit("c1::t2::0", "t2", "b"),
		scoredUnit("c1::t3::0", "t3", "c"),
	}

	// The answer cites source 3 first, then 1
	answer := "The rollout finished [3]. It started a week earlier [1]."
	rewritten, citations := renumberCitations(answer, sources)

	assert.Equal(t, "The rollout finished [1]. It started a week earlier [2].", rewritten)
	require.Len(t, citations, 2)
	assert.Equal(t, "[1]", citations[0].SourceID)
	assert.Equal(t, "t3", citations[0].TurnID)
	assert.Equal(t, "[2]", citations[1].SourceID)
	assert.Equal(t, "t1", citations[1].TurnID)
}

func TestRenumberCitations_RepeatedMarkerKeepsNumber(t *testing.T) {
	sources := []*core.ScoredUnit{
		scoredUnit("c1::t1::0", "t1", "a"),
		scoredUnit("c1::t2::0", "t2", "b"),
	}

	answer := "First point [2]. Second point [2]. Third point [1]."
	rewritten, citations := renumberCitations(answer, sources)

	assert.Equal(t, "First point [1]. Second point [1]. Third point [2].", rewritten)
	require.Len(t, citations, 2)
}

func TestRenumberCitations_FullWidthBrackets(t *testing.T) {
	sources := []*core.ScoredUnit{
		scoredUnit("c1::t1::0", "t1", "a"),
	}

	rewritten, citations := renumberCitations("It is documented 【1】.", sources)

	assert.Equal(t, "It is documented [1].", rewritten)
	require.Len(t, citations, 1)
	assert.Equal(t, "[1]", citations[0].SourceID)
}

func TestRenumberCitations_InvalidMarkersStripped(t *testing.T) {
	sources := []*core.ScoredUnit{
		scoredUnit("c1::t1::0", "t1", "a"),
	}

	answer := "Valid [1], out of range [7], zero [0]."
	rewritten, citations := renumberCitations(answer, sources)

	assert.Equal(t, "Valid [1], out of range , zero .", rewritten)
	require.Len(t, citations, 1)
}

func TestRenumberCitations_NoMarkers(t *testing.T) {
	rewritten, citations := renumberCitations(NoAnswer, nil)
	assert.Equal(t, NoAnswer, rewritten)
	assert.Empty(t, citations)
}

func TestRenumberCitations_MetadataCarriedThrough(t *testing.T) {
	sources := []*core.ScoredUnit{
		scoredUnit("c9::t4::1", "t4", "a"),
	}
	sources[0].Unit.Metadata.ChatID = "c9"
	sources[0].Unit.Metadata.Title = "Incident review"

	_, citations := renumberCitations("See [1].", sources)
	require.Len(t, citations, 1)
	assert.Equal(t, "Incident review", citations[0].Title)
	assert.Equal(t, "c9", citations[0].ChatID)
	assert.Equal(t, "t4", citations[0].TurnID)
	assert.Equal(t, "2025-01-02T10:00:00Z", citations[0].Timestamp)
}
