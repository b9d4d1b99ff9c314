package transcript

import (
	"strings"
	"testing"

	"github.com/poiesic/recallit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBytes_SingleChat(t *testing.T) {
	doc := `{
		"chat_id": "c1",
		"title": "Planning sync",
		"chat_engine": "slack",
		"chat_account": "alice@example.com",
		"turns": [
			{"turn_id": "t1", "speaker": "alice", "text": "hello", "timestamp": "2025-01-02T10:00:00Z"},
			{"turn_id": "t2", "speaker": "bob", "text": "hi there"}
		]
	}`

	transcripts, err := ParseBytes([]byte(doc))
	require.NoError(t, err)
	require.Len(t, transcripts, 1)

	tr := transcripts[0]
	assert.Equal(t, "c1", tr.ChatID)
	assert.Equal(t, "Planning sync", tr.Title)
	assert.Equal(t, "slack", tr.ChatEngine)
	assert.Equal(t, "alice@example.com", tr.ChatAccount)
	require.Len(t, tr.Turns, 2)
	assert.Equal(t, "t1", tr.Turns[0].TurnID)
	assert.Equal(t, "alice", tr.Turns[0].Speaker)
	assert.Equal(t, "hello", tr.Turns[0].Text)
	assert.Equal(t, "2025-01-02T10:00:00Z", tr.Turns[0].Timestamp)
	assert.Equal(t, "", tr.Turns[1].Timestamp)
}

func TestParseBytes_DataWrapper(t *testing.T) {
	doc := `{"data": [
		{"chat_id": "c1", "turns": [{"turn_id": "t1", "speaker": "a", "text": "x"}]},
		{"chat_id": "c2", "turns": [{"turn_id": "t1", "speaker": "b", "text": "y"}]}
	]}`

	transcripts, err := ParseBytes([]byte(doc))
	require.NoError(t, err)
	require.Len(t, transcripts, 2)
	assert.Equal(t, "c1", transcripts[0].ChatID)
	assert.Equal(t, "c2", transcripts[1].ChatID)
}

func TestParseBytes_BareList(t *testing.T) {
	doc := `[
		{"chat_id": "c1", "turns": [{"turn_id": "t1", "speaker": "a", "text": "x"}]}
	]`

	transcripts, err := ParseBytes([]byte(doc))
	require.NoError(t, err)
	require.Len(t, transcripts, 1)
	assert.Equal(t, "c1", transcripts[0].ChatID)
}

func TestParseBytes_AliasKeys(t *testing.T) {
	// Exporters that use messages/author/message/turn_timestamp/chat_user
	doc := `{
		"chat_id": "c1",
		"chat_user": "carol@example.com",
		"chat_creation_time": "2024-11-05T08:00:00Z",
		"messages": [
			{"turn_id": "t1", "author": "carol", "message": "old style", "turn_timestamp": "2024-11-05T08:01:00Z"}
		]
	}`

	transcripts, err := ParseBytes([]byte(doc))
	require.NoError(t, err)
	require.Len(t, transcripts, 1)

	tr := transcripts[0]
	assert.Equal(t, "carol@example.com", tr.ChatAccount)
	assert.Equal(t, "2024-11-05T08:00:00Z", tr.Created)
	require.Len(t, tr.Turns, 1)
	assert.Equal(t, "carol", tr.Turns[0].Speaker)
	assert.Equal(t, "old style", tr.Turns[0].Text)
	assert.Equal(t, "2024-11-05T08:01:00Z", tr.Turns[0].Timestamp)
}

func TestParseBytes_CanonicalKeysWinOverAliases(t *testing.T) {
	doc := `{
		"chat_id": "c1",
		"turns": [
			{"turn_id": "t1", "speaker": "canonical", "author": "alias", "text": "keep", "message": "drop"}
		]
	}`

	transcripts, err := ParseBytes([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "canonical", transcripts[0].Turns[0].Speaker)
	assert.Equal(t, "keep", transcripts[0].Turns[0].Text)
}

func TestParseBytes_EmptyTextAllowed(t *testing.T) {
	// A present-but-empty text field is a valid (silent) turn
	doc := `{"chat_id": "c1", "turns": [{"turn_id": "t1", "speaker": "a", "text": ""}]}`

	transcripts, err := ParseBytes([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "", transcripts[0].Turns[0].Text)
}

func TestParseBytes_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "invalid json",
			doc:  `{not json`,
			want: core.ErrMalformedTranscript,
		},
		{
			name: "unrecognized structure",
			doc:  `{"something": "else"}`,
			want: core.ErrMalformedTranscript,
		},
		{
			name: "missing chat_id",
			doc:  `{"turns": [{"turn_id": "t1", "speaker": "a", "text": "x"}]}`,
			want: core.ErrEmptyChatID,
		},
		{
			name: "empty turns",
			doc:  `{"chat_id": "c1", "turns": []}`,
			want: core.ErrMalformedTranscript,
		},
		{
			name: "missing turn_id",
			doc:  `{"chat_id": "c1", "turns": [{"speaker": "a", "text": "x"}]}`,
			want: core.ErrMissingTurnID,
		},
		{
			name: "missing speaker",
			doc:  `{"chat_id": "c1", "turns": [{"turn_id": "t1", "text": "x"}]}`,
			want: core.ErrMissingSpeaker,
		},
		{
			name: "missing text key",
			doc:  `{"chat_id": "c1", "turns": [{"turn_id": "t1", "speaker": "a"}]}`,
			want: core.ErrMissingText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			// Every parse failure is reportable as a malformed transcript
			assert.ErrorIs(t, err, core.ErrMalformedTranscript)
		})
	}
}

func TestParse_Reader(t *testing.T) {
	doc := `{"chat_id": "c1", "turns": [{"turn_id": "t1", "speaker": "a", "text": "x"}]}`

	transcripts, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, transcripts, 1)
}

func TestParseBytes_PreservesTurnOrder(t *testing.T) {
	doc := `{"chat_id": "c1", "turns": [
		{"turn_id": "t3", "speaker": "a", "text": "third"},
		{"turn_id": "t1", "speaker": "a", "text": "first"},
		{"turn_id": "t2", "speaker": "a", "text": "second"}
	]}`

	transcripts, err := ParseBytes([]byte(doc))
	require.NoError(t, err)

	ids := make([]string, 0, 3)
	for _, turn := range transcripts[0].Turns {
		ids = append(ids, turn.TurnID)
	}
	assert.Equal(t, []string{"t3", "t1", "t2"}, ids)
}
