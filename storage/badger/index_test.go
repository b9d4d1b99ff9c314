package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) storage.VectorIndex {
	t.Helper()
	index, err := NewMemoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })
	return index
}

func makeUnit(chatID, turnID string, chunkIndex int, account string, vector []float32) *core.RetrievalUnit {
	return &core.RetrievalUnit{
		PageContent: fmt.Sprintf("content of %s/%s/%d", chatID, turnID, chunkIndex),
		Metadata: core.UnitMetadata{
			ChatAccount:   account,
			ChatID:        chatID,
			TurnID:        turnID,
			Accessibility: core.LabelWork,
			ChunkIndex:    chunkIndex,
			ChunkID:       core.ChunkID(chatID, turnID, chunkIndex),
		},
		Vector: vector,
	}
}

func TestUpsertAndSearch(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	err := index.Upsert(ctx,
		makeUnit("c1", "t1", 0, "alice", []float32{1, 0, 0}),
		makeUnit("c1", "t1", 1, "alice", []float32{0, 1, 0}),
		makeUnit("c1", "t2", 0, "alice", []float32{0.9, 0.1, 0}),
	)
	require.NoError(t, err)

	results, err := index.Search(ctx, []float32{1, 0, 0}, 2, storage.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "c1::t1::0", results[0].Unit.Metadata.ChunkID)
	assert.Equal(t, "c1::t2::0", results[1].Unit.Metadata.ChunkID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearch_EmptyIndex(t *testing.T) {
	index := newTestIndex(t)

	_, err := index.Search(context.Background(), []float32{1, 0, 0}, 5, storage.Filter{})
	assert.ErrorIs(t, err, storage.ErrEmptyIndex)
}

func TestSearch_FilterByAccount(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx,
		makeUnit("c1", "t1", 0, "alice", []float32{1, 0, 0}),
		makeUnit("c2", "t1", 0, "bob", []float32{1, 0, 0}),
	))

	results, err := index.Search(ctx, []float32{1, 0, 0}, 10, storage.Filter{ChatAccount: "alice"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alice", results[0].Unit.Metadata.ChatAccount)

	// Filter that matches nothing behaves like an empty index
	_, err = index.Search(ctx, []float32{1, 0, 0}, 10, storage.Filter{ChatAccount: "carol"})
	assert.ErrorIs(t, err, storage.ErrEmptyIndex)
}

func TestSearch_InvalidK(t *testing.T) {
	index := newTestIndex(t)

	_, err := index.Search(context.Background(), []float32{1}, 0, storage.Filter{})
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestSearch_TieBrokenByInsertionOrder(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	// Identical vectors produce identical scores
	require.NoError(t, index.Upsert(ctx, makeUnit("c1", "t1", 0, "alice", []float32{1, 0, 0})))
	require.NoError(t, index.Upsert(ctx, makeUnit("c1", "t2", 0, "alice", []float32{1, 0, 0})))
	require.NoError(t, index.Upsert(ctx, makeUnit("c1", "t3", 0, "alice", []float32{1, 0, 0})))

	results, err := index.Search(ctx, []float32{1, 0, 0}, 3, storage.Filter{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "c1::t1::0", results[0].Unit.Metadata.ChunkID)
	assert.Equal(t, "c1::t2::0", results[1].Unit.Metadata.ChunkID)
	assert.Equal(t, "c1::t3::0", results[2].Unit.Metadata.ChunkID)
}

func TestUpsert_OverwriteKeepsSequence(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, makeUnit("c1", "t1", 0, "alice", []float32{1, 0, 0})))
	require.NoError(t, index.Upsert(ctx, makeUnit("c1", "t2", 0, "alice", []float32{1, 0, 0})))

	// Re-ingest the first unit with new content
	updated := makeUnit("c1", "t1", 0, "alice", []float32{1, 0, 0})
	updated.PageContent = "updated content"
	require.NoError(t, index.Upsert(ctx, updated))

	count, err := index.Count(ctx, storage.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Tie-break order is unchanged by the overwrite
	results, err := index.Search(ctx, []float32{1, 0, 0}, 2, storage.Filter{})
	require.NoError(t, err)
	assert.Equal(t, "c1::t1::0", results[0].Unit.Metadata.ChunkID)
	assert.Equal(t, "updated content", results[0].Unit.PageContent)
}

func TestCount_WithFilter(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx,
		makeUnit("c1", "t1", 0, "alice", []float32{1}),
		makeUnit("c1", "t1", 1, "alice", []float32{1}),
		makeUnit("c2", "t1", 0, "bob", []float32{1}),
	))

	total, err := index.Count(ctx, storage.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	alice, err := index.Count(ctx, storage.Filter{ChatAccount: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 2, alice)
}

func TestDeleteChat(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx,
		makeUnit("c1", "t1", 0, "alice", []float32{1}),
		makeUnit("c1", "t2", 0, "alice", []float32{1}),
		makeUnit("c2", "t1", 0, "alice", []float32{1}),
	))

	removed, err := index.DeleteChat(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	count, err := index.Count(ctx, storage.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	removed, err = index.DeleteChat(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestAll_StreamsEveryRecord(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx,
		makeUnit("c1", "t1", 0, "alice", []float32{1}),
		makeUnit("c1", "t1", 1, "alice", []float32{1}),
	))

	seen := map[string]bool{}
	err := index.All(ctx, func(record *storage.Record) error {
		seen[record.Metadata.ChunkID] = true
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 2)
	assert.True(t, seen["c1::t1::0"])
	assert.True(t, seen["c1::t1::1"])
}

func TestModelPinning(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	_, err := index.ModelInfo(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	info := storage.ModelInfo{Model: "embeddinggemma", Dimensions: 768}
	require.NoError(t, index.EnsureModel(ctx, info))

	stored, err := index.ModelInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, info, stored)

	// Same model passes, different model is rejected
	require.NoError(t, index.EnsureModel(ctx, info))
	err = index.EnsureModel(ctx, storage.ModelInfo{Model: "other", Dimensions: 384})
	assert.ErrorIs(t, err, storage.ErrModelMismatch)

	// SetModel force-overwrites after a re-embed
	next := storage.ModelInfo{Model: "other", Dimensions: 384}
	require.NoError(t, index.SetModel(ctx, next))
	require.NoError(t, index.EnsureModel(ctx, next))
}

func TestUpsert_ContextCancelled(t *testing.T) {
	index := newTestIndex(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := index.Upsert(ctx, makeUnit("c1", "t1", 0, "alice", []float32{1}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-6)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	assert.Equal(t, float32(0), cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
