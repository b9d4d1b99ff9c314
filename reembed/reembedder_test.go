package reembed

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/poiesic/recallit/ai/mock"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/storage"
	"github.com/poiesic/recallit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) storage.VectorIndex {
	t.Helper()
	index, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })
	return index
}

func seedUnits(t *testing.T, index storage.VectorIndex, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, index.Upsert(context.Background(), &core.RetrievalUnit{
			PageContent: "unit content",
			Metadata: core.UnitMetadata{
				ChatID:     "c1",
				TurnID:     "t1",
				ChunkIndex: i,
				ChunkID:    core.ChunkID("c1", "t1", i),
			},
			Vector: []float32{1, 0, 0},
		}))
	}
}

func TestNewReembedder_Validation(t *testing.T) {
	index := newTestIndex(t)

	_, err := NewReembedder(nil, mock.NewMockEmbedder(), nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrIndexRequired)

	_, err = NewReembedder(index, nil, nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestRun_ReembedsAllUnits(t *testing.T) {
	index := newTestIndex(t)
	seedUnits(t, index, 7)
	ctx := context.Background()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{0, 3, 4} // normalizes to {0, 0.6, 0.8}
		}
		return out, nil
	}

	var buf bytes.Buffer
	reembedder, err := NewReembedder(index, embedder, &Config{BatchSize: 3, ReportInterval: 1, MaxRetries: 1, RetryDelay: 0}, &buf)
	require.NoError(t, err)

	model := storage.ModelInfo{Model: "new-model", Dimensions: 3}
	require.NoError(t, reembedder.Run(ctx, model))

	// All vectors replaced and normalized
	count := 0
	require.NoError(t, index.All(ctx, func(r *storage.Record) error {
		count++
		require.Len(t, r.Vector, 3)
		assert.InDelta(t, 0.6, r.Vector[1], 1e-6)
		assert.InDelta(t, 0.8, r.Vector[2], 1e-6)
		return nil
	}))
	assert.Equal(t, 7, count)

	// Model pin updated
	stored, err := index.ModelInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, model, stored)

	assert.Contains(t, buf.String(), "Reembedding complete")
}

func TestRun_EmptyIndex(t *testing.T) {
	index := newTestIndex(t)
	ctx := context.Background()

	var buf bytes.Buffer
	reembedder, err := NewReembedder(index, mock.NewMockEmbedder(), nil, &buf)
	require.NoError(t, err)

	model := storage.ModelInfo{Model: "new-model", Dimensions: 384}
	require.NoError(t, reembedder.Run(ctx, model))
	assert.Contains(t, buf.String(), "No units found")

	stored, err := index.ModelInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, model, stored)
}

func TestRun_EmbedderFailure(t *testing.T) {
	index := newTestIndex(t)
	seedUnits(t, index, 2)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("service down")
	}

	var buf bytes.Buffer
	reembedder, err := NewReembedder(index, embedder, &Config{BatchSize: 10, ReportInterval: 1, MaxRetries: 2, RetryDelay: 0}, &buf)
	require.NoError(t, err)

	err = reembedder.Run(context.Background(), storage.ModelInfo{Model: "m", Dimensions: 3})
	require.Error(t, err)

	// The model pin is not advanced on failure
	_, err = index.ModelInfo(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRun_KeepsSequences(t *testing.T) {
	index := newTestIndex(t)
	seedUnits(t, index, 3)
	ctx := context.Background()

	seqBefore := map[string]uint64{}
	require.NoError(t, index.All(ctx, func(r *storage.Record) error {
		seqBefore[r.Metadata.ChunkID] = r.Seq
		return nil
	}))

	var buf bytes.Buffer
	reembedder, err := NewReembedder(index, mock.NewMockEmbedder(), nil, &buf)
	require.NoError(t, err)
	require.NoError(t, reembedder.Run(ctx, storage.ModelInfo{Model: "m", Dimensions: 384}))

	require.NoError(t, index.All(ctx, func(r *storage.Record) error {
		assert.Equal(t, seqBefore[r.Metadata.ChunkID], r.Seq)
		return nil
	}))
}
