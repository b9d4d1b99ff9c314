package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/ingestion"
	"github.com/poiesic/recallit/storage"
)

// BatchProcessor re-embeds batches of retrieval units and writes them back.
type BatchProcessor struct {
	index          storage.VectorIndex
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(index storage.VectorIndex, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		index:          index,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates new embeddings for a batch of units and upserts them.
// Existing chunk_ids keep their insertion sequence, so search tie-breaks
// are unchanged by re-embedding. Vectors are normalized after embedding.
func (bp *BatchProcessor) Process(ctx context.Context, records []*storage.Record) error {
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.PageContent
	}

	// Generate embeddings with retry
	var embeddings [][]float32
	err := ingestion.RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(records) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(records), len(embeddings))
	}

	units := make([]*core.RetrievalUnit, len(records))
	for i, record := range records {
		unit := record.RetrievalUnit
		unit.Vector = NormalizeVector(embeddings[i])
		units[i] = &unit
	}

	if err := bp.index.Upsert(ctx, units...); err != nil {
		return fmt.Errorf("failed to update units: %w", err)
	}

	return nil
}
