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


package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/recallit/ai"
	"github.com/poiesic/recallit/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of units to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of units)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder orchestrates the reembedding of every unit in a vector index.
type Reembedder struct {
	index     storage.VectorIndex
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(index storage.VectorIndex, embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}

	return &Reembedder{
		index:     index,
		embedder:  embedder,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(index, embedder, config.MaxRetries, config.RetryDelay),
	}, nil
}

// Run re-embeds every unit in the index and pins the index to the new
// model once all units carry its vectors. Progress is reported to the
// configured writer.
func (r *Reembedder) Run(ctx context.Context, model storage.ModelInfo) error {
	total, err := r.index.Count(ctx, storage.Filter{})
	if err != nil {
		return fmt.Errorf("failed to count units: %w", err)
	}

	if total == 0 {
		fmt.Fprintf(r.progress, "No units found in index (0 units)\n")
		return r.index.SetModel(ctx, model)
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d units (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	batch := make([]*storage.Record, 0, r.config.BatchSize)
	processed := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := r.processor.Process(ctx, batch); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		processed += len(batch)
		tracker.Update(processed)
		batch = batch[:0]
		return nil
	}

	err = r.index.All(ctx, func(record *storage.Record) error {
		batch = append(batch, record)
		if len(batch) >= r.config.BatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}

	// Every unit now carries the new model's vectors
	if err := r.index.SetModel(ctx, model); err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d units in %v (%.1f units/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}
