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


package storage

import (
	"context"

	"github.com/poiesic/recallit/core"
)

// Record is a retrieval unit as persisted in a vector index.
// Seq is the insertion sequence assigned the first time a chunk_id is
// written; re-ingesting the same chunk_id keeps its original Seq, which
// makes similarity tie-breaking stable across re-runs.
type Record struct {
	core.RetrievalUnit
	Seq uint64
}

// Filter narrows a similarity search. Zero-valued fields match everything.
type Filter struct {
	// ChatAccount restricts results to units owned by this account.
	ChatAccount string
}

// Matches reports whether a record passes the filter.
func (f Filter) Matches(r *Record) bool {
	if f.ChatAccount != "" && r.Metadata.ChatAccount != f.ChatAccount {
		return false
	}
	return true
}

// ModelInfo records which embedding model produced an index's vectors.
// An index only holds vectors from a single model and dimensionality.
type ModelInfo struct {
	Model      string
	Dimensions int
}

// VectorIndex stores retrieval units keyed by chunk_id and serves
// filtered similarity search over their embeddings.
// Implementations must be thread-safe and support concurrent access.
type VectorIndex interface {
	// Upsert writes units into the index. A unit whose chunk_id already
	// exists is overwritten in place; its insertion sequence is kept.
	Upsert(ctx context.Context, units ...*core.RetrievalUnit) error

	// Search returns the k records most similar to the query vector,
	// restricted by the filter, ordered by similarity score descending.
	// Ties are broken by insertion sequence ascending.
	// Returns ErrEmptyIndex when no record passes the filter.
	Search(ctx context.Context, vector []float32, k int, filter Filter) ([]*core.ScoredUnit, error)

	// All streams every record in the index in key order, calling fn for
	// each. Iteration stops at the first error returned by fn.
	All(ctx context.Context, fn func(*Record) error) error

	// Count returns the number of records passing the filter.
	Count(ctx context.Context, filter Filter) (int, error)

	// DeleteChat removes every unit belonging to the given chat.
	// Returns the number of units removed.
	DeleteChat(ctx context.Context, chatID string) (int, error)

	// EnsureModel pins the index to an embedding model. The first call
	// on an empty index persists info; later calls verify it and return
	// ErrModelMismatch when the stored model or dimensions differ.
	EnsureModel(ctx context.Context, info ModelInfo) error

	// ModelInfo returns the pinned embedding model, or ErrNotFound when
	// the index has never been written to.
	ModelInfo(ctx context.Context) (ModelInfo, error)

	// SetModel overwrites the pinned embedding model without
	// verification. Used after re-embedding an index in place.
	SetModel(ctx context.Context, info ModelInfo) error

	// Close closes the index and releases resources.
	Close() error
}
