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


package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/storage"
)

// Index implements storage.VectorIndex on top of BadgerDB.
// Similarity search is a brute-force scan over all stored vectors, which
// is appropriate for the single-user index sizes this system targets.
type Index struct {
	backend *Backend
	seq     *badger.Sequence
	mu      sync.Mutex // serializes upserts so seq assignment stays race-free
	logger  *slog.Logger
}

// newIndex is an internal constructor that returns the concrete type.
func newIndex(backend *Backend) (*Index, error) {
	seq, err := backend.GetSequence(unitSeqName)
	if err != nil {
		return nil, err
	}

	return &Index{
		backend: backend,
		seq:     seq,
		logger:  slog.Default().With("component", "badger-index"),
	}, nil
}

// NewIndex opens a vector index backed by a BadgerDB database at path.
//
// Returns storage.VectorIndex interface to enforce abstraction.
func NewIndex(path string) (storage.VectorIndex, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}

	index, err := newIndex(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return index, nil
}

// Upsert writes units keyed by chunk_id. Existing units are overwritten
// but keep their original insertion sequence.
func (idx *Index) Upsert(ctx context.Context, units ...*core.RetrievalUnit) error {
	if len(units) == 0 {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	err := idx.backend.WithTx(func(tx *badger.Txn) error {
		for _, unit := range units {
			if err := ctx.Err(); err != nil {
				return err
			}

			key := makeUnitKey(unit.Metadata.ChunkID)

			record := &storage.Record{RetrievalUnit: *unit}

			item, err := tx.Get(key)
			switch {
			case err == nil:
				// Overwrite in place, keep the original sequence
				var existing *storage.Record
				if err := item.Value(func(val []byte) error {
					existing, err = storage.UnmarshalRecord(val)
					return err
				}); err != nil {
					return err
				}
				record.Seq = existing.Seq
			case errors.Is(err, badger.ErrKeyNotFound):
				next, err := idx.seq.Next()
				if err != nil {
					return err
				}
				record.Seq = next
			default:
				return err
			}

			if err := tx.Set(key, storage.MarshalRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		idx.logger.Error("failed to upsert units", "count", len(units), "err", err)
		return fmt.Errorf("%w: %v", storage.ErrIndexWrite, err)
	}

	return nil
}

// Search scans all stored vectors and returns the k most similar records.
func (idx *Index) Search(ctx context.Context, vector []float32, k int, filter storage.Filter) ([]*core.ScoredUnit, error) {
	if k <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.ScoredUnit

	err := idx.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(unitPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var record *storage.Record
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalRecord(val)
				return err
			})
			if err != nil {
				return err
			}

			if !filter.Matches(record) {
				continue
			}
			if len(record.Vector) == 0 {
				continue
			}

			unit := record.RetrievalUnit
			results = append(results, &core.ScoredUnit{
				Unit:  &unit,
				Score: cosineSimilarity(vector, record.Vector),
				Seq:   record.Seq,
			})
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, storage.ErrEmptyIndex
	}

	// Score descending, insertion sequence ascending on ties
	slices.SortFunc(results, func(a, b *core.ScoredUnit) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		if a.Seq < b.Seq {
			return -1
		}
		if a.Seq > b.Seq {
			return 1
		}
		return 0
	})

	if len(results) > k {
		results = results[:k]
	}

	return results, nil
}

// All streams every stored record in key order.
func (idx *Index) All(ctx context.Context, fn func(*storage.Record) error) error {
	return idx.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(unitPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var record *storage.Record
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalRecord(val)
				return err
			})
			if err != nil {
				return err
			}

			if err := fn(record); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// Count returns the number of records passing the filter.
func (idx *Index) Count(ctx context.Context, filter storage.Filter) (int, error) {
	count := 0
	err := idx.All(ctx, func(record *storage.Record) error {
		if filter.Matches(record) {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteChat removes every unit belonging to chatID.
func (idx *Index) DeleteChat(ctx context.Context, chatID string) (int, error) {
	// Collect keys first; deleting while iterating invalidates the iterator.
	var keys [][]byte
	err := idx.All(ctx, func(record *storage.Record) error {
		if record.Metadata.ChatID == chatID {
			keys = append(keys, makeUnitKey(record.Metadata.ChunkID))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if len(keys) == 0 {
		return 0, nil
	}

	err = idx.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", storage.ErrIndexWrite, err)
	}

	idx.logger.Debug("deleted chat units", "chatID", chatID, "count", len(keys))
	return len(keys), nil
}

// EnsureModel pins the embedding model on first call and verifies it on
// later calls.
func (idx *Index) EnsureModel(ctx context.Context, info storage.ModelInfo) error {
	stored, err := idx.ModelInfo(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return idx.SetModel(ctx, info)
	}
	if err != nil {
		return err
	}

	if stored != info {
		return fmt.Errorf("%w: index holds %s/%d, caller uses %s/%d",
			storage.ErrModelMismatch, stored.Model, stored.Dimensions, info.Model, info.Dimensions)
	}
	return nil
}

// ModelInfo returns the pinned embedding model.
func (idx *Index) ModelInfo(ctx context.Context) (storage.ModelInfo, error) {
	var info storage.ModelInfo

	err := idx.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeModelMetaKey())
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			info, err = storage.UnmarshalModelInfo(val)
			return err
		})
	}, false)

	if err != nil {
		return storage.ModelInfo{}, err
	}
	return info, nil
}

// SetModel overwrites the pinned embedding model.
func (idx *Index) SetModel(ctx context.Context, info storage.ModelInfo) error {
	data := storage.MarshalModelInfo(info)

	err := idx.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeModelMetaKey(), data); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrIndexWrite, err)
	}
	return nil
}

// Close releases the sequence and closes the underlying database.
func (idx *Index) Close() error {
	if err := idx.seq.Release(); err != nil && !idx.backend.IsClosed() {
		idx.logger.Warn("failed to release unit sequence", "err", err)
	}
	return idx.backend.Close()
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 when either vector has zero magnitude.
func cosineSimilarity(a, b []float32) float32 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
