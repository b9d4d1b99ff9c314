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


// Package storage provides the vector index abstraction layer.
//
// This package defines the VectorIndex interface that decouples index
// implementation from business logic, so different backends (BadgerDB,
// PostgreSQL with pgvector, in-memory) can be used interchangeably.
//
// # Constructor Return Type Pattern
//
// This package follows a strict "return interface" pattern for all public
// constructors to enforce abstraction and enable multiple backend
// implementations:
//
//	index, err := badger.NewIndex(path)  // returns storage.VectorIndex interface
//
// This design decision prioritizes:
//   - Abstraction: Prevents accidental coupling to backend specifics
//   - Swappability: Easy to switch between BadgerDB and pgvector
//   - Testing: Consumers can use in-memory indexes without modification
//
// Internal package constructors may return concrete types since they're
// only used within the implementation package.
//
// # Upsert Semantics
//
// Records are keyed by chunk_id. Writing a chunk_id that already exists
// replaces the stored record but keeps its insertion sequence, so search
// tie-breaking stays stable across re-ingestion of the same transcript.
//
// # Model Pinning
//
// An index holds vectors from exactly one embedding model. EnsureModel
// pins the model on first write and rejects mismatched callers with
// ErrModelMismatch afterwards.
//
// # Usage
//
// Create an index instance:
//
//	index, err := badger.NewIndex("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer index.Close()
//
// Use in tests with in-memory storage:
//
//	index, err := badger.NewMemoryIndex()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer index.Close()
//
// # Thread Safety
//
// All index implementations must be thread-safe and support concurrent
// access from multiple goroutines.
//
// # Context Support
//
// All index methods accept context.Context for cancellation and timeout
// support. Pass context.Background() for operations without specific
// timeout requirements.
package storage
