// Package ingestion provides pipeline orchestration for transcript processing.
//
// The Pipeline type manages the ingestion workflow for transcripts, including:
//   - Classifying each transcript as work or personal
//   - Chunking turn text into retrieval-sized pieces
//   - Generating embeddings concurrently
//   - Writing retrieval units into the vector index
//
// Embedding and index writes are performed concurrently using a worker pool.
// Per-unit failures are collected into the ingestion Report rather than
// failing the transcript, so partial progress is never lost.
package ingestion
