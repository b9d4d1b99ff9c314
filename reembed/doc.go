// Package reembed re-embeds an existing vector index with a new or
// updated embedding model.
//
// Units are processed in batches with retry and progress reporting.
// Vectors are normalized after embedding, and the index's pinned model
// is updated once every unit carries the new vectors.
package reembed
