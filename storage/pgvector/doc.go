// Package pgvector implements the vector index on PostgreSQL with the
// pgvector extension.
//
// The backend is intended for deployments where the index outgrows a
// single embedded database or must be shared between processes. Schema
// setup is automatic on open. Similarity search and ordering run in the
// database using the cosine distance operator, so results match the
// BadgerDB backend's scoring.
//
// Tests require a reachable PostgreSQL server with the vector extension
// and are skipped unless RECALLIT_POSTGRES_DSN is set.
package pgvector
