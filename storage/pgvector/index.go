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


package pgvector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	pgv "github.com/pgvector/pgvector-go"
	"github.com/poiesic/recallit/core"
	"github.com/poiesic/recallit/storage"
)

// Index implements storage.VectorIndex on PostgreSQL with the pgvector
// extension. Unlike the BadgerDB backend, similarity search runs in the
// database using the cosine distance operator.
type Index struct {
	db     *sql.DB
	dims   int
	logger *slog.Logger
}

// newIndex is an internal constructor that returns the concrete type.
func newIndex(dsn string, dims int) (*Index, error) {
	if dims <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	idx := &Index{
		db:     db,
		dims:   dims,
		logger: slog.Default().With("component", "pgvector-index"),
	}

	if err := idx.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return idx, nil
}

// NewIndex opens a vector index backed by PostgreSQL. The schema is
// created on first use; dims fixes the vector column width.
//
// Returns storage.VectorIndex interface to enforce abstraction.
func NewIndex(dsn string, dims int) (storage.VectorIndex, error) {
	return newIndex(dsn, dims)
}

func (idx *Index) migrate() error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS retrieval_units (
			chunk_id      TEXT PRIMARY KEY,
			seq           BIGSERIAL,
			chat_engine   TEXT NOT NULL DEFAULT '',
			chat_account  TEXT NOT NULL DEFAULT '',
			chat_id       TEXT NOT NULL,
			title         TEXT NOT NULL DEFAULT '',
			chat_created  TEXT NOT NULL DEFAULT '',
			turn_id       TEXT NOT NULL,
			speaker       TEXT NOT NULL DEFAULT '',
			turn_ts       TEXT NOT NULL DEFAULT '',
			accessibility TEXT NOT NULL,
			confidence    DOUBLE PRECISION NOT NULL,
			chunk_index   INTEGER NOT NULL,
			page_content  TEXT NOT NULL,
			embedding     vector(%d)
		)`, idx.dims),
		`CREATE INDEX IF NOT EXISTS retrieval_units_chat_id ON retrieval_units (chat_id)`,
		`CREATE INDEX IF NOT EXISTS retrieval_units_chat_account ON retrieval_units (chat_account)`,
		`CREATE TABLE IF NOT EXISTS index_meta (
			id         INTEGER PRIMARY KEY CHECK (id = 1),
			model      TEXT NOT NULL,
			dimensions INTEGER NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := idx.db.Exec(stmt); err != nil {
			return fmt.Errorf("%w: %v", storage.ErrIndexWrite, err)
		}
	}
	return nil
}

// Upsert writes units keyed by chunk_id. The seq column is assigned by
// the database on first insert and left untouched on conflict.
func (idx *Index) Upsert(ctx context.Context, units ...*core.RetrievalUnit) error {
	if len(units) == 0 {
		return nil
	}

	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrIndexWrite, err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO retrieval_units (
			chunk_id, chat_engine, chat_account, chat_id, title, chat_created,
			turn_id, speaker, turn_ts, accessibility, confidence, chunk_index,
			page_content, embedding
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (chunk_id) DO UPDATE SET
			chat_engine   = EXCLUDED.chat_engine,
			chat_account  = EXCLUDED.chat_account,
			chat_id       = EXCLUDED.chat_id,
			title         = EXCLUDED.title,
			chat_created  = EXCLUDED.chat_created,
			turn_id       = EXCLUDED.turn_id,
			speaker       = EXCLUDED.speaker,
			turn_ts       = EXCLUDED.turn_ts,
			accessibility = EXCLUDED.accessibility,
			confidence    = EXCLUDED.confidence,
			chunk_index   = EXCLUDED.chunk_index,
			page_content  = EXCLUDED.page_content,
			embedding     = EXCLUDED.embedding`

	for _, unit := range units {
		m := unit.Metadata
		_, err := tx.ExecContext(ctx, query,
			m.ChunkID, m.ChatEngine, m.ChatAccount, m.ChatID, m.Title, m.Created,
			m.TurnID, m.Speaker, m.Timestamp, string(m.Accessibility),
			m.AccessibilityConfidence, m.ChunkIndex,
			unit.PageContent, pgv.NewVector(unit.Vector),
		)
		if err != nil {
			idx.logger.Error("failed to upsert unit", "chunkID", m.ChunkID, "err", err)
			return fmt.Errorf("%w: %v", storage.ErrIndexWrite, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrIndexWrite, err)
	}
	return nil
}

const recordColumns = `chunk_id, seq, chat_engine, chat_account, chat_id, title,
	chat_created, turn_id, speaker, turn_ts, accessibility, confidence,
	chunk_index, page_content, embedding`

func scanRecord(scan func(...any) error) (*storage.Record, error) {
	var (
		record = &storage.Record{}
		m      = &record.Metadata
		label  string
		vec    pgv.Vector
	)
	err := scan(
		&m.ChunkID, &record.Seq, &m.ChatEngine, &m.ChatAccount, &m.ChatID,
		&m.Title, &m.Created, &m.TurnID, &m.Speaker, &m.Timestamp,
		&label, &m.AccessibilityConfidence, &m.ChunkIndex,
		&record.PageContent, &vec,
	)
	if err != nil {
		return nil, err
	}
	m.Accessibility = core.AccessibilityLabel(label)
	record.Vector = vec.Slice()
	return record, nil
}

// Search returns the k nearest units by cosine similarity, computed in
// the database. Ties are broken by insertion sequence ascending.
func (idx *Index) Search(ctx context.Context, vector []float32, k int, filter storage.Filter) ([]*core.ScoredUnit, error) {
	if k <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	query := `SELECT ` + recordColumns + `,
		1 - (embedding <=> $1) AS score
		FROM retrieval_units
		WHERE embedding IS NOT NULL`
	args := []any{pgv.NewVector(vector)}

	if filter.ChatAccount != "" {
		query += ` AND chat_account = $2`
		args = append(args, filter.ChatAccount)
	}
	query += fmt.Sprintf(` ORDER BY score DESC, seq ASC LIMIT %d`, k)

	rows, err := idx.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*core.ScoredUnit
	for rows.Next() {
		var score float32
		record, err := scanRecord(func(dest ...any) error {
			return rows.Scan(append(dest, &score)...)
		})
		if err != nil {
			return nil, err
		}
		unit := record.RetrievalUnit
		results = append(results, &core.ScoredUnit{
			Unit:  &unit,
			Score: score,
			Seq:   record.Seq,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, storage.ErrEmptyIndex
	}
	return results, nil
}

// All streams every stored record ordered by insertion sequence.
func (idx *Index) All(ctx context.Context, fn func(*storage.Record) error) error {
	rows, err := idx.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM retrieval_units ORDER BY seq ASC`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return err
		}
		if err := fn(record); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Count returns the number of records passing the filter.
func (idx *Index) Count(ctx context.Context, filter storage.Filter) (int, error) {
	query := `SELECT COUNT(*) FROM retrieval_units`
	args := []any{}
	if filter.ChatAccount != "" {
		query += ` WHERE chat_account = $1`
		args = append(args, filter.ChatAccount)
	}

	var count int
	if err := idx.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteChat removes every unit belonging to chatID.
func (idx *Index) DeleteChat(ctx context.Context, chatID string) (int, error) {
	res, err := idx.db.ExecContext(ctx, `DELETE FROM retrieval_units WHERE chat_id = $1`, chatID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", storage.ErrIndexWrite, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
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
	err := idx.db.QueryRowContext(ctx, `SELECT model, dimensions FROM index_meta WHERE id = 1`).
		Scan(&info.Model, &info.Dimensions)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ModelInfo{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.ModelInfo{}, err
	}
	return info, nil
}

// SetModel overwrites the pinned embedding model.
func (idx *Index) SetModel(ctx context.Context, info storage.ModelInfo) error {
	_, err := idx.db.ExecContext(ctx,
		`INSERT INTO index_meta (id, model, dimensions) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET model = EXCLUDED.model, dimensions = EXCLUDED.dimensions`,
		info.Model, info.Dimensions,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrIndexWrite, err)
	}
	return nil
}

// Close closes the database connection pool.
func (idx *Index) Close() error {
	return idx.db.Close()
}
