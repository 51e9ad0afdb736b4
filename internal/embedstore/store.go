// Package embedstore persists verse embedding vectors in PostgreSQL with the
// pgvector extension. It is an optional second cache level under the engine's
// in-process embedding cache: vectors survive restarts, and the vector index
// gives an approximate-nearest-neighbour candidate source for semantic
// retrieval.
//
// Vectors are keyed by (translation, reference, model) so switching the
// embedding model never serves stale vectors.
package embedstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/versematch/versematch/internal/scripture"
)

// Store is a pgvector-backed verse embedding store. All methods are safe for
// concurrent use.
type Store struct {
	pool  *pgxpool.Pool
	model string
}

// New connects to PostgreSQL at dsn. model is the embedding model id the
// stored vectors belong to (see [embeddings.Provider.ModelID]).
func New(ctx context.Context, dsn, model string) (*Store, error) {
	if model == "" {
		return nil, fmt.Errorf("embedstore: model must not be empty")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("embedstore: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("embedstore: ping: %w", err)
	}
	return &Store{pool: pool, model: model}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping checks database connectivity. Used by readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// EnsureSchema creates the pgvector extension, the verse_embeddings table
// and its HNSW index if they do not exist. dims is the vector dimension of
// the configured model.
func (s *Store) EnsureSchema(ctx context.Context, dims int) error {
	if dims <= 0 {
		return fmt.Errorf("embedstore: invalid vector dimension %d", dims)
	}
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS verse_embeddings (
			translation_id TEXT        NOT NULL,
			book           TEXT        NOT NULL,
			chapter        INT         NOT NULL,
			verse          INT         NOT NULL,
			model          TEXT        NOT NULL,
			embedding      vector(%d)  NOT NULL,
			PRIMARY KEY (translation_id, book, chapter, verse, model)
		)`, dims),
		`CREATE INDEX IF NOT EXISTS verse_embeddings_hnsw
			ON verse_embeddings USING hnsw (embedding vector_cosine_ops)`,
	}
	for _, q := range stmts {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("embedstore: ensure schema: %w", err)
		}
	}
	return nil
}

// Get loads the stored vector for one verse. ok is false when no vector is
// stored for the verse and the configured model.
func (s *Store) Get(ctx context.Context, translationID string, ref scripture.Reference) (vec []float32, ok bool, err error) {
	const q = `
		SELECT embedding FROM verse_embeddings
		WHERE translation_id = $1 AND book = $2 AND chapter = $3 AND verse = $4 AND model = $5`

	var v pgvector.Vector
	err = s.pool.QueryRow(ctx, q, translationID, ref.Book, ref.Chapter, ref.Verse, s.model).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("embedstore: get %s: %w", ref, err)
	}
	return v.Slice(), true, nil
}

// Put upserts the vector for one verse.
func (s *Store) Put(ctx context.Context, translationID string, ref scripture.Reference, vec []float32) error {
	const q = `
		INSERT INTO verse_embeddings (translation_id, book, chapter, verse, model, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (translation_id, book, chapter, verse, model)
		DO UPDATE SET embedding = EXCLUDED.embedding`

	_, err := s.pool.Exec(ctx, q,
		translationID, ref.Book, ref.Chapter, ref.Verse, s.model, pgvector.NewVector(vec))
	if err != nil {
		return fmt.Errorf("embedstore: put %s: %w", ref, err)
	}
	return nil
}

// Neighbor is one result of a nearest-vector search.
type Neighbor struct {
	Ref scripture.Reference

	// Distance is the cosine distance to the query vector; smaller is
	// closer.
	Distance float64
}

// Nearest returns the topK stored verses closest (cosine distance) to vec
// within one translation, nearest first.
func (s *Store) Nearest(ctx context.Context, translationID string, vec []float32, topK int) ([]Neighbor, error) {
	const q = `
		SELECT book, chapter, verse, embedding <=> $2 AS distance
		FROM verse_embeddings
		WHERE translation_id = $1 AND model = $3
		ORDER BY distance, book, chapter, verse
		LIMIT $4`

	rows, err := s.pool.Query(ctx, q, translationID, pgvector.NewVector(vec), s.model, topK)
	if err != nil {
		return nil, fmt.Errorf("embedstore: nearest: %w", err)
	}
	defer rows.Close()

	var out []Neighbor
	for rows.Next() {
		var n Neighbor
		if err := rows.Scan(&n.Ref.Book, &n.Ref.Chapter, &n.Ref.Verse, &n.Distance); err != nil {
			return nil, fmt.Errorf("embedstore: nearest scan: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("embedstore: nearest rows: %w", err)
	}
	return out, nil
}
