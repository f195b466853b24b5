package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"maturamente-ai/internal/contextutil"
)

const pgTable = "chunk_embeddings"

// PGVectorStore implements VectorStore on PostgreSQL with the pgvector extension.
// All collections share one table, keyed by a collection column.
type PGVectorStore struct {
	db  *sql.DB
	dim int
}

// NewPGVectorStore opens a PostgreSQL connection and verifies it.
func NewPGVectorStore(dsn string, dim int) (*PGVectorStore, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("vector dimension must be greater than 0")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return &PGVectorStore{db: db, dim: dim}, nil
}

// Close closes the underlying connection pool.
func (s *PGVectorStore) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the extension, table and indexes if they do not exist.
func (s *PGVectorStore) EnsureSchema(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			collection TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			embedding vector(%d) NOT NULL
		)`, pgTable, s.dim),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_collection_source ON %[1]s(collection, source)`, pgTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_embedding ON %[1]s USING hnsw (embedding vector_cosine_ops)`, pgTable),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure pgvector schema: %w", err)
		}
	}

	logger.InfoContext(ctx, "pgvector schema ready", "table", pgTable, "dim", s.dim)
	return nil
}

// Upsert inserts or updates points in the collection.
func (s *PGVectorStore) Upsert(ctx context.Context, collection string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, collection, source, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			collection = EXCLUDED.collection,
			source = EXCLUDED.source,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding
	`, pgTable))
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if len(p.Vec) != s.dim {
			return fmt.Errorf("point %s has dimension %d, expected %d", p.ID, len(p.Vec), s.dim)
		}
		meta, err := json.Marshal(p.Meta)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for point %s: %w", p.ID, err)
		}
		source, _ := p.Meta[SourceKey].(string)
		if _, err := stmt.ExecContext(ctx, p.ID, collection, source, meta, pgvector.NewVector(p.Vec)); err != nil {
			return fmt.Errorf("failed to upsert point %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}

	logger.InfoContext(ctx, "upserted points", "collection", collection, "count", len(points))
	return nil
}

// Search returns the k nearest points by cosine distance. Score is 1 - distance.
func (s *PGVectorStore) Search(ctx context.Context, collection string, query []float32, k int, filter *Filter) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	q, args := buildSearchQuery(collection, query, k, filter)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "collection", collection, "k", k, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}
	defer rows.Close()

	results := make([]SearchResult, 0, k)
	for rows.Next() {
		var (
			id    string
			raw   []byte
			score float64
		)
		if err := rows.Scan(&id, &raw, &score); err != nil {
			return nil, fmt.Errorf("failed to scan search row: %w", err)
		}
		meta := make(map[string]any)
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &meta); err != nil {
				return nil, fmt.Errorf("failed to decode metadata for point %s: %w", id, err)
			}
		}
		results = append(results, SearchResult{PointID: id, Score: float32(score), Meta: meta})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search rows: %w", err)
	}

	logger.DebugContext(ctx, "search completed", "collection", collection, "k", k, "results", len(results))
	return results, nil
}

// buildSearchQuery renders the similarity query and its positional arguments.
func buildSearchQuery(collection string, query []float32, k int, filter *Filter) (string, []any) {
	args := []any{pgvector.NewVector(query), collection}
	where := []string{"collection = $2"}

	if !filter.IsEmpty() {
		args = append(args, pq.Array(filter.Sources))
		where = append(where, fmt.Sprintf("source = ANY($%d)", len(args)))
	}

	args = append(args, k)
	q := fmt.Sprintf(
		`SELECT id, metadata, 1 - (embedding <=> $1) AS score FROM %s WHERE %s ORDER BY embedding <=> $1 LIMIT $%d`,
		pgTable, strings.Join(where, " AND "), len(args),
	)
	return q, args
}

// Delete removes points by their IDs.
func (s *PGVectorStore) Delete(ctx context.Context, collection string, ids []string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(ids) == 0 {
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE collection = $1 AND id = ANY($2)`, pgTable),
		collection, pq.Array(ids),
	)
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete points", "collection", collection, "count", len(ids), "error", err)
		return fmt.Errorf("failed to delete points: %w", err)
	}

	logger.InfoContext(ctx, "deleted points", "collection", collection, "count", len(ids))
	return nil
}

// CollectionExists reports whether the embeddings table exists. Collections are rows
// of one shared table, so an empty collection counts as existing once the schema is ready.
func (s *PGVectorStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	q, args := tableExistsQuery()
	var exists bool
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check collection %s: %w", collection, err)
	}
	return exists, nil
}

func tableExistsQuery() (string, []any) {
	return `SELECT to_regclass($1) IS NOT NULL`, []any{pgTable}
}
