package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks maturamente-ai/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DocumentStore defines the interface for the document catalog.
type DocumentStore interface {
	// Upsert inserts a document or updates the one with the same source id.
	// The record's ID is set to the stored ID.
	Upsert(ctx context.Context, doc *DocumentRecord) error
	// List returns documents ordered by title. A blank subject lists every document.
	List(ctx context.Context, subject string) ([]DocumentRecord, error)
	// GetBySourceID returns ErrNotFound when the source id is unknown.
	GetBySourceID(ctx context.Context, sourceID string) (*DocumentRecord, error)
	// KindsBySourceIDs returns the kind of each known source id. Unknown ids are absent.
	KindsBySourceIDs(ctx context.Context, sourceIDs []string) (map[string]DocumentKind, error)
	// SetIndexState records the chunk set last indexed for sourceID. Returns ErrNotFound for an unknown source id.
	SetIndexState(ctx context.Context, sourceID string, state IndexState) error
}

// DocumentRepo implements DocumentStore on SQLite.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Upsert inserts a document or updates the one with the same source id.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *DocumentRecord) error {
	if strings.TrimSpace(doc.SourceID) == "" {
		return fmt.Errorf("source id is required")
	}
	if !doc.Kind.Valid() {
		return fmt.Errorf("invalid document kind %q", doc.Kind)
	}
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO documents (id, source_id, kind, title, subject, owner_id)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (source_id) DO UPDATE SET
		 kind = excluded.kind, title = excluded.title, subject = excluded.subject, owner_id = excluded.owner_id
		 RETURNING id`,
		doc.ID, doc.SourceID, string(doc.Kind), doc.Title, doc.Subject, doc.OwnerID,
	).Scan(&doc.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

// List returns documents ordered by title.
func (r *DocumentRepo) List(ctx context.Context, subject string) ([]DocumentRecord, error) {
	query := "SELECT id, source_id, kind, title, subject, owner_id, indexed_source, content_hash, chunk_count, created_at FROM documents"
	var args []any
	if subject != "" {
		query += " WHERE subject = ? COLLATE NOCASE"
		args = append(args, subject)
	}
	query += " ORDER BY title, source_id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := []DocumentRecord{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

// GetBySourceID returns the document for sourceID.
func (r *DocumentRepo) GetBySourceID(ctx context.Context, sourceID string) (*DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, source_id, kind, title, subject, owner_id, indexed_source, content_hash, chunk_count, created_at FROM documents WHERE source_id = ?",
		sourceID,
	)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// KindsBySourceIDs returns the kind of each known source id.
func (r *DocumentRepo) KindsBySourceIDs(ctx context.Context, sourceIDs []string) (map[string]DocumentKind, error) {
	kinds := make(map[string]DocumentKind, len(sourceIDs))
	if len(sourceIDs) == 0 {
		return kinds, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(sourceIDs)), ",")
	args := make([]any, len(sourceIDs))
	for i, id := range sourceIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT source_id, kind FROM documents WHERE source_id IN ("+placeholders+")",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query document kinds: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sourceID, kind string
		if err := rows.Scan(&sourceID, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan document kind: %w", err)
		}
		kinds[sourceID] = DocumentKind(kind)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate document kinds: %w", err)
	}
	return kinds, nil
}

// SetIndexState records the last indexed chunk set of a document.
func (r *DocumentRepo) SetIndexState(ctx context.Context, sourceID string, state IndexState) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE documents SET indexed_source = ?, content_hash = ?, chunk_count = ? WHERE source_id = ?",
		state.Source, state.ContentHash, state.ChunkCount, sourceID,
	)
	if err != nil {
		return fmt.Errorf("failed to update index state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(s rowScanner) (*DocumentRecord, error) {
	var (
		doc       DocumentRecord
		kind      string
		createdAt string
	)
	if err := s.Scan(&doc.ID, &doc.SourceID, &kind, &doc.Title, &doc.Subject, &doc.OwnerID,
		&doc.IndexState.Source, &doc.IndexState.ContentHash, &doc.IndexState.ChunkCount, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}
	doc.Kind = DocumentKind(kind)

	t, err := parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	doc.CreatedAt = t
	return &doc, nil
}
