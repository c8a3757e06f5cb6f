// Package postgres implements the schemaground storage interfaces on
// PostgreSQL with the pgvector extension. Nearest-neighbor search runs in
// the database via the cosine-distance operator, so this backend scales to
// much larger indexes than the embedded SQLite one.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/scrypster/schemaground/internal/storage"
	"github.com/scrypster/schemaground/pkg/types"
)

// Compile-time interface checks.
var (
	_ storage.DocumentStore   = (*Store)(nil)
	_ storage.EmbeddingWriter = (*Store)(nil)
	_ storage.VectorSearcher  = (*Store)(nil)
)

// Schema contains the SQL statements to create the schemaground schema.
// The embedding column is dimensionless; pgvector enforces consistency per
// row, and VectorSearch skips rows of mismatched dimension via the operator.
const Schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS schema_documents (
    id         TEXT PRIMARY KEY,
    kind       TEXT NOT NULL,
    text       TEXT NOT NULL,
    metadata   JSONB NOT NULL DEFAULT '{}',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS schema_embeddings (
    document_id TEXT PRIMARY KEY REFERENCES schema_documents(id) ON DELETE CASCADE,
    embedding   vector NOT NULL,
    created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_schema_documents_kind ON schema_documents(kind);
`

// Store is a PostgreSQL-backed document and embedding store.
type Store struct {
	db *sql.DB
}

// Open connects to PostgreSQL with the given DSN and applies the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Put creates or replaces a document.
func (s *Store) Put(ctx context.Context, doc *types.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", storage.ErrInvalidInput)
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}

	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("postgres: marshal metadata for %s: %w", doc.ID, err)
	}

	const query = `
		INSERT INTO schema_documents (id, kind, text, metadata)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			kind = EXCLUDED.kind,
			text = EXCLUDED.text,
			metadata = EXCLUDED.metadata
	`
	if _, err := s.db.ExecContext(ctx, query, doc.ID, string(doc.Kind), doc.Text, metadata); err != nil {
		return fmt.Errorf("postgres: put document %s: %w", doc.ID, err)
	}
	return nil
}

// Get retrieves a document by ID.
func (s *Store) Get(ctx context.Context, id string) (*types.Document, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: document ID is required", storage.ErrInvalidInput)
	}

	const query = `SELECT id, kind, text, metadata FROM schema_documents WHERE id = $1`

	var doc types.Document
	var kind string
	var metadata []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(&doc.ID, &kind, &doc.Text, &metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get document %s: %w", id, err)
	}

	doc.Kind = types.DocumentKind(kind)
	if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
		return nil, fmt.Errorf("postgres: unmarshal metadata for %s: %w", id, err)
	}
	return &doc, nil
}

// List returns all documents ordered by ID.
func (s *Store) List(ctx context.Context) ([]types.Document, error) {
	const query = `SELECT id, kind, text, metadata FROM schema_documents ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []types.Document
	for rows.Next() {
		var doc types.Document
		var kind string
		var metadata []byte
		if err := rows.Scan(&doc.ID, &kind, &doc.Text, &metadata); err != nil {
			return nil, fmt.Errorf("postgres: scan document: %w", err)
		}
		doc.Kind = types.DocumentKind(kind)
		if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("postgres: unmarshal metadata for %s: %w", doc.ID, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Count returns the number of indexed documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count documents: %w", err)
	}
	return n, nil
}

// StoreEmbedding stores a vector embedding for a document (upsert).
func (s *Store) StoreEmbedding(ctx context.Context, docID string, embedding []float32) error {
	if docID == "" {
		return fmt.Errorf("%w: document ID is required", storage.ErrInvalidInput)
	}
	if len(embedding) == 0 {
		return fmt.Errorf("%w: embedding vector cannot be empty", storage.ErrInvalidInput)
	}

	const query = `
		INSERT INTO schema_embeddings (document_id, embedding)
		VALUES ($1, $2)
		ON CONFLICT (document_id) DO UPDATE SET
			embedding = EXCLUDED.embedding
	`
	if _, err := s.db.ExecContext(ctx, query, docID, pgvector.NewVector(embedding)); err != nil {
		return fmt.Errorf("postgres: store embedding for %s: %w", docID, err)
	}
	return nil
}

// VectorSearch returns the k nearest documents by cosine distance, best
// first. pgvector's <=> operator yields distance in [0, 2]; it is mapped to
// a similarity in [0, 1].
func (s *Store) VectorSearch(ctx context.Context, query []float32, k int) ([]storage.Candidate, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: query vector cannot be empty", storage.ErrInvalidInput)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", storage.ErrInvalidInput)
	}

	const querySQL = `
		SELECT document_id, 1 - (embedding <=> $1) / 2 AS score
		FROM schema_embeddings
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, querySQL, pgvector.NewVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("postgres: vector search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var candidates []storage.Candidate
	for rows.Next() {
		var c storage.Candidate
		if err := rows.Scan(&c.DocumentID, &c.Score); err != nil {
			return nil, fmt.Errorf("postgres: scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
