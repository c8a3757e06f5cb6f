// Package sqlite implements the schemaground storage interfaces on an
// embedded SQLite database (modernc.org/sqlite, no cgo). Documents are
// stored with their metadata as JSON; embeddings are stored as little-endian
// float32 BLOBs and searched with brute-force cosine similarity, which is
// ample for a schema index of a few thousand documents.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/scrypster/schemaground/internal/storage"
	"github.com/scrypster/schemaground/pkg/types"
)

// Compile-time interface checks.
var (
	_ storage.DocumentStore   = (*Store)(nil)
	_ storage.EmbeddingWriter = (*Store)(nil)
	_ storage.VectorSearcher  = (*Store)(nil)
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	text       TEXT NOT NULL,
	metadata   TEXT NOT NULL DEFAULT '{}',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS embeddings (
	document_id TEXT PRIMARY KEY REFERENCES documents(id) ON DELETE CASCADE,
	embedding   BLOB NOT NULL,
	dimension   INTEGER NOT NULL,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_documents_kind ON documents(kind);
`

// Store is a SQLite-backed document and embedding store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite store at the given path.
// Use ":memory:" for an ephemeral store in tests.
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	if path == ":memory:" {
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
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
		return fmt.Errorf("sqlite: marshal metadata for %s: %w", doc.ID, err)
	}

	const query = `
		INSERT INTO documents (id, kind, text, metadata)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			text = excluded.text,
			metadata = excluded.metadata
	`
	if _, err := s.db.ExecContext(ctx, query, doc.ID, string(doc.Kind), doc.Text, string(metadata)); err != nil {
		return fmt.Errorf("sqlite: put document %s: %w", doc.ID, err)
	}
	return nil
}

// Get retrieves a document by ID.
func (s *Store) Get(ctx context.Context, id string) (*types.Document, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: document ID is required", storage.ErrInvalidInput)
	}

	const query = `SELECT id, kind, text, metadata FROM documents WHERE id = ?`

	var doc types.Document
	var kind, metadata string
	err := s.db.QueryRowContext(ctx, query, id).Scan(&doc.ID, &kind, &doc.Text, &metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get document %s: %w", id, err)
	}

	doc.Kind = types.DocumentKind(kind)
	if err := json.Unmarshal([]byte(metadata), &doc.Metadata); err != nil {
		return nil, fmt.Errorf("sqlite: unmarshal metadata for %s: %w", id, err)
	}
	return &doc, nil
}

// List returns all documents ordered by ID.
func (s *Store) List(ctx context.Context) ([]types.Document, error) {
	const query = `SELECT id, kind, text, metadata FROM documents ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []types.Document
	for rows.Next() {
		var doc types.Document
		var kind, metadata string
		if err := rows.Scan(&doc.ID, &kind, &doc.Text, &metadata); err != nil {
			return nil, fmt.Errorf("sqlite: scan document: %w", err)
		}
		doc.Kind = types.DocumentKind(kind)
		if err := json.Unmarshal([]byte(metadata), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("sqlite: unmarshal metadata for %s: %w", doc.ID, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Count returns the number of indexed documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count documents: %w", err)
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
		INSERT INTO embeddings (document_id, embedding, dimension)
		VALUES (?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			embedding = excluded.embedding,
			dimension = excluded.dimension
	`
	if _, err := s.db.ExecContext(ctx, query, docID, serializeVector(embedding), len(embedding)); err != nil {
		return fmt.Errorf("sqlite: store embedding for %s: %w", docID, err)
	}
	return nil
}

// VectorSearch scans all stored embeddings and returns the k most similar
// documents by cosine similarity, best first. Scores are mapped from
// [-1, 1] cosine into [0, 1].
func (s *Store) VectorSearch(ctx context.Context, query []float32, k int) ([]storage.Candidate, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: query vector cannot be empty", storage.ErrInvalidInput)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", storage.ErrInvalidInput)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT document_id, embedding, dimension FROM embeddings`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load embeddings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var candidates []storage.Candidate
	for rows.Next() {
		var docID string
		var blob []byte
		var dim int
		if err := rows.Scan(&docID, &blob, &dim); err != nil {
			return nil, fmt.Errorf("sqlite: scan embedding: %w", err)
		}
		if dim != len(query) {
			continue // stale embedding from a different model
		}
		vec, err := deserializeVector(blob, dim)
		if err != nil {
			return nil, fmt.Errorf("sqlite: embedding for %s: %w", docID, err)
		}
		sim := cosineSimilarity(query, vec)
		candidates = append(candidates, storage.Candidate{
			DocumentID: docID,
			Score:      (float64(sim) + 1) / 2,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate embeddings: %w", err)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
