// Command schemaground-index builds the document index the grounding API
// serves from. It reads schema documents as JSON lines, validates them,
// embeds each document's text, and writes documents and vectors to the
// configured backend.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/scrypster/schemaground/internal/config"
	"github.com/scrypster/schemaground/internal/embed"
	"github.com/scrypster/schemaground/internal/storage"
	"github.com/scrypster/schemaground/internal/storage/postgres"
	"github.com/scrypster/schemaground/internal/storage/sqlite"
	"github.com/scrypster/schemaground/pkg/types"
)

// indexStore is the composed storage surface the builder writes through.
type indexStore interface {
	storage.DocumentStore
	storage.EmbeddingWriter
}

func main() {
	inputPath := flag.String("input", "schema_docs.jsonl", "Path to schema documents (JSON lines)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var store indexStore
	switch cfg.Storage.StorageEngine {
	case "postgres":
		store, err = postgres.Open(cfg.Storage.PostgresDSN)
	case "sqlite":
		store, err = sqlite.Open(cfg.Storage.DataPath + "/schemaground.db")
	default:
		log.Fatalf("Unknown storage engine: %q", cfg.Storage.StorageEngine)
	}
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	embedClient := embed.NewClient(cfg.Embedding)
	log.Printf("Indexing %s into %s backend (embedding model: %s)",
		*inputPath, cfg.Storage.StorageEngine, embedClient.Model())

	indexed, err := buildIndex(context.Background(), store, embedClient, *inputPath)
	if err != nil {
		log.Fatalf("Index build failed: %v", err)
	}
	log.Printf("Indexed %d documents", indexed)
}

// buildIndex streams documents from the input file into the store. A
// document that fails validation aborts the build; nothing is rolled back.
func buildIndex(ctx context.Context, store indexStore, embedder storage.Embedder, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	indexed := 0
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var doc types.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return indexed, fmt.Errorf("line %d: parse document: %w", line, err)
		}
		if err := doc.Validate(); err != nil {
			return indexed, fmt.Errorf("line %d: invalid document %q: %w", line, doc.ID, err)
		}

		if err := store.Put(ctx, &doc); err != nil {
			return indexed, fmt.Errorf("store document %q: %w", doc.ID, err)
		}

		vec, err := embedder.Embed(ctx, doc.Text)
		if err != nil {
			return indexed, fmt.Errorf("embed document %q: %w", doc.ID, err)
		}
		if err := store.StoreEmbedding(ctx, doc.ID, vec); err != nil {
			return indexed, fmt.Errorf("store embedding %q: %w", doc.ID, err)
		}

		indexed++
		if indexed%50 == 0 {
			log.Printf("  ...%d documents", indexed)
		}
	}
	if err := scanner.Err(); err != nil {
		return indexed, fmt.Errorf("read input: %w", err)
	}
	return indexed, nil
}
