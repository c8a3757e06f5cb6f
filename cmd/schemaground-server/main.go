// Command schemaground-server runs the schema grounding HTTP API.
//
// It loads configuration from SCHEMAGROUND_* environment variables, opens
// the document index (SQLite or Postgres), connects to the embedding
// service, and serves grounding requests until interrupted.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scrypster/schemaground/internal/config"
	"github.com/scrypster/schemaground/internal/embed"
	"github.com/scrypster/schemaground/internal/engine"
	"github.com/scrypster/schemaground/internal/lexicon"
	"github.com/scrypster/schemaground/internal/server"
	"github.com/scrypster/schemaground/internal/storage"
	"github.com/scrypster/schemaground/internal/storage/postgres"
	"github.com/scrypster/schemaground/internal/storage/sqlite"
)

// indexStore is the composed storage surface both backends satisfy.
type indexStore interface {
	storage.DocumentStore
	storage.VectorSearcher
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize storage
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

	// Embedding client and retriever
	embedClient := embed.NewClient(cfg.Embedding)
	retriever := storage.NewVectorRetriever(embedClient, store)

	// Scoring weights: fall back to defaults when the file is absent or bad
	scoring := config.DefaultScoring()
	if cfg.Retrieval.ScoringPath != "" {
		scoring, err = config.LoadScoring(cfg.Retrieval.ScoringPath)
		if err != nil {
			log.Printf("Warning: scoring config %s unreadable, using defaults: %v",
				cfg.Retrieval.ScoringPath, err)
		}
	}
	scorer := engine.NewScorer(scoring)

	// Lexicon: a missing or malformed file degrades expansion to identity
	var lex *lexicon.Lexicon
	if cfg.Retrieval.LexiconPath != "" {
		lex, err = lexicon.Load(cfg.Retrieval.LexiconPath)
		if err != nil {
			log.Printf("Warning: lexicon %s unreadable, expansion disabled: %v",
				cfg.Retrieval.LexiconPath, err)
			lex = nil
		}
	}

	grounder := engine.NewGrounder(store, retriever, scorer,
		engine.WithLexicon(lex),
		engine.WithOverfetch(cfg.Retrieval.Overfetch),
	)

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr, wsHub := server.Start(ctx, cfg, store, grounder)
	grounder.SetEventSink(wsHub)
	log.Printf("schemaground API running at http://%s", addr)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
	log.Println("Shutdown complete")
}
