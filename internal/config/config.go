// Package config provides configuration management for schemaground.
// It loads settings from environment variables with the SCHEMAGROUND_ prefix
// and provides sensible defaults for all configuration options.
//
// Scoring magnitudes, the status vocabulary, and the model-to-domain category
// map are configuration data rather than code; see scoring.go.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration settings for the schemaground service.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Embedding EmbeddingConfig
	Retrieval RetrievalConfig
	Security  SecurityConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    // Server port (default: 6470)
	Host string // Server host (default: 127.0.0.1)
}

// StorageConfig contains document index storage configuration.
type StorageConfig struct {
	StorageEngine string // Storage engine type: sqlite, postgres (default: sqlite)
	DataPath      string // Path to data directory for sqlite (default: ./data)
	PostgresDSN   string // Postgres connection string when StorageEngine is postgres
}

// EmbeddingConfig contains the embedding API client configuration.
type EmbeddingConfig struct {
	BaseURL string        // Embedding API base URL (default: http://localhost:11434)
	Model   string        // Embedding model name (default: nomic-embed-text)
	Timeout time.Duration // Request timeout (default: 5s)
}

// RetrievalConfig contains grounding pipeline configuration.
type RetrievalConfig struct {
	TopK        int    // Default number of documents to surface (default: 5)
	Overfetch   int    // Retrieval over-fetch multiplier before re-ranking (default: 2)
	LexiconPath string // Path to the synonym table JSON; empty disables expansion
	ScoringPath string // Path to the scoring YAML; empty uses compiled-in defaults
}

// SecurityConfig contains security and authentication settings.
type SecurityConfig struct {
	SecurityMode string // Security mode: development, production (default: development)
	APIToken     string // API authentication token
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the SCHEMAGROUND_ prefix.
func LoadConfig() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("SCHEMAGROUND_PORT", 6470),
			Host: getEnv("SCHEMAGROUND_HOST", "127.0.0.1"),
		},
		Storage: StorageConfig{
			StorageEngine: getEnv("SCHEMAGROUND_STORAGE_ENGINE", "sqlite"),
			DataPath:      getEnv("SCHEMAGROUND_DATA_PATH", "./data"),
			PostgresDSN:   getEnv("SCHEMAGROUND_POSTGRES_DSN", ""),
		},
		Embedding: EmbeddingConfig{
			BaseURL: getEnv("SCHEMAGROUND_EMBEDDING_URL", "http://localhost:11434"),
			Model:   getEnv("SCHEMAGROUND_EMBEDDING_MODEL", "nomic-embed-text"),
			Timeout: getEnvDuration("SCHEMAGROUND_EMBEDDING_TIMEOUT", 5*time.Second),
		},
		Retrieval: RetrievalConfig{
			TopK:        getEnvInt("SCHEMAGROUND_TOP_K", 5),
			Overfetch:   getEnvInt("SCHEMAGROUND_OVERFETCH", 2),
			LexiconPath: getEnv("SCHEMAGROUND_LEXICON_PATH", ""),
			ScoringPath: getEnv("SCHEMAGROUND_SCORING_PATH", ""),
		},
		Security: SecurityConfig{
			SecurityMode: getEnv("SCHEMAGROUND_SECURITY_MODE", "development"),
			APIToken:     getEnv("SCHEMAGROUND_API_TOKEN", ""),
		},
	}, nil
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value. If the environment variable exists but cannot be parsed as an
// integer, it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable (Go duration
// syntax, e.g. "5s") or returns a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
