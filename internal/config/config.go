package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Vector store backends.
const (
	BackendQdrant   = "qdrant"
	BackendPGVector = "pgvector"
)

// Config holds all configuration for the application.
type Config struct {
	LLMBaseURL   string
	LLMModelName string
	LLMAPIKey    string
	// LLMTemperature and LLMMaxTokens of 0 keep the server defaults.
	LLMTemperature float32
	LLMMaxTokens   int

	EmbeddingBaseURL   string
	EmbeddingModelName string
	EmbeddingAPIKey    string
	// EmbeddingCacheSize of 0 disables the query embedding cache.
	EmbeddingCacheSize int
	EmbeddingCacheTTL  time.Duration

	VectorBackend    string
	QdrantURL        string
	QdrantCollection string
	VectorSize       int
	PGVectorDSN      string

	DBPath  string
	APIPort string

	LogLevel  slog.Level
	LogFormat string

	RetrievalTotalChunks         int
	RetrievalMinChunksPerDoc     int
	RetrievalMaxChunksPerDoc     int // 0 derives ceil(total/2)
	RetrievalEnforceDistribution bool
	RetrievalMaxParallel         int
	RetrievalUnfilteredFallback  bool

	ChatHistoryLimit int
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or one of its parents, it is loaded.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()

	env := &envReader{}
	cfg := &Config{
		LLMBaseURL:   getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModelName: getEnv("LLM_MODEL", "Llama-3.1-8B-Instruct"),
		LLMAPIKey:    getEnv("LLM_API_KEY", "dummy-key"),

		LLMTemperature: env.float32("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:   env.int("LLM_MAX_TOKENS", 0),

		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		EmbeddingCacheSize: env.int("EMBEDDING_CACHE_SIZE", 512),
		EmbeddingCacheTTL:  env.duration("EMBEDDING_CACHE_TTL", 10*time.Minute),

		VectorBackend:    strings.ToLower(getEnv("VECTOR_BACKEND", BackendQdrant)),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "maturamente"),
		VectorSize:       env.int("VECTOR_SIZE", 0),
		PGVectorDSN:      getEnv("PGVECTOR_DSN", ""),

		DBPath:  getEnv("DB_PATH", "./data/maturamente.db"),
		APIPort: getEnv("API_PORT", "9000"),

		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),

		RetrievalTotalChunks:         env.int("RETRIEVAL_TOTAL_CHUNKS", 8),
		RetrievalMinChunksPerDoc:     env.int("RETRIEVAL_MIN_CHUNKS_PER_DOC", 1),
		RetrievalMaxChunksPerDoc:     env.int("RETRIEVAL_MAX_CHUNKS_PER_DOC", 0),
		RetrievalEnforceDistribution: env.bool("RETRIEVAL_ENFORCE_DISTRIBUTION", true),
		RetrievalMaxParallel:         env.int("RETRIEVAL_MAX_PARALLEL", 4),
		RetrievalUnfilteredFallback:  env.bool("RETRIEVAL_UNFILTERED_FALLBACK", true),

		ChatHistoryLimit: env.int("CHAT_HISTORY_LIMIT", 10),
	}
	cfg.EmbeddingAPIKey = getEnv("EMBEDDING_API_KEY", cfg.LLMAPIKey)

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		env.errs = append(env.errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	if err := errors.Join(env.errs...); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	// VECTOR_SIZE must match the embedding model output. Changing it requires recreating the collection.
	if c.VectorSize <= 0 {
		return fmt.Errorf("VECTOR_SIZE is required and must be greater than 0")
	}

	switch c.VectorBackend {
	case BackendQdrant:
		if c.QdrantCollection == "" {
			return fmt.Errorf("QDRANT_COLLECTION must not be empty")
		}
	case BackendPGVector:
		if c.PGVectorDSN == "" {
			return fmt.Errorf("PGVECTOR_DSN is required when VECTOR_BACKEND is %s", BackendPGVector)
		}
	default:
		return fmt.Errorf("VECTOR_BACKEND must be %q or %q, got %q", BackendQdrant, BackendPGVector, c.VectorBackend)
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.RetrievalTotalChunks <= 0 {
		return fmt.Errorf("RETRIEVAL_TOTAL_CHUNKS must be greater than 0")
	}
	if c.RetrievalMinChunksPerDoc <= 0 {
		return fmt.Errorf("RETRIEVAL_MIN_CHUNKS_PER_DOC must be greater than 0")
	}
	if c.RetrievalMaxChunksPerDoc < 0 {
		return fmt.Errorf("RETRIEVAL_MAX_CHUNKS_PER_DOC must not be negative")
	}
	if c.RetrievalMaxParallel <= 0 {
		return fmt.Errorf("RETRIEVAL_MAX_PARALLEL must be greater than 0")
	}
	if c.ChatHistoryLimit < 0 {
		return fmt.Errorf("CHAT_HISTORY_LIMIT must not be negative")
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2")
	}
	if c.LLMMaxTokens < 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must not be negative")
	}
	if c.EmbeddingCacheSize < 0 {
		return fmt.Errorf("EMBEDDING_CACHE_SIZE must not be negative")
	}
	return nil
}

// loadDotEnv loads the nearest .env file, searching up to five directories up.
func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envReader parses typed variables and collects every parse error.
type envReader struct {
	errs []error
}

func (r *envReader) int(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s must be a valid integer: %w", key, err))
		return defaultValue
	}
	return v
}

func (r *envReader) bool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s must be a boolean: %w", key, err))
		return defaultValue
	}
	return v
}

func (r *envReader) float32(key string, defaultValue float32) float32 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s must be a number: %w", key, err))
		return defaultValue
	}
	return float32(v)
}

func (r *envReader) duration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s must be a duration: %w", key, err))
		return defaultValue
	}
	return v
}
