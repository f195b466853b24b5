package config

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envVars = []string{
	"LLM_BASE_URL", "LLM_MODEL", "LLM_API_KEY", "LLM_TEMPERATURE", "LLM_MAX_TOKENS",
	"EMBEDDING_BASE_URL", "EMBEDDING_MODEL_NAME", "EMBEDDING_API_KEY",
	"EMBEDDING_CACHE_SIZE", "EMBEDDING_CACHE_TTL",
	"VECTOR_BACKEND", "QDRANT_URL", "QDRANT_COLLECTION", "VECTOR_SIZE", "PGVECTOR_DSN",
	"DB_PATH", "API_PORT", "LOG_LEVEL", "LOG_FORMAT",
	"RETRIEVAL_TOTAL_CHUNKS", "RETRIEVAL_MIN_CHUNKS_PER_DOC", "RETRIEVAL_MAX_CHUNKS_PER_DOC",
	"RETRIEVAL_ENFORCE_DISTRIBUTION", "RETRIEVAL_MAX_PARALLEL", "RETRIEVAL_UNFILTERED_FALLBACK",
	"CHAT_HISTORY_LIMIT",
}

// isolate clears the environment and runs from a temp dir without a .env file.
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DB_PATH", filepath.Join(dir, "data", "test.db"))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantErr     string
		checkConfig func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			env:  map[string]string{"VECTOR_SIZE": "768"},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.LLMBaseURL != "http://localhost:8080" || cfg.LLMModelName != "Llama-3.1-8B-Instruct" || cfg.LLMAPIKey != "dummy-key" {
					t.Errorf("LLM defaults = %+v", cfg)
				}
				if cfg.EmbeddingBaseURL != "http://localhost:8081" || cfg.EmbeddingAPIKey != "dummy-key" {
					t.Errorf("embedding defaults = %+v", cfg)
				}
				if cfg.EmbeddingCacheSize != 512 || cfg.EmbeddingCacheTTL != 10*time.Minute {
					t.Errorf("cache defaults = %d, %v", cfg.EmbeddingCacheSize, cfg.EmbeddingCacheTTL)
				}
				if cfg.VectorBackend != BackendQdrant || cfg.QdrantCollection != "maturamente" || cfg.VectorSize != 768 {
					t.Errorf("vector defaults = %+v", cfg)
				}
				if cfg.APIPort != "9000" || cfg.LogLevel != slog.LevelInfo || cfg.LogFormat != "text" {
					t.Errorf("server defaults = %+v", cfg)
				}
				if cfg.RetrievalTotalChunks != 8 || cfg.RetrievalMinChunksPerDoc != 1 || cfg.RetrievalMaxChunksPerDoc != 0 {
					t.Errorf("retrieval defaults = %+v", cfg)
				}
				if !cfg.RetrievalEnforceDistribution || !cfg.RetrievalUnfilteredFallback || cfg.RetrievalMaxParallel != 4 {
					t.Errorf("retrieval flags = %+v", cfg)
				}
				if cfg.ChatHistoryLimit != 10 {
					t.Errorf("ChatHistoryLimit = %d, want 10", cfg.ChatHistoryLimit)
				}
				if cfg.LLMTemperature != 0.7 || cfg.LLMMaxTokens != 0 {
					t.Errorf("LLM params = %v, %v; want 0.7, 0", cfg.LLMTemperature, cfg.LLMMaxTokens)
				}
			},
		},
		{
			name: "custom values",
			env: map[string]string{
				"VECTOR_SIZE":                    "1024",
				"LLM_BASE_URL":                   "http://custom:9090",
				"EMBEDDING_API_KEY":              "embed-key",
				"EMBEDDING_CACHE_TTL":            "30s",
				"VECTOR_BACKEND":                 "PGVector",
				"PGVECTOR_DSN":                   "postgres://localhost/maturamente",
				"LOG_LEVEL":                      "debug",
				"LOG_FORMAT":                     "JSON",
				"RETRIEVAL_TOTAL_CHUNKS":         "12",
				"RETRIEVAL_MAX_CHUNKS_PER_DOC":   "5",
				"RETRIEVAL_ENFORCE_DISTRIBUTION": "false",
				"RETRIEVAL_UNFILTERED_FALLBACK":  "0",
			},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.LLMBaseURL != "http://custom:9090" || cfg.EmbeddingAPIKey != "embed-key" || cfg.EmbeddingCacheTTL != 30*time.Second {
					t.Errorf("custom values = %+v", cfg)
				}
				if cfg.VectorBackend != BackendPGVector || cfg.PGVectorDSN == "" {
					t.Errorf("backend = %v", cfg.VectorBackend)
				}
				if cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "json" {
					t.Errorf("logging = %v %v", cfg.LogLevel, cfg.LogFormat)
				}
				if cfg.RetrievalTotalChunks != 12 || cfg.RetrievalMaxChunksPerDoc != 5 {
					t.Errorf("retrieval = %+v", cfg)
				}
				if cfg.RetrievalEnforceDistribution || cfg.RetrievalUnfilteredFallback {
					t.Errorf("retrieval flags should be disabled: %+v", cfg)
				}
			},
		},
		{name: "missing VECTOR_SIZE", env: map[string]string{}, wantErr: "VECTOR_SIZE"},
		{name: "invalid VECTOR_SIZE", env: map[string]string{"VECTOR_SIZE": "invalid"}, wantErr: "VECTOR_SIZE"},
		{name: "negative VECTOR_SIZE", env: map[string]string{"VECTOR_SIZE": "-1"}, wantErr: "VECTOR_SIZE"},
		{name: "unknown backend", env: map[string]string{"VECTOR_SIZE": "768", "VECTOR_BACKEND": "faiss"}, wantErr: "VECTOR_BACKEND"},
		{name: "pgvector without DSN", env: map[string]string{"VECTOR_SIZE": "768", "VECTOR_BACKEND": "pgvector"}, wantErr: "PGVECTOR_DSN"},
		{name: "invalid log level", env: map[string]string{"VECTOR_SIZE": "768", "LOG_LEVEL": "loud"}, wantErr: "LOG_LEVEL"},
		{name: "invalid log format", env: map[string]string{"VECTOR_SIZE": "768", "LOG_FORMAT": "xml"}, wantErr: "LOG_FORMAT"},
		{name: "zero total chunks", env: map[string]string{"VECTOR_SIZE": "768", "RETRIEVAL_TOTAL_CHUNKS": "0"}, wantErr: "RETRIEVAL_TOTAL_CHUNKS"},
		{name: "invalid bool", env: map[string]string{"VECTOR_SIZE": "768", "RETRIEVAL_ENFORCE_DISTRIBUTION": "maybe"}, wantErr: "RETRIEVAL_ENFORCE_DISTRIBUTION"},
		{name: "invalid duration", env: map[string]string{"VECTOR_SIZE": "768", "EMBEDDING_CACHE_TTL": "soon"}, wantErr: "EMBEDDING_CACHE_TTL"},
		{name: "invalid temperature", env: map[string]string{"VECTOR_SIZE": "768", "LLM_TEMPERATURE": "hot"}, wantErr: "LLM_TEMPERATURE"},
		{name: "temperature out of range", env: map[string]string{"VECTOR_SIZE": "768", "LLM_TEMPERATURE": "3"}, wantErr: "LLM_TEMPERATURE"},
		{name: "zero parallelism", env: map[string]string{"VECTOR_SIZE": "768", "RETRIEVAL_MAX_PARALLEL": "0"}, wantErr: "RETRIEVAL_MAX_PARALLEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("Load() expected error containing %q, got nil", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("Load() error = %v, want it to mention %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			tt.checkConfig(t, cfg)
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("CONFIG_TEST_KEY", "value")
	t.Setenv("CONFIG_TEST_EMPTY", "")

	tests := []struct {
		key  string
		def  string
		want string
	}{
		{key: "CONFIG_TEST_KEY", def: "default", want: "value"},
		{key: "CONFIG_TEST_EMPTY", def: "default", want: "default"},
		{key: "CONFIG_TEST_UNSET", def: "default", want: "default"},
	}

	for _, tt := range tests {
		if got := getEnv(tt.key, tt.def); got != tt.want {
			t.Errorf("getEnv(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
