package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maturamente-ai/internal/config"
	"maturamente-ai/internal/http"
	"maturamente-ai/internal/indexer"
	"maturamente-ai/internal/llm"
	"maturamente-ai/internal/retrieval"
	"maturamente-ai/internal/service"
	"maturamente-ai/internal/storage"
	"maturamente-ai/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	documentRepo := storage.NewDocumentRepo(db)
	chatRepo := storage.NewChatRepo(db)

	vectorStore, collection, closeStore, err := openVectorStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize vector store: %v", err)
	}
	defer closeStore()

	// Validate embedding client vector size (fail-fast)
	embeddings := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.VectorSize)
	testEmbeddings, err := embeddings.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.VectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d", cfg.VectorSize)
	}
	slog.Info("Embedding client validated", "model", embeddings.ModelName(), "vector_size", cfg.VectorSize)

	// Per-source searches embed the same query, so cache it.
	embedder := llm.WrapEmbedder(embeddings, cfg.EmbeddingCacheSize, cfg.EmbeddingCacheTTL)
	searcher := retrieval.NewStoreSearcher(embedder, vectorStore, collection)
	engine := retrieval.NewEngine(searcher, cfg.RetrievalMaxParallel)

	// Ingestion embeds without the query cache.
	pipeline := indexer.NewPipeline(documentRepo, embeddings, vectorStore, collection)

	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	chatService := service.NewChatService(llmClient, engine, searcher, documentRepo, chatRepo, service.Settings{
		Retrieval: retrieval.Options{
			TotalChunks:         cfg.RetrievalTotalChunks,
			MinChunksPerDoc:     cfg.RetrievalMinChunksPerDoc,
			MaxChunksPerDoc:     cfg.RetrievalMaxChunksPerDoc,
			EnforceDistribution: cfg.RetrievalEnforceDistribution,
		},
		UnfilteredFallback: cfg.RetrievalUnfilteredFallback,
		HistoryLimit:       cfg.ChatHistoryLimit,
		Chat: llm.ChatParams{
			MaxTokens:   cfg.LLMMaxTokens,
			Temperature: cfg.LLMTemperature,
		},
	})
	slog.Info("Chat service initialized",
		"total_chunks", cfg.RetrievalTotalChunks,
		"enforce_distribution", cfg.RetrievalEnforceDistribution,
		"max_parallel", cfg.RetrievalMaxParallel,
	)

	router := http.NewRouter(&http.Deps{
		ChatService: chatService,
		Documents:   documentRepo,
		Indexer:     pipeline,
		VectorStore: vectorStore,
		Collection:  collection,
	})

	srv := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting API server", "addr", srv.Addr)
		slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("API server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}

// openVectorStore connects the configured backend and prepares its collection or schema.
// It returns the store, the collection name to search and a close function.
func openVectorStore(ctx context.Context, cfg *config.Config) (vectorstore.VectorStore, string, func(), error) {
	switch cfg.VectorBackend {
	case config.BackendPGVector:
		store, err := vectorstore.NewPGVectorStore(cfg.PGVectorDSN, cfg.VectorSize)
		if err != nil {
			return nil, "", nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, "", nil, err
		}
		slog.Info("pgvector schema ready", "collection", cfg.QdrantCollection, "vector_size", cfg.VectorSize)
		return store, cfg.QdrantCollection, func() { _ = store.Close() }, nil
	default:
		store, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			return nil, "", nil, err
		}
		if err := store.EnsureCollection(ctx, cfg.QdrantCollection, cfg.VectorSize); err != nil {
			_ = store.Close()
			return nil, "", nil, err
		}
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.VectorSize)
		return store, cfg.QdrantCollection, func() { _ = store.Close() }, nil
	}
}
