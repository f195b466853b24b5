package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"maturamente-ai/internal/handlers"
	"maturamente-ai/internal/service"
	"maturamente-ai/internal/storage"
	"maturamente-ai/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService service.ChatService
	Documents   storage.DocumentStore
	Indexer     handlers.DocumentIndexer
	VectorStore vectorstore.VectorStore
	// Collection is the vector store collection probed by the health check.
	Collection string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	chatHandler := handlers.NewChatHandler(deps.ChatService)
	retrieveHandler := handlers.NewRetrieveHandler(deps.ChatService)
	documentsHandler := handlers.NewDocumentsHandler(deps.Documents)
	indexHandler := handlers.NewIndexHandler(deps.Indexer)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.Collection)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/chat", chatHandler)
		r.Method(http.MethodPost, "/retrieve", retrieveHandler)
		r.Get("/documents", documentsHandler.List)
		r.Post("/documents", documentsHandler.Create)
		r.Method(http.MethodPost, "/documents/index", indexHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	return r
}
