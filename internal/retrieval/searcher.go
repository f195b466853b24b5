package retrieval

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_searcher.go -package=mocks maturamente-ai/internal/retrieval Searcher,Engine,Embedder

import (
	"context"

	"maturamente-ai/internal/vectorstore"
)

// Searcher runs a similarity search for a text query.
// A nil filter means no restriction. At most k chunks are returned.
type Searcher interface {
	SimilaritySearch(ctx context.Context, query string, k int, filter *vectorstore.Filter) ([]Chunk, error)
}

// Embedder turns texts into vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
