package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks maturamente-ai/internal/vectorstore VectorStore

import "context"

// SourceKey is the payload field holding a chunk's document source.
const SourceKey = "source"

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// Filter restricts a search to points whose source is any of Sources.
type Filter struct {
	Sources []string
}

// SourceFilter returns a filter restricted to the given sources.
func SourceFilter(sources ...string) *Filter {
	return &Filter{Sources: sources}
}

// IsEmpty reports whether the filter places no restriction.
func (f *Filter) IsEmpty() bool {
	return f == nil || len(f.Sources) == 0
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs a similarity search. A nil filter means no restriction.
	Search(ctx context.Context, collection string, query []float32, k int, filter *Filter) ([]SearchResult, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error

	// CollectionExists checks if a collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}
