package retrieval

import (
	"context"
	"fmt"

	"maturamente-ai/internal/vectorstore"
)

// StoreSearcher implements Searcher by embedding the query and searching a vector store collection.
type StoreSearcher struct {
	embedder   Embedder
	store      vectorstore.VectorStore
	collection string
}

// NewStoreSearcher creates a searcher over collection.
func NewStoreSearcher(embedder Embedder, store vectorstore.VectorStore, collection string) *StoreSearcher {
	return &StoreSearcher{
		embedder:   embedder,
		store:      store,
		collection: collection,
	}
}

// SimilaritySearch embeds query and returns up to k chunks matching filter.
// The payload "text" field becomes the chunk content; all other fields become metadata.
func (s *StoreSearcher) SimilaritySearch(ctx context.Context, query string, k int, filter *vectorstore.Filter) ([]Chunk, error) {
	vectors, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}

	results, err := s.store.Search(ctx, s.collection, vectors[0], k, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", s.collection, err)
	}

	chunks := make([]Chunk, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, toChunk(r))
	}
	return chunks, nil
}

func toChunk(r vectorstore.SearchResult) Chunk {
	meta := make(Metadata, len(r.Meta))
	var content string
	for k, v := range r.Meta {
		if k == ContentKey {
			content, _ = v.(string)
			continue
		}
		meta[k] = v
	}
	score := float64(r.Score)
	return Chunk{
		Content:  content,
		Metadata: meta,
		Score:    &score,
	}
}
