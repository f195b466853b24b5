package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"maturamente-ai/internal/contextutil"
)

// Embedder turns texts into vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
}

// CachedEmbedder memoizes embeddings in an expiring LRU keyed by model and text.
// The per-source searches of one balanced query then embed the query once.
type CachedEmbedder struct {
	next  Embedder
	cache *expirable.LRU[string, []float32]
}

// NewCachedEmbedder wraps next with an LRU of size entries living for ttl.
// It returns nil when size or ttl is not positive; use WrapEmbedder to fall back to next.
func NewCachedEmbedder(next Embedder, size int, ttl time.Duration) *CachedEmbedder {
	if next == nil || size <= 0 || ttl <= 0 {
		return nil
	}
	return &CachedEmbedder{
		next:  next,
		cache: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

// WrapEmbedder returns a cached embedder, or next unchanged when caching is disabled.
func WrapEmbedder(next Embedder, size int, ttl time.Duration) Embedder {
	if c := NewCachedEmbedder(next, size, ttl); c != nil {
		return c
	}
	return next
}

// ModelName returns the wrapped embedder's model.
func (c *CachedEmbedder) ModelName() string {
	return c.next.ModelName()
}

// EmbedTexts serves cached vectors and embeds only the misses, in one call.
func (c *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	logger := contextutil.LoggerFromContext(ctx)

	result := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		keys[i] = cacheKey(c.next.ModelName(), text)
		if vec, ok := c.cache.Get(keys[i]); ok {
			result[i] = cloneVector(vec)
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		logger.DebugContext(ctx, "embedding cache hit", "count", len(texts))
		return result, nil
	}

	vectors, err := c.next.EmbedTexts(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missTexts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(missTexts), len(vectors))
	}

	for j, i := range missIdx {
		c.cache.Add(keys[i], cloneVector(vectors[j]))
		result[i] = vectors[j]
	}

	logger.DebugContext(ctx, "embedding cache lookup", "hits", len(texts)-len(missTexts), "misses", len(missTexts))
	return result, nil
}

// Len returns the number of cached vectors.
func (c *CachedEmbedder) Len() int {
	return c.cache.Len()
}

func cacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

func cloneVector(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
