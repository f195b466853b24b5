package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type countingEmbedder struct {
	mu    sync.Mutex
	model string
	calls [][]string
	err   error
}

func (e *countingEmbedder) ModelName() string { return e.model }

func (e *countingEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, append([]string(nil), texts...))
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

func TestCachedEmbedder_EmbedTexts(t *testing.T) {
	next := &countingEmbedder{model: "m1"}
	cached := NewCachedEmbedder(next, 16, time.Minute)
	ctx := context.Background()

	first, err := cached.EmbedTexts(ctx, []string{"limite", "integrale"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	second, err := cached.EmbedTexts(ctx, []string{"integrale", "serie", "limite"})
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}

	if len(next.calls) != 2 {
		t.Fatalf("wrapped embedder called %d times, want 2", len(next.calls))
	}
	if got := next.calls[1]; len(got) != 1 || got[0] != "serie" {
		t.Errorf("second call embedded %v, want [serie]", got)
	}
	if first[0][0] != second[2][0] || first[1][0] != second[0][0] {
		t.Errorf("cached vectors differ: first=%v second=%v", first, second)
	}
	if second[1][0] != float32(len("serie")) {
		t.Errorf("EmbedTexts()[1] = %v, want fresh embedding of serie", second[1])
	}
	if cached.Len() != 3 {
		t.Errorf("Len() = %d, want 3", cached.Len())
	}
}

func TestCachedEmbedder_ReturnsCopies(t *testing.T) {
	next := &countingEmbedder{model: "m1"}
	cached := NewCachedEmbedder(next, 4, time.Minute)
	ctx := context.Background()

	v1, _ := cached.EmbedTexts(ctx, []string{"x"})
	v1[0][0] = 999

	v2, _ := cached.EmbedTexts(ctx, []string{"x"})
	if v2[0][0] == 999 {
		t.Error("cache returned a shared slice")
	}
}

func TestCachedEmbedder_KeyIncludesModel(t *testing.T) {
	if cacheKey("a", "text") == cacheKey("b", "text") {
		t.Error("cacheKey() ignores model")
	}
	if cacheKey("a", "text") != cacheKey("a", "text") {
		t.Error("cacheKey() not deterministic")
	}
}

func TestCachedEmbedder_ErrorNotCached(t *testing.T) {
	next := &countingEmbedder{model: "m1", err: errors.New("rate limited")}
	cached := NewCachedEmbedder(next, 4, time.Minute)

	if _, err := cached.EmbedTexts(context.Background(), []string{"x"}); err == nil {
		t.Fatal("EmbedTexts() expected error")
	}
	if cached.Len() != 0 {
		t.Errorf("Len() = %d, want 0", cached.Len())
	}
}

func TestWrapEmbedder(t *testing.T) {
	next := &countingEmbedder{model: "m1"}

	tests := []struct {
		name       string
		size       int
		ttl        time.Duration
		wantCached bool
	}{
		{"enabled", 8, time.Minute, true},
		{"zero size disables", 0, time.Minute, false},
		{"zero ttl disables", 8, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapEmbedder(next, tt.size, tt.ttl)
			_, isCached := got.(*CachedEmbedder)
			if isCached != tt.wantCached {
				t.Errorf("WrapEmbedder() cached = %v, want %v", isCached, tt.wantCached)
			}
			if got.ModelName() != "m1" {
				t.Errorf("ModelName() = %v, want m1", got.ModelName())
			}
		})
	}
}
