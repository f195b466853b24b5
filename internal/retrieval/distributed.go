package retrieval

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"maturamente-ai/internal/contextutil"
	"maturamente-ai/internal/vectorstore"
)

// distributed queries every source with its own quota, then merges by score.
func (e *balancedEngine) distributed(ctx context.Context, query string, sources []string, opts Options, subject string) Result {
	logger := contextutil.LoggerFromContext(ctx)

	quotas := computeQuotas(opts.TotalChunks, len(sources), opts.MinChunksPerDoc, opts.MaxChunksPerDoc)
	logger.DebugContext(ctx, "per-source quotas computed", "sources", sources, "quotas", quotas)

	perSource := make([][]Chunk, len(sources))
	failures := make([]error, len(sources))

	// Tasks never return an error so one failed source cannot cancel the others.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxParallel)
	for i, source := range sources {
		if quotas[i] <= 0 {
			continue
		}
		g.Go(func() error {
			chunks, err := e.searcher.SimilaritySearch(gctx, query, quotas[i], vectorstore.SourceFilter(source))
			if err != nil {
				logger.ErrorContext(gctx, "source search failed", "source", source, "k", quotas[i], "error", err)
				failures[i] = &SourceSearchError{Source: source, Err: err}
				return nil
			}
			filtered := FilterChunks(chunks, subject, []string{source})
			if len(filtered) > quotas[i] {
				filtered = filtered[:quotas[i]]
			}
			perSource[i] = filtered
			return nil
		})
	}
	_ = g.Wait()

	res := emptyResult(StrategyDistributed)
	combined := make([]Chunk, 0, opts.TotalChunks)
	for i, source := range sources {
		combined = append(combined, perSource[i]...)
		res.Distribution[source] = len(perSource[i])
		res.TotalRetrieved += len(perSource[i])
		if failures[i] != nil {
			res.Failures = append(res.Failures, failures[i])
		}
	}

	sort.SliceStable(combined, func(a, b int) bool {
		return combined[a].scoreOrZero() > combined[b].scoreOrZero()
	})
	if len(combined) > opts.TotalChunks {
		combined = combined[:opts.TotalChunks]
	}

	res.Chunks = combined
	return res
}
