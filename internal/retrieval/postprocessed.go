package retrieval

import (
	"context"

	"maturamente-ai/internal/contextutil"
	"maturamente-ai/internal/vectorstore"
)

// retrievalMultiplier is the over-fetch factor for the single broad search.
const retrievalMultiplier = 3

// postProcessed over-fetches once across all sources and rebalances round-robin.
func (e *balancedEngine) postProcessed(ctx context.Context, query string, sources []string, opts Options, subject string) Result {
	logger := contextutil.LoggerFromContext(ctx)

	res := emptyResult(StrategyPostProcessed)
	for _, s := range sources {
		res.Distribution[s] = 0
	}

	k := opts.TotalChunks * retrievalMultiplier
	chunks, err := e.searcher.SimilaritySearch(ctx, query, k, vectorstore.SourceFilter(sources...))
	if err != nil {
		logger.ErrorContext(ctx, "broad search failed", "sources", sources, "k", k, "error", err)
		res.Failures = append(res.Failures, &BroadSearchError{Sources: sources, Err: err})
		return res
	}

	groups := groupBySource(FilterChunks(chunks, subject, sources), sources)
	selected, counts := roundRobin(groups, opts.TotalChunks, opts.MaxChunksPerDoc)

	res.Chunks = selected
	for i, s := range sources {
		res.Distribution[s] = counts[i]
	}
	res.TotalRetrieved = len(selected)
	return res
}

// groupBySource buckets chunks per source, parallel to sources, keeping result order.
// Sources without chunks get an empty bucket.
func groupBySource(chunks []Chunk, sources []string) [][]Chunk {
	index := make(map[string]int, len(sources))
	for i, s := range sources {
		index[s] = i
	}

	groups := make([][]Chunk, len(sources))
	for i := range groups {
		groups[i] = []Chunk{}
	}
	for _, c := range chunks {
		if i, ok := index[c.Source()]; ok {
			groups[i] = append(groups[i], c)
		}
	}
	return groups
}

// roundRobin takes one chunk per group per pass using index cursors.
// A group is skipped once it reaches maxPerDoc or runs out of chunks.
// It stops at total or after a pass that selects nothing.
func roundRobin(groups [][]Chunk, total, maxPerDoc int) ([]Chunk, []int) {
	cursors := make([]int, len(groups))
	selected := make([]Chunk, 0, total)

	for len(selected) < total {
		added := 0
		for i, group := range groups {
			if len(selected) >= total {
				break
			}
			if cursors[i] >= maxPerDoc || cursors[i] >= len(group) {
				continue
			}
			selected = append(selected, group[cursors[i]])
			cursors[i]++
			added++
		}
		if added == 0 {
			break
		}
	}
	return selected, cursors
}
