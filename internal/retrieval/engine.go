package retrieval

import (
	"context"
	"fmt"
	"strings"

	"maturamente-ai/internal/contextutil"
	"maturamente-ai/internal/vectorstore"
)

const defaultMaxParallel = 4

// Engine selects a bounded, fairly distributed set of chunks across documents.
type Engine interface {
	// BalancedSearch never fails because of the store: failed searches degrade to
	// fewer chunks and are reported in Result.Failures. The error is reserved for
	// requests that cannot be run (ErrInvalidRequest).
	BalancedSearch(ctx context.Context, req Request) (Result, error)
}

type balancedEngine struct {
	searcher    Searcher
	maxParallel int
}

// NewEngine creates a balanced retrieval engine.
// maxParallel bounds concurrent per-source searches; values <= 0 use the default.
func NewEngine(searcher Searcher, maxParallel int) Engine {
	if maxParallel <= 0 {
		maxParallel = defaultMaxParallel
	}
	return &balancedEngine{
		searcher:    searcher,
		maxParallel: maxParallel,
	}
}

// BalancedSearch resolves the selected documents and dispatches on their count.
func (e *balancedEngine) BalancedSearch(ctx context.Context, req Request) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	sources := uniqueSources(ResolveSources(req.Sources, req.IsUserFile))
	if len(sources) == 0 {
		logger.DebugContext(ctx, "no sources selected, skipping retrieval")
		return emptyResult(StrategyNone), nil
	}

	if strings.TrimSpace(req.Query) == "" {
		return Result{}, fmt.Errorf("%w: query is empty", ErrInvalidRequest)
	}
	if req.Options.TotalChunks <= 0 {
		return Result{}, fmt.Errorf("%w: total chunks must be greater than 0, got %d", ErrInvalidRequest, req.Options.TotalChunks)
	}
	opts := req.Options.withDefaults()

	logger.InfoContext(ctx, "balanced search started",
		"sources", sources,
		"total_chunks", opts.TotalChunks,
		"min_per_doc", opts.MinChunksPerDoc,
		"max_per_doc", opts.MaxChunksPerDoc,
		"enforce_distribution", opts.EnforceDistribution,
		"subject", req.SubjectFilter,
	)

	var res Result
	switch {
	case len(sources) == 1:
		res = e.singleDocument(ctx, req.Query, sources[0], opts, req.SubjectFilter)
	case opts.EnforceDistribution:
		res = e.distributed(ctx, req.Query, sources, opts, req.SubjectFilter)
	default:
		res = e.postProcessed(ctx, req.Query, sources, opts, req.SubjectFilter)
	}

	logger.InfoContext(ctx, "balanced search completed",
		"strategy", res.Strategy,
		"returned", len(res.Chunks),
		"total_retrieved", res.TotalRetrieved,
		"distribution", res.Distribution,
		"failures", len(res.Failures),
	)
	return res, nil
}

// singleDocument spends the whole budget on one source.
func (e *balancedEngine) singleDocument(ctx context.Context, query, source string, opts Options, subject string) Result {
	logger := contextutil.LoggerFromContext(ctx)

	res := emptyResult(StrategySingleDocument)
	res.Distribution[source] = 0

	chunks, err := e.searcher.SimilaritySearch(ctx, query, opts.TotalChunks, vectorstore.SourceFilter(source))
	if err != nil {
		logger.ErrorContext(ctx, "single document search failed", "source", source, "error", err)
		res.Failures = append(res.Failures, &BroadSearchError{Sources: []string{source}, Err: err})
		return res
	}

	filtered := FilterChunks(chunks, subject, []string{source})
	if len(filtered) > opts.TotalChunks {
		filtered = filtered[:opts.TotalChunks]
	}

	res.Chunks = filtered
	res.Distribution[source] = len(filtered)
	res.TotalRetrieved = len(filtered)
	return res
}
