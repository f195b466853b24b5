package service

import (
	"context"
	"errors"

	"maturamente-ai/internal/contextutil"
	"maturamente-ai/internal/retrieval"
	"maturamente-ai/internal/storage"
)

type retrievalOutcome struct {
	result   retrieval.Result
	fallback bool
}

// retrieve runs the balanced search and, when it finds nothing, the unfiltered fallback.
func (s *chatService) retrieve(
	ctx context.Context,
	query string,
	documents []string,
	isUserFile []bool,
	subject string,
	overrides RetrievalOverrides,
) (retrievalOutcome, error) {
	logger := contextutil.LoggerFromContext(ctx)

	opts := overrides.apply(s.settings.Retrieval)
	res, err := s.engine.BalancedSearch(ctx, retrieval.Request{
		Query:         query,
		Sources:       documents,
		IsUserFile:    s.userFileFlags(ctx, documents, isUserFile),
		Options:       opts,
		SubjectFilter: subject,
	})
	if err != nil {
		if errors.Is(err, retrieval.ErrInvalidRequest) {
			return retrievalOutcome{}, &ValidationError{Field: "retrieval", Message: err.Error()}
		}
		return retrievalOutcome{}, WrapError(err, ErrExternalService, "failed to retrieve context")
	}

	out := retrievalOutcome{result: res}
	if len(res.Chunks) > 0 || res.Strategy == retrieval.StrategyNone || !s.settings.UnfilteredFallback {
		return out, nil
	}

	chunks, err := s.searcher.SimilaritySearch(ctx, query, opts.TotalChunks, nil)
	if err != nil {
		logger.WarnContext(ctx, "unfiltered fallback search failed", "error", err)
		out.result.Failures = append(out.result.Failures, err)
		return out, nil
	}

	chunks = retrieval.FilterChunks(chunks, subject, nil)
	if len(chunks) > opts.TotalChunks {
		chunks = chunks[:opts.TotalChunks]
	}
	out.result.Chunks = chunks
	out.result.Distribution = fallbackDistribution(res.Distribution, chunks)
	out.result.TotalRetrieved = len(chunks)
	out.fallback = len(chunks) > 0

	logger.InfoContext(ctx, "unfiltered fallback search completed", "returned", len(chunks))
	return out, nil
}

// fallbackDistribution counts the fallback chunks per source. Selected sources stay
// listed with zero so the counts still sum to the number of chunks.
func fallbackDistribution(selected map[string]int, chunks []retrieval.Chunk) map[string]int {
	dist := make(map[string]int, len(selected)+len(chunks))
	for source := range selected {
		dist[source] = 0
	}
	for _, c := range chunks {
		dist[c.Source()]++
	}
	return dist
}

// userFileFlags returns given when set, otherwise derives the flags from the catalog.
// Unknown ids and catalog failures count as notes.
func (s *chatService) userFileFlags(ctx context.Context, documents []string, given []bool) []bool {
	if given != nil || len(documents) == 0 || s.documents == nil {
		return given
	}

	kinds, err := s.documents.KindsBySourceIDs(ctx, documents)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to look up document kinds, treating all as notes", "error", err)
		return nil
	}

	flags := make([]bool, len(documents))
	for i, id := range documents {
		flags[i] = kinds[id] == storage.KindFile
	}
	return flags
}
