package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"maturamente-ai/internal/contextutil"
	"maturamente-ai/internal/retrieval"
	"maturamente-ai/internal/storage"
	"maturamente-ai/internal/vectorstore"
)

const (
	defaultBatchSize = 32

	chunkIndexKey = "chunk_index"
	titleKey      = "title"
)

// ErrNoChunks is returned when every submitted chunk is blank.
var ErrNoChunks = errors.New("no non-blank chunks to index")

// Pipeline embeds externally produced chunks of a catalog document and stores them in the vector store.
type Pipeline struct {
	documents   storage.DocumentStore
	embedder    retrieval.Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	batchSize   int
}

// NewPipeline creates a new indexing pipeline.
func NewPipeline(
	documents storage.DocumentStore,
	embedder retrieval.Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
) *Pipeline {
	return &Pipeline{
		documents:   documents,
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		batchSize:   defaultBatchSize,
	}
}

// IndexDocument replaces the indexed chunks of the catalog document sourceID.
// Unchanged chunk sets are skipped. Returns storage.ErrNotFound for unknown documents.
func (p *Pipeline) IndexDocument(ctx context.Context, sourceID string, chunks []ChunkInput) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	doc, err := p.documents.GetBySourceID(ctx, sourceID)
	if err != nil {
		return Result{}, err
	}

	source := storedSource(doc)
	res := Result{SourceID: doc.SourceID, Source: source}

	prepared := make([]preparedChunk, 0, len(chunks))
	for _, c := range chunks {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}
		extra := make(map[string]any, len(c.Metadata))
		for k, v := range c.Metadata {
			if !isReserved(k) {
				extra[k] = v
			}
		}
		prepared = append(prepared, preparedChunk{text: text, extra: extra})
	}
	if len(prepared) == 0 {
		return Result{}, ErrNoChunks
	}

	hash, err := contentHash(doc, prepared)
	if err != nil {
		return Result{}, err
	}
	prev := doc.IndexState
	if hash == prev.ContentHash && len(prepared) == prev.ChunkCount && source == prev.Source {
		logger.DebugContext(ctx, "skipping unchanged document", "source", source, "hash", hash)
		res.Chunks = len(prepared)
		res.Skipped = true
		return res, nil
	}

	texts := make([]string, len(prepared))
	for i, c := range prepared {
		texts[i] = c.text
	}
	embeddings, err := p.embed(ctx, texts)
	if err != nil {
		return Result{}, err
	}

	points := make([]vectorstore.Point, len(prepared))
	for i, c := range prepared {
		meta := make(map[string]any, len(c.extra)+5)
		for k, v := range c.extra {
			meta[k] = v
		}
		meta[retrieval.ContentKey] = c.text
		meta[retrieval.SourceKey] = source
		meta[chunkIndexKey] = i
		if doc.Title != "" {
			meta[titleKey] = doc.Title
		}
		if doc.Subject != "" {
			meta[retrieval.SubjectKey] = doc.Subject
		}

		points[i] = vectorstore.Point{
			ID:   pointID(source, i),
			Vec:  embeddings[i],
			Meta: meta,
		}
	}

	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		return Result{}, fmt.Errorf("failed to upsert vectors: %w", err)
	}
	res.Chunks = len(points)

	if stale := staleIDs(prev, source, len(points)); len(stale) > 0 {
		if err := p.vectorStore.Delete(ctx, p.collection, stale); err != nil {
			logger.WarnContext(ctx, "failed to delete stale chunks", "source", source, "count", len(stale), "error", err)
		} else {
			res.Removed = len(stale)
		}
	}

	state := storage.IndexState{Source: source, ContentHash: hash, ChunkCount: len(points)}
	if err := p.documents.SetIndexState(ctx, doc.SourceID, state); err != nil {
		return Result{}, fmt.Errorf("failed to record index state: %w", err)
	}

	logger.InfoContext(ctx, "indexed document", "source", source, "chunks", res.Chunks, "removed", res.Removed)
	return res, nil
}

// embed calls the embedder in batches.
func (p *Pipeline) embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += p.batchSize {
		end := min(start+p.batchSize, len(texts))
		vectors, err := p.embedder.EmbedTexts(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to generate embeddings: %w", err)
		}
		if len(vectors) != end-start {
			return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", end-start, len(vectors))
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// storedSource is the source name the retrieval engine resolves the document to.
func storedSource(doc *storage.DocumentRecord) string {
	return retrieval.ResolveSources([]string{doc.SourceID}, []bool{doc.Kind == storage.KindFile})[0]
}

type preparedChunk struct {
	text  string
	extra map[string]any
}

// contentHash covers the chunk texts, the caller metadata and the payload fields derived from the catalog.
func contentHash(doc *storage.DocumentRecord, chunks []preparedChunk) (string, error) {
	h := sha256.New()
	for _, part := range []string{string(doc.Kind), doc.Title, doc.Subject} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	for i, c := range chunks {
		// Map keys are marshaled in sorted order.
		meta, err := json.Marshal(c.extra)
		if err != nil {
			return "", fmt.Errorf("failed to encode metadata of chunk %d: %w", i, err)
		}
		for _, part := range [][]byte{[]byte(c.text), meta} {
			h.Write([]byte(strconv.Itoa(len(part))))
			h.Write([]byte{0})
			h.Write(part)
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// staleIDs lists previously indexed points that the new run does not overwrite.
// Point ids are positional, so under an unchanged source only the tail of a longer
// previous run is stale. After a source rename every previous point is.
func staleIDs(prev storage.IndexState, source string, count int) []string {
	from := count
	if prev.Source == "" {
		prev.Source = source
	}
	if prev.Source != source {
		from = 0
	}
	var ids []string
	for i := from; i < prev.ChunkCount; i++ {
		ids = append(ids, pointID(prev.Source, i))
	}
	return ids
}

// pointID is stable for a source and position so re-indexing overwrites in place.
func pointID(source string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(source+"#"+strconv.Itoa(index))).String()
}

func isReserved(key string) bool {
	switch key {
	case retrieval.ContentKey, retrieval.SourceKey, retrieval.SubjectKey, chunkIndexKey, titleKey:
		return true
	}
	return false
}
