package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"maturamente-ai/internal/contextutil"
	"maturamente-ai/internal/indexer"
	"maturamente-ai/internal/storage"
)

// DocumentIndexer stores externally produced chunks for a catalog document.
type DocumentIndexer interface {
	IndexDocument(ctx context.Context, sourceID string, chunks []indexer.ChunkInput) (indexer.Result, error)
}

// IndexHandler handles chunk ingestion requests.
type IndexHandler struct {
	indexer DocumentIndexer
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(idx DocumentIndexer) *IndexHandler {
	return &IndexHandler{indexer: idx}
}

// IndexRequest carries the chunks of one registered document.
type IndexRequest struct {
	SourceID string               `json:"source_id"`
	Chunks   []indexer.ChunkInput `json:"chunks"`
}

// ServeHTTP handles POST /api/documents/index.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.SourceID = strings.TrimSpace(req.SourceID)
	if req.SourceID == "" {
		writeError(w, http.StatusBadRequest, "source_id is required")
		return
	}
	if len(req.Chunks) == 0 {
		writeError(w, http.StatusBadRequest, "chunks must not be empty")
		return
	}

	res, err := h.indexer.IndexDocument(ctx, req.SourceID, req.Chunks)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Document not registered")
		return
	case errors.Is(err, indexer.ErrNoChunks):
		writeError(w, http.StatusBadRequest, "chunks must contain text")
		return
	case err != nil:
		logger.ErrorContext(ctx, "failed to index document", "source_id", req.SourceID, "error", err)
		writeError(w, http.StatusBadGateway, "Failed to index document")
		return
	}

	writeJSON(w, http.StatusOK, res)
}
