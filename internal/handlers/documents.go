package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"maturamente-ai/internal/contextutil"
	"maturamente-ai/internal/storage"
)

// DocumentsHandler lists and registers selectable documents.
type DocumentsHandler struct {
	documents storage.DocumentStore
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(documents storage.DocumentStore) *DocumentsHandler {
	return &DocumentsHandler{documents: documents}
}

// DocumentRequest registers a note or an uploaded file.
type DocumentRequest struct {
	SourceID string `json:"source_id"`
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	Subject  string `json:"subject,omitempty"`
	OwnerID  string `json:"owner_id,omitempty"`
}

// DocumentResponse is a catalog entry.
type DocumentResponse struct {
	ID        string `json:"id"`
	SourceID  string `json:"source_id"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Subject   string `json:"subject,omitempty"`
	OwnerID   string `json:"owner_id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// DocumentListResponse wraps a catalog listing.
type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

func toDocumentResponse(d storage.DocumentRecord) DocumentResponse {
	resp := DocumentResponse{
		ID:       d.ID,
		SourceID: d.SourceID,
		Kind:     string(d.Kind),
		Title:    d.Title,
		Subject:  d.Subject,
		OwnerID:  d.OwnerID,
	}
	if !d.CreatedAt.IsZero() {
		resp.CreatedAt = d.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// List handles GET /api/documents. The optional subject query parameter filters the listing.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	docs, err := h.documents.List(ctx, strings.TrimSpace(r.URL.Query().Get("subject")))
	if err != nil {
		logger.ErrorContext(ctx, "failed to list documents", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	resp := DocumentListResponse{Documents: make([]DocumentResponse, 0, len(docs))}
	for _, d := range docs {
		resp.Documents = append(resp.Documents, toDocumentResponse(d))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /api/documents.
func (h *DocumentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc := storage.DocumentRecord{
		SourceID: strings.TrimSpace(req.SourceID),
		Kind:     storage.DocumentKind(req.Kind),
		Title:    strings.TrimSpace(req.Title),
		Subject:  strings.TrimSpace(req.Subject),
		OwnerID:  req.OwnerID,
	}
	if doc.SourceID == "" {
		writeError(w, http.StatusBadRequest, "source_id is required")
		return
	}
	if !doc.Kind.Valid() {
		writeError(w, http.StatusBadRequest, "kind must be \"note\" or \"file\"")
		return
	}
	if doc.Title == "" {
		doc.Title = doc.SourceID
	}

	if err := h.documents.Upsert(ctx, &doc); err != nil {
		logger.ErrorContext(ctx, "failed to store document", "source_id", doc.SourceID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store document")
		return
	}

	logger.InfoContext(ctx, "document registered", "source_id", doc.SourceID, "kind", doc.Kind)
	writeJSON(w, http.StatusCreated, toDocumentResponse(doc))
}
