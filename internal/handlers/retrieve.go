package handlers

import (
	"encoding/json"
	"net/http"

	"maturamente-ai/internal/contextutil"
	"maturamente-ai/internal/service"
)

// RetrieveHandler exposes the balanced retrieval result without generating an answer.
type RetrieveHandler struct {
	chatService service.ChatService
}

// NewRetrieveHandler creates a new RetrieveHandler.
func NewRetrieveHandler(chatService service.ChatService) *RetrieveHandler {
	return &RetrieveHandler{chatService: chatService}
}

// RetrieveRequest is the HTTP request payload for retrieval.
type RetrieveRequest struct {
	Query      string            `json:"query"`
	Documents  []string          `json:"selected_documents,omitempty"`
	IsUserFile []bool            `json:"is_user_file,omitempty"`
	Subject    string            `json:"subject,omitempty"`
	Retrieval  *RetrievalOptions `json:"retrieval,omitempty"`
}

// RetrieveResponse is the HTTP response payload for retrieval.
type RetrieveResponse struct {
	Chunks         []ChunkResponse `json:"chunks"`
	Distribution   map[string]int  `json:"distribution"`
	TotalRetrieved int             `json:"total_retrieved"`
	Strategy       string          `json:"strategy"`
	Fallback       bool            `json:"fallback,omitempty"`
	Failures       []string        `json:"failures,omitempty"`
}

// ServeHTTP handles POST /api/retrieve.
func (h *RetrieveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req RetrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.chatService.Retrieve(ctx, service.RetrieveRequest{
		Query:      req.Query,
		Documents:  req.Documents,
		IsUserFile: req.IsUserFile,
		Subject:    req.Subject,
		Retrieval:  req.Retrieval.toService(),
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to retrieve context")
		return
	}

	distribution := res.Distribution
	if distribution == nil {
		distribution = map[string]int{}
	}
	writeJSON(w, http.StatusOK, RetrieveResponse{
		Chunks:         toChunkResponses(res.Chunks),
		Distribution:   distribution,
		TotalRetrieved: res.TotalRetrieved,
		Strategy:       string(res.Strategy),
		Fallback:       res.Fallback,
		Failures:       res.Failures,
	})
}
