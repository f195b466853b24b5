package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"maturamente-ai/internal/contextutil"
	"maturamente-ai/internal/service"
)

// ChatHandler handles HTTP requests for chat.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// ChatRequest represents the HTTP request payload for chat.
type ChatRequest struct {
	Message    string            `json:"message"`
	ChatID     string            `json:"chat_id,omitempty"`
	UserID     string            `json:"user_id,omitempty"`
	Documents  []string          `json:"selected_documents,omitempty"`
	IsUserFile []bool            `json:"is_user_file,omitempty"`
	Subject    string            `json:"subject,omitempty"`
	Retrieval  *RetrievalOptions `json:"retrieval,omitempty"`
}

func (r ChatRequest) toService() service.ChatRequest {
	return service.ChatRequest{
		Message:    r.Message,
		ChatID:     r.ChatID,
		UserID:     r.UserID,
		Documents:  r.Documents,
		IsUserFile: r.IsUserFile,
		Subject:    r.Subject,
		Retrieval:  r.Retrieval.toService(),
	}
}

// ChatResponse represents the HTTP response payload for chat.
type ChatResponse struct {
	Reply    string           `json:"reply"`
	ChatID   string           `json:"chat_id"`
	Sources  []SourceResponse `json:"sources"`
	Strategy string           `json:"strategy"`
	Fallback bool             `json:"fallback,omitempty"`
}

func newChatResponse(resp service.ChatResponse) ChatResponse {
	return ChatResponse{
		Reply:    resp.Reply,
		ChatID:   resp.ChatID,
		Sources:  toSourceResponses(resp.Sources),
		Strategy: string(resp.Strategy),
		Fallback: resp.Fallback,
	}
}

// ServeHTTP handles HTTP requests for chat.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if r.URL.Query().Get("stream") == "true" {
		h.handleStreamingChat(w, r, req)
		return
	}

	svcResp, err := h.chatService.ProcessChat(ctx, req.toService())
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to process chat request")
		return
	}

	writeJSON(w, http.StatusOK, newChatResponse(svcResp))
}

// handleStreamingChat streams the reply using Server-Sent Events.
// Errors raised before the first chunk are returned as regular JSON errors.
func (h *ChatHandler) handleStreamingChat(w http.ResponseWriter, r *http.Request, req ChatRequest) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	started := false
	start := func() {
		if started {
			return
		}
		started = true
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
	}

	svcResp, err := h.chatService.StreamChat(ctx, req.toService(), func(chunk string) error {
		start()
		if err := writeEvent(w, "", chunk); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		if !started {
			handleServiceError(ctx, w, err, "Failed to process chat request")
			return
		}
		logger.ErrorContext(ctx, "error streaming chat", "error", err)
		payload, _ := json.Marshal(ErrorResponse{Error: err.Error()})
		_ = writeEvent(w, "error", string(payload))
		flusher.Flush()
		return
	}

	start()
	meta := newChatResponse(svcResp)
	meta.Reply = ""
	if payload, err := json.Marshal(meta); err == nil {
		_ = writeEvent(w, "meta", string(payload))
	}
	_ = writeEvent(w, "", "[DONE]")
	flusher.Flush()
}

// writeEvent writes one SSE frame. Multi-line data is split into several data lines.
func writeEvent(w http.ResponseWriter, event, data string) error {
	var b strings.Builder
	if event != "" {
		fmt.Fprintf(&b, "event: %s\n", event)
	}
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	_, err := w.Write([]byte(b.String()))
	return err
}
