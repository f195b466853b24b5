package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm_client.go -package=mocks maturamente-ai/internal/service LLMClient
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService maturamente-ai/internal/service ChatService

import (
	"context"
	"errors"
	"strings"

	"maturamente-ai/internal/contextutil"
	"maturamente-ai/internal/llm"
	"maturamente-ai/internal/retrieval"
	"maturamente-ai/internal/storage"
)

// LLMClient is an interface for interacting with an LLM API.
// This interface is defined from the service layer's perspective (consumer-first).
type LLMClient interface {
	// ChatWithMessages sends a conversation to the LLM and returns the reply.
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
	// StreamChatWithMessages sends a conversation to the LLM and streams the reply via callback.
	StreamChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams, callback func(chunk string) error) error
}

// RetrievalOverrides adjusts the configured retrieval options for one request.
// Zero values keep the configured value.
type RetrievalOverrides struct {
	TotalChunks         int
	MinChunksPerDoc     int
	MaxChunksPerDoc     int
	EnforceDistribution *bool
}

func (o RetrievalOverrides) apply(base retrieval.Options) retrieval.Options {
	if o.TotalChunks != 0 {
		base.TotalChunks = o.TotalChunks
	}
	if o.MinChunksPerDoc != 0 {
		base.MinChunksPerDoc = o.MinChunksPerDoc
	}
	if o.MaxChunksPerDoc != 0 {
		base.MaxChunksPerDoc = o.MaxChunksPerDoc
	}
	if o.EnforceDistribution != nil {
		base.EnforceDistribution = *o.EnforceDistribution
	}
	return base
}

// ChatRequest represents a chat request in the domain layer.
type ChatRequest struct {
	Message string
	// ChatID continues an existing conversation. Empty starts a new one.
	ChatID string
	UserID string
	// Documents are the selected note or file ids, in selection order.
	Documents []string
	// IsUserFile is parallel to Documents. Nil means look the kinds up in the catalog.
	IsUserFile []bool
	Subject    string
	Retrieval  RetrievalOverrides
}

// SourceUsage reports how many context chunks came from one source.
type SourceUsage struct {
	Source string
	Chunks int
}

// ChatResponse represents a chat response in the domain layer.
type ChatResponse struct {
	Reply    string
	ChatID   string
	Sources  []SourceUsage
	Strategy retrieval.Strategy
	// Fallback is true when the context came from the unfiltered search.
	Fallback bool
}

// RetrieveRequest asks for the retrieval context of a query without calling the LLM.
type RetrieveRequest struct {
	Query      string
	Documents  []string
	IsUserFile []bool
	Subject    string
	Retrieval  RetrievalOverrides
}

// RetrieveResponse is the balanced retrieval outcome.
type RetrieveResponse struct {
	Chunks         []retrieval.Chunk
	Distribution   map[string]int
	TotalRetrieved int
	Strategy       retrieval.Strategy
	Fallback       bool
	Failures       []string
}

// ChatService provides chat functionality.
type ChatService interface {
	// ProcessChat answers a message using the selected documents as context.
	ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	// StreamChat is ProcessChat with the reply streamed via callback.
	// The returned response carries the full reply.
	StreamChat(ctx context.Context, req ChatRequest, callback func(chunk string) error) (ChatResponse, error)
	// Retrieve runs only the retrieval step.
	Retrieve(ctx context.Context, req RetrieveRequest) (RetrieveResponse, error)
}

// Settings holds the tunables of the chat service.
type Settings struct {
	Retrieval retrieval.Options
	// UnfilteredFallback enables one unfiltered search when the balanced search finds nothing.
	UnfilteredFallback bool
	// HistoryLimit is the number of previous messages sent to the LLM.
	HistoryLimit int
	Chat         llm.ChatParams
}

// chatService implements ChatService.
type chatService struct {
	llmClient LLMClient
	engine    retrieval.Engine
	searcher  retrieval.Searcher
	documents storage.DocumentStore
	chats     storage.ChatStore
	settings  Settings
}

// NewChatService creates a new ChatService.
func NewChatService(
	llmClient LLMClient,
	engine retrieval.Engine,
	searcher retrieval.Searcher,
	documents storage.DocumentStore,
	chats storage.ChatStore,
	settings Settings,
) ChatService {
	return &chatService{
		llmClient: llmClient,
		engine:    engine,
		searcher:  searcher,
		documents: documents,
		chats:     chats,
		settings:  settings,
	}
}

// turn is a prepared exchange ready to be sent to the LLM.
type turn struct {
	chatID   string
	messages []llm.Message
	context  retrievalOutcome
}

// ProcessChat processes a chat request.
func (s *chatService) ProcessChat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	t, err := s.prepare(ctx, req)
	if err != nil {
		return ChatResponse{}, err
	}

	reply, err := s.llmClient.ChatWithMessages(ctx, t.messages, s.settings.Chat)
	if err != nil {
		logger.ErrorContext(ctx, "failed to get LLM response", "error", err)
		return ChatResponse{}, WrapError(err, ErrExternalService, "failed to get LLM response")
	}

	s.persist(ctx, t.chatID, req.Message, reply)

	logger.InfoContext(ctx, "chat request processed successfully",
		"chat_id", t.chatID,
		"message_length", len(req.Message),
		"reply_length", len(reply),
		"context_chunks", len(t.context.result.Chunks),
	)
	return t.response(reply), nil
}

// StreamChat processes a chat request and streams the response.
func (s *chatService) StreamChat(ctx context.Context, req ChatRequest, callback func(chunk string) error) (ChatResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	t, err := s.prepare(ctx, req)
	if err != nil {
		return ChatResponse{}, err
	}

	var reply strings.Builder
	err = s.llmClient.StreamChatWithMessages(ctx, t.messages, s.settings.Chat, func(chunk string) error {
		reply.WriteString(chunk)
		return callback(chunk)
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to stream LLM response", "error", err)
		return ChatResponse{}, WrapError(err, ErrExternalService, "failed to stream LLM response")
	}

	s.persist(ctx, t.chatID, req.Message, reply.String())

	logger.InfoContext(ctx, "streaming chat request processed successfully",
		"chat_id", t.chatID,
		"message_length", len(req.Message),
		"reply_length", reply.Len(),
	)
	return t.response(reply.String()), nil
}

// Retrieve runs the balanced retrieval for a query.
func (s *chatService) Retrieve(ctx context.Context, req RetrieveRequest) (RetrieveResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "empty query in retrieve request")
		return RetrieveResponse{}, &ValidationError{Field: "query", Message: "cannot be empty"}
	}

	out, err := s.retrieve(ctx, req.Query, req.Documents, req.IsUserFile, req.Subject, req.Retrieval)
	if err != nil {
		return RetrieveResponse{}, err
	}

	failures := make([]string, 0, len(out.result.Failures))
	for _, f := range out.result.Failures {
		failures = append(failures, f.Error())
	}
	return RetrieveResponse{
		Chunks:         out.result.Chunks,
		Distribution:   out.result.Distribution,
		TotalRetrieved: out.result.TotalRetrieved,
		Strategy:       out.result.Strategy,
		Fallback:       out.fallback,
		Failures:       failures,
	}, nil
}

// prepare validates the request, resolves the chat and builds the LLM messages.
func (s *chatService) prepare(ctx context.Context, req ChatRequest) (turn, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Message) == "" {
		logger.WarnContext(ctx, "empty message in chat request")
		return turn{}, &ValidationError{Field: "message", Message: "cannot be empty"}
	}

	out, err := s.retrieve(ctx, req.Message, req.Documents, req.IsUserFile, req.Subject, req.Retrieval)
	if err != nil {
		return turn{}, err
	}

	chatID, history, err := s.loadHistory(ctx, req.ChatID, req.UserID)
	if err != nil {
		return turn{}, err
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: buildSystemPrompt(out.result.Chunks, req.Subject),
	})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: req.Message})

	return turn{chatID: chatID, messages: messages, context: out}, nil
}

func (t turn) response(reply string) ChatResponse {
	return ChatResponse{
		Reply:    reply,
		ChatID:   t.chatID,
		Sources:  sourcesUsed(t.context.result.Chunks),
		Strategy: t.context.result.Strategy,
		Fallback: t.context.fallback,
	}
}

// loadHistory returns the chat to write to and its recent messages.
// A new chat is created when chatID is empty.
func (s *chatService) loadHistory(ctx context.Context, chatID, userID string) (string, []llm.Message, error) {
	if chatID == "" {
		chat, err := s.chats.CreateChat(ctx, userID)
		if err != nil {
			return "", nil, WrapError(err, ErrExternalService, "failed to create chat")
		}
		return chat.ID, nil, nil
	}

	if _, err := s.chats.GetChat(ctx, chatID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil, WrapError(err, ErrNotFound, "chat "+chatID)
		}
		return "", nil, WrapError(err, ErrExternalService, "failed to load chat")
	}

	records, err := s.chats.ListRecentMessages(ctx, chatID, s.settings.HistoryLimit)
	if err != nil {
		return "", nil, WrapError(err, ErrExternalService, "failed to load chat history")
	}
	history := make([]llm.Message, 0, len(records))
	for _, r := range records {
		history = append(history, llm.Message{Role: r.Role, Content: r.Content})
	}
	return chatID, history, nil
}

// persist stores the exchange. Failures are logged; the reply is still returned.
func (s *chatService) persist(ctx context.Context, chatID, message, reply string) {
	logger := contextutil.LoggerFromContext(ctx)

	for _, msg := range []storage.MessageRecord{
		{ChatID: chatID, Role: llm.RoleUser, Content: message},
		{ChatID: chatID, Role: llm.RoleAssistant, Content: reply},
	} {
		if err := s.chats.AppendMessage(ctx, &msg); err != nil {
			logger.ErrorContext(ctx, "failed to persist chat message", "chat_id", chatID, "role", msg.Role, "error", err)
			return
		}
	}
}

// sourcesUsed counts chunks per source in first-seen order.
func sourcesUsed(chunks []retrieval.Chunk) []SourceUsage {
	usage := []SourceUsage{}
	index := make(map[string]int)
	for _, c := range chunks {
		src := c.Source()
		i, ok := index[src]
		if !ok {
			i = len(usage)
			index[src] = i
			usage = append(usage, SourceUsage{Source: src})
		}
		usage[i].Chunks++
	}
	return usage
}
