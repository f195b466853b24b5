package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClient(t *testing.T) {
	client := NewClient("https://api.deepseek.com/", "test-key", "deepseek-chat")
	if client.BaseURL != "https://api.deepseek.com" {
		t.Errorf("NewClient() BaseURL = %v, want https://api.deepseek.com", client.BaseURL)
	}
	if client.Model != "deepseek-chat" {
		t.Errorf("NewClient() Model = %v, want deepseek-chat", client.Model)
	}
	if client.client == nil {
		t.Error("NewClient() client should not be nil")
	}
}

func TestClient_ChatWithMessages(t *testing.T) {
	tests := []struct {
		name       string
		params     ChatParams
		serverResp func(t *testing.T) http.HandlerFunc
		wantReply  string
		wantErr    bool
	}{
		{
			name:   "sends conversation and params",
			params: ChatParams{Model: "custom-model", MaxTokens: 100, Temperature: 0.3},
			serverResp: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					if r.URL.Path != "/v1/chat/completions" {
						t.Errorf("expected /v1/chat/completions, got %s", r.URL.Path)
					}
					if r.Header.Get("Authorization") != "Bearer test-key" {
						t.Errorf("Authorization = %q, want Bearer test-key", r.Header.Get("Authorization"))
					}

					var req ChatRequest
					if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
						t.Errorf("failed to decode request: %v", err)
						return
					}
					if req.Model != "custom-model" {
						t.Errorf("Model = %v, want custom-model", req.Model)
					}
					if len(req.Messages) != 2 {
						t.Errorf("expected 2 messages, got %d", len(req.Messages))
					}
					if req.MaxTokens != 100 {
						t.Errorf("MaxTokens = %v, want 100", req.MaxTokens)
					}
					if req.Temperature == nil || *req.Temperature != 0.3 {
						t.Errorf("Temperature = %v, want 0.3", req.Temperature)
					}

					_ = json.NewEncoder(w).Encode(ChatResponse{
						Choices: []ChatChoice{{Message: Message{Role: RoleAssistant, Content: "Ciao!"}}},
					})
				}
			},
			wantReply: "Ciao!",
		},
		{
			name:   "empty model uses client default",
			params: ChatParams{},
			serverResp: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					var req ChatRequest
					_ = json.NewDecoder(r.Body).Decode(&req)
					if req.Model != "deepseek-chat" {
						t.Errorf("Model = %v, want deepseek-chat", req.Model)
					}
					if req.Temperature != nil {
						t.Errorf("Temperature = %v, want omitted", *req.Temperature)
					}
					_ = json.NewEncoder(w).Encode(ChatResponse{
						Choices: []ChatChoice{{Message: Message{Content: "ok"}}},
					})
				}
			},
			wantReply: "ok",
		},
		{
			name: "no choices returned",
			serverResp: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					_ = json.NewEncoder(w).Encode(ChatResponse{Choices: []ChatChoice{}})
				}
			},
			wantErr: true,
		},
		{
			name: "server error",
			serverResp: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					http.Error(w, "insufficient balance", http.StatusPaymentRequired)
				}
			},
			wantErr: true,
		},
		{
			name: "invalid JSON",
			serverResp: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					_, _ = w.Write([]byte("not json"))
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.serverResp(t))
			defer server.Close()

			client := NewClient(server.URL, "test-key", "deepseek-chat")
			messages := []Message{
				{Role: RoleSystem, Content: "Sei un tutor"},
				{Role: RoleUser, Content: "Ciao"},
			}

			reply, err := client.ChatWithMessages(context.Background(), messages, tt.params)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ChatWithMessages() error = %v, wantErr %v", err, tt.wantErr)
			}
			if reply != tt.wantReply {
				t.Errorf("ChatWithMessages() reply = %v, want %v", reply, tt.wantReply)
			}
		})
	}
}

func TestClient_StreamChatWithMessages(t *testing.T) {
	tests := []struct {
		name       string
		lines      []string
		status     int
		wantChunks []string
		wantErr    bool
	}{
		{
			name: "successful streaming",
			lines: []string{
				`data: {"choices":[{"delta":{"content":"Ciao"}}]}`,
				`: keep-alive`,
				`data: {"choices":[{"delta":{"content":" "}}]}`,
				`data: not json`,
				`data:{"choices":[{"delta":{"content":"mondo"}}]}`,
				`data: {"choices":[{"delta":{},"finish_reason":"stop"}]}`,
				`data: {"choices":[{"delta":{"content":"ignored"}}]}`,
			},
			status:     http.StatusOK,
			wantChunks: []string{"Ciao", " ", "mondo"},
		},
		{
			name: "done marker ends stream",
			lines: []string{
				`data: {"choices":[{"delta":{"content":"a"}}]}`,
				`data: [DONE]`,
				`data: {"choices":[{"delta":{"content":"b"}}]}`,
			},
			status:     http.StatusOK,
			wantChunks: []string{"a"},
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Accept") != "text/event-stream" {
					t.Error("missing Accept header")
				}
				var req ChatRequest
				_ = json.NewDecoder(r.Body).Decode(&req)
				if !req.Stream {
					t.Error("expected stream=true")
				}

				w.WriteHeader(tt.status)
				for _, line := range tt.lines {
					_, _ = w.Write([]byte(line + "\n\n"))
				}
			}))
			defer server.Close()

			client := NewClient(server.URL, "test-key", "deepseek-chat")
			var got []string
			err := client.StreamChatWithMessages(context.Background(), []Message{{Role: RoleUser, Content: "Ciao"}}, ChatParams{}, func(chunk string) error {
				got = append(got, chunk)
				return nil
			})

			if (err != nil) != tt.wantErr {
				t.Fatalf("StreamChatWithMessages() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.wantChunks) {
				t.Fatalf("StreamChatWithMessages() received %v, want %v", got, tt.wantChunks)
			}
			for i := range got {
				if got[i] != tt.wantChunks[i] {
					t.Errorf("chunk[%d] = %q, want %q", i, got[i], tt.wantChunks[i])
				}
			}
		})
	}
}

func TestClient_StreamChatWithMessages_CallbackError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`data: {"choices":[{"delta":{"content":"a"}}]}` + "\n\n"))
	}))
	defer server.Close()

	stop := errors.New("client gone")
	client := NewClient(server.URL, "test-key", "deepseek-chat")
	err := client.StreamChatWithMessages(context.Background(), nil, ChatParams{}, func(string) error {
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("StreamChatWithMessages() error = %v, want %v", err, stop)
	}
}
