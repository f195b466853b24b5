package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func embeddingsServer(t *testing.T, data []EmbeddingData, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("expected /v1/embeddings, got %s", r.URL.Path)
		}
		if status != http.StatusOK {
			http.Error(w, "upstream failure", status)
			return
		}
		_ = json.NewEncoder(w).Encode(EmbeddingsResponse{Data: data})
	}))
}

func TestEmbeddingsClient_EmbedTexts(t *testing.T) {
	tests := []struct {
		name      string
		texts     []string
		data      []EmbeddingData
		status    int
		wantErr   bool
		wantFirst []float32
	}{
		{
			name:      "converts to float32",
			texts:     []string{"derivata"},
			data:      []EmbeddingData{{Embedding: []float64{1.5, 2.5, 3.5}}},
			status:    http.StatusOK,
			wantFirst: []float32{1.5, 2.5, 3.5},
		},
		{
			name:  "reorders by index",
			texts: []string{"uno", "due"},
			data: []EmbeddingData{
				{Index: 1, Embedding: []float64{2, 2, 2}},
				{Index: 0, Embedding: []float64{1, 1, 1}},
			},
			status:    http.StatusOK,
			wantFirst: []float32{1, 1, 1},
		},
		{
			name:    "empty input",
			texts:   []string{},
			status:  http.StatusOK,
			wantErr: true,
		},
		{
			name:    "wrong embedding count",
			texts:   []string{"uno", "due"},
			data:    []EmbeddingData{{Embedding: []float64{1, 1, 1}}},
			status:  http.StatusOK,
			wantErr: true,
		},
		{
			name:    "wrong vector size",
			texts:   []string{"uno"},
			data:    []EmbeddingData{{Embedding: []float64{1, 1}}},
			status:  http.StatusOK,
			wantErr: true,
		},
		{
			name:    "server error",
			texts:   []string{"uno"},
			status:  http.StatusInternalServerError,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := embeddingsServer(t, tt.data, tt.status)
			defer server.Close()

			client := NewEmbeddingsClient(server.URL, "test-key", "text-embedding-3-small", 3)
			got, err := client.EmbedTexts(context.Background(), tt.texts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("EmbedTexts() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if len(got) != len(tt.texts) {
				t.Fatalf("EmbedTexts() returned %d embeddings, want %d", len(got), len(tt.texts))
			}
			for i, v := range tt.wantFirst {
				if got[0][i] != v {
					t.Errorf("EmbedTexts()[0][%d] = %v, want %v", i, got[0][i], v)
				}
			}
		})
	}
}

func TestEmbeddingsClient_ModelName(t *testing.T) {
	client := NewEmbeddingsClient("http://localhost:8080/", "k", "text-embedding-3-small", 1536)
	if client.ModelName() != "text-embedding-3-small" {
		t.Errorf("ModelName() = %v, want text-embedding-3-small", client.ModelName())
	}
	if client.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %v, want http://localhost:8080", client.BaseURL)
	}
}
