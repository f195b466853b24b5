package handlers

import (
	"maturamente-ai/internal/retrieval"
	"maturamente-ai/internal/service"
)

// RetrievalOptions are the optional per-request retrieval settings.
// Omitted fields keep the server configuration.
type RetrievalOptions struct {
	TotalChunks         int   `json:"total_chunks,omitempty"`
	MinChunksPerDoc     int   `json:"min_chunks_per_doc,omitempty"`
	MaxChunksPerDoc     int   `json:"max_chunks_per_doc,omitempty"`
	EnforceDistribution *bool `json:"enforce_distribution,omitempty"`
}

func (o *RetrievalOptions) toService() service.RetrievalOverrides {
	if o == nil {
		return service.RetrievalOverrides{}
	}
	return service.RetrievalOverrides{
		TotalChunks:         o.TotalChunks,
		MinChunksPerDoc:     o.MinChunksPerDoc,
		MaxChunksPerDoc:     o.MaxChunksPerDoc,
		EnforceDistribution: o.EnforceDistribution,
	}
}

// SourceResponse reports how many chunks of a source were used as context.
type SourceResponse struct {
	Source string `json:"source"`
	Chunks int    `json:"chunks"`
}

func toSourceResponses(usage []service.SourceUsage) []SourceResponse {
	out := make([]SourceResponse, 0, len(usage))
	for _, u := range usage {
		out = append(out, SourceResponse{Source: u.Source, Chunks: u.Chunks})
	}
	return out
}

// ChunkResponse is a retrieved chunk.
type ChunkResponse struct {
	Content  string             `json:"content"`
	Source   string             `json:"source"`
	Score    *float64           `json:"score,omitempty"`
	Metadata retrieval.Metadata `json:"metadata"`
}

func toChunkResponses(chunks []retrieval.Chunk) []ChunkResponse {
	out := make([]ChunkResponse, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, ChunkResponse{
			Content:  c.Content,
			Source:   c.Source(),
			Score:    c.Score,
			Metadata: c.Metadata,
		})
	}
	return out
}
