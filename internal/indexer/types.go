package indexer

// ChunkInput is one passage produced by the external document processing step.
type ChunkInput struct {
	Text string `json:"text"`
	// Metadata is copied to the vector payload. Reserved keys (text, source, subject, chunk_index, title) are ignored.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Result summarizes an indexing run for one document.
type Result struct {
	SourceID string `json:"source_id"`
	// Source is the name chunks are stored under in the vector index.
	Source  string `json:"source"`
	Chunks  int    `json:"chunks"`
	Removed int    `json:"removed"`
	Skipped bool   `json:"skipped"`
}
