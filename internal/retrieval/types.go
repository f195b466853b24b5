package retrieval

import "maturamente-ai/internal/vectorstore"

// Metadata keys understood by the engine. Any other key is passed through untouched.
const (
	SourceKey  = vectorstore.SourceKey
	SubjectKey = "subject"
	// ContentKey is the payload field holding chunk text in the vector store.
	ContentKey = "text"
)

// Strategy names the path a balanced search took.
type Strategy string

const (
	StrategyNone           Strategy = "none"
	StrategySingleDocument Strategy = "single_document"
	StrategyDistributed    Strategy = "distributed"
	StrategyPostProcessed  Strategy = "post_processed"
)

// Metadata is the open key/value map attached to a chunk.
type Metadata map[string]any

// Source returns the document source identifier, or "" when missing.
func (m Metadata) Source() string {
	s, _ := m[SourceKey].(string)
	return s
}

// Subject returns the subject tag, or "" when missing.
func (m Metadata) Subject() string {
	s, _ := m[SubjectKey].(string)
	return s
}

// Chunk is a retrievable passage of a document.
type Chunk struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
	// Score is the similarity reported by the store; nil when absent. Higher is more similar.
	Score *float64 `json:"score,omitempty"`
}

// Source is shorthand for c.Metadata.Source().
func (c Chunk) Source() string {
	return c.Metadata.Source()
}

func (c Chunk) scoreOrZero() float64 {
	if c.Score == nil {
		return 0
	}
	return *c.Score
}

// Options controls how many chunks a balanced search returns and how they are spread.
type Options struct {
	TotalChunks     int `json:"total_chunks"`
	MinChunksPerDoc int `json:"min_chunks_per_doc,omitempty"`
	// MaxChunksPerDoc of 0 means ceil(TotalChunks/2).
	MaxChunksPerDoc     int  `json:"max_chunks_per_doc,omitempty"`
	EnforceDistribution bool `json:"enforce_distribution"`
}

// DefaultOptions returns options for total chunks with every other field at its default.
func DefaultOptions(total int) Options {
	return Options{
		TotalChunks:         total,
		MinChunksPerDoc:     1,
		MaxChunksPerDoc:     ceilHalf(total),
		EnforceDistribution: true,
	}
}

// withDefaults fills zero-valued per-document limits.
func (o Options) withDefaults() Options {
	if o.MinChunksPerDoc <= 0 {
		o.MinChunksPerDoc = 1
	}
	if o.MaxChunksPerDoc <= 0 {
		o.MaxChunksPerDoc = ceilHalf(o.TotalChunks)
	}
	return o
}

func ceilHalf(n int) int {
	return (n + 1) / 2
}

// Request is the input to a balanced search.
type Request struct {
	Query string
	// Sources are the selected document ids in selection order.
	Sources []string
	// IsUserFile is parallel to Sources. A missing entry counts as a note.
	IsUserFile    []bool
	Options       Options
	SubjectFilter string
}

// Result is the outcome of a balanced search.
type Result struct {
	Chunks []Chunk
	// Distribution maps each allowed source to the number of chunks attributed to it.
	Distribution   map[string]int
	TotalRetrieved int
	Strategy       Strategy
	// Failures holds searches that failed and were degraded to empty results.
	Failures []error
}

func emptyResult(strategy Strategy) Result {
	return Result{
		Chunks:       []Chunk{},
		Distribution: map[string]int{},
		Strategy:     strategy,
	}
}
