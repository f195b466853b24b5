package storage

import "time"

// DocumentKind tells how a document is stored in the vector index.
type DocumentKind string

const (
	// KindNote is a curated note; its chunks are stored under "<source_id>.pdf".
	KindNote DocumentKind = "note"
	// KindFile is a user upload; its chunks are stored under the source id itself.
	KindFile DocumentKind = "file"
)

// Valid reports whether k is a known kind.
func (k DocumentKind) Valid() bool {
	return k == KindNote || k == KindFile
}

// DocumentRecord is a selectable document in the catalog.
type DocumentRecord struct {
	ID         string // UUID
	SourceID   string // Identifier the client selects by
	Kind       DocumentKind
	Title      string
	Subject    string
	OwnerID    string // Empty for shared notes
	IndexState IndexState
	CreatedAt  time.Time
}

// IndexState records what was last written to the vector index for a document.
type IndexState struct {
	// Source is the name the chunks were stored under. Empty when never indexed.
	Source      string
	ContentHash string
	ChunkCount  int
}

// ChatRecord is a conversation.
type ChatRecord struct {
	ID        string // UUID
	UserID    string
	CreatedAt time.Time
}

// MessageRecord is one turn of a conversation.
type MessageRecord struct {
	ID        string // UUID
	ChatID    string
	Role      string
	Content   string
	CreatedAt time.Time
}
