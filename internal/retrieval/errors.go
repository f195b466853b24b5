package retrieval

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is returned for requests the engine cannot run at all.
var ErrInvalidRequest = errors.New("invalid retrieval request")

// SourceSearchError records a failed per-source search. The source contributes zero chunks.
type SourceSearchError struct {
	Source string
	Err    error
}

func (e *SourceSearchError) Error() string {
	return fmt.Sprintf("search for source %q failed: %v", e.Source, e.Err)
}

func (e *SourceSearchError) Unwrap() error {
	return e.Err
}

// BroadSearchError records a failed search spanning every allowed source.
type BroadSearchError struct {
	Sources []string
	Err     error
}

func (e *BroadSearchError) Error() string {
	return fmt.Sprintf("search across %d sources failed: %v", len(e.Sources), e.Err)
}

func (e *BroadSearchError) Unwrap() error {
	return e.Err
}
