package retrieval

import "strings"

// FilterChunks keeps chunks that match subject and whose source is in allowed.
// A blank subject or a nil allowed list disables that check. Chunks with blank
// content are always dropped. Order is preserved.
func FilterChunks(chunks []Chunk, subject string, allowed []string) []Chunk {
	subject = strings.TrimSpace(subject)

	var allow map[string]struct{}
	if allowed != nil {
		allow = make(map[string]struct{}, len(allowed))
		for _, s := range allowed {
			allow[s] = struct{}{}
		}
	}

	out := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) == "" {
			continue
		}
		if subject != "" && !strings.EqualFold(c.Metadata.Subject(), subject) {
			continue
		}
		if allow != nil {
			if _, ok := allow[c.Source()]; !ok {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
