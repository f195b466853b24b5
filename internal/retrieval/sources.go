package retrieval

// NoteSourceSuffix is appended to note ids to form their stored source name.
const NoteSourceSuffix = ".pdf"

// ResolveSources maps selected document ids to the source names stored in chunk metadata.
// Notes are stored as "<id>.pdf"; uploaded files keep their id. A missing isUserFile
// entry counts as a note. The output is parallel to selected.
func ResolveSources(selected []string, isUserFile []bool) []string {
	resolved := make([]string, len(selected))
	for i, id := range selected {
		if i < len(isUserFile) && isUserFile[i] {
			resolved[i] = id
			continue
		}
		resolved[i] = id + NoteSourceSuffix
	}
	return resolved
}

// uniqueSources drops repeated sources, keeping first occurrences in order.
func uniqueSources(sources []string) []string {
	seen := make(map[string]struct{}, len(sources))
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
