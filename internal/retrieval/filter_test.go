package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterChunks(t *testing.T) {
	chunks := []Chunk{
		{Content: "limiti", Metadata: Metadata{SourceKey: "analisi.pdf", SubjectKey: "Matematica"}},
		{Content: "derivate", Metadata: Metadata{SourceKey: "analisi.pdf", SubjectKey: "matematica"}},
		{Content: "Dante", Metadata: Metadata{SourceKey: "letteratura.pdf", SubjectKey: "Italiano"}},
		{Content: "senza materia", Metadata: Metadata{SourceKey: "appunti.pdf"}},
		{Content: "   ", Metadata: Metadata{SourceKey: "analisi.pdf", SubjectKey: "Matematica"}},
		{Content: "senza fonte", Metadata: Metadata{SubjectKey: "Matematica"}},
	}

	tests := []struct {
		name    string
		subject string
		allowed []string
		want    []string
	}{
		{
			name: "no filters drops only blank content",
			want: []string{"limiti", "derivate", "Dante", "senza materia", "senza fonte"},
		},
		{
			name:    "subject is case-insensitive",
			subject: "MATEMATICA",
			want:    []string{"limiti", "derivate", "senza fonte"},
		},
		{
			name:    "subject is trimmed",
			subject: "  italiano ",
			want:    []string{"Dante"},
		},
		{
			name:    "allow-list",
			allowed: []string{"analisi.pdf", "appunti.pdf"},
			want:    []string{"limiti", "derivate", "senza materia"},
		},
		{
			name:    "subject and allow-list combine",
			subject: "matematica",
			allowed: []string{"analisi.pdf", "letteratura.pdf"},
			want:    []string{"limiti", "derivate"},
		},
		{
			name:    "empty allow-list keeps nothing",
			allowed: []string{},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterChunks(chunks, tt.subject, tt.allowed)
			assert.Equal(t, tt.want, contents(got))
		})
	}
}

func TestResolveSources(t *testing.T) {
	tests := []struct {
		name       string
		selected   []string
		isUserFile []bool
		want       []string
	}{
		{
			name:       "notes get suffix",
			selected:   []string{"algebra-notes", "storia"},
			isUserFile: []bool{false, false},
			want:       []string{"algebra-notes.pdf", "storia.pdf"},
		},
		{
			name:       "uploaded files pass through",
			selected:   []string{"algebra-notes", "user-123/compito.docx"},
			isUserFile: []bool{false, true},
			want:       []string{"algebra-notes.pdf", "user-123/compito.docx"},
		},
		{
			name:     "missing flags count as notes",
			selected: []string{"a", "b"},
			want:     []string{"a.pdf", "b.pdf"},
		},
		{
			name:       "short flag slice",
			selected:   []string{"a", "b"},
			isUserFile: []bool{true},
			want:       []string{"a", "b.pdf"},
		},
		{
			name: "empty input",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveSources(tt.selected, tt.isUserFile)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, len(tt.selected))
		})
	}
}

func TestUniqueSources(t *testing.T) {
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, uniqueSources([]string{"a.pdf", "b.pdf", "a.pdf"}))
	assert.Equal(t, []string{}, uniqueSources(nil))
}

func TestMetadataAccessors(t *testing.T) {
	m := Metadata{SourceKey: "a.pdf", SubjectKey: "Fisica", "page": 3}
	assert.Equal(t, "a.pdf", m.Source())
	assert.Equal(t, "Fisica", m.Subject())

	m = Metadata{SourceKey: 42}
	assert.Equal(t, "", m.Source())
	assert.Equal(t, "", m.Subject())
}
