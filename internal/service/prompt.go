package service

import (
	"fmt"
	"strings"

	"maturamente-ai/internal/retrieval"
)

const tutorPersona = `Sei il tutor di MaturaMente e aiuti gli studenti a prepararsi all'esame di maturità.
Rispondi sempre in italiano, in modo chiaro e ordinato, adattando il livello allo studente.
Quando usi il contesto, cita le fonti con il numero del blocco tra parentesi quadre, ad esempio [2].
Se il contesto non basta per rispondere, dillo esplicitamente prima di usare le tue conoscenze generali.`

// buildSystemPrompt renders the persona followed by the numbered context blocks.
func buildSystemPrompt(chunks []retrieval.Chunk, subject string) string {
	var b strings.Builder
	b.WriteString(tutorPersona)

	if subject = strings.TrimSpace(subject); subject != "" {
		fmt.Fprintf(&b, "\n\nMateria: %s", subject)
	}

	if len(chunks) == 0 {
		return b.String()
	}

	b.WriteString("\n\nContesto dai documenti selezionati:")
	for i, c := range chunks {
		fmt.Fprintf(&b, "\n\n[%d] Fonte: %s\n%s", i+1, c.Source(), strings.TrimSpace(c.Content))
	}
	return b.String()
}
