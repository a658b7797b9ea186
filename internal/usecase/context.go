package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"ragqa/internal/domain"
)

const (
	previewRunes  = 200
	unknownSource = "Unknown source"
)

// FormatContext renders retrieved chunks as numbered, source-labelled
// blocks separated by a blank line.
func FormatContext(results domain.RetrievalResult) string {
	if len(results) == 0 {
		return domain.NoContextMessage
	}

	parts := make([]string, 0, len(results))
	for i, r := range results {
		source := r.Chunk.Metadata.Filename
		if source == "" {
			source = unknownSource
		}
		parts = append(parts, fmt.Sprintf("Document %d (Source: %s):\n%s", i+1, source, strings.TrimSpace(r.Chunk.Content)))
	}
	return strings.Join(parts, "\n\n")
}

// Preview returns content unchanged when it has at most 200 runes,
// otherwise its first 200 runes followed by "...".
func Preview(content string) string {
	if utf8.RuneCountInString(content) <= previewRunes {
		return content
	}
	runes := []rune(content)
	return string(runes[:previewRunes]) + "..."
}

// Sources lists the provenance of each result in retrieval order.
func Sources(results domain.RetrievalResult) []domain.Source {
	sources := make([]domain.Source, 0, len(results))
	for _, r := range results {
		name := r.Chunk.Metadata.Filename
		if name == "" {
			name = "Unknown"
		}
		sources = append(sources, domain.Source{
			Filename:       name,
			ContentPreview: Preview(r.Chunk.Content),
		})
	}
	return sources
}
