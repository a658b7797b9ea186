package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"

	"ragqa/internal/domain"
)

// Separators in order of preference: paragraph, line, word, character.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// RecursiveChunker splits document text into overlapping windows of up to
// chunkSize runes, breaking at the most natural boundary that fits.
type RecursiveChunker struct {
	chunkSize int
	overlap   int
	splitter  textsplitter.RecursiveCharacter
}

func NewRecursiveChunker(chunkSize, overlap int) (*RecursiveChunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", chunkSize, overlap)
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(overlap),
		textsplitter.WithSeparators(defaultSeparators),
		textsplitter.WithLenFunc(utf8.RuneCountInString),
	)

	return &RecursiveChunker{
		chunkSize: chunkSize,
		overlap:   overlap,
		splitter:  splitter,
	}, nil
}

func (c *RecursiveChunker) Chunk(text string, meta domain.SourceMetadata) ([]domain.Chunk, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, domain.ErrEmptyInput
	}
	if meta.Filename == "" {
		meta = domain.NewSourceMetadata(meta.SourcePath)
	}

	// Text that already fits is a single window.
	if utf8.RuneCountInString(trimmed) <= c.chunkSize {
		return []domain.Chunk{{Content: trimmed, Metadata: meta}}, nil
	}

	pieces, err := c.splitter.SplitText(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}

	chunks := make([]domain.Chunk, 0, len(pieces))
	for _, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{Content: piece, Metadata: meta})
	}

	if len(chunks) == 0 {
		return nil, domain.ErrEmptyInput
	}

	return chunks, nil
}
