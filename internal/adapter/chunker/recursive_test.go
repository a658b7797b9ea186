package chunker

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"ragqa/internal/domain"
)

func TestRecursiveChunkerBasic(t *testing.T) {
	chunker, err := NewRecursiveChunker(100, 20)
	if err != nil {
		t.Fatal(err)
	}

	var paragraphs []string
	for i := 0; i < 10; i++ {
		paragraphs = append(paragraphs, "The quick brown fox jumps over the lazy dog near the river bank.")
	}
	content := strings.Join(paragraphs, "\n\n")

	meta := domain.NewSourceMetadata("/docs/fox.txt")
	chunks, err := chunker.Chunk(content, meta)
	if err != nil {
		t.Fatal(err)
	}

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i, chunk := range chunks {
		if strings.TrimSpace(chunk.Content) == "" {
			t.Errorf("chunk %d has empty content", i)
		}
		if n := utf8.RuneCountInString(chunk.Content); n > 100 {
			t.Errorf("chunk %d has %d runes, want <= 100", i, n)
		}
		if chunk.Metadata.Filename != "fox.txt" {
			t.Errorf("chunk %d: expected filename fox.txt, got %q", i, chunk.Metadata.Filename)
		}
		if chunk.Metadata.SourcePath != "/docs/fox.txt" {
			t.Errorf("chunk %d: expected source path, got %q", i, chunk.Metadata.SourcePath)
		}
	}
}

func TestRecursiveChunkerCoversAllText(t *testing.T) {
	chunker, err := NewRecursiveChunker(30, 5)
	if err != nil {
		t.Fatal(err)
	}

	words := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel", "india", "juliet"}
	content := strings.Join(words, " ")

	chunks, err := chunker.Chunk(content, domain.NewSourceMetadata("nato.txt"))
	if err != nil {
		t.Fatal(err)
	}

	for _, word := range words {
		found := false
		for _, chunk := range chunks {
			if strings.Contains(chunk.Content, word) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("word %q not found in any chunk", word)
		}
	}
}

func TestRecursiveChunkerIdempotent(t *testing.T) {
	chunker, err := NewRecursiveChunker(80, 16)
	if err != nil {
		t.Fatal(err)
	}

	content := strings.Repeat("Retrieval augmented generation grounds answers in documents.\n", 12)
	meta := domain.NewSourceMetadata("rag.txt")

	chunks, err := chunker.Chunk(content, meta)
	if err != nil {
		t.Fatal(err)
	}

	for i, chunk := range chunks {
		again, err := chunker.Chunk(chunk.Content, meta)
		if err != nil {
			t.Fatalf("re-chunking chunk %d: %v", i, err)
		}
		if len(again) != 1 || again[0].Content != chunk.Content {
			t.Errorf("chunk %d split again into %d pieces", i, len(again))
		}
	}
}

func TestRecursiveChunkerSingleWindow(t *testing.T) {
	chunker, err := NewRecursiveChunker(1000, 200)
	if err != nil {
		t.Fatal(err)
	}

	chunks, err := chunker.Chunk("  Paris is the capital of France.\n", domain.NewSourceMetadata("geo.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "Paris is the capital of France." {
		t.Errorf("unexpected content %q", chunks[0].Content)
	}
}

func TestRecursiveChunkerEmptyContent(t *testing.T) {
	chunker, err := NewRecursiveChunker(50, 10)
	if err != nil {
		t.Fatal(err)
	}

	for _, in := range []string{"", "   ", "\n\n\t"} {
		_, err := chunker.Chunk(in, domain.NewSourceMetadata("empty.txt"))
		if !errors.Is(err, domain.ErrEmptyInput) {
			t.Errorf("Chunk(%q): expected ErrEmptyInput, got %v", in, err)
		}
	}
}

func TestRecursiveChunkerFillsFilename(t *testing.T) {
	chunker, err := NewRecursiveChunker(50, 10)
	if err != nil {
		t.Fatal(err)
	}

	chunks, err := chunker.Chunk("hello", domain.SourceMetadata{SourcePath: "/tmp/upload/notes.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if chunks[0].Metadata.Filename != "notes.txt" {
		t.Errorf("expected derived filename notes.txt, got %q", chunks[0].Metadata.Filename)
	}
}

func TestNewRecursiveChunkerValidation(t *testing.T) {
	tests := []struct {
		size, overlap int
		wantErr       bool
	}{
		{1000, 200, false},
		{10, 0, false},
		{0, 0, true},
		{-5, 0, true},
		{10, -1, true},
		{10, 10, true},
		{10, 20, true},
	}

	for _, tt := range tests {
		_, err := NewRecursiveChunker(tt.size, tt.overlap)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewRecursiveChunker(%d, %d) error = %v, wantErr %v", tt.size, tt.overlap, err, tt.wantErr)
		}
	}
}
