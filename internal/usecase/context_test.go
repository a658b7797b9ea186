package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ragqa/internal/domain"
)

func scored(content, filename string) domain.ScoredChunk {
	return domain.ScoredChunk{Chunk: domain.Chunk{
		Content:  content,
		Metadata: domain.SourceMetadata{Filename: filename},
	}}
}

func TestFormatContext_Empty(t *testing.T) {
	assert.Equal(t, "No relevant context found.", FormatContext(nil))
	assert.Equal(t, "No relevant context found.", FormatContext(domain.RetrievalResult{}))
}

func TestFormatContext_Blocks(t *testing.T) {
	got := FormatContext(domain.RetrievalResult{
		scored("  first body \n", "a.txt"),
		scored("second body", ""),
	})

	want := "Document 1 (Source: a.txt):\nfirst body\n\n" +
		"Document 2 (Source: Unknown source):\nsecond body"
	assert.Equal(t, want, got)
}

func TestFormatContext_NoTruncation(t *testing.T) {
	long := strings.Repeat("x", 5000)
	got := FormatContext(domain.RetrievalResult{scored(long, "big.txt")})
	assert.Contains(t, got, long)
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"short", "hello", "hello"},
		{"exactly 200", strings.Repeat("a", 200), strings.Repeat("a", 200)},
		{"201", strings.Repeat("a", 201), strings.Repeat("a", 200) + "..."},
		{"multibyte", strings.Repeat("é", 250), strings.Repeat("é", 200) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preview(tt.content))
		})
	}
}

func TestSources_Order(t *testing.T) {
	sources := Sources(domain.RetrievalResult{
		scored("one", "1.txt"),
		scored("two", ""),
	})
	assert.Equal(t, []domain.Source{
		{Filename: "1.txt", ContentPreview: "one"},
		{Filename: "Unknown", ContentPreview: "two"},
	}, sources)
}
