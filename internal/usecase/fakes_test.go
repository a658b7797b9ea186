package usecase

import (
	"context"
	"testing"

	"ragqa/internal/adapter/embedding"
	"ragqa/internal/adapter/index"
	"ragqa/internal/adapter/memstore"
	"ragqa/internal/domain"
)

type fakeLLM struct {
	answer  string
	err     error
	prompts []string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.answer, f.err
}

func (f *fakeLLM) ModelName() string { return "fake" }

// recordingIndex counts calls and can be made to fail.
type recordingIndex struct {
	inserts   [][]domain.Chunk
	searchErr error
	insertErr error
	count     int
}

func (r *recordingIndex) Insert(ctx context.Context, chunks []domain.Chunk) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserts = append(r.inserts, chunks)
	r.count += len(chunks)
	return nil
}

func (r *recordingIndex) Search(ctx context.Context, query string, k int) (domain.RetrievalResult, error) {
	return nil, r.searchErr
}

func (r *recordingIndex) Clear(ctx context.Context) error {
	r.count = 0
	return nil
}

func (r *recordingIndex) Describe(ctx context.Context) domain.IndexInfo {
	if r.count == 0 {
		return domain.IndexInfo{Status: domain.StatusNotLoaded}
	}
	return domain.IndexInfo{Status: domain.StatusLoaded, Count: r.count}
}

func newMemoryIndex(t *testing.T) *index.EmbeddingIndex {
	t.Helper()
	ix := index.NewEmbeddingIndex("rag_collection", embedding.NewHashEmbedder(384), memstore.NewMemoryStore())
	t.Cleanup(func() { ix.Close() })
	return ix
}

func geoChunk() domain.Chunk {
	return domain.Chunk{
		Content:  "Paris is the capital of France.",
		Metadata: domain.SourceMetadata{SourcePath: "/upload/geo.txt", Filename: "geo.txt"},
	}
}
