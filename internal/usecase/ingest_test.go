package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragqa/internal/adapter/chunker"
	"ragqa/internal/adapter/extract"
	"ragqa/internal/domain"
)

func writeDoc(t *testing.T, dir, name, content string) domain.Document {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return domain.Document{Path: path, Size: int64(len(content))}
}

func newIngest(t *testing.T, ix *recordingIndex) *IngestUseCase {
	t.Helper()
	ch, err := chunker.NewRecursiveChunker(1000, 200)
	require.NoError(t, err)
	return NewIngestUseCase(extract.NewRegistry(), ch, ix)
}

func TestIngest_IsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	docs := []domain.Document{
		writeDoc(t, dir, "notes.txt", "Paris is the capital of France."),
		writeDoc(t, dir, "sheet.csv", "a,b,c"),
		writeDoc(t, dir, "blank.txt", "   \n\t"),
		writeDoc(t, dir, "more.txt", "Berlin is the capital of Germany."),
	}

	ix := &recordingIndex{}
	var progressed []string
	result, err := newIngest(t, ix).Ingest(context.Background(), docs, func(done, total int, path string) {
		assert.Equal(t, len(docs), total)
		progressed = append(progressed, filepath.Base(path))
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.FilesProcessed)
	assert.Equal(t, 2, result.FilesFailed)
	assert.Equal(t, 2, result.ChunksCreated)
	assert.Equal(t, 12, result.WordsExtracted)
	assert.Equal(t, []string{"notes.txt", "sheet.csv", "blank.txt", "more.txt"}, progressed)

	require.Len(t, result.Errors, 2)
	assert.ErrorIs(t, result.Errors[0].Err, domain.ErrUnsupportedFormat)
	assert.ErrorIs(t, result.Errors[1].Err, domain.ErrEmptyInput)

	require.Len(t, ix.inserts, 1, "all chunks go in with one insert")
	assert.Equal(t, "notes.txt", ix.inserts[0][0].Metadata.Filename)
	assert.Equal(t, "more.txt", ix.inserts[0][1].Metadata.Filename)
}

func TestIngest_NoDocuments(t *testing.T) {
	dir := t.TempDir()
	docs := []domain.Document{writeDoc(t, dir, "image.png", "not text")}

	ix := &recordingIndex{}
	result, err := newIngest(t, ix).Ingest(context.Background(), docs, nil)
	assert.ErrorIs(t, err, domain.ErrNoDocuments)
	assert.Equal(t, 1, result.FilesFailed)
	assert.Empty(t, ix.inserts)
}

func TestIngest_InsertFailure(t *testing.T) {
	dir := t.TempDir()
	cause := errors.New("embedding service down")
	ix := &recordingIndex{insertErr: cause}

	_, err := newIngest(t, ix).Ingest(context.Background(), []domain.Document{writeDoc(t, dir, "a.txt", "text")}, nil)
	assert.ErrorIs(t, err, cause)
}

func TestIngest_Cancelled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ix := &recordingIndex{}
	_, err := newIngest(t, ix).Ingest(ctx, []domain.Document{writeDoc(t, dir, "a.txt", "text")}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ix.inserts)
}
