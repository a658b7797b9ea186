package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"ragqa/internal/adapter/analyzer"
	"ragqa/internal/domain"
	"ragqa/internal/port"
)

// IngestUseCase turns accepted documents into indexed chunks.
type IngestUseCase struct {
	extractor port.TextExtractor
	chunker   port.Chunker
	index     port.Index
}

func NewIngestUseCase(extractor port.TextExtractor, chunker port.Chunker, index port.Index) *IngestUseCase {
	return &IngestUseCase{
		extractor: extractor,
		chunker:   chunker,
		index:     index,
	}
}

// FileError records a document that could not be processed.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// IngestResult contains the results of an ingest operation.
type IngestResult struct {
	FilesProcessed int
	FilesFailed    int
	ChunksCreated  int
	WordsExtracted int
	Errors         []FileError
}

// ProgressFunc is called after each document is extracted and chunked.
type ProgressFunc func(done, total int, path string)

// Ingest extracts and chunks every document, then inserts all chunks into
// the index in one call. A failing document is logged and skipped. When no
// document yields a chunk the index is left untouched and ErrNoDocuments is
// returned alongside the result.
func (u *IngestUseCase) Ingest(ctx context.Context, docs []domain.Document, progress ProgressFunc) (*IngestResult, error) {
	result := &IngestResult{}
	var all []domain.Chunk

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		chunks, words, err := u.processFile(doc)
		if err != nil {
			slog.Warn("skipping document", "path", doc.Path, "err", err)
			result.FilesFailed++
			result.Errors = append(result.Errors, FileError{Path: doc.Path, Err: err})
		} else {
			result.FilesProcessed++
			result.WordsExtracted += words
			all = append(all, chunks...)
		}

		if progress != nil {
			progress(i+1, len(docs), doc.Path)
		}
	}

	if len(all) == 0 {
		return result, domain.ErrNoDocuments
	}

	if err := u.index.Insert(ctx, all); err != nil {
		return result, fmt.Errorf("failed to index chunks: %w", err)
	}
	result.ChunksCreated = len(all)

	slog.Info("ingest complete",
		"files", result.FilesProcessed,
		"failed", result.FilesFailed,
		"chunks", result.ChunksCreated,
		"words", result.WordsExtracted,
	)
	return result, nil
}

// processFile extracts and chunks a single document.
func (u *IngestUseCase) processFile(doc domain.Document) ([]domain.Chunk, int, error) {
	text, err := u.extractor.Extract(doc.Path)
	if err != nil {
		return nil, 0, err
	}

	chunks, err := u.chunker.Chunk(text, domain.NewSourceMetadata(doc.Path))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to chunk content: %w", err)
	}
	return chunks, analyzer.CountWords(text), nil
}
