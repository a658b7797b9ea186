package domain

import (
	"path/filepath"
	"time"
)

// SourceMetadata records where a chunk came from.
type SourceMetadata struct {
	SourcePath string `json:"source"`
	Filename   string `json:"filename"`
}

// NewSourceMetadata builds metadata for a file path, deriving the filename.
func NewSourceMetadata(path string) SourceMetadata {
	return SourceMetadata{
		SourcePath: path,
		Filename:   filepath.Base(path),
	}
}

// Chunk is a bounded fragment of one source document.
type Chunk struct {
	Content  string         `json:"content"`
	Metadata SourceMetadata `json:"metadata"`
}

type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// RetrievalResult is ordered most relevant first. An empty result means
// nothing relevant was found.
type RetrievalResult []ScoredChunk

// CollectionInfo identifies a persisted vector collection. Model and
// dimension are fixed for the lifetime of the collection.
type CollectionInfo struct {
	Name      string `json:"name"`
	Model     string `json:"model"`
	Dimension int    `json:"dimension"`
}

const (
	StatusNotLoaded = "No collection loaded"
	StatusLoaded    = "Collection loaded"
)

// IndexInfo is the human-readable state of an index.
type IndexInfo struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type Source struct {
	Filename       string `json:"filename"`
	ContentPreview string `json:"content_preview"`
}

// AnswerRecord is the outcome of one question.
type AnswerRecord struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Sources  []Source  `json:"sources"`
	Context  string    `json:"context"`
	AskedAt  time.Time `json:"-"`
}

// Document is a file accepted for ingestion.
type Document struct {
	Path string
	Size int64
}
