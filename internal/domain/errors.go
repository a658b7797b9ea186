package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat  = errors.New("unsupported file format")
	ErrEmptyInput         = errors.New("no text extracted")
	ErrExtraction         = errors.New("text extraction failed")
	ErrIndexUninitialized = errors.New("index not initialized")
	ErrEmbeddingMismatch  = errors.New("embedding model or dimension does not match collection")
	ErrInvalidK           = errors.New("k must be positive")
	ErrNoDocuments        = errors.New("no documents were successfully processed")
	ErrEmptyQuestion      = errors.New("question is empty")
	ErrSynthesis          = errors.New("answer synthesis failed")
	ErrFileTooLarge       = errors.New("file exceeds size limit")
	ErrDuplicateFilename  = errors.New("duplicate filename in batch")
)

// SynthesisError reports a failed call to the hosted model.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("%v: %v", ErrSynthesis, e.Err)
}

func (e *SynthesisError) Unwrap() []error {
	return []error{ErrSynthesis, e.Err}
}

const (
	NoContextMessage = "No relevant context found."
	NotFoundAnswer   = "I couldn't find any relevant information to answer your question."
)

// DegradedAnswer renders a pipeline failure as answer text.
func DegradedAnswer(err error) string {
	var se *SynthesisError
	if errors.As(err, &se) {
		err = se.Err
	}
	return fmt.Sprintf("An error occurred while generating the answer: %v", err)
}
