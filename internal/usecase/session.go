package usecase

import (
	"context"
	"strings"
	"sync"

	"ragqa/internal/domain"
	"ragqa/internal/port"
)

const DefaultHistoryDisplay = 5

// Session is the state of one interactive run: the index, the answer
// pipeline and the question history. History lives only as long as the
// Session.
type Session struct {
	index  port.Index
	answer *AnswerUseCase
	ingest *IngestUseCase

	mu        sync.RWMutex
	processed bool
	history   []domain.AnswerRecord
}

// NewSession starts a session. Documents count as processed when the index
// already holds a non-empty collection.
func NewSession(ctx context.Context, index port.Index, answer *AnswerUseCase, ingest *IngestUseCase) *Session {
	return &Session{
		index:     index,
		answer:    answer,
		ingest:    ingest,
		processed: index.Describe(ctx).Count > 0,
	}
}

// DocumentsProcessed reports whether questions can be asked.
func (s *Session) DocumentsProcessed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.processed
}

// Ingest indexes docs. Success marks the session ready; failure clears the
// flag until the next successful ingest.
func (s *Session) Ingest(ctx context.Context, docs []domain.Document, progress ProgressFunc) (*IngestResult, error) {
	result, err := s.ingest.Ingest(ctx, docs, progress)

	s.mu.Lock()
	s.processed = err == nil
	s.mu.Unlock()

	return result, err
}

// Ask answers a question and records it in the history. Pipeline failures
// are recorded with a degraded answer and returned with the record.
func (s *Session) Ask(ctx context.Context, question string, k int) (domain.AnswerRecord, error) {
	if strings.TrimSpace(question) == "" {
		return domain.AnswerRecord{}, domain.ErrEmptyQuestion
	}
	if !s.DocumentsProcessed() {
		return domain.AnswerRecord{}, domain.ErrNoDocuments
	}

	record, err := s.answer.Answer(ctx, question, k)
	if err != nil {
		record.Answer = domain.DegradedAnswer(err)
	}

	s.mu.Lock()
	s.history = append(s.history, record)
	s.mu.Unlock()

	return record, err
}

// Prompt returns the prompt a question would produce.
func (s *Session) Prompt(ctx context.Context, question string, k int) (string, bool, error) {
	if strings.TrimSpace(question) == "" {
		return "", false, domain.ErrEmptyQuestion
	}
	return s.answer.Prompt(ctx, question, k)
}

// History returns all records, oldest first.
func (s *Session) History() []domain.AnswerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AnswerRecord, len(s.history))
	copy(out, s.history)
	return out
}

// Recent returns up to n records, most recent first.
func (s *Session) Recent(n int) []domain.AnswerRecord {
	if n <= 0 {
		n = DefaultHistoryDisplay
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > len(s.history) {
		n = len(s.history)
	}
	out := make([]domain.AnswerRecord, 0, n)
	for i := len(s.history) - 1; i >= len(s.history)-n; i-- {
		out = append(out, s.history[i])
	}
	return out
}

// Clear deletes the collection and resets the session.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.index.Clear(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.processed = false
	s.history = nil
	s.mu.Unlock()
	return nil
}

// Info describes the index.
func (s *Session) Info(ctx context.Context) domain.IndexInfo {
	return s.index.Describe(ctx)
}
