package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ragqa/internal/domain"
	"ragqa/internal/port"
)

const DefaultTopK = 4

// AnswerUseCase runs the question path: search, format, prompt, synthesize.
type AnswerUseCase struct {
	index       port.Index
	synthesizer *Synthesizer
	topK        int
	now         func() time.Time
}

func NewAnswerUseCase(index port.Index, synthesizer *Synthesizer, topK int) *AnswerUseCase {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &AnswerUseCase{
		index:       index,
		synthesizer: synthesizer,
		topK:        topK,
		now:         time.Now,
	}
}

// TopK returns the default number of chunks retrieved per question.
func (u *AnswerUseCase) TopK() int {
	return u.topK
}

// Answer answers question from the k most relevant chunks; k <= 0 uses
// the configured default. When nothing relevant is indexed the model is not
// called. A non-nil error comes with a record holding whatever was
// produced before the failure; synthesis failures are *domain.SynthesisError.
func (u *AnswerUseCase) Answer(ctx context.Context, question string, k int) (domain.AnswerRecord, error) {
	if k <= 0 {
		k = u.topK
	}

	record := domain.AnswerRecord{
		Question: question,
		Sources:  []domain.Source{},
		AskedAt:  u.now(),
	}

	results, err := u.index.Search(ctx, question, k)
	if err != nil {
		return record, fmt.Errorf("retrieval failed: %w", err)
	}

	if len(results) == 0 {
		record.Answer = domain.NotFoundAnswer
		return record, nil
	}

	record.Context = FormatContext(results)
	record.Sources = Sources(results)

	prompt := BuildPrompt(question, record.Context)
	slog.Debug("synthesizing answer", "chunks", len(results), "prompt_chars", len(prompt))

	answer, err := u.synthesizer.Synthesize(ctx, prompt)
	if err != nil {
		return record, err
	}
	record.Answer = answer
	return record, nil
}

// Prompt returns the prompt that Answer would send, without calling the
// model. ok is false when retrieval found nothing.
func (u *AnswerUseCase) Prompt(ctx context.Context, question string, k int) (prompt string, ok bool, err error) {
	if k <= 0 {
		k = u.topK
	}
	results, err := u.index.Search(ctx, question, k)
	if err != nil {
		return "", false, fmt.Errorf("retrieval failed: %w", err)
	}
	if len(results) == 0 {
		return "", false, nil
	}
	return BuildPrompt(question, FormatContext(results)), true, nil
}
