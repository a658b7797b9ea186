package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"ragqa/internal/domain"
	"ragqa/internal/port"
)

// Synthesizer sends one prompt to the model. It keeps no conversation
// state between calls.
type Synthesizer struct {
	llm port.LLM
}

func NewSynthesizer(llm port.LLM) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// Synthesize returns the model's answer. Every failure is a
// *domain.SynthesisError.
func (s *Synthesizer) Synthesize(ctx context.Context, prompt string) (string, error) {
	if s.llm == nil {
		return "", &domain.SynthesisError{Err: errors.New("no language model configured")}
	}

	answer, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("answer synthesis failed", "model", s.llm.ModelName(), "err", err)
		return "", &domain.SynthesisError{Err: err}
	}
	if strings.TrimSpace(answer) == "" {
		return "", &domain.SynthesisError{Err: errors.New("model returned an empty answer")}
	}
	return answer, nil
}
