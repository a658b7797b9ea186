package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragqa/internal/domain"
)

type fakeSession struct {
	history []domain.AnswerRecord
	err     error
	count   int
	asked   []string
}

func (f *fakeSession) Ask(ctx context.Context, question string, k int) (domain.AnswerRecord, error) {
	f.asked = append(f.asked, question)
	record := domain.AnswerRecord{
		Question: question,
		Answer:   "Paris.",
		Sources:  []domain.Source{{Filename: "geo.txt", ContentPreview: "Paris is the capital of France."}},
		Context:  "Document 1 (Source: geo.txt):\nParis is the capital of France.",
	}
	if f.err != nil {
		record.Answer = domain.DegradedAnswer(f.err)
	}
	f.history = append(f.history, record)
	return record, f.err
}

func (f *fakeSession) Recent(n int) []domain.AnswerRecord {
	var out []domain.AnswerRecord
	for i := len(f.history) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, f.history[i])
	}
	return out
}

func (f *fakeSession) Info(ctx context.Context) domain.IndexInfo {
	return domain.IndexInfo{Status: domain.StatusLoaded, Count: f.count}
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func typeQuestion(m Model, q string) Model {
	m.input.SetValue(q)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model)
}

func TestModel_AskFlow(t *testing.T) {
	s := &fakeSession{count: 1}
	m := sized(t, New(context.Background(), s, Options{TopK: 4, ShowSources: true}))

	m.input.SetValue("What is the capital of France?")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	assert.Equal(t, "", m.input.Value())

	updated, _ = m.Update(cmd())
	m = updated.(Model)
	assert.False(t, m.busy)

	view := m.View()
	assert.Contains(t, view, "Paris.")
	assert.Contains(t, view, "geo.txt")
	assert.Contains(t, view, "Q: What is the capital of France?")
	assert.NotContains(t, view, "Document 1 (Source: geo.txt)")
}

func TestModel_IgnoresInputWhileBusy(t *testing.T) {
	s := &fakeSession{count: 1}
	m := sized(t, New(context.Background(), s, Options{}))

	m = typeQuestion(m, "first")
	require.True(t, m.busy)

	m.input.SetValue("second")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestModel_ShowsErrors(t *testing.T) {
	s := &fakeSession{count: 1, err: &domain.SynthesisError{Err: errors.New("quota exceeded")}}
	m := sized(t, New(context.Background(), s, Options{}))

	m.input.SetValue("q")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	updated, _ = m.Update(cmd())
	m = updated.(Model)

	assert.Contains(t, m.status, "quota exceeded")
	assert.Contains(t, m.renderAnswer(), "An error occurred while generating the answer: quota exceeded")
}

func TestModel_NoDocuments(t *testing.T) {
	s := &fakeSession{err: domain.ErrNoDocuments}
	m := New(context.Background(), s, Options{})
	assert.Contains(t, m.status, "Please upload and process documents first")

	updated, _ := m.Update(answerMsg{err: domain.ErrNoDocuments})
	m = updated.(Model)
	assert.Nil(t, m.current)
}

func TestModel_ToggleContext(t *testing.T) {
	s := &fakeSession{count: 1}
	m := sized(t, New(context.Background(), s, Options{}))
	updated, _ := m.Update(answerMsg{record: domain.AnswerRecord{Question: "q", Answer: "a", Context: "CTX BLOCK"}})
	m = updated.(Model)
	assert.NotContains(t, m.renderAnswer(), "CTX BLOCK")

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	m = updated.(Model)
	assert.Contains(t, m.renderAnswer(), "CTX BLOCK")
}

func TestModel_HistoryPanel(t *testing.T) {
	s := &fakeSession{count: 1}
	long := strings.Repeat("why ", 20)
	for _, q := range []string{"q1", "q2", "q3", "q4", "q5", "q6", long} {
		s.history = append(s.history, domain.AnswerRecord{Question: q})
	}
	m := New(context.Background(), s, Options{HistoryDisplay: 5})

	panel := m.renderHistory()
	assert.Contains(t, panel, "Q: "+long[:50]+"...")
	assert.Contains(t, panel, "Q: q3")
	assert.NotContains(t, panel, "Q: q2")
	assert.Less(t, strings.Index(panel, "q6"), strings.Index(panel, "q5"), "most recent first")
}

func TestModel_HistoryPanelShowsAnswers(t *testing.T) {
	s := &fakeSession{count: 1}
	long := strings.Repeat("because ", 20)
	s.history = []domain.AnswerRecord{
		{Question: "first?", Answer: "Paris.\nIt is the capital."},
		{Question: "second?", Answer: long},
	}
	m := New(context.Background(), s, Options{HistoryDisplay: 5})

	panel := m.renderHistory()
	assert.Contains(t, panel, "A: Paris. It is the capital.")
	assert.Contains(t, panel, "A: "+long[:80]+"...")
	assert.Less(t, strings.Index(panel, "second?"), strings.Index(panel, "A: "+long[:80]))
	assert.Less(t, strings.Index(panel, "A: "+long[:80]), strings.Index(panel, "first?"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 50))
	assert.Equal(t, strings.Repeat("é", 50)+"...", truncate(strings.Repeat("é", 60), 50))
}
