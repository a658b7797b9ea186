// Package tui is the interactive chat screen over a session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ragqa/internal/domain"
)

// Session is the TUI-facing subset of usecase.Session.
type Session interface {
	Ask(ctx context.Context, question string, k int) (domain.AnswerRecord, error)
	Recent(n int) []domain.AnswerRecord
	Info(ctx context.Context) domain.IndexInfo
}

// Options controls what the chat screen shows.
type Options struct {
	TopK           int
	HistoryDisplay int
	ShowSources    bool
	ShowContext    bool
}

const (
	historyQuestionRunes = 50
	historyAnswerRunes   = 80
)

type answerMsg struct {
	record domain.AnswerRecord
	err    error
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctx      context.Context
	session  Session
	opts     Options
	input    textinput.Model
	viewport viewport.Model
	current  *domain.AnswerRecord
	info     domain.IndexInfo
	status   string
	busy     bool
	ready    bool
}

// New creates a chat model. ctx bounds every question asked from it.
func New(ctx context.Context, session Session, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question about your documents"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)

	info := session.Info(ctx)
	status := "Ready. Type a question and press Enter."
	if info.Count == 0 {
		status = "Please upload and process documents first (ragqa ingest)."
	}

	return Model{
		ctx:      ctx,
		session:  session,
		opts:     opts,
		input:    ti,
		viewport: vp,
		info:     info,
		status:   status,
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		record, err := m.session.Ask(m.ctx, question, m.opts.TopK)
		return answerMsg{record: record, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, bh := answerBoxStyle.GetFrameSize()
		reserved := 2 + m.historyHeight() + 3 + 1
		m.viewport.Width = max(20, msg.Width-4)
		m.viewport.Height = max(3, msg.Height-reserved-bh)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil

	case answerMsg:
		m.busy = false
		switch {
		case errors.Is(msg.err, domain.ErrNoDocuments):
			m.status = "Please upload and process documents first (ragqa ingest)."
		case errors.Is(msg.err, domain.ErrEmptyQuestion):
			m.status = "Please enter a question."
		case msg.err != nil:
			m.status = "Error: " + msg.err.Error()
			m.current = &msg.record
		default:
			m.status = fmt.Sprintf("Answered from %d sources.", len(msg.record.Sources))
			m.current = &msg.record
		}
		m.viewport.SetContent(m.renderAnswer())
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if m.busy {
				return m, nil
			}
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				return m, nil
			}
			m.busy = true
			m.status = "Thinking..."
			m.input.Reset()
			return m, m.ask(q)
		case "ctrl+s":
			m.opts.ShowSources = !m.opts.ShowSources
			m.viewport.SetContent(m.renderAnswer())
			return m, nil
		case "ctrl+t":
			m.opts.ShowContext = !m.opts.ShowContext
			m.viewport.SetContent(m.renderAnswer())
			return m, nil
		case "pgup", "pgdown", "up", "down":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	if _, isKey := msg.(tea.KeyMsg); isKey && m.busy {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("Document Q&A")
	summary := dimStyle.Render(fmt.Sprintf("%s (%d chunks)  ctrl+s sources  ctrl+t context  esc quit", m.info.Status, m.info.Count))
	answer := answerBoxStyle.Render(m.viewport.View())
	history := historyBoxStyle.Render(m.renderHistory())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + summary + "\n" + answer + "\n" + history + "\n" + input + "\n" + status
}

func (m Model) historyDisplay() int {
	if m.opts.HistoryDisplay <= 0 {
		return 5
	}
	return m.opts.HistoryDisplay
}

func (m Model) historyHeight() int {
	// question and answer line per entry
	return 2*m.historyDisplay() + 3
}

func (m Model) renderAnswer() string {
	if m.current == nil {
		return "No answer yet."
	}
	r := m.current

	var b strings.Builder
	b.WriteString(labelStyle.Render("Q: ") + r.Question + "\n\n")
	b.WriteString(r.Answer + "\n")

	if m.opts.ShowSources && len(r.Sources) > 0 {
		b.WriteString("\n" + labelStyle.Render("Sources") + "\n")
		for i, s := range r.Sources {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s.Filename)
			b.WriteString(dimStyle.Render(s.ContentPreview) + "\n")
		}
	}

	if m.opts.ShowContext && r.Context != "" {
		b.WriteString("\n" + labelStyle.Render("Context") + "\n")
		b.WriteString(dimStyle.Render(r.Context) + "\n")
	}
	return b.String()
}

func (m Model) renderHistory() string {
	recent := m.session.Recent(m.historyDisplay())
	if len(recent) == 0 {
		return dimStyle.Render("No questions yet.")
	}
	lines := []string{labelStyle.Render("Recent questions")}
	for _, r := range recent {
		lines = append(lines,
			"Q: "+truncate(r.Question, historyQuestionRunes),
			dimStyle.Render("A: "+truncate(strings.Join(strings.Fields(r.Answer), " "), historyAnswerRunes)))
	}
	return strings.Join(lines, "\n")
}

// truncate shortens s to n runes followed by "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

var (
	titleStyle      = lipgloss.NewStyle().Bold(true)
	labelStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	answerBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	historyBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
