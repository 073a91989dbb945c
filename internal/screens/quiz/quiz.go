// Package quiz is the interactive quiz screen.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	qz "github.com/abhisek/tutor/internal/quiz"
	"github.com/abhisek/tutor/internal/ui/components"
	"github.com/abhisek/tutor/internal/ui/theme"
)

// Starter generates the quiz. It runs once, off the update loop.
type Starter func(ctx context.Context) (*qz.Session, error)

// startedMsg is sent when question generation finishes.
type startedMsg struct {
	Session *qz.Session
	Err     error
}

// Model is the tea.Model for one quiz.
type Model struct {
	ctx   context.Context
	start Starter
	q     *qz.Session
	input components.TextInput

	last      *qz.Result
	summary   *qz.Summary
	notice    string
	abandoned bool
	err       error
}

var _ tea.Model = (*Model)(nil)

func New(ctx context.Context, start Starter) *Model {
	return &Model{
		ctx:   ctx,
		start: start,
		input: components.NewTextInput("Type your answer...", 120),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.startCmd(), m.input.Init())
}

func (m *Model) startCmd() tea.Cmd {
	return func() tea.Msg {
		s, err := m.start(m.ctx)
		return startedMsg{Session: s, Err: err}
	}
}

// Summary is nil until every question has been answered.
func (m *Model) Summary() *qz.Summary { return m.summary }

func (m *Model) Abandoned() bool { return m.abandoned }

func (m *Model) Err() error { return m.err }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		if msg.Err != nil {
			m.err = fmt.Errorf("start quiz: %w", msg.Err)
			return m, tea.Quit
		}
		m.q = msg.Session
		return m, nil
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.abandoned = true
			return m, tea.Quit
		case "enter":
			if m.q == nil {
				return m, nil
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	m.input.Reset()
	m.notice = ""
	if text == "/quit" {
		m.abandoned = true
		return m, tea.Quit
	}

	res, err := m.q.Submit(text)
	switch {
	case errors.Is(err, qz.ErrEmptyAnswer):
		m.notice = "Type an answer first."
		return m, nil
	case err != nil:
		m.err = err
		return m, tea.Quit
	}
	m.last = &res
	m.input.Submit(res.Correct)
	if !res.Last {
		return m, nil
	}

	sum, err := m.q.Finish()
	if err != nil {
		m.err = err
		return m, tea.Quit
	}
	m.summary = &sum
	return m, tea.Quit
}

func (m *Model) View() tea.View {
	return tea.NewView(m.Render())
}

// Render returns the current screen as text.
func (m *Model) Render() string {
	if m.q == nil {
		return theme.Dim.Render("Generating questions...")
	}

	var b strings.Builder
	if m.last != nil {
		b.WriteString(theme.Feedback(m.last.Correct).Render(m.last.Feedback) + "\n")
	}
	if m.summary != nil {
		return b.String()
	}
	if question, idx, ok := m.q.Current(); ok {
		label := fmt.Sprintf("Question %d/%d", idx+1, m.q.Total())
		fmt.Fprintf(&b, "\n%s %s\n", theme.Title.Render(label), question.Text)
	}
	if m.notice != "" {
		b.WriteString(theme.Dim.Render(m.notice) + "\n")
	}
	b.WriteString(m.input.View() + "\n")
	b.WriteString(theme.Dim.Render("enter: submit · esc: quit"))
	return b.String()
}

// Result is printed once the program exits.
func (m *Model) Result() string {
	var b strings.Builder
	if m.last != nil && m.summary != nil {
		b.WriteString(theme.Feedback(m.last.Correct).Render(m.last.Feedback) + "\n")
	}
	switch {
	case m.summary != nil:
		s := m.summary
		fmt.Fprintf(&b, "\n%s  Score: %d / %d   +%d XP\n", theme.Correct.Render("Quiz complete!"), s.Score, s.Total, s.XP)
		for _, badge := range s.Badges {
			fmt.Fprintf(&b, "  🏆 %s %s\n", theme.Badge.Render(string(badge)), theme.Dim.Render(badge.Rarity().DisplayName()))
		}
	case m.abandoned:
		b.WriteString(theme.Dim.Render("Quiz abandoned.") + "\n")
	}
	return b.String()
}
