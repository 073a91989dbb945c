// Package lesson is the interactive lesson player. It drives a
// lessonflow.Flow from key presses; flow calls that may reach the LLM run
// as commands so the screen keeps rendering while they are in flight.
package lesson

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/tutor/internal/lessonflow"
	"github.com/abhisek/tutor/internal/ui/components"
)

// Commands typed into the answer box.
const (
	CmdBack     = "/back"
	CmdContinue = "/continue"
	CmdQuit     = "/quit"
)

// Model is the tea.Model for one lesson run.
type Model struct {
	ctx   context.Context
	flow  *lessonflow.Flow
	input components.TextInput
	fast  bool

	// busy is set while a flow call is in flight; holding while feedback
	// stays up before the next question.
	busy    bool
	holding bool

	result *lessonflow.Result
	notice string
	paused bool
	err    error
}

var _ tea.Model = (*Model)(nil)

// New creates the player. With fast set, feedback is not held on screen.
func New(ctx context.Context, flow *lessonflow.Flow, fast bool) *Model {
	return &Model{
		ctx:   ctx,
		flow:  flow,
		input: components.NewTextInput("Type your answer, or press enter to continue", 120),
		fast:  fast,
	}
}

func (m *Model) Init() tea.Cmd {
	return m.input.Init()
}

// Complete reports whether the lesson reached its final state.
func (m *Model) Complete() bool {
	return m.flow.CurrentState() == lessonflow.StateComplete
}

// Paused reports whether the student left before completing.
func (m *Model) Paused() bool { return m.paused }

// Err is the error that stopped the player, if any.
func (m *Model) Err() error { return m.err }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		return m.handleResult(msg)
	case stateMsg:
		return m.handleState(msg)
	case holdDoneMsg:
		m.holding = false
		return m, m.next()
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m.pause()
	case "enter":
		if m.busy {
			return m, nil
		}
		if m.holding {
			// enter skips the rest of the pause
			m.holding = false
			return m, m.next()
		}
		return m.submit(m.input.Value())
	}
	if m.busy || m.holding {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit routes one line of input to the flow.
func (m *Model) submit(text string) (tea.Model, tea.Cmd) {
	m.input.Reset()
	m.notice = ""

	switch text {
	case CmdQuit:
		return m.pause()
	case CmdBack:
		if _, err := m.flow.Back(); err != nil {
			m.notice = "Can't go back from here."
		}
		m.result = nil
		return m, nil
	case CmdContinue:
		return m.run(m.continueCmd())
	}

	v := m.flow.View()
	switch v.State {
	case lessonflow.StateTeach, lessonflow.StateExample:
		return m.run(m.advanceCmd())
	case lessonflow.StateCheck:
		switch {
		case v.Check == nil:
			return m.run(m.advanceCmd())
		case v.Revealed:
			return m.run(m.continueCmd())
		}
		return m.run(m.checkCmd(text))
	case lessonflow.StatePractice:
		if v.Practice == nil {
			return m.run(m.advanceCmd())
		}
		return m.run(m.practiceCmd(text))
	}
	return m, tea.Quit
}

func (m *Model) run(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.busy = true
	m.result = nil
	return m, cmd
}

func (m *Model) checkCmd(text string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.flow.SubmitCheck(m.ctx, text)
		return resultMsg{Result: res, Err: err}
	}
}

func (m *Model) practiceCmd(text string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.flow.SubmitPractice(m.ctx, text)
		return resultMsg{Result: res, Err: err}
	}
}

func (m *Model) advanceCmd() tea.Cmd {
	return func() tea.Msg {
		s, err := m.flow.Advance(m.ctx)
		return stateMsg{State: s, Err: err}
	}
}

func (m *Model) continueCmd() tea.Cmd {
	return func() tea.Msg {
		s, err := m.flow.Continue(m.ctx)
		return stateMsg{State: s, Err: err}
	}
}

func (m *Model) handleResult(msg resultMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.Err != nil {
		return m.fail(msg.Err)
	}
	res := msg.Result
	m.result = &res
	m.input.Submit(res.Correct)

	if !m.fast && res.AdvanceAfter > 0 {
		m.holding = true
		return m, tea.Tick(res.AdvanceAfter, func(time.Time) tea.Msg {
			return holdDoneMsg{}
		})
	}
	return m, m.next()
}

func (m *Model) handleState(msg stateMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.Err != nil {
		return m.fail(msg.Err)
	}
	return m, m.next()
}

// next quits once the lesson is complete.
func (m *Model) next() tea.Cmd {
	if m.Complete() {
		return tea.Quit
	}
	return nil
}

// fail shows recoverable flow errors as a notice and stops on anything else.
func (m *Model) fail(err error) (tea.Model, tea.Cmd) {
	var verr *lessonflow.ValidationError
	switch {
	case errors.As(err, &verr):
		m.notice = "Type an answer first."
	case errors.Is(err, lessonflow.ErrWrongState),
		errors.Is(err, lessonflow.ErrAnswerRevealed),
		errors.Is(err, lessonflow.ErrBusy):
		m.notice = err.Error()
	default:
		m.err = err
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) pause() (tea.Model, tea.Cmd) {
	if !m.Complete() {
		m.paused = true
	}
	return m, tea.Quit
}
