package lesson

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tutor/internal/curriculum"
	"github.com/abhisek/tutor/internal/lessonflow"
	"github.com/abhisek/tutor/internal/questiongen"
	"github.com/abhisek/tutor/internal/remediation"
	"github.com/abhisek/tutor/internal/session"
)

type stubRemediator struct{}

func (stubRemediator) Hint(context.Context, remediation.HintInput) (string, error) {
	return "Add the tops.", nil
}

func (stubRemediator) Reteach(context.Context, remediation.HintInput) (string, error) {
	return "Same bottom number: add across the top.", nil
}

type stubPractice struct{ qs []questiongen.Question }

func (p stubPractice) Practice(context.Context, questiongen.PracticeInput) ([]questiongen.Question, error) {
	return p.qs, nil
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testModel(t *testing.T, fast bool) (*Model, *session.Context) {
	t.Helper()
	sess, err := session.Start(session.Student{ID: "s1", Name: "Ada", Grade: 7})
	require.NoError(t, err)

	flow, err := lessonflow.New(sess, curriculum.Default(), "adding-fractions", lessonflow.Deps{
		Remediator: stubRemediator{},
		Practice: stubPractice{qs: []questiongen.Question{
			{Text: "What is 1/5 + 2/5?", Answer: "3/5", Difficulty: 7},
			{Text: "What is 1/6 + 1/3?", Answer: "1/2", Difficulty: 7},
		}},
	}, lessonflow.DefaultConfig())
	require.NoError(t, err)
	return New(t.Context(), flow, fast), sess
}

// enter types text, presses enter and runs the resulting flow calls. It
// returns the first message that isn't a flow result, or nil.
func enter(m *Model, text string) tea.Msg {
	m.input.Model.SetValue(text)
	_, cmd := m.Update(specialKey(tea.KeyEnter))
	return settle(m, cmd)
}

func settle(m *Model, cmd tea.Cmd) tea.Msg {
	for cmd != nil {
		msg := cmd()
		switch msg.(type) {
		case resultMsg, stateMsg:
			_, cmd = m.Update(msg)
		default:
			return msg
		}
	}
	return nil
}

func isQuit(msg tea.Msg) bool {
	_, ok := msg.(tea.QuitMsg)
	return ok
}

func toCheck(t *testing.T, m *Model) {
	t.Helper()
	enter(m, "")
	enter(m, "")
	require.Equal(t, lessonflow.StateCheck, m.flow.CurrentState())
}

func TestLesson_RunsToCompletion(t *testing.T) {
	m, _ := testModel(t, true)

	assert.Contains(t, m.Render(), "Adding Fractions")
	enter(m, "")
	assert.Contains(t, m.Render(), "Worked example")
	enter(m, "")

	enter(m, "2/3")
	assert.Contains(t, m.Render(), lessonflow.FeedbackCorrect)
	assert.Contains(t, m.Render(), "Check 2/2")
	enter(m, "3/4")
	assert.Equal(t, lessonflow.StatePractice, m.flow.CurrentState())
	assert.Contains(t, m.Render(), "Practice 1/2")

	assert.Nil(t, enter(m, "3/5"))
	msg := enter(m, "one half is 1/2")
	assert.True(t, isQuit(msg), "player quits once the lesson completes")

	assert.True(t, m.Complete())
	assert.False(t, m.Paused())
	assert.NoError(t, m.Err())
	sum := m.Summary()
	assert.Contains(t, sum, "Lesson complete")
	assert.Contains(t, sum, "⭐ First Try")
	assert.Contains(t, sum, "Next:     tutor lesson")
}

func TestLesson_HintThenReveal(t *testing.T) {
	m, _ := testModel(t, true)
	toCheck(t, m)

	enter(m, "2/6")
	assert.Contains(t, m.Render(), lessonflow.FeedbackHintPrefix+"Add the tops.")

	enter(m, "1")
	assert.Contains(t, m.Render(), "add across the top")

	enter(m, "no idea")
	out := m.Render()
	assert.Contains(t, out, lessonflow.FeedbackRevealed)
	assert.Contains(t, out, "The answer is")
	assert.Contains(t, out, "2/3")

	// enter on a revealed check moves on
	enter(m, "")
	assert.Contains(t, m.Render(), "Check 2/2")
	assert.NotContains(t, m.Render(), "The answer is")
}

func TestLesson_EmptyAnswerShowsNotice(t *testing.T) {
	m, _ := testModel(t, true)
	toCheck(t, m)

	assert.Nil(t, enter(m, ""))
	assert.Contains(t, m.Render(), "Type an answer first.")
	assert.NoError(t, m.Err())
	assert.Equal(t, lessonflow.StateCheck, m.flow.CurrentState())
}

func TestLesson_BackAndQuit(t *testing.T) {
	m, _ := testModel(t, true)

	enter(m, "")
	enter(m, CmdBack)
	assert.Equal(t, lessonflow.StateTeach, m.flow.CurrentState())

	enter(m, CmdBack)
	assert.Contains(t, m.Render(), "Can't go back from here.")

	msg := enter(m, CmdQuit)
	assert.True(t, isQuit(msg))
	assert.True(t, m.Paused())
	assert.Contains(t, m.Summary(), "Lesson paused")
}

func TestLesson_EscPauses(t *testing.T) {
	m, _ := testModel(t, true)

	_, cmd := m.Update(specialKey(tea.KeyEscape))
	require.NotNil(t, cmd)
	assert.True(t, isQuit(cmd()))
	assert.True(t, m.Paused())
}

func TestLesson_HoldsFeedback(t *testing.T) {
	m, _ := testModel(t, false)
	toCheck(t, m)

	m.input.Model.SetValue("2/3")
	_, cmd := m.Update(specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	_, tick := m.Update(cmd())
	assert.NotNil(t, tick)
	assert.True(t, m.holding)

	// typing is ignored while feedback is up
	m.Update(keyPress('x'))
	assert.Empty(t, m.input.Value())

	m.Update(holdDoneMsg{})
	assert.False(t, m.holding)
	m.Update(keyPress('x'))
	assert.Equal(t, "x", m.input.Value())
}

func TestLesson_IgnoresEnterWhileBusy(t *testing.T) {
	m, _ := testModel(t, true)
	toCheck(t, m)

	m.input.Model.SetValue("2/3")
	_, cmd := m.Update(specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	assert.Contains(t, m.Render(), "Thinking...")

	_, again := m.Update(specialKey(tea.KeyEnter))
	assert.Nil(t, again)

	settle(m, cmd)
	assert.False(t, m.busy)
	assert.Contains(t, m.Render(), "Check 2/2")
}

func TestLesson_StopsOnSessionEnd(t *testing.T) {
	m, sess := testModel(t, true)
	sess.End()

	msg := enter(m, "")
	assert.True(t, isQuit(msg))
	assert.ErrorIs(t, m.Err(), session.ErrEnded)
	assert.False(t, m.Complete())
}
