package lessonflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tutor/internal/badges"
	"github.com/abhisek/tutor/internal/curriculum"
	"github.com/abhisek/tutor/internal/outbox"
	"github.com/abhisek/tutor/internal/questiongen"
	"github.com/abhisek/tutor/internal/remediation"
	"github.com/abhisek/tutor/internal/session"
)

type recorder struct {
	mu     sync.Mutex
	events []outbox.Event
}

func (r *recorder) Enqueue(e outbox.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []outbox.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []outbox.Kind
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

func (r *recorder) count(k outbox.Kind) int {
	n := 0
	for _, got := range r.kinds() {
		if got == k {
			n++
		}
	}
	return n
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.Kind == outbox.KindActionXP {
			out = append(out, e.Action)
		}
	}
	return out
}

type fakeRemediator struct {
	hints, reteaches int
	err              error
	// gate, when set, blocks Hint until closed.
	gate    chan struct{}
	entered chan struct{}
}

func (r *fakeRemediator) Hint(ctx context.Context, in remediation.HintInput) (string, error) {
	r.hints++
	if r.entered != nil {
		close(r.entered)
	}
	if r.gate != nil {
		<-r.gate
	}
	if r.err != nil {
		return "", r.err
	}
	return "Add the tops.", nil
}

func (r *fakeRemediator) Reteach(ctx context.Context, in remediation.HintInput) (string, error) {
	r.reteaches++
	if r.err != nil {
		return "", r.err
	}
	return "Fractions with the same bottom number add across the top.", nil
}

type fakePractice struct {
	calls int
	qs    []questiongen.Question
	err   error
}

func (p *fakePractice) Practice(ctx context.Context, in questiongen.PracticeInput) ([]questiongen.Question, error) {
	p.calls++
	return p.qs, p.err
}

func twoQuestions() []questiongen.Question {
	return []questiongen.Question{
		{Text: "What is 1/5 + 2/5?", Answer: "3/5", Difficulty: 7},
		{Text: "What is 1/6 + 1/3?", Answer: "1/2", Keywords: []string{"1/2", "one half"}, Difficulty: 7},
	}
}

type harness struct {
	flow     *Flow
	sess     *session.Context
	out      *recorder
	rem      *fakeRemediator
	practice *fakePractice
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	sess, err := session.Start(session.Student{ID: "s1", Name: "Ada", Grade: 7})
	require.NoError(t, err)

	h := &harness{
		sess:     sess,
		out:      &recorder{},
		rem:      &fakeRemediator{},
		practice: &fakePractice{qs: twoQuestions()},
	}
	cfg := DefaultConfig()
	f, err := New(sess, curriculum.Default(), "adding-fractions", Deps{
		Remediator: h.rem,
		Practice:   h.practice,
		Outbox:     h.out,
	}, cfg)
	require.NoError(t, err)
	h.flow = f
	return h
}

func (h *harness) toCheck(t *testing.T) {
	t.Helper()
	for _, want := range []State{StateExample, StateCheck} {
		s, err := h.flow.Advance(t.Context())
		require.NoError(t, err)
		require.Equal(t, want, s)
	}
}

func TestNew_RecordsStart(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, StateTeach, h.flow.CurrentState())
	assert.Equal(t, []outbox.Kind{outbox.KindLessonStarted, outbox.KindActionXP}, h.out.kinds())
	assert.Equal(t, []string{"lesson_view"}, h.out.actions())
	for _, e := range h.out.events {
		require.NoError(t, e.Validate())
	}
}

func TestNew_Errors(t *testing.T) {
	sess, err := session.Start(session.Student{ID: "s1"})
	require.NoError(t, err)

	_, err = New(sess, curriculum.Default(), "no-such-lesson", Deps{}, DefaultConfig())
	assert.Error(t, err)

	sess.End()
	_, err = New(sess, curriculum.Default(), "adding-fractions", Deps{}, DefaultConfig())
	assert.ErrorIs(t, err, session.ErrEnded)
}

func TestSubmitCheck_FirstTryThenPractice(t *testing.T) {
	h := newHarness(t)
	h.toCheck(t)

	res, err := h.flow.SubmitCheck(t.Context(), "It's 2/3")
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, FeedbackCorrect, res.Feedback)
	assert.Equal(t, badges.FirstTry, res.Badge)
	assert.Equal(t, StateCheck, res.State)
	assert.Equal(t, DefaultConfig().CheckDelay, res.AdvanceAfter)
	assert.Equal(t, 1, h.flow.View().CheckIndex)

	res, err = h.flow.SubmitCheck(t.Context(), "three quarters")
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, StatePractice, res.State)
	assert.Equal(t, StatePractice, h.flow.CurrentState())
	assert.Equal(t, 1, h.practice.calls)

	assert.Equal(t, 2, h.out.count(outbox.KindAttempt))
	assert.Equal(t, 2, h.out.count(outbox.KindMastery))
	assert.Equal(t, []string{"lesson_view", "check_correct", "check_correct"}, h.out.actions())
}

func TestSubmitCheck_Escalation(t *testing.T) {
	h := newHarness(t)
	h.toCheck(t)

	res, err := h.flow.SubmitCheck(t.Context(), "2/6")
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, FeedbackHintPrefix+"Add the tops.", res.Feedback)
	assert.Empty(t, res.Reteach)

	res, err = h.flow.SubmitCheck(t.Context(), "1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, FeedbackReteach, res.Feedback)
	assert.Contains(t, res.Reteach, "same bottom number")

	res, err = h.flow.SubmitCheck(t.Context(), "no idea")
	require.NoError(t, err)
	assert.True(t, res.Revealed)
	assert.Equal(t, "2/3", res.Answer)
	assert.Equal(t, FeedbackRevealed, res.Feedback)
	assert.Equal(t, StateCheck, h.flow.CurrentState())

	assert.Equal(t, 1, h.rem.hints)
	assert.Equal(t, 1, h.rem.reteaches)

	_, err = h.flow.SubmitCheck(t.Context(), "2/3")
	assert.ErrorIs(t, err, ErrAnswerRevealed)
	assert.Equal(t, 3, h.out.count(outbox.KindAttempt), "rejected submission is not recorded")
	assert.Equal(t, []string{"lesson_view", "check_failed_max"}, h.out.actions())

	s, err := h.flow.Continue(t.Context())
	require.NoError(t, err)
	assert.Equal(t, StateCheck, s)
	v := h.flow.View()
	assert.Equal(t, 1, v.CheckIndex)
	assert.Zero(t, v.Attempts)
	assert.False(t, v.Revealed)
}

func TestSubmitCheck_PersistenceBadge(t *testing.T) {
	h := newHarness(t)
	h.toCheck(t)

	_, err := h.flow.SubmitCheck(t.Context(), "1/6")
	require.NoError(t, err)
	res, err := h.flow.SubmitCheck(t.Context(), "2/3")
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, badges.Persistence, res.Badge)
	assert.Equal(t, 1, res.Attempts)
}

func TestSubmitCheck_RemediationFailure(t *testing.T) {
	h := newHarness(t)
	h.rem.err = &remediation.UnavailableError{Mode: remediation.ModeHint, Err: errors.New("offline")}
	h.toCheck(t)

	res, err := h.flow.SubmitCheck(t.Context(), "5")
	require.NoError(t, err)
	assert.Equal(t, remediation.FallbackMessage, res.Feedback)
	assert.Equal(t, StateCheck, res.State)
	assert.Equal(t, 1, h.flow.View().Attempts)

	res, err = h.flow.SubmitCheck(t.Context(), "2/3")
	require.NoError(t, err)
	assert.True(t, res.Correct)
}

func TestSubmitCheck_Validation(t *testing.T) {
	h := newHarness(t)
	h.toCheck(t)

	_, err := h.flow.SubmitCheck(t.Context(), "   ")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "answer", verr.Field)
	assert.Zero(t, h.out.count(outbox.KindAttempt))
	assert.Zero(t, h.flow.View().Attempts)
}

func TestSubmit_WrongState(t *testing.T) {
	h := newHarness(t)

	_, err := h.flow.SubmitCheck(t.Context(), "2/3")
	assert.ErrorIs(t, err, ErrWrongState)
	_, err = h.flow.SubmitPractice(t.Context(), "3/5")
	assert.ErrorIs(t, err, ErrWrongState)
	_, err = h.flow.Continue(t.Context())
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestSubmitCheck_BusyWhileRemediating(t *testing.T) {
	h := newHarness(t)
	h.rem.gate = make(chan struct{})
	h.rem.entered = make(chan struct{})
	h.toCheck(t)

	done := make(chan Result)
	go func() {
		res, _ := h.flow.SubmitCheck(context.Background(), "5")
		done <- res
	}()
	<-h.rem.entered

	_, err := h.flow.SubmitCheck(t.Context(), "2/3")
	assert.ErrorIs(t, err, ErrBusy)
	_, err = h.flow.Advance(t.Context())
	assert.ErrorIs(t, err, ErrBusy)
	_, err = h.flow.Back()
	assert.ErrorIs(t, err, ErrBusy)

	close(h.rem.gate)
	res := <-done
	assert.Equal(t, FeedbackHintPrefix+"Add the tops.", res.Feedback)

	_, err = h.flow.SubmitCheck(t.Context(), "2/3")
	assert.NoError(t, err)
}

func finishChecks(t *testing.T, h *harness) {
	t.Helper()
	h.toCheck(t)
	for _, a := range []string{"2/3", "3/4"} {
		_, err := h.flow.SubmitCheck(t.Context(), a)
		require.NoError(t, err)
	}
	require.Equal(t, StatePractice, h.flow.CurrentState())
}

func TestSubmitPractice_CompletesOnce(t *testing.T) {
	h := newHarness(t)
	finishChecks(t, h)

	res, err := h.flow.SubmitPractice(t.Context(), "4/5")
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, "❌ Not quite. Answer: 3/5", res.Feedback)
	assert.Equal(t, StatePractice, res.State)

	res, err = h.flow.SubmitPractice(t.Context(), "one half")
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, badges.PracticePro, res.Badge)
	assert.Equal(t, StateComplete, res.State)
	assert.Equal(t, DefaultConfig().PracticeDelay, res.AdvanceAfter)

	_, err = h.flow.SubmitPractice(t.Context(), "1/2")
	assert.ErrorIs(t, err, ErrWrongState)
	s, err := h.flow.Advance(t.Context())
	assert.ErrorIs(t, err, ErrWrongState)
	assert.Equal(t, StateComplete, s)
	_, err = h.flow.Back()
	assert.ErrorIs(t, err, ErrWrongState)

	assert.Equal(t, 1, h.out.count(outbox.KindLessonCompleted))
	assert.Equal(t, 1, h.out.count(outbox.KindBadges))
	assert.Equal(t, []string{
		"lesson_view", "check_correct", "check_correct", "practice_complete", "assessment_complete",
	}, h.out.actions())
	assert.ElementsMatch(t, []badges.Badge{badges.FirstTry, badges.PracticePro}, h.flow.Badges())

	for _, e := range h.out.events {
		require.NoError(t, e.Validate(), "event %s", e.Kind)
		if e.Kind == outbox.KindActionXP && e.Action == "assessment_complete" {
			assert.Equal(t, float64(100), e.Score)
		}
	}
}

func TestSubmitPractice_WrongLastAnswerNoBadge(t *testing.T) {
	h := newHarness(t)
	finishChecks(t, h)

	_, err := h.flow.SubmitPractice(t.Context(), "3/5")
	require.NoError(t, err)
	res, err := h.flow.SubmitPractice(t.Context(), "2")
	require.NoError(t, err)
	assert.Empty(t, res.Badge)
	assert.Equal(t, StateComplete, res.State)
	assert.NotContains(t, h.flow.Badges(), badges.PracticePro)
}

func TestPractice_GenerationFailure(t *testing.T) {
	h := newHarness(t)
	h.practice.err = errors.New("model down")
	finishChecks(t, h)

	v := h.flow.View()
	assert.Equal(t, remediation.FallbackMessage, v.Notice)
	assert.Zero(t, v.PracticeTotal)
	assert.Nil(t, v.Practice)

	s, err := h.flow.Advance(t.Context())
	require.NoError(t, err)
	assert.Equal(t, StateComplete, s)
	assert.Equal(t, 1, h.out.count(outbox.KindLessonCompleted))
}

func TestAdvance_PracticeNotExhausted(t *testing.T) {
	h := newHarness(t)
	finishChecks(t, h)

	s, err := h.flow.Advance(t.Context())
	assert.ErrorIs(t, err, ErrWrongState)
	assert.Equal(t, StatePractice, s)
}

func TestBack_DoesNotRefetchPractice(t *testing.T) {
	h := newHarness(t)
	finishChecks(t, h)

	s, err := h.flow.Back()
	require.NoError(t, err)
	assert.Equal(t, StateCheck, s)

	_, err = h.flow.SubmitCheck(t.Context(), "3/4")
	assert.ErrorIs(t, err, ErrWrongState)

	s, err = h.flow.Advance(t.Context())
	require.NoError(t, err)
	assert.Equal(t, StatePractice, s)
	assert.Equal(t, 1, h.practice.calls)
	assert.Equal(t, 2, h.flow.View().PracticeTotal)
}

func TestBack_Navigation(t *testing.T) {
	h := newHarness(t)

	_, err := h.flow.Back()
	assert.ErrorIs(t, err, ErrWrongState)

	h.toCheck(t)
	s, err := h.flow.Back()
	require.NoError(t, err)
	assert.Equal(t, StateExample, s)
	s, err = h.flow.Back()
	require.NoError(t, err)
	assert.Equal(t, StateTeach, s)
}

func TestAdvance_AfterRevealOnLastCheck(t *testing.T) {
	h := newHarness(t)
	h.toCheck(t)

	_, err := h.flow.SubmitCheck(t.Context(), "2/3")
	require.NoError(t, err)
	for _, a := range []string{"1", "2", "3"} {
		_, err = h.flow.SubmitCheck(t.Context(), a)
		require.NoError(t, err)
	}
	require.True(t, h.flow.View().Revealed)

	s, err := h.flow.Advance(t.Context())
	require.NoError(t, err)
	assert.Equal(t, StatePractice, s)
	assert.Equal(t, 1, h.practice.calls)
}

func TestSessionEnded(t *testing.T) {
	h := newHarness(t)
	h.toCheck(t)
	h.sess.End()

	_, err := h.flow.SubmitCheck(t.Context(), "2/3")
	assert.ErrorIs(t, err, session.ErrEnded)
	_, err = h.flow.Advance(t.Context())
	assert.ErrorIs(t, err, session.ErrEnded)
}

func TestNeighbors(t *testing.T) {
	h := newHarness(t)
	prev, next := h.flow.Neighbors()
	assert.Nil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, "percentages-of-amounts", next.Slug)
}
