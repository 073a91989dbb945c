// Package lessonflow runs one student through one lesson: teach, example,
// comprehension checks with escalating remediation, generated practice and
// completion. Progress writes go to an outbox and never block the student.
package lessonflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/tutor/internal/answer"
	"github.com/abhisek/tutor/internal/badges"
	"github.com/abhisek/tutor/internal/curriculum"
	"github.com/abhisek/tutor/internal/logger"
	"github.com/abhisek/tutor/internal/outbox"
	"github.com/abhisek/tutor/internal/progression"
	"github.com/abhisek/tutor/internal/questiongen"
	"github.com/abhisek/tutor/internal/remediation"
	"github.com/abhisek/tutor/internal/session"
)

// Remediator produces guidance after a wrong check answer.
type Remediator interface {
	Hint(ctx context.Context, in remediation.HintInput) (string, error)
	Reteach(ctx context.Context, in remediation.HintInput) (string, error)
}

// PracticeSource supplies the practice set when a lesson reaches practice.
type PracticeSource interface {
	Practice(ctx context.Context, in questiongen.PracticeInput) ([]questiongen.Question, error)
}

// Config tunes a lesson run.
type Config struct {
	MaxAttempts   int
	PracticeCount int
	// CheckDelay is how long check feedback stays up before the next question.
	CheckDelay time.Duration
	// PracticeDelay is the same for practice answers and the final one.
	PracticeDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:   3,
		PracticeCount: 5,
		CheckDelay:    1500 * time.Millisecond,
		PracticeDelay: 2 * time.Second,
	}
}

// Deps are the collaborators a Flow calls out to. Remediator and Practice
// may be nil; the flow then falls back to static text and an empty set.
type Deps struct {
	Remediator Remediator
	Practice   PracticeSource
	Outbox     outbox.Enqueuer
	Log        *logger.Logger
}

// Flow is the state machine for one lesson instance. Its methods are safe
// to call from several goroutines, but only one submission is processed at
// a time; the rest fail with ErrBusy until it returns.
type Flow struct {
	sess    *session.Context
	catalog *curriculum.Catalog
	lesson  *curriculum.Lesson
	deps    Deps
	cfg     Config

	mu    sync.Mutex
	busy  bool
	state State

	checkIdx   int
	attempts   int
	revealed   bool
	checksDone bool

	practice        []questiongen.Question
	practiceFetched bool
	practiceIdx     int
	notice          string

	completed bool
	ledger    badges.Ledger
}

// New starts a lesson for the session's student and records the start.
func New(sess *session.Context, catalog *curriculum.Catalog, slug string, deps Deps, cfg Config) (*Flow, error) {
	if sess == nil {
		return nil, session.ErrNoStudent
	}
	studentID, err := sess.StudentID()
	if err != nil {
		return nil, err
	}
	lesson, ok := catalog.Lesson(slug)
	if !ok {
		return nil, fmt.Errorf("lesson %q not found", slug)
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	deps.Log = deps.Log.With("lesson", slug, "session", sess.ID)

	f := &Flow{
		sess:    sess,
		catalog: catalog,
		lesson:  lesson,
		deps:    deps,
		cfg:     cfg,
		state:   StateTeach,
	}

	started := outbox.NewEvent(outbox.KindLessonStarted, studentID)
	started.LessonSlug = slug
	f.emit(started)
	f.emit(f.actionEvent(studentID, progression.ActionLessonView, 0))

	deps.Log.Debug("lesson started", "student", studentID)
	return f, nil
}

func (f *Flow) Lesson() *curriculum.Lesson { return f.lesson }

func (f *Flow) CurrentState() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Badges returns the badges earned so far in this lesson.
func (f *Flow) Badges() []badges.Badge {
	return f.ledger.Earned()
}

// Neighbors returns the previous and next lessons in the same subject.
func (f *Flow) Neighbors() (prev, next *curriculum.Lesson) {
	return f.catalog.Neighbors(f.lesson.Slug)
}

// View returns a snapshot of what the student should see.
func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := View{
		State:         f.state,
		Lesson:        f.lesson,
		CheckIndex:    f.checkIdx,
		CheckTotal:    len(f.lesson.Checks),
		Attempts:      f.attempts,
		Revealed:      f.revealed,
		PracticeIndex: f.practiceIdx,
		PracticeTotal: len(f.practice),
		Notice:        f.notice,
		Badges:        f.ledger.Earned(),
	}
	if f.checkIdx < len(f.lesson.Checks) {
		c := f.lesson.Checks[f.checkIdx]
		v.Check = &c
	}
	if f.practiceIdx < len(f.practice) {
		q := f.practice[f.practiceIdx]
		v.Practice = &q
	}
	return v
}

// SubmitCheck scores an answer to the current check question.
func (f *Flow) SubmitCheck(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, &ValidationError{Field: "answer"}
	}
	studentID, err := f.sess.StudentID()
	if err != nil {
		return Result{}, err
	}

	f.mu.Lock()
	if err := f.acquire(StateCheck); err != nil {
		f.mu.Unlock()
		return Result{}, err
	}
	if f.checksDone {
		f.release()
		f.mu.Unlock()
		return Result{}, ErrWrongState
	}
	if f.revealed {
		f.release()
		f.mu.Unlock()
		return Result{}, ErrAnswerRevealed
	}

	check := f.lesson.Checks[f.checkIdx]
	correct := answer.Check(text, check.Answer, check.Keywords)
	f.emit(f.attemptEvent(studentID, correct))

	if correct {
		res := f.checkCorrect(studentID)
		if !f.checksDone {
			f.release()
			f.mu.Unlock()
			return res, nil
		}
		f.mu.Unlock()
		f.enterPractice(ctx)
		res.State = StatePractice
		return res, nil
	}

	f.attempts++
	res := Result{Attempts: f.attempts, State: StateCheck}
	if f.attempts >= f.cfg.MaxAttempts {
		f.revealed = true
		res.Revealed = true
		res.Answer = check.Answer
		res.Feedback = FeedbackRevealed
		f.emit(f.actionEvent(studentID, progression.ActionCheckFailedMax, 0))
		f.release()
		f.mu.Unlock()
		return res, nil
	}

	firstMiss := f.attempts == 1
	in := f.hintInput(check, text)
	f.mu.Unlock()

	guidance, gerr := f.remediate(ctx, firstMiss, in)

	f.mu.Lock()
	defer f.mu.Unlock()
	defer f.release()
	switch {
	case gerr != nil:
		f.deps.Log.Warn("remediation failed, showing fallback", "error", gerr)
		res.Feedback = remediation.FallbackMessage
	case firstMiss:
		res.Feedback = FeedbackHintPrefix + guidance
	default:
		res.Reteach = guidance
		res.Feedback = FeedbackReteach
	}
	return res, nil
}

// checkCorrect must be called with mu held. It advances the check index;
// the caller handles leaving the check stage.
func (f *Flow) checkCorrect(studentID string) Result {
	badge := badges.Persistence
	if f.attempts == 0 {
		badge = badges.FirstTry
	}
	f.ledger.Add(badge)

	f.emit(f.actionEvent(studentID, progression.ActionCheckCorrect, 0))
	f.emit(f.masteryEvent(studentID))

	res := Result{
		Correct:      true,
		Feedback:     FeedbackCorrect,
		Attempts:     f.attempts,
		Badge:        badge,
		State:        StateCheck,
		AdvanceAfter: f.cfg.CheckDelay,
	}
	f.nextCheck()
	return res
}

func (f *Flow) nextCheck() {
	f.checkIdx++
	f.attempts = 0
	f.revealed = false
	if f.checkIdx >= len(f.lesson.Checks) {
		f.checksDone = true
	}
}

// Continue moves past a revealed answer.
func (f *Flow) Continue(ctx context.Context) (State, error) {
	if _, err := f.sess.StudentID(); err != nil {
		return "", err
	}

	f.mu.Lock()
	if err := f.acquire(StateCheck); err != nil {
		f.mu.Unlock()
		return "", err
	}
	if !f.revealed {
		f.release()
		f.mu.Unlock()
		return "", ErrWrongState
	}
	f.nextCheck()
	if !f.checksDone {
		f.release()
		f.mu.Unlock()
		return StateCheck, nil
	}
	f.mu.Unlock()
	f.enterPractice(ctx)
	return StatePractice, nil
}

// SubmitPractice scores the current practice answer. Each question takes
// one submission; the flow moves on whether or not it was right.
func (f *Flow) SubmitPractice(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, &ValidationError{Field: "answer"}
	}
	studentID, err := f.sess.StudentID()
	if err != nil {
		return Result{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.acquire(StatePractice); err != nil {
		return Result{}, err
	}
	defer f.release()
	if f.practiceIdx >= len(f.practice) {
		return Result{}, ErrWrongState
	}

	q := f.practice[f.practiceIdx]
	correct := answer.Check(text, q.Answer, q.Keywords)
	f.emit(f.attemptEvent(studentID, correct))

	res := Result{Correct: correct, State: StatePractice, AdvanceAfter: f.cfg.PracticeDelay}
	if correct {
		res.Feedback = FeedbackCorrect
		f.emit(f.actionEvent(studentID, progression.ActionPracticeComplete, 0))
		f.emit(f.masteryEvent(studentID))
	} else {
		res.Feedback = fmt.Sprintf(feedbackWrongFmt, q.Answer)
		res.Answer = q.Answer
	}
	f.practiceIdx++

	if f.practiceIdx >= len(f.practice) {
		if correct && f.ledger.Add(badges.PracticePro) {
			res.Badge = badges.PracticePro
		}
		f.complete(studentID)
		res.State = StateComplete
	}
	return res, nil
}

// Advance moves forward one stage where the student may do so freely:
// out of teach and example, out of check once every question is settled,
// and out of practice once the set is used up.
func (f *Flow) Advance(ctx context.Context) (State, error) {
	studentID, err := f.sess.StudentID()
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return "", ErrBusy
	}
	switch f.state {
	case StateTeach:
		f.state = StateExample
	case StateExample:
		f.state = StateCheck
	case StateCheck:
		if f.revealed {
			f.mu.Unlock()
			return f.Continue(ctx)
		}
		if !f.checksDone {
			f.mu.Unlock()
			return StateCheck, ErrWrongState
		}
		f.busy = true
		f.mu.Unlock()
		f.enterPractice(ctx)
		return StatePractice, nil
	case StatePractice:
		if f.practiceIdx < len(f.practice) {
			f.mu.Unlock()
			return StatePractice, ErrWrongState
		}
		f.complete(studentID)
	case StateComplete:
		f.mu.Unlock()
		return StateComplete, ErrWrongState
	}
	s := f.state
	f.mu.Unlock()
	return s, nil
}

// Back returns to the previous stage. A completed lesson stays complete.
func (f *Flow) Back() (State, error) {
	if _, err := f.sess.StudentID(); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return "", ErrBusy
	}
	i := f.state.index()
	if f.state == StateComplete || i <= 0 {
		return f.state, ErrWrongState
	}
	f.state = order[i-1]
	return f.state, nil
}

// acquire must be called with mu held.
func (f *Flow) acquire(want State) error {
	if f.busy {
		return ErrBusy
	}
	if f.state != want {
		return ErrWrongState
	}
	f.busy = true
	return nil
}

func (f *Flow) release() { f.busy = false }

// enterPractice is called with busy set and mu released. The practice set
// is fetched only the first time.
func (f *Flow) enterPractice(ctx context.Context) {
	f.mu.Lock()
	fetched := f.practiceFetched
	f.mu.Unlock()

	var qs []questiongen.Question
	var err error
	if !fetched {
		qs, err = f.fetchPractice(ctx)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	defer f.release()
	f.state = StatePractice
	if fetched {
		return
	}
	f.practiceFetched = true
	if err != nil {
		f.deps.Log.Warn("practice generation failed", "error", err)
		f.notice = remediation.FallbackMessage
		return
	}
	f.practice = qs
}

func (f *Flow) fetchPractice(ctx context.Context) ([]questiongen.Question, error) {
	if f.deps.Practice == nil {
		return nil, errors.New("no practice source configured")
	}
	return f.deps.Practice.Practice(ctx, questiongen.PracticeInput{
		LessonTitle: f.lesson.Title,
		Objective:   f.lesson.LearningObjective,
		Difficulty:  f.lesson.Difficulty,
		Count:       f.cfg.PracticeCount,
	})
}

func (f *Flow) remediate(ctx context.Context, hint bool, in remediation.HintInput) (string, error) {
	if f.deps.Remediator == nil {
		mode := remediation.ModeReteach
		if hint {
			mode = remediation.ModeHint
		}
		return "", &remediation.UnavailableError{Mode: mode, Err: errors.New("no remediator configured")}
	}
	if hint {
		return f.deps.Remediator.Hint(ctx, in)
	}
	return f.deps.Remediator.Reteach(ctx, in)
}

func (f *Flow) hintInput(c curriculum.Check, studentAnswer string) remediation.HintInput {
	return remediation.HintInput{
		Subject:       f.lesson.Subject,
		LessonTitle:   f.lesson.Title,
		Explanation:   f.lesson.Explanation(),
		Question:      c.Question,
		StudentAnswer: studentAnswer,
		CorrectAnswer: c.Answer,
		Advisory:      c.Advisory,
		Difficulty:    f.lesson.Difficulty,
	}
}

// complete must be called with mu held. Side effects fire once.
func (f *Flow) complete(studentID string) {
	f.state = StateComplete
	if f.completed {
		return
	}
	f.completed = true

	f.emit(f.actionEvent(studentID, progression.ActionAssessmentComplete, 100))
	done := outbox.NewEvent(outbox.KindLessonCompleted, studentID)
	done.LessonSlug = f.lesson.Slug
	f.emit(done)

	if earned := f.ledger.Earned(); len(earned) > 0 {
		e := outbox.NewEvent(outbox.KindBadges, studentID)
		e.LessonSlug = f.lesson.Slug
		e.Badges = badges.Strings(earned)
		f.emit(e)
	}
	f.deps.Log.Info("lesson complete", "student", studentID, "badges", f.ledger.Len())
}
