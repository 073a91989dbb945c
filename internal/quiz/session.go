// Package quiz runs a generated sub-topic quiz and turns the final score
// into badges and a mastery update.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/abhisek/tutor/internal/answer"
	"github.com/abhisek/tutor/internal/badges"
	"github.com/abhisek/tutor/internal/curriculum"
	"github.com/abhisek/tutor/internal/logger"
	"github.com/abhisek/tutor/internal/outbox"
	"github.com/abhisek/tutor/internal/progression"
	"github.com/abhisek/tutor/internal/questiongen"
	"github.com/abhisek/tutor/internal/session"
)

const (
	FeedbackCorrect  = "✅ Correct!"
	feedbackWrongFmt = "❌ Wrong. Correct answer: %s"

	defaultGrade = 7
)

var (
	ErrEmptyAnswer = errors.New("quiz: answer is required")
	// ErrDone rejects answers once every question has one.
	ErrDone = errors.New("quiz: no questions left")
	// ErrUnfinished rejects Finish while questions remain.
	ErrUnfinished = errors.New("quiz: questions remain unanswered")
)

// QuestionSource generates quiz questions.
type QuestionSource interface {
	Quiz(ctx context.Context, in questiongen.QuizInput) ([]questiongen.Question, error)
}

// Options selects what to quiz on.
type Options struct {
	Subject  string
	SubTopic string
	// Mastery is the student's current mastery of the sub-topic, used to
	// pitch the questions.
	Mastery int
	Count   int
}

type Deps struct {
	Questions QuestionSource
	Outbox    outbox.Enqueuer
	Log       *logger.Logger
}

// Result is the outcome of one answer.
type Result struct {
	Correct  bool
	Feedback string
	Answer   string
	// Last is set when this was the final question.
	Last bool
}

// Summary is the scored quiz.
type Summary struct {
	Score  int
	Total  int
	XP     int
	Badges []badges.Badge
}

// Session is one quiz attempt. Each question accepts exactly one answer.
type Session struct {
	sess    *session.Context
	concept *curriculum.Concept
	deps    Deps

	mu        sync.Mutex
	questions []questiongen.Question
	idx       int
	score     int
	summary   *Summary
}

// Start generates questions for the sub-topic and opens a quiz.
func Start(ctx context.Context, sess *session.Context, catalog *curriculum.Catalog, opts Options, deps Deps) (*Session, error) {
	if sess == nil {
		return nil, session.ErrNoStudent
	}
	if _, err := sess.StudentID(); err != nil {
		return nil, err
	}
	concept, ok := catalog.ConceptFor(opts.Subject, opts.SubTopic)
	if !ok {
		return nil, fmt.Errorf("no %s sub-topic named %q", opts.Subject, opts.SubTopic)
	}
	if deps.Questions == nil {
		return nil, errors.New("quiz: no question source configured")
	}

	grade := sess.Student.Grade
	if grade <= 0 {
		grade = defaultGrade
	}
	qs, err := deps.Questions.Quiz(ctx, questiongen.QuizInput{
		Subject:  concept.Subject,
		SubTopic: concept.SubTopic,
		Grade:    grade,
		Mastery:  opts.Mastery,
		Count:    opts.Count,
	})
	if err != nil {
		return nil, err
	}
	return New(sess, concept, qs, deps)
}

// New opens a quiz over an existing question set.
func New(sess *session.Context, concept *curriculum.Concept, qs []questiongen.Question, deps Deps) (*Session, error) {
	if len(qs) == 0 {
		return nil, questiongen.ErrNoQuestions
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	return &Session{
		sess:      sess,
		concept:   concept,
		deps:      deps,
		questions: qs,
	}, nil
}

func (s *Session) Concept() *curriculum.Concept { return s.concept }

// Current returns the question awaiting an answer and its zero-based index.
func (s *Session) Current() (questiongen.Question, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx >= len(s.questions) {
		return questiongen.Question{}, s.idx, false
	}
	return s.questions[s.idx], s.idx, true
}

func (s *Session) Total() int { return len(s.questions) }

// Score returns correct answers so far.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Submit scores an answer to the current question and moves on.
func (s *Session) Submit(text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyAnswer
	}
	if _, err := s.sess.StudentID(); err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx >= len(s.questions) {
		return Result{}, ErrDone
	}

	q := s.questions[s.idx]
	s.idx++
	res := Result{Last: s.idx == len(s.questions)}
	if answer.MatchQuiz(text, q.Answer, q.Keywords) {
		s.score++
		res.Correct = true
		res.Feedback = FeedbackCorrect
		return res, nil
	}
	res.Answer = displayAnswer(q)
	res.Feedback = fmt.Sprintf(feedbackWrongFmt, res.Answer)
	return res, nil
}

// Finish scores the quiz once every question is answered and records the
// outcome. Later calls return the same summary without recording again.
func (s *Session) Finish() (Summary, error) {
	studentID, err := s.sess.StudentID()
	if err != nil {
		return Summary{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary != nil {
		return *s.summary, nil
	}
	if s.idx < len(s.questions) {
		return Summary{}, ErrUnfinished
	}

	total := len(s.questions)
	last := s.questions[total-1].Difficulty
	rewards := progression.QuizRewards(s.score, total, last)
	s.summary = &Summary{Score: s.score, Total: total, XP: rewards.XP, Badges: rewards.Badges}

	if s.deps.Outbox != nil {
		if len(rewards.Badges) > 0 {
			e := outbox.NewEvent(outbox.KindBadges, studentID)
			e.ConceptID = s.concept.ID
			e.Badges = badges.Strings(rewards.Badges)
			s.deps.Outbox.Enqueue(e)
		}
		m := outbox.NewEvent(outbox.KindMastery, studentID)
		m.ConceptID = s.concept.ID
		m.Score = float64(s.score) / float64(total)
		m.Difficulty = int(last)
		s.deps.Outbox.Enqueue(m)
	}

	s.deps.Log.Info("quiz finished",
		"student", studentID, "concept", s.concept.ID,
		"score", s.score, "total", total, "xp", rewards.XP)
	return *s.summary, nil
}

func displayAnswer(q questiongen.Question) string {
	if q.Units == "" {
		return q.Answer
	}
	return q.Answer + " " + q.Units
}
