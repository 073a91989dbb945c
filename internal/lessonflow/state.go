package lessonflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/tutor/internal/badges"
	"github.com/abhisek/tutor/internal/curriculum"
	"github.com/abhisek/tutor/internal/questiongen"
)

// State is a lesson stage. Stages run strictly in order.
type State string

const (
	StateTeach    State = "teach"
	StateExample  State = "example"
	StateCheck    State = "check"
	StatePractice State = "practice"
	StateComplete State = "complete"
)

var order = []State{StateTeach, StateExample, StateCheck, StatePractice, StateComplete}

func (s State) index() int {
	for i, o := range order {
		if o == s {
			return i
		}
	}
	return -1
}

var (
	// ErrBusy rejects input while a hint or practice fetch is in flight.
	ErrBusy = errors.New("lessonflow: waiting for a previous request")
	// ErrWrongState rejects an operation the current stage doesn't accept.
	ErrWrongState = errors.New("lessonflow: operation not allowed in this state")
	// ErrAnswerRevealed rejects answers to a check whose answer was shown.
	ErrAnswerRevealed = errors.New("lessonflow: answer already revealed, continue to move on")
)

// ValidationError reports missing input.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("lessonflow: %s is required", e.Field)
}

// Feedback strings shown to the student.
const (
	FeedbackCorrect    = "✅ Correct!"
	FeedbackHintPrefix = "💡 Hint: "
	FeedbackReteach    = "Try again using the explanation above."
	FeedbackRevealed   = "❌ Let's look at the correct answer."
	feedbackWrongFmt   = "❌ Not quite. Answer: %s"
)

// Result is the outcome of one submission.
type Result struct {
	Correct  bool
	Feedback string
	// Reteach holds a fresh explanation after a repeated miss.
	Reteach string
	// Answer is the canonical answer once it has been revealed.
	Answer   string
	Revealed bool
	// Attempts is the miss count on the current check after this submission.
	Attempts int
	Badge    badges.Badge
	State    State
	// AdvanceAfter is how long to leave the feedback up before showing the
	// next question. The machine has already moved on.
	AdvanceAfter time.Duration
}

// View is a read-only snapshot for rendering.
type View struct {
	State  State
	Lesson *curriculum.Lesson

	CheckIndex int
	CheckTotal int
	Check      *curriculum.Check
	Attempts   int
	Revealed   bool

	PracticeIndex int
	PracticeTotal int
	Practice      *questiongen.Question
	// Notice is a fallback message to show instead of missing content.
	Notice string

	Badges []badges.Badge
}
