package questiongen

import (
	"errors"

	"github.com/abhisek/tutor/internal/progression"
)

// ErrNoQuestions is returned when the provider produced no usable question.
var ErrNoQuestions = errors.New("no valid questions generated")

// Question is a generated practice or quiz question.
type Question struct {
	Text       string
	Answer     string
	Keywords   []string
	Hint       string
	Units      string
	Difficulty progression.Difficulty
}

// Band is the difficulty band within a school year, chosen from mastery.
type Band string

const (
	BandEasy      Band = "easy"
	BandStandard  Band = "standard"
	BandMultiStep Band = "multi-step"
	BandHard      Band = "hard"
)

// BandFor maps a 0–100 mastery onto a band. Boundary values belong to the
// higher band.
func BandFor(mastery int) Band {
	switch {
	case mastery >= 80:
		return BandHard
	case mastery >= 60:
		return BandMultiStep
	case mastery >= 40:
		return BandStandard
	default:
		return BandEasy
	}
}

// PracticeInput requests a progressively harder practice set for a lesson.
type PracticeInput struct {
	LessonTitle string
	Objective   string
	Difficulty  progression.Difficulty
	Count       int
}

// QuizInput requests a quiz for a sub-topic pitched at a student's mastery.
type QuizInput struct {
	Subject  string
	SubTopic string
	Grade    int
	Mastery  int
	Count    int
}
