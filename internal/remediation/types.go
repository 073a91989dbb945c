package remediation

import (
	"fmt"

	"github.com/abhisek/tutor/internal/progression"
)

// Mode selects the kind of guidance requested.
type Mode string

const (
	ModeHint    Mode = "hint"
	ModeReteach Mode = "reteach"
	ModeAsk     Mode = "ask"
)

// FallbackMessage is shown when guidance could not be generated.
const FallbackMessage = "Let's take another look at this together. Re-read the explanation above and try again."

// HintInput describes a missed check question.
type HintInput struct {
	Subject       string
	LessonTitle   string
	Explanation   string
	Question      string
	StudentAnswer string
	CorrectAnswer string
	Advisory      string
	Difficulty    progression.Difficulty
}

// AskInput is a free-form student question about a lesson.
type AskInput struct {
	LessonTitle string
	Explanation string
	Question    string
	Difficulty  progression.Difficulty
}

// UnavailableError reports that guidance could not be produced, either
// because the provider failed or because it returned nothing usable.
type UnavailableError struct {
	Mode Mode
	Err  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("remediation %s unavailable: %v", e.Mode, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }
