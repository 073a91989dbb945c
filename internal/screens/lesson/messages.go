package lesson

import "github.com/abhisek/tutor/internal/lessonflow"

// resultMsg carries the outcome of a check or practice submission.
type resultMsg struct {
	Result lessonflow.Result
	Err    error
}

// stateMsg is sent when an advance or continue finishes.
type stateMsg struct {
	State lessonflow.State
	Err   error
}

// holdDoneMsg ends the pause after feedback.
type holdDoneMsg struct{}
