// Package outbox queues progress writes locally and delivers them to the
// persistence layer with retries, so a transient write failure never blocks
// a student and is not silently lost.
package outbox

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies what an event records.
type Kind string

const (
	KindLessonStarted   Kind = "lesson_started"
	KindAttempt         Kind = "attempt"
	KindActionXP        Kind = "action_xp"
	KindMastery         Kind = "mastery"
	KindBadges          Kind = "badges"
	KindLessonCompleted Kind = "lesson_completed"
)

// ErrInvalidEvent marks an event that can never be applied. Such events are
// dead-lettered rather than retried.
var ErrInvalidEvent = errors.New("outbox: invalid event")

// Event is one progress write. ID is the idempotency key: a sink must apply
// each ID at most once.
type Event struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	StudentID  string    `json:"student_id"`
	LessonSlug string    `json:"lesson_slug,omitempty"`
	ConceptID  string    `json:"concept_id,omitempty"`
	Correct    bool      `json:"correct,omitempty"`
	Score      float64   `json:"score,omitempty"`
	Difficulty int       `json:"difficulty,omitempty"`
	Action     string    `json:"action,omitempty"`
	Badges     []string  `json:"badges,omitempty"`
	At         time.Time `json:"at"`
}

// NewEvent returns an event of kind k for a student with a fresh ID.
func NewEvent(k Kind, studentID string) Event {
	return Event{
		ID:        uuid.NewString(),
		Kind:      k,
		StudentID: studentID,
		At:        time.Now().UTC(),
	}
}

// Validate checks the fields each kind needs.
func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidEvent)
	}
	if e.StudentID == "" {
		return fmt.Errorf("%w: %s event %s has no student", ErrInvalidEvent, e.Kind, e.ID)
	}
	switch e.Kind {
	case KindLessonStarted, KindAttempt, KindLessonCompleted:
		if e.LessonSlug == "" {
			return fmt.Errorf("%w: %s event %s has no lesson", ErrInvalidEvent, e.Kind, e.ID)
		}
	case KindMastery:
		if e.ConceptID == "" {
			return fmt.Errorf("%w: mastery event %s has no concept", ErrInvalidEvent, e.ID)
		}
		if e.Score < 0 || e.Score > 1 {
			return fmt.Errorf("%w: mastery event %s score %v out of range", ErrInvalidEvent, e.ID, e.Score)
		}
	case KindActionXP:
		if e.Action == "" || e.ConceptID == "" {
			return fmt.Errorf("%w: action_xp event %s needs an action and a concept", ErrInvalidEvent, e.ID)
		}
	case KindBadges:
		if len(e.Badges) == 0 {
			return fmt.Errorf("%w: badges event %s is empty", ErrInvalidEvent, e.ID)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, e.Kind)
	}
	return nil
}
