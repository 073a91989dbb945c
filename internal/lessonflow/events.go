package lessonflow

import (
	"github.com/abhisek/tutor/internal/outbox"
	"github.com/abhisek/tutor/internal/progression"
)

func (f *Flow) emit(e outbox.Event) {
	if f.deps.Outbox == nil {
		return
	}
	f.deps.Outbox.Enqueue(e)
}

func (f *Flow) attemptEvent(studentID string, correct bool) outbox.Event {
	e := outbox.NewEvent(outbox.KindAttempt, studentID)
	e.LessonSlug = f.lesson.Slug
	e.ConceptID = f.lesson.ConceptID
	e.Correct = correct
	return e
}

func (f *Flow) actionEvent(studentID string, a progression.Action, score float64) outbox.Event {
	e := outbox.NewEvent(outbox.KindActionXP, studentID)
	e.LessonSlug = f.lesson.Slug
	e.ConceptID = f.lesson.ConceptID
	e.Action = string(a)
	e.Score = score
	return e
}

// masteryEvent records one fully correct answer at the lesson's difficulty.
func (f *Flow) masteryEvent(studentID string) outbox.Event {
	e := outbox.NewEvent(outbox.KindMastery, studentID)
	e.LessonSlug = f.lesson.Slug
	e.ConceptID = f.lesson.ConceptID
	e.Score = 1
	e.Difficulty = int(f.lesson.Difficulty)
	return e
}
