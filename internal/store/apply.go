package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/tutor/internal/outbox"
	"github.com/abhisek/tutor/internal/progression"
)

// Apply persists one outbox event. Each event ID is applied at most once;
// redelivery is a no-op. Counters are incremented in SQL so concurrent
// sessions for the same student never overwrite each other.
func (s *Store) Apply(ctx context.Context, e outbox.Event) error {
	if err := e.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin apply", err)
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM students WHERE id = ?`, e.StudentID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: unknown student %q", outbox.ErrInvalidEvent, e.StudentID)
	}
	if err != nil {
		return unavailable("lookup student", err)
	}

	seq, err := s.seq.Next(ctx, tx)
	if err != nil {
		return unavailable("apply", err)
	}

	now := time.Now().UTC()
	q, args := entsql.Dialect(dialect.SQLite).
		Insert("applied_events").
		Columns("event_id", "sequence", "kind", "student_id", "occurred_at", "applied_at").
		Values(e.ID, seq, string(e.Kind), e.StudentID, e.At.UTC(), now).
		OnConflict(entsql.ConflictColumns("event_id"), entsql.DoNothing()).
		Query()
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return unavailable("record event", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		s.log.Debug("event already applied", "event_id", e.ID, "kind", e.Kind)
		return nil
	}

	switch e.Kind {
	case outbox.KindLessonStarted:
		err = markStarted(ctx, tx, e)
	case outbox.KindAttempt:
		err = s.applyAttempt(ctx, tx, e)
	case outbox.KindLessonCompleted:
		err = markComplete(ctx, tx, e)
	case outbox.KindMastery:
		err = s.applyMastery(ctx, tx, e)
	case outbox.KindActionXP:
		err = applyActionXP(ctx, tx, e)
	case outbox.KindBadges:
		err = awardBadges(ctx, tx, e)
	}
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return unavailable("commit apply", err)
	}
	s.log.Debug("event applied", "event_id", e.ID, "kind", e.Kind, "sequence", seq)
	return nil
}

func markStarted(ctx context.Context, tx *sql.Tx, e outbox.Event) error {
	q, args := entsql.Dialect(dialect.SQLite).
		Insert("lesson_progress").
		Columns("student_id", "lesson_slug", "status", "started_at").
		Values(e.StudentID, e.LessonSlug, string(StatusStarted), e.At.UTC()).
		OnConflict(entsql.ConflictColumns("student_id", "lesson_slug"), entsql.DoNothing()).
		Query()
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return unavailable("mark lesson started", err)
	}
	return nil
}

// markComplete moves a lesson to complete. Status never regresses and the
// first completion time is kept.
func markComplete(ctx context.Context, tx *sql.Tx, e outbox.Event) error {
	at := e.At.UTC()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO lesson_progress (student_id, lesson_slug, status, started_at, completed_at)
		VALUES (?, ?, 'complete', ?, ?)
		ON CONFLICT (student_id, lesson_slug) DO UPDATE SET
			status = 'complete',
			completed_at = COALESCE(lesson_progress.completed_at, excluded.completed_at)`,
		e.StudentID, e.LessonSlug, at, at,
	)
	if err != nil {
		return unavailable("mark lesson complete", err)
	}
	return nil
}

func (s *Store) applyAttempt(ctx context.Context, tx *sql.Tx, e outbox.Event) error {
	correct := 0
	if e.Correct {
		correct = 1
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO attempts (student_id, lesson_slug, attempts, correct_attempts, last_attempt_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT (student_id, lesson_slug) DO UPDATE SET
			attempts = attempts + 1,
			correct_attempts = correct_attempts + excluded.correct_attempts,
			last_attempt_at = excluded.last_attempt_at`,
		e.StudentID, e.LessonSlug, correct, e.At.UTC(),
	)
	if err != nil {
		return unavailable("record attempt", err)
	}
	// An attempt implies the lesson was started, even if that event was lost.
	return markStarted(ctx, tx, e)
}

// applyMastery reads the current record inside the apply transaction and
// writes back what the progression engine computes from it. The store runs
// a single connection, so no other apply interleaves between the two.
func (s *Store) applyMastery(ctx context.Context, tx *sql.Tx, e outbox.Event) error {
	var prior progression.Record
	var level int
	err := tx.QueryRowContext(ctx,
		`SELECT mastery, xp, level FROM mastery WHERE student_id = ? AND concept_id = ?`,
		e.StudentID, e.ConceptID,
	).Scan(&prior.Mastery, &prior.XP, &level)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return unavailable("read mastery", err)
	}

	res, err := s.engine.Apply(prior, e.Score, progression.Difficulty(e.Difficulty))
	if err != nil {
		return fmt.Errorf("%w: %v", outbox.ErrInvalidEvent, err)
	}
	level = max(level, progression.LevelForScore(e.Score*100))

	q, args := entsql.Dialect(dialect.SQLite).
		Insert("mastery").
		Columns("student_id", "concept_id", "mastery", "xp", "level", "updated_at").
		Values(e.StudentID, e.ConceptID, res.Mastery, res.XP, level, e.At.UTC()).
		OnConflict(
			entsql.ConflictColumns("student_id", "concept_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return unavailable("update mastery", err)
	}
	s.log.Debug("mastery updated", "student_id", e.StudentID, "concept_id", e.ConceptID,
		"delta", res.Delta, "mastery", res.Mastery, "cap", s.engine.Cap())
	return nil
}

func applyActionXP(ctx context.Context, tx *sql.Tx, e outbox.Event) error {
	action := progression.Action(e.Action)
	if !action.Valid() {
		return fmt.Errorf("%w: unknown action %q", outbox.ErrInvalidEvent, e.Action)
	}
	xp := progression.ActionXP(action, e.Score)

	_, err := tx.ExecContext(ctx, `
		INSERT INTO mastery (student_id, concept_id, mastery, xp, level, updated_at)
		VALUES (?, ?, 0, ?, 1, ?)
		ON CONFLICT (student_id, concept_id) DO UPDATE SET
			xp = xp + excluded.xp,
			updated_at = excluded.updated_at`,
		e.StudentID, e.ConceptID, xp, e.At.UTC(),
	)
	if err != nil {
		return unavailable("award action xp", err)
	}
	return nil
}

func awardBadges(ctx context.Context, tx *sql.Tx, e outbox.Event) error {
	for _, b := range e.Badges {
		q, args := entsql.Dialect(dialect.SQLite).
			Insert("badges").
			Columns("student_id", "badge", "awarded_at").
			Values(e.StudentID, b, e.At.UTC()).
			OnConflict(entsql.ConflictColumns("student_id", "badge"), entsql.DoNothing()).
			Query()
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return unavailable("award badge", err)
		}
	}
	return nil
}
