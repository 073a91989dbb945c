package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// LessonStatus is the forward-only state of a lesson for one student.
type LessonStatus string

const (
	StatusNotStarted LessonStatus = "not-started"
	StatusStarted    LessonStatus = "started"
	StatusComplete   LessonStatus = "complete"
)

// MasteryRecord is the persisted progression for a (student, concept) pair.
type MasteryRecord struct {
	StudentID string
	ConceptID string
	Mastery   int
	XP        int
	Level     int
	UpdatedAt time.Time
}

// AttemptRecord counts submissions for a (student, lesson) pair.
type AttemptRecord struct {
	StudentID       string
	LessonSlug      string
	Attempts        int
	CorrectAttempts int
	LastAttemptAt   time.Time
}

type LessonProgress struct {
	StudentID   string
	LessonSlug  string
	Status      LessonStatus
	StartedAt   time.Time
	CompletedAt *time.Time
}

type BadgeRecord struct {
	Badge     string
	AwardedAt time.Time
}

// ProgressRepo reads progression state. Writes go through Store.Apply.
type ProgressRepo struct {
	db *sql.DB
}

var masteryColumns = []string{"student_id", "concept_id", "mastery", "xp", "level", "updated_at"}

// Mastery returns the record for one concept, or nil if the student has
// never attempted it.
func (r *ProgressRepo) Mastery(ctx context.Context, studentID, conceptID string) (*MasteryRecord, error) {
	recs, err := r.mastery(ctx, entsql.And(entsql.EQ("student_id", studentID), entsql.EQ("concept_id", conceptID)))
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return &recs[0], nil
}

// AllMastery returns every mastery record of a student, weakest first.
func (r *ProgressRepo) AllMastery(ctx context.Context, studentID string) ([]MasteryRecord, error) {
	return r.mastery(ctx, entsql.EQ("student_id", studentID))
}

func (r *ProgressRepo) mastery(ctx context.Context, p *entsql.Predicate) ([]MasteryRecord, error) {
	q, args := entsql.Dialect(dialect.SQLite).
		Select(masteryColumns...).
		From(entsql.Table("mastery")).
		Where(p).
		OrderBy("mastery", "concept_id").
		Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, unavailable("query mastery", err)
	}
	defer rows.Close()

	var out []MasteryRecord
	for rows.Next() {
		var m MasteryRecord
		if err := rows.Scan(&m.StudentID, &m.ConceptID, &m.Mastery, &m.XP, &m.Level, &m.UpdatedAt); err != nil {
			return nil, unavailable("scan mastery", err)
		}
		out = append(out, m)
	}
	return out, unavailable("query mastery", rows.Err())
}

var attemptColumns = []string{"student_id", "lesson_slug", "attempts", "correct_attempts", "last_attempt_at"}

// Attempts returns the counters for one lesson, or nil if none were recorded.
func (r *ProgressRepo) Attempts(ctx context.Context, studentID, lessonSlug string) (*AttemptRecord, error) {
	recs, err := r.attempts(ctx, entsql.And(entsql.EQ("student_id", studentID), entsql.EQ("lesson_slug", lessonSlug)))
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return &recs[0], nil
}

func (r *ProgressRepo) AllAttempts(ctx context.Context, studentID string) ([]AttemptRecord, error) {
	return r.attempts(ctx, entsql.EQ("student_id", studentID))
}

func (r *ProgressRepo) attempts(ctx context.Context, p *entsql.Predicate) ([]AttemptRecord, error) {
	q, args := entsql.Dialect(dialect.SQLite).
		Select(attemptColumns...).
		From(entsql.Table("attempts")).
		Where(p).
		OrderBy("lesson_slug").
		Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, unavailable("query attempts", err)
	}
	defer rows.Close()

	var out []AttemptRecord
	for rows.Next() {
		var a AttemptRecord
		if err := rows.Scan(&a.StudentID, &a.LessonSlug, &a.Attempts, &a.CorrectAttempts, &a.LastAttemptAt); err != nil {
			return nil, unavailable("scan attempts", err)
		}
		out = append(out, a)
	}
	return out, unavailable("query attempts", rows.Err())
}

// LessonStatus returns StatusNotStarted when no progress row exists.
func (r *ProgressRepo) LessonStatus(ctx context.Context, studentID, lessonSlug string) (LessonStatus, error) {
	q, args := entsql.Dialect(dialect.SQLite).
		Select("status").
		From(entsql.Table("lesson_progress")).
		Where(entsql.And(entsql.EQ("student_id", studentID), entsql.EQ("lesson_slug", lessonSlug))).
		Query()

	var status string
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return StatusNotStarted, nil
	}
	if err != nil {
		return "", unavailable("lesson status", err)
	}
	return LessonStatus(status), nil
}

func (r *ProgressRepo) AllLessonProgress(ctx context.Context, studentID string) ([]LessonProgress, error) {
	q, args := entsql.Dialect(dialect.SQLite).
		Select("student_id", "lesson_slug", "status", "started_at", "completed_at").
		From(entsql.Table("lesson_progress")).
		Where(entsql.EQ("student_id", studentID)).
		OrderBy("started_at").
		Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, unavailable("query lesson progress", err)
	}
	defer rows.Close()

	var out []LessonProgress
	for rows.Next() {
		var (
			lp        LessonProgress
			status    string
			completed sql.NullTime
		)
		if err := rows.Scan(&lp.StudentID, &lp.LessonSlug, &status, &lp.StartedAt, &completed); err != nil {
			return nil, unavailable("scan lesson progress", err)
		}
		lp.Status = LessonStatus(status)
		if completed.Valid {
			t := completed.Time
			lp.CompletedAt = &t
		}
		out = append(out, lp)
	}
	return out, unavailable("query lesson progress", rows.Err())
}

// Badges returns a student's badges in award order.
func (r *ProgressRepo) Badges(ctx context.Context, studentID string) ([]BadgeRecord, error) {
	q, args := entsql.Dialect(dialect.SQLite).
		Select("badge", "awarded_at").
		From(entsql.Table("badges")).
		Where(entsql.EQ("student_id", studentID)).
		OrderBy("awarded_at", "badge").
		Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, unavailable("query badges", err)
	}
	defer rows.Close()

	var out []BadgeRecord
	for rows.Next() {
		var b BadgeRecord
		if err := rows.Scan(&b.Badge, &b.AwardedAt); err != nil {
			return nil, unavailable("scan badges", err)
		}
		out = append(out, b)
	}
	return out, unavailable("query badges", rows.Err())
}

// ActivityDays returns the distinct UTC days on which a student submitted
// an answer, most recent first.
func (r *ProgressRepo) ActivityDays(ctx context.Context, studentID string) ([]time.Time, error) {
	q, args := entsql.Dialect(dialect.SQLite).
		Select("occurred_at").
		From(entsql.Table("applied_events")).
		Where(entsql.And(entsql.EQ("student_id", studentID), entsql.EQ("kind", "attempt"))).
		OrderBy(entsql.Desc("occurred_at")).
		Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, unavailable("query activity", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return nil, unavailable("scan activity", err)
		}
		at = at.UTC()
		day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
		if len(days) == 0 || !days[len(days)-1].Equal(day) {
			days = append(days, day)
		}
	}
	return days, unavailable("query activity", rows.Err())
}
