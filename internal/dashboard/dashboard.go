// Package dashboard summarizes a student's progress: level, streak, the
// next lesson to take and the concept that needs the most work.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/abhisek/tutor/internal/curriculum"
	"github.com/abhisek/tutor/internal/store"
)

const (
	xpPerCompletedLesson = 20
	xpPerLevel           = 100
	// WeakThreshold is the mastery below which a concept is called out.
	WeakThreshold = 40
)

// Source reads persisted progress.
type Source interface {
	AllMastery(ctx context.Context, studentID string) ([]store.MasteryRecord, error)
	AllLessonProgress(ctx context.Context, studentID string) ([]store.LessonProgress, error)
	Badges(ctx context.Context, studentID string) ([]store.BadgeRecord, error)
	ActivityDays(ctx context.Context, studentID string) ([]time.Time, error)
}

// Summary is everything the stats view shows.
type Summary struct {
	TotalXP     int
	Level       int
	XPIntoLevel int
	// Streak counts consecutive days with at least one answer, ending today.
	Streak           int
	CompletedLessons int
	// Recommended is the unfinished lesson whose concept has the lowest
	// mastery, nil when every lesson is complete.
	Recommended *curriculum.Lesson
	// Weakest is the lowest-mastery concept, set only below WeakThreshold.
	Weakest *store.MasteryRecord
	Mastery []store.MasteryRecord
	Badges  []store.BadgeRecord
}

type Builder struct {
	src     Source
	catalog *curriculum.Catalog
	now     func() time.Time
}

type Option func(*Builder)

// WithClock overrides the time used to anchor the streak.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

func New(src Source, catalog *curriculum.Catalog, opts ...Option) *Builder {
	b := &Builder{src: src, catalog: catalog, now: time.Now}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Build computes the summary for one student.
func (b *Builder) Build(ctx context.Context, studentID string) (*Summary, error) {
	mastery, err := b.src.AllMastery(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load mastery: %w", err)
	}
	progress, err := b.src.AllLessonProgress(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load lesson progress: %w", err)
	}
	earned, err := b.src.Badges(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load badges: %w", err)
	}
	days, err := b.src.ActivityDays(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}

	completed := lo.CountBy(progress, func(p store.LessonProgress) bool {
		return p.Status == store.StatusComplete
	})
	total := completed*xpPerCompletedLesson + lo.SumBy(mastery, func(m store.MasteryRecord) int { return m.Mastery })

	s := &Summary{
		TotalXP:          total,
		Level:            total / xpPerLevel,
		XPIntoLevel:      total % xpPerLevel,
		Streak:           Streak(days, b.now()),
		CompletedLessons: completed,
		Recommended:      b.recommend(mastery, progress),
		Mastery:          mastery,
		Badges:           earned,
	}
	if len(mastery) > 0 {
		weakest := lo.MinBy(mastery, func(a, b store.MasteryRecord) bool { return a.Mastery < b.Mastery })
		if weakest.Mastery < WeakThreshold {
			s.Weakest = &weakest
		}
	}
	return s, nil
}

// recommend picks the first unfinished lesson, in catalog order, whose
// concept mastery is lowest. Concepts never attempted count as zero.
func (b *Builder) recommend(mastery []store.MasteryRecord, progress []store.LessonProgress) *curriculum.Lesson {
	byConcept := lo.SliceToMap(mastery, func(m store.MasteryRecord) (string, int) { return m.ConceptID, m.Mastery })
	done := lo.SliceToMap(
		lo.Filter(progress, func(p store.LessonProgress, _ int) bool { return p.Status == store.StatusComplete }),
		func(p store.LessonProgress) (string, bool) { return p.LessonSlug, true },
	)

	var pick *curriculum.Lesson
	lowest := 0
	for _, l := range b.catalog.AllLessons() {
		if done[l.Slug] {
			continue
		}
		level := byConcept[l.ConceptID]
		if pick == nil || level < lowest {
			pick, lowest = l, level
		}
	}
	return pick
}

// Streak counts consecutive UTC days in days ending on now's day. days must
// be distinct and most recent first.
func Streak(days []time.Time, now time.Time) int {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	n := 0
	for _, d := range days {
		if !d.Equal(day) {
			break
		}
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}
