package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tutor/internal/curriculum"
	"github.com/abhisek/tutor/internal/store"
)

type fakeSource struct {
	mastery  []store.MasteryRecord
	progress []store.LessonProgress
	badges   []store.BadgeRecord
	days     []time.Time
	err      error
}

func (f *fakeSource) AllMastery(context.Context, string) ([]store.MasteryRecord, error) {
	return f.mastery, f.err
}

func (f *fakeSource) AllLessonProgress(context.Context, string) ([]store.LessonProgress, error) {
	return f.progress, nil
}

func (f *fakeSource) Badges(context.Context, string) ([]store.BadgeRecord, error) {
	return f.badges, nil
}

func (f *fakeSource) ActivityDays(context.Context, string) ([]time.Time, error) {
	return f.days, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStreak(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 4, 0, 0, time.UTC)
	tests := []struct {
		name string
		days []time.Time
		want int
	}{
		{"none", nil, 0},
		{"today only", []time.Time{day(2026, 3, 10)}, 1},
		{"three in a row", []time.Time{day(2026, 3, 10), day(2026, 3, 9), day(2026, 3, 8)}, 3},
		{"gap", []time.Time{day(2026, 3, 10), day(2026, 3, 8)}, 1},
		{"not today", []time.Time{day(2026, 3, 9), day(2026, 3, 8)}, 0},
		{"across month", []time.Time{day(2026, 3, 10), day(2026, 3, 9), day(2026, 3, 8), day(2026, 3, 7), day(2026, 3, 6), day(2026, 3, 5), day(2026, 3, 4), day(2026, 3, 3), day(2026, 3, 2), day(2026, 3, 1), day(2026, 2, 28)}, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Streak(tt.days, now))
		})
	}
}

func TestBuild(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	src := &fakeSource{
		mastery: []store.MasteryRecord{
			{ConceptID: "maths-fractions", Mastery: 70},
			{ConceptID: "maths-percentages", Mastery: 25},
			{ConceptID: "science-forces", Mastery: 55},
		},
		progress: []store.LessonProgress{
			{LessonSlug: "adding-fractions", Status: store.StatusComplete},
			{LessonSlug: "percentages-of-amounts", Status: store.StatusStarted},
		},
		badges: []store.BadgeRecord{{Badge: "⭐ First Try"}},
		days:   []time.Time{day(2026, 3, 10), day(2026, 3, 9)},
	}

	s, err := New(src, curriculum.Default(), WithClock(func() time.Time { return now })).Build(t.Context(), "s1")
	require.NoError(t, err)

	assert.Equal(t, 20+70+25+55, s.TotalXP)
	assert.Equal(t, 1, s.Level)
	assert.Equal(t, 70, s.XPIntoLevel)
	assert.Equal(t, 2, s.Streak)
	assert.Equal(t, 1, s.CompletedLessons)
	require.NotNil(t, s.Weakest)
	assert.Equal(t, "maths-percentages", s.Weakest.ConceptID)
	assert.Len(t, s.Badges, 1)

	// unattempted concepts count as zero mastery, so the first such lesson wins
	require.NotNil(t, s.Recommended)
	assert.Zero(t, mastery(src.mastery, s.Recommended.ConceptID))
}

func mastery(ms []store.MasteryRecord, concept string) int {
	for _, m := range ms {
		if m.ConceptID == concept {
			return m.Mastery
		}
	}
	return 0
}

func TestBuild_RecommendsLowestMastery(t *testing.T) {
	cat := curriculum.Default()
	var ms []store.MasteryRecord
	for _, c := range cat.Concepts("") {
		ms = append(ms, store.MasteryRecord{ConceptID: c.ID, Mastery: 90})
	}
	ms[len(ms)-1].Mastery = 10
	target := ms[len(ms)-1].ConceptID

	s, err := New(&fakeSource{mastery: ms}, cat).Build(t.Context(), "s1")
	require.NoError(t, err)
	require.NotNil(t, s.Recommended)
	assert.Equal(t, target, s.Recommended.ConceptID)
	require.NotNil(t, s.Weakest)
	assert.Equal(t, target, s.Weakest.ConceptID)
}

func TestBuild_NoWeakConcept(t *testing.T) {
	src := &fakeSource{mastery: []store.MasteryRecord{{ConceptID: "maths-fractions", Mastery: 40}}}
	s, err := New(src, curriculum.Default()).Build(t.Context(), "s1")
	require.NoError(t, err)
	assert.Nil(t, s.Weakest)
}

func TestBuild_AllComplete(t *testing.T) {
	cat := curriculum.Default()
	var progress []store.LessonProgress
	for _, l := range cat.AllLessons() {
		progress = append(progress, store.LessonProgress{LessonSlug: l.Slug, Status: store.StatusComplete})
	}
	s, err := New(&fakeSource{progress: progress}, cat).Build(t.Context(), "s1")
	require.NoError(t, err)
	assert.Nil(t, s.Recommended)
	assert.Equal(t, len(progress)*20, s.TotalXP)
}

func TestBuild_SourceError(t *testing.T) {
	_, err := New(&fakeSource{err: errors.New("disk")}, curriculum.Default()).Build(t.Context(), "s1")
	assert.Error(t, err)
}
