package curriculum

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	c := Default()
	require.NotEmpty(t, c.Subjects())
	for _, s := range c.Subjects() {
		assert.NotEmpty(t, c.LessonsFor(s.ID), "subject %s has no lessons", s.ID)
	}
}

func TestLesson_Lookup(t *testing.T) {
	c := Default()

	l, ok := c.Lesson("adding-fractions")
	require.True(t, ok)
	assert.Equal(t, "maths", l.Subject)
	assert.Equal(t, "maths-fractions", l.ConceptID)
	assert.NotEmpty(t, l.Checks)
	assert.Contains(t, l.Explanation(), "common denominator")

	_, ok = c.Lesson("nope")
	assert.False(t, ok)
}

func TestLessonsFor_Ordered(t *testing.T) {
	c := Default()
	ls := c.LessonsFor("maths")
	require.Len(t, ls, 3)
	for i := 1; i < len(ls); i++ {
		assert.LessOrEqual(t, ls[i-1].Order, ls[i].Order)
	}
}

func TestNeighbors(t *testing.T) {
	c := Default()

	prev, next := c.Neighbors("percentages-of-amounts")
	require.NotNil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, "adding-fractions", prev.Slug)
	assert.Equal(t, "solving-linear-equations", next.Slug)

	prev, next = c.Neighbors("adding-fractions")
	assert.Nil(t, prev)
	assert.NotNil(t, next)

	prev, next = c.Neighbors("solving-linear-equations")
	assert.NotNil(t, prev)
	assert.Nil(t, next)

	prev, next = c.Neighbors("missing")
	assert.Nil(t, prev)
	assert.Nil(t, next)
}

func TestSubTopics(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{"Algebra", "Fractions", "Percentages"}, c.SubTopics("maths"))
	assert.Empty(t, c.SubTopics("history"))

	cc, ok := c.ConceptFor("science", "forces")
	require.True(t, ok)
	assert.Equal(t, "science-forces", cc.ID)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "unknown concept",
			yaml: `
subjects: [{id: s, name: S}]
concepts: [{id: c, subject: s, sub_topic: T, difficulty: 7}]
lessons:
  - {slug: a, title: A, concept: missing, checks: [{question: q, answer: a}]}
`,
			wantErr: "unknown concept",
		},
		{
			name: "duplicate slug",
			yaml: `
subjects: [{id: s, name: S}]
concepts: [{id: c, subject: s, sub_topic: T, difficulty: 7}]
lessons:
  - {slug: a, title: A, concept: c, checks: [{question: q, answer: a}]}
  - {slug: a, title: B, concept: c, checks: [{question: q, answer: a}]}
`,
			wantErr: "duplicate lesson slug",
		},
		{
			name: "no checks",
			yaml: `
subjects: [{id: s, name: S}]
concepts: [{id: c, subject: s, sub_topic: T, difficulty: 7}]
lessons:
  - {slug: a, title: A, concept: c}
`,
			wantErr: "has no checks",
		},
		{
			name:    "unknown field",
			yaml:    "subjects: [{id: s, nam: S}]\n",
			wantErr: "decode curriculum",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_InheritsConceptDifficulty(t *testing.T) {
	c, err := Load(strings.NewReader(`
subjects: [{id: s, name: S}]
concepts: [{id: c, subject: s, sub_topic: T, difficulty: 12}]
lessons:
  - {slug: a, title: A, concept: c, checks: [{question: q, answer: a}]}
`))
	require.NoError(t, err)
	l, ok := c.Lesson("a")
	require.True(t, ok)
	assert.EqualValues(t, 12, l.Difficulty)
	assert.Equal(t, "s", l.Subject)
}
