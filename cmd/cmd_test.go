package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tutor/internal/app"
	"github.com/abhisek/tutor/internal/lessonflow"
)

// run executes the root command with args against a fresh database.
func run(t *testing.T, db, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--db", db}, args...))
	err := rootCmd.ExecuteContext(t.Context())
	return out.String(), err
}

func setupEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TUTOR_LLM_PROVIDER", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	return filepath.Join(t.TempDir(), "tutor.db")
}

func TestCurriculumCommands(t *testing.T) {
	db := setupEnv(t)

	out, err := run(t, db, "", "curriculum", "lessons", "maths")
	require.NoError(t, err)
	assert.Contains(t, out, "adding-fractions")

	out, err = run(t, db, "", "curriculum", "subtopics", "science")
	require.NoError(t, err)
	assert.Contains(t, out, "Forces")

	_, err = run(t, db, "", "curriculum", "lessons", "history")
	assert.Error(t, err)
}

func TestStatsAfterLesson(t *testing.T) {
	db := setupEnv(t)

	_, err := run(t, db, "", "student", "add", "Ada", "ada@example.com", "7")
	require.NoError(t, err)

	// play the lesson through the same wiring the lesson command uses
	ctx := t.Context()
	a, err := app.Open(ctx, app.Options{DBPath: db, LLM: true})
	require.NoError(t, err)
	sess, err := a.Login(ctx, "ada@example.com")
	require.NoError(t, err)
	flow, err := lessonflow.New(sess, a.Catalog, "adding-fractions", a.LessonDeps(), a.LessonConfig())
	require.NoError(t, err)

	for range 2 {
		_, err = flow.Advance(ctx)
		require.NoError(t, err)
	}
	for _, ans := range []string{"2/3", "3/4"} {
		res, err := flow.SubmitCheck(ctx, ans)
		require.NoError(t, err)
		require.True(t, res.Correct)
	}
	// without an LLM the practice set is empty
	s, err := flow.Advance(ctx)
	require.NoError(t, err)
	require.Equal(t, lessonflow.StateComplete, s)
	require.NoError(t, a.Close(ctx))

	out, err := run(t, db, "", "--student", "ada@example.com", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Lessons complete: 1")
	assert.Contains(t, out, "⭐ First Try")
}

func TestLessonUnknownSlug(t *testing.T) {
	db := setupEnv(t)

	_, err := run(t, db, "", "student", "add", "Ada", "ada@example.com", "7")
	require.NoError(t, err)

	_, err = run(t, db, "", "--student", "ada@example.com", "lesson", "no-such-lesson")
	assert.Error(t, err)
}

func TestQuizNeedsLLM(t *testing.T) {
	db := setupEnv(t)

	_, err := run(t, db, "", "student", "add", "Ada", "ada@example.com", "7")
	require.NoError(t, err)

	_, err = run(t, db, "", "--student", "ada@example.com", "quiz", "maths", "Fractions")
	assert.ErrorContains(t, err, "LLM provider")
}

func TestLLMList_Empty(t *testing.T) {
	db := setupEnv(t)
	out, err := run(t, db, "", "llm", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No LLM requests recorded.")
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.0012", formatCost(0.0012))
	assert.Equal(t, "$1.50", formatCost(1.5))
	assert.Equal(t, "abc", truncate("abcdef", 3))
}
