package questiongen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tutor/internal/llm"
	"github.com/abhisek/tutor/internal/progression"
)

type q = map[string]any

func practiceItem(question, ans string, keywords ...string) q {
	if keywords == nil {
		keywords = []string{}
	}
	return q{"question": question, "answer": ans, "answer_keywords": keywords, "hint": "Think it through."}
}

func quizItem(question, ans, units string, difficulty int) q {
	return q{
		"question": question, "answer": ans, "answer_keywords": []string{},
		"hint": "", "units": units, "difficulty": difficulty,
	}
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		mastery int
		want    Band
	}{
		{0, BandEasy},
		{39, BandEasy},
		{40, BandStandard},
		{59, BandStandard},
		{60, BandMultiStep},
		{79, BandMultiStep},
		{80, BandHard},
		{100, BandHard},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BandFor(tt.mastery), "mastery %d", tt.mastery)
	}
}

func TestPractice(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockJSON(q{"questions": []q{
		practiceItem("What is 1/3 + 1/3?", "2/3", " two thirds ", "two thirds", ""),
		practiceItem("   ", "1"),
		practiceItem("What is 1/2 + 1/4?", " "),
		practiceItem("What is 2/5 + 1/5?", "3/5"),
	}}))
	gen := New(mock, DefaultConfig(), nil)

	qs, err := gen.Practice(t.Context(), PracticeInput{LessonTitle: "Adding Fractions", Difficulty: 7, Count: 5})
	require.NoError(t, err)
	require.Len(t, qs, 2)

	assert.Equal(t, "What is 1/3 + 1/3?", qs[0].Text)
	assert.Equal(t, "2/3", qs[0].Answer)
	assert.Equal(t, []string{"two thirds"}, qs[0].Keywords)
	assert.Equal(t, progression.Difficulty(7), qs[0].Difficulty)
	assert.Equal(t, "3/5", qs[1].Answer)

	call, _ := mock.LastCall()
	assert.Equal(t, PracticeSchema, call.Schema)
	assert.Contains(t, call.Messages[0].Content, "Generate 5 practice questions")
	assert.Contains(t, call.Messages[0].Content, "progressively harder")
}

func TestPractice_TruncatesToCount(t *testing.T) {
	items := []q{}
	for range 7 {
		items = append(items, practiceItem("What is 2 + 2?", "4"))
	}
	gen := New(llm.NewMockProvider(llm.MockJSON(q{"questions": items})), DefaultConfig(), nil)

	qs, err := gen.Practice(t.Context(), PracticeInput{LessonTitle: "Sums", Difficulty: 7, Count: 3})
	require.NoError(t, err)
	assert.Len(t, qs, 3)
}

func TestPractice_NoValidQuestions(t *testing.T) {
	gen := New(llm.NewMockProvider(llm.MockJSON(q{"questions": []q{practiceItem("", "")}})), DefaultConfig(), nil)

	_, err := gen.Practice(t.Context(), PracticeInput{LessonTitle: "Adding Fractions"})
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestPractice_ProviderFailure(t *testing.T) {
	gen := New(llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}}), DefaultConfig(), nil)

	_, err := gen.Practice(t.Context(), PracticeInput{LessonTitle: "Adding Fractions"})
	var unavail *llm.ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
}

func TestPractice_SchemaViolation(t *testing.T) {
	gen := New(llm.NewMockProvider(llm.MockJSON(q{"items": []q{}})), DefaultConfig(), nil)

	_, err := gen.Practice(t.Context(), PracticeInput{LessonTitle: "Adding Fractions"})
	var inv *llm.ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}

func TestQuiz(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockJSON(q{"questions": []q{
		quizItem("A crate weighs 382.50 kg. What is its mass?", "382.50 kg", "kg", 9),
		quizItem("Add 1/2 and 1/4.", "3/4", "", 0),
		quizItem("Which organelle releases energy?", "Mitochondria", "", 9),
	}}))
	gen := New(mock, DefaultConfig(), nil)

	qs, err := gen.Quiz(t.Context(), QuizInput{Subject: "maths", SubTopic: "measures", Grade: 9, Mastery: 60})
	require.NoError(t, err)
	require.Len(t, qs, 3)

	assert.Equal(t, "382.50", qs[0].Answer)
	assert.Equal(t, "kg", qs[0].Units)
	assert.Equal(t, "3/4", qs[1].Answer)
	assert.Equal(t, progression.Difficulty(9), qs[1].Difficulty, "missing difficulty falls back to grade")
	assert.Equal(t, "Mitochondria", qs[2].Answer)

	call, _ := mock.LastCall()
	assert.Contains(t, call.Messages[0].Content, "Difficulty should be multi-step")
	assert.Contains(t, call.Messages[0].Content, "Generate 5 quiz questions")
}

func TestQuiz_RequiresInputs(t *testing.T) {
	gen := New(llm.NewMockProvider(), DefaultConfig(), nil)
	_, err := gen.Quiz(t.Context(), QuizInput{Subject: "maths", Grade: 8})
	require.Error(t, err)
}

func TestQuizAnswer(t *testing.T) {
	tests := map[string]string{
		"382.50 kg":      "382.50",
		"-4 °C":          "-4",
		" 12 ":           "12",
		"1/2":            "1/2",
		"3 and 4":        "3 and 4",
		"photosynthesis": "photosynthesis",
	}
	for in, want := range tests {
		assert.Equal(t, want, quizAnswer(in), "quizAnswer(%q)", in)
	}
}
