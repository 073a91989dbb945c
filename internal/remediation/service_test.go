package remediation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tutor/internal/llm"
)

func fractionsMiss() HintInput {
	return HintInput{
		Subject:       "maths",
		LessonTitle:   "Adding Fractions",
		Explanation:   "To add fractions, make the denominators the same first.",
		Question:      "What is 1/4 + 1/4?",
		StudentAnswer: "2/8",
		CorrectAnswer: "1/2",
		Advisory:      "Students often add the denominators.",
		Difficulty:    7,
	}
}

func TestHint(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText("  You added the bottom numbers. What stays the same when the pieces are the same size?  "))
	svc := NewService(mock, DefaultConfig(), nil)

	text, err := svc.Hint(t.Context(), fractionsMiss())
	require.NoError(t, err)
	assert.Equal(t, "You added the bottom numbers. What stays the same when the pieces are the same size?", text)

	call, ok := mock.LastCall()
	require.True(t, ok)
	assert.Equal(t, systemPrompt, call.System)
	assert.Contains(t, call.Messages[0].Content, "Student answer:\n2/8")
	assert.Contains(t, call.Messages[0].Content, "Do NOT give the correct answer")
	assert.Contains(t, call.Messages[0].Content, "Students often add the denominators.")
	assert.Contains(t, call.Messages[0].Content, "Year 7")
}

func TestReteach(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText("Think of a pizza cut into quarters."))
	svc := NewService(mock, DefaultConfig(), nil)

	text, err := svc.Reteach(t.Context(), fractionsMiss())
	require.NoError(t, err)
	assert.Equal(t, "Think of a pizza cut into quarters.", text)

	call, _ := mock.LastCall()
	assert.Contains(t, call.Messages[0].Content, "Original explanation:\nTo add fractions")
	assert.Contains(t, call.Messages[0].Content, "different wording")
}

func TestAsk(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText("A denominator is the bottom number."))
	svc := NewService(mock, DefaultConfig(), nil)

	text, err := svc.Ask(t.Context(), AskInput{LessonTitle: "Adding Fractions", Question: "what is a denominator?", Difficulty: 8})
	require.NoError(t, err)
	assert.Equal(t, "A denominator is the bottom number.", text)

	call, _ := mock.LastCall()
	assert.Contains(t, call.Messages[0].Content, "No explanation provided")
}

func TestUnavailable(t *testing.T) {
	tests := []struct {
		name string
		svc  *Service
		run  func(*Service) (string, error)
		mode Mode
	}{
		{
			name: "provider failure",
			svc:  NewService(llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}}), DefaultConfig(), nil),
			run:  func(s *Service) (string, error) { return s.Hint(context.Background(), fractionsMiss()) },
			mode: ModeHint,
		},
		{
			name: "empty output",
			svc:  NewService(llm.NewMockProvider(llm.MockText(`""`)), DefaultConfig(), nil),
			run:  func(s *Service) (string, error) { return s.Reteach(context.Background(), fractionsMiss()) },
			mode: ModeReteach,
		},
		{
			name: "no provider",
			svc:  NewService(nil, DefaultConfig(), nil),
			run:  func(s *Service) (string, error) { return s.Hint(context.Background(), fractionsMiss()) },
			mode: ModeHint,
		},
		{
			name: "blank question",
			svc:  NewService(llm.NewMockProvider(), DefaultConfig(), nil),
			run:  func(s *Service) (string, error) { return s.Ask(context.Background(), AskInput{Question: "  "}) },
			mode: ModeAsk,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := tt.run(tt.svc)
			assert.Empty(t, text)
			var unavail *UnavailableError
			require.ErrorAs(t, err, &unavail)
			assert.Equal(t, tt.mode, unavail.Mode)
		})
	}
}
