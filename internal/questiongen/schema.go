package questiongen

import "github.com/abhisek/tutor/internal/llm"

func questionItem(withUnits bool) map[string]any {
	props := map[string]any{
		"question": map[string]any{
			"type":        "string",
			"description": "The question shown to the student, plain text",
		},
		"answer": map[string]any{
			"type":        "string",
			"description": "A short canonical answer: a word, phrase or number",
		},
		"answer_keywords": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Alternative accepted answers, each short",
		},
		"hint": map[string]any{
			"type":        "string",
			"description": "A one-sentence hint that does not reveal the answer",
		},
	}
	required := []any{"question", "answer", "answer_keywords", "hint"}
	if withUnits {
		props["units"] = map[string]any{
			"type":        "string",
			"description": "Units of a numeric answer, empty when none",
		}
		props["difficulty"] = map[string]any{
			"type":        "integer",
			"description": "The school year the question is pitched at",
		}
		required = append(required, "units", "difficulty")
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func questionList(withUnits bool) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":  "array",
				"items": questionItem(withUnits),
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	}
}

// PracticeSchema is the structured output for lesson practice sets.
var PracticeSchema = &llm.Schema{
	Name:        "practice-questions",
	Description: "A progressively harder list of practice questions for one lesson",
	Definition:  questionList(false),
}

// QuizSchema is the structured output for sub-topic quizzes.
var QuizSchema = &llm.Schema{
	Name:        "quiz-questions",
	Description: "Quiz questions for one sub-topic at a given school year",
	Definition:  questionList(true),
}
