// Package questiongen generates lesson practice sets and sub-topic quizzes
// through structured LLM output.
package questiongen

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/abhisek/tutor/internal/answer"
	"github.com/abhisek/tutor/internal/llm"
	"github.com/abhisek/tutor/internal/logger"
	"github.com/abhisek/tutor/internal/progression"
)

const defaultCount = 5

// Config controls generation.
type Config struct {
	MaxTokens   int
	Temperature float64
}

func DefaultConfig() Config {
	return Config{MaxTokens: 1500, Temperature: 0.6}
}

// Generator produces questions from an LLM provider.
type Generator struct {
	provider llm.Provider
	cfg      Config
	log      *logger.Logger
}

func New(provider llm.Provider, cfg Config, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{provider: provider, cfg: cfg, log: log}
}

type questionOutput struct {
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Keywords   []string `json:"answer_keywords"`
	Hint       string   `json:"hint"`
	Units      string   `json:"units"`
	Difficulty int      `json:"difficulty"`
}

type listOutput struct {
	Questions []questionOutput `json:"questions"`
}

// Practice returns an ordered practice set for a lesson.
func (g *Generator) Practice(ctx context.Context, in PracticeInput) ([]Question, error) {
	if in.LessonTitle == "" {
		return nil, fmt.Errorf("practice: lesson title is required")
	}
	if in.Count <= 0 {
		in.Count = defaultCount
	}

	out, err := g.generate(llm.WithPurpose(ctx, llm.PurposePractice), PracticeSchema, buildPracticeMessage(in))
	if err != nil {
		return nil, fmt.Errorf("practice generation: %w", err)
	}

	qs := lo.FilterMap(out.Questions, func(o questionOutput, _ int) (Question, bool) {
		q := Question{
			Text:       strings.TrimSpace(o.Question),
			Answer:     strings.TrimSpace(o.Answer),
			Keywords:   cleanKeywords(o.Keywords),
			Hint:       strings.TrimSpace(o.Hint),
			Difficulty: in.Difficulty,
		}
		return q, q.Text != "" && q.Answer != ""
	})
	return g.finish("practice", qs, in.Count)
}

// Quiz returns questions for a sub-topic pitched at the student's mastery.
// Numeric answers carrying units are reduced to the bare number.
func (g *Generator) Quiz(ctx context.Context, in QuizInput) ([]Question, error) {
	if in.Subject == "" || in.SubTopic == "" || in.Grade <= 0 {
		return nil, fmt.Errorf("quiz: subject, sub-topic and grade are required")
	}
	if in.Count <= 0 {
		in.Count = defaultCount
	}

	out, err := g.generate(llm.WithPurpose(ctx, llm.PurposeQuiz), QuizSchema, buildQuizMessage(in))
	if err != nil {
		return nil, fmt.Errorf("quiz generation: %w", err)
	}

	qs := lo.FilterMap(out.Questions, func(o questionOutput, _ int) (Question, bool) {
		d := progression.Difficulty(o.Difficulty)
		if d <= 0 {
			d = progression.Difficulty(in.Grade)
		}
		q := Question{
			Text:       strings.TrimSpace(o.Question),
			Answer:     quizAnswer(o.Answer),
			Keywords:   cleanKeywords(o.Keywords),
			Hint:       strings.TrimSpace(o.Hint),
			Units:      strings.TrimSpace(o.Units),
			Difficulty: d,
		}
		return q, q.Text != "" && q.Answer != ""
	})
	return g.finish("quiz", qs, in.Count)
}

func (g *Generator) generate(ctx context.Context, schema *llm.Schema, msg string) (*listOutput, error) {
	if g.provider == nil {
		return nil, llm.ErrNotConfigured
	}

	req := llm.Prompt(systemPrompt, msg, g.cfg.MaxTokens)
	req.Schema = schema
	req.Temperature = g.cfg.Temperature

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	var out listOutput
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *Generator) finish(kind string, qs []Question, limit int) ([]Question, error) {
	if len(qs) == 0 {
		return nil, ErrNoQuestions
	}
	if len(qs) > limit {
		qs = qs[:limit]
	}
	g.log.Debug("questions generated", "kind", kind, "count", len(qs))
	return qs, nil
}

func quizAnswer(s string) string {
	s = strings.TrimSpace(s)
	if num, _, ok := answer.SplitUnits(s); ok {
		return num
	}
	return s
}

func cleanKeywords(ks []string) []string {
	trimmed := lo.Map(ks, func(k string, _ int) string { return strings.TrimSpace(k) })
	return lo.Uniq(lo.Compact(trimmed))
}
