// Package remediation produces hints, reteach explanations and answers to
// student questions from a text-generation provider.
package remediation

import (
	"context"
	"errors"
	"strings"

	"github.com/abhisek/tutor/internal/llm"
	"github.com/abhisek/tutor/internal/logger"
)

// Config holds generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

func DefaultConfig() Config {
	return Config{MaxTokens: 300, Temperature: 0.6}
}

// Service generates remediation text.
type Service struct {
	provider llm.Provider
	cfg      Config
	log      *logger.Logger
}

func NewService(provider llm.Provider, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{provider: provider, cfg: cfg, log: log}
}

// Hint returns a short nudge for a first miss.
func (s *Service) Hint(ctx context.Context, in HintInput) (string, error) {
	if in.Question == "" || in.CorrectAnswer == "" {
		return "", &UnavailableError{Mode: ModeHint, Err: errors.New("question and correct answer are required")}
	}
	return s.generate(ctx, ModeHint, llm.PurposeHint, buildHintMessage(in))
}

// Reteach re-explains the concept after repeated misses.
func (s *Service) Reteach(ctx context.Context, in HintInput) (string, error) {
	if in.Question == "" || in.CorrectAnswer == "" {
		return "", &UnavailableError{Mode: ModeReteach, Err: errors.New("question and correct answer are required")}
	}
	return s.generate(ctx, ModeReteach, llm.PurposeReteach, buildReteachMessage(in))
}

// Ask answers a free-form question about a lesson.
func (s *Service) Ask(ctx context.Context, in AskInput) (string, error) {
	if strings.TrimSpace(in.Question) == "" {
		return "", &UnavailableError{Mode: ModeAsk, Err: errors.New("no question provided")}
	}
	return s.generate(ctx, ModeAsk, llm.PurposeAsk, buildAskMessage(in))
}

func (s *Service) generate(ctx context.Context, mode Mode, purpose llm.Purpose, msg string) (string, error) {
	if s.provider == nil {
		return "", &UnavailableError{Mode: mode, Err: llm.ErrNotConfigured}
	}

	ctx = llm.WithPurpose(ctx, purpose)
	req := llm.Prompt(systemPrompt, msg, s.cfg.MaxTokens)
	req.Temperature = s.cfg.Temperature

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		s.log.Warn("remediation failed", "mode", mode, "error", err)
		return "", &UnavailableError{Mode: mode, Err: err}
	}

	text := resp.Text()
	if text == "" {
		return "", &UnavailableError{Mode: mode, Err: errors.New("empty response")}
	}
	return text, nil
}
