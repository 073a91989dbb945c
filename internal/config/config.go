package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/tutor/internal/llm"
)

const envPrefix = "TUTOR"

type Config struct {
	DB          DBConfig          `mapstructure:"db"`
	Log         LogConfig         `mapstructure:"log"`
	LLM         LLMConfig         `mapstructure:"llm"`
	Lesson      LessonConfig      `mapstructure:"lesson"`
	Progression ProgressionConfig `mapstructure:"progression"`
	Outbox      OutboxConfig      `mapstructure:"outbox"`
	Curriculum  CurriculumConfig  `mapstructure:"curriculum"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type LLMConfig struct {
	Provider    string         `mapstructure:"provider"`
	Anthropic   ProviderConfig `mapstructure:"anthropic"`
	OpenAI      ProviderConfig `mapstructure:"openai"`
	Gemini      ProviderConfig `mapstructure:"gemini"`
	OpenRouter  ProviderConfig `mapstructure:"openrouter"`
	Timeout     time.Duration  `mapstructure:"timeout"`
	MaxAttempts int            `mapstructure:"max_attempts"`
	InitialWait time.Duration  `mapstructure:"initial_wait"`
	MaxWait     time.Duration  `mapstructure:"max_wait"`
}

type LessonConfig struct {
	MaxAttempts   int           `mapstructure:"max_attempts"`
	PracticeCount int           `mapstructure:"practice_count"`
	CheckDelay    time.Duration `mapstructure:"check_delay"`
	PracticeDelay time.Duration `mapstructure:"practice_delay"`
}

type ProgressionConfig struct {
	MasteryCap int `mapstructure:"mastery_cap"`
}

type OutboxConfig struct {
	MaxTries        uint          `mapstructure:"max_tries"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	FlushInterval   time.Duration `mapstructure:"flush_interval"`
}

type CurriculumConfig struct {
	// Path to a YAML catalog. Empty uses the embedded default.
	Path string `mapstructure:"path"`
}

// Load reads configuration from an optional YAML file, a .env file in the
// working directory, and TUTOR_* environment variables, in increasing order
// of precedence.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("tutor")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(dir + "/tutor")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.path", "")

	v.SetDefault("log.mode", "dev")
	v.SetDefault("log.level", "warn")

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", "claude-haiku")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", "gemini-flash")
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", "google/gemini-2.0-flash-001")
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.timeout", "30s")
	v.SetDefault("llm.max_attempts", 3)
	v.SetDefault("llm.initial_wait", "1s")
	v.SetDefault("llm.max_wait", "10s")

	v.SetDefault("lesson.max_attempts", 3)
	v.SetDefault("lesson.practice_count", 5)
	v.SetDefault("lesson.check_delay", "1500ms")
	v.SetDefault("lesson.practice_delay", "2s")

	v.SetDefault("progression.mastery_cap", 100)

	v.SetDefault("outbox.max_tries", 5)
	v.SetDefault("outbox.initial_interval", "200ms")
	v.SetDefault("outbox.max_interval", "5s")
	v.SetDefault("outbox.flush_interval", "2s")

	v.SetDefault("curriculum.path", "")
}

// Validate rejects values the rest of the system cannot work with.
func (c *Config) Validate() error {
	if c.Lesson.MaxAttempts < 1 {
		return fmt.Errorf("lesson.max_attempts must be at least 1, got %d", c.Lesson.MaxAttempts)
	}
	if c.Lesson.PracticeCount < 0 {
		return fmt.Errorf("lesson.practice_count must not be negative, got %d", c.Lesson.PracticeCount)
	}
	if c.Progression.MasteryCap <= 0 {
		return fmt.Errorf("progression.mastery_cap must be positive, got %d", c.Progression.MasteryCap)
	}
	if c.Outbox.MaxTries == 0 {
		return fmt.Errorf("outbox.max_tries must be at least 1")
	}
	return nil
}

// LLMProviderConfig converts the llm section into the provider layer's config.
// When no provider is configured it falls back to well-known API key env vars.
func (c *Config) LLMProviderConfig() (llm.Config, bool) {
	cfg := llm.DefaultConfig()
	cfg.Anthropic = llm.AnthropicConfig{APIKey: c.LLM.Anthropic.APIKey, Model: c.LLM.Anthropic.Model}
	cfg.OpenAI = llm.OpenAIConfig{APIKey: c.LLM.OpenAI.APIKey, Model: c.LLM.OpenAI.Model, BaseURL: c.LLM.OpenAI.BaseURL}
	cfg.Gemini = llm.GeminiConfig{APIKey: c.LLM.Gemini.APIKey, Model: c.LLM.Gemini.Model}
	cfg.OpenRouter = llm.OpenRouterConfig{APIKey: c.LLM.OpenRouter.APIKey, Model: c.LLM.OpenRouter.Model, BaseURL: c.LLM.OpenRouter.BaseURL}
	cfg.Timeout = c.LLM.Timeout
	cfg.Retry.MaxAttempts = c.LLM.MaxAttempts
	cfg.Retry.InitialWait = c.LLM.InitialWait
	cfg.Retry.MaxWait = c.LLM.MaxWait

	if c.LLM.Provider != "" {
		cfg.Provider = c.LLM.Provider
		return cfg, true
	}

	discovered, ok := llm.DiscoverConfig()
	if !ok {
		return cfg, false
	}
	discovered.Timeout = cfg.Timeout
	discovered.Retry = cfg.Retry
	return discovered, true
}
