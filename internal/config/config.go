package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type Config struct {
	// OpenAI (vision analysis, image generation, direct chat)
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1/"`

	// OpenRouter (chat)
	OpenRouterAPIKey  string `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL string `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1/"`

	// Gemini (direct chat)
	GeminiAPIKey string `env:"GEMINI_API_KEY"`

	// Models
	DefaultChatModel string `env:"DEFAULT_CHAT_MODEL"`
	VisionModel      string `env:"VISION_MODEL" envDefault:"gpt-4o-mini"`
	VisionMaxTokens  int    `env:"VISION_MAX_TOKENS" envDefault:"800"`
	ImageModel       string `env:"IMAGE_MODEL" envDefault:"dall-e-3"`

	// Cost total persistence
	DatabaseURL    string `env:"DATABASE_URL"`
	CostSQLitePath string `env:"COST_SQLITE_PATH"`
	CostFilePath   string `env:"COST_FILE_PATH" envDefault:"data/nicole-studio-total-cost"`

	// Supabase (attachment storage)
	SupabaseURL           string `env:"SUPABASE_URL"`
	SupabaseServiceKey    string `env:"SUPABASE_SERVICE_KEY"`
	SupabaseStorageBucket string `env:"SUPABASE_STORAGE_BUCKET" envDefault:"chat-attachments"`

	AttachmentTTL time.Duration `env:"ATTACHMENT_TTL" envDefault:"720h"`

	// Server
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks formats only. Provider keys are optional here and reported
// per request when a call needs them.
func (c *Config) Validate() error {
	switch c.Environment {
	case "development", "production", "test":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, production or test, got %q", c.Environment)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	if c.VisionMaxTokens <= 0 {
		return fmt.Errorf("VISION_MAX_TOKENS must be positive")
	}
	if c.AttachmentTTL <= 0 {
		return fmt.Errorf("ATTACHMENT_TTL must be positive")
	}
	for name, raw := range map[string]string{
		"OPENAI_BASE_URL":     c.OpenAIBaseURL,
		"OPENROUTER_BASE_URL": c.OpenRouterBaseURL,
		"SUPABASE_URL":        c.SupabaseURL,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s is not a valid URL: %q", name, raw)
		}
	}
	if c.SupabaseURL != "" && c.SupabaseServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required when SUPABASE_URL is set")
	}
	return nil
}

// SupabaseEnabled reports whether attachments go to a storage bucket.
func (c *Config) SupabaseEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}
