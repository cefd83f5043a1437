package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nicole-studio/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("SUPABASE_URL", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gpt-4o-mini", cfg.VisionModel)
	assert.Equal(t, 800, cfg.VisionMaxTokens)
	assert.Equal(t, "dall-e-3", cfg.ImageModel)
	assert.Equal(t, 720*time.Hour, cfg.AttachmentTTL)
	assert.False(t, cfg.SupabaseEnabled())
}

func TestLoad_MissingProviderKeysAreNotFatal(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := config.Load()
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			Environment:       "development",
			LogLevel:          "info",
			VisionMaxTokens:   800,
			AttachmentTTL:     time.Hour,
			OpenAIBaseURL:     "https://api.openai.com/v1/",
			OpenRouterBaseURL: "https://openrouter.ai/api/v1/",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *config.Config) {}},
		{name: "bad environment", mutate: func(c *config.Config) { c.Environment = "staging" }, wantErr: true},
		{name: "bad log level", mutate: func(c *config.Config) { c.LogLevel = "trace" }, wantErr: true},
		{name: "zero vision tokens", mutate: func(c *config.Config) { c.VisionMaxTokens = 0 }, wantErr: true},
		{name: "bad base url", mutate: func(c *config.Config) { c.OpenAIBaseURL = "not a url" }, wantErr: true},
		{name: "supabase without key", mutate: func(c *config.Config) { c.SupabaseURL = "https://x.supabase.co" }, wantErr: true},
		{name: "supabase with key", mutate: func(c *config.Config) {
			c.SupabaseURL = "https://x.supabase.co"
			c.SupabaseServiceKey = "service"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
