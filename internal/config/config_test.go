package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swzro/builders/internal/llm"
)

var configKeys = []string{
	"PORT", "DATABASE_URL", "LLM_PROVIDER", "GEMINI_API_KEY", "OPENAI_API_KEY",
	"OPENAI_BASE_URL", "LLM_MODEL", "JWT_SECRET", "JWT_EXPIRATION_HOURS",
	"FETCH_TIMEOUT", "FETCH_USE_BROWSER", "STORAGE_DIR", "PUBLIC_BASE_URL",
	"LOG_LEVEL", "LOG_PRETTY",
}

// clearEnv blanks every key; viper ignores empty variables.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, 24, cfg.JWT.ExpirationHours)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.False(t, cfg.FetchUseBrowser)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "http://localhost:8080", cfg.PublicBaseURL)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:11434/v1/")
	t.Setenv("LLM_MODEL", "llama3")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("FETCH_USE_BROWSER", "true")
	t.Setenv("PUBLIC_BASE_URL", "https://builders.example.com/")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, "sk-test", cfg.APIKey())
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.True(t, cfg.FetchUseBrowser)
	assert.Equal(t, "https://builders.example.com", cfg.PublicBaseURL)

	llmCfg := cfg.LLMConfig()
	assert.Equal(t, llm.ProviderOpenAI, llmCfg.Provider)
	assert.Equal(t, "http://localhost:11434/v1/", llmCfg.BaseURL)
	assert.Equal(t, "llama3", llmCfg.GetModel(llm.TierAdvanced))
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "builders.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7070\nlog_level: debug\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)

	t.Setenv("PORT", "6060")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Port, "environment overrides the file")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantMsg string
	}{
		{name: "provider", key: "LLM_PROVIDER", value: "claude", wantMsg: "LLM_PROVIDER"},
		{name: "port", key: "PORT", value: "70000", wantMsg: "PORT"},
		{name: "timeout", key: "FETCH_TIMEOUT", value: "-1s", wantMsg: "FETCH_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestAPIKey_Gemini(t *testing.T) {
	cfg := &Config{LLMProvider: "gemini", GeminiAPIKey: "g-key", OpenAIAPIKey: "o-key"}
	assert.Equal(t, "g-key", cfg.APIKey())
	assert.Equal(t, llm.ProviderGemini, cfg.LLMConfig().Provider)
}
