// Package config loads service configuration from the environment, an optional
// config file and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/swzro/builders/internal/llm"
)

// Config is the resolved configuration for the server and CLI.
type Config struct {
	Port        int
	DatabaseURL string

	LLMProvider   string
	GeminiAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	// LLMModel, when set, replaces every tier's default model.
	LLMModel string

	JWT JWTConfig

	FetchTimeout    time.Duration
	FetchUseBrowser bool

	StorageDir    string
	PublicBaseURL string

	LogLevel  string
	LogPretty bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("LLM_PROVIDER", string(llm.ProviderGemini))
	v.SetDefault("JWT_EXPIRATION_HOURS", 24)
	v.SetDefault("FETCH_TIMEOUT", "15s")
	v.SetDefault("FETCH_USE_BROWSER", false)
	v.SetDefault("STORAGE_DIR", "./data/objects")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
}

// Load reads configuration. Environment variables take precedence over configFile,
// which may be empty. A missing configFile is an error; a malformed value is an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:          v.GetInt("PORT"),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		LLMProvider:   strings.ToLower(strings.TrimSpace(v.GetString("LLM_PROVIDER"))),
		GeminiAPIKey:  v.GetString("GEMINI_API_KEY"),
		OpenAIAPIKey:  v.GetString("OPENAI_API_KEY"),
		OpenAIBaseURL: v.GetString("OPENAI_BASE_URL"),
		LLMModel:      v.GetString("LLM_MODEL"),
		JWT: JWTConfig{
			Secret:          v.GetString("JWT_SECRET"),
			ExpirationHours: v.GetInt("JWT_EXPIRATION_HOURS"),
		},
		FetchTimeout:    v.GetDuration("FETCH_TIMEOUT"),
		FetchUseBrowser: v.GetBool("FETCH_USE_BROWSER"),
		StorageDir:      v.GetString("STORAGE_DIR"),
		PublicBaseURL:   strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogPretty:       v.GetBool("LOG_PRETTY"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no usable fallback.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	switch llm.Provider(c.LLMProvider) {
	case llm.ProviderGemini, llm.ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be gemini or openai, got %q", c.LLMProvider))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout))
	}
	return errors.Join(errs...)
}

// APIKey returns the key for the configured provider.
func (c *Config) APIKey() string {
	if llm.Provider(c.LLMProvider) == llm.ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// LLMConfig returns the model configuration for the configured provider.
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.ConfigFor(c.LLMProvider)
	if c.OpenAIBaseURL != "" {
		cfg.BaseURL = c.OpenAIBaseURL
	}
	if c.LLMModel != "" {
		cfg = cfg.WithAllModels(c.LLMModel)
	}
	return cfg
}
