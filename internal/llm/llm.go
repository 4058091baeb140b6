// File path: internal/llm/llm.go
package llm

import (
	"os"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/termcheck/termcheck/internal/common"
	"github.com/termcheck/termcheck/internal/llm/providers"
)

type Request = providers.Request

type Provider = providers.Provider

// Config selects and tunes the AI capability. Provider choice happens once
// at construction so differently configured engines can coexist.
type Config struct {
	APIKey    string
	Endpoint  string
	ChatModel string
	Timeout   time.Duration
}

// LoadConfig reads provider settings from the environment.
func LoadConfig() Config {
	cfg := Config{
		APIKey:    strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Endpoint:  strings.TrimSpace(os.Getenv("OPENAI_ENDPOINT")),
		ChatModel: strings.TrimSpace(os.Getenv("OPENAI_CHAT_MODEL")),
		Timeout:   15 * time.Second,
	}
	if raw := strings.TrimSpace(os.Getenv("LLM_TIMEOUT")); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			cfg.Timeout = parsed
		} else {
			common.Logger().Warn("llm: invalid LLM_TIMEOUT, using default", "value", raw, "error", err)
		}
	}
	return cfg
}

// NewProvider builds the configured provider: OpenAI when an API key is
// present, otherwise the deterministic local fallback.
func NewProvider(cfg Config) Provider {
	logger := common.Logger()
	if cfg.APIKey != "" {
		opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
		if cfg.Endpoint != "" {
			logger.Info("llm: configuring OpenAI client with custom endpoint", "endpoint", cfg.Endpoint)
			opts = append(opts, option.WithBaseURL(cfg.Endpoint))
		}
		client := openai.NewClient(opts...)
		logger.Info("llm: OpenAI provider selected")
		return providers.NewOpenAIProvider(client, cfg.ChatModel)
	}
	logger.Info("llm: no API key configured; using database-only checking")
	return providers.NewLocalProvider()
}
