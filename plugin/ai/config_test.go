package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/calagent/internal/profile"
)

func TestNewConfigFromProfile(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		cfg := NewConfigFromProfile(&profile.Profile{AIEnabled: false})
		assert.False(t, cfg.Enabled)
		assert.Empty(t, cfg.LLM.APIKey)
	})

	t.Run("OpenAI", func(t *testing.T) {
		cfg := NewConfigFromProfile(&profile.Profile{
			AIEnabled:       true,
			AILLMProvider:   "openai",
			AILLMModel:      "gpt-4o-mini",
			AIOpenAIAPIKey:  "openai-key",
			AIOpenAIBaseURL: "https://api.openai.com/v1",
		})
		assert.True(t, cfg.Enabled)
		assert.Equal(t, "openai", cfg.LLM.Provider)
		assert.Equal(t, "openai-key", cfg.LLM.APIKey)
		assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.BaseURL)
	})

	t.Run("DeepSeek", func(t *testing.T) {
		cfg := NewConfigFromProfile(&profile.Profile{
			AIEnabled:         true,
			AILLMProvider:     "deepseek",
			AILLMModel:        "deepseek-chat",
			AIDeepSeekAPIKey:  "deepseek-key",
			AIDeepSeekBaseURL: "https://api.deepseek.com",
		})
		assert.Equal(t, "deepseek-key", cfg.LLM.APIKey)
		assert.Equal(t, "https://api.deepseek.com", cfg.LLM.BaseURL)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("DisabledIsAlwaysValid", func(t *testing.T) {
		cfg := &Config{Enabled: false}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("MissingProvider", func(t *testing.T) {
		cfg := &Config{Enabled: true, LLM: LLMConfig{APIKey: "key"}}
		assert.Error(t, cfg.Validate())
	})

	t.Run("MissingAPIKey", func(t *testing.T) {
		cfg := &Config{Enabled: true, LLM: LLMConfig{Provider: "openai"}}
		assert.Error(t, cfg.Validate())
	})

	t.Run("Valid", func(t *testing.T) {
		cfg := &Config{Enabled: true, LLM: LLMConfig{Provider: "openai", APIKey: "key"}}
		require.NoError(t, cfg.Validate())
	})
}

func TestAgentConfig(t *testing.T) {
	cfg := &Config{
		Enabled: true,
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
			APIKey:   "key",
			BaseURL:  "https://example.com/v1",
		},
	}

	agentCfg := cfg.AgentConfig()
	assert.Equal(t, "key", agentCfg.APIKey)
	assert.Equal(t, "https://example.com/v1", agentCfg.BaseURL)
	assert.Equal(t, "gpt-4o-mini", agentCfg.Model)
}
