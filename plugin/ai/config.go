// Package ai assembles the language-model configuration for the intent
// producer from the server profile.
package ai

import (
	"errors"

	"github.com/hrygo/calagent/internal/profile"
	"github.com/hrygo/calagent/plugin/ai/agent"
)

// Config represents AI configuration.
type Config struct {
	Enabled bool

	LLM LLMConfig
}

// LLMConfig represents LLM configuration.
type LLMConfig struct {
	Provider string // openai, deepseek
	Model    string // gpt-4o-mini
	APIKey   string
	BaseURL  string
}

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		Enabled: p.AIEnabled,
	}

	if !cfg.Enabled {
		return cfg
	}

	cfg.LLM = LLMConfig{
		Provider: p.AILLMProvider,
		Model:    p.AILLMModel,
	}

	switch p.AILLMProvider {
	case "deepseek":
		cfg.LLM.APIKey = p.AIDeepSeekAPIKey
		cfg.LLM.BaseURL = p.AIDeepSeekBaseURL
	case "openai":
		cfg.LLM.APIKey = p.AIOpenAIAPIKey
		cfg.LLM.BaseURL = p.AIOpenAIBaseURL
	}

	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.LLM.Provider == "" {
		return errors.New("LLM provider is required")
	}

	if c.LLM.APIKey == "" {
		return errors.New("LLM API key is required")
	}

	return nil
}

// AgentConfig converts the LLM configuration for the intent producer.
func (c *Config) AgentConfig() agent.LLMConfig {
	return agent.LLMConfig{
		APIKey:  c.LLM.APIKey,
		BaseURL: c.LLM.BaseURL,
		Model:   c.LLM.Model,
	}
}
