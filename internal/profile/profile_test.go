package profile

import (
	"os"
	"testing"
)

func TestProfileDefaults(t *testing.T) {
	clearEnvVars()

	profile := &Profile{}
	profile.FromEnv()

	tests := []struct {
		name     string
		expected string
		actual   string
	}{
		{"Timezone default", "UTC", profile.Timezone},
		{"CalendarID default", "primary", profile.CalendarID},
		{"AIEnabled should be false by default", "false", boolToString(profile.AIEnabled)},
		{"AILLMProvider default", "openai", profile.AILLMProvider},
		{"AILLMModel default", "gpt-4o-mini", profile.AILLMModel},
		{"AIOpenAIBaseURL default", "https://api.openai.com/v1", profile.AIOpenAIBaseURL},
		{"AIDeepSeekBaseURL default", "https://api.deepseek.com", profile.AIDeepSeekBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.actual != tt.expected {
				t.Errorf("%s: expected %q, got %q", tt.name, tt.expected, tt.actual)
			}
		})
	}

	if profile.DefaultDuration != 30 {
		t.Errorf("DefaultDuration: expected 30, got %d", profile.DefaultDuration)
	}
	if profile.MatchWindowDays != 14 {
		t.Errorf("MatchWindowDays: expected 14, got %d", profile.MatchWindowDays)
	}
	if profile.DefaultHour != 9 {
		t.Errorf("DefaultHour: expected 9, got %d", profile.DefaultHour)
	}
}

func TestProfileFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVar   string
		envValue string
		field    func(*Profile) string
		expected string
	}{
		{
			name:     "CALAGENT_TIMEZONE",
			envVar:   "CALAGENT_TIMEZONE",
			envValue: "America/New_York",
			field:    func(p *Profile) string { return p.Timezone },
			expected: "America/New_York",
		},
		{
			name:     "CALAGENT_CALENDAR_ID",
			envVar:   "CALAGENT_CALENDAR_ID",
			envValue: "team@example.com",
			field:    func(p *Profile) string { return p.CalendarID },
			expected: "team@example.com",
		},
		{
			name:     "CALAGENT_AI_ENABLED=true",
			envVar:   "CALAGENT_AI_ENABLED",
			envValue: "true",
			field:    func(p *Profile) string { return boolToString(p.AIEnabled) },
			expected: "true",
		},
		{
			name:     "CALAGENT_AI_LLM_PROVIDER",
			envVar:   "CALAGENT_AI_LLM_PROVIDER",
			envValue: "deepseek",
			field:    func(p *Profile) string { return p.AILLMProvider },
			expected: "deepseek",
		},
		{
			name:     "CALAGENT_AI_OPENAI_API_KEY",
			envVar:   "CALAGENT_AI_OPENAI_API_KEY",
			envValue: "openai-key",
			field:    func(p *Profile) string { return p.AIOpenAIAPIKey },
			expected: "openai-key",
		},
		{
			name:     "CALAGENT_AI_OPENAI_BASE_URL",
			envVar:   "CALAGENT_AI_OPENAI_BASE_URL",
			envValue: "https://custom.openai.proxy/v1",
			field:    func(p *Profile) string { return p.AIOpenAIBaseURL },
			expected: "https://custom.openai.proxy/v1",
		},
		{
			name:     "CALAGENT_AI_LLM_MODEL",
			envVar:   "CALAGENT_AI_LLM_MODEL",
			envValue: "gpt-4",
			field:    func(p *Profile) string { return p.AILLMModel },
			expected: "gpt-4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars()
			os.Setenv(tt.envVar, tt.envValue)
			defer os.Unsetenv(tt.envVar)

			profile := &Profile{}
			profile.FromEnv()

			actual := tt.field(profile)
			if actual != tt.expected {
				t.Errorf("%s: expected %q, got %q", tt.name, tt.expected, actual)
			}
		})
	}
}

func TestIntEnvVars(t *testing.T) {
	clearEnvVars()

	os.Setenv("CALAGENT_DEFAULT_DURATION_MINUTES", "45")
	os.Setenv("CALAGENT_MATCH_WINDOW_DAYS", "30")
	os.Setenv("CALAGENT_DEFAULT_HOUR", "not-a-number")
	defer clearEnvVars()

	profile := &Profile{}
	profile.FromEnv()

	if profile.DefaultDuration != 45 {
		t.Errorf("DefaultDuration: expected 45, got %d", profile.DefaultDuration)
	}
	if profile.MatchWindowDays != 30 {
		t.Errorf("MatchWindowDays: expected 30, got %d", profile.MatchWindowDays)
	}
	// Malformed values keep the default.
	if profile.DefaultHour != 9 {
		t.Errorf("DefaultHour: expected 9, got %d", profile.DefaultHour)
	}
}

func TestIsAIEnabled(t *testing.T) {
	tests := []struct {
		name           string
		setup          func(*Profile)
		expectedResult bool
	}{
		{
			name: "AIEnabled=false should return false",
			setup: func(p *Profile) {
				p.AIEnabled = false
			},
			expectedResult: false,
		},
		{
			name: "AIEnabled=true but no API key should return false",
			setup: func(p *Profile) {
				p.AIEnabled = true
			},
			expectedResult: false,
		},
		{
			name: "AIEnabled=true with OpenAI API key should return true",
			setup: func(p *Profile) {
				p.AIEnabled = true
				p.AIOpenAIAPIKey = "test-key"
			},
			expectedResult: true,
		},
		{
			name: "AIEnabled=true with DeepSeek API key should return true",
			setup: func(p *Profile) {
				p.AIEnabled = true
				p.AIDeepSeekAPIKey = "test-key"
			},
			expectedResult: true,
		},
		{
			name: "AIEnabled=false with API keys should return false",
			setup: func(p *Profile) {
				p.AIEnabled = false
				p.AIOpenAIAPIKey = "test-key"
			},
			expectedResult: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &Profile{}
			tt.setup(profile)
			result := profile.IsAIEnabled()
			if result != tt.expectedResult {
				t.Errorf("IsAIEnabled(): expected %v, got %v", tt.expectedResult, result)
			}
		})
	}
}

// Helper functions

func clearEnvVars() {
	envVars := []string{
		"CALAGENT_TIMEZONE",
		"CALAGENT_CALENDAR_ID",
		"CALAGENT_CALENDAR_CREDENTIALS",
		"CALAGENT_DEFAULT_DURATION_MINUTES",
		"CALAGENT_MATCH_WINDOW_DAYS",
		"CALAGENT_DEFAULT_HOUR",
		"CALAGENT_AI_ENABLED",
		"CALAGENT_AI_LLM_PROVIDER",
		"CALAGENT_AI_LLM_MODEL",
		"CALAGENT_AI_OPENAI_API_KEY",
		"CALAGENT_AI_OPENAI_BASE_URL",
		"CALAGENT_AI_DEEPSEEK_API_KEY",
		"CALAGENT_AI_DEEPSEEK_BASE_URL",
	}
	for _, envVar := range envVars {
		os.Unsetenv(envVar)
	}
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
