package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where calagent stores its chat history
	DSN string
	// Driver is the database driver (sqlite)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the url of your calagent instance.
	InstanceURL string

	// Calendar configuration
	Timezone            string // CALAGENT_TIMEZONE (default: UTC)
	CalendarID          string // CALAGENT_CALENDAR_ID (default: primary)
	CalendarCredentials string // CALAGENT_CALENDAR_CREDENTIALS (base64 service-account JSON)
	DefaultDuration     int    // CALAGENT_DEFAULT_DURATION_MINUTES (default: 30)
	MatchWindowDays     int    // CALAGENT_MATCH_WINDOW_DAYS (default: 14)
	DefaultHour         int    // CALAGENT_DEFAULT_HOUR (default: 9)

	// AI configuration
	AIEnabled         bool   // CALAGENT_AI_ENABLED
	AILLMProvider     string // CALAGENT_AI_LLM_PROVIDER (default: openai)
	AILLMModel        string // CALAGENT_AI_LLM_MODEL (default: gpt-4o-mini)
	AIOpenAIAPIKey    string // CALAGENT_AI_OPENAI_API_KEY
	AIOpenAIBaseURL   string // CALAGENT_AI_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	AIDeepSeekAPIKey  string // CALAGENT_AI_DEEPSEEK_API_KEY
	AIDeepSeekBaseURL string // CALAGENT_AI_DEEPSEEK_BASE_URL (default: https://api.deepseek.com)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI is enabled and an API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && (p.AIOpenAIAPIKey != "" || p.AIDeepSeekAPIKey != "")
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvOrDefault parses an integer environment variable, keeping the
// default on absent or malformed values.
func getIntEnvOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("ignoring malformed integer environment variable",
			slog.String("key", key), slog.String("value", value))
		return defaultValue
	}
	return n
}

// FromEnv loads configuration from CALAGENT_* environment variables.
func (p *Profile) FromEnv() {
	p.Timezone = getEnvOrDefault("CALAGENT_TIMEZONE", "UTC")
	p.CalendarID = getEnvOrDefault("CALAGENT_CALENDAR_ID", "primary")
	p.CalendarCredentials = os.Getenv("CALAGENT_CALENDAR_CREDENTIALS")
	p.DefaultDuration = getIntEnvOrDefault("CALAGENT_DEFAULT_DURATION_MINUTES", 30)
	p.MatchWindowDays = getIntEnvOrDefault("CALAGENT_MATCH_WINDOW_DAYS", 14)
	p.DefaultHour = getIntEnvOrDefault("CALAGENT_DEFAULT_HOUR", 9)

	p.AIEnabled = os.Getenv("CALAGENT_AI_ENABLED") == "true"
	p.AILLMProvider = getEnvOrDefault("CALAGENT_AI_LLM_PROVIDER", "openai")
	p.AILLMModel = getEnvOrDefault("CALAGENT_AI_LLM_MODEL", "gpt-4o-mini")
	p.AIOpenAIAPIKey = os.Getenv("CALAGENT_AI_OPENAI_API_KEY")
	p.AIOpenAIBaseURL = getEnvOrDefault("CALAGENT_AI_OPENAI_BASE_URL", "https://api.openai.com/v1")
	p.AIDeepSeekAPIKey = os.Getenv("CALAGENT_AI_DEEPSEEK_API_KEY")
	p.AIDeepSeekBaseURL = getEnvOrDefault("CALAGENT_AI_DEEPSEEK_BASE_URL", "https://api.deepseek.com")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "calagent")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/calagent"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("calagent_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
