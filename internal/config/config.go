package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	DatabaseURL string // Empty selects the in-memory session store
	TablePrefix string
	// LLM Configuration
	AnthropicAPIKey   string
	OpenRouterAPIKey  string
	DefaultModel      string // Model used for chat turns
	ClassifyModel     string // Model used for template classification
	ClassifyMaxTokens int
	ChatMaxTokens     int
	Temperature       float64
	// Sandbox
	SandboxDir            string
	SandboxAllowedCmds    []string
	SandboxCommandTimeout time.Duration
	SandboxAutoRun        bool // Relay parsed shell steps to the sandbox
	// Logging
	LogDir      string
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	defaultModel := getEnv("DEFAULT_MODEL", "claude-3-5-sonnet-20241022")

	return &Config{
		Port:        getEnv("PORT", "5000"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		TablePrefix: getTablePrefix(env),
		// LLM Configuration
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		DefaultModel:      defaultModel,
		ClassifyModel:     getEnv("CLASSIFY_MODEL", defaultModel),
		ClassifyMaxTokens: getEnvInt("CLASSIFY_MAX_TOKENS", 200),
		ChatMaxTokens:     getEnvInt("CHAT_MAX_TOKENS", 8000),
		Temperature:       getEnvFloat("TEMPERATURE", 0.7),
		// Sandbox
		SandboxDir:            getEnv("SANDBOX_DIR", "./sandbox"),
		SandboxAllowedCmds:    splitList(getEnv("SANDBOX_ALLOWED_COMMANDS", "npm install")),
		SandboxCommandTimeout: getEnvDuration("SANDBOX_COMMAND_TIMEOUT", 2*time.Minute),
		SandboxAutoRun:        getEnv("SANDBOX_AUTO_RUN", "false") == "true",
		// Logging
		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil || f < 0 {
		return defaultValue
	}
	return f
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

// splitList splits a comma separated value, dropping empty entries
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
