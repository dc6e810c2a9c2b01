// ABOUTME: Centralized configuration for the lifelong memory system
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the memory system
type Config struct {
	// Storage settings
	DBPath     string
	MarkerPath string

	// Pipeline settings
	Cooldown      time.Duration
	SummarizePool int
	PromotePool   int
	ActivityDays  int

	// Source settings (empty path disables a source)
	ClaudeCodePath string
	CodexPath      string
	GeminiPath     string

	// Enrichment settings
	EnrichTimeout  time.Duration
	BackendPin     string
	OpenAIKey      string
	OpenAIModel    string
	MaxRetries     int
	RetryDelay     time.Duration
	ContextBudget  int
	QualityMinUser int
	QualityMinMsgs int
	QualityMinSecs int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	home, _ := os.UserHomeDir()
	dataDir := getEnv("LIFELONG_DATA_DIR", filepath.Join(home, ".lifelong-memory"))

	cfg := &Config{
		// Defaults
		DBPath:         getEnv("LIFELONG_DB_PATH", filepath.Join(dataDir, "memory.sqlite")),
		MarkerPath:     getEnv("LIFELONG_MARKER_PATH", filepath.Join(dataDir, "run_marker.json")),
		Cooldown:       getEnvDuration("LIFELONG_COOLDOWN", time.Hour),
		SummarizePool:  getEnvInt("LIFELONG_SUMMARIZE_POOL", 8),
		PromotePool:    getEnvInt("LIFELONG_PROMOTE_POOL", 4),
		ActivityDays:   getEnvInt("LIFELONG_ACTIVITY_DAYS", 30),
		ClaudeCodePath: getEnv("LIFELONG_CLAUDE_PATH", filepath.Join(home, ".claude", "projects")),
		CodexPath:      getEnv("LIFELONG_CODEX_PATH", filepath.Join(home, ".codex", "sessions")),
		GeminiPath:     getEnv("LIFELONG_GEMINI_PATH", filepath.Join(home, ".gemini", "tmp")),
		EnrichTimeout:  getEnvDuration("LIFELONG_ENRICH_TIMEOUT", 120*time.Second),
		BackendPin:     getEnv("LIFELONG_BACKEND", ""),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    getEnv("LIFELONG_OPENAI_MODEL", "gpt-4o-mini"),
		MaxRetries:     getEnvInt("LIFELONG_MAX_RETRIES", 3),
		RetryDelay:     getEnvDuration("LIFELONG_RETRY_DELAY", 2*time.Second),
		ContextBudget:  getEnvInt("LIFELONG_CONTEXT_BUDGET", 2000),
		QualityMinUser: getEnvInt("LIFELONG_QUALITY_MIN_USER", 3),
		QualityMinMsgs: getEnvInt("LIFELONG_QUALITY_MIN_MSGS", 5),
		QualityMinSecs: getEnvInt("LIFELONG_QUALITY_MIN_SECS", 60),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.SummarizePool < 1 || c.SummarizePool > 64 {
		return fmt.Errorf("LIFELONG_SUMMARIZE_POOL must be 1-64, got %d", c.SummarizePool)
	}
	if c.PromotePool < 1 || c.PromotePool > 64 {
		return fmt.Errorf("LIFELONG_PROMOTE_POOL must be 1-64, got %d", c.PromotePool)
	}
	if c.Cooldown < time.Minute {
		return fmt.Errorf("LIFELONG_COOLDOWN must be at least 1m, got %v", c.Cooldown)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("LIFELONG_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.ActivityDays < 1 {
		return fmt.Errorf("LIFELONG_ACTIVITY_DAYS must be positive, got %d", c.ActivityDays)
	}
	if c.ContextBudget < 100 {
		return fmt.Errorf("LIFELONG_CONTEXT_BUDGET must be at least 100, got %d", c.ContextBudget)
	}
	return nil
}

// SourcePaths returns the configured transcript roots keyed by source tag.
// Sources with an empty path are omitted.
func (c *Config) SourcePaths() map[string]string {
	paths := make(map[string]string, 3)
	if strings.TrimSpace(c.ClaudeCodePath) != "" {
		paths["claude_code"] = c.ClaudeCodePath
	}
	if strings.TrimSpace(c.CodexPath) != "" {
		paths["codex"] = c.CodexPath
	}
	if strings.TrimSpace(c.GeminiPath) != "" {
		paths["gemini"] = c.GeminiPath
	}
	return paths
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
