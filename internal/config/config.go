package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings holds everything the agent reads from the environment. A missing
// .env file is fine; required keys are validated by the command that needs
// them, not here.
type Settings struct {
	// Remote classification and embeddings.
	OpenAIAPIKey string
	OpenAIModel  string

	// Browser hosting provider.
	BrowserbaseAPIKey    string
	BrowserbaseProjectID string
	BrowserbaseBaseURL   string

	// Browser behavior.
	BrowserTimeout    time.Duration
	ScreenshotDir     string
	ScreenshotQuality int
	DownloadDir       string

	// Local persisted session metadata.
	SessionStateFile string

	// Long-term memory persistence. Empty keeps memory in-process only.
	MemoryPath string

	// WorkflowKeywords split a transcript classification into multi-step
	// mode when any of them appears in the intent's context field. This is
	// heuristic policy, not a contract; override via WORKFLOW_KEYWORDS.
	WorkflowKeywords []string

	Logger LoggerSettings
}

// LoggerSettings configures the zap logger and its rotating file sink.
type LoggerSettings struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

var defaultWorkflowKeywords = []string{"and then", "after that", "next", "then", "also", "also do"}

// Load reads .env (and .env.<APP_ENV> overrides, when present) and builds
// the settings with per-field defaults.
func Load() *Settings {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("config: no .env file found (fine for CI)")
	}
	if appEnv := os.Getenv("APP_ENV"); appEnv != "" {
		if err := godotenv.Overload(".env." + appEnv); err != nil {
			log.Printf("config: could not load .env.%s: %v", appEnv, err)
		}
	}

	return &Settings{
		OpenAIAPIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:          getString("OPENAI_MODEL", "gpt-4-turbo-preview"),
		BrowserbaseAPIKey:    os.Getenv("BROWSERBASE_API_KEY"),
		BrowserbaseProjectID: os.Getenv("BROWSERBASE_PROJECT_ID"),
		BrowserbaseBaseURL:   getString("BROWSERBASE_BASE_URL", "https://api.browserbase.com/v1"),
		BrowserTimeout:       getDuration("BROWSER_TIMEOUT", 30*time.Second),
		ScreenshotDir:        getString("SCREENSHOT_DIR", "screenshots"),
		ScreenshotQuality:    getInt("SCREENSHOT_QUALITY", 90),
		DownloadDir:          getString("DOWNLOAD_DIR", "downloads"),
		SessionStateFile:     getString("SESSION_STATE_FILE", ".bb_session.json"),
		MemoryPath:           os.Getenv("MEMORY_PATH"),
		WorkflowKeywords:     getList("WORKFLOW_KEYWORDS", defaultWorkflowKeywords),
		Logger: LoggerSettings{
			Level:      getString("LOG_LEVEL", "info"),
			File:       os.Getenv("LOG_FILE"),
			MaxSizeMB:  getInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getInt("LOG_MAX_AGE_DAYS", 14),
			Compress:   getBool("LOG_COMPRESS", true),
		},
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// getDuration accepts either a Go duration ("45s") or bare milliseconds,
// matching how deployments configured the previous agent.
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
