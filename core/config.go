package core

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the document triage backend.
// Values are loaded from environment variables, optionally seeded from a
// .env file in the working directory.
type Config struct {
	// Storage service settings
	StorageURL           string
	StorageAPIKey        string
	AllowSelfSignedCerts bool

	// AI settings
	OpenAIAPIKey    string
	GoogleVisionKey string
	BaseLLMURL      string
	ChatLLMURL      string
	VisionLLMURL    string
	ChatModel       string
	ScanModel       string
	DiagnoseModel   string

	// Matching settings
	FuzzyThreshold float64
	ProfilesPath   string

	// Web UI settings
	Port          string
	WebUIPassword string

	// Processing settings
	AITimeout         time.Duration
	PageTimeout       time.Duration
	ProcessingTimeout time.Duration
	MaxConcurrent     int
	MaxFileSize       int64

	// Storage paths
	DataDir string
	DBPath  string
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is loaded first if present;
// real environment variables take precedence over .env values.
func LoadConfig() (*Config, error) {
	// .env is optional, env vars may be set directly
	_ = godotenv.Load()

	config := &Config{
		StorageURL:           os.Getenv("STORAGE_URL"),
		StorageAPIKey:        os.Getenv("STORAGE_API_KEY"),
		AllowSelfSignedCerts: ParseBoolEnv("ALLOW_SELF_SIGNED_CERTS", false),

		OpenAIAPIKey:    GetEnvOrDefault("OPENAI_API_KEY", os.Getenv("OPENAI_KEY")),
		GoogleVisionKey: os.Getenv("GOOGLE_VISION_API_KEY"),
		BaseLLMURL:      GetEnvOrDefault("BASE_LLM_URL", "https://api.openai.com/v1"),
		ChatLLMURL:      os.Getenv("CHAT_LLM_URL"),
		VisionLLMURL:    os.Getenv("VISION_LLM_URL"),
		ChatModel:       GetEnvOrDefault("CHAT_MODEL", "gpt-4o"),
		ScanModel:       GetEnvOrDefault("SCAN_MODEL", "gpt-4o-mini"),
		DiagnoseModel:   GetEnvOrDefault("DIAGNOSE_MODEL", "gpt-4o"),

		FuzzyThreshold: ParseFloat64Env("FUZZY_THRESHOLD", 0.85),
		ProfilesPath:   GetEnvOrDefault("PROFILES_PATH", "profiles.yaml"),

		Port:          GetEnvOrDefault("PORT", "3000"),
		WebUIPassword: os.Getenv("WEBUI_PWD"),

		AITimeout:         ParseDurationEnv("AI_TIMEOUT_SECONDS", 60),
		PageTimeout:       ParseDurationEnv("PAGE_TIMEOUT_SECONDS", 45),
		ProcessingTimeout: ParseDurationEnv("PROCESSING_TIMEOUT_SECONDS", 900),
		MaxConcurrent:     ParseIntEnv("MAX_CONCURRENT", 4),
		MaxFileSize:       ParseInt64Env("MAX_FILE_SIZE", 100*1024*1024),

		DataDir: GetEnvOrDefault("DATA_DIR", GetDataDirectory()),
	}
	config.DBPath = GetEnvOrDefault("DB_PATH", GetDataFilePath("meddoc.db"))

	// Validate required fields
	var missingVars []string
	requiredVars := map[string]string{
		"STORAGE_URL":     config.StorageURL,
		"STORAGE_API_KEY": config.StorageAPIKey,
		"WEBUI_PWD":       config.WebUIPassword,
	}
	for name, value := range requiredVars {
		if value == "" {
			missingVars = append(missingVars, name)
		}
	}
	if len(missingVars) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	if config.FuzzyThreshold <= 0 || config.FuzzyThreshold > 1 {
		return nil, fmt.Errorf("FUZZY_THRESHOLD must be in (0, 1], got %v", config.FuzzyThreshold)
	}

	config.StorageURL = strings.TrimRight(config.StorageURL, "/")

	return config, nil
}

// HasOpenAI reports whether an OpenAI-compatible API key is configured.
// Without it the scan, chat, and diagnosis features are disabled.
func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

// HasVisionOCR reports whether a Google Cloud Vision key is configured.
// Without it scanned pages keep their embedded text layer only.
func (c *Config) HasVisionOCR() bool {
	return c.GoogleVisionKey != ""
}

// GetHTTPClient returns an HTTP client configured according to the
// AllowSelfSignedCerts setting.
func GetHTTPClient(cfg *Config, timeout time.Duration) *http.Client {
	client := &http.Client{Timeout: timeout}
	if cfg != nil && cfg.AllowSelfSignedCerts {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return client
}

// GetDefaultHTTPClient returns an HTTP client with a 30 second timeout
// and default certificate verification.
func GetDefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
