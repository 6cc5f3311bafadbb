package core

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORAGE_URL", "https://storage.example.com")
	t.Setenv("STORAGE_API_KEY", "storage-key")
	t.Setenv("WEBUI_PWD", "secret")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if config.StorageURL != "https://storage.example.com" {
		t.Errorf("StorageURL = %q", config.StorageURL)
	}
	if config.BaseLLMURL != "https://api.openai.com/v1" {
		t.Errorf("BaseLLMURL = %q, want default OpenAI endpoint", config.BaseLLMURL)
	}
	if config.ChatModel != "gpt-4o" {
		t.Errorf("ChatModel = %q, want gpt-4o", config.ChatModel)
	}
	if config.ScanModel != "gpt-4o-mini" {
		t.Errorf("ScanModel = %q, want gpt-4o-mini", config.ScanModel)
	}
	if config.FuzzyThreshold != 0.85 {
		t.Errorf("FuzzyThreshold = %v, want 0.85", config.FuzzyThreshold)
	}
	if config.Port != "3000" {
		t.Errorf("Port = %q, want 3000", config.Port)
	}
	if config.AITimeout != 60*time.Second {
		t.Errorf("AITimeout = %v, want 60s", config.AITimeout)
	}
	if config.ProcessingTimeout != 900*time.Second {
		t.Errorf("ProcessingTimeout = %v, want 900s", config.ProcessingTimeout)
	}
	if config.MaxConcurrent != 4 {
		t.Errorf("MaxConcurrent = %d, want 4", config.MaxConcurrent)
	}
	if config.MaxFileSize != 100*1024*1024 {
		t.Errorf("MaxFileSize = %d, want 100MB", config.MaxFileSize)
	}
	if config.DBPath == "" {
		t.Error("DBPath is empty")
	}
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	t.Setenv("STORAGE_URL", "")
	t.Setenv("STORAGE_API_KEY", "")
	t.Setenv("WEBUI_PWD", "")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("expected error for missing required variables")
	}
	for _, name := range []string{"STORAGE_URL", "STORAGE_API_KEY", "WEBUI_PWD"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %v does not mention %s", err, name)
		}
	}
}

func TestLoadConfig_TrimsTrailingSlash(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STORAGE_URL", "https://storage.example.com/")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if config.StorageURL != "https://storage.example.com" {
		t.Errorf("StorageURL = %q, want trailing slash removed", config.StorageURL)
	}
}

func TestLoadConfig_InvalidFuzzyThreshold(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"zero", "0"},
		{"negative", "-0.5"},
		{"above one", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("FUZZY_THRESHOLD", tt.value)

			if _, err := LoadConfig(); err == nil {
				t.Errorf("FUZZY_THRESHOLD=%s: expected error", tt.value)
			}
		})
	}
}

func TestLoadConfig_LegacyOpenAIKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_KEY", "legacy-key")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if config.OpenAIAPIKey != "legacy-key" {
		t.Errorf("OpenAIAPIKey = %q, want legacy OPENAI_KEY fallback", config.OpenAIAPIKey)
	}
}

func TestConfig_FeatureFlags(t *testing.T) {
	config := &Config{}
	if config.HasOpenAI() {
		t.Error("HasOpenAI() = true without a key")
	}
	if config.HasVisionOCR() {
		t.Error("HasVisionOCR() = true without a key")
	}

	config.OpenAIAPIKey = "sk-test"
	config.GoogleVisionKey = "vision-key"
	if !config.HasOpenAI() {
		t.Error("HasOpenAI() = false with a key")
	}
	if !config.HasVisionOCR() {
		t.Error("HasVisionOCR() = false with a key")
	}
}

func TestGetHTTPClient(t *testing.T) {
	client := GetHTTPClient(&Config{AllowSelfSignedCerts: true}, 10*time.Second)
	if client.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", client.Timeout)
	}
	if client.Transport == nil {
		t.Error("expected custom transport when self-signed certs are allowed")
	}

	client = GetHTTPClient(&Config{}, 10*time.Second)
	if client.Transport != nil {
		t.Error("expected default transport when self-signed certs are not allowed")
	}

	if got := GetDefaultHTTPClient().Timeout; got != 30*time.Second {
		t.Errorf("default client timeout = %v, want 30s", got)
	}
}
