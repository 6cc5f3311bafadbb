// Package assist drives the AI collaborators: chat completion with document
// context, the per-page auto-scan that suggests matching pages, and the
// vision-based diagnosis suggestions.
//
// factory.go provides the ClientFactory molecule for creating OpenAI-compatible
// clients with consistent configuration.
package assist

import (
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ClientConfig holds configuration for creating an OpenAI-compatible client.
type ClientConfig struct {
	// APIKey is the OpenAI or compatible API key
	APIKey string

	// BaseURL is the primary API endpoint URL
	BaseURL string

	// FallbackURL is used if BaseURL is empty (optional)
	FallbackURL string

	// HTTPClient is a pre-configured HTTP client
	// Should include TLS settings and timeouts
	HTTPClient *http.Client

	// Timeout is the request timeout (used if HTTPClient is nil)
	Timeout time.Duration
}

// ClientFactory creates OpenAI-compatible clients with consistent
// configuration. Chat, scan, and diagnosis all build their clients here so
// TLS, timeout, and URL-fallback handling stay in one place.
//
// Example:
//
//	factory := assist.NewClientFactory()
//	client := factory.CreateClient(config)
type ClientFactory struct{}

// NewClientFactory creates a new ClientFactory instance.
func NewClientFactory() *ClientFactory {
	return &ClientFactory{}
}

// CreateClient creates an OpenAI client with the given configuration.
//
// Example:
//
//	client := factory.CreateClient(assist.ClientConfig{
//	    APIKey:      cfg.OpenAIAPIKey,
//	    BaseURL:     cfg.ChatLLMURL,
//	    FallbackURL: cfg.BaseLLMURL,
//	    HTTPClient:  core.GetHTTPClient(cfg, cfg.AITimeout),
//	})
func (f *ClientFactory) CreateClient(cfg ClientConfig) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)

	baseURL := ResolveBaseURL(cfg.BaseURL, cfg.FallbackURL)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	} else if cfg.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return openai.NewClientWithConfig(clientConfig)
}

// CreateChatClient creates a client configured for chat completions.
// Uses the chat URL with base-URL fallback.
func (f *ClientFactory) CreateChatClient(apiKey, chatLLMURL, baseLLMURL string, httpClient *http.Client) *openai.Client {
	return f.CreateClient(ClientConfig{
		APIKey:      apiKey,
		BaseURL:     chatLLMURL,
		FallbackURL: baseLLMURL,
		HTTPClient:  httpClient,
	})
}

// CreateVisionClient creates a client for vision-capable models used by the
// diagnosis suggestions. Uses a specific endpoint without fallback.
func (f *ClientFactory) CreateVisionClient(apiKey, visionURL string, httpClient *http.Client) *openai.Client {
	return f.CreateClient(ClientConfig{
		APIKey:     apiKey,
		BaseURL:    visionURL,
		HTTPClient: httpClient,
	})
}

// ResolveBaseURL returns the primary URL if non-empty, otherwise the fallback.
// This is a pure function (atom) that can be used independently.
//
// Example:
//
//	url := assist.ResolveBaseURL("", "http://fallback.com")
//	// url == "http://fallback.com"
func ResolveBaseURL(primary, fallback string) string {
	if primary != "" {
		return primary
	}
	return fallback
}

// IsLocalEndpoint checks if a URL points to localhost. Local OpenAI-compatible
// servers usually lack the vision models the diagnosis path needs, so the
// startup validation warns about them.
func IsLocalEndpoint(url string) bool {
	localPatterns := []string{
		"127.0.0.1",
		"localhost",
		"0.0.0.0",
		"[::1]",
	}

	lower := strings.ToLower(url)
	for _, pattern := range localPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
