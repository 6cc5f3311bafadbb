package validation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"meddoc_backend/core"
)

// AuthResult represents the result of an authentication check.
type AuthResult struct {
	Authenticated bool
	Message       string
	Error         error
}

// AuthChecker verifies that the configured API key is accepted by the
// storage service.
type AuthChecker struct {
	timeout              time.Duration
	allowSelfSignedCerts bool
}

// NewAuthChecker creates a new AuthChecker.
// Default timeout is 30 seconds.
func NewAuthChecker() *AuthChecker {
	return &AuthChecker{
		timeout:              30 * time.Second,
		allowSelfSignedCerts: false,
	}
}

// WithTimeout sets the timeout for authentication checks.
func (c *AuthChecker) WithTimeout(timeout time.Duration) *AuthChecker {
	c.timeout = timeout
	return c
}

// WithAllowSelfSignedCerts configures whether to allow self-signed certificates.
func (c *AuthChecker) WithAllowSelfSignedCerts(allow bool) *AuthChecker {
	c.allowSelfSignedCerts = allow
	return c
}

// CheckStorageAuth verifies that the API key is accepted by the storage
// service. It probes a blob key that cannot exist: a 404 proves the key
// passed authentication, while 401 or 403 proves it did not.
func (c *AuthChecker) CheckStorageAuth(storageURL, apiKey string) AuthResult {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.CheckStorageAuthWithContext(ctx, storageURL, apiKey)
}

// CheckStorageAuthWithContext verifies storage authentication with a custom
// context for cancellation.
func (c *AuthChecker) CheckStorageAuthWithContext(ctx context.Context, storageURL, apiKey string) AuthResult {
	if err := core.ValidateStorageAPIKey(apiKey); err != nil {
		return AuthResult{
			Authenticated: false,
			Message:       "Invalid credentials format",
			Error:         core.ErrMissingAuth("storage"),
		}
	}

	probeURL := strings.TrimRight(storageURL, "/") + "/blobs/" + url.PathEscape(uuid.NewString())
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, probeURL, nil)
	if err != nil {
		return AuthResult{
			Authenticated: false,
			Message:       "Failed to create request",
			Error:         core.ErrStorageUnreachable(storageURL, err.Error()),
		}
	}
	req.Header.Set("X-API-Key", apiKey)

	client := &http.Client{Timeout: c.timeout}
	if c.allowSelfSignedCerts {
		client = core.GetHTTPClient(&core.Config{AllowSelfSignedCerts: true}, c.timeout)
	}

	resp, err := client.Do(req)
	if err != nil {
		return AuthResult{
			Authenticated: false,
			Message:       "Connection failed",
			Error:         core.ErrStorageUnreachable(storageURL, err.Error()),
		}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return AuthResult{
			Authenticated: false,
			Message:       "Authentication failed: invalid API key",
			Error:         core.ErrAuthFailed("storage", "invalid or expired API key"),
		}
	case http.StatusForbidden:
		return AuthResult{
			Authenticated: false,
			Message:       "Authentication failed: access denied",
			Error:         core.ErrAuthFailed("storage", "access denied - check permissions"),
		}
	case http.StatusNotFound:
		return AuthResult{
			Authenticated: true,
			Message:       "Authentication successful",
		}
	}

	if resp.StatusCode >= 500 {
		return AuthResult{
			Authenticated: false,
			Message:       fmt.Sprintf("Storage service error: %d", resp.StatusCode),
			Error:         core.ErrStorageUnreachable(storageURL, resp.Status),
		}
	}

	return AuthResult{
		Authenticated: true,
		Message:       "Authentication successful",
	}
}

// CheckStorageAuthFromEnv verifies authentication using the STORAGE_URL and
// STORAGE_API_KEY environment variables.
func (c *AuthChecker) CheckStorageAuthFromEnv() AuthResult {
	storageURL := core.GetEnvOrDefault("STORAGE_URL", "")
	if storageURL == "" {
		return AuthResult{
			Authenticated: false,
			Message:       "STORAGE_URL not configured",
			Error:         core.ErrMissingConfig("STORAGE_URL"),
		}
	}

	apiKey := core.GetEnvOrDefault("STORAGE_API_KEY", "")
	if apiKey == "" {
		return AuthResult{
			Authenticated: false,
			Message:       "STORAGE_API_KEY not configured",
			Error:         core.ErrMissingAuth("storage"),
		}
	}

	return c.CheckStorageAuth(storageURL, apiKey)
}

// IsAuthenticated reports whether the credentials are accepted.
func (c *AuthChecker) IsAuthenticated(storageURL, apiKey string) bool {
	return c.CheckStorageAuth(storageURL, apiKey).Authenticated
}
