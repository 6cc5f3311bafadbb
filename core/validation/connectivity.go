package validation

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"time"

	"meddoc_backend/core"
)

// ConnectivityResult represents the result of a connectivity check.
type ConnectivityResult struct {
	Reachable  bool
	StatusCode int
	Message    string
	Latency    time.Duration
	Error      error
}

// ConnectivityChecker verifies that the storage service answers HTTP
// requests at all, before authentication is attempted.
type ConnectivityChecker struct {
	timeout              time.Duration
	allowSelfSignedCerts bool
}

// NewConnectivityChecker creates a new ConnectivityChecker.
// Default timeout is 10 seconds.
func NewConnectivityChecker() *ConnectivityChecker {
	return &ConnectivityChecker{
		timeout:              10 * time.Second,
		allowSelfSignedCerts: false,
	}
}

// WithTimeout sets the timeout for connectivity checks.
func (c *ConnectivityChecker) WithTimeout(timeout time.Duration) *ConnectivityChecker {
	c.timeout = timeout
	return c
}

// WithAllowSelfSignedCerts configures whether to allow self-signed certificates.
func (c *ConnectivityChecker) WithAllowSelfSignedCerts(allow bool) *ConnectivityChecker {
	c.allowSelfSignedCerts = allow
	return c
}

// CheckServerConnectivity tests whether a server is reachable with an HTTP
// HEAD request. Any HTTP response, including 4xx and 5xx, counts as
// reachable: those indicate the server answered but something else is wrong.
func (c *ConnectivityChecker) CheckServerConnectivity(serverURL string) ConnectivityResult {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.CheckServerConnectivityWithContext(ctx, serverURL)
}

// CheckServerConnectivityWithContext tests server connectivity with a custom
// context for cancellation.
func (c *ConnectivityChecker) CheckServerConnectivityWithContext(ctx context.Context, serverURL string) ConnectivityResult {
	if err := ValidateServerURL(serverURL); err != nil {
		return ConnectivityResult{
			Reachable: false,
			Message:   "Invalid URL format",
			Error:     core.ErrInvalidStorageURL(serverURL, err.Error()),
		}
	}

	client := c.createHTTPClient()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, serverURL, nil)
	if err != nil {
		return ConnectivityResult{
			Reachable: false,
			Message:   "Failed to create request",
			Error:     core.ErrStorageUnreachable(serverURL, err.Error()),
		}
	}

	startTime := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(startTime)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded || ctx.Err() == context.Canceled {
			return ConnectivityResult{
				Reachable: false,
				Message:   "Connection timed out",
				Latency:   latency,
				Error:     core.ErrStorageUnreachable(serverURL, ctx.Err().Error()),
			}
		}
		return ConnectivityResult{
			Reachable: false,
			Message:   "Connection failed",
			Latency:   latency,
			Error:     core.ErrStorageUnreachable(serverURL, err.Error()),
		}
	}
	defer resp.Body.Close()

	return ConnectivityResult{
		Reachable:  true,
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("Server reachable (status: %d)", resp.StatusCode),
		Latency:    latency,
	}
}

// createHTTPClient creates an HTTP client with the configured TLS settings.
func (c *ConnectivityChecker) createHTTPClient() *http.Client {
	client := &http.Client{
		Timeout: c.timeout,
	}

	if c.allowSelfSignedCerts {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return client
}

// IsReachable reports whether a server responds at all.
func (c *ConnectivityChecker) IsReachable(serverURL string) bool {
	return c.CheckServerConnectivity(serverURL).Reachable
}

// CheckStorageConnectivity checks connectivity to the storage service using
// the STORAGE_URL environment variable.
func (c *ConnectivityChecker) CheckStorageConnectivity() ConnectivityResult {
	storageURL := core.GetEnvOrDefault("STORAGE_URL", "")
	if storageURL == "" {
		return ConnectivityResult{
			Reachable: false,
			Message:   "STORAGE_URL not configured",
			Error:     core.ErrMissingConfig("STORAGE_URL"),
		}
	}
	return c.CheckServerConnectivity(strings.TrimRight(storageURL, "/") + "/health")
}
