// Package blobstore is the HTTP client for the opaque blob service that
// holds uploaded PDFs and their rendered page bitmaps. Blobs are addressed
// by client-generated UUID keys; the service itself never inspects content.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"meddoc_backend/logging"
)

// Sentinel errors for blob operations.
var (
	ErrBlobNotFound  = errors.New("blobstore: blob not found")
	ErrEmptyKey      = errors.New("blobstore: blob key cannot be empty")
	ErrEmptyBaseURL  = errors.New("blobstore: base URL cannot be empty")
	ErrNilHTTPClient = errors.New("blobstore: HTTP client cannot be nil")
	ErrNilLogger     = errors.New("blobstore: logger cannot be nil")
	ErrUploadFailed  = errors.New("blobstore: upload rejected by storage service")
)

// Config holds configuration for the blob client.
type Config struct {
	// BaseURL is the storage service root (e.g., "https://storage.example.com")
	BaseURL string
	// APIKey authenticates every request via the X-API-Key header
	APIKey string
}

// Client talks to the blob storage service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a blob client.
// Returns an error if any dependency is missing.
func NewClient(httpClient *http.Client, logger *logging.Logger, config Config) (*Client, error) {
	if httpClient == nil {
		return nil, ErrNilHTTPClient
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if config.BaseURL == "" {
		return nil, ErrEmptyBaseURL
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		apiKey:     config.APIKey,
		httpClient: httpClient,
		logger:     logger.Named("blobstore"),
	}, nil
}

// NewKey returns a fresh blob key. Keys are UUIDs generated client-side so
// an upload can be retried idempotently against the same key.
func NewKey() string {
	return uuid.NewString()
}

// blobURL builds the URL for a blob key.
func (c *Client) blobURL(key string) string {
	return c.baseURL + "/blobs/" + url.PathEscape(key)
}

// Upload stores the content of r under a fresh key and returns the key.
// The original file name travels in the X-Blob-Name header for display
// purposes only; the blob is addressed solely by its key.
func (c *Client) Upload(ctx context.Context, r io.Reader, name, contentType string) (string, error) {
	key := NewKey()
	if err := c.UploadWithKey(ctx, key, r, name, contentType); err != nil {
		return "", err
	}
	return key, nil
}

// UploadWithKey stores the content of r under the given key.
func (c *Client) UploadWithKey(ctx context.Context, key string, r io.Reader, name, contentType string) error {
	if key == "" {
		return ErrEmptyKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.blobURL(key), r)
	if err != nil {
		return fmt.Errorf("blobstore: failed to create upload request: %w", err)
	}
	c.authorize(req)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if name != "" {
		req.Header.Set("X-Blob-Name", name)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("blobstore: upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		c.logger.Warn("blob upload rejected",
			zap.String("key", key),
			zap.Int("status_code", resp.StatusCode))
		return fmt.Errorf("%w: status %d", ErrUploadFailed, resp.StatusCode)
	}

	c.logger.Debug("blob uploaded",
		zap.String("key", key),
		zap.String("name", name))
	return nil
}

// Download opens a blob for reading. The caller must close the returned
// reader. The second return value is the content length, or -1 if unknown.
func (c *Client) Download(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	if key == "" {
		return nil, 0, ErrEmptyKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.blobURL(key), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("blobstore: failed to create download request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("blobstore: download request failed: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, resp.ContentLength, nil
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, 0, fmt.Errorf("%w: %s", ErrBlobNotFound, key)
	default:
		resp.Body.Close()
		return nil, 0, fmt.Errorf("blobstore: download failed with status %d", resp.StatusCode)
	}
}

// Delete removes a blob. Deleting a missing blob is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.blobURL(key), nil)
	if err != nil {
		return fmt.Errorf("blobstore: failed to create delete request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("blobstore: delete request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return fmt.Errorf("blobstore: delete failed with status %d", resp.StatusCode)
	}
}

// Stat returns the size of a blob without downloading it.
func (c *Client) Stat(ctx context.Context, key string) (int64, error) {
	if key == "" {
		return 0, ErrEmptyKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.blobURL(key), nil)
	if err != nil {
		return 0, fmt.Errorf("blobstore: failed to create stat request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("blobstore: stat request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.ContentLength, nil
	case http.StatusNotFound:
		return 0, fmt.Errorf("%w: %s", ErrBlobNotFound, key)
	default:
		return 0, fmt.Errorf("blobstore: stat failed with status %d", resp.StatusCode)
	}
}

// Ping checks that the storage service answers at all.
// Used by the startup validation suite and the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("blobstore: failed to create ping request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("blobstore: storage service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("blobstore: storage service unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// BaseURL returns the configured storage service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
}
