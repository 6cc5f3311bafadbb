// Package vision prepares rendered document-page bitmaps for the AI
// collaborators.
//
// imager.go implements the PageImager molecule that fetches rendered page
// bitmaps from the document storage service and bounds their size for
// downstream API calls. It composes:
//   - preprocess.go: decode / scale / PNG-encode pipeline
//   - logging.Logger: structured logging
package vision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"meddoc_backend/logging"

	"go.uber.org/zap"
)

// Common imager errors.
var (
	// ErrPageNotFound indicates the storage service has no render for the page.
	ErrPageNotFound = errors.New("vision: page render not found")

	// ErrNilHTTPClient indicates the HTTP client is nil.
	ErrNilHTTPClient = errors.New("vision: HTTP client cannot be nil")
)

// PageImagerConfig holds configuration for the page imager.
type PageImagerConfig struct {
	// BaseURL is the document storage service base URL
	BaseURL string

	// MaxDimension bounds the longest side of returned bitmaps
	// (0 uses DefaultMaxDimension)
	MaxDimension int

	// MaxDownloadSize caps a single page render download in bytes (0 = no limit)
	MaxDownloadSize int64
}

// DefaultPageImagerConfig returns sensible defaults for the given storage URL.
func DefaultPageImagerConfig(baseURL string) PageImagerConfig {
	return PageImagerConfig{
		BaseURL:         baseURL,
		MaxDimension:    DefaultMaxDimension,
		MaxDownloadSize: 32 * 1024 * 1024,
	}
}

// PageImager fetches rendered page bitmaps from the storage service and
// prepares them for OCR and vision-model calls. It satisfies the OCR
// processor's PageRenderer interface.
//
// Thread-Safety:
//   - PageImager is safe for concurrent use
type PageImager struct {
	config     PageImagerConfig
	httpClient *http.Client
	logger     *logging.Logger
}

// NewPageImager creates a PageImager talking to the storage service.
func NewPageImager(httpClient *http.Client, logger *logging.Logger, config PageImagerConfig) (*PageImager, error) {
	if httpClient == nil {
		return nil, ErrNilHTTPClient
	}
	if config.BaseURL == "" {
		return nil, errors.New("vision: storage base URL cannot be empty")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("vision: invalid storage base URL: %w", err)
	}

	return &PageImager{
		config:     config,
		httpClient: httpClient,
		logger:     logger.Named("page-imager"),
	}, nil
}

// RenderPage fetches the rendered bitmap for one page of a stored document
// and returns it as PNG bytes bounded by the configured max dimension.
func (p *PageImager) RenderPage(ctx context.Context, blobKey string, pageNumber int) ([]byte, error) {
	if blobKey == "" {
		return nil, errors.New("vision: blob key cannot be empty")
	}
	if pageNumber < 1 {
		return nil, fmt.Errorf("vision: invalid page number %d", pageNumber)
	}

	renderURL := fmt.Sprintf("%s/blobs/%s/pages/%d.png",
		p.config.BaseURL, url.PathEscape(blobKey), pageNumber)

	log := p.logger.With(
		zap.String("blob_key", blobKey),
		zap.Int("page_number", pageNumber),
	)

	req, err := http.NewRequestWithContext(ctx, "GET", renderURL, nil)
	if err != nil {
		return nil, fmt.Errorf("vision: failed to create render request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision: failed to fetch page render: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s page %d", ErrPageNotFound, blobKey, pageNumber)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision: page render fetch returned status %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if p.config.MaxDownloadSize > 0 {
		body = io.LimitReader(resp.Body, p.config.MaxDownloadSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("vision: failed to read page render: %w", err)
	}
	if p.config.MaxDownloadSize > 0 && int64(len(data)) > p.config.MaxDownloadSize {
		return nil, fmt.Errorf("vision: page render exceeds %d bytes", p.config.MaxDownloadSize)
	}

	log.Debug("page render fetched", zap.Int("size_bytes", len(data)))

	return PreparePage(data, p.config.MaxDimension)
}
