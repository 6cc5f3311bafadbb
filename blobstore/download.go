package blobstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"meddoc_backend/core"
)

// DownloadOptions configures DownloadToFile.
type DownloadOptions struct {
	// ExpectedSHA256 is the optional expected checksum (lowercase hex, 64 chars).
	// If provided, the downloaded file is verified after the transfer.
	ExpectedSHA256 string
	// OnProgress is called periodically with progress updates (optional)
	OnProgress func(core.ProgressInfo)
	// Resume continues from a partial file if one exists at the destination
	Resume bool
}

// DownloadResult contains information about a completed download.
type DownloadResult struct {
	// BytesDownloaded is the number of bytes transferred in this session
	BytesDownloaded int64
	// TotalBytes is the total blob size (from the server)
	TotalBytes int64
	// Resumed indicates whether the download continued a partial file
	Resumed bool
	// ChecksumValid is true if a checksum was provided and verified
	ChecksumValid bool
	// Path is the final file path
	Path string
}

// DownloadToFile fetches a blob to a local file with progress tracking and
// optional resume. Resume uses HTTP Range requests; if the storage service
// does not honor the range, the transfer restarts from scratch.
func (c *Client) DownloadToFile(ctx context.Context, key, destPath string, opts DownloadOptions) (*DownloadResult, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	if destPath == "" {
		return nil, fmt.Errorf("blobstore: destination path is required")
	}

	// Ensure destination directory exists
	destDir := filepath.Dir(destPath)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("blobstore: failed to create destination directory: %w", err)
	}

	// Check for an existing partial file if resume is enabled
	var resumeFrom int64
	if opts.Resume {
		if info, err := os.Stat(destPath); err == nil {
			resumeFrom = info.Size()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.blobURL(key), nil)
	if err != nil {
		return nil, fmt.Errorf("blobstore: failed to create request: %w", err)
	}
	c.authorize(req)
	if resumeFrom > 0 {
		req.Header.Set("Range", core.BuildRangeHeader(resumeFrom))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blobstore: download request failed: %w", err)
	}
	defer resp.Body.Close()

	var totalSize int64
	var resumed bool

	switch resp.StatusCode {
	case http.StatusOK: // Full content
		totalSize = resp.ContentLength
		resumeFrom = 0 // Server sent the whole blob, start fresh

	case http.StatusPartialContent: // Resume honored
		resumed = true
		if contentRange := resp.Header.Get("Content-Range"); contentRange != "" {
			_, _, total, parseErr := core.ParseContentRange(contentRange)
			if parseErr == nil && total > 0 {
				totalSize = total
			}
		}
		// Fallback: Content-Length covers the remainder only
		if totalSize == 0 && resp.ContentLength > 0 {
			totalSize = resumeFrom + resp.ContentLength
		}

	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, key)

	case http.StatusRequestedRangeNotSatisfiable:
		// The partial file may already be complete
		if opts.ExpectedSHA256 != "" {
			valid, verifyErr := core.VerifyChecksum(destPath, opts.ExpectedSHA256)
			if verifyErr != nil {
				return nil, fmt.Errorf("blobstore: range not satisfiable and checksum verification failed: %w", verifyErr)
			}
			if valid {
				info, _ := os.Stat(destPath)
				return &DownloadResult{
					BytesDownloaded: 0,
					TotalBytes:      info.Size(),
					Resumed:         true,
					ChecksumValid:   true,
					Path:            destPath,
				}, nil
			}
		}
		// Discard the partial file and retry from scratch
		_ = os.Remove(destPath)
		opts.Resume = false
		return c.DownloadToFile(ctx, key, destPath, opts)

	default:
		return nil, fmt.Errorf("blobstore: unexpected status code: %d %s", resp.StatusCode, resp.Status)
	}

	var file *os.File
	if resumed {
		file, err = os.OpenFile(destPath, os.O_APPEND|os.O_WRONLY, 0644)
	} else {
		file, err = os.Create(destPath)
	}
	if err != nil {
		return nil, fmt.Errorf("blobstore: failed to open destination file: %w", err)
	}
	defer file.Close()

	tracker := core.NewProgressTracker(totalSize)
	if resumed {
		tracker.SetDownloaded(resumeFrom)
	}

	reader := &progressReader{
		reader:     resp.Body,
		tracker:    tracker,
		onProgress: opts.OnProgress,
	}

	bytesWritten, err := io.Copy(file, reader)
	if err != nil {
		return nil, fmt.Errorf("blobstore: download interrupted: %w", err)
	}

	if err := file.Sync(); err != nil {
		return nil, fmt.Errorf("blobstore: failed to sync file: %w", err)
	}

	result := &DownloadResult{
		BytesDownloaded: bytesWritten,
		TotalBytes:      totalSize,
		Resumed:         resumed,
		ChecksumValid:   false,
		Path:            destPath,
	}

	if opts.ExpectedSHA256 != "" {
		// Close before hashing so all bytes are flushed
		file.Close()

		valid, verifyErr := core.VerifyChecksum(destPath, opts.ExpectedSHA256)
		if verifyErr != nil {
			return nil, fmt.Errorf("blobstore: checksum verification failed: %w", verifyErr)
		}
		if !valid {
			return nil, fmt.Errorf("blobstore: checksum mismatch: file may be corrupted")
		}
		result.ChecksumValid = true
	}

	return result, nil
}

// progressReader wraps an io.Reader to track download progress.
type progressReader struct {
	reader     io.Reader
	tracker    *core.ProgressTracker
	onProgress func(core.ProgressInfo)
	// For rate-limiting progress callbacks
	lastCallback int64
}

func (r *progressReader) Read(p []byte) (n int, err error) {
	n, err = r.reader.Read(p)
	if n > 0 {
		r.tracker.Update(int64(n))

		// Progress callbacks are rate-limited to every ~100KB
		if r.onProgress != nil {
			downloaded := r.tracker.Downloaded()
			if downloaded-r.lastCallback >= 102400 || err == io.EOF {
				r.onProgress(r.tracker.Progress())
				r.lastCallback = downloaded
			}
		}
	}
	return n, err
}
