// Package validation provides startup checks for the document triage
// backend: configuration presence, storage service reachability and
// authentication, and disk space for the local data directory.
package validation

import (
	"fmt"
	"os"
	"path/filepath"

	"meddoc_backend/core"
)

// DiskSpaceInfo contains information about disk space.
type DiskSpaceInfo struct {
	// Path that was checked
	Path string
	// Total disk space in bytes
	Total int64
	// Free disk space in bytes
	Free int64
	// Used disk space in bytes
	Used int64
	// Human-readable total
	TotalFormatted string
	// Human-readable free
	FreeFormatted string
	// Human-readable used
	UsedFormatted string
	// Percentage used (0-100)
	UsedPercent float64
}

// DiskSpaceError indicates insufficient disk space.
type DiskSpaceError struct {
	Path      string
	Required  int64
	Available int64
	Message   string
}

func (e *DiskSpaceError) Error() string {
	return e.Message
}

// MinimumDataSpaceBytes is the free space required in the data directory.
// Covers cached source PDFs (up to 100MB each), rendered page bitmaps,
// and the SQLite database with headroom for WAL growth.
const MinimumDataSpaceBytes int64 = 2 * core.BytesPerGB

// GetDiskSpace returns disk space information for the filesystem containing
// the given path. If the path does not exist, its nearest existing ancestor
// is checked instead.
func GetDiskSpace(path string) (*DiskSpaceInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			parent := filepath.Dir(path)
			if parent != "" && parent != path {
				return GetDiskSpace(parent)
			}
		}
		return nil, fmt.Errorf("cannot access path %s: %w", path, err)
	}

	if !info.IsDir() {
		path = filepath.Dir(path)
	}

	total, free, err := getDiskSpace(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk space for %s: %w", path, err)
	}

	used := total - free
	var usedPercent float64
	if total > 0 {
		usedPercent = float64(used) / float64(total) * 100
	}

	return &DiskSpaceInfo{
		Path:           path,
		Total:          total,
		Free:           free,
		Used:           used,
		TotalFormatted: core.FormatBytes(total),
		FreeFormatted:  core.FormatBytes(free),
		UsedFormatted:  core.FormatBytes(used),
		UsedPercent:    usedPercent,
	}, nil
}

// CheckDiskSpace verifies there is at least requiredBytes free at the given
// path. Returns a *DiskSpaceError if not.
func CheckDiskSpace(path string, requiredBytes int64) error {
	info, err := GetDiskSpace(path)
	if err != nil {
		return err
	}

	if info.Free < requiredBytes {
		return &DiskSpaceError{
			Path:      path,
			Required:  requiredBytes,
			Available: info.Free,
			Message: fmt.Sprintf("insufficient disk space at %s: need %s, have %s free",
				path, core.FormatBytes(requiredBytes), info.FreeFormatted),
		}
	}

	return nil
}

// CheckDataDirectorySpace verifies the data directory has enough free space
// for document caching and the triage database.
func CheckDataDirectorySpace(path string) error {
	return CheckDiskSpace(path, MinimumDataSpaceBytes)
}
