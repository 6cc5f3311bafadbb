package shutdown

import (
	"context"
	"os"
	"path/filepath"

	"meddoc_backend/core"
	"meddoc_backend/logging"

	"go.uber.org/zap"
)

// CleanupStagedUploads returns a shutdown function that removes staged upload
// files left in the upload directory. Uploaded PDFs are staged with the
// "upload-*" pattern before extraction; anything still matching at shutdown
// is an orphan from an interrupted run.
//
// Priority recommendation: 40+ (final cleanup, after services stopped)
//
// The cleanup function:
//   - Removes files matching "upload-*" in the upload directory
//   - Logs each file removal (success or failure)
//   - Continues cleanup even if individual file removals fail
//   - Returns nil to avoid blocking shutdown (errors are logged)
//
// Usage:
//
//	manager.Register("cleanup-uploads", 45, shutdown.CleanupStagedUploads(logger, cfg.UploadDir))
func CleanupStagedUploads(logger *logging.Logger, uploadDir string) core.ShutdownFunc {
	return func(ctx context.Context) error {
		return cleanupStagedFiles(ctx, logger, uploadDir)
	}
}

// CleanupUploadDir returns a shutdown function that removes staged upload
// files AND the upload directory itself. Use this when the upload directory
// is purely transient and should not persist between runs.
//
// Priority recommendation: 45+ (very final cleanup)
//
// Usage:
//
//	manager.Register("cleanup-upload-dir", 50, shutdown.CleanupUploadDir(logger, cfg.UploadDir))
func CleanupUploadDir(logger *logging.Logger, uploadDir string) core.ShutdownFunc {
	return func(ctx context.Context) error {
		// First clean up staged files
		if err := cleanupStagedFiles(ctx, logger, uploadDir); err != nil {
			// Log but continue - we still want to try removing the directory
			logger.Warn("Error during staged file cleanup, continuing with directory removal",
				zap.Error(err),
			)
		}

		// Check context before potentially expensive directory removal
		select {
		case <-ctx.Done():
			logger.Warn("Shutdown context cancelled, skipping directory removal")
			return nil
		default:
		}

		// Then remove the directory itself
		return removeUploadDir(logger, uploadDir)
	}
}

// cleanupStagedFiles removes files matching "upload-*" in the upload directory.
// It returns nil even if some files fail to delete (errors are logged).
func cleanupStagedFiles(ctx context.Context, logger *logging.Logger, uploadDir string) error {
	logger.Debug("Starting staged upload cleanup",
		zap.String("directory", uploadDir),
	)

	pattern := filepath.Join(uploadDir, "upload-*")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		logger.Error("Failed to list staged upload files",
			zap.String("pattern", pattern),
			zap.Error(err),
		)
		// Return nil to not block shutdown
		return nil
	}

	if len(matches) == 0 {
		logger.Debug("No staged upload files to clean up")
		return nil
	}

	logger.Info("Cleaning up staged upload files",
		zap.Int("file_count", len(matches)),
	)

	var removedCount int
	var failedCount int

	for _, match := range matches {
		// Check context between file deletions
		select {
		case <-ctx.Done():
			logger.Warn("Shutdown context cancelled during cleanup",
				zap.Int("removed", removedCount),
				zap.Int("remaining", len(matches)-removedCount-failedCount),
			)
			return nil
		default:
		}

		if err := os.Remove(match); err != nil {
			failedCount++
			logger.Warn("Failed to remove staged upload file",
				zap.String("file", filepath.Base(match)),
				zap.Error(err),
			)
		} else {
			removedCount++
			logger.Debug("Removed staged upload file",
				zap.String("file", filepath.Base(match)),
			)
		}
	}

	logger.Info("Staged upload cleanup complete",
		zap.Int("removed", removedCount),
		zap.Int("failed", failedCount),
	)

	return nil
}

// removeUploadDir removes the upload directory and all its contents.
// It returns nil if the directory doesn't exist.
func removeUploadDir(logger *logging.Logger, uploadDir string) error {
	info, err := os.Stat(uploadDir)
	if os.IsNotExist(err) {
		logger.Debug("Upload directory does not exist, nothing to remove",
			zap.String("directory", uploadDir),
		)
		return nil
	}
	if err != nil {
		logger.Error("Failed to stat upload directory",
			zap.String("directory", uploadDir),
			zap.Error(err),
		)
		// Return nil to not block shutdown
		return nil
	}

	if !info.IsDir() {
		logger.Warn("Upload path is not a directory",
			zap.String("path", uploadDir),
		)
		return nil
	}

	if err := os.RemoveAll(uploadDir); err != nil {
		logger.Error("Failed to remove upload directory",
			zap.String("directory", uploadDir),
			zap.Error(err),
		)
		// Return nil to not block shutdown
		return nil
	}

	logger.Info("Removed upload directory",
		zap.String("directory", uploadDir),
	)

	return nil
}
