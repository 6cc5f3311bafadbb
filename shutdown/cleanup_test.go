package shutdown

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"meddoc_backend/logging"
)

func TestCleanupStagedUploads_RemovesStagedFiles(t *testing.T) {
	logger := logging.NewNop()
	tempDir := t.TempDir()

	// Create some staged upload files
	stagedFiles := []string{
		"upload-abc123.pdf",
		"upload-def456.pdf",
		"upload-ghi789.pdf",
	}
	for _, f := range stagedFiles {
		path := filepath.Join(tempDir, f)
		if err := os.WriteFile(path, []byte("stub"), 0644); err != nil {
			t.Fatalf("Failed to create test file %s: %v", f, err)
		}
	}

	// Create a non-staged file that should survive
	keepPath := filepath.Join(tempDir, "report.xlsx")
	if err := os.WriteFile(keepPath, []byte("keep"), 0644); err != nil {
		t.Fatalf("Failed to create keep file: %v", err)
	}

	cleanupFn := CleanupStagedUploads(logger, tempDir)
	if err := cleanupFn(context.Background()); err != nil {
		t.Errorf("CleanupStagedUploads returned unexpected error: %v", err)
	}

	for _, f := range stagedFiles {
		path := filepath.Join(tempDir, f)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("Expected %s to be removed", f)
		}
	}

	if _, err := os.Stat(keepPath); err != nil {
		t.Errorf("Expected non-staged file to survive: %v", err)
	}
}

func TestCleanupStagedUploads_HandlesEmptyDirectory(t *testing.T) {
	logger := logging.NewNop()
	tempDir := t.TempDir()

	cleanupFn := CleanupStagedUploads(logger, tempDir)
	if err := cleanupFn(context.Background()); err != nil {
		t.Errorf("CleanupStagedUploads on empty directory returned error: %v", err)
	}
}

func TestCleanupStagedUploads_HandlesMissingDirectory(t *testing.T) {
	logger := logging.NewNop()
	nonExistentDir := filepath.Join(t.TempDir(), "does-not-exist")

	cleanupFn := CleanupStagedUploads(logger, nonExistentDir)
	if err := cleanupFn(context.Background()); err != nil {
		t.Errorf("CleanupStagedUploads on missing directory returned error: %v", err)
	}
}

func TestCleanupUploadDir_RemovesDirectory(t *testing.T) {
	logger := logging.NewNop()
	parentDir := t.TempDir()

	uploadDir := filepath.Join(parentDir, "uploads")
	if err := os.Mkdir(uploadDir, 0755); err != nil {
		t.Fatalf("Failed to create upload dir: %v", err)
	}

	files := []string{"upload-abc.pdf", "other_file.txt"}
	for _, f := range files {
		path := filepath.Join(uploadDir, f)
		if err := os.WriteFile(path, []byte("stub"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}

	cleanupFn := CleanupUploadDir(logger, uploadDir)
	if err := cleanupFn(context.Background()); err != nil {
		t.Errorf("CleanupUploadDir returned unexpected error: %v", err)
	}

	if _, err := os.Stat(uploadDir); !os.IsNotExist(err) {
		t.Error("Expected upload directory to be removed")
	}
}

func TestCleanupUploadDir_HandlesMissingDirectory(t *testing.T) {
	logger := logging.NewNop()
	nonExistentDir := filepath.Join(t.TempDir(), "does-not-exist")

	cleanupFn := CleanupUploadDir(logger, nonExistentDir)
	if err := cleanupFn(context.Background()); err != nil {
		t.Errorf("CleanupUploadDir on missing directory returned error: %v", err)
	}
}

func TestCleanupStagedUploads_RespectsContextCancellation(t *testing.T) {
	logger := logging.NewNop()
	tempDir := t.TempDir()

	for i := 0; i < 5; i++ {
		path := filepath.Join(tempDir, "upload-"+string(rune('a'+i))+".pdf")
		if err := os.WriteFile(path, []byte("stub"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Cancelled context stops the walk but never blocks shutdown
	cleanupFn := CleanupStagedUploads(logger, tempDir)
	if err := cleanupFn(ctx); err != nil {
		t.Errorf("CleanupStagedUploads with cancelled context returned error: %v", err)
	}
}

func TestCleanupUploadDir_RespectsContextCancellation(t *testing.T) {
	logger := logging.NewNop()
	parentDir := t.TempDir()

	uploadDir := filepath.Join(parentDir, "uploads")
	if err := os.Mkdir(uploadDir, 0755); err != nil {
		t.Fatalf("Failed to create upload dir: %v", err)
	}

	path := filepath.Join(uploadDir, "upload-a.pdf")
	if err := os.WriteFile(path, []byte("stub"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cleanupFn := CleanupUploadDir(logger, uploadDir)
	if err := cleanupFn(ctx); err != nil {
		t.Errorf("CleanupUploadDir with cancelled context returned error: %v", err)
	}

	// Directory removal is skipped when the context is already cancelled
	if _, err := os.Stat(uploadDir); err != nil {
		t.Errorf("Expected upload directory to survive cancelled cleanup: %v", err)
	}
}
