package validation

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	if err := os.WriteFile(path, []byte("profiles: []\n"), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	if err := CheckFileExists(path); err != nil {
		t.Errorf("CheckFileExists() error for existing file: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"empty path", ""},
		{"missing file", filepath.Join(dir, "absent.yaml")},
		{"directory", dir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFileExists(tt.path)
			if err == nil {
				t.Fatal("expected error")
			}
			if _, ok := err.(*FileExistsError); !ok {
				t.Errorf("error type = %T, want *FileExistsError", err)
			}
		})
	}
}

func TestValidateServerURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid https", "https://storage.example.com", false},
		{"valid http with port", "http://localhost:8080", false},
		{"with trailing whitespace", "  https://storage.example.com  ", false},
		{"empty", "", true},
		{"no scheme", "storage.example.com", true},
		{"bad scheme", "ftp://storage.example.com", true},
		{"no host", "https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateServerURL(tt.url)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateServerURL(%q) = nil, want error", tt.url)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateServerURL(%q) = %v", tt.url, err)
			}
		})
	}
}
