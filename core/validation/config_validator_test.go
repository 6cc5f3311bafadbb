package validation

import (
	"os"
	"path/filepath"
	"testing"

	"meddoc_backend/core"
)

func writeEnvFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	content := "STORAGE_URL=https://storage.example.com\nSTORAGE_API_KEY=test-key-12345678\nWEBUI_PWD=secret\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing env file: %v", err)
	}
	return path
}

func TestConfigValidator_CheckEnvFile(t *testing.T) {
	v := NewConfigValidator().WithEnvPath(writeEnvFile(t))
	if result := v.CheckEnvFile(); !result.Valid {
		t.Errorf("CheckEnvFile() invalid for existing file: %v", result.Error)
	}

	v = NewConfigValidator().WithEnvPath(filepath.Join(t.TempDir(), "absent.env"))
	result := v.CheckEnvFile()
	if result.Valid {
		t.Error("CheckEnvFile() valid for missing file")
	}
	if core.GetErrorCode(result.Error) != core.ErrCodeEnvFileMissing {
		t.Errorf("error code = %q, want %q", core.GetErrorCode(result.Error), core.ErrCodeEnvFileMissing)
	}
}

func TestConfigValidator_CheckStorageURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantValid bool
	}{
		{"valid https", "https://storage.example.com", true},
		{"valid http", "http://localhost:8080", true},
		{"missing", "", false},
		{"no scheme", "storage.example.com", false},
		{"bad scheme", "ftp://storage.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STORAGE_URL", tt.url)

			result := NewConfigValidator().CheckStorageURL()
			if result.Valid != tt.wantValid {
				t.Errorf("CheckStorageURL(%q) valid = %v, want %v", tt.url, result.Valid, tt.wantValid)
			}
		})
	}
}

func TestConfigValidator_CheckStorageCredentials(t *testing.T) {
	t.Setenv("STORAGE_API_KEY", "storage-key-12345")
	if result := NewConfigValidator().CheckStorageCredentials(); !result.Valid {
		t.Errorf("valid key rejected: %v", result.Error)
	}

	t.Setenv("STORAGE_API_KEY", "")
	result := NewConfigValidator().CheckStorageCredentials()
	if result.Valid {
		t.Error("missing key accepted")
	}
	if core.GetErrorCode(result.Error) != core.ErrCodeMissingAuth {
		t.Errorf("error code = %q, want %q", core.GetErrorCode(result.Error), core.ErrCodeMissingAuth)
	}
}

func TestConfigValidator_CheckWebUIPassword(t *testing.T) {
	t.Setenv("WEBUI_PWD", "secret")
	if result := NewConfigValidator().CheckWebUIPassword(); !result.Valid {
		t.Errorf("configured password rejected: %v", result.Error)
	}

	t.Setenv("WEBUI_PWD", "")
	if result := NewConfigValidator().CheckWebUIPassword(); result.Valid {
		t.Error("missing password accepted")
	}
}

func TestConfigValidator_OptionalChecks(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_KEY", "")
	t.Setenv("GOOGLE_VISION_API_KEY", "")

	v := NewConfigValidator()
	if v.CheckOpenAICredentials().Valid {
		t.Error("missing OpenAI key reported valid")
	}
	if v.CheckVisionCredentials().Valid {
		t.Error("missing Vision key reported valid")
	}

	t.Setenv("OPENAI_API_KEY", "sk-test-key-12345")
	t.Setenv("GOOGLE_VISION_API_KEY", "vision-key")
	if !v.CheckOpenAICredentials().Valid {
		t.Error("configured OpenAI key reported invalid")
	}
	if !v.CheckVisionCredentials().Valid {
		t.Error("configured Vision key reported invalid")
	}
}

func TestConfigValidator_CheckOpenAICredentials_LegacyKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_KEY", "legacy-key-12345")

	if result := NewConfigValidator().CheckOpenAICredentials(); !result.Valid {
		t.Errorf("legacy OPENAI_KEY rejected: %v", result.Error)
	}
}

func TestConfigValidator_ValidateRequired(t *testing.T) {
	envPath := writeEnvFile(t)
	t.Setenv("STORAGE_URL", "https://storage.example.com")
	t.Setenv("STORAGE_API_KEY", "storage-key-12345")
	t.Setenv("WEBUI_PWD", "secret")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GOOGLE_VISION_API_KEY", "")

	v := NewConfigValidator().WithEnvPath(envPath)
	if err := v.ValidateRequired(); err != nil {
		t.Errorf("ValidateRequired() = %v with complete required config", err)
	}
	if !v.IsValid() {
		t.Error("IsValid() = false with complete required config")
	}

	// Required validation does not demand AI keys, ValidateAll counts them
	if got := v.CountValid(); got != 4 {
		t.Errorf("CountValid() = %d, want 4 (AI and OCR keys unset)", got)
	}

	t.Setenv("STORAGE_API_KEY", "")
	if err := v.ValidateRequired(); err == nil {
		t.Error("ValidateRequired() = nil with missing storage key")
	}
}
