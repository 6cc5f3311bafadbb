package validation

import (
	"os"

	"meddoc_backend/core"
)

// ValidationResult represents the result of a configuration validation check.
type ValidationResult struct {
	Valid   bool
	Message string
	Error   error
}

// ConfigValidator checks that the environment carries everything the backend
// needs before any network calls are attempted.
type ConfigValidator struct {
	envPath string
}

// NewConfigValidator creates a new ConfigValidator with default settings.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		envPath: ".env",
	}
}

// WithEnvPath sets a custom path for the .env file.
func (v *ConfigValidator) WithEnvPath(path string) *ConfigValidator {
	v.envPath = path
	return v
}

// CheckEnvFile validates that the .env file exists.
func (v *ConfigValidator) CheckEnvFile() ValidationResult {
	if err := CheckFileExists(v.envPath); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "Configuration file not found. Copy .env.example to .env and configure your storage credentials.",
			Error:   core.ErrEnvFileMissing(v.envPath),
		}
	}
	return ValidationResult{
		Valid:   true,
		Message: "Environment file found",
	}
}

// CheckStorageURL validates the STORAGE_URL environment variable.
func (v *ConfigValidator) CheckStorageURL() ValidationResult {
	storageURL := core.GetEnvOrDefault("STORAGE_URL", "")

	if storageURL == "" {
		return ValidationResult{
			Valid:   false,
			Message: "STORAGE_URL required. Set your storage service URL (e.g., https://storage.example.com)",
			Error:   core.ErrMissingConfig("STORAGE_URL"),
		}
	}

	if err := ValidateServerURL(storageURL); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "Invalid storage service URL: " + storageURL + ". Example: https://storage.example.com",
			Error:   core.ErrInvalidStorageURL(storageURL, err.Error()),
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: "Storage URL valid",
	}
}

// CheckStorageCredentials validates that the storage API key is configured.
func (v *ConfigValidator) CheckStorageCredentials() ValidationResult {
	apiKey := os.Getenv("STORAGE_API_KEY")

	if err := core.ValidateStorageAPIKey(apiKey); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "Storage authentication required. Set STORAGE_API_KEY",
			Error:   core.ErrMissingAuth("storage"),
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: "Storage authentication configured",
	}
}

// CheckWebUIPassword validates that the web UI password is configured.
func (v *ConfigValidator) CheckWebUIPassword() ValidationResult {
	if os.Getenv("WEBUI_PWD") == "" {
		return ValidationResult{
			Valid:   false,
			Message: "WEBUI_PWD required. Set a password for the web interface.",
			Error:   core.ErrMissingConfig("WEBUI_PWD"),
		}
	}
	return ValidationResult{
		Valid:   true,
		Message: "Web UI password configured",
	}
}

// CheckOpenAICredentials validates that an OpenAI-compatible API key is
// configured. This is OPTIONAL: without it the scan, chat, and diagnosis
// features are disabled but text search still works.
func (v *ConfigValidator) CheckOpenAICredentials() ValidationResult {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_KEY")
	}

	if apiKey == "" {
		return ValidationResult{
			Valid:   false,
			Message: "OpenAI API key not configured (optional - AI features disabled)",
			Error:   core.ErrMissingAuth("openai"),
		}
	}

	if err := core.ValidateOpenAIAPIKey(apiKey); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "OpenAI API key invalid",
			Error:   core.ErrMissingAuth("openai"),
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: "OpenAI API key configured",
	}
}

// CheckVisionCredentials validates that a Google Cloud Vision key is
// configured. This is OPTIONAL: without it scanned pages keep their
// embedded text layer only.
func (v *ConfigValidator) CheckVisionCredentials() ValidationResult {
	if os.Getenv("GOOGLE_VISION_API_KEY") == "" {
		return ValidationResult{
			Valid:   false,
			Message: "Google Vision key not configured (optional - OCR disabled)",
			Error:   core.ErrMissingAuth("vision"),
		}
	}
	return ValidationResult{
		Valid:   true,
		Message: "Google Vision key configured",
	}
}

// ValidateAll runs all configuration checks, including optional ones.
func (v *ConfigValidator) ValidateAll() []ValidationResult {
	return []ValidationResult{
		v.CheckEnvFile(),
		v.CheckStorageURL(),
		v.CheckStorageCredentials(),
		v.CheckWebUIPassword(),
		v.CheckOpenAICredentials(),
		v.CheckVisionCredentials(),
	}
}

// ValidateRequired runs only the checks the backend cannot start without.
// AI and OCR keys are NOT checked here: those features degrade gracefully.
// Returns the first validation failure, or nil if all required checks pass.
func (v *ConfigValidator) ValidateRequired() error {
	if result := v.CheckEnvFile(); !result.Valid {
		return result.Error
	}
	if result := v.CheckStorageURL(); !result.Valid {
		return result.Error
	}
	if result := v.CheckStorageCredentials(); !result.Valid {
		return result.Error
	}
	if result := v.CheckWebUIPassword(); !result.Valid {
		return result.Error
	}
	return nil
}

// IsValid returns true if all required configuration is present.
func (v *ConfigValidator) IsValid() bool {
	return v.ValidateRequired() == nil
}

// CountValid returns the number of valid configuration items.
func (v *ConfigValidator) CountValid() int {
	count := 0
	for _, r := range v.ValidateAll() {
		if r.Valid {
			count++
		}
	}
	return count
}
