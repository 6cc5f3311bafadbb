package core

import (
	"fmt"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeEnvFileMissing     = "ENV_FILE_MISSING"
	ErrCodeInvalidStorageURL  = "INVALID_STORAGE_URL"
	ErrCodeMissingAuth        = "MISSING_AUTH"
	ErrCodeStorageUnreachable = "STORAGE_UNREACHABLE"
	ErrCodeAuthFailed         = "AUTH_FAILED"
	ErrCodeDataDirUnwritable  = "DATA_DIR_UNWRITABLE"
	ErrCodeMissingConfig      = "MISSING_CONFIG"
)

// ErrEnvFileMissing returns an error for missing .env file
func ErrEnvFileMissing(path string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeEnvFileMissing,
		Message: fmt.Sprintf("Configuration file not found: %s", path),
		Action:  "Copy example.env to .env and configure the required values",
	}
}

// ErrInvalidStorageURL returns an error for invalid storage URL format
func ErrInvalidStorageURL(url string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidStorageURL,
		Message: fmt.Sprintf("Invalid STORAGE_URL '%s': %s", url, reason),
		Action:  "Set STORAGE_URL to a valid URL (e.g., https://storage.example.com)",
	}
}

// ErrMissingAuth returns an error for missing authentication credentials
func ErrMissingAuth(service string) *ConfigError {
	var action string
	switch service {
	case "storage":
		action = "Set STORAGE_API_KEY in your .env file"
	case "openai":
		action = "Set OPENAI_API_KEY in your .env file (or configure a local LLM)"
	case "vision":
		action = "Set GOOGLE_VISION_API_KEY in your .env file to enable OCR"
	default:
		action = fmt.Sprintf("Set the required API key for %s in your .env file", service)
	}
	return &ConfigError{
		Code:    ErrCodeMissingAuth,
		Message: fmt.Sprintf("Missing authentication credentials for %s", service),
		Action:  action,
	}
}

// ErrStorageUnreachable returns an error when the storage service cannot be reached
func ErrStorageUnreachable(url string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeStorageUnreachable,
		Message: fmt.Sprintf("Cannot connect to storage service at %s: %s", url, reason),
		Action:  "Check that STORAGE_URL is correct and the service is running. For self-signed certificates, set ALLOW_SELF_SIGNED_CERTS=true",
	}
}

// ErrAuthFailed returns an error when authentication fails
func ErrAuthFailed(service string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeAuthFailed,
		Message: fmt.Sprintf("Authentication failed for %s: %s", service, reason),
		Action:  "Verify your API key is correct and has not expired",
	}
}

// ErrDataDirUnwritable returns an error when the data directory cannot be written
func ErrDataDirUnwritable(path string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeDataDirUnwritable,
		Message: fmt.Sprintf("Data directory is not writable: %s (%s)", path, reason),
		Action:  "Check DATA_DIR permissions or point it at a writable location",
	}
}

// ErrMissingConfig returns an error for missing required configuration
func ErrMissingConfig(varName string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("Missing required configuration: %s", varName),
		Action:  fmt.Sprintf("Set %s in your .env file", varName),
	}
}

// IsConfigError checks if an error is a ConfigError and returns it if so
func IsConfigError(err error) (*ConfigError, bool) {
	if configErr, ok := err.(*ConfigError); ok {
		return configErr, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error if it's a ConfigError
func GetErrorCode(err error) string {
	if configErr, ok := IsConfigError(err); ok {
		return configErr.Code
	}
	return ""
}
