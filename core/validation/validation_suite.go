package validation

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// ValidationStep represents a single validation step with its status.
type ValidationStep struct {
	Name    string
	Status  StepStatus
	Message string
	Error   error
	Latency time.Duration
}

// StepStatus represents the status of a validation step.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepPassed
	StepFailed
	StepWarning
	StepSkipped
)

// String returns the string representation of a step status.
func (s StepStatus) String() string {
	switch s {
	case StepPending:
		return "pending"
	case StepRunning:
		return "running"
	case StepPassed:
		return "passed"
	case StepFailed:
		return "failed"
	case StepWarning:
		return "warning"
	case StepSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// SuiteResult represents the complete result of validation suite execution.
type SuiteResult struct {
	Steps       []ValidationStep
	TotalSteps  int
	PassedSteps int
	FailedSteps int
	Warnings    int
	Duration    time.Duration
	Success     bool
}

// ValidationSuite runs all startup checks in sequence with progress output:
// configuration, storage connectivity and authentication, optional AI
// credentials, and data directory disk space.
type ValidationSuite struct {
	output               io.Writer
	configValidator      *ConfigValidator
	connectivityChecker  *ConnectivityChecker
	authChecker          *AuthChecker
	dataDir              string
	allowSelfSignedCerts bool
	timeout              time.Duration
	showProgress         bool
	failFast             bool
}

// NewValidationSuite creates a new ValidationSuite with default settings.
func NewValidationSuite() *ValidationSuite {
	return &ValidationSuite{
		output:               os.Stdout,
		configValidator:      NewConfigValidator(),
		connectivityChecker:  NewConnectivityChecker(),
		authChecker:          NewAuthChecker(),
		allowSelfSignedCerts: false,
		timeout:              30 * time.Second,
		showProgress:         true,
		failFast:             false,
	}
}

// WithOutput sets the output writer for progress messages.
func (s *ValidationSuite) WithOutput(w io.Writer) *ValidationSuite {
	s.output = w
	return s
}

// WithAllowSelfSignedCerts configures whether to allow self-signed certificates.
func (s *ValidationSuite) WithAllowSelfSignedCerts(allow bool) *ValidationSuite {
	s.allowSelfSignedCerts = allow
	s.connectivityChecker.WithAllowSelfSignedCerts(allow)
	s.authChecker.WithAllowSelfSignedCerts(allow)
	return s
}

// WithTimeout sets the timeout for network operations.
func (s *ValidationSuite) WithTimeout(timeout time.Duration) *ValidationSuite {
	s.timeout = timeout
	s.connectivityChecker.WithTimeout(timeout)
	s.authChecker.WithTimeout(timeout)
	return s
}

// WithShowProgress enables or disables progress output.
func (s *ValidationSuite) WithShowProgress(show bool) *ValidationSuite {
	s.showProgress = show
	return s
}

// WithFailFast stops validation on first failure if enabled.
func (s *ValidationSuite) WithFailFast(failFast bool) *ValidationSuite {
	s.failFast = failFast
	return s
}

// WithEnvPath sets a custom path for the .env file.
func (s *ValidationSuite) WithEnvPath(path string) *ValidationSuite {
	s.configValidator.WithEnvPath(path)
	return s
}

// WithDataDir sets the data directory to check for disk space.
// If unset, the disk space check is skipped.
func (s *ValidationSuite) WithDataDir(path string) *ValidationSuite {
	s.dataDir = path
	return s
}

// Validate runs all validation checks in sequence with progress output.
func (s *ValidationSuite) Validate() SuiteResult {
	startTime := time.Now()
	steps := make([]ValidationStep, 0, 8)

	if s.showProgress {
		s.printHeader("Document Triage Configuration Validation")
	}

	// Configuration checks, no network
	configChecks := []struct {
		name string
		fn   func() ValidationResult
	}{
		{"Environment File", s.configValidator.CheckEnvFile},
		{"Storage URL Configuration", s.configValidator.CheckStorageURL},
		{"Storage Credentials", s.configValidator.CheckStorageCredentials},
		{"Web UI Password", s.configValidator.CheckWebUIPassword},
	}
	for _, check := range configChecks {
		step := s.runStep(check.name, func() (bool, string, error) {
			result := check.fn()
			return result.Valid, result.Message, result.Error
		})
		steps = append(steps, step)
		if s.failFast && step.Status == StepFailed {
			return s.buildResult(steps, startTime)
		}
	}

	// AI keys are optional: absence is a warning, not a failure
	steps = append(steps, s.runOptionalStep("AI Credentials", s.configValidator.CheckOpenAICredentials))
	steps = append(steps, s.runOptionalStep("OCR Credentials", s.configValidator.CheckVisionCredentials))

	// Storage connectivity, only if configuration is valid
	var step ValidationStep
	if s.hasAllPassed(steps) {
		step = s.runStep("Storage Connectivity", func() (bool, string, error) {
			result := s.connectivityChecker.CheckStorageConnectivity()
			msg := result.Message
			if result.Latency > 0 {
				msg = fmt.Sprintf("%s (latency: %v)", msg, result.Latency.Round(time.Millisecond))
			}
			return result.Reachable, msg, result.Error
		})
	} else {
		step = s.skipStep("Storage Connectivity", "Skipped due to configuration errors")
	}
	steps = append(steps, step)
	if s.failFast && step.Status == StepFailed {
		return s.buildResult(steps, startTime)
	}

	// Storage authentication, only if the service answered
	if step.Status == StepPassed {
		step = s.runStep("Storage Authentication", func() (bool, string, error) {
			result := s.authChecker.CheckStorageAuthFromEnv()
			return result.Authenticated, result.Message, result.Error
		})
	} else {
		step = s.skipStep("Storage Authentication", "Skipped due to connectivity issues")
	}
	steps = append(steps, step)
	if s.failFast && step.Status == StepFailed {
		return s.buildResult(steps, startTime)
	}

	// Disk space for the data directory
	if s.dataDir != "" {
		step = s.runStep("Data Directory", func() (bool, string, error) {
			if err := CheckDataDirectorySpace(s.dataDir); err != nil {
				return false, "Insufficient disk space", err
			}
			info, err := GetDiskSpace(s.dataDir)
			if err != nil {
				return false, "Cannot check disk space", err
			}
			return true, fmt.Sprintf("%s free", info.FreeFormatted), nil
		})
		steps = append(steps, step)
	}

	result := s.buildResult(steps, startTime)

	if s.showProgress {
		s.printSummary(result)
	}

	return result
}

// ValidateQuick runs only configuration checks, no network calls.
func (s *ValidationSuite) ValidateQuick() SuiteResult {
	startTime := time.Now()
	steps := make([]ValidationStep, 0, 4)

	if s.showProgress {
		s.printHeader("Quick Configuration Check")
	}

	checks := []struct {
		name string
		fn   func() ValidationResult
	}{
		{"Environment File", s.configValidator.CheckEnvFile},
		{"Storage URL Configuration", s.configValidator.CheckStorageURL},
		{"Storage Credentials", s.configValidator.CheckStorageCredentials},
		{"Web UI Password", s.configValidator.CheckWebUIPassword},
	}

	for _, check := range checks {
		step := s.runStep(check.name, func() (bool, string, error) {
			result := check.fn()
			return result.Valid, result.Message, result.Error
		})
		steps = append(steps, step)
		if s.failFast && step.Status == StepFailed {
			break
		}
	}

	result := s.buildResult(steps, startTime)

	if s.showProgress {
		s.printSummary(result)
	}

	return result
}

// runStep executes a validation step with timing and progress output.
func (s *ValidationSuite) runStep(name string, fn func() (bool, string, error)) ValidationStep {
	step := ValidationStep{Name: name, Status: StepRunning}

	if s.showProgress {
		s.printStepStart(name)
	}

	startTime := time.Now()
	passed, message, err := fn()
	step.Latency = time.Since(startTime)
	step.Message = message
	step.Error = err

	if passed {
		step.Status = StepPassed
	} else {
		step.Status = StepFailed
	}

	if s.showProgress {
		s.printStep(step)
	}

	return step
}

// runOptionalStep executes a check whose failure is a warning, not an error.
func (s *ValidationSuite) runOptionalStep(name string, fn func() ValidationResult) ValidationStep {
	step := ValidationStep{Name: name, Status: StepRunning}

	if s.showProgress {
		s.printStepStart(name)
	}

	startTime := time.Now()
	result := fn()
	step.Latency = time.Since(startTime)
	step.Message = result.Message

	if result.Valid {
		step.Status = StepPassed
	} else {
		step.Status = StepWarning
	}

	if s.showProgress {
		s.printStep(step)
	}

	return step
}

// skipStep records a skipped step and prints it.
func (s *ValidationSuite) skipStep(name, reason string) ValidationStep {
	step := ValidationStep{
		Name:    name,
		Status:  StepSkipped,
		Message: reason,
	}
	if s.showProgress {
		s.printStep(step)
	}
	return step
}

// hasAllPassed checks that no step has failed so far.
func (s *ValidationSuite) hasAllPassed(steps []ValidationStep) bool {
	for _, step := range steps {
		if step.Status == StepFailed {
			return false
		}
	}
	return true
}

// buildResult creates a SuiteResult from completed steps.
func (s *ValidationSuite) buildResult(steps []ValidationStep, startTime time.Time) SuiteResult {
	result := SuiteResult{
		Steps:      steps,
		TotalSteps: len(steps),
		Duration:   time.Since(startTime),
		Success:    true,
	}

	for _, step := range steps {
		switch step.Status {
		case StepPassed:
			result.PassedSteps++
		case StepFailed:
			result.FailedSteps++
			result.Success = false
		case StepWarning:
			result.Warnings++
		}
	}

	return result
}

// printHeader prints a validation header.
func (s *ValidationSuite) printHeader(title string) {
	fmt.Fprintln(s.output)
	headerColor := color.New(color.FgCyan, color.Bold)
	headerColor.Fprintf(s.output, "=== %s ===\n", title)
	fmt.Fprintln(s.output)
}

// printStepStart prints the step name before execution.
func (s *ValidationSuite) printStepStart(name string) {
	fmt.Fprintf(s.output, "  . %s...", name)
}

// printStep prints a completed validation step with status indicator.
func (s *ValidationSuite) printStep(step ValidationStep) {
	var icon string
	var clr *color.Color

	switch step.Status {
	case StepPassed:
		icon = "+"
		clr = color.New(color.FgGreen)
	case StepFailed:
		icon = "x"
		clr = color.New(color.FgRed)
	case StepWarning:
		icon = "!"
		clr = color.New(color.FgYellow)
	case StepSkipped:
		icon = "-"
		clr = color.New(color.FgHiBlack)
	default:
		icon = "?"
		clr = color.New(color.FgWhite)
	}

	fmt.Fprintf(s.output, "\r")
	clr.Fprintf(s.output, "  %s %s", icon, step.Name)

	if step.Message != "" {
		dim := color.New(color.FgHiBlack)
		dim.Fprintf(s.output, " - %s", step.Message)
	}

	fmt.Fprintln(s.output)

	if step.Status == StepFailed && step.Error != nil {
		errColor := color.New(color.FgRed)
		errColor.Fprintf(s.output, "    %s\n", step.Error.Error())
	}
}

// printSummary prints the validation summary.
func (s *ValidationSuite) printSummary(result SuiteResult) {
	fmt.Fprintln(s.output)

	if result.Success {
		successColor := color.New(color.FgGreen, color.Bold)
		successColor.Fprintf(s.output, "=== Validation Passed ")
		color.New(color.FgHiBlack).Fprintf(s.output, "(%d/%d checks passed in %v)",
			result.PassedSteps, result.TotalSteps, result.Duration.Round(time.Millisecond))
		successColor.Fprintln(s.output, " ===")
	} else {
		failColor := color.New(color.FgRed, color.Bold)
		failColor.Fprintf(s.output, "=== Validation Failed ")
		color.New(color.FgHiBlack).Fprintf(s.output, "(%d passed, %d failed)",
			result.PassedSteps, result.FailedSteps)
		failColor.Fprintln(s.output, " ===")
	}

	fmt.Fprintln(s.output)
}

// GetErrors returns all errors from failed steps.
func (r SuiteResult) GetErrors() []error {
	errors := make([]error, 0)
	for _, step := range r.Steps {
		if step.Status == StepFailed && step.Error != nil {
			errors = append(errors, step.Error)
		}
	}
	return errors
}

// GetFirstError returns the first error from a failed step, or nil.
func (r SuiteResult) GetFirstError() error {
	for _, step := range r.Steps {
		if step.Status == StepFailed && step.Error != nil {
			return step.Error
		}
	}
	return nil
}

// Summary returns a human-readable summary string.
func (r SuiteResult) Summary() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Validation %s: ", map[bool]string{true: "Passed", false: "Failed"}[r.Success]))
	sb.WriteString(fmt.Sprintf("%d/%d checks passed", r.PassedSteps, r.TotalSteps))
	if r.FailedSteps > 0 {
		sb.WriteString(fmt.Sprintf(", %d failed", r.FailedSteps))
	}
	if r.Warnings > 0 {
		sb.WriteString(fmt.Sprintf(", %d warnings", r.Warnings))
	}
	sb.WriteString(fmt.Sprintf(" (took %v)", r.Duration.Round(time.Millisecond)))
	return sb.String()
}
