// Package metrics provides pure data types for the triage metrics system.
// This file contains atom-level type definitions with no behavior.
package metrics

import "time"

// TaskRecord represents a single task execution record.
// This is a pure data structure for tracking individual processing operations.
type TaskRecord struct {
	// ID is the unique identifier for this task
	ID string `json:"id"`

	// Type identifies the kind of task (e.g., "extract", "ocr", "search", "scan")
	Type string `json:"type"`

	// WorkspaceID identifies which workspace this task belongs to
	WorkspaceID string `json:"workspace_id,omitempty"`

	// Status indicates the current state: "success", "error", "processing"
	Status string `json:"status"`

	// StartTime is when the task began execution
	StartTime time.Time `json:"start_time"`

	// EndTime is when the task completed (zero value if still processing)
	EndTime time.Time `json:"end_time,omitempty"`

	// Duration is the total execution time
	Duration time.Duration `json:"duration"`

	// ErrorMsg contains error details if Status is "error"
	ErrorMsg string `json:"error_msg,omitempty"`
}

// TriageCounters holds running totals for document processing activity.
// This is a pure data structure with no behavior.
type TriageCounters struct {
	// DocumentsProcessed is the number of documents fully processed
	DocumentsProcessed int64 `json:"documents_processed"`

	// PagesExtracted is the number of pages with text pulled from the PDF layer
	PagesExtracted int64 `json:"pages_extracted"`

	// PagesOCRd is the number of pages sent through OCR
	PagesOCRd int64 `json:"pages_ocrd"`

	// MatchRecords is the number of keyword match records produced
	MatchRecords int64 `json:"match_records"`

	// AIFailures is the number of failed AI scan, chat, or diagnosis calls
	AIFailures int64 `json:"ai_failures"`
}

// StorageStatus represents the health of the blob storage connection.
// This is a pure data structure with no behavior.
type StorageStatus struct {
	// Connected indicates whether the last health check succeeded
	Connected bool `json:"connected"`

	// LastCheck is the timestamp of the last health check
	LastCheck time.Time `json:"last_check"`

	// Latency is the round-trip time of the last health check
	Latency time.Duration `json:"latency"`

	// LastError contains the most recent check failure, if any
	LastError string `json:"last_error,omitempty"`
}

// SystemStatus represents the overall system health and status.
// This is a pure data structure with no behavior.
type SystemStatus struct {
	// Health indicates the system state: "running", "degraded", "error", "stopped"
	Health string `json:"health"`

	// Version is the application version string
	Version string `json:"version"`

	// Uptime is the duration since the application started
	Uptime time.Duration `json:"uptime"`

	// LastCheck is the timestamp of the last health check
	LastCheck time.Time `json:"last_check"`
}

// TaskMetrics represents aggregated task processing statistics.
// This is a pure data structure with no behavior.
type TaskMetrics struct {
	// TotalProcessed is the total number of tasks processed
	TotalProcessed int64 `json:"total_processed"`

	// TotalSuccess is the count of successfully completed tasks
	TotalSuccess int64 `json:"total_success"`

	// TotalErrors is the count of failed tasks
	TotalErrors int64 `json:"total_errors"`

	// ByType contains per-type statistics
	ByType map[string]*TaskTypeMetrics `json:"by_type"`
}

// TaskTypeMetrics represents statistics for a specific task type.
// This is a pure data structure with no behavior.
type TaskTypeMetrics struct {
	// Count is the total number of tasks of this type
	Count int64 `json:"count"`

	// SuccessRate is the percentage of successful operations (0-100)
	SuccessRate float64 `json:"success_rate"`

	// AvgDuration is the average execution time for this task type
	AvgDuration time.Duration `json:"avg_duration"`
}

// Status constants for TaskRecord
const (
	TaskStatusSuccess    = "success"
	TaskStatusError      = "error"
	TaskStatusProcessing = "processing"
)

// Health constants for SystemStatus
const (
	SystemHealthRunning  = "running"
	SystemHealthDegraded = "degraded"
	SystemHealthError    = "error"
	SystemHealthStopped  = "stopped"
)

// Task type constants
const (
	TaskTypeExtract  = "extract"
	TaskTypeOCR      = "ocr"
	TaskTypeSearch   = "search"
	TaskTypeScan     = "scan"
	TaskTypeChat     = "chat"
	TaskTypeDiagnose = "diagnose"
	TaskTypeExport   = "export"
)
