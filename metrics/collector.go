// Package metrics provides the MetricsCollector interface for aggregating metrics.
package metrics

// MetricsCollector defines the interface for collecting metrics from the
// processing pipeline, search engine, and AI assistants.
//
// Implementations must be concurrency-safe and return zero values for
// unavailable metrics.
type MetricsCollector interface {
	// RecordTask logs a completed task execution.
	RecordTask(task TaskRecord)

	// GetTaskMetrics returns aggregated task processing statistics.
	GetTaskMetrics() TaskMetrics

	// GetRecentTasks returns the N most recent task records.
	GetRecentTasks(limit int) []TaskRecord

	// AddDocumentsProcessed increments the processed-document counter.
	AddDocumentsProcessed(n int64)

	// AddPagesExtracted increments the extracted-page counter.
	AddPagesExtracted(n int64)

	// AddPagesOCRd increments the OCR page counter.
	AddPagesOCRd(n int64)

	// AddMatchRecords increments the match record counter.
	AddMatchRecords(n int64)

	// AddAIFailures increments the AI failure counter.
	AddAIFailures(n int64)

	// GetCounters returns the current triage counters.
	GetCounters() TriageCounters

	// UpdateStorageStatus records the result of a storage health check.
	UpdateStorageStatus(status StorageStatus)

	// GetStorageStatus returns the latest storage health check result.
	GetStorageStatus() StorageStatus

	// GetSystemStatus returns the overall system health status.
	GetSystemStatus() SystemStatus
}
