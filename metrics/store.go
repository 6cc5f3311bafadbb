// Package metrics provides the MetricsStore organism for in-memory metrics storage.
// This file contains the MetricsStore which implements the MetricsCollector interface.
package metrics

import (
	"sync"
	"time"
)

// MetricsStore is an in-memory store for all triage metrics. It implements
// the MetricsCollector interface and provides thread-safe access to task
// records, pipeline counters, storage health, and system status.
//
// Usage:
//
//	store := NewMetricsStore(DefaultStoreConfig(), time.Now())
//	store.RecordTask(task)
//	metrics := store.GetTaskMetrics()
type MetricsStore struct {
	mu sync.RWMutex

	// Task tracking, circular buffer of recent tasks
	taskHistory []TaskRecord
	taskCap     int
	taskHead    int
	taskSize    int

	// Task aggregation
	totalTasks   int64
	totalSuccess int64
	totalErrors  int64
	taskByType   map[string]*taskTypeStats

	// Pipeline counters
	counters TriageCounters

	// Storage health (latest snapshot)
	storageStatus StorageStatus

	// System metadata
	startTime time.Time
	version   string
}

// taskTypeStats holds per-type aggregation data
type taskTypeStats struct {
	count         int64
	successCount  int64
	totalDuration time.Duration
}

// StoreConfig configures the MetricsStore behavior.
type StoreConfig struct {
	// TaskHistoryCapacity is the max number of tasks to retain in history
	TaskHistoryCapacity int
	// Version is the application version string
	Version string
}

// DefaultStoreConfig returns a default configuration.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		TaskHistoryCapacity: 100,
		Version:             "0.0.0",
	}
}

// NewMetricsStore creates a new MetricsStore with the specified configuration.
// The startTime is used to calculate uptime.
func NewMetricsStore(config StoreConfig, startTime time.Time) *MetricsStore {
	capacity := config.TaskHistoryCapacity
	if capacity < 1 {
		capacity = 100
	}

	return &MetricsStore{
		taskHistory: make([]TaskRecord, capacity),
		taskCap:     capacity,
		taskByType:  make(map[string]*taskTypeStats),
		startTime:   startTime,
		version:     config.Version,
	}
}

// RecordTask logs a completed task execution.
func (s *MetricsStore) RecordTask(task TaskRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.taskHistory[s.taskHead] = task
	s.taskHead = (s.taskHead + 1) % s.taskCap
	if s.taskSize < s.taskCap {
		s.taskSize++
	}

	s.totalTasks++
	if task.Status == TaskStatusSuccess {
		s.totalSuccess++
	} else if task.Status == TaskStatusError {
		s.totalErrors++
	}

	stats, ok := s.taskByType[task.Type]
	if !ok {
		stats = &taskTypeStats{}
		s.taskByType[task.Type] = stats
	}
	stats.count++
	if task.Status == TaskStatusSuccess {
		stats.successCount++
	}
	stats.totalDuration += task.Duration
}

// GetTaskMetrics returns aggregated task processing statistics.
func (s *MetricsStore) GetTaskMetrics() TaskMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metrics := TaskMetrics{
		TotalProcessed: s.totalTasks,
		TotalSuccess:   s.totalSuccess,
		TotalErrors:    s.totalErrors,
		ByType:         make(map[string]*TaskTypeMetrics),
	}

	for taskType, stats := range s.taskByType {
		var successRate float64
		if stats.count > 0 {
			successRate = float64(stats.successCount) / float64(stats.count) * 100
		}

		var avgDuration time.Duration
		if stats.count > 0 {
			avgDuration = stats.totalDuration / time.Duration(stats.count)
		}

		metrics.ByType[taskType] = &TaskTypeMetrics{
			Count:       stats.count,
			SuccessRate: successRate,
			AvgDuration: avgDuration,
		}
	}

	return metrics
}

// GetRecentTasks returns the N most recent task records, most recent first.
// If limit exceeds available tasks, all available are returned.
func (s *MetricsStore) GetRecentTasks(limit int) []TaskRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || s.taskSize == 0 {
		return []TaskRecord{}
	}

	if limit > s.taskSize {
		limit = s.taskSize
	}

	result := make([]TaskRecord, limit)
	for i := 0; i < limit; i++ {
		idx := (s.taskHead - 1 - i + s.taskCap) % s.taskCap
		result[i] = s.taskHistory[idx]
	}

	return result
}

// AddDocumentsProcessed increments the processed-document counter.
func (s *MetricsStore) AddDocumentsProcessed(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.DocumentsProcessed += n
}

// AddPagesExtracted increments the extracted-page counter.
func (s *MetricsStore) AddPagesExtracted(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.PagesExtracted += n
}

// AddPagesOCRd increments the OCR page counter.
func (s *MetricsStore) AddPagesOCRd(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.PagesOCRd += n
}

// AddMatchRecords increments the match record counter.
func (s *MetricsStore) AddMatchRecords(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.MatchRecords += n
}

// AddAIFailures increments the AI failure counter.
func (s *MetricsStore) AddAIFailures(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.AIFailures += n
}

// GetCounters returns the current triage counters.
func (s *MetricsStore) GetCounters() TriageCounters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters
}

// UpdateStorageStatus records the result of a storage health check.
func (s *MetricsStore) UpdateStorageStatus(status StorageStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storageStatus = status
}

// GetStorageStatus returns the latest storage health check result.
func (s *MetricsStore) GetStorageStatus() StorageStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.storageStatus
}

// GetSystemStatus returns the overall system health status.
// The system is degraded when the storage service has been checked and is
// currently unreachable.
func (s *MetricsStore) GetSystemStatus() SystemStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	health := SystemHealthRunning
	if !s.storageStatus.LastCheck.IsZero() && !s.storageStatus.Connected {
		health = SystemHealthDegraded
	}

	return SystemStatus{
		Health:    health,
		Version:   s.version,
		Uptime:    time.Since(s.startTime),
		LastCheck: time.Now(),
	}
}

// Verify MetricsStore implements MetricsCollector interface
var _ MetricsCollector = (*MetricsStore)(nil)
