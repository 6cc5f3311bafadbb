package store

import (
	"context"
	"fmt"
	"time"
)

// CleanupResult contains statistics about a cleanup operation.
type CleanupResult struct {
	// ScanRunsDeleted is the number of records deleted from scan_runs
	ScanRunsDeleted int64
	// ErrorLogDeleted is the number of records deleted from error_log
	ErrorLogDeleted int64
	// TotalDeleted is the sum of all deleted records
	TotalDeleted int64
	// Duration is how long the cleanup took
	Duration time.Duration
}

// tablesToClean defines the tables that have retention policies.
// Workspace, document, and diagnosis rows are durable review data and
// are never age-expired. All listed tables must have a created_at column.
var tablesToClean = []string{
	"scan_runs",
	"error_log",
}

// Cleanup deletes records older than retentionDays from all retention-managed
// tables and runs VACUUM to reclaim disk space.
func (d *Database) Cleanup(retentionDays int) (CleanupResult, error) {
	return d.CleanupWithContext(context.Background(), retentionDays)
}

// CleanupWithContext deletes records older than retentionDays from all
// retention-managed tables, respecting context cancellation. If the context
// is cancelled mid-run, pending changes are rolled back.
func (d *Database) CleanupWithContext(ctx context.Context, retentionDays int) (CleanupResult, error) {
	start := time.Now()
	result := CleanupResult{}

	if retentionDays < 0 {
		return result, fmt.Errorf("store: retentionDays must be non-negative, got %d", retentionDays)
	}

	// Check context before starting
	select {
	case <-ctx.Done():
		return result, ctx.Err()
	default:
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return result, fmt.Errorf("store: database connection is closed")
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("store: failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			tx.Rollback() // No-op if already committed
		}
	}()

	// SQLite datetime comparison: datetime('now', '-N days')
	deletedCounts := make(map[string]int64)

	for _, table := range tablesToClean {
		// Check context before each table
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		query := fmt.Sprintf(
			"DELETE FROM %s WHERE created_at < datetime('now', '-%d days')",
			table, retentionDays,
		)

		res, err := tx.ExecContext(ctx, query)
		if err != nil {
			return result, fmt.Errorf("store: failed to delete from %s: %w", table, err)
		}

		rowsAffected, err := res.RowsAffected()
		if err != nil {
			return result, fmt.Errorf("store: failed to get rows affected for %s: %w", table, err)
		}

		deletedCounts[table] = rowsAffected
		result.TotalDeleted += rowsAffected
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("store: failed to commit transaction: %w", err)
	}
	tx = nil // Prevent rollback in defer

	result.ScanRunsDeleted = deletedCounts["scan_runs"]
	result.ErrorLogDeleted = deletedCounts["error_log"]

	// Check context before VACUUM
	select {
	case <-ctx.Done():
		// Transaction committed, but VACUUM not run - acceptable partial success
		result.Duration = time.Since(start)
		return result, ctx.Err()
	default:
	}

	// VACUUM must run outside the transaction
	if _, err := d.db.ExecContext(ctx, "VACUUM"); err != nil {
		// Data was already deleted, so VACUUM failure is not critical
		result.Duration = time.Since(start)
		return result, fmt.Errorf("store: cleanup succeeded but VACUUM failed: %w", err)
	}

	result.Duration = time.Since(start)
	return result, nil
}

// CleanupSchedulerConfig holds configuration for the cleanup scheduler.
type CleanupSchedulerConfig struct {
	// RetentionDays is the number of days to retain records
	RetentionDays int
	// Interval is how often to run cleanup
	Interval time.Duration
	// OnCleanup is called after each cleanup run (optional)
	OnCleanup func(result CleanupResult, err error)
}

// DefaultCleanupSchedulerConfig returns sensible defaults for the cleanup scheduler.
func DefaultCleanupSchedulerConfig() CleanupSchedulerConfig {
	return CleanupSchedulerConfig{
		RetentionDays: 30,
		Interval:      24 * time.Hour,
		OnCleanup:     nil,
	}
}

// StartCleanupScheduler starts a background goroutine that periodically runs
// cleanup. It runs an initial cleanup immediately, then at each interval,
// and stops when the context is cancelled.
func (d *Database) StartCleanupScheduler(ctx context.Context, retentionDays int, interval time.Duration) {
	config := CleanupSchedulerConfig{
		RetentionDays: retentionDays,
		Interval:      interval,
		OnCleanup:     nil,
	}
	d.StartCleanupSchedulerWithConfig(ctx, config)
}

// StartCleanupSchedulerWithConfig starts a cleanup scheduler with custom
// configuration, including an optional result callback for logging.
func (d *Database) StartCleanupSchedulerWithConfig(ctx context.Context, config CleanupSchedulerConfig) {
	go func() {
		// Run initial cleanup immediately
		result, err := d.CleanupWithContext(ctx, config.RetentionDays)
		if config.OnCleanup != nil {
			config.OnCleanup(result, err)
		}

		ticker := time.NewTicker(config.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				result, err := d.CleanupWithContext(ctx, config.RetentionDays)
				if config.OnCleanup != nil {
					config.OnCleanup(result, err)
				}
			}
		}
	}()
}
