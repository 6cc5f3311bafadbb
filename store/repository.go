package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Workspace represents a row in the workspaces table.
// A workspace is one review: a set of documents triaged together.
type Workspace struct {
	ID        string    // UUID primary key
	Name      string    // Display name chosen by the reviewer
	CreatedAt time.Time // Timestamp when the workspace was created
}

// DocumentRow represents a row in the documents table.
// DocIndex is the document's position in the workspace ordering; page
// selections and diagnoses are keyed by (doc_index, page_number).
type DocumentRow struct {
	ID          string    // UUID primary key
	WorkspaceID string    // Owning workspace
	DocIndex    int       // Position in the workspace document list
	Name        string    // Original file name
	BlobKey     string    // Key of the uploaded PDF in the blob store
	PageCount   int       // Number of pages extracted
	OCRPages    int       // Number of pages that went through OCR
	CreatedAt   time.Time // Timestamp when the document was added
}

// DiagnosisRow represents a row in the diagnoses table.
// One row per (workspace, document, page); upserts replace the text.
type DiagnosisRow struct {
	ID          int64     // Auto-incremented primary key
	WorkspaceID string    // Owning workspace
	DocIndex    int       // Document position in the workspace
	PageNumber  int       // 1-based page number
	Diagnosis   string    // Short diagnosis text
	Source      string    // "manual" or "ai"
	CreatedAt   time.Time // Timestamp when the row was written
}

// Diagnosis source values.
const (
	DiagnosisSourceManual = "manual"
	DiagnosisSourceAI     = "ai"
)

// ScanRun represents a row in the scan_runs table.
// One row per keyword search or AI scan over a workspace.
type ScanRun struct {
	ID           int64     // Auto-incremented primary key
	WorkspaceID  string    // Workspace the scan ran over
	Terms        string    // Comma-joined search terms
	Mode         string    // Matching mode (e.g., "exact", "fuzzy", "date", "ai")
	PagesScanned int       // Pages visited before completion or cancel
	MatchesFound int       // Match records produced
	FailedPages  int       // Pages skipped due to per-page errors
	Cancelled    bool      // True if the run was cancelled mid-flight
	DurationMS   int       // Wall-clock duration in milliseconds
	Status       string    // "success", "partial", "error"
	ErrorMessage string    // Error description if Status is "error"
	CreatedAt    time.Time // Timestamp when the run finished
}

// ErrorLogEntry represents a row in the error_log table.
type ErrorLogEntry struct {
	ID            int64     // Auto-incremented primary key
	CorrelationID string    // Optional correlation ID linking to a scan run
	ErrorType     string    // Category (e.g., "ocr", "ai", "storage", "system")
	ErrorMessage  string    // Error description
	Context       string    // JSON-encoded additional context
	CreatedAt     time.Time // Timestamp when the error was logged
}

// sqliteTimeFormat is the datetime layout SQLite's CURRENT_TIMESTAMP produces.
const sqliteTimeFormat = "2006-01-02 15:04:05"

// Repository provides CRUD operations for the triage tables.
// It wraps a Database instance and works with both synchronous and
// asynchronous writes via the AsyncWriter.
type Repository struct {
	db          *Database
	asyncWriter *AsyncWriter
}

// NewRepository creates a new Repository instance.
// The asyncWriter parameter is optional; if nil, all writes are synchronous.
func NewRepository(db *Database, asyncWriter *AsyncWriter) *Repository {
	return &Repository{
		db:          db,
		asyncWriter: asyncWriter,
	}
}

// CreateWorkspace inserts a new workspace and returns it with a fresh UUID.
func (r *Repository) CreateWorkspace(ctx context.Context, name string) (Workspace, error) {
	if r.db == nil {
		return Workspace{}, fmt.Errorf("store: database connection is nil")
	}
	if name == "" {
		return Workspace{}, fmt.Errorf("store: workspace name is required")
	}

	ws := Workspace{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.db.Exec(
		`INSERT INTO workspaces (id, name) VALUES (?, ?)`,
		ws.ID, ws.Name,
	)
	if err != nil {
		return Workspace{}, fmt.Errorf("store: failed to insert workspace: %w", err)
	}

	return ws, nil
}

// GetWorkspace retrieves a workspace by ID.
// Returns sql.ErrNoRows (wrapped) if no workspace matches.
func (r *Repository) GetWorkspace(ctx context.Context, id string) (Workspace, error) {
	if r.db == nil {
		return Workspace{}, fmt.Errorf("store: database connection is nil")
	}

	var ws Workspace
	var createdAt string
	err := r.db.QueryRow(
		`SELECT id, name, created_at FROM workspaces WHERE id = ?`, id,
	).Scan(&ws.ID, &ws.Name, &createdAt)
	if err != nil {
		return Workspace{}, fmt.Errorf("store: failed to get workspace %s: %w", id, err)
	}

	ws.CreatedAt, _ = time.Parse(sqliteTimeFormat, createdAt)
	return ws, nil
}

// ListWorkspaces retrieves all workspaces ordered by creation time descending.
func (r *Repository) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	if r.db == nil {
		return nil, fmt.Errorf("store: database connection is nil")
	}

	rows, err := r.db.Query(
		`SELECT id, name, created_at FROM workspaces ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("store: failed to query workspaces: %w", err)
	}
	defer rows.Close()

	var workspaces []Workspace
	for rows.Next() {
		var ws Workspace
		var createdAt string
		if err := rows.Scan(&ws.ID, &ws.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("store: failed to scan workspace row: %w", err)
		}
		ws.CreatedAt, _ = time.Parse(sqliteTimeFormat, createdAt)
		workspaces = append(workspaces, ws)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: error iterating workspace rows: %w", err)
	}

	return workspaces, nil
}

// DeleteWorkspace removes a workspace. Documents and diagnoses cascade.
func (r *Repository) DeleteWorkspace(ctx context.Context, id string) error {
	if r.db == nil {
		return fmt.Errorf("store: database connection is nil")
	}

	_, err := r.db.Exec(`DELETE FROM workspaces WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: failed to delete workspace %s: %w", id, err)
	}
	return nil
}

// UpsertDocument inserts or replaces a document row at its workspace index.
// A re-upload at the same index replaces the previous row; the UUID is kept
// only for fresh inserts.
func (r *Repository) UpsertDocument(ctx context.Context, doc DocumentRow) (DocumentRow, error) {
	if r.db == nil {
		return DocumentRow{}, fmt.Errorf("store: database connection is nil")
	}
	if doc.WorkspaceID == "" {
		return DocumentRow{}, fmt.Errorf("store: document workspace ID is required")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	_, err := r.db.Exec(`
		INSERT INTO documents (id, workspace_id, doc_index, name, blob_key, page_count, ocr_pages)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (workspace_id, doc_index) DO UPDATE SET
			name = excluded.name,
			blob_key = excluded.blob_key,
			page_count = excluded.page_count,
			ocr_pages = excluded.ocr_pages`,
		doc.ID, doc.WorkspaceID, doc.DocIndex, doc.Name, doc.BlobKey, doc.PageCount, doc.OCRPages,
	)
	if err != nil {
		return DocumentRow{}, fmt.Errorf("store: failed to upsert document: %w", err)
	}

	return doc, nil
}

// ListDocuments retrieves a workspace's documents ordered by doc_index.
func (r *Repository) ListDocuments(ctx context.Context, workspaceID string) ([]DocumentRow, error) {
	if r.db == nil {
		return nil, fmt.Errorf("store: database connection is nil")
	}

	rows, err := r.db.Query(`
		SELECT id, workspace_id, doc_index, name, blob_key, page_count, ocr_pages, created_at
		FROM documents
		WHERE workspace_id = ?
		ORDER BY doc_index ASC`,
		workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []DocumentRow
	for rows.Next() {
		var doc DocumentRow
		var createdAt string
		err := rows.Scan(
			&doc.ID, &doc.WorkspaceID, &doc.DocIndex, &doc.Name,
			&doc.BlobKey, &doc.PageCount, &doc.OCRPages, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("store: failed to scan document row: %w", err)
		}
		doc.CreatedAt, _ = time.Parse(sqliteTimeFormat, createdAt)
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: error iterating document rows: %w", err)
	}

	return docs, nil
}

// DeleteDocument removes a document row and shifts later doc indexes down by
// one so the workspace ordering stays dense. Diagnoses for the removed
// document are deleted and later documents' diagnoses are remapped.
func (r *Repository) DeleteDocument(ctx context.Context, workspaceID string, docIndex int) error {
	if r.db == nil {
		return fmt.Errorf("store: database connection is nil")
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("store: failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			tx.Rollback() // No-op if already committed
		}
	}()

	if _, err := tx.Exec(
		`DELETE FROM documents WHERE workspace_id = ? AND doc_index = ?`,
		workspaceID, docIndex,
	); err != nil {
		return fmt.Errorf("store: failed to delete document: %w", err)
	}

	if _, err := tx.Exec(
		`DELETE FROM diagnoses WHERE workspace_id = ? AND doc_index = ?`,
		workspaceID, docIndex,
	); err != nil {
		return fmt.Errorf("store: failed to delete document diagnoses: %w", err)
	}

	// Shift later indexes down to keep the ordering dense
	if _, err := tx.Exec(
		`UPDATE documents SET doc_index = doc_index - 1 WHERE workspace_id = ? AND doc_index > ?`,
		workspaceID, docIndex,
	); err != nil {
		return fmt.Errorf("store: failed to reindex documents: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE diagnoses SET doc_index = doc_index - 1 WHERE workspace_id = ? AND doc_index > ?`,
		workspaceID, docIndex,
	); err != nil {
		return fmt.Errorf("store: failed to reindex diagnoses: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: failed to commit transaction: %w", err)
	}
	tx = nil

	return nil
}

// UpsertDiagnosis inserts or replaces the diagnosis for one page.
// If an asyncWriter is configured, the write is queued asynchronously.
func (r *Repository) UpsertDiagnosis(ctx context.Context, row DiagnosisRow) error {
	if r.db == nil {
		return fmt.Errorf("store: database connection is nil")
	}
	if row.Source == "" {
		row.Source = DiagnosisSourceManual
	}

	query := `
		INSERT INTO diagnoses (workspace_id, doc_index, page_number, diagnosis, source)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (workspace_id, doc_index, page_number) DO UPDATE SET
			diagnosis = excluded.diagnosis,
			source = excluded.source`

	args := []interface{}{row.WorkspaceID, row.DocIndex, row.PageNumber, row.Diagnosis, row.Source}

	// Use async writer if available
	if r.asyncWriter != nil && r.asyncWriter.IsStarted() {
		op := asyncInsertOp{query: query, args: args}
		if r.asyncWriter.Write(op) {
			return nil // Async write queued successfully
		}
		// Fall through to sync write if channel is full
	}

	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("store: failed to upsert diagnosis: %w", err)
	}
	return nil
}

// DeleteDiagnosis removes the diagnosis for one page, if any.
func (r *Repository) DeleteDiagnosis(ctx context.Context, workspaceID string, docIndex, pageNumber int) error {
	if r.db == nil {
		return fmt.Errorf("store: database connection is nil")
	}

	_, err := r.db.Exec(
		`DELETE FROM diagnoses WHERE workspace_id = ? AND doc_index = ? AND page_number = ?`,
		workspaceID, docIndex, pageNumber,
	)
	if err != nil {
		return fmt.Errorf("store: failed to delete diagnosis: %w", err)
	}
	return nil
}

// ListDiagnoses retrieves all diagnoses for a workspace, ordered by
// document index then page number.
func (r *Repository) ListDiagnoses(ctx context.Context, workspaceID string) ([]DiagnosisRow, error) {
	if r.db == nil {
		return nil, fmt.Errorf("store: database connection is nil")
	}

	rows, err := r.db.Query(`
		SELECT id, workspace_id, doc_index, page_number, diagnosis, COALESCE(source, 'manual'), created_at
		FROM diagnoses
		WHERE workspace_id = ?
		ORDER BY doc_index ASC, page_number ASC`,
		workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: failed to query diagnoses: %w", err)
	}
	defer rows.Close()

	var result []DiagnosisRow
	for rows.Next() {
		var row DiagnosisRow
		var createdAt string
		err := rows.Scan(
			&row.ID, &row.WorkspaceID, &row.DocIndex, &row.PageNumber,
			&row.Diagnosis, &row.Source, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("store: failed to scan diagnosis row: %w", err)
		}
		row.CreatedAt, _ = time.Parse(sqliteTimeFormat, createdAt)
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: error iterating diagnosis rows: %w", err)
	}

	return result, nil
}

// InsertScanRun records a finished scan. If an asyncWriter is configured,
// the write is queued asynchronously and the returned ID is 0.
func (r *Repository) InsertScanRun(ctx context.Context, run ScanRun) (int64, error) {
	if r.db == nil {
		return 0, fmt.Errorf("store: database connection is nil")
	}

	query := `
		INSERT INTO scan_runs (
			workspace_id, terms, mode, pages_scanned, matches_found,
			failed_pages, cancelled, duration_ms, status, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	cancelled := 0
	if run.Cancelled {
		cancelled = 1
	}

	args := []interface{}{
		run.WorkspaceID,
		run.Terms,
		run.Mode,
		run.PagesScanned,
		run.MatchesFound,
		run.FailedPages,
		cancelled,
		run.DurationMS,
		run.Status,
		nullString(run.ErrorMessage),
	}

	// Use async writer if available
	if r.asyncWriter != nil && r.asyncWriter.IsStarted() {
		op := asyncInsertOp{query: query, args: args}
		if r.asyncWriter.Write(op) {
			return 0, nil // Async write queued successfully
		}
		// Fall through to sync write if channel is full
	}

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("store: failed to insert scan run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: failed to get last insert id: %w", err)
	}

	return id, nil
}

// QueryRecentScanRuns retrieves the most recent scan runs for a workspace.
// Results are ordered by created_at DESC.
func (r *Repository) QueryRecentScanRuns(ctx context.Context, workspaceID string, limit int) ([]ScanRun, error) {
	if r.db == nil {
		return nil, fmt.Errorf("store: database connection is nil")
	}

	if limit <= 0 {
		limit = 10 // Default limit
	}

	rows, err := r.db.Query(`
		SELECT id, workspace_id, terms, mode, pages_scanned, matches_found,
			   failed_pages, cancelled, duration_ms, status, COALESCE(error_message, ''),
			   created_at
		FROM scan_runs
		WHERE workspace_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		workspaceID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: failed to query scan runs: %w", err)
	}
	defer rows.Close()

	var runs []ScanRun
	for rows.Next() {
		var run ScanRun
		var cancelled int
		var createdAt string

		err := rows.Scan(
			&run.ID, &run.WorkspaceID, &run.Terms, &run.Mode,
			&run.PagesScanned, &run.MatchesFound, &run.FailedPages,
			&cancelled, &run.DurationMS, &run.Status, &run.ErrorMessage,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("store: failed to scan scan-run row: %w", err)
		}

		run.Cancelled = cancelled != 0
		run.CreatedAt, _ = time.Parse(sqliteTimeFormat, createdAt)
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: error iterating scan-run rows: %w", err)
	}

	return runs, nil
}

// InsertErrorLog inserts an error log entry.
// If an asyncWriter is configured, the write is queued asynchronously.
func (r *Repository) InsertErrorLog(ctx context.Context, entry ErrorLogEntry) (int64, error) {
	if r.db == nil {
		return 0, fmt.Errorf("store: database connection is nil")
	}

	query := `
		INSERT INTO error_log (
			correlation_id, error_type, error_message, context
		) VALUES (?, ?, ?, ?)`

	args := []interface{}{
		nullString(entry.CorrelationID),
		entry.ErrorType,
		entry.ErrorMessage,
		nullString(entry.Context),
	}

	// Use async writer if available
	if r.asyncWriter != nil && r.asyncWriter.IsStarted() {
		op := asyncInsertOp{query: query, args: args}
		if r.asyncWriter.Write(op) {
			return 0, nil // Async write queued successfully
		}
		// Fall through to sync write if channel is full
	}

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("store: failed to insert error log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: failed to get last insert id: %w", err)
	}

	return id, nil
}

// QueryRecentErrorLogs retrieves the most recent error log entries.
// Results are ordered by created_at DESC.
func (r *Repository) QueryRecentErrorLogs(ctx context.Context, limit int) ([]ErrorLogEntry, error) {
	if r.db == nil {
		return nil, fmt.Errorf("store: database connection is nil")
	}

	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(`
		SELECT id, COALESCE(correlation_id, ''), error_type, error_message,
			   COALESCE(context, ''), created_at
		FROM error_log
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: failed to query error logs: %w", err)
	}
	defer rows.Close()

	var entries []ErrorLogEntry
	for rows.Next() {
		var entry ErrorLogEntry
		var createdAt string

		err := rows.Scan(
			&entry.ID,
			&entry.CorrelationID,
			&entry.ErrorType,
			&entry.ErrorMessage,
			&entry.Context,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("store: failed to scan error log row: %w", err)
		}

		entry.CreatedAt, _ = time.Parse(sqliteTimeFormat, createdAt)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: error iterating error log rows: %w", err)
	}

	return entries, nil
}

// CountDocuments returns the number of documents in a workspace.
func (r *Repository) CountDocuments(ctx context.Context, workspaceID string) (int64, error) {
	if r.db == nil {
		return 0, fmt.Errorf("store: database connection is nil")
	}

	var count int64
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM documents WHERE workspace_id = ?`, workspaceID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("store: failed to count documents: %w", err)
	}

	return count, nil
}

// CountScanRuns returns the total count of recorded scan runs.
func (r *Repository) CountScanRuns(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, fmt.Errorf("store: database connection is nil")
	}

	var count int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM scan_runs`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("store: failed to count scan runs: %w", err)
	}

	return count, nil
}

// asyncInsertOp is an internal type for async insert operations.
type asyncInsertOp struct {
	query string
	args  []interface{}
}

// CreateAsyncWriteHandler creates a WriteHandler for the Repository.
// This handler processes asyncInsertOp operations.
func (r *Repository) CreateAsyncWriteHandler() WriteHandler {
	return func(op WriteOperation) error {
		insertOp, ok := op.Data.(asyncInsertOp)
		if !ok {
			return fmt.Errorf("store: invalid operation type: expected asyncInsertOp")
		}

		_, err := r.db.Exec(insertOp.query, insertOp.args...)
		return err
	}
}

// nullString converts an empty string to sql.NullString for NULL storage.
func nullString(s string) interface{} {
	if s == "" {
		return sql.NullString{String: "", Valid: false}
	}
	return s
}
