package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

// schemaStatements mirrors migrations/0001_init.up.sql so repository tests
// can run against a fresh database without the file-based migrator.
var schemaStatements = []string{
	`CREATE TABLE workspaces (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE documents (
		id TEXT PRIMARY KEY,
		workspace_id TEXT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		doc_index INTEGER NOT NULL,
		name TEXT NOT NULL,
		blob_key TEXT NOT NULL,
		page_count INTEGER NOT NULL DEFAULT 0,
		ocr_pages INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (workspace_id, doc_index)
	)`,
	`CREATE TABLE diagnoses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workspace_id TEXT NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		doc_index INTEGER NOT NULL,
		page_number INTEGER NOT NULL,
		diagnosis TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT 'manual',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (workspace_id, doc_index, page_number)
	)`,
	`CREATE TABLE scan_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workspace_id TEXT NOT NULL,
		terms TEXT NOT NULL,
		mode TEXT NOT NULL,
		pages_scanned INTEGER NOT NULL DEFAULT 0,
		matches_found INTEGER NOT NULL DEFAULT 0,
		failed_pages INTEGER NOT NULL DEFAULT 0,
		cancelled INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error_message TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE error_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		correlation_id TEXT,
		error_type TEXT NOT NULL,
		error_message TEXT NOT NULL,
		context TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

func setupTestDB(t *testing.T) *Database {
	t.Helper()

	path := filepath.Join(t.TempDir(), "repo_test.db")
	db, err := NewDatabase(path)
	if err != nil {
		t.Fatalf("NewDatabase() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to apply schema: %v", err)
		}
	}

	return db
}

func TestRepository_WorkspaceLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, nil)
	ctx := context.Background()

	ws, err := repo.CreateWorkspace(ctx, "Smith v. Mercy Hospital")
	if err != nil {
		t.Fatalf("CreateWorkspace() error: %v", err)
	}
	if ws.ID == "" {
		t.Fatal("CreateWorkspace() returned empty ID")
	}

	got, err := repo.GetWorkspace(ctx, ws.ID)
	if err != nil {
		t.Fatalf("GetWorkspace() error: %v", err)
	}
	if got.Name != "Smith v. Mercy Hospital" {
		t.Errorf("Name = %q, want %q", got.Name, "Smith v. Mercy Hospital")
	}

	list, err := repo.ListWorkspaces(ctx)
	if err != nil {
		t.Fatalf("ListWorkspaces() error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ListWorkspaces() returned %d workspaces, want 1", len(list))
	}

	if err := repo.DeleteWorkspace(ctx, ws.ID); err != nil {
		t.Fatalf("DeleteWorkspace() error: %v", err)
	}
	if _, err := repo.GetWorkspace(ctx, ws.ID); err == nil {
		t.Error("GetWorkspace() after delete should return error")
	}
}

func TestRepository_CreateWorkspace_EmptyName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, nil)

	if _, err := repo.CreateWorkspace(context.Background(), ""); err == nil {
		t.Error("expected error for empty workspace name")
	}
}

func TestRepository_UpsertDocument_ReplacesAtIndex(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, nil)
	ctx := context.Background()

	ws, err := repo.CreateWorkspace(ctx, "review")
	if err != nil {
		t.Fatalf("CreateWorkspace() error: %v", err)
	}

	first := DocumentRow{
		WorkspaceID: ws.ID,
		DocIndex:    0,
		Name:        "records-v1.pdf",
		BlobKey:     "blob-1",
		PageCount:   12,
	}
	if _, err := repo.UpsertDocument(ctx, first); err != nil {
		t.Fatalf("UpsertDocument() error: %v", err)
	}

	// Re-upload at the same index replaces the row
	second := first
	second.Name = "records-v2.pdf"
	second.BlobKey = "blob-2"
	second.PageCount = 14
	second.OCRPages = 3
	if _, err := repo.UpsertDocument(ctx, second); err != nil {
		t.Fatalf("UpsertDocument() replace error: %v", err)
	}

	docs, err := repo.ListDocuments(ctx, ws.ID)
	if err != nil {
		t.Fatalf("ListDocuments() error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("ListDocuments() returned %d documents, want 1", len(docs))
	}
	if docs[0].Name != "records-v2.pdf" || docs[0].BlobKey != "blob-2" {
		t.Errorf("replaced document = %+v, want v2 values", docs[0])
	}
	if docs[0].PageCount != 14 || docs[0].OCRPages != 3 {
		t.Errorf("page counts = %d/%d, want 14/3", docs[0].PageCount, docs[0].OCRPages)
	}
}

func TestRepository_ListDocuments_OrderedByIndex(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, nil)
	ctx := context.Background()

	ws, _ := repo.CreateWorkspace(ctx, "review")

	// Insert out of order
	for _, idx := range []int{2, 0, 1} {
		doc := DocumentRow{
			WorkspaceID: ws.ID,
			DocIndex:    idx,
			Name:        "doc",
			BlobKey:     "blob",
		}
		if _, err := repo.UpsertDocument(ctx, doc); err != nil {
			t.Fatalf("UpsertDocument(%d) error: %v", idx, err)
		}
	}

	docs, err := repo.ListDocuments(ctx, ws.ID)
	if err != nil {
		t.Fatalf("ListDocuments() error: %v", err)
	}
	for i, doc := range docs {
		if doc.DocIndex != i {
			t.Errorf("docs[%d].DocIndex = %d, want %d", i, doc.DocIndex, i)
		}
	}
}

func TestRepository_DeleteDocument_ReindexesRemainder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, nil)
	ctx := context.Background()

	ws, _ := repo.CreateWorkspace(ctx, "review")
	names := []string{"first.pdf", "second.pdf", "third.pdf"}
	for i, name := range names {
		doc := DocumentRow{WorkspaceID: ws.ID, DocIndex: i, Name: name, BlobKey: "blob"}
		if _, err := repo.UpsertDocument(ctx, doc); err != nil {
			t.Fatalf("UpsertDocument() error: %v", err)
		}
	}

	// Diagnoses on the middle and last documents
	for _, row := range []DiagnosisRow{
		{WorkspaceID: ws.ID, DocIndex: 1, PageNumber: 2, Diagnosis: "fracture"},
		{WorkspaceID: ws.ID, DocIndex: 2, PageNumber: 5, Diagnosis: "contusion"},
	} {
		if err := repo.UpsertDiagnosis(ctx, row); err != nil {
			t.Fatalf("UpsertDiagnosis() error: %v", err)
		}
	}

	if err := repo.DeleteDocument(ctx, ws.ID, 1); err != nil {
		t.Fatalf("DeleteDocument() error: %v", err)
	}

	docs, err := repo.ListDocuments(ctx, ws.ID)
	if err != nil {
		t.Fatalf("ListDocuments() error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("ListDocuments() returned %d documents, want 2", len(docs))
	}
	if docs[0].Name != "first.pdf" || docs[0].DocIndex != 0 {
		t.Errorf("docs[0] = %q at %d, want first.pdf at 0", docs[0].Name, docs[0].DocIndex)
	}
	if docs[1].Name != "third.pdf" || docs[1].DocIndex != 1 {
		t.Errorf("docs[1] = %q at %d, want third.pdf at 1", docs[1].Name, docs[1].DocIndex)
	}

	// The removed document's diagnosis is gone; the later one moved down
	diagnoses, err := repo.ListDiagnoses(ctx, ws.ID)
	if err != nil {
		t.Fatalf("ListDiagnoses() error: %v", err)
	}
	if len(diagnoses) != 1 {
		t.Fatalf("ListDiagnoses() returned %d rows, want 1", len(diagnoses))
	}
	if diagnoses[0].DocIndex != 1 || diagnoses[0].PageNumber != 5 {
		t.Errorf("remapped diagnosis at %d page %d, want doc 1 page 5",
			diagnoses[0].DocIndex, diagnoses[0].PageNumber)
	}
	if diagnoses[0].Diagnosis != "contusion" {
		t.Errorf("Diagnosis = %q, want %q", diagnoses[0].Diagnosis, "contusion")
	}
}

func TestRepository_UpsertDiagnosis_ReplacesText(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, nil)
	ctx := context.Background()

	ws, _ := repo.CreateWorkspace(ctx, "review")

	row := DiagnosisRow{WorkspaceID: ws.ID, DocIndex: 0, PageNumber: 3, Diagnosis: "sprain", Source: DiagnosisSourceAI}
	if err := repo.UpsertDiagnosis(ctx, row); err != nil {
		t.Fatalf("UpsertDiagnosis() error: %v", err)
	}

	row.Diagnosis = "grade II sprain"
	row.Source = DiagnosisSourceManual
	if err := repo.UpsertDiagnosis(ctx, row); err != nil {
		t.Fatalf("UpsertDiagnosis() replace error: %v", err)
	}

	diagnoses, err := repo.ListDiagnoses(ctx, ws.ID)
	if err != nil {
		t.Fatalf("ListDiagnoses() error: %v", err)
	}
	if len(diagnoses) != 1 {
		t.Fatalf("ListDiagnoses() returned %d rows, want 1", len(diagnoses))
	}
	if diagnoses[0].Diagnosis != "grade II sprain" {
		t.Errorf("Diagnosis = %q, want %q", diagnoses[0].Diagnosis, "grade II sprain")
	}
	if diagnoses[0].Source != DiagnosisSourceManual {
		t.Errorf("Source = %q, want %q", diagnoses[0].Source, DiagnosisSourceManual)
	}
}

func TestRepository_ScanRuns(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, nil)
	ctx := context.Background()

	ws, _ := repo.CreateWorkspace(ctx, "review")

	run := ScanRun{
		WorkspaceID:  ws.ID,
		Terms:        "fracture, MRI",
		Mode:         "fuzzy",
		PagesScanned: 42,
		MatchesFound: 7,
		FailedPages:  1,
		Cancelled:    true,
		DurationMS:   3200,
		Status:       "partial",
	}
	id, err := repo.InsertScanRun(ctx, run)
	if err != nil {
		t.Fatalf("InsertScanRun() error: %v", err)
	}
	if id == 0 {
		t.Error("InsertScanRun() returned id 0 for sync write")
	}

	runs, err := repo.QueryRecentScanRuns(ctx, ws.ID, 10)
	if err != nil {
		t.Fatalf("QueryRecentScanRuns() error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("QueryRecentScanRuns() returned %d runs, want 1", len(runs))
	}
	got := runs[0]
	if got.Terms != run.Terms || got.Mode != run.Mode {
		t.Errorf("run = %+v, want terms/mode from inserted run", got)
	}
	if got.PagesScanned != 42 || got.MatchesFound != 7 || got.FailedPages != 1 {
		t.Errorf("counts = %d/%d/%d, want 42/7/1", got.PagesScanned, got.MatchesFound, got.FailedPages)
	}
	if !got.Cancelled {
		t.Error("Cancelled = false, want true")
	}

	count, err := repo.CountScanRuns(ctx)
	if err != nil {
		t.Fatalf("CountScanRuns() error: %v", err)
	}
	if count != 1 {
		t.Errorf("CountScanRuns() = %d, want 1", count)
	}
}

func TestRepository_ErrorLog(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, nil)
	ctx := context.Background()

	entry := ErrorLogEntry{
		CorrelationID: "abc12345",
		ErrorType:     "ocr",
		ErrorMessage:  "render failed for page 4",
	}
	if _, err := repo.InsertErrorLog(ctx, entry); err != nil {
		t.Fatalf("InsertErrorLog() error: %v", err)
	}

	entries, err := repo.QueryRecentErrorLogs(ctx, 5)
	if err != nil {
		t.Fatalf("QueryRecentErrorLogs() error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("QueryRecentErrorLogs() returned %d entries, want 1", len(entries))
	}
	if entries[0].ErrorType != "ocr" {
		t.Errorf("ErrorType = %q, want %q", entries[0].ErrorType, "ocr")
	}
	if !strings.Contains(entries[0].ErrorMessage, "page 4") {
		t.Errorf("ErrorMessage = %q, want mention of page 4", entries[0].ErrorMessage)
	}
}

func TestRepository_AsyncDiagnosisWrite(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, nil)
	ctx := context.Background()

	ws, _ := repo.CreateWorkspace(ctx, "review")

	writer := NewAsyncWriter(nil)
	asyncRepo := NewRepository(db, writer)
	writer.handler = asyncRepo.CreateAsyncWriteHandler()
	writer.Start()

	row := DiagnosisRow{WorkspaceID: ws.ID, DocIndex: 0, PageNumber: 1, Diagnosis: "whiplash"}
	if err := asyncRepo.UpsertDiagnosis(ctx, row); err != nil {
		t.Fatalf("UpsertDiagnosis() async error: %v", err)
	}

	// Stop drains pending writes before returning
	writer.Stop()

	diagnoses, err := repo.ListDiagnoses(ctx, ws.ID)
	if err != nil {
		t.Fatalf("ListDiagnoses() error: %v", err)
	}
	if len(diagnoses) != 1 {
		t.Fatalf("ListDiagnoses() returned %d rows after async write, want 1", len(diagnoses))
	}
	if diagnoses[0].Diagnosis != "whiplash" {
		t.Errorf("Diagnosis = %q, want %q", diagnoses[0].Diagnosis, "whiplash")
	}
}

func TestRepository_NilDatabase(t *testing.T) {
	repo := NewRepository(nil, nil)
	ctx := context.Background()

	if _, err := repo.CreateWorkspace(ctx, "x"); err == nil {
		t.Error("CreateWorkspace() with nil db should error")
	}
	if _, err := repo.ListDocuments(ctx, "x"); err == nil {
		t.Error("ListDocuments() with nil db should error")
	}
	if err := repo.UpsertDiagnosis(ctx, DiagnosisRow{}); err == nil {
		t.Error("UpsertDiagnosis() with nil db should error")
	}
	if _, err := repo.InsertScanRun(ctx, ScanRun{}); err == nil {
		t.Error("InsertScanRun() with nil db should error")
	}
}
