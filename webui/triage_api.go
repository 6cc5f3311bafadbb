// Package webui provides the TriageAPI organism for REST API handlers.
// This file contains handlers for the triage API endpoints that drive the
// web UI: workspaces, documents, search, selection, AI assistance, and
// output assembly.
package webui

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"meddoc_backend/assembler"
	"meddoc_backend/assist"
	"meddoc_backend/blobstore"
	"meddoc_backend/core"
	"meddoc_backend/export"
	"meddoc_backend/logging"
	"meddoc_backend/metrics"
	"meddoc_backend/ocrprocessor"
	"meddoc_backend/pdfprocessor"
	"meddoc_backend/search"
	"meddoc_backend/session"
	"meddoc_backend/store"

	"go.uber.org/zap"
)

// Sentinel errors for constructor validation.
var (
	ErrNilRepository = errors.New("webui: repository cannot be nil")
	ErrNilBlobClient = errors.New("webui: blob client cannot be nil")
	ErrNilEngine     = errors.New("webui: search engine cannot be nil")
	ErrNilCollector  = errors.New("webui: metrics collector cannot be nil")
	ErrNilAPILogger  = errors.New("webui: logger cannot be nil")
)

// VersionInfo contains version metadata for the status endpoint.
type VersionInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date,omitempty"`
	GitCommit string `json:"git_commit,omitempty"`
}

// TriageAPIConfig configures the TriageAPI behavior.
type TriageAPIConfig struct {
	// DefaultLimit is the default number of items to return in list endpoints
	DefaultLimit int

	// MaxLimit is the maximum number of items that can be requested
	MaxLimit int

	// MaxUploadBytes caps document upload size
	MaxUploadBytes int64

	// UploadDir is where uploaded PDFs are staged before parsing
	UploadDir string

	// ProfilesPath is the optional search profiles YAML file
	ProfilesPath string

	// VersionInfo contains application version metadata
	VersionInfo VersionInfo
}

// DefaultTriageAPIConfig returns a default configuration.
func DefaultTriageAPIConfig() TriageAPIConfig {
	return TriageAPIConfig{
		DefaultLimit:   20,
		MaxLimit:       100,
		MaxUploadBytes: 100 * core.BytesPerMB,
		UploadDir:      os.TempDir(),
		VersionInfo: VersionInfo{
			Version: "0.0.0",
		},
	}
}

// TriageDeps bundles the collaborators the TriageAPI wires together.
// Repo, Blobs, Engine, PDF, Exporter, Collector and Logger are required.
// OCR, Chatter, Scanner, Diagnoser and Broadcaster are optional; endpoints
// that need an absent collaborator answer 503.
type TriageDeps struct {
	Repo        *store.Repository
	Blobs       *blobstore.Client
	Engine      *search.Engine
	PDF         *pdfprocessor.Processor
	OCR         *ocrprocessor.Processor
	Chatter     *assist.Chatter
	Scanner     *assist.AutoScanner
	Diagnoser   *assist.Diagnoser
	Exporter    *export.Exporter
	Collector   metrics.MetricsCollector
	Broadcaster *WebSocketBroadcaster
	Logger      *logging.Logger
}

// workspaceState pairs a workspace's persisted row with its in-memory
// triage session and the cancel token of the current long-running pass.
type workspaceState struct {
	row   store.Workspace
	sess  *session.Session
	mu    sync.Mutex
	token *core.CancelToken
}

// beginRun installs a fresh cancel token for a long-running pass and
// returns it. A previous run's token stays cancellable until replaced.
func (ws *workspaceState) beginRun() *core.CancelToken {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.token = core.NewCancelToken()
	return ws.token
}

// cancelRun cancels the current pass, if any.
func (ws *workspaceState) cancelRun() bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.token == nil {
		return false
	}
	ws.token.Cancel()
	return true
}

// TriageAPI is an organism that provides REST API handlers for the triage
// workflow. It composes the repository, blob store, processors, search
// engine and AI collaborators, and keeps one in-memory session per
// workspace.
//
// Endpoints:
// - GET    /api/status                                    - System health status
// - GET    /api/tasks                                     - Recent task records
// - GET    /api/metrics                                   - Task and triage metrics
// - GET    /api/profiles                                  - Predefined search profiles
// - POST   /api/workspaces                                - Create a workspace
// - GET    /api/workspaces                                - List workspaces
// - GET    /api/workspaces/{id}                           - Workspace detail
// - DELETE /api/workspaces/{id}                           - Delete a workspace
// - POST   /api/workspaces/{id}/documents                 - Upload and extract a PDF
// - GET    /api/workspaces/{id}/documents                 - List documents
// - DELETE /api/workspaces/{id}/documents/{index}         - Remove a document
// - POST   /api/workspaces/{id}/documents/{index}/ocr     - Run the OCR pass
// - POST   /api/workspaces/{id}/search                    - Run a keyword/date search
// - GET    /api/workspaces/{id}/matches                   - Accumulated match records
// - GET    /api/workspaces/{id}/selection                 - Selected page keys
// - POST   /api/workspaces/{id}/selection                 - Toggle / select-all / deselect-all
// - POST   /api/workspaces/{id}/scan                      - AI auto-scan
// - POST   /api/workspaces/{id}/chat                      - AI chat turn
// - POST   /api/workspaces/{id}/diagnose                  - AI diagnosis of selected pages
// - GET    /api/workspaces/{id}/diagnoses                 - List diagnoses
// - PUT    /api/workspaces/{id}/diagnoses                 - Set a manual diagnosis
// - GET    /api/workspaces/{id}/plan                      - Output assembly plan
// - GET    /api/workspaces/{id}/export                    - Match summary workbook
// - POST   /api/workspaces/{id}/cancel                    - Cancel the running pass
type TriageAPI struct {
	deps   TriageDeps
	config TriageAPIConfig
	logger *logging.Logger

	startedAt time.Time

	workspacesMu sync.Mutex
	workspaces   map[string]*workspaceState
}

// NewTriageAPI creates a new TriageAPI with the specified collaborators
// and configuration.
func NewTriageAPI(deps TriageDeps, config TriageAPIConfig) (*TriageAPI, error) {
	if deps.Repo == nil {
		return nil, ErrNilRepository
	}
	if deps.Blobs == nil {
		return nil, ErrNilBlobClient
	}
	if deps.Engine == nil {
		return nil, ErrNilEngine
	}
	if deps.Collector == nil {
		return nil, ErrNilCollector
	}
	if deps.Logger == nil {
		return nil, ErrNilAPILogger
	}
	if config.DefaultLimit < 1 {
		config.DefaultLimit = 20
	}
	if config.MaxLimit < 1 {
		config.MaxLimit = 100
	}
	if config.MaxUploadBytes < 1 {
		config.MaxUploadBytes = 100 * core.BytesPerMB
	}
	if config.UploadDir == "" {
		config.UploadDir = os.TempDir()
	}

	return &TriageAPI{
		deps:       deps,
		config:     config,
		logger:     deps.Logger.Named("triage-api"),
		startedAt:  time.Now(),
		workspaces: make(map[string]*workspaceState),
	}, nil
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (api *TriageAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/status", api.HandleStatus)
	mux.HandleFunc("GET /api/tasks", api.HandleTasks)
	mux.HandleFunc("GET /api/metrics", api.HandleMetrics)
	mux.HandleFunc("GET /api/profiles", api.HandleProfiles)

	mux.HandleFunc("POST /api/workspaces", api.HandleCreateWorkspace)
	mux.HandleFunc("GET /api/workspaces", api.HandleListWorkspaces)
	mux.HandleFunc("GET /api/workspaces/{id}", api.HandleGetWorkspace)
	mux.HandleFunc("DELETE /api/workspaces/{id}", api.HandleDeleteWorkspace)

	mux.HandleFunc("POST /api/workspaces/{id}/documents", api.HandleUploadDocument)
	mux.HandleFunc("GET /api/workspaces/{id}/documents", api.HandleListDocuments)
	mux.HandleFunc("DELETE /api/workspaces/{id}/documents/{index}", api.HandleDeleteDocument)
	mux.HandleFunc("POST /api/workspaces/{id}/documents/{index}/ocr", api.HandleOCRDocument)

	mux.HandleFunc("POST /api/workspaces/{id}/search", api.HandleSearch)
	mux.HandleFunc("GET /api/workspaces/{id}/matches", api.HandleMatches)
	mux.HandleFunc("GET /api/workspaces/{id}/selection", api.HandleGetSelection)
	mux.HandleFunc("POST /api/workspaces/{id}/selection", api.HandleUpdateSelection)

	mux.HandleFunc("POST /api/workspaces/{id}/scan", api.HandleScan)
	mux.HandleFunc("POST /api/workspaces/{id}/chat", api.HandleChat)
	mux.HandleFunc("POST /api/workspaces/{id}/diagnose", api.HandleDiagnose)
	mux.HandleFunc("GET /api/workspaces/{id}/diagnoses", api.HandleListDiagnoses)
	mux.HandleFunc("PUT /api/workspaces/{id}/diagnoses", api.HandleSetDiagnosis)

	mux.HandleFunc("GET /api/workspaces/{id}/plan", api.HandlePlan)
	mux.HandleFunc("GET /api/workspaces/{id}/export", api.HandleExport)
	mux.HandleFunc("POST /api/workspaces/{id}/cancel", api.HandleCancel)
}

// StatusResponse represents the JSON response for /api/status.
type StatusResponse struct {
	Health     string    `json:"health"`
	Version    string    `json:"version"`
	BuildDate  string    `json:"build_date,omitempty"`
	GitCommit  string    `json:"git_commit,omitempty"`
	Uptime     string    `json:"uptime"`
	UptimeSecs float64   `json:"uptime_secs"`
	LastCheck  time.Time `json:"last_check"`
	Storage    bool      `json:"storage_connected"`
}

// HandleStatus handles GET /api/status requests.
func (api *TriageAPI) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status := api.deps.Collector.GetSystemStatus()
	storage := api.deps.Collector.GetStorageStatus()

	response := StatusResponse{
		Health:     status.Health,
		Version:    api.config.VersionInfo.Version,
		BuildDate:  api.config.VersionInfo.BuildDate,
		GitCommit:  api.config.VersionInfo.GitCommit,
		Uptime:     FormatDurationCompact(status.Uptime),
		UptimeSecs: status.Uptime.Seconds(),
		LastCheck:  status.LastCheck,
		Storage:    storage.Connected,
	}

	api.writeJSON(w, http.StatusOK, response)
}

// TasksResponse represents the JSON response for /api/tasks.
type TasksResponse struct {
	Tasks []metrics.TaskRecord `json:"tasks"`
	Count int                  `json:"count"`
	Limit int                  `json:"limit"`
}

// HandleTasks handles GET /api/tasks requests.
// Query parameters:
// - limit: number of tasks to return (default: 20, max: 100)
func (api *TriageAPI) HandleTasks(w http.ResponseWriter, r *http.Request) {
	limit := api.config.DefaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > api.config.MaxLimit {
		limit = api.config.MaxLimit
	}

	tasks := api.deps.Collector.GetRecentTasks(limit)

	api.writeJSON(w, http.StatusOK, TasksResponse{
		Tasks: tasks,
		Count: len(tasks),
		Limit: limit,
	})
}

// MetricsResponse represents the JSON response for /api/metrics.
type MetricsResponse struct {
	TotalProcessed int64                               `json:"total_processed"`
	TotalSuccess   int64                               `json:"total_success"`
	TotalErrors    int64                               `json:"total_errors"`
	SuccessRate    float64                             `json:"success_rate"`
	ByType         map[string]*metrics.TaskTypeMetrics `json:"by_type"`
	Counters       metrics.TriageCounters              `json:"counters"`
}

// HandleMetrics handles GET /api/metrics requests.
func (api *TriageAPI) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	taskMetrics := api.deps.Collector.GetTaskMetrics()

	var successRate float64
	if taskMetrics.TotalProcessed > 0 {
		successRate = float64(taskMetrics.TotalSuccess) / float64(taskMetrics.TotalProcessed) * 100
	}

	api.writeJSON(w, http.StatusOK, MetricsResponse{
		TotalProcessed: taskMetrics.TotalProcessed,
		TotalSuccess:   taskMetrics.TotalSuccess,
		TotalErrors:    taskMetrics.TotalErrors,
		SuccessRate:    successRate,
		ByType:         taskMetrics.ByType,
		Counters:       api.deps.Collector.GetCounters(),
	})
}

// ProfilesResponse represents the JSON response for /api/profiles.
type ProfilesResponse struct {
	Profiles []core.SearchProfile `json:"profiles"`
	Count    int                  `json:"count"`
}

// HandleProfiles handles GET /api/profiles requests.
func (api *TriageAPI) HandleProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := core.LoadProfiles(api.config.ProfilesPath)
	if err != nil {
		api.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	api.writeJSON(w, http.StatusOK, ProfilesResponse{
		Profiles: profiles,
		Count:    len(profiles),
	})
}

// WorkspaceResponse represents one workspace in API responses.
type WorkspaceResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"created_at"`
	DocumentCount int       `json:"document_count"`
	MatchCount    int       `json:"match_count"`
	SelectedCount int       `json:"selected_count"`
}

// HandleCreateWorkspace handles POST /api/workspaces requests.
func (api *TriageAPI) HandleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		api.writeError(w, http.StatusBadRequest, "workspace name is required")
		return
	}

	row, err := api.deps.Repo.CreateWorkspace(r.Context(), req.Name)
	if err != nil {
		api.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	api.workspacesMu.Lock()
	api.workspaces[row.ID] = &workspaceState{row: row, sess: session.New()}
	api.workspacesMu.Unlock()

	api.logger.Info("workspace created",
		zap.String("workspace_id", row.ID),
		zap.String("name", row.Name))

	api.writeJSON(w, http.StatusCreated, WorkspaceResponse{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
	})
}

// HandleListWorkspaces handles GET /api/workspaces requests.
func (api *TriageAPI) HandleListWorkspaces(w http.ResponseWriter, r *http.Request) {
	rows, err := api.deps.Repo.ListWorkspaces(r.Context())
	if err != nil {
		api.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]WorkspaceResponse, 0, len(rows))
	for _, row := range rows {
		resp := WorkspaceResponse{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt}
		if ws := api.peekWorkspace(row.ID); ws != nil {
			resp.DocumentCount = ws.sess.DocumentCount()
			resp.MatchCount = len(ws.sess.Matches())
			resp.SelectedCount = ws.sess.SelectedCount()
		}
		out = append(out, resp)
	}

	api.writeJSON(w, http.StatusOK, map[string]interface{}{
		"workspaces": out,
		"count":      len(out),
	})
}

// HandleGetWorkspace handles GET /api/workspaces/{id} requests.
func (api *TriageAPI) HandleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, ok := api.loadWorkspace(w, r)
	if !ok {
		return
	}

	api.writeJSON(w, http.StatusOK, WorkspaceResponse{
		ID:            ws.row.ID,
		Name:          ws.row.Name,
		CreatedAt:     ws.row.CreatedAt,
		DocumentCount: ws.sess.DocumentCount(),
		MatchCount:    len(ws.sess.Matches()),
		SelectedCount: ws.sess.SelectedCount(),
	})
}

// HandleDeleteWorkspace handles DELETE /api/workspaces/{id} requests.
func (api *TriageAPI) HandleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, ok := api.loadWorkspace(w, r)
	if !ok {
		return
	}

	ws.cancelRun()

	if err := api.deps.Repo.DeleteWorkspace(r.Context(), ws.row.ID); err != nil {
		api.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	api.workspacesMu.Lock()
	delete(api.workspaces, ws.row.ID)
	api.workspacesMu.Unlock()

	api.logger.Info("workspace deleted", zap.String("workspace_id", ws.row.ID))
	w.WriteHeader(http.StatusNoContent)
}

// DocumentResponse represents one document in API responses.
type DocumentResponse struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	BlobKey   string `json:"blob_key"`
	PageCount int    `json:"page_count"`
}

// UploadResponse represents the JSON response for a document upload.
type UploadResponse struct {
	Document    DocumentResponse `json:"document"`
	PagesMerged int              `json:"pages_merged"`
	FailedPages int              `json:"failed_pages"`
}

// HandleUploadDocument handles POST /api/workspaces/{id}/documents requests.
// The request is a multipart form with the PDF under the "file" field. The
// document is staged locally, uploaded to the blob store, and its text layer
// extracted page by page before the response is written.
func (api *TriageAPI) HandleUploadDocument(w http.ResponseWriter, r *http.Request) {
	ws, ok := api.loadWorkspace(w, r)
	if !ok {
		return
	}
	if api.deps.PDF == nil {
		api.writeError(w, http.StatusServiceUnavailable, "document processing not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, api.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(api.config.MaxUploadBytes); err != nil {
		api.writeError(w, http.StatusRequestEntityTooLarge, "upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if header.Size > api.config.MaxUploadBytes {
		api.writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds the %s upload limit", core.FormatBytes(api.config.MaxUploadBytes)))
		return
	}

	// Stage the PDF locally; the parser needs a file path and the blob
	// upload needs a second read of the same bytes.
	staged, err := os.CreateTemp(api.config.UploadDir, "upload-*.pdf")
	if err != nil {
		api.writeError(w, http.StatusInternalServerError, "cannot stage upload")
		return
	}
	defer os.Remove(staged.Name())

	if _, err := io.Copy(staged, file); err != nil {
		staged.Close()
		api.writeError(w, http.StatusInternalServerError, "cannot stage upload")
		return
	}
	if _, err := staged.Seek(0, io.SeekStart); err != nil {
		staged.Close()
		api.writeError(w, http.StatusInternalServerError, "cannot stage upload")
		return
	}

	blobKey, err := api.deps.Blobs.Upload(r.Context(), staged, header.Filename, "application/pdf")
	staged.Close()
	if err != nil {
		api.writeError(w, http.StatusBadGateway, fmt.Sprintf("blob upload failed: %v", err))
		return
	}

	doc := ws.sess.AddDocument(header.Filename, blobKey, 0)
	token := ws.beginRun()
	started := time.Now()

	result, err := api.deps.PDF.ProcessDocument(r.Context(), ws.sess, doc, staged.Name(), token, func(p pdfprocessor.Progress) {
		if api.deps.Broadcaster != nil {
			api.deps.Broadcaster.BroadcastDocumentProgress(DocumentProgressData{
				WorkspaceID: ws.row.ID,
				DocIndex:    p.DocumentIndex,
				FileName:    header.Filename,
				PagesDone:   p.PageNumber,
				PagesTotal:  p.TotalPages,
				Stage:       "extract",
			})
		}
	})
	api.recordTask(metrics.TaskTypeExtract, ws.row.ID, started, err)
	if err != nil {
		api.writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("extraction failed: %v", err))
		return
	}

	api.deps.Collector.AddDocumentsProcessed(1)
	api.deps.Collector.AddPagesExtracted(int64(result.PagesMerged))

	row := store.DocumentRow{
		WorkspaceID: ws.row.ID,
		DocIndex:    doc.Index,
		Name:        header.Filename,
		BlobKey:     blobKey,
		PageCount:   result.PageCount,
	}
	if _, err := api.deps.Repo.UpsertDocument(r.Context(), row); err != nil {
		api.logger.Warn("document row write failed",
			zap.String("workspace_id", ws.row.ID),
			zap.Error(err))
	}

	api.logger.Info("document uploaded",
		zap.String("workspace_id", ws.row.ID),
		zap.String("file_name", header.Filename),
		zap.Int("doc_index", doc.Index),
		zap.Int("pages", result.PageCount))

	api.writeJSON(w, http.StatusCreated, UploadResponse{
		Document: DocumentResponse{
			Index:     doc.Index,
			Name:      header.Filename,
			BlobKey:   blobKey,
			PageCount: result.PageCount,
		},
		PagesMerged: result.PagesMerged,
		FailedPages: result.FailedPages,
	})
}

// HandleListDocuments handles GET /api/workspaces/{id}/documents requests.
func (api *TriageAPI) HandleListDocuments(w http.ResponseWriter, r *http.Request) {
	ws, ok := api.loadWorkspace(w, r)
	if !ok {
		return
	}

	docs := ws.sess.Documents()
	out := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, DocumentResponse{
			Index:     d.Index,
			Name:      d.Name,
			BlobKey:   d.BlobKey,
			PageCount: d.PageCount,
		})
	}

	api.writeJSON(w, http.StatusOK, map[string]interface{}{
		"documents": out,
		"count":     len(out),
	})
}

// HandleDeleteDocument handles DELETE /api/workspaces/{id}/documents/{index}.
// The document's match records, selections and diagnoses are discarded and
// later documents shift down one index.
func (api *TriageAPI) HandleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	ws, ok := api.loadWorkspace(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid document index")
		return
	}

	docs := ws.sess.Documents()
	var blobKey string
	for _, d := range docs {
		if d.Index == index {
			blobKey = d.BlobKey
		}
	}

	if err := ws.sess.RemoveDocument(index); err != nil {
		api.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if err := api.deps.Repo.DeleteDocument(r.Context(), ws.row.ID, index); err != nil {
		api.logger.Warn("document row delete failed",
			zap.String("workspace_id", ws.row.ID),
			zap.Int("doc_index", index),
			zap.Error(err))
	}
	if blobKey != "" {
		if err := api.deps.Blobs.Delete(r.Context(), blobKey); err != nil {
			api.logger.Warn("blob delete failed",
				zap.String("blob_key", blobKey),
				zap.Error(err))
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// OCRResponse represents the JSON response for an OCR pass.
type OCRResponse struct {
	PagesScanned    int  `json:"pages_scanned"`
	PagesRecognized int  `json:"pages_recognized"`
	FailedPages     int  `json:"failed_pages"`
	Cancelled       bool `json:"cancelled"`
}

// HandleOCRDocument handles POST /api/workspaces/{id}/documents/{index}/ocr.
// It runs the OCR pass over the document's thin-text pages and merges the
// recognized text into the session's page records.
func (api *TriageAPI) HandleOCRDocument(w http.ResponseWriter, r *http.Request) {
	ws, ok := api.loadWorkspace(w, r)
	if !ok {
		return
	}
	if api.deps.OCR == nil {
		api.writeError(w, http.StatusServiceUnavailable, "OCR not configured")
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid document index")
		return
	}

	var target *DocumentResponse
	for _, d := range ws.sess.Documents() {
		if d.Index == index {
			target = &DocumentResponse{Index: d.Index, Name: d.Name, BlobKey: d.BlobKey, PageCount: d.PageCount}
		}
	}
	if target == nil {
		api.writeError(w, http.StatusNotFound, "document not found")
		return
	}

	docs := ws.sess.Documents()
	token := ws.beginRun()
	started := time.Now()

	result, err := api.deps.OCR.ProcessDocument(r.Context(), ws.sess, docs[index], token)
	api.recordTask(metrics.TaskTypeOCR, ws.row.ID, started, err)
	if err != nil {
		api.writeError(w, http.StatusBadGateway, fmt.Sprintf("OCR failed: %v", err))
		return
	}

	api.deps.Collector.AddPagesOCRd(int64(result.PagesRecognized))
	if api.deps.Broadcaster != nil {
		api.deps.Broadcaster.BroadcastDocumentProgress(DocumentProgressData{
			WorkspaceID: ws.row.ID,
			DocIndex:    index,
			FileName:    target.Name,
			PagesDone:   result.PagesScanned,
			PagesTotal:  target.PageCount,
			Stage:       "ocr",
		})
	}

	api.writeJSON(w, http.StatusOK, OCRResponse{
		PagesScanned:    result.PagesScanned,
		PagesRecognized: result.PagesRecognized,
		FailedPages:     result.FailedPages,
		Cancelled:       result.Cancelled,
	})
}

// SearchRequest represents the JSON body for /api/workspaces/{id}/search.
type SearchRequest struct {
	// Terms is raw comma-separated user input
	Terms string `json:"terms"`

	// Profile names a predefined search profile; its terms are appended
	Profile string `json:"profile,omitempty"`

	// Mode is "fuzzy", "exact" or "date" (default: "fuzzy")
	Mode string `json:"mode,omitempty"`

	// Select controls whether matched pages join the selected set (default: true)
	Select *bool `json:"select,omitempty"`
}

// SearchResponse represents the JSON response for a search pass.
type SearchResponse struct {
	NewMatches   int      `json:"new_matches"`
	TotalMatches int      `json:"total_matches"`
	Terms        []string `json:"terms"`
	Mode         string   `json:"mode"`
}

// HandleSearch handles POST /api/workspaces/{id}/search requests.
// Match records accumulate across passes; matched pages are merged into the
// selected set with search provenance unless the request opts out.
func (api *TriageAPI) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ws, ok := api.loadWorkspace(w, r)
	if !ok {
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	terms := search.ParseTerms(req.Terms)
	if req.Profile != "" {
		profiles, err := core.LoadProfiles(api.config.ProfilesPath)
		if err != nil {
			api.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		profile, found := core.FindProfile(profiles, req.Profile)
		if !found {
			api.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown profile %q", req.Profile))
			return
		}
		terms = append(terms, profile.Terms...)
	}
	if len(terms) == 0 {
		api.writeError(w, http.StatusBadRequest, "no search terms given")
		return
	}

	mode := search.Mode(req.Mode)
	switch mode {
	case "":
		mode = search.ModeFuzzy
	case search.ModeFuzzy, search.ModeExact, search.ModeDate:
	default:
		api.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown search mode %q", req.Mode))
		return
	}

	started := time.Now()
	records := api.deps.Engine.Search(ws.sess.Documents(), ws.sess.PageTexts(), terms, mode)
	ws.sess.AddSearchTerms(terms)
	if req.Select == nil || *req.Select {
		ws.sess.AddMatches(records, session.ProvenanceSearch)
	}
	api.recordTask(metrics.TaskTypeSearch, ws.row.ID, started, nil)
	api.deps.Collector.AddMatchRecords(int64(len(records)))

	total := len(ws.sess.Matches())
	run := store.ScanRun{
		WorkspaceID:  ws.row.ID,
		Terms:        req.Terms,
		Mode:         string(mode),
		MatchesFound: len(records),
		DurationMS:   int(time.Since(started).Milliseconds()),
		Status:       "success",
	}
	if _, err := api.deps.Repo.InsertScanRun(r.Context(), run); err != nil {
		api.logger.Warn("scan run write failed", zap.Error(err))
	}

	if api.deps.Broadcaster != nil {
		api.deps.Broadcaster.BroadcastMatchUpdate(MatchUpdateData{
			WorkspaceID:  ws.row.ID,
			Term:         req.Terms,
			NewMatches:   len(records),
			TotalMatches: total,
		})
	}

	api.writeJSON(w, http.StatusOK, SearchResponse{
		NewMatches:   len(records),
		TotalMatches: total,
		Terms:        terms,
		Mode:         string(mode),
	})
}

// HandleMatches handles GET /api/workspaces/{id}/matches requests.
func (api *TriageAPI) HandleMatches(w http.ResponseWriter, r *http.Request) {
	ws, ok := api.loadWorkspace(w, r)
	if !ok {
		return
	}

	matches := ws.sess.Matches()
	api.writeJSON(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
		"count":   len(matches),
	})
}

// SelectionEntry represents one selected page in API responses.
type SelectionEntry struct {
	Key        string `json:"key"`
	DocIndex   int    `json:"doc_index"`
	PageNumber int    `json:"page_number"`
	Provenance string `json:"provenance"`
}

// HandleGetSelection handles GET /api/workspaces/{id}/selection requests.
func (api *TriageAPI) HandleGetSelection(w http.ResponseWriter, r *http.Request) {
	ws, ok := api.loadWorkspace(w, r)
	if !ok {
		return
	}

	keys := ws.sess.SelectedKeys()
	out := make([]SelectionEntry, 0, len(keys))
	for _, k := range keys {
		entry := SelectionEntry{
			Key:        k.String(),
			DocIndex:   k.Document,
			PageNumber: k.Page,
		}
		if prov, found := ws.sess.Provenance(k); found {
			entry.Provenance = string(prov)
		}
		out = append(out, entry)
	}

	api.writeJSON(w, http.StatusOK, map[string]interface{}{
		"selection": out,
		"count":     len(out),
	})
}

// SelectionRequest represents the JSON body for selection updates.
type SelectionRequest struct {
	// Action is "toggle", "select_all" or "deselect_all"
	Action string `json:"action"`

	// Key is the "{documentIndex}-{pageNumber}" composite key for toggle
	Key string `json:"key,omitempty"`
}

// HandleUpdateSelection handles POST /api/workspaces/{id}/selection requests.
func (api *TriageAPI) HandleUpdateSelection(w http.ResponseWriter, r *http.Request) {
	ws, ok := api.loadWorkspace(w, r)
	if !ok {
		return
	}

	var req SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch req.Action {
	case "toggle":
		key, err := session.ParseKey(req.Key)
		if err != nil {
			api.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := ws.sess.ToggleSelection(key); err != nil {
			api.writeError(w, http.StatusNotFound, err.Error())
			return
		}
	case "select_all":
		ws.sess.SelectAll()
	case "deselect_all":
		ws.sess.DeselectAll()
	default:
		api.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", req.Action))
		return
	}

	api.writeJSON(w, http.StatusOK, map[string]interface{}{
		"selected_count": ws.sess.SelectedCount(),
	})
}

// ScanRequest represents the JSON body for /api/workspaces/{id}/scan.
type ScanRequest struct {
	// Terms is raw comma-separated user input; the workspace's accumulated
	// search terms are used when empty
	Terms string `json:"terms,omitempty"`
}

// ScanResponse represents the JSON response for an AI scan pass.
type ScanResponse struct {
	PagesScanned int  `json:"pages_scanned"`
	MatchesFound int  `json:"matches_found"`
	FailedPages  int  `json:"failed_pages"`
	Cancelled    bool `json:"cancelled"`
}

// HandleScan handles POST /api/workspaces/{id}/scan requests.
// The scan walks every extracted page and merges accepted AI suggestions
// into the session as AI-provenance match records.
func (api *TriageAPI) HandleScan(w http.ResponseWriter, r *http.Request) {
	ws, ok := api.loadWorkspace(w, r)
	if !ok {
		return
	}
	if api.deps.Scanner == nil {
		api.writeError(w, http.StatusServiceUnavailable, "AI scan not configured")
		return
	}

	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	terms := search.ParseTerms(req.Terms)
	if len(terms) == 0 {
		terms = ws.sess.SearchTerms()
	}
	if len(terms) == 0 {
		api.writeError(w, http.StatusBadRequest, "no scan terms available")
		return
	}

	token := ws.beginRun()
	started := time.Now()

	result, err := api.deps.Scanner.Scan(r.Context(), ws.sess, terms, token)
	api.recordTask(metrics.TaskTypeScan, ws.row.ID, started, err)
	if err != nil {
		api.deps.Collector.AddAIFailures(1)
		api.writeError(w, http.StatusBadGateway, fmt.Sprintf("scan failed: %v", err))
		return
	}

	api.deps.Collector.AddMatchRecords(int64(result.MatchesFound))

	status := "success"
	if result.FailedPages > 0 {
		status = "partial"
	}
	run := store.ScanRun{
		WorkspaceID:  ws.row.ID,
		Terms:        req.Terms,
		Mode:         string(search.ModeAI),
		PagesScanned: result.PagesScanned,
		MatchesFound: result.MatchesFound,
		FailedPages:  result.FailedPages,
		Cancelled:    result.Cancelled,
		DurationMS:   int(time.Since(started).Milliseconds()),
		Status:       status,
	}
	if _, err := api.deps.Repo.InsertScanRun(r.Context(), run); err != nil {
		api.logger.Warn("scan run write failed", zap.Error(err))
	}

	if api.deps.Broadcaster != nil {
		api.deps.Broadcaster.BroadcastScanProgress(ScanProgressData{
			WorkspaceID:  ws.row.ID,
			PagesScanned: result.PagesScanned,
			PagesFlagged: result.MatchesFound,
			Done:         true,
		})
	}

	api.writeJSON(w, http.StatusOK, ScanResponse{
		PagesScanned: result.PagesScanned,
		MatchesFound: result.MatchesFound,
		FailedPages:  result.FailedPages,
		Cancelled:    result.Cancelled,
	})
}

// ChatRequest represents the JSON body for /api/workspaces/{id}/chat.
type ChatRequest struct {
	// Messages is the conversation history, oldest first
	Messages []assist.Message `json:"messages"`

	// IncludeContext controls whether selected page text is sent along
	IncludeContext bool `json:"include_context,omitempty"`
}

// ChatResponse represents the JSON response for a chat turn.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// HandleChat handles POST /api/workspaces/{id}/chat requests.
func (api *TriageAPI) HandleChat(w http.ResponseWriter, r *http.Request) {
	ws, ok := api.loadWorkspace(w, r)
	if !ok {
		return
	}
	if api.deps.Chatter == nil {
		api.writeError(w, http.StatusServiceUnavailable, "AI chat not configured")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Messages) == 0 {
		api.writeError(w, http.StatusBadRequest, "no messages given")
		return
	}

	var docContext string
	if req.IncludeContext {
		docContext = api.selectedPageContext(ws.sess)
	}

	started := time.Now()
	reply, err := api.deps.Chatter.Complete(r.Context(), req.Messages, docContext)
	api.recordTask(metrics.TaskTypeChat, ws.row.ID, started, err)
	if err != nil {
		api.deps.Collector.AddAIFailures(1)
		api.writeError(w, http.StatusBadGateway, fmt.Sprintf("chat failed: %v", err))
		return
	}

	api.writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}

// DiagnoseResponse represents the JSON response for a diagnosis pass.
type DiagnoseResponse struct {
	PagesDiagnosed int  `json:"pages_diagnosed"`
	FailedPages    int  `json:"failed_pages"`
	Cancelled      bool `json:"cancelled"`
}

// HandleDiagnose handles POST /api/workspaces/{id}/diagnose requests.
// Every selected page without a diagnosis gets an AI suggestion; results
// are persisted with AI source.
func (api *TriageAPI) HandleDiagnose(w http.ResponseWriter, r *http.Request) {
	ws, ok := api.loadWorkspace(w, r)
	if !ok {
		return
	}
	if api.deps.Diagnoser == nil {
		api.writeError(w, http.StatusServiceUnavailable, "AI diagnosis not configured")
		return
	}

	token := ws.beginRun()
	started := time.Now()

	result, err := api.deps.Diagnoser.DiagnoseSelected(r.Context(), ws.sess, token)
	api.recordTask(metrics.TaskTypeDiagnose, ws.row.ID, started, err)
	if err != nil {
		api.deps.Collector.AddAIFailures(1)
		api.writeError(w, http.StatusBadGateway, fmt.Sprintf("diagnosis failed: %v", err))
		return
	}

	api.persistDiagnoses(r, ws, store.DiagnosisSourceAI)

	api.writeJSON(w, http.StatusOK, DiagnoseResponse{
		PagesDiagnosed: result.PagesDiagnosed,
		FailedPages:    result.FailedPages,
		Cancelled:      result.Cancelled,
	})
}

// DiagnosisEntry represents one diagnosis in API responses.
type DiagnosisEntry struct {
	Key        string `json:"key"`
	DocIndex   int    `json:"doc_index"`
	PageNumber int    `json:"page_number"`
	Diagnosis  string `json:"diagnosis"`
}

// HandleListDiagnoses handles GET /api/workspaces/{id}/diagnoses requests.
func (api *TriageAPI) HandleListDiagnoses(w http.ResponseWriter, r *http.Request) {
	ws, ok := api.loadWorkspace(w, r)
	if !ok {
		return
	}

	diagnoses := ws.sess.Diagnoses()
	out := make([]DiagnosisEntry, 0, len(diagnoses))
	for k, text := range diagnoses {
		out = append(out, DiagnosisEntry{
			Key:        k.String(),
			DocIndex:   k.Document,
			PageNumber: k.Page,
			Diagnosis:  text,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DocIndex != out[j].DocIndex {
			return out[i].DocIndex < out[j].DocIndex
		}
		return out[i].PageNumber < out[j].PageNumber
	})

	api.writeJSON(w, http.StatusOK, map[string]interface{}{
		"diagnoses": out,
		"count":     len(out),
	})
}

// SetDiagnosisRequest represents the JSON body for manual diagnosis edits.
type SetDiagnosisRequest struct {
	Key       string `json:"key"`
	Diagnosis string `json:"diagnosis"`
}

// HandleSetDiagnosis handles PUT /api/workspaces/{id}/diagnoses requests.
// The page must already be selected; a manual edit overwrites any earlier
// AI suggestion for the page.
func (api *TriageAPI) HandleSetDiagnosis(w http.ResponseWriter, r *http.Request) {
	ws, ok := api.loadWorkspace(w, r)
	if !ok {
		return
	}

	var req SetDiagnosisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	key, err := session.ParseKey(req.Key)
	if err != nil {
		api.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := ws.sess.SetDiagnosis(key, req.Diagnosis); err != nil {
		api.writeError(w, http.StatusConflict, err.Error())
		return
	}

	row := store.DiagnosisRow{
		WorkspaceID: ws.row.ID,
		DocIndex:    key.Document,
		PageNumber:  key.Page,
		Diagnosis:   req.Diagnosis,
		Source:      store.DiagnosisSourceManual,
	}
	if err := api.deps.Repo.UpsertDiagnosis(r.Context(), row); err != nil {
		api.logger.Warn("diagnosis write failed", zap.Error(err))
	}

	if api.deps.Broadcaster != nil {
		api.deps.Broadcaster.BroadcastDiagnosisUpdate(DiagnosisUpdateData{
			WorkspaceID: ws.row.ID,
			DocIndex:    key.Document,
			PageNumber:  key.Page,
			Summary:     assist.TruncateText(req.Diagnosis, 120),
		})
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandlePlan handles GET /api/workspaces/{id}/plan requests.
// The plan groups selected pages by document in ascending index and page
// order, independent of selection order.
func (api *TriageAPI) HandlePlan(w http.ResponseWriter, r *http.Request) {
	ws, ok := api.loadWorkspace(w, r)
	if !ok {
		return
	}

	plan, err := assembler.BuildPlan(ws.sess)
	if err != nil {
		if errors.Is(err, assembler.ErrNothingSelected) {
			api.writeError(w, http.StatusConflict, err.Error())
			return
		}
		api.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	api.writeJSON(w, http.StatusOK, plan)
}

// HandleExport handles GET /api/workspaces/{id}/export requests.
// The response is an XLSX workbook summarizing match records and selections.
func (api *TriageAPI) HandleExport(w http.ResponseWriter, r *http.Request) {
	ws, ok := api.loadWorkspace(w, r)
	if !ok {
		return
	}
	if api.deps.Exporter == nil {
		api.writeError(w, http.StatusServiceUnavailable, "export not configured")
		return
	}

	started := time.Now()
	data, err := api.deps.Exporter.MatchSummaryXLSX(ws.sess)
	api.recordTask(metrics.TaskTypeExport, ws.row.ID, started, err)
	if err != nil {
		api.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ws.row.Name+"-matches.xlsx"))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// HandleCancel handles POST /api/workspaces/{id}/cancel requests.
// It cancels the workspace's current long-running pass; work committed
// before the cancellation point stays committed.
func (api *TriageAPI) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ws, ok := api.loadWorkspace(w, r)
	if !ok {
		return
	}

	cancelled := ws.cancelRun()
	api.writeJSON(w, http.StatusOK, map[string]interface{}{
		"cancelled": cancelled,
	})
}

// loadWorkspace resolves the {id} path segment to workspace state,
// rehydrating from the repository on first touch after a restart. It
// writes the error response itself when resolution fails.
func (api *TriageAPI) loadWorkspace(w http.ResponseWriter, r *http.Request) (*workspaceState, bool) {
	id := r.PathValue("id")
	if id == "" {
		api.writeError(w, http.StatusBadRequest, "missing workspace id")
		return nil, false
	}

	api.workspacesMu.Lock()
	ws, found := api.workspaces[id]
	api.workspacesMu.Unlock()
	if found {
		return ws, true
	}

	row, err := api.deps.Repo.GetWorkspace(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			api.writeError(w, http.StatusNotFound, "workspace not found")
		} else {
			api.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, false
	}

	ws = &workspaceState{row: row, sess: session.New()}
	api.rehydrate(r, ws)

	api.workspacesMu.Lock()
	// A concurrent request may have rehydrated first; keep the winner.
	if existing, raced := api.workspaces[id]; raced {
		ws = existing
	} else {
		api.workspaces[id] = ws
	}
	api.workspacesMu.Unlock()

	return ws, true
}

// rehydrate restores a workspace's document list and diagnoses from the
// repository. Page text is not persisted; documents need re-extraction
// before search works again.
func (api *TriageAPI) rehydrate(r *http.Request, ws *workspaceState) {
	docs, err := api.deps.Repo.ListDocuments(r.Context(), ws.row.ID)
	if err != nil {
		api.logger.Warn("workspace rehydrate: documents",
			zap.String("workspace_id", ws.row.ID),
			zap.Error(err))
		return
	}
	for _, d := range docs {
		ws.sess.AddDocument(d.Name, d.BlobKey, d.PageCount)
	}

	rows, err := api.deps.Repo.ListDiagnoses(r.Context(), ws.row.ID)
	if err != nil {
		api.logger.Warn("workspace rehydrate: diagnoses",
			zap.String("workspace_id", ws.row.ID),
			zap.Error(err))
		return
	}
	for _, row := range rows {
		key := session.Key{Document: row.DocIndex, Page: row.PageNumber}
		if err := ws.sess.ToggleSelection(key); err != nil {
			continue
		}
		if err := ws.sess.SetDiagnosis(key, row.Diagnosis); err != nil {
			api.logger.Warn("workspace rehydrate: diagnosis skipped",
				zap.String("workspace_id", ws.row.ID),
				zap.String("key", key.String()),
				zap.Error(err))
		}
	}
}

// peekWorkspace returns in-memory state for a workspace without
// rehydrating, or nil when none is loaded.
func (api *TriageAPI) peekWorkspace(id string) *workspaceState {
	api.workspacesMu.Lock()
	defer api.workspacesMu.Unlock()
	return api.workspaces[id]
}

// persistDiagnoses writes the session's current diagnoses through to the
// repository. Used after an AI pass, which sets diagnoses in bulk.
func (api *TriageAPI) persistDiagnoses(r *http.Request, ws *workspaceState, source string) {
	for key, text := range ws.sess.Diagnoses() {
		row := store.DiagnosisRow{
			WorkspaceID: ws.row.ID,
			DocIndex:    key.Document,
			PageNumber:  key.Page,
			Diagnosis:   text,
			Source:      source,
		}
		if err := api.deps.Repo.UpsertDiagnosis(r.Context(), row); err != nil {
			api.logger.Warn("diagnosis write failed",
				zap.String("key", key.String()),
				zap.Error(err))
		}
	}
}

// selectedPageContext concatenates selected pages' text for chat context.
// Pages appear in document and page order with a short header each.
func (api *TriageAPI) selectedPageContext(sess *session.Session) string {
	keys := sess.SelectedKeys()
	if len(keys) == 0 {
		return ""
	}

	texts := make(map[session.Key]string, len(keys))
	for _, record := range sess.PageTexts() {
		texts[session.Key{Document: record.DocumentIndex, Page: record.PageNumber}] = record.Text
	}

	names := make(map[int]string)
	for _, d := range sess.Documents() {
		names[d.Index] = d.Name
	}

	var out []byte
	for _, k := range keys {
		text := texts[k]
		if text == "" {
			continue
		}
		out = append(out, fmt.Sprintf("[%s page %d]\n%s\n\n", names[k.Document], k.Page, text)...)
	}
	return string(out)
}

// recordTask logs one completed task to the metrics collector.
func (api *TriageAPI) recordTask(taskType, workspaceID string, started time.Time, err error) {
	record := metrics.TaskRecord{
		ID:          assist.GenerateCorrelationID(),
		Type:        taskType,
		WorkspaceID: workspaceID,
		Status:      metrics.TaskStatusSuccess,
		StartTime:   started,
		EndTime:     time.Now(),
		Duration:    time.Since(started),
	}
	if err != nil {
		record.Status = metrics.TaskStatusError
		record.ErrorMsg = err.Error()
	}
	api.deps.Collector.RecordTask(record)
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func (api *TriageAPI) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Best effort - headers already written
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeError writes an error response.
func (api *TriageAPI) writeError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	}
	api.writeJSON(w, status, response)
}
