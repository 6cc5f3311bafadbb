// Package webui provides the web-based user interface for the document triage backend.
// This file contains WebSocket message types and constants.
package webui

import (
	"encoding/json"
	"time"
)

// Message type constants for WebSocket communication.
// These define the types of real-time updates sent to connected clients.
const (
	// MessageTypeTaskUpdate indicates a task status change (started, completed, error).
	MessageTypeTaskUpdate = "task_update"

	// MessageTypeDocumentProgress indicates per-page extraction or OCR progress.
	MessageTypeDocumentProgress = "document_progress"

	// MessageTypeMatchUpdate indicates new match records were recorded for a workspace.
	MessageTypeMatchUpdate = "match_update"

	// MessageTypeScanProgress indicates AI auto-scan progress for a workspace.
	MessageTypeScanProgress = "scan_progress"

	// MessageTypeDiagnosisUpdate indicates a page diagnosis was added or changed.
	MessageTypeDiagnosisUpdate = "diagnosis_update"

	// MessageTypeSystemStatus indicates overall system health status change.
	MessageTypeSystemStatus = "system_status"

	// MessageTypeError indicates a server-side error message.
	MessageTypeError = "error"

	// MessageTypePing is a keep-alive message from the server.
	MessageTypePing = "ping"

	// MessageTypePong is a keep-alive response from the client.
	MessageTypePong = "pong"

	// MessageTypeInitial contains the initial state snapshot on connection.
	MessageTypeInitial = "initial"
)

// WSMessage is the base structure for all WebSocket messages.
// It uses a common envelope format with type-specific data in the Data field.
//
// This is a pure data structure atom with no behavior beyond JSON marshaling.
type WSMessage struct {
	// Type identifies the message kind (use MessageType* constants)
	Type string `json:"type"`

	// Timestamp is when the message was created
	Timestamp time.Time `json:"timestamp"`

	// Data contains the type-specific payload (decoded based on Type)
	Data interface{} `json:"data,omitempty"`
}

// NewWSMessage creates a new WebSocket message with the current timestamp.
//
// Parameters:
//   - msgType: The message type (use MessageType* constants)
//   - data: The type-specific payload
//
// Returns:
//   - WSMessage: Ready-to-send message
func NewWSMessage(msgType string, data interface{}) WSMessage {
	return WSMessage{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// MarshalJSON serializes the message to JSON bytes.
// This is a convenience method for sending messages over WebSocket.
func (m WSMessage) MarshalJSON() ([]byte, error) {
	type Alias WSMessage
	return json.Marshal(Alias(m))
}

// TaskUpdateData contains details for a task status update.
type TaskUpdateData struct {
	// TaskID is the unique identifier for the task
	TaskID string `json:"task_id"`

	// TaskType identifies the kind of task (extract, ocr, search, scan, etc.)
	TaskType string `json:"task_type"`

	// Status is the current state (processing, success, error)
	Status string `json:"status"`

	// WorkspaceID identifies which workspace this task belongs to
	WorkspaceID string `json:"workspace_id,omitempty"`

	// Duration is how long the task took (only set on completion)
	Duration time.Duration `json:"duration,omitempty"`

	// Error contains error details if Status is "error"
	Error string `json:"error,omitempty"`
}

// DocumentProgressData reports per-page progress while a document is
// being extracted or OCR'd.
type DocumentProgressData struct {
	// WorkspaceID identifies the owning workspace
	WorkspaceID string `json:"workspace_id"`

	// DocIndex is the zero-based document index within the workspace
	DocIndex int `json:"doc_index"`

	// FileName is the document's display name
	FileName string `json:"file_name"`

	// PagesDone is the number of pages processed so far
	PagesDone int `json:"pages_done"`

	// PagesTotal is the total page count (0 if not yet known)
	PagesTotal int `json:"pages_total"`

	// Stage describes the current phase: "extract" or "ocr"
	Stage string `json:"stage"`
}

// MatchUpdateData reports match records appended by a search pass.
type MatchUpdateData struct {
	// WorkspaceID identifies the owning workspace
	WorkspaceID string `json:"workspace_id"`

	// Term is the search term that produced the matches
	Term string `json:"term"`

	// NewMatches is the number of match records added by this pass
	NewMatches int `json:"new_matches"`

	// TotalMatches is the workspace's cumulative match record count
	TotalMatches int `json:"total_matches"`
}

// ScanProgressData reports AI auto-scan progress.
type ScanProgressData struct {
	// WorkspaceID identifies the owning workspace
	WorkspaceID string `json:"workspace_id"`

	// PagesScanned is the number of pages the scanner has classified
	PagesScanned int `json:"pages_scanned"`

	// PagesTotal is the number of pages queued for the scan
	PagesTotal int `json:"pages_total"`

	// PagesFlagged is the number of pages the scanner marked relevant
	PagesFlagged int `json:"pages_flagged"`

	// Done indicates the scan has finished
	Done bool `json:"done"`
}

// DiagnosisUpdateData reports a page diagnosis change.
type DiagnosisUpdateData struct {
	// WorkspaceID identifies the owning workspace
	WorkspaceID string `json:"workspace_id"`

	// DocIndex is the zero-based document index within the workspace
	DocIndex int `json:"doc_index"`

	// PageNumber is the 1-based page number the diagnosis applies to
	PageNumber int `json:"page_number"`

	// Summary is a short excerpt of the diagnosis text
	Summary string `json:"summary,omitempty"`
}

// SystemStatusData contains overall system health information.
type SystemStatusData struct {
	// Status indicates system state: "running", "degraded", "error", "stopped"
	Status string `json:"status"`

	// Uptime is how long the system has been running
	Uptime time.Duration `json:"uptime"`

	// ActiveTasks is the count of currently processing tasks
	ActiveTasks int `json:"active_tasks"`

	// TotalProcessed is the total count of tasks processed since start
	TotalProcessed int64 `json:"total_processed"`

	// ErrorRate is the percentage of failed tasks (0-100)
	ErrorRate float64 `json:"error_rate"`

	// Version is the application version string
	Version string `json:"version,omitempty"`
}

// ErrorData contains error information sent to clients.
type ErrorData struct {
	// Code is an application-specific error code
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`
}

// InitialData contains the complete state snapshot sent on connection.
type InitialData struct {
	// System contains current system status
	System SystemStatusData `json:"system"`

	// RecentTasks contains the last N task records
	RecentTasks []TaskUpdateData `json:"recent_tasks"`
}

// Helper functions for creating common messages

// NewTaskUpdateMessage creates a task update message.
func NewTaskUpdateMessage(data TaskUpdateData) WSMessage {
	return NewWSMessage(MessageTypeTaskUpdate, data)
}

// NewDocumentProgressMessage creates a document progress message.
func NewDocumentProgressMessage(data DocumentProgressData) WSMessage {
	return NewWSMessage(MessageTypeDocumentProgress, data)
}

// NewMatchUpdateMessage creates a match update message.
func NewMatchUpdateMessage(data MatchUpdateData) WSMessage {
	return NewWSMessage(MessageTypeMatchUpdate, data)
}

// NewScanProgressMessage creates an auto-scan progress message.
func NewScanProgressMessage(data ScanProgressData) WSMessage {
	return NewWSMessage(MessageTypeScanProgress, data)
}

// NewDiagnosisUpdateMessage creates a diagnosis update message.
func NewDiagnosisUpdateMessage(data DiagnosisUpdateData) WSMessage {
	return NewWSMessage(MessageTypeDiagnosisUpdate, data)
}

// NewSystemStatusMessage creates a system status message.
func NewSystemStatusMessage(data SystemStatusData) WSMessage {
	return NewWSMessage(MessageTypeSystemStatus, data)
}

// NewErrorMessage creates an error message.
func NewErrorMessage(code, message string) WSMessage {
	return NewWSMessage(MessageTypeError, ErrorData{Code: code, Message: message})
}

// NewPingMessage creates a ping keep-alive message.
func NewPingMessage() WSMessage {
	return NewWSMessage(MessageTypePing, nil)
}

// NewInitialMessage creates the initial state snapshot message.
func NewInitialMessage(data InitialData) WSMessage {
	return NewWSMessage(MessageTypeInitial, data)
}
