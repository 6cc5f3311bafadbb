// Package assembler turns the session's selected-page set into the ordered
// page-copy plan consumed by the external PDF and Word output sinks. The
// sinks copy pages; the plan decides which pages, from which stored
// documents, in which order.
package assembler

import (
	"errors"

	"meddoc_backend/session"
)

// ErrNothingSelected indicates no pages are selected to assemble.
var ErrNothingSelected = errors.New("assembler: no pages selected")

// PageEntry is one page of the plan, with its annotation if any.
type PageEntry struct {
	// PageNumber is the 1-indexed page within the source document
	PageNumber int `json:"page_number"`

	// Diagnosis is the page's annotation, empty if none
	Diagnosis string `json:"diagnosis,omitempty"`
}

// DocumentPlan is the ordered page set to copy from one source document.
type DocumentPlan struct {
	// DocumentIndex is the session index of the source document
	DocumentIndex int `json:"document_index"`

	// DocumentName is the source document's display name
	DocumentName string `json:"document_name"`

	// BlobKey locates the source document in blob storage
	BlobKey string `json:"blob_key"`

	// Pages in ascending page order
	Pages []PageEntry `json:"pages"`
}

// Plan is the complete page-copy plan for one assembly run.
type Plan struct {
	// Documents in ascending document-index order
	Documents []DocumentPlan `json:"documents"`

	// TotalPages across all documents
	TotalPages int `json:"total_pages"`
}

// BuildPlan groups the session's selected pages by document index ascending
// and page number ascending within a document. The ordering depends only on
// the selected set, never on the order pages were selected in.
func BuildPlan(sess *session.Session) (*Plan, error) {
	keys := sess.SelectedKeys()
	if len(keys) == 0 {
		return nil, ErrNothingSelected
	}

	docs := sess.Documents()
	plan := &Plan{}

	var current *DocumentPlan
	for _, key := range keys {
		if key.Document < 0 || key.Document >= len(docs) {
			// A selection key for a removed document indicates a reindex
			// bug upstream; skip rather than emit an unusable entry.
			continue
		}

		if current == nil || current.DocumentIndex != key.Document {
			doc := docs[key.Document]
			plan.Documents = append(plan.Documents, DocumentPlan{
				DocumentIndex: doc.Index,
				DocumentName:  doc.Name,
				BlobKey:       doc.BlobKey,
			})
			current = &plan.Documents[len(plan.Documents)-1]
		}

		entry := PageEntry{PageNumber: key.Page}
		if diagnosis, ok := sess.Diagnosis(key); ok {
			entry.Diagnosis = diagnosis
		}
		current.Pages = append(current.Pages, entry)
		plan.TotalPages++
	}

	if plan.TotalPages == 0 {
		return nil, ErrNothingSelected
	}
	return plan, nil
}
