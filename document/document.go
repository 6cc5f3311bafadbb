// Package document defines the shared types for loaded documents and their
// extracted per-page text. A Document is an opaque handle to one loaded PDF;
// its index within the session's document set is assigned at load time in
// insertion order and only changes when an earlier document is removed.
package document

import "sort"

// Document is the handle for one loaded PDF.
type Document struct {
	// Index is the document's stable position in the current document set.
	Index int

	// Name is the original file name, carried into match records for display.
	Name string

	// PageCount is resolved once when the file is parsed and is immutable
	// afterwards. Zero means the count has not been resolved yet.
	PageCount int

	// BlobKey is the storage collaborator's identifier for the raw bytes.
	BlobKey string
}

// PageText is one extracted text record: the concatenation of a page's
// embedded text layer and, if OCR ran, its OCR output. PageNumber is 1-based.
// At most one record exists per (DocumentIndex, PageNumber) pair; a re-scan
// produces a replacement record rather than mutating an existing one.
type PageText struct {
	DocumentIndex int
	PageNumber    int
	Text          string
}

// SortPageTexts orders records by document index, then ascending page number.
// Extraction and OCR emit pages in order already; this restores the invariant
// after records from concurrently finishing documents are merged.
func SortPageTexts(records []PageText) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].DocumentIndex != records[j].DocumentIndex {
			return records[i].DocumentIndex < records[j].DocumentIndex
		}
		return records[i].PageNumber < records[j].PageNumber
	})
}
