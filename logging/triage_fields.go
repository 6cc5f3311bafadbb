package logging

import "go.uber.org/zap"

// Standard field constructors for triage operations. Using these atoms keeps
// field names consistent across packages so log queries can join extraction,
// search, and scan events for the same document and page.

// DocumentFields returns the fields identifying one loaded document.
func DocumentFields(index int, name string) []zap.Field {
	return []zap.Field{
		zap.Int("document_index", index),
		zap.String("document", name),
	}
}

// PageFields returns the fields identifying one page of a document.
func PageFields(index int, name string, page int) []zap.Field {
	return append(DocumentFields(index, name), zap.Int("page_number", page))
}

// ScanOutcomeFields summarizes a completed multi-page AI scan.
func ScanOutcomeFields(pagesScanned, matches, failures int, cancelled bool) []zap.Field {
	return []zap.Field{
		zap.Int("pages_scanned", pagesScanned),
		zap.Int("matches", matches),
		zap.Int("failures", failures),
		zap.Bool("cancelled", cancelled),
	}
}
