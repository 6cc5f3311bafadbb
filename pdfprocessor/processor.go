// Package pdfprocessor provides per-page text extraction from PDF documents.
//
// processor.go implements the Processor organism that runs extraction for a
// loaded document in the background and merges results into the owning
// session. It composes:
//   - extractor.go: Extractor for per-page text-layer extraction
//   - session.Session: the single owner of page text records
//   - core.CancelToken: cooperative cancellation between pages
package pdfprocessor

import (
	"context"
	"fmt"

	"meddoc_backend/core"
	"meddoc_backend/document"
	"meddoc_backend/logging"
	"meddoc_backend/session"

	"go.uber.org/zap"
)

// Progress reports per-page extraction progress for one document.
type Progress struct {
	DocumentIndex int
	PageNumber    int
	TotalPages    int
}

// ProgressCallback receives a Progress after each completed page.
type ProgressCallback func(Progress)

// PageSource yields a document's per-page text. *Extractor is the
// production implementation; tests substitute a fixed-page fake.
type PageSource interface {
	Extract(path string) (*DocumentText, error)
}

// Processor extracts a document's pages and merges the records into the
// session. Each Processor call handles one document; documents have no
// cross-document dependency, so callers may run one Processor call per
// document concurrently.
type Processor struct {
	source PageSource
	logger *logging.Logger
}

// NewProcessor creates a Processor reading pages from the given source.
func NewProcessor(source PageSource, logger *logging.Logger) *Processor {
	return &Processor{
		source: source,
		logger: logger.Named("pdf-processor"),
	}
}

// Result summarizes one document's extraction run.
type Result struct {
	// PageCount is the resolved page count
	PageCount int

	// PagesMerged is how many page records were merged into the session
	PagesMerged int

	// FailedPages counts per-page extraction failures (text recorded empty)
	FailedPages int

	// Cancelled is true if the run stopped early at a cancellation check;
	// pages completed before the stop are committed, not discarded
	Cancelled bool
}

// ProcessDocument extracts doc's pages from the PDF at path in ascending
// page order, resolving the session's page count for the document and
// merging each page's text record as it completes so search can run over
// partially extracted documents.
//
// The token is checked between pages; cancellation stops after the current
// page and commits everything collected so far. A page whose extraction
// fails is merged with empty text and the run continues — one bad page
// never aborts the document.
func (p *Processor) ProcessDocument(ctx context.Context, sess *session.Session, doc document.Document, path string, token *core.CancelToken, onProgress ProgressCallback) (*Result, error) {
	log := p.logger.With(logging.DocumentFields(doc.Index, doc.Name)...)

	extracted, err := p.source.Extract(path)
	if err != nil {
		// Unreadable document: surface to the caller, which skips this
		// document and continues with the rest of the set.
		return nil, fmt.Errorf("pdfprocessor: document %q: %w", doc.Name, err)
	}

	if err := sess.SetPageCount(doc.Index, extracted.PageCount); err != nil {
		return nil, err
	}

	result := &Result{PageCount: extracted.PageCount}
	log.Info("starting text extraction", zap.Int("pages", extracted.PageCount))

	for _, page := range extracted.Pages {
		select {
		case <-ctx.Done():
			result.Cancelled = true
			return result, ctx.Err()
		default:
		}
		if token.Cancelled() {
			log.Info("extraction cancelled", zap.Int("pages_merged", result.PagesMerged))
			result.Cancelled = true
			return result, nil
		}

		if page.Err != nil {
			result.FailedPages++
			log.Warn("page extraction failed, continuing with empty text",
				zap.Int("page_number", page.PageNumber),
				zap.Error(page.Err))
		}

		merged := sess.MergePageTexts([]document.PageText{{
			DocumentIndex: doc.Index,
			PageNumber:    page.PageNumber,
			Text:          page.Text,
		}})
		result.PagesMerged += merged

		if onProgress != nil {
			onProgress(Progress{
				DocumentIndex: doc.Index,
				PageNumber:    page.PageNumber,
				TotalPages:    extracted.PageCount,
			})
		}
	}

	log.Info("text extraction completed",
		zap.Int("pages_merged", result.PagesMerged),
		zap.Int("failed_pages", result.FailedPages))

	return result, nil
}
