// Package pdfprocessor provides per-page text extraction from PDF documents.
//
// extractor.go implements the Extractor molecule that pulls the embedded
// text layer out of a PDF page by page. It uses the ledongthuc/pdf library
// for PDF parsing and composes:
//   - atoms.go: NormalizePageText for whitespace cleanup
package pdfprocessor

import (
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// ErrEmptyPath is returned when an empty file path is provided.
var ErrEmptyPath = errors.New("pdfprocessor: empty PDF path provided")

// PageResult is the extracted text layer of a single page.
type PageResult struct {
	// PageNumber is the 1-indexed page number
	PageNumber int

	// Text is the normalized text-layer content; empty for scanned pages
	Text string

	// Err is non-nil if extraction failed for this page. A per-page failure
	// never aborts the document; the page simply has no text-layer content.
	Err error
}

// DocumentText is the complete per-page extraction result for one document.
type DocumentText struct {
	// PageCount is the number of pages in the PDF, resolved at parse time
	PageCount int

	// Pages holds one result per page, in ascending page order
	Pages []PageResult

	// ExtractedPages counts pages that yielded non-empty text
	ExtractedPages int

	// FailedPages counts pages whose extraction errored
	FailedPages int
}

// ExtractorConfig holds configuration for PDF text extraction.
type ExtractorConfig struct {
	// MaxPages limits extraction to the first N pages (0 for all pages)
	MaxPages int
}

// Extractor extracts per-page text from PDF files.
type Extractor struct {
	config ExtractorConfig
}

// NewExtractor creates a new Extractor with the given configuration.
func NewExtractor(config ExtractorConfig) *Extractor {
	return &Extractor{config: config}
}

// NewDefaultExtractor creates an Extractor that reads every page.
func NewDefaultExtractor() *Extractor {
	return NewExtractor(ExtractorConfig{})
}

// Extract parses the PDF at path and extracts each page's text layer.
//
// A document that cannot be opened or parsed returns an error (the caller
// skips the document and continues with the rest of the set). Individual
// page failures are recorded in the page's Err and never abort the document.
//
// Example:
//
//	extractor := NewDefaultExtractor()
//	doc, err := extractor.Extract("/path/to/chart.pdf")
//	if err != nil {
//	    return err // unreadable document
//	}
//	for _, page := range doc.Pages {
//	    fmt.Println(page.PageNumber, page.Text)
//	}
func (e *Extractor) Extract(pdfPath string) (*DocumentText, error) {
	if pdfPath == "" {
		return nil, ErrEmptyPath
	}

	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("pdfprocessor: failed to open PDF: %w", err)
	}
	defer f.Close()

	return e.extractFromReader(r), nil
}

// ExtractFromReader extracts from an already-open PDF reader. Useful when
// the document bytes came from the storage collaborator rather than a file.
func (e *Extractor) ExtractFromReader(r *pdf.Reader) (*DocumentText, error) {
	if r == nil {
		return nil, errors.New("pdfprocessor: nil PDF reader provided")
	}
	return e.extractFromReader(r), nil
}

func (e *Extractor) extractFromReader(r *pdf.Reader) *DocumentText {
	totalPages := r.NumPage()

	result := &DocumentText{
		PageCount: totalPages,
		Pages:     make([]PageResult, 0, totalPages),
	}

	pagesToProcess := totalPages
	if e.config.MaxPages > 0 && e.config.MaxPages < totalPages {
		pagesToProcess = e.config.MaxPages
	}

	// Pages are 1-indexed in ledongthuc/pdf, processed in ascending order
	// so progress reporting stays meaningful.
	for pageIndex := 1; pageIndex <= pagesToProcess; pageIndex++ {
		pageResult := e.extractPage(r, pageIndex)
		result.Pages = append(result.Pages, pageResult)

		if pageResult.Err != nil {
			result.FailedPages++
			continue
		}
		if pageResult.Text != "" {
			result.ExtractedPages++
		}
	}

	return result
}

// extractPage extracts the text layer from a single page.
func (e *Extractor) extractPage(r *pdf.Reader, pageIndex int) PageResult {
	result := PageResult{PageNumber: pageIndex}

	p := r.Page(pageIndex)
	if p.V.IsNull() {
		// Empty page, not an error
		return result
	}

	text, err := p.GetPlainText(nil)
	if err != nil {
		result.Err = fmt.Errorf("pdfprocessor: page %d: failed to extract text: %w", pageIndex, err)
		return result
	}

	result.Text = NormalizePageText(text)
	return result
}
