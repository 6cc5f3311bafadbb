// Package ocrprocessor recovers text from scanned document pages using the
// Google Cloud Vision API.
//
// processor.go implements the Processor organism that runs the OCR pass over
// one document. It composes:
//   - client.go: VisionClient for Google Vision API access
//   - pdfprocessor: NeedsOCR / CombinePageText page-text atoms
//   - session.Session: the single owner of page text records
//   - core.CancelToken: cooperative cancellation between pages
package ocrprocessor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meddoc_backend/core"
	"meddoc_backend/document"
	"meddoc_backend/logging"
	"meddoc_backend/pdfprocessor"
	"meddoc_backend/session"

	"go.uber.org/zap"
)

// ProcessorConfig holds configuration for the OCR processor.
type ProcessorConfig struct {
	// VisionClientConfig for the underlying Vision API client
	VisionClientConfig VisionClientConfig

	// MaxImageSize is the maximum rendered page size in bytes (0 = no limit)
	MaxImageSize int64

	// PageTimeout bounds each page's recognition call
	PageTimeout time.Duration
}

// DefaultProcessorConfig returns sensible default configuration.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		VisionClientConfig: DefaultVisionClientConfig(),
		MaxImageSize:       20 * 1024 * 1024, // 20MB, the Vision API limit
		PageTimeout:        45 * time.Second,
	}
}

// Common processor errors.
var (
	// ErrImageTooLarge indicates a rendered page exceeds MaxImageSize.
	ErrImageTooLarge = errors.New("ocrprocessor: image exceeds maximum size")

	// ErrProcessorNotConfigured indicates the processor is missing required config.
	ErrProcessorNotConfigured = errors.New("ocrprocessor: processor not properly configured")

	// ErrNilRenderer indicates no page renderer was provided.
	ErrNilRenderer = errors.New("ocrprocessor: page renderer cannot be nil")
)

// PageRenderer rasterizes one page of a stored document into an image the
// Vision API accepts. vision.PageImager is the production implementation;
// tests substitute a fixed-bitmap fake.
type PageRenderer interface {
	RenderPage(ctx context.Context, blobKey string, pageNumber int) ([]byte, error)
}

// TextRecognizer turns an image into text. *VisionClient is the production
// implementation.
type TextRecognizer interface {
	ExtractText(ctx context.Context, imageData []byte) (*OCRResult, error)
}

// Result summarizes one document's OCR pass.
type Result struct {
	// PagesScanned is how many pages were sent through OCR
	PagesScanned int

	// PagesRecognized is how many scanned pages yielded text
	PagesRecognized int

	// FailedPages counts per-page render or recognition failures
	FailedPages int

	// Cancelled is true if the pass stopped early at a cancellation check;
	// pages recognized before the stop are committed, not discarded
	Cancelled bool
}

// Processor runs the OCR pass for documents whose text layer came up thin.
//
// Thread-Safety:
//   - Processor is safe for concurrent use
//   - Each ProcessDocument call is independent
type Processor struct {
	config     ProcessorConfig
	recognizer TextRecognizer
	renderer   PageRenderer
	logger     *logging.Logger
}

// NewProcessor creates an OCR Processor reading page bitmaps from renderer
// and recognizing them with recognizer.
func NewProcessor(recognizer TextRecognizer, renderer PageRenderer, logger *logging.Logger, config ProcessorConfig) (*Processor, error) {
	if recognizer == nil {
		return nil, ErrProcessorNotConfigured
	}
	if renderer == nil {
		return nil, ErrNilRenderer
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &Processor{
		config:     config,
		recognizer: recognizer,
		renderer:   renderer,
		logger:     logger.Named("ocr-processor"),
	}, nil
}

// ProcessDocument walks doc's page records in ascending page order and runs
// OCR on every page whose embedded text layer is too thin to search. The
// recognized text is combined with the existing text layer and written back
// to the session, so keyword search sees both sources.
//
// The token is checked between pages; cancellation stops after the current
// page and keeps everything recognized so far. A page whose render or
// recognition fails keeps its original text and the pass continues.
func (p *Processor) ProcessDocument(ctx context.Context, sess *session.Session, doc document.Document, token *core.CancelToken) (*Result, error) {
	log := p.logger.With(logging.DocumentFields(doc.Index, doc.Name)...)

	pages := pagesForDocument(sess.PageTexts(), doc.Index)
	result := &Result{}

	candidates := 0
	for _, page := range pages {
		if pdfprocessor.NeedsOCR(page.Text) {
			candidates++
		}
	}
	if candidates == 0 {
		log.Debug("no pages need OCR")
		return result, nil
	}
	log.Info("starting OCR pass", zap.Int("pages_to_scan", candidates))

	for _, page := range pages {
		if !pdfprocessor.NeedsOCR(page.Text) {
			continue
		}

		select {
		case <-ctx.Done():
			result.Cancelled = true
			return result, ctx.Err()
		default:
		}
		if token.Cancelled() {
			log.Info("OCR pass cancelled", zap.Int("pages_scanned", result.PagesScanned))
			result.Cancelled = true
			return result, nil
		}

		result.PagesScanned++
		text, err := p.recognizePage(ctx, doc, page.PageNumber)
		if err != nil {
			if errors.Is(err, ErrNoTextFound) {
				// Genuinely blank page, keep the record as-is.
				continue
			}
			result.FailedPages++
			log.Warn("page OCR failed, keeping text layer",
				zap.Int("page_number", page.PageNumber),
				zap.Error(err))
			continue
		}

		combined := pdfprocessor.CombinePageText(page.Text, pdfprocessor.NormalizePageText(text))
		if err := sess.ReplacePageText(document.PageText{
			DocumentIndex: doc.Index,
			PageNumber:    page.PageNumber,
			Text:          combined,
		}); err != nil {
			result.FailedPages++
			log.Warn("failed to store OCR text", zap.Int("page_number", page.PageNumber), zap.Error(err))
			continue
		}
		result.PagesRecognized++
	}

	log.Info("OCR pass completed",
		zap.Int("pages_scanned", result.PagesScanned),
		zap.Int("pages_recognized", result.PagesRecognized),
		zap.Int("failed_pages", result.FailedPages))

	return result, nil
}

// recognizePage renders one page and runs it through the recognizer under
// the per-page timeout.
func (p *Processor) recognizePage(ctx context.Context, doc document.Document, pageNumber int) (string, error) {
	pageCtx := ctx
	if p.config.PageTimeout > 0 {
		var cancel context.CancelFunc
		pageCtx, cancel = context.WithTimeout(ctx, p.config.PageTimeout)
		defer cancel()
	}

	imageData, err := p.renderer.RenderPage(pageCtx, doc.BlobKey, pageNumber)
	if err != nil {
		return "", fmt.Errorf("ocrprocessor: render page %d: %w", pageNumber, err)
	}
	if p.config.MaxImageSize > 0 && int64(len(imageData)) > p.config.MaxImageSize {
		return "", fmt.Errorf("%w: %d bytes (max: %d)", ErrImageTooLarge, len(imageData), p.config.MaxImageSize)
	}

	ocrResult, err := p.recognizer.ExtractText(pageCtx, imageData)
	if err != nil {
		return "", err
	}
	return ocrResult.Text, nil
}

// pagesForDocument filters a page-text snapshot down to one document,
// preserving ascending page order.
func pagesForDocument(pages []document.PageText, index int) []document.PageText {
	out := make([]document.PageText, 0, len(pages))
	for _, page := range pages {
		if page.DocumentIndex == index {
			out = append(out, page)
		}
	}
	return out
}
