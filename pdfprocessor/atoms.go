// Package pdfprocessor provides per-page text extraction from PDF documents.
// This package resolves a document's page count, pulls each page's embedded
// text layer, and merges in OCR output when a page's text layer is thin.
package pdfprocessor

import "strings"

// EstimateTokenCount provides a rough estimate of tokens in a text.
// It uses an average of 4 characters per token as an approximation,
// which is a reasonable heuristic for English text with GPT-style tokenizers.
//
// This is a pure function with no dependencies.
//
// Example:
//
//	tokens := EstimateTokenCount("Hello, world!") // Returns 3
//	tokens := EstimateTokenCount("")              // Returns 0
func EstimateTokenCount(text string) int {
	if len(text) == 0 {
		return 0
	}
	return len(text) / 4
}

// NormalizePageText trims a page's extracted text and collapses runs of
// blank lines left behind by multi-column layouts. Inline spacing is kept
// as-is; fuzzy matching tokenizes on whitespace anyway.
//
// This is a pure function with no dependencies.
func NormalizePageText(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, strings.TrimRight(line, " \t\r"))
	}

	return strings.Join(out, "\n")
}

// CombinePageText concatenates a page's embedded text layer with its OCR
// output. Either part may be empty; the page text record is the combination,
// so keyword search sees both sources at once.
//
// This is a pure function with no dependencies.
func CombinePageText(textLayer, ocrText string) string {
	textLayer = strings.TrimSpace(textLayer)
	ocrText = strings.TrimSpace(ocrText)

	switch {
	case textLayer == "":
		return ocrText
	case ocrText == "":
		return textLayer
	default:
		return textLayer + "\n" + ocrText
	}
}

// NeedsOCR reports whether a page's text layer is thin enough that the page
// is probably scanned and worth rasterizing for OCR. Forty characters is
// below any normal page of prose but above stray artifacts like a lone page
// number.
func NeedsOCR(textLayer string) bool {
	return len(strings.TrimSpace(textLayer)) < 40
}
