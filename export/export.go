// Package export produces the XLSX match-summary workbook: one row per
// match record, with selection state and diagnosis annotations, for review
// outside the app.
package export

import (
	"fmt"
	"time"

	"meddoc_backend/logging"
	"meddoc_backend/session"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Exporter is a tiny façade over the session that produces XLSX bytes.
type Exporter struct {
	logger *logging.Logger
}

// NewExporter creates an Exporter.
func NewExporter(logger *logging.Logger) *Exporter {
	return &Exporter{logger: logger.Named("export")}
}

// MatchSummaryXLSX returns an XLSX workbook (as bytes) summarizing the
// session's accumulated match records: one row per record with the page's
// selection state and diagnosis annotation.
func (e *Exporter) MatchSummaryXLSX(sess *session.Session) ([]byte, error) {
	start := time.Now()

	matches := sess.Matches()

	f := excelize.NewFile()
	const sheet = "Matches"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// Drop the default sheet so the workbook opens on the match list
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Document",
		"Page",
		"Term",
		"Occurrences",
		"Selected",
		"Diagnosis",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, m := range matches {
		key := session.Key{Document: m.DocumentIndex, Page: m.PageNumber}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, m.DocumentName)
		write(2, m.PageNumber)
		write(3, m.Term)
		write(4, m.Occurrences)
		if sess.IsSelected(key) {
			write(5, "yes")
		} else {
			write(5, "no")
		}
		if diagnosis, ok := sess.Diagnosis(key); ok {
			write(6, truncate(diagnosis, 140))
		} else {
			write(6, "")
		}

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 36) // document name
	_ = f.SetColWidth(sheet, "B", "B", 8)  // page
	_ = f.SetColWidth(sheet, "C", "C", 24) // term
	_ = f.SetColWidth(sheet, "D", "E", 12) // count / selected
	_ = f.SetColWidth(sheet, "F", "F", 48) // diagnosis

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	e.logger.Info("match summary exported",
		zap.Int("rows", len(matches)),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
