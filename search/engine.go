// Package search implements the keyword and date search engine that scores
// every resolved page of every loaded document against a list of terms.
//
// The engine is a stateless pure computation over the documents and page
// texts supplied to each call: it owns no session state and produces
// identical output for identical input, which keeps repeated searches
// mergeable into the accumulating session selection.
package search

import (
	"regexp"

	"meddoc_backend/document"
	"meddoc_backend/logging"
	"meddoc_backend/match"

	"go.uber.org/zap"
)

// Mode selects how terms are matched against page text.
type Mode string

const (
	// ModeFuzzy tokenizes page text and accepts tokens whose edit-distance
	// similarity to the term clears the configured threshold. Used for
	// keyword search over OCR-noisy text.
	ModeFuzzy Mode = "fuzzy"

	// ModeExact counts case-insensitive word-boundary occurrences of the
	// literal term. Used for literal keyword lists.
	ModeExact Mode = "exact"

	// ModeDate expands each term into its calendar-format renderings and
	// counts each rendering as an exact literal.
	ModeDate Mode = "date"

	// ModeAI marks match records produced by an AI page scan rather than a
	// local search pass. The engine never emits these itself; the scanner
	// does, and they share the record shape so selection treats both alike.
	ModeAI Mode = "ai"
)

// MatchRecord is one (document, page, term) search result.
// Many records may exist for the same page, one per distinct matched term.
type MatchRecord struct {
	// DocumentIndex is the document's position in the loaded set.
	DocumentIndex int `json:"documentIndex"`

	// PageNumber is the 1-based page the term was found on.
	PageNumber int `json:"pageNumber"`

	// Term is the matched search term (for date search, the original input,
	// not the individual expanded rendering).
	Term string `json:"term"`

	// Occurrences is how many times the term matched on the page. For date
	// search it is the summed count across all expanded renderings.
	Occurrences int `json:"occurrences"`

	// DocumentName is the source file name, for display.
	DocumentName string `json:"documentName"`
}

// Config holds engine tuning knobs.
type Config struct {
	// FuzzyThreshold is the minimum similarity score for fuzzy mode.
	// Zero or negative falls back to match.DefaultFuzzyThreshold.
	FuzzyThreshold float64
}

// Engine runs search passes. Safe for concurrent use; it holds only
// immutable configuration.
type Engine struct {
	threshold float64
	logger    *logging.Logger
}

// NewEngine creates a search engine with the given config and logger.
func NewEngine(cfg Config, logger *logging.Logger) *Engine {
	threshold := cfg.FuzzyThreshold
	if threshold <= 0 {
		threshold = match.DefaultFuzzyThreshold
	}
	return &Engine{
		threshold: threshold,
		logger:    logger.Named("search"),
	}
}

// Search scores every page of every document against every term and returns
// one record per (document, page, term) with at least one occurrence.
//
// docs is the loaded document set; pages holds the resolved page text records
// (pages of a document that has not finished extraction are simply absent and
// therefore skipped). terms is the already-split term list; use ParseTerms
// for raw comma-separated user input.
//
// A document whose extraction failed contributes no page records; Search
// logs and continues so partial results are always returned.
func (e *Engine) Search(docs []document.Document, pages []document.PageText, terms []string, mode Mode) []MatchRecord {
	records := make([]MatchRecord, 0)
	if len(docs) == 0 || len(terms) == 0 {
		return records
	}

	names := make(map[int]string, len(docs))
	counts := make(map[int]int, len(docs))
	for _, d := range docs {
		names[d.Index] = d.Name
		counts[d.Index] = d.PageCount
	}

	matchers := e.buildMatchers(terms, mode)

	pagesByDoc := make(map[int][]document.PageText, len(docs))
	for _, p := range pages {
		if _, ok := names[p.DocumentIndex]; !ok {
			// Text record for a document no longer in the set; stale caller
			// snapshot. Skip rather than fabricate a match for a bad index.
			e.logger.Warn("skipping page text for unknown document",
				zap.Int("document_index", p.DocumentIndex),
				zap.Int("page_number", p.PageNumber))
			continue
		}
		pagesByDoc[p.DocumentIndex] = append(pagesByDoc[p.DocumentIndex], p)
	}

	for _, d := range docs {
		docPages := pagesByDoc[d.Index]
		if len(docPages) == 0 {
			e.logger.Warn("document has no extracted text, skipping",
				zap.Int("document_index", d.Index),
				zap.String("document", d.Name))
			continue
		}

		for _, page := range docPages {
			// Tokenize once per page; all fuzzy terms share the slice.
			var tokens []string
			if mode == ModeFuzzy {
				tokens = match.Tokenize(page.Text)
			}

			for _, m := range matchers {
				count := m.count(page.Text, tokens, e.threshold)
				if count == 0 {
					continue
				}
				records = append(records, MatchRecord{
					DocumentIndex: d.Index,
					PageNumber:    page.PageNumber,
					Term:          m.term,
					Occurrences:   count,
					DocumentName:  d.Name,
				})
			}
		}
	}

	e.logger.Info("search completed",
		zap.String("mode", string(mode)),
		zap.Int("documents", len(docs)),
		zap.Int("terms", len(terms)),
		zap.Int("matches", len(records)))

	return records
}

// termMatcher carries the per-term precompiled matching state so that the
// expensive parts (regex compilation, date expansion) happen once per search
// instead of once per page.
type termMatcher struct {
	term     string
	fuzzy    bool
	patterns []*regexp.Regexp
}

func (m *termMatcher) count(text string, tokens []string, threshold float64) int {
	if m.fuzzy {
		return match.CountFuzzyMatches(tokens, m.term, threshold)
	}
	total := 0
	for _, re := range m.patterns {
		total += len(re.FindAllStringIndex(text, -1))
	}
	return total
}

func (e *Engine) buildMatchers(terms []string, mode Mode) []*termMatcher {
	matchers := make([]*termMatcher, 0, len(terms))

	for _, term := range terms {
		m := &termMatcher{term: term}

		switch mode {
		case ModeFuzzy:
			m.fuzzy = true
		case ModeDate:
			for _, rendering := range match.ExpandDateFormats(term) {
				re, err := match.CompileExactPattern(rendering)
				if err != nil {
					continue
				}
				m.patterns = append(m.patterns, re)
			}
		default: // ModeExact and anything unrecognized
			re, err := match.CompileExactPattern(term)
			if err != nil {
				e.logger.Warn("skipping unmatchable term", zap.String("term", term), zap.Error(err))
				continue
			}
			m.patterns = append(m.patterns, re)
		}

		matchers = append(matchers, m)
	}

	return matchers
}
