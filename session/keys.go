// Package session owns the in-memory triage state for one working session:
// the loaded document set, extracted page text records, accumulated match
// records, the selected-page set, and per-page diagnosis annotations.
//
// All mutation goes through a single Session value guarded by a mutex, so
// concurrently finishing background work (two documents completing OCR at
// the same time, a search racing an AI scan) merges into shared state as
// "add these items" operations rather than replacing snapshots. That is the
// core invariant of the selection model: accumulate, never clobber.
package session

import (
	"fmt"
	"strconv"
	"strings"
)

// Key identifies one page across the whole loaded document set.
// Its string form is "{documentIndex}-{pageNumber}", the composite key used
// by persistence and by the HTTP API.
type Key struct {
	Document int
	Page     int
}

// String renders the composite key form.
func (k Key) String() string {
	return fmt.Sprintf("%d-%d", k.Document, k.Page)
}

// ParseKey parses a composite "{documentIndex}-{pageNumber}" key.
func ParseKey(s string) (Key, error) {
	dash := strings.IndexByte(s, '-')
	if dash <= 0 || dash == len(s)-1 {
		return Key{}, fmt.Errorf("session: malformed key %q", s)
	}

	doc, err := strconv.Atoi(s[:dash])
	if err != nil {
		return Key{}, fmt.Errorf("session: malformed document index in key %q", s)
	}
	page, err := strconv.Atoi(s[dash+1:])
	if err != nil {
		return Key{}, fmt.Errorf("session: malformed page number in key %q", s)
	}
	if doc < 0 || page < 1 {
		return Key{}, fmt.Errorf("session: key %q out of range", s)
	}

	return Key{Document: doc, Page: page}, nil
}

// Provenance records how a page entered the selected set. Functionally all
// selected pages form a single set; provenance exists for display only.
type Provenance string

const (
	// ProvenanceSearch marks pages selected by a local keyword/date search.
	ProvenanceSearch Provenance = "search"

	// ProvenanceAI marks pages selected by an AI scan suggestion.
	ProvenanceAI Provenance = "ai"

	// ProvenanceUser marks pages the user toggled on explicitly.
	ProvenanceUser Provenance = "user"
)
