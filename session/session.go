package session

import (
	"fmt"
	"sort"
	"sync"

	"meddoc_backend/document"
	"meddoc_backend/search"
)

// Session is the single owner of one triage session's derived state.
//
// Thread-Safety:
//   - All methods are safe for concurrent use.
//   - Mutations are read-modify-write under one mutex, so merges from
//     near-simultaneous background completions cannot lose updates.
type Session struct {
	mu sync.Mutex

	docs      []document.Document
	pageTexts map[Key]string
	matches   []search.MatchRecord
	selected  map[Key]Provenance
	diagnoses map[Key]string
	terms     []string
}

// New creates an empty session.
func New() *Session {
	return &Session{
		pageTexts: make(map[Key]string),
		selected:  make(map[Key]Provenance),
		diagnoses: make(map[Key]string),
	}
}

// AddDocument appends a document to the set and returns its assigned index.
// Indices follow insertion order and stay stable until an earlier document
// is removed.
func (s *Session) AddDocument(name, blobKey string, pageCount int) document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := document.Document{
		Index:     len(s.docs),
		Name:      name,
		BlobKey:   blobKey,
		PageCount: pageCount,
	}
	s.docs = append(s.docs, doc)
	return doc
}

// SetPageCount resolves a document's page count once parsing finishes.
// The count is immutable after resolution; a second call with a different
// value is rejected.
func (s *Session) SetPageCount(index, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.docs) {
		return fmt.Errorf("session: document index %d out of range", index)
	}
	if resolved := s.docs[index].PageCount; resolved > 0 && resolved != count {
		return fmt.Errorf("session: page count for document %d already resolved to %d", index, resolved)
	}
	s.docs[index].PageCount = count
	return nil
}

// Documents returns a snapshot copy of the loaded document set.
func (s *Session) Documents() []document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]document.Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// DocumentCount returns the number of loaded documents.
func (s *Session) DocumentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// MergePageTexts merges newly extracted page text records into the session.
// Existing records win: a record for an already-resolved (document, page)
// pair is ignored, preserving the at-most-one-record invariant. Records
// referencing documents not in the set are dropped.
//
// Concurrent completions from different documents interleave safely because
// the merge is expressed as "add these new items," never "replace the map."
func (s *Session) MergePageTexts(records []document.PageText) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := 0
	for _, r := range records {
		if r.DocumentIndex < 0 || r.DocumentIndex >= len(s.docs) {
			continue
		}
		k := Key{Document: r.DocumentIndex, Page: r.PageNumber}
		if _, exists := s.pageTexts[k]; exists {
			continue
		}
		s.pageTexts[k] = r.Text
		merged++
	}
	return merged
}

// ReplacePageText overwrites the text record for one page. Used when OCR is
// re-triggered manually for a document: the re-scan creates a replacement
// record rather than appending to the old one.
func (s *Session) ReplacePageText(r document.PageText) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.DocumentIndex < 0 || r.DocumentIndex >= len(s.docs) {
		return fmt.Errorf("session: document index %d out of range", r.DocumentIndex)
	}
	s.pageTexts[Key{Document: r.DocumentIndex, Page: r.PageNumber}] = r.Text
	return nil
}

// PageTexts returns a snapshot of all resolved page text records, ordered by
// document index then page number.
func (s *Session) PageTexts() []document.PageText {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageTextsLocked()
}

func (s *Session) pageTextsLocked() []document.PageText {
	out := make([]document.PageText, 0, len(s.pageTexts))
	for k, text := range s.pageTexts {
		out = append(out, document.PageText{
			DocumentIndex: k.Document,
			PageNumber:    k.Page,
			Text:          text,
		})
	}
	document.SortPageTexts(out)
	return out
}

// AddMatches appends a batch of match records and unions their keys into the
// selected set. Prior selections and prior match records are retained, so
// results from keyword search and AI-assisted search coexist within one
// session. Records for unknown documents are dropped.
//
// An already-selected page keeps its original provenance.
func (s *Session) AddMatches(records []search.MatchRecord, prov Provenance) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if r.DocumentIndex < 0 || r.DocumentIndex >= len(s.docs) {
			continue
		}
		s.matches = append(s.matches, r)

		k := Key{Document: r.DocumentIndex, Page: r.PageNumber}
		if _, already := s.selected[k]; !already {
			s.selected[k] = prov
		}
	}
}

// Matches returns a snapshot copy of the accumulated match records in the
// order they were added.
func (s *Session) Matches() []search.MatchRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]search.MatchRecord, len(s.matches))
	copy(out, s.matches)
	return out
}

// ToggleSelection flips membership of exactly one page in the selected set.
// Toggling on records user provenance; the page does not need a match record
// (the viewer's "+ Add Page" action selects arbitrary pages).
func (s *Session) ToggleSelection(k Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if k.Document < 0 || k.Document >= len(s.docs) {
		return fmt.Errorf("session: document index %d out of range", k.Document)
	}
	if k.Page < 1 || (s.docs[k.Document].PageCount > 0 && k.Page > s.docs[k.Document].PageCount) {
		return fmt.Errorf("session: page %d out of range for document %d", k.Page, k.Document)
	}

	if _, ok := s.selected[k]; ok {
		delete(s.selected, k)
	} else {
		s.selected[k] = ProvenanceUser
	}
	return nil
}

// SelectAll sets the selected set to the union of all keys known from match
// records. User-toggled pages already selected are retained.
func (s *Session) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.matches {
		k := Key{Document: r.DocumentIndex, Page: r.PageNumber}
		if _, ok := s.selected[k]; !ok {
			s.selected[k] = ProvenanceSearch
		}
	}
}

// DeselectAll empties the selected set. Match records are retained for
// display. Idempotent.
func (s *Session) DeselectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[Key]Provenance)
}

// IsSelected reports whether the page is in the selected set.
func (s *Session) IsSelected(k Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selected[k]
	return ok
}

// SelectedKeys returns the selected set sorted by document index then page
// number, the order output assembly requires.
func (s *Session) SelectedKeys() []Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Key, 0, len(s.selected))
	for k := range s.selected {
		out = append(out, k)
	}
	sortKeys(out)
	return out
}

// SelectedCount returns the size of the selected set.
func (s *Session) SelectedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selected)
}

// Provenance returns how the page entered the selected set, if selected.
func (s *Session) Provenance(k Key) (Provenance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.selected[k]
	return p, ok
}

// SetDiagnosis records a diagnosis annotation for a page. The annotation's
// lifecycle is independent of the selected set: a page can carry a diagnosis
// without being selected, and vice versa. An empty text clears the entry.
func (s *Session) SetDiagnosis(k Key, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if k.Document < 0 || k.Document >= len(s.docs) {
		return fmt.Errorf("session: document index %d out of range", k.Document)
	}
	if text == "" {
		delete(s.diagnoses, k)
		return nil
	}
	s.diagnoses[k] = text
	return nil
}

// Diagnosis returns the diagnosis annotation for a page, if any.
func (s *Session) Diagnosis(k Key) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.diagnoses[k]
	return text, ok
}

// Diagnoses returns a snapshot copy of all diagnosis annotations.
func (s *Session) Diagnoses() map[Key]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[Key]string, len(s.diagnoses))
	for k, v := range s.diagnoses {
		out[k] = v
	}
	return out
}

// AddSearchTerms appends newly searched terms to the session's accumulated
// term list, skipping exact duplicates.
func (s *Session) AddSearchTerms(terms []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.terms))
	for _, t := range s.terms {
		seen[t] = struct{}{}
	}
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		s.terms = append(s.terms, t)
	}
}

// SearchTerms returns a snapshot copy of the accumulated search terms.
func (s *Session) SearchTerms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.terms))
	copy(out, s.terms)
	return out
}

// RemoveDocument removes the document at index and reindexes all derived
// state in one step under the lock: keys for the removed document are
// purged from the selected set, match records, page texts, and diagnoses,
// and every key with a greater document index shifts down by one. No
// observer can see a key referencing a stale index mid-removal.
//
// Removing the last document resets all derived state, including the
// accumulated search terms.
func (s *Session) RemoveDocument(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.docs) {
		return fmt.Errorf("session: document index %d out of range", index)
	}

	s.docs = append(s.docs[:index], s.docs[index+1:]...)
	for i := range s.docs {
		s.docs[i].Index = i
	}

	if len(s.docs) == 0 {
		s.resetDerivedLocked()
		return nil
	}

	s.pageTexts = shiftKeys(s.pageTexts, index)
	s.selected = shiftKeys(s.selected, index)
	s.diagnoses = shiftKeys(s.diagnoses, index)

	kept := s.matches[:0]
	for _, r := range s.matches {
		switch {
		case r.DocumentIndex == index:
			continue
		case r.DocumentIndex > index:
			r.DocumentIndex--
		}
		kept = append(kept, r)
	}
	s.matches = kept

	return nil
}

// Clear removes all documents and resets every piece of derived state.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs = nil
	s.resetDerivedLocked()
}

func (s *Session) resetDerivedLocked() {
	s.pageTexts = make(map[Key]string)
	s.selected = make(map[Key]Provenance)
	s.diagnoses = make(map[Key]string)
	s.matches = nil
	s.terms = nil
}

// shiftKeys rebuilds a page-keyed map after removing document `removed`:
// entries for the removed document are dropped and higher indices shift down.
func shiftKeys[V any](m map[Key]V, removed int) map[Key]V {
	out := make(map[Key]V, len(m))
	for k, v := range m {
		switch {
		case k.Document == removed:
			continue
		case k.Document > removed:
			k.Document--
		}
		out[k] = v
	}
	return out
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Document != keys[j].Document {
			return keys[i].Document < keys[j].Document
		}
		return keys[i].Page < keys[j].Page
	})
}
