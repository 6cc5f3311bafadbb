package search

import "strings"

// ParseTerms splits raw user input ("diabetes, insulin , ,a1c") on commas,
// trims whitespace, and drops empties. Order is preserved and duplicates are
// kept; the engine emits one record per term so a repeated term simply
// repeats its records.
//
// This is a pure function with no external dependencies.
func ParseTerms(raw string) []string {
	parts := strings.Split(raw, ",")
	terms := make([]string, 0, len(parts))

	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		terms = append(terms, trimmed)
	}

	return terms
}
