// Package match provides the string matching atoms used by the search engine:
// edit-distance similarity scoring for fuzzy keyword matching, word-boundary
// regex counting for exact matching, and calendar date format expansion.
//
// Scanned medical documents arrive with OCR noise (dropped characters, l/1 and
// O/0 confusion), so exact substring search alone misses real occurrences.
// The fuzzy path tolerates small edit distances; the exact path is used for
// literal keyword lists and for expanded date strings.
package match

// LevenshteinDistance computes the edit distance between two strings using
// the standard dynamic-programming algorithm with unit costs for insertion,
// deletion, and substitution.
//
// This cost model is load-bearing: the fuzzy match threshold (see Similarity)
// was tuned against it, so a weighted or transposition-aware variant would
// shift which OCR errors are accepted.
//
// The comparison is rune-based, not byte-based, so multi-byte characters
// count as single edits.
//
// Example:
//
//	LevenshteinDistance("kitten", "sitting") // Returns 3
//	LevenshteinDistance("", "abc")           // Returns 3
func LevenshteinDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Two-row DP: prev holds distances for the previous row of the matrix.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			curr[j] = minInt(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// minInt returns the smallest of the given ints.
func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
