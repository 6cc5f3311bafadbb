package match

import "strings"

// DefaultFuzzyThreshold is the minimum similarity score at which a page token
// is accepted as a fuzzy match for a search term.
//
// 0.85 tolerates one substitution in a seven-character word (6/7 ≈ 0.857)
// while rejecting unrelated words. The value was chosen empirically against
// real OCR output; callers can override it via the search engine config.
const DefaultFuzzyThreshold = 0.85

// Similarity returns a score in [0, 1] describing how close two strings are,
// where 1.0 means identical ignoring case.
//
// The score is 1 - LevenshteinDistance(lower(a), lower(b)) / max(len(a), len(b)).
// Two empty strings are defined as identical (1.0).
//
// Similarity is symmetric: Similarity(a, b) == Similarity(b, a).
//
// Example:
//
//	Similarity("diagnosis", "diagnosis") // Returns 1.0
//	Similarity("diagnosis", "diagnosls") // Returns ~0.889
//	Similarity("", "")                   // Returns 1.0
func Similarity(a, b string) float64 {
	la := strings.ToLower(a)
	lb := strings.ToLower(b)

	longest := len([]rune(la))
	if lb := len([]rune(lb)); lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1.0
	}

	dist := LevenshteinDistance(la, lb)
	return 1.0 - float64(dist)/float64(longest)
}

// IsFuzzyMatch reports whether candidate matches term at the given similarity
// threshold. A threshold <= 0 falls back to DefaultFuzzyThreshold.
func IsFuzzyMatch(term, candidate string, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	return Similarity(term, candidate) >= threshold
}
