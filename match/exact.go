package match

import (
	"fmt"
	"regexp"
)

// CompileExactPattern builds the case-insensitive word-boundary regex used
// for exact-mode matching of a literal term. Regex metacharacters in the
// term are escaped, so terms like "03/20/2023" or "B12 (serum)" are matched
// literally.
//
// The compiled pattern should be reused across pages; compiling once per
// term per search keeps exact mode linear in page text size.
func CompileExactPattern(term string) (*regexp.Regexp, error) {
	if term == "" {
		return nil, fmt.Errorf("match: empty term")
	}

	pattern := `(?i)\b` + regexp.QuoteMeta(term) + `\b`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("match: compile %q: %w", term, err)
	}
	return re, nil
}

// CountExactMatches counts word-boundary occurrences of the literal term in
// text, ignoring case. It is a convenience wrapper around CompileExactPattern
// for one-off counts; returns 0 for an empty term.
//
// Example:
//
//	CountExactMatches("apple pie and apple tart", "apple") // Returns 2
//	CountExactMatches("pineapple", "apple")                // Returns 0
func CountExactMatches(text, term string) int {
	re, err := CompileExactPattern(term)
	if err != nil {
		return 0
	}
	return len(re.FindAllStringIndex(text, -1))
}
