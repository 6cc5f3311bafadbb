package match

import (
	"strings"
	"unicode"
)

// Tokenize splits page text into candidate words for fuzzy matching.
//
// The text is split on whitespace and each token is stripped of non-word
// runes (anything that is not a letter, digit, or underscore). Tokens that
// become empty after stripping are dropped. Stripping happens before scoring
// so that punctuation glued onto words by the PDF text layer ("hypertension,"
// or "(diabetes)") does not inflate the edit distance.
//
// This is a pure function with no external dependencies.
//
// Example:
//
//	Tokenize("Dx: chronic, (severe) pain!") // Returns ["Dx", "chronic", "severe", "pain"]
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))

	for _, f := range fields {
		stripped := stripNonWord(f)
		if stripped == "" {
			continue
		}
		tokens = append(tokens, stripped)
	}

	return tokens
}

// stripNonWord removes every rune that is not a letter, digit, or underscore.
func stripNonWord(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// CountFuzzyMatches counts how many tokens match term at the given threshold.
// The caller is expected to tokenize once per page and reuse the token slice
// across terms; see the search engine.
func CountFuzzyMatches(tokens []string, term string, threshold float64) int {
	count := 0
	for _, tok := range tokens {
		if IsFuzzyMatch(term, tok, threshold) {
			count++
		}
	}
	return count
}
