package match

import "testing"

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected int
	}{
		{
			name:     "classic kitten sitting",
			a:        "kitten",
			b:        "sitting",
			expected: 3,
		},
		{
			name:     "identical strings",
			a:        "diagnosis",
			b:        "diagnosis",
			expected: 0,
		},
		{
			name:     "both empty",
			a:        "",
			b:        "",
			expected: 0,
		},
		{
			name:     "empty to word is word length",
			a:        "",
			b:        "chart",
			expected: 5,
		},
		{
			name:     "word to empty is word length",
			a:        "chart",
			b:        "",
			expected: 5,
		},
		{
			name:     "single substitution",
			a:        "diagnosis",
			b:        "diagnosls",
			expected: 1,
		},
		{
			name:     "single insertion",
			a:        "patient",
			b:        "patients",
			expected: 1,
		},
		{
			name:     "case counts as substitution",
			a:        "Pain",
			b:        "pain",
			expected: 1,
		},
		{
			name:     "multibyte runes count as single edits",
			a:        "müller",
			b:        "muller",
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := LevenshteinDistance(tt.a, tt.b)
			if result != tt.expected {
				t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}

func TestLevenshteinDistanceSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"kitten", "sitting"},
		{"hypertension", "hypotension"},
		{"", "abc"},
	}

	for _, p := range pairs {
		forward := LevenshteinDistance(p[0], p[1])
		backward := LevenshteinDistance(p[1], p[0])
		if forward != backward {
			t.Errorf("distance not symmetric for (%q, %q): %d vs %d", p[0], p[1], forward, backward)
		}
	}
}
