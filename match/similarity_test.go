package match

import "testing"

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
	}{
		{
			name:     "identical strings score 1",
			a:        "diagnosis",
			b:        "diagnosis",
			expected: 1.0,
		},
		{
			name:     "both empty score 1",
			a:        "",
			b:        "",
			expected: 1.0,
		},
		{
			name:     "case insensitive",
			a:        "Diagnosis",
			b:        "diagnosis",
			expected: 1.0,
		},
		{
			name:     "completely different short strings",
			a:        "ab",
			b:        "cd",
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Similarity(tt.a, tt.b)
			if result != tt.expected {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"diagnosis", "diagnosls"},
		{"hypertension", "hypotension"},
		{"apple", "applesauce"},
	}

	for _, p := range pairs {
		forward := Similarity(p[0], p[1])
		backward := Similarity(p[1], p[0])
		if forward != backward {
			t.Errorf("similarity not symmetric for (%q, %q): %v vs %v", p[0], p[1], forward, backward)
		}
	}
}

func TestSimilaritySelf(t *testing.T) {
	for _, s := range []string{"", "a", "chart note", "Discharge Summary 2023"} {
		if got := Similarity(s, s); got != 1.0 {
			t.Errorf("Similarity(%q, %q) = %v, want 1.0", s, s, got)
		}
	}
}

func TestIsFuzzyMatch(t *testing.T) {
	tests := []struct {
		name      string
		term      string
		candidate string
		threshold float64
		expected  bool
	}{
		{
			name:      "one character OCR substitution accepted",
			term:      "diagnosis",
			candidate: "diagnosls",
			threshold: DefaultFuzzyThreshold,
			expected:  true,
		},
		{
			name:      "unrelated word rejected",
			term:      "diagnosis",
			candidate: "treatment",
			threshold: DefaultFuzzyThreshold,
			expected:  false,
		},
		{
			name:      "exact match accepted regardless of case",
			term:      "Metformin",
			candidate: "metformin",
			threshold: DefaultFuzzyThreshold,
			expected:  true,
		},
		{
			name:      "short words need to be near identical",
			term:      "pain",
			candidate: "gain",
			threshold: DefaultFuzzyThreshold,
			expected:  false,
		},
		{
			name:      "zero threshold falls back to default",
			term:      "diagnosis",
			candidate: "diagnosls",
			threshold: 0,
			expected:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsFuzzyMatch(tt.term, tt.candidate, tt.threshold)
			if result != tt.expected {
				t.Errorf("IsFuzzyMatch(%q, %q, %v) = %v, want %v",
					tt.term, tt.candidate, tt.threshold, result, tt.expected)
			}
		})
	}
}
