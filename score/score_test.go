package score

import "testing"

func TestScore(t *testing.T) {
	tests := map[string]struct {
		haystack string
		terms    []string
		expected int
	}{
		"no_terms": {
			haystack: "one piece",
			terms:    nil,
			expected: 0,
		},
		"exact": {
			haystack: "naruto",
			terms:    []string{"naruto"},
			expected: 120 + 15,
		},
		"prefix": {
			haystack: "one piece",
			terms:    []string{"one"},
			expected: 80 + 14,
		},
		"boundary": {
			haystack: "the one piece",
			terms:    []string{"one"},
			expected: 50 + 14,
		},
		"substring": {
			haystack: "someone",
			terms:    []string{"one"},
			expected: 20 + 15,
		},
		"all_terms_match": {
			haystack: "creator program",
			terms:    []string{"creator", "program"},
			expected: 80 + 50 + 14,
		},
		"one_term_missing": {
			haystack: "creator program",
			terms:    []string{"creator", "missing"},
			expected: 0,
		},
		"long_haystack_small_bonus": {
			haystack: "a very long description that goes on and on and on and on and on well past the bonus",
			terms:    []string{"long"},
			expected: 50 + 5,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Score(tc.haystack, tc.terms); got != tc.expected {
				t.Errorf("Score(%q, %v) = %d, expected %d", tc.haystack, tc.terms, got, tc.expected)
			}
		})
	}
}

func TestScoreStrictAnd(t *testing.T) {
	haystacks := []string{"one piece", "attack on titan", "someone", "x"}
	for _, h := range haystacks {
		for _, good := range []string{"o", "on", "t"} {
			terms := []string{good, "zzzz"}
			if got := Score(h, terms); got != 0 {
				t.Errorf("Score(%q, %v) = %d, expected 0 when a term is absent", h, terms, got)
			}
		}
	}
}

func TestScoreTierOrdering(t *testing.T) {
	exact := Score("one", []string{"one"})
	prefix := Score("one piece", []string{"one"})
	boundary := Score("the one", []string{"one"})
	substring := Score("someone", []string{"one"})

	if !(exact > prefix && prefix > boundary && boundary > substring && substring > 0) {
		t.Errorf("tier ordering broken: exact=%d prefix=%d boundary=%d substring=%d",
			exact, prefix, boundary, substring)
	}
}

func TestShorterHaystackWins(t *testing.T) {
	short := Score("one piece", []string{"one"})
	long := Score("one piece film red special edition box set", []string{"one"})
	if short <= long {
		t.Errorf("expected shorter haystack to outrank longer one: %d <= %d", short, long)
	}
}

func TestZeroStepDoesNotPanic(t *testing.T) {
	w := Weights{Exact: 1, Prefix: 1, Boundary: 1, Substring: 1, LengthBonusMax: 3}
	if got := w.Score("abc", []string{"a"}); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}
