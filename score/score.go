// Package score ranks one candidate's searchable text against a set of query
// terms under strict-AND semantics.
package score

import "strings"

// Weights is the tiered match-quality table used by Score. Every entity kind
// shares Default unless its handler overrides it.
type Weights struct {
	// Exact is added when a term equals the whole haystack.
	Exact int
	// Prefix is added when the haystack starts with the term.
	Prefix int
	// Boundary is added when the term starts a word inside the haystack.
	Boundary int
	// Substring is added when the term appears anywhere else.
	Substring int

	// LengthBonusMax is the bonus granted to the shortest haystacks.
	LengthBonusMax int
	// LengthBonusStep is how many bytes of haystack cost one bonus point.
	LengthBonusStep int
}

// Default keeps exact > prefix > boundary > substring with a length bonus
// small enough never to lift a weaker tier over a stronger one for a single
// term.
var Default = Weights{
	Exact:           120,
	Prefix:          80,
	Boundary:        50,
	Substring:       20,
	LengthBonusMax:  15,
	LengthBonusStep: 8,
}

// Score returns the relevance of haystack for terms. Both must already be
// normalized. A result of 0 means the candidate is excluded: it is returned
// for an empty term list and as soon as any single term fails to match.
func (w Weights) Score(haystack string, terms []string) int {
	if len(terms) == 0 {
		return 0
	}

	total := 0
	for _, term := range terms {
		if term == "" {
			continue
		}
		switch {
		case haystack == term:
			total += w.Exact
		case strings.HasPrefix(haystack, term):
			total += w.Prefix
		case strings.Contains(haystack, " "+term):
			total += w.Boundary
		case strings.Contains(haystack, term):
			total += w.Substring
		default:
			return 0
		}
	}
	if total == 0 {
		return 0
	}

	return total + w.lengthBonus(len(haystack))
}

// lengthBonus favors shorter haystacks, clamped to [0, LengthBonusMax].
func (w Weights) lengthBonus(n int) int {
	step := w.LengthBonusStep
	if step <= 0 {
		step = 1
	}
	bonus := w.LengthBonusMax - n/step
	if bonus < 0 {
		return 0
	}
	return bonus
}

// Score applies the Default weights.
func Score(haystack string, terms []string) int {
	return Default.Score(haystack, terms)
}
