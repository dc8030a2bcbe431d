// Package textnorm canonicalizes text for matching.
//
// Every string that takes part in a comparison (queries, searchable entity
// text, suggestion candidates, history dedup keys) goes through Normalize so
// that case, diacritics and punctuation never decide whether two strings match.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// keep lists the punctuation that survives normalization. Handles, emails,
// versions and hyphenated names stay searchable as one token.
const keep = "@._-"

// Normalize lowercases s, strips diacritics through compatibility
// decomposition, replaces every rune that is not a letter, number, whitespace
// or one of "@._-" with a space, collapses whitespace runs and trims.
//
// Normalize is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	// A fresh transformer per call: transform.Chain is stateful and not safe
	// for concurrent use.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	mapped := strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsSpace(r):
			return r
		case strings.ContainsRune(keep, r):
			return r
		default:
			return ' '
		}
	}, stripped)

	return strings.Join(strings.Fields(mapped), " ")
}

// SplitTerms normalizes s and splits it on whitespace. Empty tokens are
// dropped, so a blank query yields no terms.
func SplitTerms(s string) []string {
	n := Normalize(s)
	if n == "" {
		return nil
	}
	return strings.Split(n, " ")
}

// Join normalizes the space-separated concatenation of the non-empty parts.
// It builds the searchable text of an entity from its matchable fields.
func Join(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return Normalize(strings.Join(nonEmpty, " "))
}
