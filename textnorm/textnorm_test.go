package textnorm

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected string
	}{
		"empty":               {input: "", expected: ""},
		"lowercase":           {input: "One Piece", expected: "one piece"},
		"diacritics":          {input: "Pokémon Café", expected: "pokemon cafe"},
		"compatibility_forms": {input: "ｆｕｌｌ ｗｉｄｔｈ", expected: "full width"},
		"punctuation":         {input: "Attack on Titan: Final!", expected: "attack on titan final"},
		"kept_symbols":        {input: "@mika_ART sci-fi v2.0", expected: "@mika_art sci-fi v2.0"},
		"whitespace_runs":     {input: "  a \t\n  b   ", expected: "a b"},
		"only_punctuation":    {input: "?!#$%", expected: ""},
		"digits":              {input: "Top 10 (2024)", expected: "top 10 2024"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Normalize(tc.input); got != tc.expected {
				t.Errorf("Normalize(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"Ünïcödé   Straße",
		"ＡＢＣ１２３",
		"Ⅻ ℌello ﬁne",
		"İstanbul",
		"mixed—dashes–and “quotes”",
		"emoji 🎉 party",
		"Ω Kelvin K",
		"tabs\tand\nnewlines",
		"@user.name_1-x",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestSplitTerms(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected []string
	}{
		"blank":    {input: "   ", expected: nil},
		"single":   {input: "Naruto", expected: []string{"naruto"}},
		"multiple": {input: " Creator,  Program ", expected: []string{"creator", "program"}},
		"accents":  {input: "Émile Zola", expected: []string{"emile", "zola"}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := SplitTerms(tc.input)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("SplitTerms(%q) = %#v, expected %#v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	got := Join("One Piece", "", "  ", "Eiichirō Oda")
	if got != "one piece eiichiro oda" {
		t.Errorf("unexpected join result %q", got)
	}
}
