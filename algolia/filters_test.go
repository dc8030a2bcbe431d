package algolia

import (
	"testing"
	"time"

	"github.com/letmevibethatforyou/discovery"
)

func TestFilterString(t *testing.T) {
	tests := []struct {
		name     string
		exprs    []discovery.Expression
		expected string
	}{
		{
			name:     "kind",
			exprs:    []discovery.Expression{discovery.Eq(discovery.FieldKind, discovery.KindWork)},
			expected: `kind:"work"`,
		},
		{
			name:     "gte",
			exprs:    []discovery.Expression{discovery.Gte("followers", 1000)},
			expected: "followers >= 1000",
		},
		{
			name:     "lte float",
			exprs:    []discovery.Expression{discovery.Lte("rating", 4.5)},
			expected: "rating <= 4.5",
		},
		{
			name:     "range",
			exprs:    []discovery.Expression{discovery.Range("year", 2010, 2020)},
			expected: "year >= 2010 AND year <= 2020",
		},
		{
			name:     "range open max",
			exprs:    []discovery.Expression{discovery.Range("year", 2010, nil)},
			expected: "year >= 2010",
		},
		{
			name:     "any of",
			exprs:    []discovery.Expression{discovery.AnyOf("genres", "horror", "drama")},
			expected: `genres:"horror" OR genres:"drama"`,
		},
		{
			name:     "bool",
			exprs:    []discovery.Expression{discovery.Eq("verified", true)},
			expected: "verified:true",
		},
		{
			name:     "time as unix seconds",
			exprs:    []discovery.Expression{discovery.Gte("created", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))},
			expected: "created >= 1704067200",
		},
		{
			name: "conjunction",
			exprs: []discovery.Expression{
				discovery.Eq(discovery.FieldKind, discovery.KindPost),
				discovery.AnyOf("tags", "review", "news"),
			},
			expected: `(kind:"post") AND (tags:"review" OR tags:"news")`,
		},
		{
			name:     "nested and",
			exprs:    []discovery.Expression{discovery.And(discovery.Eq("region", "eu"), discovery.Gte("members", 10))},
			expected: `(region:"eu") AND (members >= 10)`,
		},
		{
			name:     "empty any of dropped",
			exprs:    []discovery.Expression{discovery.AnyOf("tags"), discovery.Eq("region", "na")},
			expected: `region:"na"`,
		},
		{
			name:     "nothing",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FilterString(tt.exprs...); got != tt.expected {
				t.Errorf("Expected filter '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestEscapeField(t *testing.T) {
	tests := map[string]struct {
		field    string
		expected string
	}{
		"simple":     {"title", "title"},
		"space":      {"product name", `"product name"`},
		"colon":      {"user:id", `"user:id"`},
		"dash":       {"created-at", `"created-at"`},
		"underscore": {"created_at", "created_at"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := escapeField(tc.field); got != tc.expected {
				t.Errorf("escapeField(%q) = %q, expected %q", tc.field, got, tc.expected)
			}
		})
	}
}

func TestEscapeValue(t *testing.T) {
	tests := map[string]struct {
		value    any
		expected string
	}{
		"nil":    {nil, "null"},
		"string": {"hello", `"hello"`},
		"quotes": {`say "hi"`, `"say \"hi\""`},
		"bool":   {false, "false"},
		"int":    {42, `"42"`},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := escapeValue(tc.value); got != tc.expected {
				t.Errorf("escapeValue(%v) = %q, expected %q", tc.value, got, tc.expected)
			}
		})
	}
}
