// Package engine implements the per-kind search pipelines and the query
// orchestrator that fans one query out to all of them.
package engine

import (
	"strings"

	"github.com/letmevibethatforyou/discovery"
	"github.com/letmevibethatforyou/discovery/score"
)

// Handler is the capability set of one entity kind: the weight table its
// candidates are scored with and the translation of raw UI filter values into
// structured expressions.
type Handler struct {
	Kind    discovery.Kind
	Weights score.Weights
	// Filter converts raw values into expressions. Unset, "any" and invalid
	// values produce no expression.
	Filter func(discovery.FilterValues) []discovery.Expression
}

// Expressions returns the structured filters for values.
func (h Handler) Expressions(values discovery.FilterValues) []discovery.Expression {
	if h.Filter == nil || len(values) == 0 {
		return nil
	}
	return h.Filter(values)
}

// Registry maps each kind to its handler.
type Registry map[discovery.Kind]Handler

// DefaultRegistry registers the five built-in kinds with the shared default
// weight table.
func DefaultRegistry() Registry {
	return Registry{
		discovery.KindPerson:       {Kind: discovery.KindPerson, Weights: score.Default, Filter: personFilters},
		discovery.KindWork:         {Kind: discovery.KindWork, Weights: score.Default, Filter: workFilters},
		discovery.KindPost:         {Kind: discovery.KindPost, Weights: score.Default, Filter: postFilters},
		discovery.KindGroup:        {Kind: discovery.KindGroup, Weights: score.Default, Filter: groupFilters},
		discovery.KindOrganization: {Kind: discovery.KindOrganization, Weights: score.Default, Filter: organizationFilters},
	}
}

// FilterExpressions returns the default handler expressions of kind for
// values. Unknown kinds yield none.
func FilterExpressions(kind discovery.Kind, values discovery.FilterValues) []discovery.Expression {
	h, ok := defaultRegistry[kind]
	if !ok {
		return nil
	}
	return h.Expressions(values)
}

var defaultRegistry = DefaultRegistry()

func personFilters(v discovery.FilterValues) []discovery.Expression {
	var exprs []discovery.Expression
	if role, ok := v.Get("role"); ok {
		exprs = append(exprs, discovery.Eq("role", role))
	}
	if n, ok := v.Int("minFollowers"); ok {
		exprs = append(exprs, discovery.Gte("followers", n))
	}
	if b, ok := v.Bool("verified"); ok {
		exprs = append(exprs, discovery.Eq("verified", b))
	}
	return exprs
}

func workFilters(v discovery.FilterValues) []discovery.Expression {
	var exprs []discovery.Expression
	if t, ok := v.Get("type"); ok {
		exprs = append(exprs, discovery.Eq("type", t))
	}
	if s, ok := v.Get("status"); ok {
		exprs = append(exprs, discovery.Eq("status", s))
	}
	if lo, hi, ok := v.IntRange("year"); ok {
		exprs = append(exprs, discovery.Range("year", lo, hi))
	}
	if genres, ok := v.List("genres"); ok {
		exprs = append(exprs, discovery.AnyOf("genres", genres...))
	}
	if r, ok := v.Float("minRating"); ok {
		exprs = append(exprs, discovery.Gte("rating", r))
	}
	return exprs
}

func postFilters(v discovery.FilterValues) []discovery.Expression {
	var exprs []discovery.Expression
	if tags, ok := v.List("tags"); ok {
		exprs = append(exprs, discovery.AnyOf("tags", tags...))
	}
	if mode, ok := v.Get("spoilers"); ok {
		switch strings.ToLower(mode) {
		case "hide":
			exprs = append(exprs, discovery.Eq("spoiler", false))
		case "only":
			exprs = append(exprs, discovery.Eq("spoiler", true))
		}
	}
	if n, ok := v.Int("minReactions"); ok {
		exprs = append(exprs, discovery.Gte("reactions", n))
	}
	if since, ok := v.Date("since"); ok {
		exprs = append(exprs, discovery.Gte("created", since))
	}
	return exprs
}

func groupFilters(v discovery.FilterValues) []discovery.Expression {
	var exprs []discovery.Expression
	if region, ok := v.Get("region"); ok {
		exprs = append(exprs, discovery.Eq("region", region))
	}
	if b, ok := v.Bool("official"); ok {
		exprs = append(exprs, discovery.Eq("official", b))
	}
	if n, ok := v.Int("minMembers"); ok {
		exprs = append(exprs, discovery.Gte("members", n))
	}
	if tags, ok := v.List("tags"); ok {
		exprs = append(exprs, discovery.AnyOf("tags", tags...))
	}
	return exprs
}

func organizationFilters(v discovery.FilterValues) []discovery.Expression {
	var exprs []discovery.Expression
	if region, ok := v.Get("region"); ok {
		exprs = append(exprs, discovery.Eq("region", region))
	}
	if c, ok := v.Get("category"); ok {
		exprs = append(exprs, discovery.Eq("category", c))
	}
	if b, ok := v.Bool("official"); ok {
		exprs = append(exprs, discovery.Eq("official", b))
	}
	if n, ok := v.Int("minMembers"); ok {
		exprs = append(exprs, discovery.Gte("members", n))
	}
	return exprs
}
