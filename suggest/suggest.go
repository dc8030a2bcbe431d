// Package suggest builds the type-ahead list shown under the search box.
package suggest

import (
	"sort"
	"strings"

	"github.com/letmevibethatforyou/discovery"
	"github.com/letmevibethatforyou/discovery/history"
	"github.com/letmevibethatforyou/discovery/textnorm"
)

// RecentHistoryMax caps the history items shown for an empty query.
const RecentHistoryMax = 5

// Source tells where a suggestion came from.
type Source string

const (
	// SourceHistory is a recent search.
	SourceHistory Source = "history"
	// SourceSaved is a saved query.
	SourceSaved Source = "saved"
	// SourceTrending is a curated trending term.
	SourceTrending Source = "trending"
	// SourceTitle is an entity label from the catalog.
	SourceTitle Source = "title"
	// SourceHint is the trailing row that searches the typed text.
	SourceHint Source = "hint"
)

// Item is one suggestion row.
type Item struct {
	Label  string `json:"label"`
	Source Source `json:"source"`
	// Request is set for history and saved items so that selecting them
	// restores the exact prior search.
	Request *discovery.Request `json:"request,omitempty"`
}

// HintLabel returns the label of the trailing hint row.
func HintLabel(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return "Type to search people, works, posts, groups and organizations"
	}
	return `Search for "` + query + `"`
}

// Build returns at most limit suggestions for raw, the last one always being
// the hint row.
//
// With an empty query it lists recent history, then trending terms. Otherwise
// every candidate whose normalized form starts with the normalized query is
// kept, deduplicated by normalized form with earlier sources winning, ordered
// by normalized length then alphabetically.
func Build(raw string, recent []history.Entry, saved []history.SavedQuery, trending, titles []string, limit int) []Item {
	if limit <= 0 {
		return nil
	}
	hint := Item{Label: HintLabel(raw), Source: SourceHint}

	query := textnorm.Normalize(raw)
	if query == "" {
		return emptyQuery(recent, trending, hint, limit)
	}

	type candidate struct {
		key  string
		item Item
	}
	seen := make(map[string]struct{})
	var matches []candidate
	add := func(label string, src Source, req *discovery.Request) {
		key := textnorm.Normalize(label)
		if key == "" {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		if strings.HasPrefix(key, query) {
			matches = append(matches, candidate{key: key, item: Item{Label: label, Source: src, Request: req}})
		}
	}

	for _, e := range recent {
		add(e.Request.Query, SourceHistory, requestOf(e.Request))
	}
	for _, q := range saved {
		add(q.Request.Query, SourceSaved, requestOf(q.Request))
	}
	for _, term := range trending {
		add(term, SourceTrending, nil)
	}
	for _, title := range titles {
		add(title, SourceTitle, nil)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].key, matches[j].key
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})

	if len(matches) > limit-1 {
		matches = matches[:limit-1]
	}
	out := make([]Item, 0, len(matches)+1)
	for _, m := range matches {
		out = append(out, m.item)
	}
	return append(out, hint)
}

func emptyQuery(recent []history.Entry, trending []string, hint Item, limit int) []Item {
	var out []Item
	seen := make(map[string]struct{})
	push := func(it Item) {
		key := textnorm.Normalize(it.Label)
		if key == "" || len(out) >= limit-1 {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}

	for i, e := range recent {
		if i == RecentHistoryMax {
			break
		}
		push(Item{Label: e.Request.Query, Source: SourceHistory, Request: requestOf(e.Request)})
	}
	for _, term := range trending {
		push(Item{Label: term, Source: SourceTrending})
	}
	return append(out, hint)
}

func requestOf(r discovery.Request) *discovery.Request {
	snap := r.Snapshot()
	return &snap
}
