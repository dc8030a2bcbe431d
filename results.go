package discovery

import "time"

// ScoredMatch pairs an entity with its relevance score. A score of 0 means
// excluded, never weakly matched.
type ScoredMatch struct {
	Entity Entity
	Score  int
}

// SearchResults is an immutable snapshot of one query execution.
type SearchResults struct {
	// Query is the trimmed query string for reference.
	Query string `json:"query"`

	// Took is the time spent in orchestration.
	Took time.Duration `json:"took"`

	// Total is the sum of every kind's result count.
	Total int `json:"total"`

	// Hits holds one ordered sequence per kind. Every kind is present, possibly empty.
	Hits map[Kind][]Entity `json:"hits"`

	// TopMatch is the single best match across kinds, nil when nothing matched.
	TopMatch Entity `json:"top_match,omitempty"`
}

// Items returns the ordered results of kind.
func (r *SearchResults) Items(kind Kind) []Entity {
	if r == nil {
		return nil
	}
	return r.Hits[kind]
}

// Counts returns the compact per-kind result count record.
func (r *SearchResults) Counts() map[Kind]int {
	counts := make(map[Kind]int, len(Kinds))
	for _, k := range Kinds {
		counts[k] = len(r.Items(k))
	}
	return counts
}

// Empty reports whether nothing matched.
func (r *SearchResults) Empty() bool {
	return r == nil || r.Total == 0
}
