package leaderboard

import (
	"sort"
	"strings"

	"github.com/letmevibethatforyou/discovery"
)

// Metric is the value items are ranked by.
type Metric string

const (
	MetricPopularity Metric = "popularity"
	MetricEngagement Metric = "engagement"
	MetricGrowth     Metric = "growth"
)

// Range is the observation window.
type Range string

const (
	RangeDay   Range = "day"
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeYear  Range = "year"
	RangeAll   Range = "all"
)

// Sort orders the board.
type Sort string

const (
	// SortTop orders by metric value.
	SortTop Sort = "top"
	// SortRising puts the biggest climbers first.
	SortRising Sort = "rising"
	// SortFalling puts the biggest drops first.
	SortFalling Sort = "falling"
)

// Selector picks one board.
type Selector struct {
	Category discovery.Kind         `json:"category"`
	Metric   Metric                 `json:"metric"`
	Range    Range                  `json:"range"`
	Sort     Sort                   `json:"sort"`
	Filters  discovery.FilterValues `json:"filters,omitempty"`
}

// DefaultSelector is the board shown before the user changes anything.
func DefaultSelector() Selector {
	return Selector{
		Category: discovery.KindWork,
		Metric:   MetricPopularity,
		Range:    RangeWeek,
		Sort:     SortTop,
	}
}

// Normalize replaces unknown or unset parts with their defaults.
func (s Selector) Normalize() Selector {
	def := DefaultSelector()
	if !s.Category.Valid() {
		s.Category = def.Category
	}
	switch s.Metric {
	case MetricPopularity, MetricEngagement, MetricGrowth:
	default:
		s.Metric = def.Metric
	}
	if _, ok := trendMax[s.Range]; !ok {
		s.Range = def.Range
	}
	switch s.Sort {
	case SortTop, SortRising, SortFalling:
	default:
		s.Sort = def.Sort
	}
	return s
}

// Key joins every part of the normalized selector into one string. Filter
// entries are sorted by name; unset and "any" values are left out so they
// produce the same board as no filter at all.
func (s Selector) Key() string {
	s = s.Normalize()
	parts := []string{string(s.Category), string(s.Metric), string(s.Range), string(s.Sort)}

	names := make([]string, 0, len(s.Filters))
	for name, v := range s.Filters {
		if v = strings.TrimSpace(v); v != "" && !strings.EqualFold(v, discovery.Any) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, name+"="+strings.TrimSpace(s.Filters[name]))
	}
	return strings.Join(parts, "|")
}
