// Package leaderboard generates deterministic ranked boards from a selector.
// The same selector always yields the same board, across process restarts.
package leaderboard

import (
	"hash/fnv"
	"math/rand/v2"
	"sort"

	"github.com/letmevibethatforyou/discovery"
	"github.com/letmevibethatforyou/discovery/engine"
)

// PoolSize is the number of synthetic items generated per board before
// filtering.
const PoolSize = 40

// trendMax bounds the trend delta per range. Wider windows move less.
var trendMax = map[Range]int{
	RangeDay:   12,
	RangeWeek:  9,
	RangeMonth: 6,
	RangeYear:  4,
	RangeAll:   3,
}

// rangeScale multiplies accumulated metrics by the window length.
var rangeScale = map[Range]int64{
	RangeDay:   1,
	RangeWeek:  7,
	RangeMonth: 30,
	RangeYear:  365,
	RangeAll:   1200,
}

// RankItem is one row of a board.
type RankItem struct {
	ID          string         `json:"id"`
	Kind        discovery.Kind `json:"kind"`
	Title       string         `json:"title"`
	Subtitle    string         `json:"subtitle"`
	Tags        []string       `json:"tags,omitempty"`
	Attrs       map[string]any `json:"attrs,omitempty"`
	MetricValue int64          `json:"metric_value"`
	Trend       int            `json:"trend"`
	Rank        int            `json:"rank"`
	PrevRank    int            `json:"prev_rank"`
}

// Field implements discovery.Fielder so the search filters apply unchanged.
func (r RankItem) Field(name string) (any, bool) {
	if name == "tags" {
		return r.Tags, true
	}
	v, ok := r.Attrs[name]
	return v, ok
}

// Seed derives the generator seed from a selector key.
func Seed(key string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return h.Sum64()
}

// Generate builds the board for sel.
func Generate(sel Selector) []RankItem {
	sel = sel.Normalize()
	key := sel.Key()
	seed := Seed(key)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	exprs := engine.FilterExpressions(sel.Category, sel.Filters)
	maxTrend := trendMax[sel.Range]

	items := make([]RankItem, 0, PoolSize)
	for i := range PoolSize {
		item := newItem(rng, sel.Category, i)
		item.MetricValue = metricValue(rng, sel.Metric, sel.Range)
		item.Trend = rng.IntN(2*maxTrend+1) - maxTrend
		if discovery.Matches(item, exprs...) {
			items = append(items, item)
		}
	}

	sortItems(items, sel.Sort)

	n := len(items)
	for i := range items {
		items[i].Rank = i + 1
		items[i].PrevRank = clamp(items[i].Rank+items[i].Trend, 1, n)
	}
	return items
}

func metricValue(rng *rand.Rand, m Metric, r Range) int64 {
	scale := rangeScale[r]
	switch m {
	case MetricEngagement:
		return int64(50+rng.IntN(950)) * scale
	case MetricGrowth:
		// Growth is a rate, so longer windows flatten it instead of adding up.
		return int64(10+rng.IntN(490)) * 100 / (100 + scale/10)
	default:
		return int64(1000+rng.IntN(9000)) * scale
	}
}

func sortItems(items []RankItem, mode Sort) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch mode {
		case SortRising:
			if a.Trend != b.Trend {
				return a.Trend > b.Trend
			}
		case SortFalling:
			if a.Trend != b.Trend {
				return a.Trend < b.Trend
			}
		}
		if a.MetricValue != b.MetricValue {
			return a.MetricValue > b.MetricValue
		}
		return a.ID < b.ID
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
