package engine

import (
	"log/slog"
	"strings"
	"time"

	"github.com/letmevibethatforyou/discovery"
)

// topMatchPriority breaks equal head scores across kinds. Lower wins.
var topMatchPriority = map[discovery.Kind]int{
	discovery.KindWork:         0,
	discovery.KindPerson:       1,
	discovery.KindPost:         2,
	discovery.KindGroup:        3,
	discovery.KindOrganization: 4,
}

// Engine fans a query out to every registered handler.
type Engine struct {
	registry Registry
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry replaces the default handler registry.
func WithRegistry(r Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithLogger sets the logger used for per-query debug records. The default
// is slog.Default at call time.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine with the default registry.
func New(opts ...Option) *Engine {
	e := &Engine{registry: DefaultRegistry()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes query against catalog. An empty query still executes and
// yields empty hits for every kind.
func (e *Engine) Run(query string, filters discovery.Filters, mode discovery.SortMode, catalog discovery.Catalog) *discovery.SearchResults {
	start := time.Now()
	query = strings.TrimSpace(query)

	results := &discovery.SearchResults{
		Query: query,
		Hits:  make(map[discovery.Kind][]discovery.Entity, len(discovery.Kinds)),
	}

	var (
		top      discovery.ScoredMatch
		haveBest bool
	)
	for _, kind := range discovery.Kinds {
		h, ok := e.registry[kind]
		if !ok {
			results.Hits[kind] = []discovery.Entity{}
			continue
		}
		matches := h.Search(query, filters.For(kind), mode, catalog.Entities(kind))
		results.Hits[kind] = EntitiesOf(matches)
		results.Total += len(matches)

		if len(matches) > 0 && (!haveBest || betterHead(matches[0], top)) {
			top, haveBest = matches[0], true
		}
	}
	if haveBest {
		results.TopMatch = top.Entity
	}
	results.Took = time.Since(start)

	e.log().Debug("search executed",
		"query", query,
		"sort", mode,
		"total", results.Total,
		"took", results.Took,
	)
	return results
}

func (e *Engine) log() *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return slog.Default()
}

// betterHead compares the first match of two kinds: the higher score wins and
// equal scores fall back to the fixed kind priority.
func betterHead(candidate, current discovery.ScoredMatch) bool {
	if candidate.Score != current.Score {
		return candidate.Score > current.Score
	}
	return topMatchPriority[candidate.Entity.EntityKind()] < topMatchPriority[current.Entity.EntityKind()]
}

var defaultEngine = New()

// RunSearch executes query with the default engine.
func RunSearch(query string, filters discovery.Filters, mode discovery.SortMode, catalog discovery.Catalog) *discovery.SearchResults {
	return defaultEngine.Run(query, filters, mode, catalog)
}
