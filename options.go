package discovery

import "strings"

// Request is the exact query text plus the filter/sort snapshot it ran with.
type Request struct {
	Query   string   `json:"query"`
	Scope   Scope    `json:"scope"`
	Sort    SortMode `json:"sort"`
	Filters Filters  `json:"filters,omitempty"`
}

// RequestOption configures a Request.
type RequestOption interface {
	Apply(*Request)
}

// optionFunc is a function that implements RequestOption.
type optionFunc func(*Request)

// Apply implements the RequestOption interface for optionFunc.
func (f optionFunc) Apply(r *Request) {
	f(r)
}

// NewRequest builds a request defaulting to ScopeAll and SortRelevance.
func NewRequest(query string, opts ...RequestOption) Request {
	r := Request{Query: query, Scope: ScopeAll, Sort: SortRelevance}
	for _, opt := range opts {
		opt.Apply(&r)
	}
	return r
}

// WithSort sets the sort mode.
func WithSort(mode SortMode) RequestOption {
	return optionFunc(func(r *Request) {
		r.Sort = mode
	})
}

// WithScope sets the entity tab.
func WithScope(scope Scope) RequestOption {
	return optionFunc(func(r *Request) {
		r.Scope = scope
	})
}

// WithFilter sets one raw filter value for kind.
func WithFilter(kind Kind, key, value string) RequestOption {
	return optionFunc(func(r *Request) {
		if r.Filters == nil {
			r.Filters = make(Filters)
		}
		if r.Filters[kind] == nil {
			r.Filters[kind] = make(FilterValues)
		}
		r.Filters[kind][key] = value
	})
}

// Snapshot returns a copy of r with a trimmed query and cloned filters, safe
// to store.
func (r Request) Snapshot() Request {
	r.Query = strings.TrimSpace(r.Query)
	r.Filters = r.Filters.Clone()
	if r.Scope == "" {
		r.Scope = ScopeAll
	}
	if r.Sort == "" {
		r.Sort = SortRelevance
	}
	return r
}
