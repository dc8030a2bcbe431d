// Package execution wraps the query orchestrator in a cancellable,
// single-flight state machine. A new execution supersedes the one in flight;
// only the latest generation may commit its outcome.
package execution

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/letmevibethatforyou/discovery"
	"github.com/letmevibethatforyou/discovery/engine"
)

// DefaultTimeout bounds one execution, data source fetch included.
const DefaultTimeout = 5 * time.Second

// State is the phase of the executor.
type State string

const (
	StateIdle      State = "idle"
	StateSearching State = "searching"
	StateReady     State = "ready"
	StateEmpty     State = "empty"
	StateError     State = "error"
)

// Snapshot is the committed outcome of one generation.
type Snapshot struct {
	State      State
	Generation uint64
	Request    discovery.Request
	Results    *discovery.SearchResults
	Err        error
}

// Searcher runs one orchestrated query against a catalog.
type Searcher interface {
	Run(query string, filters discovery.Filters, mode discovery.SortMode, catalog discovery.Catalog) *discovery.SearchResults
}

// SearcherFunc is a function type that implements the Searcher interface.
type SearcherFunc func(string, discovery.Filters, discovery.SortMode, discovery.Catalog) *discovery.SearchResults

// Run implements the Searcher interface for SearcherFunc.
func (f SearcherFunc) Run(query string, filters discovery.Filters, mode discovery.SortMode, catalog discovery.Catalog) *discovery.SearchResults {
	return f(query, filters, mode, catalog)
}

// Option configures an Executor.
type Option func(*Executor)

// WithTimeout bounds every execution. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithSearcher replaces the default engine.
func WithSearcher(s Searcher) Option {
	return func(e *Executor) {
		e.searcher = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// OnCommit registers fn to run after every committed execution, outside the
// executor lock. Superseded executions never reach it.
func OnCommit(fn func(context.Context, Snapshot)) Option {
	return func(e *Executor) {
		e.onCommit = fn
	}
}

// Executor is safe for concurrent use.
type Executor struct {
	source   discovery.DataSource
	searcher Searcher
	timeout  time.Duration
	logger   *slog.Logger
	tracer   trace.Tracer
	onCommit func(context.Context, Snapshot)

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	state  Snapshot
	last   discovery.Request
}

// New creates an idle Executor reading from source.
func New(source discovery.DataSource, opts ...Option) *Executor {
	e := &Executor{
		source:   source,
		searcher: engine.New(),
		timeout:  DefaultTimeout,
		tracer:   otel.Tracer("discovery-execution"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.last = discovery.NewRequest("")
	e.state = Snapshot{State: StateIdle, Request: e.last}
	return e
}

type outcome struct {
	results *discovery.SearchResults
	err     error
}

// Execute runs req, superseding any execution in flight. It returns the
// committed snapshot, whose Err is also returned for the error state. A call
// that was superseded before it finished returns ErrSuperseded and leaves the
// state untouched.
func (e *Executor) Execute(ctx context.Context, req discovery.Request) (Snapshot, error) {
	req = req.Snapshot()

	e.mu.Lock()
	e.gen++
	gen := e.gen
	if e.cancel != nil {
		e.cancel()
	}
	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	e.cancel = cancel
	e.last = req
	e.state = Snapshot{State: StateSearching, Generation: gen, Request: req}
	e.mu.Unlock()
	defer cancel()

	ctx, span := e.tracer.Start(ctx, "discovery.execute",
		trace.WithAttributes(
			attribute.String("discovery.query", req.Query),
			attribute.String("discovery.sort", string(req.Sort)),
			attribute.Int64("discovery.generation", int64(gen)),
		),
	)
	defer span.End()

	done := make(chan outcome, 1)
	go func() {
		done <- e.run(runCtx, req)
	}()

	var out outcome
	select {
	case out = <-done:
	case <-runCtx.Done():
		out = outcome{err: contextError(runCtx.Err())}
	}

	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		span.SetStatus(codes.Error, "superseded")
		e.logger.DebugContext(ctx, "discarding superseded execution", "query", req.Query, "generation", gen)
		return Snapshot{}, errors.WithSecondaryError(discovery.ErrSuperseded, errors.Newf("generation %d", gen))
	}
	snap := Snapshot{Generation: gen, Request: req, Results: out.results, Err: out.err}
	switch {
	case out.err != nil:
		snap.State = StateError
	case out.results.Empty():
		snap.State = StateEmpty
	default:
		snap.State = StateReady
	}
	e.state = snap
	e.cancel = nil
	e.mu.Unlock()

	if snap.Err != nil {
		span.RecordError(snap.Err)
		span.SetStatus(codes.Error, "execution failed")
		e.logger.WarnContext(ctx, "search failed", "query", req.Query, "error", snap.Err)
	} else {
		span.SetAttributes(attribute.Int("discovery.total", snap.Results.Total))
		span.SetStatus(codes.Ok, string(snap.State))
	}

	if e.onCommit != nil {
		e.onCommit(ctx, snap)
	}
	return snap, snap.Err
}

func (e *Executor) run(ctx context.Context, req discovery.Request) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = outcome{err: errors.Newf("search panicked: %v", r)}
		}
	}()

	catalog, err := discovery.LoadCatalog(ctx, e.source)
	if err != nil {
		return outcome{err: err}
	}
	return outcome{results: e.searcher.Run(req.Query, req.Filters, req.Sort, catalog)}
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.WithSecondaryError(discovery.ErrTimeout, err)
	}
	return errors.WithSecondaryError(discovery.ErrCanceled, err)
}

// Retry re-runs the last request with identical arguments.
func (e *Executor) Retry(ctx context.Context) (Snapshot, error) {
	e.mu.Lock()
	req := e.last
	e.mu.Unlock()
	return e.Execute(ctx, req)
}

// Reset supersedes any execution in flight and returns to idle with the
// default request.
func (e *Executor) Reset() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.gen++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.last = discovery.NewRequest("")
	e.state = Snapshot{State: StateIdle, Generation: e.gen, Request: e.last}
	return e.state
}

// State returns the current snapshot.
func (e *Executor) State() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Last returns the request of the latest execution.
func (e *Executor) Last() discovery.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}
