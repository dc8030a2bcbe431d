package execution

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/letmevibethatforyou/discovery"
)

type slowKey struct{}

func testCatalog() discovery.StaticCatalog {
	return discovery.StaticCatalog{
		discovery.KindWork: {
			discovery.Index(&discovery.Work{Meta: discovery.Meta{ID: "w1"}, Title: "Naruto"}),
			discovery.Index(&discovery.Work{Meta: discovery.Meta{ID: "w2"}, Title: "Boruto"}),
		},
	}
}

func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// gatedSource blocks fetches whose context carries slowKey until gate closes,
// ignoring cancellation.
func gatedSource(gate <-chan struct{}) discovery.DataSource {
	catalog := testCatalog()
	return discovery.DataSourceFunc(func(ctx context.Context, kind discovery.Kind) ([]discovery.Entity, error) {
		if ctx.Value(slowKey{}) != nil {
			<-gate
		}
		return catalog[kind], nil
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestExecuteStates(t *testing.T) {
	tests := map[string]struct {
		query    string
		expected State
	}{
		"ready": {query: "naruto", expected: StateReady},
		"empty": {query: "zzz", expected: StateEmpty},
		"blank": {query: "  ", expected: StateEmpty},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ex := New(testCatalog(), quiet())
			if got := ex.State().State; got != StateIdle {
				t.Fatalf("expected idle before any execution, got %s", got)
			}
			snap, err := ex.Execute(context.Background(), discovery.NewRequest(tc.query))
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if snap.State != tc.expected || ex.State().State != tc.expected {
				t.Errorf("expected %s, got %s", tc.expected, snap.State)
			}
		})
	}
}

func TestSupersededExecutionDiscarded(t *testing.T) {
	gate := make(chan struct{})
	var commits []string
	var mu sync.Mutex
	ex := New(gatedSource(gate), quiet(), OnCommit(func(_ context.Context, s Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		commits = append(commits, s.Request.Query)
	}))

	type result struct {
		snap Snapshot
		err  error
	}
	aDone := make(chan result, 1)
	go func() {
		ctx := context.WithValue(context.Background(), slowKey{}, true)
		snap, err := ex.Execute(ctx, discovery.NewRequest("naruto"))
		aDone <- result{snap, err}
	}()
	waitFor(t, func() bool { return ex.State().State == StateSearching })

	snapB, errB := ex.Execute(context.Background(), discovery.NewRequest("boruto", discovery.WithSort(discovery.SortNewest)))
	if errB != nil {
		t.Fatalf("B: %v", errB)
	}
	close(gate)
	a := <-aDone

	if !errors.Is(a.err, discovery.ErrSuperseded) {
		t.Errorf("expected A to be superseded, got %v", a.err)
	}
	if snapB.State != StateReady || snapB.Results.TopMatch.EntityID() != "w2" {
		t.Errorf("expected B's results, got %+v", snapB)
	}

	state := ex.State()
	if state.Request.Query != "boruto" || state.Request.Sort != discovery.SortNewest {
		t.Errorf("state must reflect only B, got %+v", state.Request)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(commits) != 1 || commits[0] != "boruto" {
		t.Errorf("expected only B to commit, got %v", commits)
	}
}

func TestExecuteTimeout(t *testing.T) {
	src := discovery.DataSourceFunc(func(ctx context.Context, kind discovery.Kind) ([]discovery.Entity, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	ex := New(src, quiet(), WithTimeout(20*time.Millisecond))

	snap, err := ex.Execute(context.Background(), discovery.NewRequest("naruto"))
	if !errors.Is(err, discovery.ErrTimeout) {
		t.Errorf("expected timeout, got %v", err)
	}
	if snap.State != StateError {
		t.Errorf("expected error state, got %s", snap.State)
	}
}

func TestExecuteSourceFailureThenRetry(t *testing.T) {
	var mu sync.Mutex
	fail := true
	catalog := testCatalog()
	src := discovery.DataSourceFunc(func(ctx context.Context, kind discovery.Kind) ([]discovery.Entity, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return nil, errors.New("connection refused")
		}
		return catalog[kind], nil
	})
	ex := New(src, quiet())

	req := discovery.NewRequest("naruto", discovery.WithFilter(discovery.KindWork, "status", "any"))
	snap, err := ex.Execute(context.Background(), req)
	if !errors.Is(err, discovery.ErrBackendUnavailable) || snap.State != StateError {
		t.Fatalf("expected backend error state, got %s %v", snap.State, err)
	}

	mu.Lock()
	fail = false
	mu.Unlock()

	snap, err = ex.Retry(context.Background())
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if snap.State != StateReady || snap.Request.Filters[discovery.KindWork]["status"] != "any" {
		t.Errorf("retry must reuse the identical request, got %+v", snap)
	}
}

func TestExecutePanicBecomesError(t *testing.T) {
	ex := New(testCatalog(), quiet(), WithSearcher(SearcherFunc(func(string, discovery.Filters, discovery.SortMode, discovery.Catalog) *discovery.SearchResults {
		panic("boom")
	})))

	snap, err := ex.Execute(context.Background(), discovery.NewRequest("naruto"))
	if err == nil || snap.State != StateError {
		t.Errorf("expected error state, got %s %v", snap.State, err)
	}
}

func TestReset(t *testing.T) {
	ex := New(testCatalog(), quiet())
	if _, err := ex.Execute(context.Background(), discovery.NewRequest("naruto", discovery.WithSort(discovery.SortNewest))); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	snap := ex.Reset()
	if snap.State != StateIdle || snap.Request.Query != "" || snap.Request.Sort != discovery.SortRelevance {
		t.Errorf("expected idle default state, got %+v", snap)
	}
	if ex.Last().Sort != discovery.SortRelevance {
		t.Errorf("reset must restore the default request")
	}
}

func TestResetSupersedesInFlight(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	ex := New(gatedSource(gate), quiet())

	errc := make(chan error, 1)
	go func() {
		ctx := context.WithValue(context.Background(), slowKey{}, true)
		_, err := ex.Execute(ctx, discovery.NewRequest("naruto"))
		errc <- err
	}()
	waitFor(t, func() bool { return ex.State().State == StateSearching })

	ex.Reset()
	if err := <-errc; !errors.Is(err, discovery.ErrSuperseded) {
		t.Errorf("expected superseded, got %v", err)
	}
	if got := ex.State().State; got != StateIdle {
		t.Errorf("expected idle, got %s", got)
	}
}
