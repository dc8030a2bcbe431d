// Package history keeps the deduplicated search history and the saved-query
// list, persisted as two JSON documents in a Record.
package history

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/segmentio/ksuid"

	"github.com/letmevibethatforyou/discovery"
	"github.com/letmevibethatforyou/discovery/textnorm"
)

const (
	// HistoryKey is the logical record key of the history log.
	HistoryKey = "discovery.history"
	// SavedKey is the logical record key of the saved-query list.
	SavedKey = "discovery.saved"

	// DefaultCapacity bounds the history log.
	DefaultCapacity = 20
)

// Entry is one executed search.
type Entry struct {
	ID      string                 `json:"id"`
	Request discovery.Request      `json:"request"`
	Counts  map[discovery.Kind]int `json:"counts"`
	Total   int                    `json:"total"`
	At      time.Time              `json:"at"`
}

// SavedQuery is a query the user chose to keep.
type SavedQuery struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Request discovery.Request `json:"request"`
	Created time.Time         `json:"created_at"`
}

// Option configures a Store.
type Option interface {
	Apply(*Store)
}

type optionFunc func(*Store)

func (f optionFunc) Apply(s *Store) {
	f(s)
}

// WithCapacity bounds the history log. Values below 1 are ignored.
func WithCapacity(n int) Option {
	return optionFunc(func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	})
}

// WithLogger sets the logger persistence failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(s *Store) {
		s.logger = l
	})
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return optionFunc(func(s *Store) {
		s.now = now
	})
}

// WithIDs overrides the identifier generator. The default produces KSUIDs.
func WithIDs(next func() string) Option {
	return optionFunc(func(s *Store) {
		s.newID = next
	})
}

// Store owns the history log and the saved-query list.
//
// Until Load succeeds nothing is written to the Record, so the empty initial
// state never overwrites durable data. After a failed Load the next mutation
// retries it before writing. Persistence failures are logged and swallowed;
// the in-memory state stays authoritative and the next mutation writes the
// whole document again.
type Store struct {
	mu       sync.Mutex
	rec      Record
	capacity int
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string

	attempted bool
	loaded    bool
	cleared   bool
	history   []Entry
	saved     []SavedQuery
}

// New creates a Store over rec.
func New(rec Record, opts ...Option) *Store {
	s := &Store{
		rec:      rec,
		capacity: DefaultCapacity,
		now:      time.Now,
		newID:    func() string { return ksuid.New().String() },
	}
	for _, opt := range opts {
		opt.Apply(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Load reads both documents from the Record. Once it succeeds later calls are
// no-ops. Malformed documents are treated as absent. Entries recorded before
// the load are kept in front of the durable ones, and a ClearHistory before
// the load discards the durable history.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// load must be called with mu held.
func (s *Store) load(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	s.attempted = true

	stored, err := read[[]Entry](ctx, s, HistoryKey)
	if err != nil {
		return err
	}
	storedSaved, err := read[[]SavedQuery](ctx, s, SavedKey)
	if err != nil {
		return err
	}

	pending := len(s.history) > 0 || len(s.saved) > 0
	cleared := s.cleared
	if cleared {
		stored = nil
	}

	history := slices.Clone(s.history)
	for _, e := range stored {
		if !containsQuery(history, e.Request.Query) {
			history = append(history, e)
		}
	}
	if len(history) > s.capacity {
		history = history[:s.capacity]
	}
	s.history = history

	saved := storedSaved
	for _, q := range s.saved {
		if indexSaved(saved, q.Request) < 0 {
			saved = append(saved, q)
		}
	}
	s.saved = saved

	s.loaded = true
	s.cleared = false
	if cleared && len(s.history) == 0 {
		s.deleteHistory(ctx)
	} else if pending {
		s.persist(ctx, HistoryKey, s.history)
	}
	if pending {
		s.persist(ctx, SavedKey, s.saved)
	}
	return nil
}

// retryLoad loads the Store on behalf of a mutation made while it is not
// loaded. It does nothing until the first Load call so that callers decide
// when durable data is read.
func (s *Store) retryLoad(ctx context.Context) {
	if !s.attempted {
		return
	}
	if err := s.load(ctx); err != nil {
		s.logger.WarnContext(ctx, "history still unavailable; keeping change in memory", "error", err)
	}
}

// Loaded reports whether the initial load has completed.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// read decodes the document under key. A missing or malformed document
// yields the zero value.
func read[T any](ctx context.Context, s *Store, key string) (T, error) {
	var zero T
	data, ok, err := s.rec.Load(ctx, key)
	if err != nil {
		return zero, errors.Wrapf(err, "load %s", key)
	}
	if !ok || len(data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.logger.WarnContext(ctx, "discarding malformed record", "key", key, "error", err)
		return zero, nil
	}
	return v, nil
}

// RecordExecution prepends an entry for req, replacing any earlier entry with
// the same normalized query, and trims the log to capacity. A blank query is
// not recorded and yields the zero Entry.
func (s *Store) RecordExecution(ctx context.Context, req discovery.Request, counts map[discovery.Kind]int) Entry {
	req = req.Snapshot()
	if req.Query == "" {
		return Entry{}
	}

	entry := Entry{
		ID:      s.newID(),
		Request: req,
		Counts:  make(map[discovery.Kind]int, len(counts)),
		At:      s.now(),
	}
	for k, n := range counts {
		entry.Counts[k] = n
		entry.Total += n
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := textnorm.Normalize(req.Query)
	next := make([]Entry, 0, len(s.history)+1)
	next = append(next, entry)
	for _, e := range s.history {
		if textnorm.Normalize(e.Request.Query) != key {
			next = append(next, e)
		}
	}
	if len(next) > s.capacity {
		next = next[:s.capacity]
	}
	s.history = next

	s.persistHistory(ctx)
	return entry
}

// ClearHistory empties the log and deletes its durable record.
func (s *Store) ClearHistory(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = nil
	if !s.loaded {
		s.cleared = true
		s.retryLoad(ctx)
		return
	}
	s.deleteHistory(ctx)
}

// deleteHistory must be called with mu held.
func (s *Store) deleteHistory(ctx context.Context) {
	if err := s.rec.Delete(ctx, HistoryKey); err != nil {
		s.logger.WarnContext(ctx, "failed to delete history record", "error", err)
	}
}

// ToggleSaved removes the saved query with the same query text and scope as
// req and returns nil, or saves req and returns the new entry. An empty name
// defaults to the query text.
func (s *Store) ToggleSaved(ctx context.Context, req discovery.Request, name string) *SavedQuery {
	req = req.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := indexSaved(s.saved, req); i >= 0 {
		s.saved = slices.Delete(slices.Clone(s.saved), i, i+1)
		s.persistSaved(ctx)
		return nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = req.Query
	}
	q := SavedQuery{
		ID:      s.newID(),
		Name:    name,
		Request: req,
		Created: s.now(),
	}
	s.saved = append(slices.Clone(s.saved), q)
	s.persistSaved(ctx)
	return &q
}

// IsSaved reports whether a query with the same text and scope as req is saved.
func (s *Store) IsSaved(req discovery.Request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexSaved(s.saved, req.Snapshot()) >= 0
}

// RenameSaved renames the saved query with id. It reports whether it existed.
func (s *Store) RenameSaved(ctx context.Context, id, name string) bool {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.saved {
		if s.saved[i].ID != id {
			continue
		}
		next := slices.Clone(s.saved)
		if name == "" {
			name = next[i].Request.Query
		}
		next[i].Name = name
		s.saved = next
		s.persistSaved(ctx)
		return true
	}
	return false
}

// DeleteSaved removes the saved query with id. It reports whether it existed.
func (s *Store) DeleteSaved(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.saved, func(q SavedQuery) bool { return q.ID == id })
	if i < 0 {
		return false
	}
	s.saved = slices.Delete(slices.Clone(s.saved), i, i+1)
	s.persistSaved(ctx)
	return true
}

// History returns the log, most recent first.
func (s *Store) History() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}

// Saved returns the saved queries in creation order.
func (s *Store) Saved() []SavedQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.saved)
}

// persistHistory and persistSaved write one document, or retry the load when
// it has not succeeded yet. A successful load writes both documents itself.
func (s *Store) persistHistory(ctx context.Context) {
	if !s.loaded {
		s.retryLoad(ctx)
		return
	}
	s.persist(ctx, HistoryKey, s.history)
}

func (s *Store) persistSaved(ctx context.Context) {
	if !s.loaded {
		s.retryLoad(ctx)
		return
	}
	s.persist(ctx, SavedKey, s.saved)
}

// persist must be called with mu held and the Store loaded.
func (s *Store) persist(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to encode record", "key", key, "error", err)
		return
	}
	if err := s.rec.Save(ctx, key, data); err != nil {
		s.logger.WarnContext(ctx, "failed to persist record", "key", key, "error", err)
	}
}

func containsQuery(entries []Entry, query string) bool {
	key := textnorm.Normalize(query)
	return slices.ContainsFunc(entries, func(e Entry) bool {
		return textnorm.Normalize(e.Request.Query) == key
	})
}

func indexSaved(saved []SavedQuery, req discovery.Request) int {
	return slices.IndexFunc(saved, func(q SavedQuery) bool {
		return q.Request.Query == req.Query && q.Request.Scope == req.Scope
	})
}
