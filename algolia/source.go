package algolia

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/letmevibethatforyou/discovery"
)

const (
	defaultHitsPerPage = 500
	maxPages           = 50
)

// Source implements discovery.DataSource over an index holding documents
// written by EncodeDocument. Every kind is read with an empty query and a
// kind filter, page by page.
type Source struct {
	client      *Client
	indexName   string
	hitsPerPage int
	scope       []discovery.Expression
	logger      *slog.Logger
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithHitsPerPage sets the page size used while reading a kind.
func WithHitsPerPage(n int) SourceOption {
	return func(s *Source) {
		if n > 0 {
			s.hitsPerPage = n
		}
	}
}

// WithScope restricts every fetch with additional index-side filters.
func WithScope(exprs ...discovery.Expression) SourceOption {
	return func(s *Source) {
		s.scope = append(s.scope, exprs...)
	}
}

// WithLogger sets the logger skipped records are reported to.
func WithLogger(l *slog.Logger) SourceOption {
	return func(s *Source) {
		s.logger = l
	}
}

// NewSource creates a data source reading from indexName.
func NewSource(client *Client, indexName string, opts ...SourceOption) *Source {
	s := &Source{
		client:      client,
		indexName:   indexName,
		hitsPerPage: defaultHitsPerPage,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Fetch implements discovery.DataSource.
func (s *Source) Fetch(ctx context.Context, kind discovery.Kind) ([]discovery.Entity, error) {
	ctx, span := s.client.start(ctx, "algolia.fetch", s.indexName, attribute.String("discovery.kind", string(kind)))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, fail(span, contextError(err), "context done")
	}

	index, err := s.client.openIndex(s.indexName)
	if err != nil {
		return nil, fail(span, errors.WithSecondaryError(
			discovery.ErrBackendUnavailable,
			errors.Wrap(err, "failed to get Algolia client"),
		), "failed to get Algolia client")
	}

	filters := FilterString(append([]discovery.Expression{discovery.Eq(discovery.FieldKind, kind)}, s.scope...)...)

	var entities []discovery.Entity
	for page := 0; page < maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, fail(span, contextError(err), "context done")
		}

		res, err := index.Search("", opt.Filters(filters), opt.HitsPerPage(s.hitsPerPage), opt.Page(page))
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return nil, fail(span, contextError(err), "context done")
			}
			return nil, fail(span, errors.WithSecondaryError(
				discovery.ErrBackendUnavailable,
				errors.Wrapf(err, "Algolia search failed"),
			), "search failed")
		}

		for _, hit := range res.Hits {
			e, err := decodeHit(kind, hit)
			if err != nil {
				s.logger.WarnContext(ctx, "skipping undecodable hit", "index", s.indexName, "kind", kind, "object_id", hit["objectID"], "error", err)
				continue
			}
			entities = append(entities, e)
		}

		if page+1 >= res.NbPages {
			break
		}
	}

	span.SetAttributes(attribute.Int("algolia.hit_count", len(entities)))
	span.SetStatus(codes.Ok, "fetched")
	return entities, nil
}

func decodeHit(kind discovery.Kind, hit map[string]interface{}) (discovery.Entity, error) {
	data, err := json.Marshal(hit)
	if err != nil {
		return nil, errors.WithSecondaryError(discovery.ErrInvalidRecord, err)
	}
	return discovery.DecodeEntity(kind, data)
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.WithSecondaryError(discovery.ErrTimeout, err)
	}
	return errors.WithSecondaryError(discovery.ErrCanceled, err)
}

// Upsert writes entities as searchable documents keyed by their ID.
func (s *Source) Upsert(ctx context.Context, entities ...discovery.Entity) error {
	objects := make([]map[string]any, 0, len(entities))
	for _, e := range entities {
		doc, err := ObjectFor(e)
		if err != nil {
			return err
		}
		objects = append(objects, doc)
	}
	return s.client.BatchSaveObjects(ctx, s.indexName, objects)
}

// ObjectID is the index object id of an entity. IDs are only unique per kind.
func ObjectID(kind discovery.Kind, id string) string {
	return string(kind) + ":" + id
}

// timeAttributes are the time-valued entity fields filters can range over.
// The index holds them as Unix seconds under the field name, next to the
// RFC3339 copy the entity decodes from.
var timeAttributes = []string{"created"}

// ObjectFor encodes e as an index object.
func ObjectFor(e discovery.Entity) (map[string]any, error) {
	doc, err := discovery.EncodeDocument(e)
	if err != nil {
		return nil, err
	}
	doc["objectID"] = ObjectID(e.EntityKind(), e.EntityID())
	for _, name := range timeAttributes {
		if v, ok := e.Field(name); ok {
			if t, ok := v.(time.Time); ok {
				doc[name] = t.Unix()
			}
		}
	}
	return doc, nil
}
