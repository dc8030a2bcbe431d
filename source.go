package discovery

import (
	"context"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// Catalog is a read-only, synchronous view with one ordered sequence of
// entities per kind. The search pipeline never mutates it.
type Catalog interface {
	Entities(kind Kind) []Entity
}

// DataSource is a possibly remote provider of entities.
type DataSource interface {
	// Fetch returns every entity of kind. It must honor ctx cancellation.
	Fetch(ctx context.Context, kind Kind) ([]Entity, error)
}

// DataSourceFunc is a function type that implements the DataSource interface.
// This allows using a function as a DataSource, similar to http.HandlerFunc.
type DataSourceFunc func(context.Context, Kind) ([]Entity, error)

// Fetch implements the DataSource interface for DataSourceFunc.
func (f DataSourceFunc) Fetch(ctx context.Context, kind Kind) ([]Entity, error) {
	return f(ctx, kind)
}

// StaticCatalog is an immutable in-memory Catalog.
type StaticCatalog map[Kind][]Entity

// Entities implements Catalog.
func (c StaticCatalog) Entities(kind Kind) []Entity {
	return c[kind]
}

// Fetch implements DataSource.
func (c StaticCatalog) Fetch(ctx context.Context, kind Kind) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c[kind], nil
}

// LoadCatalog fetches every kind from ds concurrently into a StaticCatalog.
// The first failure cancels the remaining fetches.
func LoadCatalog(ctx context.Context, ds DataSource) (StaticCatalog, error) {
	if c, ok := ds.(Catalog); ok {
		return snapshot(c), nil
	}

	results := make([][]Entity, len(Kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range Kinds {
		g.Go(func() error {
			entities, err := ds.Fetch(gctx, kind)
			if err != nil {
				return errors.Wrapf(err, "fetch %s", kind)
			}
			results[i] = entities
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, classify(ctx, err)
	}

	catalog := make(StaticCatalog, len(Kinds))
	for i, kind := range Kinds {
		catalog[kind] = results[i]
	}
	return catalog, nil
}

func snapshot(c Catalog) StaticCatalog {
	catalog := make(StaticCatalog, len(Kinds))
	for _, kind := range Kinds {
		catalog[kind] = c.Entities(kind)
	}
	return catalog
}

// classify maps a fetch failure onto the coded sentinels, keeping the cause.
func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrSuperseded), errors.Is(err, ErrTimeout),
		errors.Is(err, ErrCanceled), errors.Is(err, ErrBackendUnavailable):
		return err
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return errors.WithSecondaryError(ErrTimeout, err)
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return errors.WithSecondaryError(ErrCanceled, err)
	default:
		return errors.WithSecondaryError(ErrBackendUnavailable, err)
	}
}
