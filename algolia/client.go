// Package algolia reads and writes discovery documents in an Algolia index.
// Credentials are resolved lazily on first use.
package algolia

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Secrets holds the Algolia application credentials.
type Secrets struct {
	AppID       string `json:"app_id"`
	WriteApiKey string `json:"write_api_key"`
}

// FetchSecrets retrieves Algolia credentials.
type FetchSecrets func() (Secrets, error)

// StaticSecrets returns fixed credentials.
func StaticSecrets(appID, writeApiKey string) FetchSecrets {
	return func() (Secrets, error) {
		return Secrets{AppID: appID, WriteApiKey: writeApiKey}, nil
	}
}

// EnvSecrets reads ALGOLIA_APP_ID and ALGOLIA_API_KEY.
func EnvSecrets() FetchSecrets {
	return func() (Secrets, error) {
		appID := os.Getenv("ALGOLIA_APP_ID")
		if appID == "" {
			return Secrets{}, errors.New("ALGOLIA_APP_ID environment variable is not set")
		}
		apiKey := os.Getenv("ALGOLIA_API_KEY")
		if apiKey == "" {
			return Secrets{}, errors.New("ALGOLIA_API_KEY environment variable is not set")
		}
		return Secrets{AppID: appID, WriteApiKey: apiKey}, nil
	}
}

// Index is the part of an Algolia index the package uses.
type Index interface {
	Search(query string, opts ...interface{}) (search.QueryRes, error)
	SaveObject(object interface{}, opts ...interface{}) (search.SaveObjectRes, error)
	SaveObjects(objects interface{}, opts ...interface{}) (search.GroupBatchRes, error)
	DeleteObject(objectID string, opts ...interface{}) (search.DeleteTaskRes, error)
	DeleteObjects(objectIDs []string, opts ...interface{}) (search.BatchRes, error)
}

// Client opens indices with lazily fetched credentials and traces every call.
type Client struct {
	openIndex func(name string) (Index, error)
	tracer    trace.Tracer
}

// NewClient creates a client. fetchSecrets runs at most once.
func NewClient(fetchSecrets FetchSecrets) *Client {
	getClient := sync.OnceValues(func() (*search.Client, error) {
		secrets, err := fetchSecrets()
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch secrets")
		}
		if secrets.AppID == "" {
			return nil, errors.New("AppID is empty")
		}
		if secrets.WriteApiKey == "" {
			return nil, errors.New("WriteApiKey is empty")
		}
		return search.NewClient(secrets.AppID, secrets.WriteApiKey), nil
	})

	return newClient(func(name string) (Index, error) {
		c, err := getClient()
		if err != nil {
			return nil, err
		}
		return c.InitIndex(name), nil
	})
}

func newClient(openIndex func(string) (Index, error)) *Client {
	return &Client{
		openIndex: openIndex,
		tracer:    otel.Tracer("discovery-algolia"),
	}
}

func (c *Client) start(ctx context.Context, name, indexName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("algolia.index_name", indexName))
	return c.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func fail(span trace.Span, err error, msg string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return err
}

// SaveObject upserts one document. The object must carry an objectID.
func (c *Client) SaveObject(ctx context.Context, indexName string, object map[string]any) error {
	_, span := c.start(ctx, "algolia.save_object", indexName)
	defer span.End()

	if id, ok := object["objectID"].(string); ok {
		span.SetAttributes(attribute.String("algolia.object_id", id))
	}

	index, err := c.openIndex(indexName)
	if err != nil {
		return fail(span, err, "failed to get Algolia client")
	}
	if _, err := index.SaveObject(object); err != nil {
		return fail(span, errors.Wrapf(err, "failed to save object to Algolia index %s", indexName),
			fmt.Sprintf("failed to save object to index %s", indexName))
	}

	span.SetStatus(codes.Ok, "object saved successfully")
	return nil
}

// DeleteObject removes one document.
func (c *Client) DeleteObject(ctx context.Context, indexName, objectID string) error {
	_, span := c.start(ctx, "algolia.delete_object", indexName, attribute.String("algolia.object_id", objectID))
	defer span.End()

	index, err := c.openIndex(indexName)
	if err != nil {
		return fail(span, err, "failed to get Algolia client")
	}
	if _, err := index.DeleteObject(objectID); err != nil {
		return fail(span, errors.Wrapf(err, "failed to delete object from Algolia index %s", indexName),
			fmt.Sprintf("failed to delete object from index %s", indexName))
	}

	span.SetStatus(codes.Ok, "object deleted successfully")
	return nil
}

// BatchSaveObjects upserts objects in one batch.
func (c *Client) BatchSaveObjects(ctx context.Context, indexName string, objects []map[string]any) error {
	if len(objects) == 0 {
		return nil
	}

	_, span := c.start(ctx, "algolia.batch_save_objects", indexName, attribute.Int("algolia.object_count", len(objects)))
	defer span.End()

	index, err := c.openIndex(indexName)
	if err != nil {
		return fail(span, err, "failed to get Algolia client")
	}
	if _, err := index.SaveObjects(objects); err != nil {
		return fail(span, errors.Wrapf(err, "failed to batch save objects to Algolia index %s", indexName),
			fmt.Sprintf("failed to batch save %d objects to index %s", len(objects), indexName))
	}

	span.SetStatus(codes.Ok, fmt.Sprintf("batch saved %d objects successfully", len(objects)))
	return nil
}

// BatchDeleteObjects removes objects in one batch.
func (c *Client) BatchDeleteObjects(ctx context.Context, indexName string, objectIDs []string) error {
	if len(objectIDs) == 0 {
		return nil
	}

	_, span := c.start(ctx, "algolia.batch_delete_objects", indexName, attribute.Int("algolia.object_count", len(objectIDs)))
	defer span.End()

	index, err := c.openIndex(indexName)
	if err != nil {
		return fail(span, err, "failed to get Algolia client")
	}
	if _, err := index.DeleteObjects(objectIDs); err != nil {
		return fail(span, errors.Wrapf(err, "failed to batch delete objects from Algolia index %s", indexName),
			fmt.Sprintf("failed to batch delete %d objects from index %s", len(objectIDs), indexName))
	}

	span.SetStatus(codes.Ok, fmt.Sprintf("batch deleted %d objects successfully", len(objectIDs)))
	return nil
}
