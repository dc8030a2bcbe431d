package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/urfave/cli/v2"

	"github.com/letmevibethatforyou/discovery"
	"github.com/letmevibethatforyou/discovery/algolia"
	"github.com/letmevibethatforyou/discovery/internal/ddb"
)

// indexWriter is the part of the Algolia client the handler needs.
type indexWriter interface {
	SaveObject(ctx context.Context, indexName string, object map[string]any) error
	DeleteObject(ctx context.Context, indexName, objectID string) error
}

// Handler mirrors catalog table changes into the search index.
type Handler struct {
	indexName string
	index     indexWriter
	logger    *slog.Logger
}

func NewHandler(indexName string, index indexWriter, logger *slog.Logger) *Handler {
	return &Handler{
		indexName: indexName,
		index:     index,
		logger:    logger,
	}
}

func (h *Handler) HandleDynamoDBEvent(ctx context.Context, e events.DynamoDBEvent) error {
	h.logger.InfoContext(ctx, "Processing DynamoDB stream records", "record_count", len(e.Records))

	for _, record := range e.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.ErrorContext(ctx, "Error processing record", "event_id", record.EventID, "error", err)
			return err
		}
	}

	return nil
}

func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	switch events.DynamoDBOperationType(record.EventName) {
	case events.DynamoDBOperationTypeInsert, events.DynamoDBOperationTypeModify:
		if record.Change.NewImage == nil {
			h.logger.WarnContext(ctx, "No new image for insert/modify operation, skipping record")
			return nil
		}

		row, ok := h.parse(ctx, record.Change.NewImage)
		if !ok {
			return nil
		}

		entity, err := row.Entity()
		if err != nil {
			h.logger.WarnContext(ctx, "Undecodable catalog row, skipping", "id", row.ID, "kind", row.Kind, "error", err)
			return nil
		}
		return h.handleUpsert(ctx, entity)

	case events.DynamoDBOperationTypeRemove:
		row, ok := h.parse(ctx, record.Change.Keys)
		if !ok {
			return nil
		}
		if err := row.Validate(); err != nil {
			h.logger.WarnContext(ctx, "Invalid keys in delete record, skipping", "error", err)
			return nil
		}
		return h.handleDelete(ctx, algolia.ObjectID(row.Kind, row.ID))

	default:
		h.logger.InfoContext(ctx, "Ignoring event type", "event_type", record.EventName)
		return nil
	}
}

func (h *Handler) parse(ctx context.Context, image map[string]events.DynamoDBAttributeValue) (ddb.Record, bool) {
	item, err := ddb.FromStreamImage(image)
	if err != nil {
		h.logger.WarnContext(ctx, "Failed to convert stream image, skipping", "error", err)
		return ddb.Record{}, false
	}
	row, err := ddb.UnmarshalRecord(item)
	if err != nil {
		h.logger.WarnContext(ctx, "Failed to unmarshal record, skipping", "error", err)
		return ddb.Record{}, false
	}
	return row, true
}

func (h *Handler) handleUpsert(ctx context.Context, entity discovery.Entity) error {
	object, err := algolia.ObjectFor(entity)
	if err != nil {
		h.logger.WarnContext(ctx, "Failed to encode entity, skipping", "id", entity.EntityID(), "kind", entity.EntityKind(), "error", err)
		return nil
	}

	h.logger.InfoContext(ctx, "Saving object to Algolia", "object_id", object["objectID"], "index", h.indexName)
	return h.index.SaveObject(ctx, h.indexName, object)
}

func (h *Handler) handleDelete(ctx context.Context, objectID string) error {
	h.logger.InfoContext(ctx, "Deleting object from Algolia", "object_id", objectID, "index", h.indexName)
	return h.index.DeleteObject(ctx, h.indexName, objectID)
}

func main() {
	app := &cli.App{
		Name:  "catalog-sync",
		Usage: "Mirror catalog table changes into the Algolia index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "index-name",
				Usage:    "Algolia index holding catalog documents",
				EnvVars:  []string{"ALGOLIA_INDEX_NAME"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Environment name for AWS Secrets Manager (takes precedence over API key/ID flags)",
				EnvVars: []string{"ENV", "ENVIRONMENT"},
			},
			&cli.StringFlag{
				Name:    "algolia-app-id",
				Usage:   "Algolia application ID",
				EnvVars: []string{"ALGOLIA_APP_ID"},
			},
			&cli.StringFlag{
				Name:    "algolia-api-key",
				Usage:   "Algolia API key",
				EnvVars: []string{"ALGOLIA_API_KEY"},
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	ctx := c.Context
	indexName := c.String("index-name")
	env := c.String("env")
	algoliaAppID := c.String("algolia-app-id")
	algoliaAPIKey := c.String("algolia-api-key")

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger.InfoContext(ctx, "Starting catalog sync", "index", indexName, "environment", env)

	var fetchSecrets algolia.FetchSecrets
	switch {
	case env != "":
		logger.InfoContext(ctx, "Using AWS Secrets Manager for credentials", "environment", env)
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to load AWS config", "error", err)
			return err
		}
		fetchSecrets = algolia.AWSSecrets(ctx, secretsmanager.NewFromConfig(cfg), env)
	case algoliaAppID != "" && algoliaAPIKey != "":
		logger.InfoContext(ctx, "Using static credentials from flags")
		fetchSecrets = algolia.StaticSecrets(algoliaAppID, algoliaAPIKey)
	default:
		logger.InfoContext(ctx, "Using environment variables for credentials")
		fetchSecrets = algolia.EnvSecrets()
	}

	handler := NewHandler(indexName, algolia.NewClient(fetchSecrets), logger)

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		logger.InfoContext(ctx, "Running in Lambda environment")
		lambda.Start(handler.HandleDynamoDBEvent)
	} else {
		logger.InfoContext(ctx, "Function cannot run outside of AWS Lambda environment")
	}

	return nil
}
