package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/urfave/cli/v2"

	"github.com/letmevibethatforyou/discovery"
	"github.com/letmevibethatforyou/discovery/internal/catalog"
	"github.com/letmevibethatforyou/discovery/internal/ddb"
)

// maxBatch is the DynamoDB BatchWriteItem limit.
const maxBatch = 25

// maxRetries bounds how often unprocessed items are resubmitted.
const maxRetries = 5

type batchWriter interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

func writeEntities(ctx context.Context, client batchWriter, tableName string, entities []discovery.Entity) error {
	requests := make([]types.WriteRequest, 0, len(entities))
	for _, e := range entities {
		record, err := ddb.RecordFor(e)
		if err != nil {
			return fmt.Errorf("failed to build record for %s %s: %w", e.EntityKind(), e.EntityID(), err)
		}
		item, err := ddb.MarshalRecord(record)
		if err != nil {
			return err
		}
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}

	for start := 0; start < len(requests); start += maxBatch {
		end := min(start+maxBatch, len(requests))
		if err := writeBatch(ctx, client, tableName, requests[start:end]); err != nil {
			return err
		}
		slog.InfoContext(ctx, "Wrote catalog batch", "from", start, "to", end, "table", tableName)
	}
	return nil
}

func writeBatch(ctx context.Context, client batchWriter, tableName string, batch []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{tableName: batch}
	for attempt := 0; len(pending[tableName]) > 0; attempt++ {
		if attempt == maxRetries {
			return fmt.Errorf("%d items still unprocessed after %d attempts", len(pending[tableName]), maxRetries)
		}
		out, err := client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return fmt.Errorf("failed to batch write items to DynamoDB: %w", err)
		}
		pending = out.UnprocessedItems
		if pending == nil {
			break
		}
	}
	return nil
}

func runAction(c *cli.Context) error {
	ctx := c.Context
	env := c.String("env")
	tableName := c.String("table-name")
	count := c.Int("count")
	seed := c.Uint64("seed")

	slog.InfoContext(ctx, "Starting catalog generator",
		"environment", env,
		"table", tableName,
		"per_kind", count,
		"seed", seed,
	)

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg)
	entities := catalog.Generate(seed, count)
	if err := writeEntities(ctx, client, tableName, entities); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Successfully generated and inserted catalog", "count", len(entities), "table", tableName)
	return nil
}

func main() {
	// Configure JSON logging for AWS environments
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	app := &cli.App{
		Name:  "generator",
		Usage: "Generate a synthetic discovery catalog and insert it into DynamoDB",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "env",
				Aliases:  []string{"e"},
				Usage:    "Environment name",
				EnvVars:  []string{"ENVIRONMENT"},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "table-name",
				Aliases:  []string{"t"},
				Usage:    "DynamoDB table name",
				EnvVars:  []string{"TABLE_NAME"},
				Required: true,
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"c"},
				Usage:   "Number of entities to generate per kind",
				Value:   10,
			},
			&cli.Uint64Flag{
				Name:    "seed",
				Usage:   "Catalog seed; the same seed yields the same catalog",
				EnvVars: []string{"CATALOG_SEED"},
				Value:   catalog.DefaultSeed,
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}
