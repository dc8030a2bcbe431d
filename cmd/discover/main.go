package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/urfave/cli/v2"

	"github.com/letmevibethatforyou/discovery"
	"github.com/letmevibethatforyou/discovery/algolia"
	"github.com/letmevibethatforyou/discovery/execution"
	"github.com/letmevibethatforyou/discovery/history"
	"github.com/letmevibethatforyou/discovery/history/dynamorecord"
	"github.com/letmevibethatforyou/discovery/history/sqliterecord"
	"github.com/letmevibethatforyou/discovery/inmemory"
	"github.com/letmevibethatforyou/discovery/internal/catalog"
	"github.com/letmevibethatforyou/discovery/leaderboard"
)

const (
	defaultHistoryFile = "discovery.db"
	defaultPerKind     = 25
	defaultLimit       = 10
)

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	if err := newApp().Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "discover",
		Usage: "Search, suggest and rank entities of the discovery catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "history-file",
				Usage:   "SQLite file holding search history and saved queries",
				EnvVars: []string{"DISCOVER_HISTORY_FILE"},
				Value:   defaultHistoryFile,
			},
			&cli.StringFlag{
				Name:    "history-table",
				Usage:   "DynamoDB table for history; takes precedence over the history file",
				EnvVars: []string{"DISCOVER_HISTORY_TABLE"},
			},
			&cli.StringFlag{
				Name:    "owner",
				Usage:   "Owner of the history records in the DynamoDB table",
				EnvVars: []string{"DISCOVER_OWNER", "USER"},
				Value:   "local",
			},
			&cli.Uint64Flag{
				Name:    "seed",
				Usage:   "Seed of the synthetic catalog",
				EnvVars: []string{"CATALOG_SEED"},
				Value:   catalog.DefaultSeed,
			},
			&cli.IntFlag{
				Name:    "per-kind",
				Usage:   "Number of synthetic entities per kind",
				EnvVars: []string{"CATALOG_PER_KIND"},
				Value:   defaultPerKind,
			},
			&cli.StringFlag{
				Name:    "index",
				Aliases: []string{"i"},
				Usage:   "Algolia index to read the catalog from instead of the synthetic one",
				EnvVars: []string{"ALGOLIA_INDEX"},
			},
			&cli.StringFlag{
				Name:    "algolia-secret-arn",
				Usage:   "ARN of AWS Secrets Manager secret containing Algolia credentials",
				EnvVars: []string{"ALGOLIA_SECRET_ARN"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "Timeout for one search execution",
				EnvVars: []string{"DISCOVER_TIMEOUT"},
				Value:   execution.DefaultTimeout,
			},
		},
		Commands: []*cli.Command{
			searchCommand(),
			suggestCommand(),
			historyCommand(),
			savedCommand(),
			leaderboardCommand(),
		},
	}
}

// env is what every command works against, built from the global flags.
type env struct {
	source  discovery.DataSource
	titles  func(context.Context) []string
	store   *history.Store
	boards  *leaderboard.Cache
	timeout time.Duration
	close   func() error
}

func setup(c *cli.Context) (*env, error) {
	ctx := c.Context

	timeout := c.Duration("timeout")
	if timeout <= 0 {
		slog.WarnContext(ctx, "timeout must be positive; using default", "timeout", timeout, "default", execution.DefaultTimeout)
		timeout = execution.DefaultTimeout
	}

	e := &env{timeout: timeout, boards: leaderboard.NewCache(leaderboard.DefaultCacheSize)}

	if err := e.openSource(c); err != nil {
		return nil, err
	}

	rec, closeRec, err := openRecord(c)
	if err != nil {
		return nil, err
	}
	e.close = closeRec

	e.store = history.New(rec)
	if err := e.store.Load(ctx); err != nil {
		slog.WarnContext(ctx, "history unavailable; retrying on the next change", "error", err)
	}
	return e, nil
}

func (e *env) openSource(c *cli.Context) error {
	ctx := c.Context
	indexName := strings.TrimSpace(c.String("index"))

	if indexName == "" {
		perKind := c.Int("per-kind")
		if perKind <= 0 {
			slog.WarnContext(ctx, "per-kind must be positive; using default", "per_kind", perKind, "default", defaultPerKind)
			perKind = defaultPerKind
		}

		src := inmemory.New()
		for _, entity := range catalog.Generate(c.Uint64("seed"), perKind) {
			src.Add(entity)
		}
		e.source = src
		e.titles = func(context.Context) []string { return src.Titles() }
		return nil
	}

	var fetchSecrets algolia.FetchSecrets
	if secretArn := strings.TrimSpace(c.String("algolia-secret-arn")); secretArn != "" {
		slog.InfoContext(ctx, "using AWS Secrets Manager for Algolia credentials", "secret_arn", secretArn)
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("failed to load AWS config: %w", err)
		}
		fetchSecrets = algolia.AWSSecretsFromARN(ctx, secretsmanager.NewFromConfig(cfg), secretArn)
	} else {
		fetchSecrets = algolia.EnvSecrets()
	}

	src := algolia.NewSource(algolia.NewClient(fetchSecrets), indexName)
	e.source = src
	e.titles = func(ctx context.Context) []string {
		cat, err := discovery.LoadCatalog(ctx, src)
		if err != nil {
			slog.WarnContext(ctx, "no titles for suggestions", "index", indexName, "error", err)
			return nil
		}
		return titlesOf(cat)
	}
	return nil
}

func openRecord(c *cli.Context) (history.Record, func() error, error) {
	ctx := c.Context

	if table := strings.TrimSpace(c.String("history-table")); table != "" {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		owner := c.String("owner")
		slog.InfoContext(ctx, "using DynamoDB history", "table", table, "owner", owner)
		return dynamorecord.New(dynamodb.NewFromConfig(cfg), table, owner), func() error { return nil }, nil
	}

	rec, err := sqliterecord.Open(c.String("history-file"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history file: %w", err)
	}
	return rec, rec.Close, nil
}

// titlesOf collects the labels the suggestion builder matches against.
func titlesOf(cat discovery.StaticCatalog) []string {
	var titles []string
	for _, kind := range discovery.Kinds {
		if kind == discovery.KindPost {
			continue
		}
		for _, e := range cat.Entities(kind) {
			titles = append(titles, e.Label())
		}
	}
	return titles
}

// withEnv wraps a command action with setup and teardown of the env.
func withEnv(action func(*cli.Context, *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := setup(c)
		if err != nil {
			return err
		}
		defer func() {
			if err := e.close(); err != nil {
				slog.WarnContext(c.Context, "failed to close history", "error", err)
			}
		}()
		return action(c, e)
	}
}
