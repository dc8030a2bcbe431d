package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/letmevibethatforyou/discovery"
	"github.com/letmevibethatforyou/discovery/execution"
	"github.com/letmevibethatforyou/discovery/history"
	"github.com/letmevibethatforyou/discovery/internal/catalog"
	"github.com/letmevibethatforyou/discovery/leaderboard"
	"github.com/letmevibethatforyou/discovery/suggest"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search every entity kind and record the search in history",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Query string to search for; positional arg is a fallback",
			},
			&cli.StringFlag{
				Name:  "scope",
				Usage: "Entity tab the search is issued from: all, person, work, post, group or organization",
				Value: string(discovery.ScopeAll),
			},
			&cli.StringFlag{
				Name:  "sort",
				Usage: "Sort mode: relevance or newest",
				Value: string(discovery.SortRelevance),
			},
			&cli.StringSliceFlag{
				Name:  "filter",
				Usage: "Filter in kind.key=value format, e.g. work.status=ongoing; repeatable",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Maximum number of results shown per kind",
				Value:   defaultLimit,
			},
		},
		Action: withEnv(runSearch),
	}
}

func runSearch(c *cli.Context, e *env) error {
	ctx := c.Context

	opts := []discovery.RequestOption{
		discovery.WithScope(discovery.ParseScope(c.String("scope"))),
		discovery.WithSort(discovery.ParseSortMode(c.String("sort"))),
	}
	filters, err := parseFilters(c.StringSlice("filter"))
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}
	opts = append(opts, filters...)
	req := discovery.NewRequest(queryArg(c), opts...)

	limit := c.Int("limit")
	if limit <= 0 {
		limit = defaultLimit
	}

	executor := execution.New(e.source,
		execution.WithTimeout(e.timeout),
		execution.OnCommit(func(ctx context.Context, snap execution.Snapshot) {
			if snap.Err == nil {
				e.store.RecordExecution(ctx, snap.Request, snap.Results.Counts())
			}
		}),
	)

	snap, err := executor.Execute(ctx, req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return printJSON(c, searchPayload(snap, limit))
}

type searchOutput struct {
	State    execution.State              `json:"state"`
	Query    string                       `json:"query"`
	Scope    discovery.Scope              `json:"scope"`
	Sort     discovery.SortMode           `json:"sort"`
	TookMS   int64                        `json:"took_ms"`
	Total    int                          `json:"total"`
	Counts   map[discovery.Kind]int       `json:"counts"`
	TopMatch *topMatch                    `json:"top_match,omitempty"`
	Hits     map[discovery.Kind][]summary `json:"hits"`
}

type topMatch struct {
	Kind  discovery.Kind `json:"kind"`
	ID    string         `json:"id"`
	Label string         `json:"label"`
}

type summary struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func searchPayload(snap execution.Snapshot, limit int) searchOutput {
	res := snap.Results
	out := searchOutput{
		State:  snap.State,
		Query:  snap.Request.Query,
		Scope:  snap.Request.Scope,
		Sort:   snap.Request.Sort,
		TookMS: res.Took.Milliseconds(),
		Total:  res.Total,
		Counts: res.Counts(),
		Hits:   make(map[discovery.Kind][]summary, len(discovery.Kinds)),
	}
	if res.TopMatch != nil {
		out.TopMatch = &topMatch{Kind: res.TopMatch.EntityKind(), ID: res.TopMatch.EntityID(), Label: res.TopMatch.Label()}
	}

	kinds := discovery.Kinds
	if scope := snap.Request.Scope; scope != discovery.ScopeAll {
		kinds = []discovery.Kind{discovery.Kind(scope)}
	}
	for _, kind := range kinds {
		items := res.Items(kind)
		shown := make([]summary, 0, min(limit, len(items)))
		for _, ent := range items[:min(limit, len(items))] {
			shown = append(shown, summary{ID: ent.EntityID(), Label: ent.Label()})
		}
		out.Hits[kind] = shown
	}
	return out
}

func suggestCommand() *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "Show suggestions for a partial query",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Partial query; positional arg is a fallback",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Maximum number of suggestions, including the search hint",
				Value:   8,
			},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			items := suggest.Build(queryArg(c), e.store.History(), e.store.Saved(), catalog.Trending(), e.titles(c.Context), c.Int("limit"))
			return printJSON(c, items)
		}),
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent searches",
		Action: withEnv(func(c *cli.Context, e *env) error {
			return printJSON(c, nonNil(e.store.History()))
		}),
		Subcommands: []*cli.Command{
			{
				Name:  "clear",
				Usage: "Forget every recent search",
				Action: withEnv(func(c *cli.Context, e *env) error {
					e.store.ClearHistory(c.Context)
					return printJSON(c, []history.Entry{})
				}),
			},
		},
	}
}

func savedCommand() *cli.Command {
	return &cli.Command{
		Name:  "saved",
		Usage: "List and manage saved queries",
		Action: withEnv(func(c *cli.Context, e *env) error {
			return printJSON(c, nonNil(e.store.Saved()))
		}),
		Subcommands: []*cli.Command{
			{
				Name:      "toggle",
				Usage:     "Save a query, or unsave it when it is already saved",
				ArgsUsage: "[query]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Query to toggle; positional arg is a fallback"},
					&cli.StringFlag{Name: "scope", Usage: "Entity tab of the query", Value: string(discovery.ScopeAll)},
					&cli.StringFlag{Name: "name", Usage: "Display name; defaults to the query"},
				},
				Action: withEnv(func(c *cli.Context, e *env) error {
					query := queryArg(c)
					if query == "" {
						return fmt.Errorf("query cannot be empty")
					}
					req := discovery.NewRequest(query, discovery.WithScope(discovery.ParseScope(c.String("scope"))))
					saved := e.store.ToggleSaved(c.Context, req, c.String("name"))
					return printJSON(c, struct {
						Saved *history.SavedQuery `json:"saved"`
					}{saved})
				}),
			},
			{
				Name:      "rename",
				Usage:     "Rename a saved query",
				ArgsUsage: "<id> <name>",
				Action: withEnv(func(c *cli.Context, e *env) error {
					if c.NArg() < 1 {
						return fmt.Errorf("missing saved query id")
					}
					name := strings.Join(c.Args().Tail(), " ")
					if !e.store.RenameSaved(c.Context, c.Args().First(), name) {
						return fmt.Errorf("no saved query %q", c.Args().First())
					}
					return printJSON(c, e.store.Saved())
				}),
			},
			{
				Name:      "delete",
				Usage:     "Delete a saved query",
				ArgsUsage: "<id>",
				Action: withEnv(func(c *cli.Context, e *env) error {
					if !e.store.DeleteSaved(c.Context, c.Args().First()) {
						return fmt.Errorf("no saved query %q", c.Args().First())
					}
					return printJSON(c, nonNil(e.store.Saved()))
				}),
			},
		},
	}
}

func leaderboardCommand() *cli.Command {
	def := leaderboard.DefaultSelector()
	return &cli.Command{
		Name:  "leaderboard",
		Usage: "Show a ranked board of one entity kind",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Usage: "Entity kind to rank", Value: string(def.Category)},
			&cli.StringFlag{Name: "metric", Usage: "popularity, engagement or growth", Value: string(def.Metric)},
			&cli.StringFlag{Name: "range", Usage: "day, week, month, year or all", Value: string(def.Range)},
			&cli.StringFlag{Name: "sort", Usage: "top, rising or falling", Value: string(def.Sort)},
			&cli.StringSliceFlag{Name: "filter", Usage: "Filter in key=value format, e.g. status=ongoing; repeatable"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum number of rows", Value: defaultLimit},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			values, err := parseValues(c.StringSlice("filter"))
			if err != nil {
				return fmt.Errorf("invalid filter: %w", err)
			}
			sel := leaderboard.Selector{
				Category: discovery.Kind(c.String("category")),
				Metric:   leaderboard.Metric(c.String("metric")),
				Range:    leaderboard.Range(c.String("range")),
				Sort:     leaderboard.Sort(c.String("sort")),
				Filters:  values,
			}.Normalize()

			items := e.boards.Get(sel)
			if limit := c.Int("limit"); limit > 0 && len(items) > limit {
				items = items[:limit]
			}
			return printJSON(c, struct {
				Key   string                 `json:"key"`
				Items []leaderboard.RankItem `json:"items"`
			}{sel.Key(), items})
		}),
	}
}

func queryArg(c *cli.Context) string {
	query := strings.TrimSpace(c.String("query"))
	if query == "" && c.NArg() > 0 {
		query = strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	}
	return query
}

// parseFilters reads kind.key=value filters into request options.
func parseFilters(raw []string) ([]discovery.RequestOption, error) {
	options := make([]discovery.RequestOption, 0, len(raw))
	for _, item := range raw {
		field, value, err := splitFilter(item)
		if err != nil {
			return nil, err
		}
		kindName, key, ok := strings.Cut(field, ".")
		if !ok || key == "" {
			return nil, fmt.Errorf("filter must be in kind.key=value format: %q", item)
		}
		kind, err := discovery.ParseKind(kindName)
		if err != nil {
			return nil, err
		}
		options = append(options, discovery.WithFilter(kind, key, value))
	}
	return options, nil
}

// parseValues reads key=value filters.
func parseValues(raw []string) (discovery.FilterValues, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	values := make(discovery.FilterValues, len(raw))
	for _, item := range raw {
		field, value, err := splitFilter(item)
		if err != nil {
			return nil, err
		}
		values[field] = value
	}
	return values, nil
}

func splitFilter(item string) (string, string, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return "", "", fmt.Errorf("filter cannot be empty")
	}
	field, value, ok := strings.Cut(item, "=")
	if !ok {
		return "", "", fmt.Errorf("filter must be in field=value format: %q", item)
	}
	field, value = strings.TrimSpace(field), strings.TrimSpace(value)
	if field == "" || value == "" {
		return "", "", fmt.Errorf("filter field and value must be non-empty: %q", item)
	}
	return field, value, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func printJSON(c *cli.Context, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(c.App.Writer, string(data))
	return err
}
