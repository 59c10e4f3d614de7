// Command siftql compiles SiftQL filter queries to SQL and optionally runs
// them against ClickHouse.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	siftql "github.com/logsift/siftql-go"
	"github.com/logsift/siftql-go/client"
)

func main() {
	cmd := rootCommand()
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:  "siftql",
		Usage: "compile SiftQL filter queries to SQL and run them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to TOML config file",
				Sources: cli.EnvVars("SIFTQL_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			compileCommand(),
			queryCommand(),
			schemaCommand(),
		},
	}
}

func setup(cmd *cli.Command) (*config, *slog.Logger, error) {
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return nil, nil, err
	}

	level := slog.LevelInfo
	if cmd.Bool("debug") || cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}

func compileCommand() *cli.Command {
	return &cli.Command{
		Name:      "compile",
		Usage:     "compile a SiftQL query and print the generated SQL",
		ArgsUsage: "[query]",
		Flags: append(timeFlags(),
			&cli.StringFlag{
				Name:  "schema",
				Usage: "path to a schema file (JSON or snapshot)",
			},
			&cli.StringFlag{
				Name:  "dialect",
				Usage: "SQL dialect: clickhouse or duckdb",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "maximum number of result rows",
			},
			&cli.BoolFlag{
				Name:  "sql",
				Usage: "treat the query as raw SQL",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			result, err := compileRequest(cmd, cfg, logger)
			if err != nil {
				return err
			}

			for _, d := range result.Diagnostics {
				fmt.Fprintln(os.Stderr, "diagnostic:", d.Error())
			}
			if !result.Valid {
				return fmt.Errorf("query rejected")
			}
			fmt.Println(result.SQL)
			return nil
		},
	}
}

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "compile a SiftQL query and execute it against ClickHouse",
		ArgsUsage: "[query]",
		Flags: append(timeFlags(),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "maximum number of result rows",
			},
			&cli.BoolFlag{
				Name:  "sql",
				Usage: "treat the query as raw SQL",
			},
			&cli.BoolFlag{
				Name:  "show-sql",
				Usage: "print the generated SQL before the results",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			ch, err := client.Connect(client.Options{
				Host:     cfg.Clickhouse.Host,
				Database: cfg.Clickhouse.Database,
				Username: cfg.Clickhouse.Username,
				Password: cfg.Clickhouse.Password,
				Logger:   logger,
			})
			if err != nil {
				return err
			}
			defer ch.Close()

			database, table, ok := strings.Cut(cfg.Query.Table, ".")
			if !ok {
				return fmt.Errorf("query.table must be database.table, got %q", cfg.Query.Table)
			}
			schema, err := ch.TableSchema(ctx, database, table)
			if err != nil {
				return err
			}

			result, err := compileWithSchema(cmd, cfg, logger, schema)
			if err != nil {
				return err
			}
			for _, d := range result.Diagnostics {
				fmt.Fprintln(os.Stderr, "diagnostic:", d.Error())
			}
			if !result.Valid {
				return fmt.Errorf("query rejected")
			}
			if cmd.Bool("show-sql") {
				fmt.Fprintln(os.Stderr, result.SQL)
			}

			res, err := ch.Query(ctx, result.SQL)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			for _, row := range res.Rows {
				if err := enc.Encode(row); err != nil {
					return err
				}
			}
			logger.Debug("query finished",
				"rows", len(res.Rows),
				"duration_ms", res.Elapsed.Milliseconds(),
			)
			return nil
		},
	}
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "fetch the table schema from ClickHouse and write a snapshot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "snapshot output path",
				Value:   "schema.snap",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			ch, err := client.Connect(client.Options{
				Host:     cfg.Clickhouse.Host,
				Database: cfg.Clickhouse.Database,
				Username: cfg.Clickhouse.Username,
				Password: cfg.Clickhouse.Password,
				Logger:   logger,
			})
			if err != nil {
				return err
			}
			defer ch.Close()

			database, table, ok := strings.Cut(cfg.Query.Table, ".")
			if !ok {
				return fmt.Errorf("query.table must be database.table, got %q", cfg.Query.Table)
			}
			schema, err := ch.TableSchema(ctx, database, table)
			if err != nil {
				return err
			}

			data, err := schema.Snapshot()
			if err != nil {
				return err
			}
			if err := os.WriteFile(cmd.String("out"), data, 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %d columns to %s\n", len(schema.Columns), cmd.String("out"))
			return nil
		},
	}
}

func timeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "since",
			Aliases: []string{"s"},
			Usage:   "relative time range (e.g. 15m, 1h, 24h)",
			Value:   "15m",
		},
		&cli.StringFlag{
			Name:  "from",
			Usage: "absolute start time (RFC 3339)",
		},
		&cli.StringFlag{
			Name:  "to",
			Usage: "absolute end time (RFC 3339)",
		},
	}
}

func compileRequest(cmd *cli.Command, cfg *config, logger *slog.Logger) (siftql.Result, error) {
	schema, err := loadSchema(cmd.String("schema"))
	if err != nil {
		return siftql.Result{}, err
	}
	return compileWithSchema(cmd, cfg, logger, schema)
}

func compileWithSchema(cmd *cli.Command, cfg *config, logger *slog.Logger, schema *siftql.Schema) (siftql.Result, error) {
	dialect := siftql.Dialect(cfg.Query.Dialect)
	if d := cmd.String("dialect"); d != "" {
		dialect = siftql.Dialect(d)
	}

	compiler, err := siftql.New(siftql.Config{
		Table:           cfg.Query.Table,
		TimestampColumn: cfg.Query.TimestampColumn,
		Timezone:        cfg.Query.Timezone,
		DefaultLimit:    cfg.Query.DefaultLimit,
		Dialect:         dialect,
		Logger:          logger,
	})
	if err != nil {
		return siftql.Result{}, err
	}

	tr, err := timeRange(cmd)
	if err != nil {
		return siftql.Result{}, err
	}

	return compiler.Compile(siftql.Request{
		Query:  strings.Join(cmd.Args().Slice(), " "),
		Schema: schema,
		Range:  tr,
		Limit:  int(cmd.Int("limit")),
		RawSQL: cmd.Bool("sql"),
	}), nil
}

// timeRange resolves --from/--to, falling back to --since relative to now.
func timeRange(cmd *cli.Command) (siftql.TimeRange, error) {
	now := time.Now()

	if from := cmd.String("from"); from != "" {
		start, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return siftql.TimeRange{}, fmt.Errorf("parsing --from: %w", err)
		}
		end := now
		if to := cmd.String("to"); to != "" {
			end, err = time.Parse(time.RFC3339, to)
			if err != nil {
				return siftql.TimeRange{}, fmt.Errorf("parsing --to: %w", err)
			}
		}
		return siftql.TimeRange{Start: start, End: end}, nil
	}

	d, err := time.ParseDuration(cmd.String("since"))
	if err != nil {
		return siftql.TimeRange{}, fmt.Errorf("parsing --since: %w", err)
	}
	return siftql.TimeRange{Start: now.Add(-d), End: now}, nil
}

// loadSchema reads a schema file in either supported format. JSON files
// start with '{'; anything else is treated as a snapshot.
func loadSchema(path string) (*siftql.Schema, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		return siftql.ParseSchemaJSON(data)
	}
	return siftql.SchemaFromSnapshot(data)
}
