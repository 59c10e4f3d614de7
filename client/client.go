// Package client is a thin ClickHouse wrapper used to run compiled SiftQL
// statements and to read table metadata for the schema collaborator. It
// speaks the native protocol via clickhouse-go.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	siftql "github.com/logsift/siftql-go"
)

// DefaultQueryTimeout is the max_execution_time applied when Options does
// not specify one, in seconds.
const DefaultQueryTimeout = 60

// Options configures a ClickHouse connection.
type Options struct {
	// Host is the server address. A missing port defaults to the native
	// protocol port 9000.
	// REQUIRED.
	Host string

	// Database is the database to authenticate against.
	// OPTIONAL.
	Database string

	// Username and Password authenticate the connection.
	// OPTIONAL.
	Username string
	Password string

	// QueryTimeout is the max_execution_time in seconds applied to every
	// query.
	// OPTIONAL: Defaults to DefaultQueryTimeout.
	QueryTimeout int

	// Logger for connection and query logging.
	// OPTIONAL: Uses slog.Default() if nil.
	Logger *slog.Logger
}

func (o *Options) normalize() error {
	if o.Host == "" {
		return fmt.Errorf("client: host is required")
	}
	if !strings.Contains(o.Host, ":") {
		o.Host += ":9000"
	}
	if o.QueryTimeout <= 0 {
		o.QueryTimeout = DefaultQueryTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return nil
}

// Client is a ClickHouse connection handle. Safe for concurrent use.
type Client struct {
	conn    driver.Conn
	timeout int
	log     *slog.Logger
}

// Connect opens a native-protocol connection. The connection is not pinged;
// call Ping to verify reachability.
func Connect(opts Options) (*Client, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{opts.Host},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": opts.QueryTimeout,
		},
		DialTimeout: 10 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		Protocol: clickhouse.Native,
	})
	if err != nil {
		return nil, fmt.Errorf("creating clickhouse connection: %w", err)
	}

	opts.Logger.Debug("clickhouse connection created",
		"host", opts.Host,
		"database", opts.Database,
	)

	return &Client{
		conn:    conn,
		timeout: opts.QueryTimeout,
		log:     opts.Logger,
	}, nil
}

// Ping verifies the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// ColumnInfo describes one column of a result set or table.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Result holds the rows and column metadata of one query.
type Result struct {
	Columns []ColumnInfo
	Rows    []map[string]any
	Elapsed time.Duration
}

// Query runs a SELECT statement and materializes every row. Column values
// are scanned into their driver-native Go types via reflection, so callers
// get time.Time for DateTime columns, maps for Map columns, and so on.
func (c *Client) Query(ctx context.Context, query string) (*Result, error) {
	start := time.Now()

	ctx = clickhouse.Context(ctx, clickhouse.WithSettings(clickhouse.Settings{
		"max_execution_time": c.timeout,
	}))

	rows, err := c.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	columnTypes := rows.ColumnTypes()
	columns := make([]ColumnInfo, len(columnTypes))
	scanDest := make([]any, len(columnTypes))
	for i, ct := range columnTypes {
		columns[i] = ColumnInfo{
			Name: ct.Name(),
			Type: ct.DatabaseTypeName(),
		}
		scanDest[i] = reflect.New(ct.ScanType()).Interface()
	}

	result := &Result{Columns: columns, Rows: make([]map[string]any, 0)}
	for rows.Next() {
		if err := rows.Scan(scanDest...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col.Name] = reflect.ValueOf(scanDest[i]).Elem().Interface()
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	result.Elapsed = time.Since(start)
	c.log.Debug("query complete",
		"rows", len(result.Rows),
		"duration_ms", result.Elapsed.Milliseconds(),
	)
	return result, nil
}

// TableSchema reads a table's columns from system.columns, in declaration
// order, and classifies them for the compiler.
func (c *Client) TableSchema(ctx context.Context, database, table string) (*siftql.Schema, error) {
	rows, err := c.conn.Query(ctx, `
		SELECT name, type
		FROM system.columns
		WHERE database = ? AND table = ?
		ORDER BY position
	`, database, table)
	if err != nil {
		return nil, fmt.Errorf("querying columns: %w", err)
	}
	defer rows.Close()

	types := make(map[string]string)
	var order []string
	for rows.Next() {
		var name, storeType string
		if err := rows.Scan(&name, &storeType); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		types[name] = storeType
		order = append(order, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating columns: %w", err)
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("table %s.%s has no columns or does not exist", database, table)
	}

	return siftql.SchemaFromStoreTypes(types, order), nil
}
