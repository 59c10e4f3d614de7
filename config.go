package siftql

import (
	"errors"
	"log/slog"
)

// Dialect selects the SQL dialect generated by the compiler.
type Dialect string

const (
	// DialectClickHouse targets ClickHouse SQL. This is the default.
	DialectClickHouse Dialect = "clickhouse"

	// DialectDuckDB targets DuckDB SQL.
	DialectDuckDB Dialect = "duckdb"
)

// Config contains configuration for a Compiler.
type Config struct {
	// Table is the fully qualified table queries run against.
	// REQUIRED: "database.table" for ClickHouse; DuckDB also accepts a
	// bare table name.
	Table string

	// TimestampColumn is the designated timestamp column used for the
	// injected time-range condition and the default sort order.
	// OPTIONAL: Defaults to "timestamp".
	TimestampColumn string

	// Timezone renders time-range bounds for ClickHouse toDateTime.
	// OPTIONAL: Defaults to "UTC".
	Timezone string

	// DefaultLimit is the row limit injected when a request does not
	// specify one.
	// OPTIONAL: Defaults to 100.
	DefaultLimit int

	// Dialect selects the generated SQL dialect.
	// OPTIONAL: Defaults to DialectClickHouse.
	Dialect Dialect

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	Logger *slog.Logger
}

// Standard errors returned by the siftql package.
var (
	// ErrInvalidConfig indicates Config validation failed.
	ErrInvalidConfig = errors.New("invalid compiler config")

	// ErrInvalidIdentifier indicates a table or column name failed
	// validation.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrInvalidTimeRange indicates missing or inverted time bounds.
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrInvalidSchema indicates schema input could not be decoded.
	ErrInvalidSchema = errors.New("invalid schema")
)
