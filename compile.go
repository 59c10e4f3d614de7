package siftql

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/logsift/siftql-go/internal/recovery"
	"github.com/logsift/siftql-go/ql"
)

// Identifier shapes accepted for configured table and column names. These
// are validated up front so generated statements never need to defend
// against hostile configuration.
var (
	columnNamePattern = regexp.MustCompile(`^@?[a-zA-Z_][a-zA-Z0-9_]*$`)
	tableNamePattern  = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)
)

// Compiler turns SiftQL filter text into complete, executable SQL
// statements for one configured table and dialect. A Compiler is immutable
// after New and safe for concurrent use.
type Compiler struct {
	cfg Config
	loc *time.Location
	log *slog.Logger
}

// New validates cfg, applies defaults, and returns a ready Compiler.
func New(cfg Config) (*Compiler, error) {
	if cfg.TimestampColumn == "" {
		cfg.TimestampColumn = "timestamp"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 100
	}
	if cfg.Dialect == "" {
		cfg.Dialect = DialectClickHouse
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	switch cfg.Dialect {
	case DialectClickHouse, DialectDuckDB:
	default:
		return nil, fmt.Errorf("%w: unknown dialect %q", ErrInvalidConfig, cfg.Dialect)
	}

	if cfg.Table == "" {
		return nil, fmt.Errorf("%w: table is required", ErrInvalidConfig)
	}
	if !tableNamePattern.MatchString(cfg.Table) {
		return nil, fmt.Errorf("%w: table %q", ErrInvalidIdentifier, cfg.Table)
	}
	if !columnNamePattern.MatchString(cfg.TimestampColumn) {
		return nil, fmt.Errorf("%w: timestamp column %q", ErrInvalidIdentifier, cfg.TimestampColumn)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, cfg.Timezone, err)
	}

	return &Compiler{
		cfg: cfg,
		loc: loc,
		log: cfg.Logger.With("component", "siftql"),
	}, nil
}

// TimeRange bounds a query. Both ends are required and inclusive.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Request is one compilation request.
type Request struct {
	// Query is the SiftQL filter text, or a full SQL statement when RawSQL
	// is set.
	Query string

	// Schema describes the target table's columns. May be nil, in which
	// case every referenced column gets scalar semantics.
	Schema *Schema

	// Range is the inclusive time window applied to the timestamp column.
	Range TimeRange

	// Limit caps the result rows. Zero uses the configured default.
	Limit int

	// RawSQL passes Query through verbatim, skipping the compiler.
	RawSQL bool
}

// Result is the outcome of one compilation.
type Result struct {
	// QueryID identifies this compilation in logs.
	QueryID string

	// SQL is the complete statement. Empty when Valid is false.
	SQL string

	// Valid reports whether SQL was produced. Non-fatal diagnostics do not
	// clear it.
	Valid bool

	// Diagnostics carries parse and generation problems, fatal or not, in
	// source order.
	Diagnostics []ql.ParseError
}

// Compile turns one request into a full SQL statement. Errors in the query
// text are reported through Result.Diagnostics rather than an error return;
// Valid tells the two outcomes apart.
func (c *Compiler) Compile(req Request) Result {
	id := uuid.NewString()
	started := time.Now()

	if req.RawSQL {
		c.log.Debug("raw SQL passthrough", "query_id", id)
		return Result{QueryID: id, SQL: req.Query, Valid: true}
	}

	parsed := ql.Parse(ql.Tokenize(req.Query))
	if parsed.AST == nil && len(parsed.Errors) > 0 {
		c.log.Debug("query rejected",
			"query_id", id,
			"diagnostics", len(parsed.Errors),
		)
		return Result{QueryID: id, Diagnostics: parsed.Errors}
	}

	enc := c.encoder(req.Schema)
	pq, err := recovery.RecoverToValue(c.log, "encode", func() (*ql.ParsedQuery, error) {
		return enc.Encode(parsed.AST, parsed.Projection)
	})
	if err != nil {
		return Result{QueryID: id, Diagnostics: c.generationFailure(parsed.Errors, err)}
	}

	sql, err := c.buildStatement(pq, req)
	if err != nil {
		return Result{QueryID: id, Diagnostics: c.generationFailure(parsed.Errors, err)}
	}

	c.log.Debug("compiled query",
		"query_id", id,
		"dialect", string(c.cfg.Dialect),
		"diagnostics", len(parsed.Errors),
		"duration", time.Since(started),
	)

	return Result{
		QueryID:     id,
		SQL:         sql,
		Valid:       true,
		Diagnostics: parsed.Errors,
	}
}

// generationFailure appends a fatal generation diagnostic to whatever the
// parser already collected. Generation failures never yield partial SQL.
func (c *Compiler) generationFailure(prior []ql.ParseError, err error) []ql.ParseError {
	c.log.Warn("query generation failed", "error", err)
	return append(prior, ql.ParseError{
		Code:    ql.ErrGenerationFailed,
		Message: err.Error(),
	})
}

func (c *Compiler) encoder(schema *Schema) ql.Encoder {
	cols := schema.ColumnTypes()
	if c.cfg.Dialect == DialectDuckDB {
		return ql.NewDuckDBEncoder(cols)
	}
	return ql.NewClickHouseEncoder(cols)
}
