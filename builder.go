package siftql

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/logsift/siftql-go/ql"
)

// buildStatement wraps an encoded filter into a complete SELECT: projection,
// FROM, the injected time-range condition, the filter body, default sort,
// and a row limit.
func (c *Compiler) buildStatement(pq *ql.ParsedQuery, req Request) (string, error) {
	if req.Range.Start.IsZero() || req.Range.End.IsZero() {
		return "", fmt.Errorf("%w: both bounds are required", ErrInvalidTimeRange)
	}
	if req.Range.End.Before(req.Range.Start) {
		return "", fmt.Errorf("%w: end precedes start", ErrInvalidTimeRange)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = c.cfg.DefaultLimit
	}

	tsIdent := c.quoteIdent(c.cfg.TimestampColumn)

	var b strings.Builder
	b.WriteString("SELECT ")
	if pq.DefaultProjection {
		b.WriteString("*")
	} else {
		cols := make([]string, 0, len(pq.Columns)+1)
		// The timestamp column leads the projection unless the query already
		// asked for it.
		if !projectsColumn(pq.Columns, c.cfg.TimestampColumn, tsIdent) {
			cols = append(cols, tsIdent)
		}
		for _, col := range pq.Columns {
			if col.Alias != "" {
				cols = append(cols, col.SQL+" AS "+c.quoteIdent(col.Alias))
			} else {
				cols = append(cols, col.SQL)
			}
		}
		b.WriteString(strings.Join(cols, ", "))
	}

	b.WriteString("\nFROM ")
	b.WriteString(c.cfg.Table)

	b.WriteString("\nWHERE ")
	b.WriteString(tsIdent)
	b.WriteString(" BETWEEN ")
	b.WriteString(c.timeBound(req.Range.Start))
	b.WriteString(" AND ")
	b.WriteString(c.timeBound(req.Range.End))
	if pq.Where != "" {
		b.WriteString("\n  AND ")
		b.WriteString(pq.Where)
	}

	b.WriteString("\nORDER BY ")
	b.WriteString(tsIdent)
	b.WriteString(" DESC")

	b.WriteString("\nLIMIT ")
	b.WriteString(strconv.Itoa(limit))

	return b.String(), nil
}

// timeBound renders one time-range bound for the configured dialect, in the
// configured timezone at second precision.
func (c *Compiler) timeBound(t time.Time) string {
	formatted := t.In(c.loc).Format("2006-01-02 15:04:05")
	if c.cfg.Dialect == DialectDuckDB {
		return "TIMESTAMP '" + formatted + "'"
	}
	return "toDateTime('" + formatted + "', '" + c.cfg.Timezone + "')"
}

// quoteIdent quotes a validated identifier for the configured dialect.
func (c *Compiler) quoteIdent(name string) string {
	if c.cfg.Dialect == DialectDuckDB {
		return `"` + name + `"`
	}
	return "`" + name + "`"
}

// projectsColumn reports whether the projection already includes the named
// column, in raw, quoted, or aliased form.
func projectsColumn(cols []ql.ProjectedColumn, name, quoted string) bool {
	for _, col := range cols {
		if col.SQL == name || col.SQL == quoted || col.Alias == name {
			return true
		}
	}
	return false
}
