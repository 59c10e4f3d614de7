package siftql_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	siftql "github.com/logsift/siftql-go"
)

func TestBuilderTimestampNotDuplicated(t *testing.T) {
	c := testCompiler(t, siftql.Config{})

	result := c.Compile(siftql.Request{
		Query: `| timestamp level`,
		Range: testRange(),
	})
	require.True(t, result.Valid, "diagnostics: %v", result.Diagnostics)

	selectLine, _, _ := strings.Cut(result.SQL, "\n")
	assert.Equal(t, 1, strings.Count(selectLine, "`timestamp`"),
		"timestamp must appear once when the query projects it")
}

func TestBuilderCustomTimestampColumn(t *testing.T) {
	c := testCompiler(t, siftql.Config{TimestampColumn: "event_time"})

	result := c.Compile(siftql.Request{Query: `a=1`, Range: testRange()})
	require.True(t, result.Valid, "diagnostics: %v", result.Diagnostics)

	assert.Contains(t, result.SQL, "WHERE `event_time` BETWEEN")
	assert.Contains(t, result.SQL, "ORDER BY `event_time` DESC")
}

func TestBuilderNegativeLimitUsesDefault(t *testing.T) {
	c := testCompiler(t, siftql.Config{DefaultLimit: 25})

	result := c.Compile(siftql.Request{Query: `a=1`, Range: testRange(), Limit: -5})
	require.True(t, result.Valid, "diagnostics: %v", result.Diagnostics)

	assert.True(t, strings.HasSuffix(result.SQL, "LIMIT 25"), "got: %s", result.SQL)
}

func TestBuilderInclusiveBounds(t *testing.T) {
	c := testCompiler(t, siftql.Config{})

	at := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	result := c.Compile(siftql.Request{
		Query: `a=1`,
		Range: siftql.TimeRange{Start: at, End: at},
	})

	assert.True(t, result.Valid, "equal bounds are a valid instant range: %v", result.Diagnostics)
}

func TestBuilderDuckDBTimestampQuoting(t *testing.T) {
	c := testCompiler(t, siftql.Config{Table: "logs", Dialect: siftql.DialectDuckDB})

	result := c.Compile(siftql.Request{
		Query: `| timestamp level`,
		Range: testRange(),
	})
	require.True(t, result.Valid, "diagnostics: %v", result.Diagnostics)

	selectLine, _, _ := strings.Cut(result.SQL, "\n")
	assert.Equal(t, 1, strings.Count(selectLine, `"timestamp"`),
		"reserved word projection must match the injected column")
}
