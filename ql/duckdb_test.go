package ql

import (
	"strings"
	"testing"
)

func encodeDuckDB(t *testing.T, input string, cols Columns) *ParsedQuery {
	t.Helper()
	res := Parse(Tokenize(input))
	if res.AST == nil && len(res.Errors) > 0 {
		t.Fatalf("parse failed: %v", res.Errors)
	}
	pq, err := NewDuckDBEncoder(cols).Encode(res.AST, res.Projection)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return pq
}

func TestDuckDBSimpleEquality(t *testing.T) {
	pq := encodeDuckDB(t, `level="error"`, nil)

	expected := "(level = 'error')"
	if pq.Where != expected {
		t.Errorf("expected %s, got %s", expected, pq.Where)
	}
}

func TestDuckDBReservedIdentifierQuoted(t *testing.T) {
	pq := encodeDuckDB(t, `order="asc"`, nil)

	expected := `("order" = 'asc')`
	if pq.Where != expected {
		t.Errorf("expected %s, got %s", expected, pq.Where)
	}
}

func TestDuckDBContains(t *testing.T) {
	pq := encodeDuckDB(t, `message~"Timeout"`, nil)

	expected := "(instr(lower(message), lower('Timeout')) > 0)"
	if pq.Where != expected {
		t.Errorf("expected %s, got %s", expected, pq.Where)
	}

	pq = encodeDuckDB(t, `message!~"Timeout"`, nil)
	expected = "(instr(lower(message), lower('Timeout')) = 0)"
	if pq.Where != expected {
		t.Errorf("expected %s, got %s", expected, pq.Where)
	}
}

func TestDuckDBContainsNumericNeedle(t *testing.T) {
	// instr needs text on both sides, so a numeric needle renders as a string.
	pq := encodeDuckDB(t, `message~500`, nil)

	expected := "(instr(lower(message), lower('500')) > 0)"
	if pq.Where != expected {
		t.Errorf("expected %s, got %s", expected, pq.Where)
	}
}

func TestDuckDBMapSubscript(t *testing.T) {
	pq := encodeDuckDB(t, `log_attributes.user_id="user-123"`,
		Columns{"log_attributes": ColumnMap})

	expected := "(log_attributes['user_id'] = 'user-123')"
	if pq.Where != expected {
		t.Errorf("expected %s, got %s", expected, pq.Where)
	}
}

func TestDuckDBJSONExtraction(t *testing.T) {
	pq := encodeDuckDB(t, `body.request.user_agent~"Mozilla"`,
		Columns{"body": ColumnJSON})

	expected := "(instr(lower(json_extract_string(body, '$.request.user_agent')), lower('Mozilla')) > 0)"
	if pq.Where != expected {
		t.Errorf("expected %s, got %s", expected, pq.Where)
	}
}

func TestDuckDBBooleanLiterals(t *testing.T) {
	pq := encodeDuckDB(t, `active=true`, nil)
	if pq.Where != "(active = TRUE)" {
		t.Errorf("expected TRUE literal, got %s", pq.Where)
	}

	pq = encodeDuckDB(t, `active=false`, nil)
	if pq.Where != "(active = FALSE)" {
		t.Errorf("expected FALSE literal, got %s", pq.Where)
	}
}

func TestDuckDBNullHandling(t *testing.T) {
	pq := encodeDuckDB(t, `ref=null`, nil)
	if pq.Where != "(ref IS NULL)" {
		t.Errorf("expected IS NULL, got %s", pq.Where)
	}

	res := Parse(Tokenize(`ref>=null`))
	if _, err := NewDuckDBEncoder(nil).Encode(res.AST, nil); err == nil {
		t.Errorf("expected generation error for ordering comparison against null")
	}
}

func TestDuckDBStringEscaping(t *testing.T) {
	// DuckDB treats backslashes literally; only quotes double.
	pq := encodeDuckDB(t, `path="C:\\logs"`, nil)
	if !strings.Contains(pq.Where, `'C:\logs'`) {
		t.Errorf("expected literal backslash, got %s", pq.Where)
	}

	pq = encodeDuckDB(t, `msg="it's fine"`, nil)
	if !strings.Contains(pq.Where, "'it''s fine'") {
		t.Errorf("expected doubled quote, got %s", pq.Where)
	}
}

func TestDuckDBConjunction(t *testing.T) {
	pq := encodeDuckDB(t, `status>=400 and status<500`, nil)

	expected := "((status >= 400) AND (status < 500))"
	if pq.Where != expected {
		t.Errorf("expected %s, got %s", expected, pq.Where)
	}
}

func TestDuckDBProjectionAlias(t *testing.T) {
	pq := encodeDuckDB(t, `| body.user.id level`, Columns{"body": ColumnJSON})

	if len(pq.Columns) != 2 {
		t.Fatalf("expected 2 columns, got %+v", pq.Columns)
	}
	if pq.Columns[0].SQL != "json_extract_string(body, '$.user.id')" {
		t.Errorf("unexpected accessor: %s", pq.Columns[0].SQL)
	}
	if pq.Columns[0].Alias != "body_user_id" {
		t.Errorf("expected alias body_user_id, got %q", pq.Columns[0].Alias)
	}
	if pq.Columns[1].SQL != "level" || pq.Columns[1].Alias != "" {
		t.Errorf("plain column must pass through unaliased, got %+v", pq.Columns[1])
	}
}
