// Package ql implements the SiftQL filter language: tokenizing, parsing,
// typed value coercion, and per-dialect SQL generation.
//
// SiftQL is a compact filter syntax for log exploration:
//
//	level="error" and status>=500 | timestamp service level message
//
// A query is a filter expression, optionally followed by a pipe and a
// whitespace-separated projection field list. Conditions compare a field
// against a literal with =, !=, ~ (case-insensitive contains), !~, >, <,
// >=, <=; conditions combine with and/or and parentheses. Dotted field
// references descend into map or JSON columns; path segments may be quoted
// to embed literal dots.
//
// # Pipeline
//
// The package is a pure, synchronous pipeline with no state between calls:
//
//	tokens := ql.Tokenize(`level="error" and status>=500`)
//	res := ql.Parse(tokens)
//	for _, e := range res.Errors {
//	    // recoverable diagnostics travel alongside the best-effort AST
//	}
//	enc := ql.NewClickHouseEncoder(ql.Columns{
//	    "log_attributes": ql.ColumnMap,
//	    "body":           ql.ColumnJSON,
//	})
//	pq, err := enc.Encode(res.AST, res.Projection)
//	// pq.Where: ((`level` = 'error') AND (`status` >= 500))
//
// # Leniency
//
// The parser recovers from a missing boolean operator between conditions
// by assuming AND and reporting a diagnostic, so editors can show both the
// warning and the best-effort result. Fatal errors (an unterminated
// string, a malformed condition, an unclosed group) return a nil AST plus
// a diagnostic carrying the best-known source position; partial SQL is
// never produced.
//
// # Dialects
//
// Encoder implementations cover ClickHouse and DuckDB SQL plus VictoriaLogs
// LogsQL. All encoders consume the same AST; implement Encoder to target
// another backend.
package ql
